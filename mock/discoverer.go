package mock

import (
	"context"

	"github.com/fwojciec/storecrawl"
)

var _ storecrawl.CategoryDiscoverer = (*CategoryDiscoverer)(nil)

// CategoryDiscoverer is a mock implementation of storecrawl.CategoryDiscoverer.
type CategoryDiscoverer struct {
	DiscoverFn func(ctx context.Context, landingURL string) ([]storecrawl.CategoryRef, error)
}

func (d *CategoryDiscoverer) Discover(ctx context.Context, landingURL string) ([]storecrawl.CategoryRef, error) {
	return d.DiscoverFn(ctx, landingURL)
}
