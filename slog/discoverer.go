package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/storecrawl"
)

// Ensure LoggingDiscoverer implements storecrawl.CategoryDiscoverer.
var _ storecrawl.CategoryDiscoverer = (*LoggingDiscoverer)(nil)

// LoggingDiscoverer wraps a CategoryDiscoverer with logging.
type LoggingDiscoverer struct {
	next   storecrawl.CategoryDiscoverer
	logger *slog.Logger
}

// NewLoggingDiscoverer creates a new LoggingDiscoverer.
func NewLoggingDiscoverer(next storecrawl.CategoryDiscoverer, logger *slog.Logger) *LoggingDiscoverer {
	return &LoggingDiscoverer{next: next, logger: logger}
}

// Discover delegates to the wrapped discoverer and logs the operation.
func (d *LoggingDiscoverer) Discover(ctx context.Context, landingURL string) (refs []storecrawl.CategoryRef, err error) {
	defer func(begin time.Time) {
		d.logger.Info("category discovery",
			"url", landingURL,
			"count", len(refs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Discover(ctx, landingURL)
}
