// Package colly discovers storefront categories with a colly collector.
package colly

import (
	"context"
	"time"

	"github.com/fwojciec/storecrawl"
	"github.com/fwojciec/storecrawl/goquery"
	"github.com/gocolly/colly/v2"
)

// Ensure Discoverer implements storecrawl.CategoryDiscoverer at compile time.
var _ storecrawl.CategoryDiscoverer = (*Discoverer)(nil)

// Discoverer visits the landing page with a fresh collector per call and
// reads categories from the first element matching the layout container.
// Any status outside the 2xx range is reported as EFETCH.
type Discoverer struct {
	layout    storecrawl.LandingLayout
	timeout   time.Duration
	userAgent string
	language  string
}

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Discoverer) {
		d.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(d *Discoverer) {
		d.userAgent = ua
	}
}

// WithLanguage sets the Accept-Language header.
func WithLanguage(lang string) Option {
	return func(d *Discoverer) {
		d.language = lang
	}
}

// NewDiscoverer creates a Discoverer for layout.
func NewDiscoverer(layout storecrawl.LandingLayout, opts ...Option) *Discoverer {
	d := &Discoverer{layout: layout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover visits landingURL and returns its categories in document order.
func (d *Discoverer) Discover(ctx context.Context, landingURL string) ([]storecrawl.CategoryRef, error) {
	c := colly.NewCollector(
		colly.StdlibContext(ctx),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
	)
	if d.userAgent != "" {
		c.UserAgent = d.userAgent
	}
	if d.timeout > 0 {
		c.SetRequestTimeout(d.timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		if d.language != "" {
			r.Headers.Set("Accept-Language", d.language)
		}
	})

	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode < 200 || r.StatusCode > 299 {
			fetchErr = storecrawl.Errorf(storecrawl.EFETCH, "HTTP %d for %s", r.StatusCode, landingURL)
		}
	})

	var refs []storecrawl.CategoryRef
	found := false
	c.OnHTML(d.layout.ContainerSelector, func(e *colly.HTMLElement) {
		if found || fetchErr != nil {
			return
		}
		found = true
		refs = goquery.CategoriesIn(e.DOM, d.layout.AnchorClass)
	})

	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = storecrawl.Errorf(storecrawl.EFETCH, "GET %s: %v", landingURL, err)
	})

	visitErr := c.Visit(landingURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	if visitErr != nil {
		return nil, storecrawl.Errorf(storecrawl.EFETCH, "GET %s: %v", landingURL, visitErr)
	}

	if !found {
		return nil, storecrawl.Errorf(storecrawl.EPARSE, "category container %q not found", d.layout.ContainerSelector)
	}
	return refs, nil
}
