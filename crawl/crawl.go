// Package crawl provides storefront crawling orchestration.
// It coordinates category discovery on the landing page with paginated
// item collection inside rendered category listings.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/storecrawl"
	"github.com/fwojciec/storecrawl/bloom"
	"github.com/google/uuid"
)

// Crawler orchestrates a crawl of one storefront.
type Crawler struct {
	Discoverer     storecrawl.CategoryDiscoverer
	Sessions       storecrawl.SessionOpener
	SessionOptions storecrawl.SessionOptions
	Layout         storecrawl.ListingLayout
	WaitTimeout    time.Duration
	SettleDelay    time.Duration
	// Limit caps how many discovered categories are crawled. Zero means all.
	Limit  int
	Logger *slog.Logger
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Category  storecrawl.CategoryRef
	Items     int
	Degraded  int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressSkipped
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Run discovers categories on landingURL and collects the items of each,
// one category at a time. Categories whose URL was already crawled in this
// run are skipped.
//
// Only discovery failures are returned as errors. Per-category faults are
// recorded on the category's result.
func (c *Crawler) Run(ctx context.Context, landingURL string, progress ProgressFunc) ([]*storecrawl.CategoryResult, error) {
	logger := c.logger().With("run", uuid.NewString())

	refs, err := c.Discoverer.Discover(ctx, landingURL)
	if err != nil {
		logger.Error("category discovery failed", "url", landingURL, "err", err)
		return nil, fmt.Errorf("category discovery: %w", err)
	}
	logger.Info("categories discovered", "url", landingURL, "count", len(refs))

	if c.Limit > 0 && len(refs) > c.Limit {
		refs = refs[:c.Limit]
	}

	total := len(refs)
	notify(progress, ProgressEvent{Type: ProgressStarted, Total: total})

	seen := bloom.ForCategories(total)
	results := make([]*storecrawl.CategoryResult, 0, total)
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			logger.Warn("crawl interrupted", "completed", i, "total", total, "err", err)
			break
		}

		target := resolveURL(landingURL, ref.URL)
		if seen.Visit(target) {
			logger.Debug("skipping repeated category", "name", ref.Name, "url", target)
			notify(progress, ProgressEvent{Type: ProgressSkipped, Completed: i + 1, Total: total, Category: ref})
			continue
		}

		result := c.collect(ctx, logger, ref, target)
		results = append(results, result)
		notify(progress, ProgressEvent{
			Type:      ProgressCompleted,
			Completed: i + 1,
			Total:     total,
			Category:  ref,
			Items:     len(result.Items),
			Degraded:  len(result.Degraded),
		})
	}

	logger.Info("crawl finished", "categories", seen.Len(), "total", total)
	notify(progress, ProgressEvent{Type: ProgressFinished, Completed: len(results), Total: total})
	return results, nil
}

// collect runs one paginator over target and always returns a result.
func (c *Crawler) collect(ctx context.Context, logger *slog.Logger, ref storecrawl.CategoryRef, target string) *storecrawl.CategoryResult {
	logger = logger.With("category", ref.Name)
	result := &storecrawl.CategoryResult{
		Category: ref,
		Items:    []storecrawl.ItemLink{},
	}

	p, err := NewPaginator(ctx, c.Sessions, target, c.SessionOptions, c.paginatorOptions(logger)...)
	if err != nil {
		logger.Error("open session", "url", target, "err", err)
		result.Degraded = append(result.Degraded, err)
		result.Digest = Digest(result.Items)
		return result
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("close session", "url", target, "err", err)
		}
	}()

	start := time.Now()
	collection := p.CollectAllItems(ctx)
	result.Items = collection.Items
	result.Pages = collection.Pages
	result.Degraded = collection.Degraded
	result.Digest = Digest(collection.Items)

	logger.Info("category collected",
		"url", target,
		"pages", result.Pages,
		"items", len(result.Items),
		"degraded", len(result.Degraded),
		"duration", time.Since(start))
	return result
}

func (c *Crawler) paginatorOptions(logger *slog.Logger) []PaginatorOption {
	opts := []PaginatorOption{WithLogger(logger)}
	if c.Layout != (storecrawl.ListingLayout{}) {
		opts = append(opts, WithLayout(c.Layout))
	}
	if c.WaitTimeout > 0 {
		opts = append(opts, WithWaitTimeout(c.WaitTimeout))
	}
	if c.SettleDelay > 0 {
		opts = append(opts, WithSettleDelay(c.SettleDelay))
	}
	return opts
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func notify(progress ProgressFunc, event ProgressEvent) {
	if progress != nil {
		progress(event)
	}
}

// resolveURL resolves a possibly relative category href against the landing
// page. Unparseable input is returned unchanged.
func resolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
