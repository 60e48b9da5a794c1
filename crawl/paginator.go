package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/storecrawl"
)

// Default timings for a Paginator.
const (
	DefaultWaitTimeout  = 5 * time.Second
	DefaultSettleDelay  = 2 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Paginator walks one category listing through its pagination control.
// It owns a single rendering session, opened by NewPaginator and released
// by Close. A Paginator is not safe for concurrent use.
type Paginator struct {
	session     storecrawl.Session
	categoryURL string

	layout       storecrawl.ListingLayout
	waitTimeout  time.Duration
	settleDelay  time.Duration
	pollInterval time.Duration
	logger       *slog.Logger

	// digest fingerprints the most recently extracted page.
	digest uint64
	closed atomic.Bool
}

// PaginatorOption configures a Paginator.
type PaginatorOption func(*Paginator)

// WithLayout sets the listing layout. Defaults to storecrawl.DefaultListingLayout().
func WithLayout(layout storecrawl.ListingLayout) PaginatorOption {
	return func(p *Paginator) {
		p.layout = layout
	}
}

// WithWaitTimeout bounds each wait for a DOM condition.
// Defaults to DefaultWaitTimeout (5s).
func WithWaitTimeout(d time.Duration) PaginatorOption {
	return func(p *Paginator) {
		p.waitTimeout = d
	}
}

// WithSettleDelay sets the upper bound on waiting for the listing to change
// after advancing. Defaults to DefaultSettleDelay (2s).
func WithSettleDelay(d time.Duration) PaginatorOption {
	return func(p *Paginator) {
		p.settleDelay = d
	}
}

// WithPollInterval sets how often the listing is checked while settling.
func WithPollInterval(d time.Duration) PaginatorOption {
	return func(p *Paginator) {
		p.pollInterval = d
	}
}

// WithLogger sets the logger for degradation diagnostics.
func WithLogger(logger *slog.Logger) PaginatorOption {
	return func(p *Paginator) {
		p.logger = logger
	}
}

// NewPaginator opens a session with sessionOpts and binds it to categoryURL.
// Close must be called when the Paginator is no longer needed.
func NewPaginator(
	ctx context.Context,
	opener storecrawl.SessionOpener,
	categoryURL string,
	sessionOpts storecrawl.SessionOptions,
	opts ...PaginatorOption,
) (*Paginator, error) {
	p := &Paginator{
		categoryURL:  categoryURL,
		layout:       storecrawl.DefaultListingLayout(),
		waitTimeout:  DefaultWaitTimeout,
		settleDelay:  DefaultSettleDelay,
		pollInterval: DefaultPollInterval,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	session, err := opener.Open(ctx, sessionOpts)
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	p.session = session

	return p, nil
}

// Collection is the outcome of one CollectAllItems run.
type Collection struct {
	Items    []storecrawl.ItemLink
	Pages    int
	Degraded []error
}

// CollectAllItems navigates to the category, detects its page count and
// extracts every page in order, advancing between pages.
//
// It never fails: a navigation fault yields an empty collection, a failed
// page contributes no items, and a failed advance stops the walk with the
// items gathered so far. Every fallback is recorded in Degraded.
func (p *Paginator) CollectAllItems(ctx context.Context) *Collection {
	c := &Collection{Items: []storecrawl.ItemLink{}}

	if err := p.session.Navigate(ctx, p.categoryURL); err != nil {
		reason := storecrawl.Errorf(storecrawl.ENAVIGATION, "navigate to %s: %v", p.categoryURL, err)
		p.logger.Error("collect items", "url", p.categoryURL, "err", reason)
		c.Degraded = append(c.Degraded, reason)
		return c
	}

	count := p.DetectPageCount(ctx)
	if count.Degraded() {
		c.Degraded = append(c.Degraded, count.Reason)
	}
	c.Pages = count.Value

	for page := 0; page < count.Value; page++ {
		if err := ctx.Err(); err != nil {
			c.Degraded = append(c.Degraded, fmt.Errorf("page %d: %w", page+1, err))
			break
		}

		extracted := p.ExtractCurrentPage(ctx)
		if extracted.Degraded() {
			c.Degraded = append(c.Degraded, fmt.Errorf("page %d: %w", page+1, extracted.Reason))
		}
		c.Items = append(c.Items, extracted.Value...)

		if page == count.Value-1 {
			break
		}
		if err := p.Advance(ctx, page+1); err != nil {
			p.logger.Warn("advance failed", "url", p.categoryURL, "page", page+2, "err", err)
			c.Degraded = append(c.Degraded, fmt.Errorf("page %d: %w", page+2, err))
			break
		}
	}

	return c
}

// DetectPageCount reads the total page count from the last page link of the
// pagination control. If the session is not on the category URL it
// navigates there and restores the previous URL before returning.
//
// Failures degrade to zero pages.
func (p *Paginator) DetectPageCount(ctx context.Context) storecrawl.Result[int] {
	prev, err := p.session.CurrentURL(ctx)
	if err != nil {
		return p.noPages(storecrawl.Errorf(storecrawl.ENAVIGATION, "reading current URL: %v", err))
	}

	if prev != p.categoryURL {
		if err := p.session.Navigate(ctx, p.categoryURL); err != nil {
			return p.noPages(storecrawl.Errorf(storecrawl.ENAVIGATION, "navigate to %s: %v", p.categoryURL, err))
		}
		defer func() {
			if err := p.session.Navigate(ctx, prev); err != nil {
				p.logger.Warn("restore session URL", "url", prev, "err", err)
			}
		}()
	}

	n, err := p.readPageCount(ctx)
	if err != nil {
		return p.noPages(err)
	}

	p.logger.Debug("page count", "url", p.categoryURL, "pages", n)
	return storecrawl.Ok(n)
}

func (p *Paginator) noPages(reason error) storecrawl.Result[int] {
	p.logger.Warn("page count detection failed", "url", p.categoryURL, "err", reason)
	return storecrawl.Degraded(0, reason)
}

func (p *Paginator) readPageCount(ctx context.Context) (int, error) {
	wctx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()

	containers, err := p.session.WaitElements(wctx, storecrawl.ID(p.layout.PaginationID))
	if err != nil {
		return 0, err
	}

	links, err := p.pageLinks(ctx, containers[0])
	if err != nil {
		return 0, err
	}

	rctx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()
	text, err := links[len(links)-1].Text(rctx)
	if err != nil {
		return 0, storecrawl.Errorf(storecrawl.EPARSE, "reading last page link: %v", err)
	}
	return parsePageNumber(text)
}

// pageLinks finds the page links inside the pagination container, first by
// marker class and then by the generic anchor tag.
func (p *Paginator) pageLinks(ctx context.Context, container storecrawl.Element) ([]storecrawl.Element, error) {
	locs := []storecrawl.Locator{storecrawl.Tag("a")}
	if p.layout.PageLinkClass != "" {
		locs = append([]storecrawl.Locator{storecrawl.Class(p.layout.PageLinkClass)}, locs...)
	}

	var lastErr error
	for _, loc := range locs {
		wctx, cancel := context.WithTimeout(ctx, p.waitTimeout)
		links, err := container.WaitElements(wctx, loc)
		cancel()
		if err == nil && len(links) > 0 {
			return links, nil
		}
		if err == nil {
			err = storecrawl.Errorf(storecrawl.ETIMEOUT, "no page links match %s", loc)
		}
		p.logger.Debug("page links not found", "locator", loc.String(), "err", err)
		lastErr = err
	}
	return nil, lastErr
}

// parsePageNumber parses a page link label such as "12" or "1,024".
func parsePageNumber(text string) (int, error) {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, storecrawl.Errorf(storecrawl.EPARSE, "page count %q is not a number", text)
	}
	return n, nil
}

// ExtractCurrentPage returns the item links of the page the session is on,
// in document order. A timed-out wait degrades to an empty page.
func (p *Paginator) ExtractCurrentPage(ctx context.Context) storecrawl.Result[[]storecrawl.ItemLink] {
	links, err := p.readItems(ctx, p.waitTimeout)
	if err != nil {
		p.logger.Warn("page extraction failed", "url", p.categoryURL, "err", err)
		// A listing that renders after the wait gave up must not pass for
		// the next page once the session advances.
		if late, err := p.readItems(ctx, p.pollInterval); err == nil {
			p.digest = Fingerprint(late)
		}
		return storecrawl.Degraded([]storecrawl.ItemLink{}, err)
	}

	p.digest = Fingerprint(links)
	return storecrawl.Ok(links)
}

// readItems waits for the item list and then reads its items, each step
// bounded by timeout, and returns the item hrefs. Items without an href are
// skipped.
func (p *Paginator) readItems(ctx context.Context, timeout time.Duration) ([]storecrawl.ItemLink, error) {
	listCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	lists, err := p.session.WaitElements(listCtx, storecrawl.ID(p.layout.ItemListID))
	if err != nil {
		return nil, err
	}

	itemCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	items, err := lists[0].WaitElements(itemCtx, storecrawl.Class(p.layout.ItemClass))
	if err != nil {
		return nil, err
	}

	links := make([]storecrawl.ItemLink, 0, len(items))
	for _, item := range items {
		href, ok, err := item.Attribute(itemCtx, "href")
		if err != nil {
			return nil, fmt.Errorf("reading item href: %w", err)
		}
		if !ok {
			continue
		}
		links = append(links, href)
	}
	return links, nil
}

// Advance moves the session to the zero-based page next, then waits for the
// listing to settle. It clicks the next control, or navigates to the page's
// fragment URL when the layout defines PageURLFormat.
func (p *Paginator) Advance(ctx context.Context, next int) error {
	if p.layout.PageURLFormat != "" {
		u := p.categoryURL + fmt.Sprintf(p.layout.PageURLFormat, next)
		if err := p.session.Navigate(ctx, u); err != nil {
			return storecrawl.Errorf(storecrawl.ENAVIGATION, "navigate to %s: %v", u, err)
		}
	} else if err := p.clickNext(ctx); err != nil {
		return err
	}

	p.settle(ctx)
	return nil
}

func (p *Paginator) clickNext(ctx context.Context) error {
	wctx, cancel := context.WithTimeout(ctx, p.waitTimeout)
	defer cancel()

	buttons, err := p.session.WaitElements(wctx, storecrawl.ID(p.layout.NextID))
	if err != nil {
		return fmt.Errorf("locating next control: %w", err)
	}
	if err := buttons[0].Click(wctx); err != nil {
		return storecrawl.Errorf(storecrawl.ENAVIGATION, "clicking next control: %v", err)
	}
	return nil
}

// settle polls the item list until its fingerprint differs from the page
// extracted last. The settle delay bounds the wait; when it elapses the
// listing is assumed to be ready.
func (p *Paginator) settle(ctx context.Context) {
	deadline := time.NewTimer(p.settleDelay)
	defer deadline.Stop()
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		if links, err := p.readItems(ctx, p.pollInterval); err == nil && Fingerprint(links) != p.digest {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			p.logger.Debug("settle delay elapsed", "url", p.categoryURL, "delay", p.settleDelay)
			return
		case <-ticker.C:
		}
	}
}

// Close releases the rendering session. Close is safe to call multiple times.
func (p *Paginator) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.session.Close()
}
