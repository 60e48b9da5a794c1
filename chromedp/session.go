// Package chromedp implements storecrawl rendering sessions with chromedp.
package chromedp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/fwojciec/storecrawl"
)

// Ensure Opener implements storecrawl.SessionOpener at compile time.
var _ storecrawl.SessionOpener = (*Opener)(nil)

// Opener starts one Chrome process per session through a chromedp exec
// allocator. SessionOptions.Stealth is not supported and is ignored.
type Opener struct{}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open starts Chrome configured by opts with a single tab.
func (o *Opener) Open(ctx context.Context, opts storecrawl.SessionOptions) (storecrawl.Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.Width > 0 && opts.Height > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.Width, opts.Height))
	}
	if opts.DisableGPU {
		allocOpts = append(allocOpts, chromedp.DisableGPU)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Language != "" {
		allocOpts = append(allocOpts, chromedp.Flag("lang", opts.Language))
	}

	// The browser lives until Close, not until ctx ends.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	stop := context.AfterFunc(ctx, cancelTab)
	err := chromedp.Run(tabCtx)
	if !stop() || err != nil {
		cancelTab()
		cancelAlloc()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	s := &Session{tabCtx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}
	if opts.Language != "" {
		err := s.run(ctx, "setting language",
			network.Enable(),
			network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": opts.Language}),
		)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Ensure Session implements storecrawl.Session at compile time.
var _ storecrawl.Session = (*Session)(nil)

// Session drives a single chromedp tab.
type Session struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	closed      atomic.Bool
}

// Navigate loads url and waits for the load event. A change of fragment
// only is applied in place, as it fires no load event.
func (s *Session) Navigate(ctx context.Context, rawURL string) error {
	current, err := s.CurrentURL(ctx)
	if err == nil && sameDocument(current, rawURL) {
		target, _ := json.Marshal(rawURL)
		return s.run(ctx, "navigating to "+rawURL,
			chromedp.Evaluate("window.location.assign("+string(target)+")", nil),
		)
	}
	return s.run(ctx, "navigating to "+rawURL, chromedp.Navigate(rawURL))
}

// sameDocument reports whether a and b differ at most in their fragment.
func sameDocument(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	if ub.Fragment == "" {
		return false
	}
	ua.Fragment, ub.Fragment = "", ""
	ua.RawFragment, ub.RawFragment = "", ""
	return ua.String() == ub.String()
}

// CurrentURL returns the tab's location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var u string
	if err := s.run(ctx, "reading location", chromedp.Location(&u)); err != nil {
		return "", err
	}
	return u, nil
}

// WaitElements waits until loc matches at least one node in the document.
func (s *Session) WaitElements(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, "waiting for "+loc.String(),
		chromedp.Nodes(loc.CSS(), &nodes, chromedp.ByQueryAll),
	)
	if err != nil {
		return nil, err
	}
	return s.elements(nodes), nil
}

func (s *Session) elements(nodes []*cdp.Node) []storecrawl.Element {
	out := make([]storecrawl.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &Element{session: s, node: n}
	}
	return out
}

// Close closes the tab and shuts down Chrome.
// Close is safe to call multiple times.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := chromedp.Cancel(s.tabCtx)
	s.cancelTab()
	s.cancelAlloc()
	return err
}

// run executes actions on the tab bounded by ctx. Deadline expiry is
// reported as ETIMEOUT.
func (s *Session) run(ctx context.Context, what string, actions ...chromedp.Action) error {
	if s.closed.Load() {
		return storecrawl.Errorf(storecrawl.EINVALID, "session closed")
	}

	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}

	err := chromedp.Run(runCtx, actions...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return storecrawl.Errorf(storecrawl.ETIMEOUT, "%s", what)
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w", what, ctx.Err())
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Ensure Element implements storecrawl.Element at compile time.
var _ storecrawl.Element = (*Element)(nil)

// Element is a DOM node tracked by a Session.
type Element struct {
	session *Session
	node    *cdp.Node
}

func (e *Element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

// Text returns the node's visible text, waiting for it to be visible.
func (e *Element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.session.run(ctx, "reading text",
		chromedp.Text(e.ids(), &text, chromedp.ByNodeID),
	)
	return text, err
}

// Attribute returns the attribute value and whether it is set.
func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	var value string
	var ok bool
	err := e.session.run(ctx, "reading attribute "+name,
		chromedp.AttributeValue(e.ids(), name, &value, &ok, chromedp.ByNodeID),
	)
	return value, ok, err
}

// Click dispatches a left mouse click at the node's center.
func (e *Element) Click(ctx context.Context) error {
	return e.session.run(ctx, "clicking element", chromedp.MouseClickNode(e.node))
}

// WaitElements waits until loc matches at least one descendant of the node.
func (e *Element) WaitElements(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
	var nodes []*cdp.Node
	err := e.session.run(ctx, "waiting for "+loc.String(),
		chromedp.Nodes(loc.CSS(), &nodes, chromedp.ByQueryAll, chromedp.FromNode(e.node)),
	)
	if err != nil {
		return nil, err
	}
	return e.session.elements(nodes), nil
}
