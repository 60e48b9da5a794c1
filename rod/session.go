// Package rod implements storecrawl rendering sessions with go-rod.
package rod

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fwojciec/storecrawl"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// pollInterval is how often element waits re-query the DOM.
const pollInterval = 100 * time.Millisecond

// Ensure Opener implements storecrawl.SessionOpener at compile time.
var _ storecrawl.SessionOpener = (*Opener)(nil)

// Opener launches a dedicated Chrome process per session.
type Opener struct{}

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open launches Chrome configured by opts and opens a single page in it.
// Returns an error if Chrome/Chromium cannot be found or launched.
func (o *Opener) Open(ctx context.Context, opts storecrawl.SessionOptions) (storecrawl.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().
		Set("disable-dev-shm-usage").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Leakless(true).
		Headless(opts.Headless)
	if opts.Width > 0 && opts.Height > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", opts.Width, opts.Height))
	}
	if opts.DisableGPU {
		l = l.Set("disable-gpu")
	}
	if opts.UserAgent != "" {
		l = l.Set("user-agent", opts.UserAgent)
	}
	if opts.Language != "" {
		l = l.Set("lang", opts.Language)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	s := &Session{browser: browser, launcher: l}
	if s.page, err = openPage(browser, opts); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func openPage(browser *rod.Browser, opts storecrawl.SessionOptions) (*rod.Page, error) {
	var page *rod.Page
	var err error
	if opts.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}

	if opts.UserAgent != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      opts.UserAgent,
			AcceptLanguage: opts.Language,
		})
		if err != nil {
			return nil, fmt.Errorf("setting user agent: %w", err)
		}
	}
	return page, nil
}

// Ensure Session implements storecrawl.Session at compile time.
var _ storecrawl.Session = (*Session)(nil)

// Session is one Chrome process driving a single page.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	closed   atomic.Bool
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.closed.Load() {
		return storecrawl.Errorf(storecrawl.EINVALID, "session closed")
	}

	page := s.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return waitError(ctx, err, "navigating to %s", url)
	}
	if err := page.WaitLoad(); err != nil {
		return waitError(ctx, err, "loading %s", url)
	}
	return nil
}

// CurrentURL returns the URL of the page.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	if s.closed.Load() {
		return "", storecrawl.Errorf(storecrawl.EINVALID, "session closed")
	}

	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// WaitElements polls the page until loc matches.
func (s *Session) WaitElements(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
	if s.closed.Load() {
		return nil, storecrawl.Errorf(storecrawl.EINVALID, "session closed")
	}

	return poll(ctx, loc, func(ctx context.Context) (rod.Elements, error) {
		return s.page.Context(ctx).Elements(loc.CSS())
	})
}

// Close shuts down the browser and kills the Chrome process.
// Close is safe to call multiple times.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (s *Session) LauncherPID() int {
	return s.launcher.PID()
}

// Ensure Element implements storecrawl.Element at compile time.
var _ storecrawl.Element = (*Element)(nil)

// Element wraps a rod element handle.
type Element struct {
	el *rod.Element
}

// Text returns the element's visible text.
func (e *Element) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

// Attribute returns the attribute value and whether it is set.
func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// Click scrolls the element into view and clicks it once.
func (e *Element) Click(ctx context.Context) error {
	if err := e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return waitError(ctx, err, "clicking element")
	}
	return nil
}

// WaitElements polls the element's subtree until loc matches.
func (e *Element) WaitElements(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
	return poll(ctx, loc, func(ctx context.Context) (rod.Elements, error) {
		return e.el.Context(ctx).Elements(loc.CSS())
	})
}

// poll re-runs query until it returns at least one element or ctx ends.
func poll(ctx context.Context, loc storecrawl.Locator, query func(context.Context) (rod.Elements, error)) ([]storecrawl.Element, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		els, err := query(ctx)
		if err == nil && len(els) > 0 {
			out := make([]storecrawl.Element, len(els))
			for i, el := range els {
				out[i] = &Element{el: el}
			}
			return out, nil
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if lastErr != nil && !errors.Is(lastErr, ctx.Err()) {
				return nil, waitError(ctx, ctx.Err(), "waiting for %s (last error: %v)", loc, lastErr)
			}
			return nil, waitError(ctx, ctx.Err(), "waiting for %s", loc)
		case <-ticker.C:
		}
	}
}

// waitError reports deadline expiry as ETIMEOUT. Other errors, including
// cancellation, are wrapped unchanged.
func waitError(ctx context.Context, err error, format string, args ...any) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return storecrawl.Errorf(storecrawl.ETIMEOUT, format, args...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
