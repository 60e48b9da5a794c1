package mock

import (
	"context"

	"github.com/fwojciec/storecrawl"
)

var _ storecrawl.SessionOpener = (*SessionOpener)(nil)

// SessionOpener is a mock implementation of storecrawl.SessionOpener.
type SessionOpener struct {
	OpenFn func(ctx context.Context, opts storecrawl.SessionOptions) (storecrawl.Session, error)
}

func (o *SessionOpener) Open(ctx context.Context, opts storecrawl.SessionOptions) (storecrawl.Session, error) {
	return o.OpenFn(ctx, opts)
}

var _ storecrawl.Session = (*Session)(nil)

// Session is a mock implementation of storecrawl.Session.
type Session struct {
	NavigateFn     func(ctx context.Context, url string) error
	CurrentURLFn   func(ctx context.Context) (string, error)
	WaitElementsFn func(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error)
	CloseFn        func() error
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.NavigateFn(ctx, url)
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	return s.CurrentURLFn(ctx)
}

func (s *Session) WaitElements(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
	return s.WaitElementsFn(ctx, loc)
}

func (s *Session) Close() error {
	return s.CloseFn()
}

var _ storecrawl.Element = (*Element)(nil)

// Element is a mock implementation of storecrawl.Element.
type Element struct {
	TextFn         func(ctx context.Context) (string, error)
	AttributeFn    func(ctx context.Context, name string) (string, bool, error)
	ClickFn        func(ctx context.Context) error
	WaitElementsFn func(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.TextFn(ctx)
}

func (e *Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	return e.AttributeFn(ctx, name)
}

func (e *Element) Click(ctx context.Context) error {
	return e.ClickFn(ctx)
}

func (e *Element) WaitElements(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
	return e.WaitElementsFn(ctx, loc)
}
