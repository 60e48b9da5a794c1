package rod

import (
	"context"
	"sync"

	"github.com/fwojciec/storecrawl"
)

// Ensure Fetcher implements storecrawl.Fetcher at compile time.
var _ storecrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered landing page HTML through a rod Session.
// Use it when the landing page builds its category list with JavaScript.
// Fetcher is safe for concurrent use; fetches are serialized.
type Fetcher struct {
	mu      sync.Mutex
	session *Session
}

// NewFetcher launches a browser configured by opts.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(ctx context.Context, opts storecrawl.SessionOptions) (*Fetcher, error) {
	s, err := NewOpener().Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Fetcher{session: s.(*Session)}, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.session.Navigate(ctx, url); err != nil {
		if storecrawl.ErrorCode(err) == storecrawl.EINVALID {
			return "", err
		}
		return "", storecrawl.Errorf(storecrawl.EFETCH, "rendering %s: %v", url, err)
	}

	html, err := f.session.page.Context(ctx).HTML()
	if err != nil {
		return "", storecrawl.Errorf(storecrawl.EFETCH, "reading HTML of %s: %v", url, err)
	}
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.session.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.session.LauncherPID()
}
