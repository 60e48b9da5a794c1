package storecrawl

import "context"

// Fetcher retrieves static HTML from URLs with a single GET request.
// It does not execute JavaScript; rendered listings go through a Session.
type Fetcher interface {
	// Fetch returns the response body of a successful (2xx) GET.
	// Returns EFETCH for transport failures and non-2xx statuses.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
