package storecrawl

import "context"

// By selects how a Locator matches elements.
type By int

// Locator strategies.
const (
	ByCSS By = iota
	ByID
	ByClass
	ByTag
)

// Locator identifies DOM elements within a rendered page.
type Locator struct {
	By    By
	Value string
}

// ID returns a Locator matching the element with the given id.
func ID(id string) Locator { return Locator{By: ByID, Value: id} }

// Class returns a Locator matching elements carrying the given class.
func Class(class string) Locator { return Locator{By: ByClass, Value: class} }

// Tag returns a Locator matching elements with the given tag name.
func Tag(tag string) Locator { return Locator{By: ByTag, Value: tag} }

// CSS returns a Locator matching a CSS selector.
func CSS(selector string) Locator { return Locator{By: ByCSS, Value: selector} }

// CSS renders the locator as a CSS selector.
func (l Locator) CSS() string {
	switch l.By {
	case ByID:
		return "#" + l.Value
	case ByClass:
		return "." + l.Value
	default:
		return l.Value
	}
}

// String returns a readable form for logs and error messages.
func (l Locator) String() string {
	switch l.By {
	case ByID:
		return "id=" + l.Value
	case ByClass:
		return "class=" + l.Value
	case ByTag:
		return "tag=" + l.Value
	default:
		return "css=" + l.Value
	}
}

// SessionOptions configures a rendering session.
type SessionOptions struct {
	Headless   bool
	Width      int
	Height     int
	DisableGPU bool
	UserAgent  string
	Language   string

	// Stealth applies anti-detection patches where the driver supports them.
	Stealth bool
}

// DefaultUserAgent is the request identity presented by rendering sessions.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/81.0.4044.92 Safari/537.36"

// DefaultLanguage is the content-language preference of rendering sessions.
const DefaultLanguage = "ko_KR"

// DefaultSessionOptions returns the fixed session configuration with the
// headless flag applied.
func DefaultSessionOptions(headless bool) SessionOptions {
	return SessionOptions{
		Headless:   headless,
		Width:      920,
		Height:     580,
		DisableGPU: true,
		UserAgent:  DefaultUserAgent,
		Language:   DefaultLanguage,
	}
}

// SessionOpener starts rendering sessions.
type SessionOpener interface {
	// Open starts a browser configured by opts.
	// The returned Session is owned by the caller, who must Close it.
	Open(ctx context.Context, opts SessionOptions) (Session, error)
}

// Session is a live, stateful browser-automation context.
// A Session is not safe for concurrent use.
type Session interface {
	// Navigate loads url and waits for the document to load.
	Navigate(ctx context.Context, url string) error

	// CurrentURL returns the URL the session is currently on.
	CurrentURL(ctx context.Context) (string, error)

	// WaitElements blocks until at least one element matches loc and returns
	// all matches in document order. The wait is bounded by the context
	// deadline; expiry returns ETIMEOUT.
	WaitElements(ctx context.Context, loc Locator) ([]Element, error)

	// Close releases the browser. Calling Close more than once is a no-op.
	Close() error
}

// Element is a handle to a DOM element in a Session.
type Element interface {
	Text(ctx context.Context) (string, error)

	// Attribute returns the attribute value and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)

	Click(ctx context.Context) error

	// WaitElements is like Session.WaitElements but only searches the
	// element's descendants.
	WaitElements(ctx context.Context, loc Locator) ([]Element, error)
}
