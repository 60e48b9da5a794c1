package storecrawl

import "context"

// CategoryRef identifies a storefront category by its display name and
// listing URL. Names are not guaranteed to be unique on the source page.
type CategoryRef struct {
	Name string
	URL  string
}

// ItemLink is an absolute or site-relative URL identifying a listed item.
type ItemLink = string

// CategoryResult is the outcome of paginating through one category.
type CategoryResult struct {
	Category CategoryRef
	Items    []ItemLink

	// Pages is the page count detected at the start of the run.
	Pages int

	// Degraded holds the reasons sub-operations fell back to empty values.
	// A category can be degraded and still carry items from healthy pages.
	Degraded []error

	// Digest is a fingerprint of Items, stable across runs with equal results.
	Digest string
}

// CategoryDiscoverer extracts the ordered list of categories from a
// storefront landing page.
type CategoryDiscoverer interface {
	// Discover fetches landingURL and returns the categories found in
	// document order. Returns EFETCH if the page cannot be retrieved and
	// EPARSE if the category container is missing from the markup.
	Discover(ctx context.Context, landingURL string) ([]CategoryRef, error)
}

// LandingLayout describes where categories live on the landing page.
type LandingLayout struct {
	// ContainerSelector is a CSS selector for the block holding the category links.
	ContainerSelector string

	// AnchorClass marks the category anchors inside the container.
	AnchorClass string
}

// DefaultLandingLayout returns the layout of the Steam store front page.
func DefaultLandingLayout() LandingLayout {
	return LandingLayout{
		ContainerSelector: "body > div.responsive_page_frame.with_header > " +
			"div.responsive_page_content > div.responsive_page_template_content > " +
			"div.home_page_body_ctn > div.home_page_content > " +
			"div.home_page_gutter > div:nth-child(2)",
		AnchorClass: "gutter_item",
	}
}

// ListingLayout describes the DOM of a paginated category listing.
type ListingLayout struct {
	// PaginationID is the id of the element holding the page links.
	PaginationID string

	// PageLinkClass marks individual page links. When it goes stale the
	// page links are located by the generic "a" tag instead.
	PageLinkClass string

	// ItemListID is the id of the element holding the listed items.
	ItemListID string

	// ItemClass marks each listed item; the item link is its href.
	ItemClass string

	// NextID is the id of the "next page" control.
	NextID string

	// PageURLFormat, when set, is appended to the category URL with the
	// zero-based page index to reach a page directly instead of clicking NextID.
	PageURLFormat string
}

// DefaultListingLayout returns the layout of Steam's "New Releases" tab.
func DefaultListingLayout() ListingLayout {
	return ListingLayout{
		PaginationID:  "NewReleases_links",
		PageLinkClass: "paged_items_paging_pagelink",
		ItemListID:    "NewReleasesRows",
		ItemClass:     "tab_item",
		NextID:        "NewReleases_btn_next",
	}
}

// FragmentPageURLFormat reaches "New Releases" pages through the URL fragment.
const FragmentPageURLFormat = "#p=%d&tab=NewReleases"
