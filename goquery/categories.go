// Package goquery parses storefront landing pages with goquery.
package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/storecrawl"
)

// ParseCategories extracts category references from landing page HTML.
// It locates the first element matching layout.ContainerSelector and returns
// every anchor inside it carrying layout.AnchorClass, in document order.
//
// Returns EPARSE if the container is missing, which usually means the site
// markup changed.
func ParseCategories(html string, layout storecrawl.LandingLayout) ([]storecrawl.CategoryRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, storecrawl.Errorf(storecrawl.EPARSE, "failed to parse HTML: %v", err)
	}

	container := doc.Find(layout.ContainerSelector).First()
	if container.Length() == 0 {
		return nil, storecrawl.Errorf(storecrawl.EPARSE, "category container %q not found", layout.ContainerSelector)
	}

	return CategoriesIn(container, layout.AnchorClass), nil
}

// CategoriesIn returns the category anchors carrying class found under sel.
// Anchors without an href are skipped.
func CategoriesIn(sel *goquery.Selection, class string) []storecrawl.CategoryRef {
	refs := []storecrawl.CategoryRef{}
	sel.Find("a." + class).Each(func(_ int, a *goquery.Selection) {
		href, exists := a.Attr("href")
		if !exists {
			return
		}
		refs = append(refs, storecrawl.CategoryRef{
			Name: strings.TrimSpace(a.Text()),
			URL:  href,
		})
	})
	return refs
}

// Ensure Discoverer implements storecrawl.CategoryDiscoverer at compile time.
var _ storecrawl.CategoryDiscoverer = (*Discoverer)(nil)

// Discoverer finds categories by fetching the landing page and parsing it.
type Discoverer struct {
	fetcher storecrawl.Fetcher
	layout  storecrawl.LandingLayout
}

// NewDiscoverer creates a Discoverer that fetches with f and parses with layout.
func NewDiscoverer(f storecrawl.Fetcher, layout storecrawl.LandingLayout) *Discoverer {
	return &Discoverer{fetcher: f, layout: layout}
}

// Discover fetches landingURL and returns its categories.
func (d *Discoverer) Discover(ctx context.Context, landingURL string) ([]storecrawl.CategoryRef, error) {
	html, err := d.fetcher.Fetch(ctx, landingURL)
	if err != nil {
		return nil, err
	}
	return ParseCategories(html, d.layout)
}
