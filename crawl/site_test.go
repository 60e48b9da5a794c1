package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/storecrawl"
	"github.com/fwojciec/storecrawl/mock"
)

// fakeSite is an in-memory paginated category listing shaped like the
// default listing layout. It implements storecrawl.Session.
type fakeSite struct {
	categoryURL string
	pages       [][]string

	// labels overrides the page link texts; nil derives "1".."N".
	labels []string
	// failPages lists page indexes whose item list never renders.
	failPages map[int]bool
	// lateRender counts, per page index, item list waits that time out
	// before the list shows up.
	lateRender map[int]int
	// staleReads is how many item list reads after a click still show the
	// previous page.
	staleReads int
	// hangReads makes element text and attribute reads block until their
	// context ends.
	hangReads bool

	noPagination    bool
	noPageLinkClass bool
	noNext          bool
	navigateErr     error

	url         string
	current     int
	navigations []string
	clicks      int
	itemWaits   int
	closes      int

	previous int
	stale    int
}

func newFakeSite(categoryURL string, pages ...[]string) *fakeSite {
	return &fakeSite{
		categoryURL: categoryURL,
		pages:       pages,
		url:         "about:blank",
	}
}

func (s *fakeSite) opener() *mock.SessionOpener {
	return &mock.SessionOpener{
		OpenFn: func(_ context.Context, _ storecrawl.SessionOptions) (storecrawl.Session, error) {
			return s, nil
		},
	}
}

func (s *fakeSite) Navigate(_ context.Context, url string) error {
	s.navigations = append(s.navigations, url)
	if s.navigateErr != nil {
		return s.navigateErr
	}
	s.url = url
	s.current = 0
	s.stale = 0
	if rest, ok := strings.CutPrefix(url, s.categoryURL+"#p="); ok {
		_, _ = fmt.Sscanf(rest, "%d", &s.current)
	}
	return nil
}

func (s *fakeSite) CurrentURL(_ context.Context) (string, error) {
	return s.url, nil
}

func (s *fakeSite) onCategory() bool {
	return strings.HasPrefix(s.url, s.categoryURL)
}

func (s *fakeSite) WaitElements(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
	layout := storecrawl.DefaultListingLayout()
	switch {
	case !s.onCategory():
		return timeout(ctx, loc)
	case loc == storecrawl.ID(layout.PaginationID):
		if s.noPagination {
			return timeout(ctx, loc)
		}
		return []storecrawl.Element{s.pagination()}, nil
	case loc == storecrawl.ID(layout.ItemListID):
		s.itemWaits++
		if s.failPages[s.current] {
			return timeout(ctx, loc)
		}
		if s.lateRender[s.current] > 0 {
			s.lateRender[s.current]--
			return timeout(ctx, loc)
		}
		page := s.current
		if s.stale > 0 {
			s.stale--
			page = s.previous
		}
		return []storecrawl.Element{s.itemList(page)}, nil
	case loc == storecrawl.ID(layout.NextID):
		if s.noNext {
			return timeout(ctx, loc)
		}
		return []storecrawl.Element{s.nextButton()}, nil
	}
	return timeout(ctx, loc)
}

func (s *fakeSite) Close() error {
	s.closes++
	return nil
}

func (s *fakeSite) pagination() storecrawl.Element {
	labels := s.labels
	if labels == nil {
		for i := range s.pages {
			labels = append(labels, fmt.Sprint(i+1))
		}
	}
	links := make([]storecrawl.Element, 0, len(labels))
	for _, label := range labels {
		if s.hangReads {
			links = append(links, hangingElement())
			continue
		}
		links = append(links, textElement(label))
	}
	layout := storecrawl.DefaultListingLayout()

	return &mock.Element{
		WaitElementsFn: func(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
			switch {
			case loc == storecrawl.Class(layout.PageLinkClass) && !s.noPageLinkClass && len(links) > 0:
				return links, nil
			case loc == storecrawl.Tag("a") && len(links) > 0:
				return links, nil
			}
			return timeout(ctx, loc)
		},
	}
}

func (s *fakeSite) itemList(page int) storecrawl.Element {
	return &mock.Element{
		WaitElementsFn: func(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
			if loc != storecrawl.Class(storecrawl.DefaultListingLayout().ItemClass) || len(s.pages[page]) == 0 {
				return timeout(ctx, loc)
			}
			items := make([]storecrawl.Element, 0, len(s.pages[page]))
			for _, href := range s.pages[page] {
				if s.hangReads {
					items = append(items, hangingElement())
					continue
				}
				items = append(items, hrefElement(href))
			}
			return items, nil
		},
	}
}

func (s *fakeSite) nextButton() storecrawl.Element {
	return &mock.Element{
		ClickFn: func(_ context.Context) error {
			s.clicks++
			s.previous = s.current
			s.stale = s.staleReads
			if s.current < len(s.pages)-1 {
				s.current++
			}
			return nil
		},
	}
}

func textElement(text string) storecrawl.Element {
	return &mock.Element{
		TextFn: func(_ context.Context) (string, error) {
			return text, nil
		},
	}
}

// hrefElement returns an item; an empty href means the attribute is absent.
func hrefElement(href string) storecrawl.Element {
	return &mock.Element{
		AttributeFn: func(_ context.Context, name string) (string, bool, error) {
			if name != "href" || href == "" {
				return "", false, nil
			}
			return href, true, nil
		},
	}
}

// hangingElement never answers a read before its context ends.
func hangingElement() storecrawl.Element {
	return &mock.Element{
		TextFn: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
		AttributeFn: func(ctx context.Context, _ string) (string, bool, error) {
			<-ctx.Done()
			return "", false, ctx.Err()
		},
	}
}

func timeout(ctx context.Context, loc storecrawl.Locator) ([]storecrawl.Element, error) {
	<-ctx.Done()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, storecrawl.Errorf(storecrawl.ETIMEOUT, "waiting for %s", loc)
	}
	return nil, ctx.Err()
}
