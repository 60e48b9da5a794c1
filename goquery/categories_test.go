package goquery_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/storecrawl"
	"github.com/fwojciec/storecrawl/goquery"
	"github.com/fwojciec/storecrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// landingHTML mirrors the nesting of the Steam front page down to the
// category gutter.
const landingHTML = `<!DOCTYPE html>
<html>
<body>
<div class="responsive_page_frame with_header">
 <div class="responsive_page_content">
  <div class="responsive_page_template_content">
   <div class="home_page_body_ctn">
    <div class="home_page_content">
     <div class="home_page_gutter">
      <div class="home_page_gutter_block">
       <a class="gutter_item" href="/gift">Gift Cards</a>
      </div>
      <div class="home_page_gutter_block">
       <a class="gutter_item" href="/cat/new">
         New Releases
       </a>
       <a class="gutter_item" href="/cat/top">Top Sellers</a>
       <a class="other_item" href="/cat/ignored">Ignored</a>
       <a class="gutter_item" href="/cat/deal">Specials</a>
      </div>
     </div>
    </div>
   </div>
  </div>
 </div>
</div>
</body>
</html>`

func TestParseCategories(t *testing.T) {
	t.Parallel()

	t.Run("returns marked anchors of the container in document order", func(t *testing.T) {
		t.Parallel()

		refs, err := goquery.ParseCategories(landingHTML, storecrawl.DefaultLandingLayout())

		require.NoError(t, err)
		assert.Equal(t, []storecrawl.CategoryRef{
			{Name: "New Releases", URL: "/cat/new"},
			{Name: "Top Sellers", URL: "/cat/top"},
			{Name: "Specials", URL: "/cat/deal"},
		}, refs)
	})

	t.Run("keeps duplicate names", func(t *testing.T) {
		t.Parallel()

		html := `<div id="cats">
			<a class="gutter_item" href="/a">Games</a>
			<a class="gutter_item" href="/b">Games</a>
		</div>`
		layout := storecrawl.LandingLayout{ContainerSelector: "#cats", AnchorClass: "gutter_item"}

		refs, err := goquery.ParseCategories(html, layout)

		require.NoError(t, err)
		assert.Equal(t, []storecrawl.CategoryRef{
			{Name: "Games", URL: "/a"},
			{Name: "Games", URL: "/b"},
		}, refs)
	})

	t.Run("skips anchors without href", func(t *testing.T) {
		t.Parallel()

		html := `<div id="cats"><a class="gutter_item">Broken</a><a class="gutter_item" href="/ok">Ok</a></div>`
		layout := storecrawl.LandingLayout{ContainerSelector: "#cats", AnchorClass: "gutter_item"}

		refs, err := goquery.ParseCategories(html, layout)

		require.NoError(t, err)
		assert.Equal(t, []storecrawl.CategoryRef{{Name: "Ok", URL: "/ok"}}, refs)
	})

	t.Run("returns empty slice when container has no anchors", func(t *testing.T) {
		t.Parallel()

		html := `<div id="cats"></div>`
		layout := storecrawl.LandingLayout{ContainerSelector: "#cats", AnchorClass: "gutter_item"}

		refs, err := goquery.ParseCategories(html, layout)

		require.NoError(t, err)
		assert.Empty(t, refs)
	})

	t.Run("returns parse error when container is missing", func(t *testing.T) {
		t.Parallel()

		refs, err := goquery.ParseCategories(`<html><body><p>redesigned</p></body></html>`, storecrawl.DefaultLandingLayout())

		require.Error(t, err)
		assert.Nil(t, refs)
		assert.Equal(t, storecrawl.EPARSE, storecrawl.ErrorCode(err))
	})
}

func TestDiscoverer_Discover(t *testing.T) {
	t.Parallel()

	t.Run("parses fetched landing page", func(t *testing.T) {
		t.Parallel()

		var fetched string
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = url
				return landingHTML, nil
			},
		}

		d := goquery.NewDiscoverer(fetcher, storecrawl.DefaultLandingLayout())
		refs, err := d.Discover(context.Background(), "https://store.example.com")

		require.NoError(t, err)
		assert.Equal(t, "https://store.example.com", fetched)
		assert.Len(t, refs, 3)
		assert.Equal(t, "New Releases", refs[0].Name)
	})

	t.Run("propagates fetch error", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "", storecrawl.Errorf(storecrawl.EFETCH, "HTTP 500 for https://store.example.com")
			},
		}

		d := goquery.NewDiscoverer(fetcher, storecrawl.DefaultLandingLayout())
		refs, err := d.Discover(context.Background(), "https://store.example.com")

		require.Error(t, err)
		assert.Nil(t, refs)
		assert.Equal(t, storecrawl.EFETCH, storecrawl.ErrorCode(err))
	})

	t.Run("propagates context error from fetcher", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, _ string) (string, error) {
				return "", ctx.Err()
			},
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d := goquery.NewDiscoverer(fetcher, storecrawl.DefaultLandingLayout())
		_, err := d.Discover(ctx, "https://store.example.com")

		assert.True(t, errors.Is(err, context.Canceled))
	})
}
