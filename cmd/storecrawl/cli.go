package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/storecrawl"
	"github.com/fwojciec/storecrawl/crawl"
)

// DefaultStoreURL is the landing page crawled when no URL is given.
const DefaultStoreURL = "https://store.steampowered.com"

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	Discoverer storecrawl.CategoryDiscoverer
	Crawler    *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug detail to stderr"`

	Categories CategoriesCmd `cmd:"" help:"List categories found on the landing page"`
	Crawl      CrawlCmd      `cmd:"" help:"Collect item links from each category"`
}

// DiscoveryFlags configure how the landing page is fetched.
type DiscoveryFlags struct {
	Discoverer   string        `default:"http" enum:"http,colly,rod" help:"Landing page fetcher (http, colly, rod)"`
	FetchTimeout time.Duration `default:"10s" help:"Landing page request timeout"`
}

// CategoriesCmd is the "categories" subcommand.
type CategoriesCmd struct {
	URL string `arg:"" optional:"" default:"${store_url}" help:"Store landing page URL"`

	DiscoveryFlags `embed:""`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL string `arg:"" optional:"" default:"${store_url}" help:"Store landing page URL"`

	DiscoveryFlags `embed:""`

	Limit          int           `short:"n" default:"1" help:"Number of categories to crawl (0 for all)"`
	Headless       bool          `default:"true" negatable:"" help:"Run the browser without a window"`
	Driver         string        `default:"rod" enum:"rod,chromedp" help:"Browser automation driver (rod, chromedp)"`
	WaitTimeout    time.Duration `default:"5s" help:"Bound on each wait for page elements"`
	Settle         time.Duration `default:"2s" help:"Upper bound on waiting for a listing to change after paging"`
	Stealth        bool          `help:"Apply anti-detection patches (rod only)"`
	FragmentPaging bool          `help:"Page by navigating to fragment URLs instead of clicking next"`
	Full           bool          `help:"Print every item link instead of counts"`
}
