package main

import (
	"fmt"

	"github.com/fwojciec/storecrawl"
	"github.com/fwojciec/storecrawl/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	crawler := deps.Crawler
	crawler.Limit = c.Limit
	crawler.WaitTimeout = c.WaitTimeout
	crawler.SettleDelay = c.Settle
	crawler.SessionOptions = storecrawl.DefaultSessionOptions(c.Headless)
	crawler.SessionOptions.Stealth = c.Stealth
	if c.FragmentPaging {
		crawler.Layout.PageURLFormat = storecrawl.FragmentPageURLFormat
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "  Crawling %d categories\n", event.Total)
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] %s: %d items\n",
				event.Completed, event.Total, event.Category.Name, event.Items)
		case crawl.ProgressSkipped:
			fmt.Fprintf(deps.Stderr, "  skip %s: already crawled\n", crawl.TruncateURL(event.Category.URL, 60))
		case crawl.ProgressFinished:
			// Results printed after the crawl completes
		}
	}

	results, err := crawler.Run(deps.Ctx, c.URL, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: no categories: %s\n", storecrawl.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No categories found.")
		return nil
	}

	if c.Full {
		fmt.Fprintln(deps.Stdout, storecrawl.FormatItems(results))
		return nil
	}
	fmt.Fprintln(deps.Stdout, storecrawl.FormatCounts(results))
	return nil
}
