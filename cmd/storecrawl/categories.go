package main

import (
	"fmt"

	"github.com/fwojciec/storecrawl"
)

// Run executes the categories command.
func (c *CategoriesCmd) Run(deps *Dependencies) error {
	refs, err := deps.Discoverer.Discover(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: no categories: %s\n", storecrawl.ErrorMessage(err))
		return err
	}

	if len(refs) == 0 {
		fmt.Fprintln(deps.Stdout, "No categories found.")
		return nil
	}

	fmt.Fprintln(deps.Stdout, storecrawl.FormatCategories(refs))
	return nil
}
