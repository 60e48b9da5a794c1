package storecrawl

import (
	"fmt"
	"strings"
)

// FormatCategories formats categories one per line as name, tab, URL.
func FormatCategories(refs []CategoryRef) string {
	if len(refs) == 0 {
		return ""
	}

	lines := make([]string, 0, len(refs))
	for _, ref := range refs {
		lines = append(lines, ref.Name+"\t"+ref.URL)
	}
	return strings.Join(lines, "\n")
}

// FormatCounts formats one "name: count" line per result.
// Degraded results are annotated with the number of degradations.
func FormatCounts(results []*CategoryResult) string {
	if len(results) == 0 {
		return ""
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		line := fmt.Sprintf("%s: %d", r.Category.Name, len(r.Items))
		if n := len(r.Degraded); n > 0 {
			line += fmt.Sprintf(" (degraded: %d)", n)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatItems formats each result as a "## name" header followed by its
// item links, one per line. Results are separated by blank lines.
func FormatItems(results []*CategoryResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		header := r.Category.Name
		if header == "" {
			header = r.Category.URL
		}
		part := "## " + header
		if len(r.Items) > 0 {
			part += "\n" + strings.Join(r.Items, "\n")
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n\n")
}
