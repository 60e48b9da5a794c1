package crawl

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/storecrawl"
)

// Fingerprint hashes an item sequence with xxhash. Order matters.
func Fingerprint(links []storecrawl.ItemLink) uint64 {
	return xxhash.Sum64String(strings.Join(links, "\n"))
}

// Digest returns the hex form of Fingerprint, stored on CategoryResult.
func Digest(links []storecrawl.ItemLink) string {
	return fmt.Sprintf("%x", Fingerprint(links))
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}
