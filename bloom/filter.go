// Package bloom tracks which category URLs a crawl run has already visited.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// DefaultFalsePositiveRate is used when a Filter is sized from a category count.
const DefaultFalsePositiveRate = 0.001

// Filter remembers visited category URLs.
//
// The Bloom filter screens lookups; its positives are confirmed against the
// exact set of recorded URLs, so Visit never reports a distinct URL as seen.
type Filter struct {
	f    *bloom.BloomFilter
	seen map[string]struct{}
}

// NewFilter creates a Filter sized for n expected URLs at fpRate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f:    bloom.NewWithEstimates(max(n, 1), fpRate),
		seen: make(map[string]struct{}, n),
	}
}

// ForCategories creates a Filter sized for a run over n categories.
func ForCategories(n int) *Filter {
	return NewFilter(uint(max(n, 16)), DefaultFalsePositiveRate)
}

// Visit records url and reports whether it had been recorded before.
func (f *Filter) Visit(url string) bool {
	if f.f.TestOrAddString(url) {
		if _, ok := f.seen[url]; ok {
			return true
		}
	}
	f.seen[url] = struct{}{}
	return false
}

// Len returns the number of distinct URLs recorded.
func (f *Filter) Len() int {
	return len(f.seen)
}
