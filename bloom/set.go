// Package bloom provides an exact string set with a Bloom filter prefilter,
// used to remember the URLs a crawl has already seen.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Set remembers strings exactly. Lookups of strings that were never added
// are usually answered by the Bloom filter alone; a filter hit is confirmed
// against the exact set, so false positives never leak out.
// Set is not safe for concurrent use.
type Set struct {
	filter *bloom.BloomFilter
	items  map[string]struct{}
}

// NewSet creates a Set whose filter is sized for n expected items with the
// given false positive rate.
func NewSet(n uint, fpRate float64) *Set {
	return &Set{
		filter: bloom.NewWithEstimates(n, fpRate),
		items:  make(map[string]struct{}),
	}
}

// Add inserts item. Returns false if it was already present.
func (s *Set) Add(item string) bool {
	if s.filter.TestAndAddString(item) {
		if _, ok := s.items[item]; ok {
			return false
		}
	}
	s.items[item] = struct{}{}
	return true
}

// Has reports whether item was added.
func (s *Set) Has(item string) bool {
	if !s.filter.TestString(item) {
		return false
	}
	_, ok := s.items[item]
	return ok
}

// Len returns the number of items in the set.
func (s *Set) Len() int {
	return len(s.items)
}

// EstimatedCount returns the filter's estimate of the number of items.
func (s *Set) EstimatedCount() uint {
	return uint(s.filter.ApproximatedSize())
}
