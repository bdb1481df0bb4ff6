package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/spyder/bloom"
	"github.com/stretchr/testify/assert"
)

func TestSet_Add(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 0.01)

	assert.True(t, s.Add("https://example.com/reports/1.pdf"))
	assert.False(t, s.Add("https://example.com/reports/1.pdf"))
	assert.True(t, s.Add("https://example.com/reports/2.pdf"))
	assert.Equal(t, 2, s.Len())
}

func TestSet_Has(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 0.01)
	s.Add("https://example.com/reports/")

	assert.True(t, s.Has("https://example.com/reports/"))
	assert.False(t, s.Has("https://example.com/archive/"))
}

func TestSet_EstimatedCount(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(1000, 0.01)
	assert.Equal(t, uint(0), s.EstimatedCount())

	for i := range 3 {
		s.Add(fmt.Sprintf("https://example.com/page%d", i))
	}
	s.Add("https://example.com/page0")

	count := s.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

// A saturated filter reports false positives; the exact set must still
// accept every new item.
func TestSet_SaturatedFilterNeverDropsItems(t *testing.T) {
	t.Parallel()

	s := bloom.NewSet(10, 0.5)

	for i := range 2000 {
		assert.True(t, s.Add(fmt.Sprintf("https://example.com/doc/%d", i)))
	}
	assert.Equal(t, 2000, s.Len())
	assert.False(t, s.Has("https://example.com/doc/2000"))
}
