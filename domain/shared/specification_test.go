package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringFormIsDeterministic(t *testing.T) {
	build := func() *Specification {
		return NewSpecification().
			Where("sector = ?", "tech").
			Where("price > ?", 100).
			Include("Assets").
			OrderBy("ticker")
	}

	s1 := build()
	s2 := build()

	assert.Equal(t, s1.StringForm(), s2.StringForm(),
		"structurally equal specifications must serialize identically")
}

func TestStringFormEmptySpecIsAll(t *testing.T) {
	assert.Equal(t, "all", NewSpecification().StringForm())
}

func TestStringFormDistinguishesFilters(t *testing.T) {
	s1 := NewSpecification().Where("sector = ?", "tech")
	s2 := NewSpecification().Where("sector = ?", "energy")

	assert.NotEqual(t, s1.StringForm(), s2.StringForm())
}

func TestStringFormDistinguishesOrderingDirection(t *testing.T) {
	asc := NewSpecification().OrderBy("ticker")
	desc := NewSpecification().OrderByDesc("ticker")

	assert.NotEqual(t, asc.StringForm(), desc.StringForm())
}

func TestOrderingAscendingWinsWhenBothSet(t *testing.T) {
	// Setting both directions is a caller error; ascending takes precedence.
	s := NewSpecification().OrderBy("ticker").OrderByDesc("price")

	column, desc := s.Ordering()
	assert.Equal(t, "ticker", column)
	assert.False(t, desc)
}

func TestOrderingDescending(t *testing.T) {
	column, desc := NewSpecification().OrderByDesc("price").Ordering()
	assert.Equal(t, "price", column)
	assert.True(t, desc)
}
