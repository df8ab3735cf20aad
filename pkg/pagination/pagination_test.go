package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClampsParams(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)

	p = &PaginationParams{Page: 3, PerPage: 0}
	p.Validate()
	assert.Equal(t, 15, p.PerPage)
	assert.Equal(t, 30, p.Offset())
}

func TestOffsetSaturates(t *testing.T) {
	p := &PaginationParams{Page: math.MaxInt/100 + 2, PerPage: 100}
	p.Validate()

	assert.Equal(t, math.MaxInt, p.Offset())
	assert.Equal(t, 0, (&PaginationParams{Page: 0, PerPage: 10}).Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)

	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestNewPaginatedResultNeverNilItems(t *testing.T) {
	res := NewPaginatedResult[int](nil, NewPagination(1, 15, 0))

	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}
