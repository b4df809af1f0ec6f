// Package paging provides the paginated-collection envelope every listing
// endpoint returns.
package paging

import (
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// PagedResult wraps one page of a listing together with its position in the
// full result set. TotalPages, HasPrevious and HasNext are derived at
// construction and never stored independently, so they cannot drift from the
// counts they are computed from.
type PagedResult[T any] struct {
	Items       []T  `json:"items"`
	TotalCount  int  `json:"totalCount"`
	PageNumber  int  `json:"pageNumber"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// New builds a PagedResult from a page of items and the listing totals.
//
// Pure mapping: callers must validate pageNumber >= 1 and pageSize >= 1
// upstream (see ParseParams); New does not silently correct invalid input.
// When totalCount is 0, TotalPages is 0 and both navigation flags are false
// regardless of pageNumber.
func New[T any](items []T, totalCount, pageNumber, pageSize int) PagedResult[T] {
	totalPages := 0
	if totalCount > 0 && pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	return PagedResult[T]{
		Items:       items,
		TotalCount:  totalCount,
		PageNumber:  pageNumber,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasPrevious: totalCount > 0 && pageNumber > 1,
		HasNext:     pageNumber < totalPages,
	}
}

// Params carries validated pagination inputs for list queries.
type Params struct {
	Page int
	Size int
}

// Offset returns the zero-based row offset for SQL queries.
func (p Params) Offset() int { return (p.Page - 1) * p.Size }

// ParseParams reads page/pageSize query values, applying defaults and
// clamping to valid ranges. Clamping lives here, upstream of New, so the
// envelope constructor stays a pure function.
func ParseParams(q url.Values) Params {
	page := atoiDefault(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	size := atoiDefault(q.Get("pageSize"), DefaultPageSize)
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Params{Page: page, Size: size}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
