// Package pagination extracts limit/offset paging from query strings.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is used when no limit is supplied.
	DefaultLimit = 20
	// MaxLimit caps the page size a caller can request.
	MaxLimit = 100
)

// Params holds paging parameters extracted from query strings.
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DefaultParams returns the default page.
func DefaultParams() Params {
	return Params{Limit: DefaultLimit}
}

// FromRequest extracts limit and offset from an HTTP request. Out-of-range
// values fall back to defaults rather than erroring.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			if v > MaxLimit {
				v = MaxLimit
			}
			p.Limit = v
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Offset = v
		}
	}

	return p
}

// Result wraps a paginated list response.
type Result[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewResult creates a paginated result. A nil slice is rendered as an empty
// JSON array, not null.
func NewResult[T any](items []T, total int, params Params) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:  items,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
}
