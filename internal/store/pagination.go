package store

import (
	"math"
	"strconv"
	"strings"
)

// Pagination defaults.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// PageParams contains page-number pagination request parameters.
type PageParams struct {
	Page    int // 1-based page number
	PerPage int // Items per page
}

// Page contains one page of results and its metadata.
type Page[T any] struct {
	Items        []T
	TotalPages   int
	CurrentPage  int
	TotalEntries int
}

// DefaultPageParams returns page 1 with the default page size.
func DefaultPageParams() PageParams {
	return PageParams{
		Page:    DefaultPage,
		PerPage: DefaultPerPage,
	}
}

// ParsePageParams parses raw query values. Missing, non-numeric and
// non-positive values fall back to the defaults. There is no upper bound on
// PerPage; callers that want one use Cap.
func ParsePageParams(page, perPage string) PageParams {
	p := DefaultPageParams()
	if n, ok := parsePositive(page); ok {
		p.Page = n
	}
	if n, ok := parsePositive(perPage); ok {
		p.PerPage = n
	}
	return p
}

// Validate checks and corrects pagination parameters.
func (p *PageParams) Validate() {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
}

// Cap limits PerPage to limit. A non-positive limit leaves PerPage unbounded.
func (p PageParams) Cap(limit int) PageParams {
	if limit > 0 && p.PerPage > limit {
		p.PerPage = limit
	}
	return p
}

// Offset returns the number of rows to skip. It saturates instead of
// overflowing for absurd page numbers.
func (p PageParams) Offset() int {
	if p.Page <= 1 || p.PerPage <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}

// Limit returns the number of rows to fetch.
func (p PageParams) Limit() int {
	return p.PerPage
}

// TotalPages returns ceil(total / PerPage), or 0 when total is 0.
func (p PageParams) TotalPages(total int) int {
	if total <= 0 || p.PerPage <= 0 {
		return 0
	}
	return (total-1)/p.PerPage + 1
}

// NewPage assembles a page from already-sliced items and the full result count.
// CurrentPage is never clamped: a page past the end has no items but keeps the
// requested number.
func NewPage[T any](items []T, params PageParams, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:        items,
		TotalPages:   params.TotalPages(total),
		CurrentPage:  params.Page,
		TotalEntries: total,
	}
}

// Paginate slices an in-memory result set to the requested page.
func Paginate[T any](all []T, params PageParams) Page[T] {
	params.Validate()
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if params.PerPage < end-start {
		end = start + params.PerPage
	}
	items := make([]T, end-start)
	copy(items, all[start:end])
	return NewPage(items, params, len(all))
}

// MapPage converts the items of a page, keeping its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, len(p.Items))
	for i, it := range p.Items {
		items[i] = fn(it)
	}
	return Page[U]{
		Items:        items,
		TotalPages:   p.TotalPages,
		CurrentPage:  p.CurrentPage,
		TotalEntries: p.TotalEntries,
	}
}

func parsePositive(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
