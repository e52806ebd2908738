package api

import (
	"net/url"
	"strconv"
)

// DefaultPageSize is the page size used by the issue and user lists
const DefaultPageSize = 10

// Page is a skip/limit window
type Page struct {
	Skip  int
	Limit int
}

// PageNumber returns the window for 1-based page n of the given size.
// Out of range values fall back to page 1 and DefaultPageSize.
func PageNumber(n, size int) Page {
	if n < 1 {
		n = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return Page{Skip: (n - 1) * size, Limit: size}
}

// Number returns the 1-based page number
func (p Page) Number() int {
	if p.Limit < 1 {
		return 1
	}
	return p.Skip/p.Limit + 1
}

// Next returns the following window
func (p Page) Next() Page {
	limit := p.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	return Page{Skip: p.Skip + limit, Limit: limit}
}

// Prev returns the preceding window, never before the first
func (p Page) Prev() Page {
	skip := p.Skip - p.Limit
	if skip < 0 {
		skip = 0
	}
	return Page{Skip: skip, Limit: p.Limit}
}

// Values encodes the window as skip/limit query parameters
func (p Page) Values() url.Values {
	v := url.Values{}
	v.Set("skip", strconv.Itoa(p.Skip))
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// TotalPages returns how many pages of limit items hold total items
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// HasMore reports whether a list without a total may have another page
func HasMore(got, limit int) bool {
	return limit > 0 && got == limit
}

// Page returns the window this list was fetched with
func (l IssueList) Page() Page {
	return Page{Skip: l.Skip, Limit: l.Limit}
}

// Pages returns the total page count
func (l IssueList) Pages() int {
	return TotalPages(l.Total, l.Limit)
}

// Range returns the 1-based bounds of "Showing from to to of total".
// Both are 0 for an empty list.
func (l IssueList) Range() (from, to int) {
	if l.Total == 0 || len(l.Items) == 0 {
		return 0, 0
	}
	return l.Skip + 1, l.Skip + len(l.Items)
}
