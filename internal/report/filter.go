// Package report holds the pure computations behind the list and analytics
// views: category filtering, amount ordering, aggregation into buckets and
// the derived statistics. Nothing here performs I/O or mutates its input.
package report

import (
	"cmp"
	"net/url"
	"slices"
	"strings"

	"fintrack/internal/core"
)

type SortOrder string

const (
	Unsorted   SortOrder = ""
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder maps unknown values to Unsorted.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case Ascending:
		return Ascending
	case Descending:
		return Descending
	}
	return Unsorted
}

// Filter is an immutable list-view filter. The zero value is the identity.
type Filter struct {
	Category     string
	SortByAmount SortOrder
}

// ParseFilter reads "category" and "sort" query parameters.
func ParseFilter(q url.Values) Filter {
	return Filter{
		Category:     strings.TrimSpace(q.Get("category")),
		SortByAmount: ParseSortOrder(q.Get("sort")),
	}
}

func (f Filter) WithCategory(c string) Filter {
	f.Category = c
	return f
}

func (f Filter) WithSort(o SortOrder) Filter {
	f.SortByAmount = o
	return f
}

// Reset returns the zero filter.
func (f Filter) Reset() Filter {
	return Filter{}
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Query encodes the filter back into query parameters, omitting empty values.
func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.SortByAmount != Unsorted {
		q.Set("sort", string(f.SortByAmount))
	}
	return q
}

// Apply returns a new slice holding the records that match f.Category
// (exact, case-sensitive) ordered by amount as f.SortByAmount asks.
// Ordering is stable, so Unsorted keeps the input order and equal
// amounts keep their relative order.
func Apply(records []core.Transaction, f Filter) []core.Transaction {
	out := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		if f.Category == "" || r.Category == f.Category {
			out = append(out, r)
		}
	}

	switch f.SortByAmount {
	case Ascending:
		slices.SortStableFunc(out, func(a, b core.Transaction) int {
			return cmp.Compare(a.Amount.Cents, b.Amount.Cents)
		})
	case Descending:
		slices.SortStableFunc(out, func(a, b core.Transaction) int {
			return cmp.Compare(b.Amount.Cents, a.Amount.Cents)
		})
	}
	return out
}
