// Package listing filters and orders items for the search pages.
package listing

import (
	"sort"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// TypeAll disables the type filter.
const TypeAll = "all"

// Filter selects items for display.
type Filter struct {
	Type      string // "", "all", "lost" or "found"
	Query     string
	WithImage bool

	// SearchContact includes the contact field in the query match.
	SearchContact bool
}

// Match reports whether it passes the filter.
func (f Filter) Match(it model.Item) bool {
	if f.Type != "" && f.Type != TypeAll && it.Type != f.Type {
		return false
	}
	if f.WithImage && it.ImageURL == "" {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}

	fields := []string{it.Name, it.Description, it.Location}
	if f.SearchContact {
		fields = append(fields, it.Contact)
	}
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// Apply returns the items that pass the filter, in input order.
func (f Filter) Apply(items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// SortTime returns the sort key of an item in milliseconds: CreatedAt, else
// the parsed Date, else zero.
func SortTime(it model.Item) int64 {
	if it.CreatedAt != 0 {
		return it.CreatedAt
	}
	if it.Date != "" {
		if t, err := time.Parse(model.DateLayout, it.Date); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// SortNewestFirst returns a copy of items ordered by SortTime, newest first.
func SortNewestFirst(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return SortTime(out[i]) > SortTime(out[j])
	})
	return out
}
