package core

import "strings"

// Range is an optional [From, To] date window. The zero value is the
// unfiltered range. Invariant: both bounds set or neither; a partial window
// is never represented.
type Range struct {
	From string
	To   string
}

// NormalizeRange builds the effective filter from two user-supplied bounds.
// The range is carried only when both bounds are non-empty; otherwise the
// result is unfiltered. Ordering is not validated here: an inverted window is
// passed through as-is and simply matches nothing downstream.
func NormalizeRange(from, to string) Range {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return Range{}
	}
	return Range{From: from, To: to}
}

// IsRanged reports whether the filter carries a concrete window.
func (r Range) IsRanged() bool {
	return r.From != "" && r.To != ""
}

// Key returns a stable cache key for the filter.
func (r Range) Key() string {
	if !r.IsRanged() {
		return "all"
	}
	return r.From + ".." + r.To
}
