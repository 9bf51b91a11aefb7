// Package notefilter holds the note list filtering used by both the API and
// the client: a case-insensitive search over title or content, combined with
// an optional exact tag.
package notefilter

import (
	"sort"
	"strings"
)

// Criteria is the filter state. Zero values match everything.
type Criteria struct {
	Search string
	Tag    string
}

// Active reports whether any criterion is set
func (c Criteria) Active() bool {
	return c.Search != "" || c.Tag != ""
}

// Match reports whether a note with the given fields passes the filter.
func (c Criteria) Match(title, content string, tags []string) bool {
	if c.Search != "" {
		q := strings.ToLower(c.Search)
		if !strings.Contains(strings.ToLower(title), q) && !strings.Contains(strings.ToLower(content), q) {
			return false
		}
	}
	if c.Tag != "" && !HasTag(tags, c.Tag) {
		return false
	}
	return true
}

// Apply keeps the items accepted by Match, preserving order.
// fields extracts title, content and tags from an item.
func Apply[T any](items []T, c Criteria, fields func(T) (string, string, []string)) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		title, content, tags := fields(it)
		if c.Match(title, content, tags) {
			out = append(out, it)
		}
	}
	return out
}

// HasTag is exact membership
func HasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DistinctTags returns the sorted union of all tag sets.
func DistinctTags(sets ...[]string) []string {
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, t := range set {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
