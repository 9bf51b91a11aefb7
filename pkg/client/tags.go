package client

import (
	"regexp"
	"strings"
)

var (
	tagSpace   = regexp.MustCompile(`\s+`)
	tagInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// NormalizeTag lower-cases, joins words with '-' and drops anything outside [a-z0-9-].
func NormalizeTag(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = tagSpace.ReplaceAllString(t, "-")
	return tagInvalid.ReplaceAllString(t, "")
}

// AddTag appends the normalized tag unless it is empty or already present.
func AddTag(tags []string, raw string) ([]string, bool) {
	t := NormalizeTag(raw)
	if t == "" {
		return tags, false
	}
	for _, existing := range tags {
		if existing == t {
			return tags, false
		}
	}
	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, t), true
}

func RemoveTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// SuggestTags returns up to limit known tags containing the typed text
// that the note does not carry yet.
func SuggestTags(known, current []string, typed string, limit int) []string {
	if typed == "" {
		return nil
	}
	q := strings.ToLower(typed)
	have := make(map[string]struct{}, len(current))
	for _, t := range current {
		have[t] = struct{}{}
	}
	var out []string
	for _, t := range known {
		if _, ok := have[t]; ok || !strings.Contains(t, q) {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
