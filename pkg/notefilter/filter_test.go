package notefilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	title, content string
	tags           []string
}

func fields(i item) (string, string, []string) { return i.title, i.content, i.tags }

var sample = []item{
	{"Groceries", "milk and EGGS", []string{"home"}},
	{"Go notes", "channels", []string{"go", "work"}},
	{"Meeting", "discuss eggs budget", []string{"work"}},
	{"Empty", "", nil},
}

func titles(items []item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.title)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"no criteria", Criteria{}, []string{"Groceries", "Go notes", "Meeting", "Empty"}},
		{"title match case-insensitive", Criteria{Search: "go"}, []string{"Go notes"}},
		{"content match case-insensitive", Criteria{Search: "eggs"}, []string{"Groceries", "Meeting"}},
		{"tag only", Criteria{Tag: "work"}, []string{"Go notes", "Meeting"}},
		{"search and tag", Criteria{Search: "EGGS", Tag: "work"}, []string{"Meeting"}},
		{"tag is exact", Criteria{Tag: "wor"}, []string{}},
		{"no match", Criteria{Search: "zebra"}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, titles(Apply(sample, tc.c, fields)))
		})
	}
}

func TestDistinctTags(t *testing.T) {
	got := DistinctTags([]string{"work", "go"}, nil, []string{"home", "work"})
	assert.Equal(t, []string{"go", "home", "work"}, got)
	assert.Equal(t, []string{}, DistinctTags())
}

func TestCriteriaActive(t *testing.T) {
	assert.False(t, Criteria{}.Active())
	assert.True(t, Criteria{Tag: "x"}.Active())
}
