package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag(t *testing.T) {
	cases := map[string]string{
		"  Work ":        "work",
		"Side Project":   "side-project",
		"a  \t b":        "a-b",
		"C++ & Go!":      "c--go",
		"ünïcode":        "ncode",
		"!!!":            "",
		"already-normal": "already-normal",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTag(in), in)
	}
}

func TestAddRemoveTag(t *testing.T) {
	tags, added := AddTag([]string{"work"}, " Home ")
	assert.True(t, added)
	assert.Equal(t, []string{"work", "home"}, tags)

	_, added = AddTag(tags, "WORK")
	assert.False(t, added)
	_, added = AddTag(tags, "   ")
	assert.False(t, added)

	assert.Equal(t, []string{"home"}, RemoveTag(tags, "work"))
}

func TestSuggestTags(t *testing.T) {
	known := []string{"home", "homework", "work", "workout"}
	assert.Equal(t, []string{"homework", "work"}, SuggestTags(known, []string{"workout"}, "WOR", 5))
	assert.Equal(t, []string{"homework"}, SuggestTags(known, nil, "wor", 1))
	assert.Nil(t, SuggestTags(known, nil, "", 5))
}
