package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(s string) string { return s }

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello", "hello"},
		{"Café", "cafe"},
		{"Sigur Rós", "sigur ros"},
		{"Motörhead", "motorhead"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestTrigrams(t *testing.T) {
	assert.Nil(t, trigrams(""))

	tris := trigrams("ab")
	for _, want := range []string{"  a", " ab", "ab ", "b  "} {
		assert.Contains(t, tris, want)
	}
	assert.Len(t, tris, 4)
}

func TestCoverage(t *testing.T) {
	set := func(tris ...string) map[string]struct{} {
		m := make(map[string]struct{}, len(tris))
		for _, tri := range tris {
			m[tri] = struct{}{}
		}
		return m
	}

	assert.InDelta(t, 0.0, coverage(nil, set("abc")), 1e-9)
	assert.InDelta(t, 1.0, coverage(set("abc"), set("abc", "bcd")), 1e-9)
	assert.InDelta(t, 0.5, coverage(set("abc", "xyz"), set("abc")), 1e-9)
}

func TestSearch_EmptyQueryKeepsOrder(t *testing.T) {
	m := NewMatcher([]string{"b", "a", "c"}, identity)

	assert.Equal(t, []string{"b", "a", "c"}, m.Filter("   "))
}

func TestSearch_AllWordsMustMatch(t *testing.T) {
	m := NewMatcher([]string{
		"Radiohead - OK Computer",
		"Radiohead - Kid A",
		"Portishead - Dummy",
	}, identity)

	assert.Equal(t, []string{"Radiohead - Kid A"}, m.Filter("radiohead kid"))
	assert.Empty(t, m.Filter("radiohead dummy"))
}

func TestSearch_AccentsAndCase(t *testing.T) {
	m := NewMatcher([]string{"Sigur Rós - Ágætis byrjun", "Sigrid - Sucker Punch"}, identity)

	got := m.Filter("SIGUR ROS")

	require.Len(t, got, 1)
	assert.Equal(t, "Sigur Rós - Ágætis byrjun", got[0])
}

func TestSearch_ShortWordsUseSubstring(t *testing.T) {
	m := NewMatcher([]string{"Kid A", "Amnesiac"}, identity)

	assert.Equal(t, []string{"Kid A", "Amnesiac"}, m.Filter("a"))
	assert.Empty(t, m.Filter("zz"))
}

func TestSearch_BestFirst(t *testing.T) {
	type track struct{ title string }
	m := NewMatcher([]track{{"Paranoid Android Live"}, {"Android"}, {"Paranoid"}}, func(t track) string { return t.title })

	matches := m.Search("android")

	require.Len(t, matches, 2)
	assert.Equal(t, "Android", matches[0].Value.title)
	assert.Equal(t, "Paranoid Android Live", matches[1].Value.title)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}
