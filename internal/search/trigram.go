// Package search ranks values against a free text query by trigram
// overlap, ignoring case and accents.
package search

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// minCoverage is the share of a query word's trigrams a value must contain.
const minCoverage = 0.4

// Match is a value that matched a query.
type Match[T any] struct {
	Value T
	Score float64
}

// Matcher searches a fixed set of values. The text of each value is
// normalized and split into trigrams once.
type Matcher[T any] struct {
	values   []T
	texts    []string
	trigrams []map[string]struct{}
}

// NewMatcher indexes values by the text returned by key.
func NewMatcher[T any](values []T, key func(T) string) *Matcher[T] {
	m := &Matcher[T]{
		values:   values,
		texts:    make([]string, len(values)),
		trigrams: make([]map[string]struct{}, len(values)),
	}
	for i, v := range values {
		text := Normalize(key(v))
		m.texts[i] = text
		m.trigrams[i] = trigrams(text)
	}
	return m
}

// Search returns the values matching every word of query, best first.
// Values with the same score keep their original order. An empty query
// matches everything with a zero score.
func (m *Matcher[T]) Search(query string) []Match[T] {
	words := strings.Fields(Normalize(query))
	if len(words) == 0 {
		all := make([]Match[T], len(m.values))
		for i, v := range m.values {
			all[i] = Match[T]{Value: v}
		}
		return all
	}

	wordTris := make([]map[string]struct{}, len(words))
	for i, w := range words {
		wordTris[i] = trigrams(w)
	}

	var matches []Match[T]
	for i := range m.values {
		if score := m.score(i, words, wordTris); score > 0 {
			matches = append(matches, Match[T]{Value: m.values[i], Score: score})
		}
	}
	slices.SortStableFunc(matches, func(a, b Match[T]) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return matches
}

// Filter returns the matching values, best first.
func (m *Matcher[T]) Filter(query string) []T {
	matches := m.Search(query)
	values := make([]T, len(matches))
	for i, match := range matches {
		values[i] = match.Value
	}
	return values
}

// score is zero unless every word matches.
func (m *Matcher[T]) score(idx int, words []string, wordTris []map[string]struct{}) float64 {
	text := m.texts[idx]
	total := 0.0

	for i, word := range words {
		// Words too short for a trigram need a substring match.
		if len([]rune(word)) <= 2 {
			if !strings.Contains(text, word) {
				return 0
			}
			total++
			continue
		}

		similarity := coverage(wordTris[i], m.trigrams[idx])
		if similarity < minCoverage {
			return 0
		}
		if strings.Contains(text, word) {
			similarity += 0.5
		}
		total += similarity
	}

	return total / float64(len(words))
}

// Normalize lowercases s and strips its accents, so "Café" matches "cafe".
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// trigrams returns the trigram set of s, padded so prefixes and suffixes
// count.
func trigrams(s string) map[string]struct{} {
	if s == "" {
		return nil
	}

	runes := []rune("  " + s + "  ")
	tris := make(map[string]struct{}, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		tri := string(runes[i : i+3])
		if strings.TrimSpace(tri) != "" {
			tris[tri] = struct{}{}
		}
	}
	return tris
}

// coverage is |query ∩ item| / |query|. Unlike Jaccard it does not
// penalize a short query against a long text.
func coverage(query, item map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	n := 0
	for tri := range query {
		if _, ok := item[tri]; ok {
			n++
		}
	}
	return float64(n) / float64(len(query))
}
