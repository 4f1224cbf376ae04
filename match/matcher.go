// Package match provides pluggable string similarity scoring used to select
// the best candidate among lookup results: Levenshtein-based title matching
// and fuzzy author-name comparison.
package match

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Matcher scores candidate strings against a target and picks the best one.
// Implementations must be safe for concurrent use.
type Matcher interface {
	// Best returns the index of the best-matching candidate and its
	// similarity score in [0, 1]. Returns index -1 when candidates is empty.
	Best(target string, candidates []string) (int, float64)
}

// TitleMatcher scores titles by normalized Levenshtein similarity,
// case-insensitively. The zero value is ready to use.
type TitleMatcher struct{}

// Compile-time check that TitleMatcher implements Matcher.
var _ Matcher = TitleMatcher{}

// Best implements Matcher.
func (TitleMatcher) Best(target string, candidates []string) (int, float64) {
	bestIdx := -1
	bestScore := 0.0
	for i, candidate := range candidates {
		if score := Similarity(target, candidate); score > bestScore || bestIdx < 0 {
			bestIdx = i
			bestScore = score
		}
	}
	return bestIdx, bestScore
}

// Similarity returns the normalized Levenshtein similarity of two strings in
// [0, 1]: 1 minus edit distance divided by the longer length. Comparison is
// case-insensitive. Two empty strings are identical (1.0).
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
