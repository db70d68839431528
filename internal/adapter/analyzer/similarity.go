package analyzer

import (
	"strings"
)

// Similarity returns the normalized edit-distance similarity of a and b in
// [0,1]. Comparison is case-insensitive and rune based; no other
// normalization is applied. Two empty strings are identical.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 1.0
	}
	dist := editDistance(ra, rb)
	return float64(maxLen-dist) / float64(maxLen)
}

// EditDistance returns the unit-cost Levenshtein distance between a and b,
// compared case-insensitively.
func EditDistance(a, b string) int {
	return editDistance([]rune(strings.ToLower(a)), []rune(strings.ToLower(b)))
}

// editDistance keeps a single DP row sized to the shorter input.
func editDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			up := row[j]
			row[j] = min(row[j]+1, row[j-1]+1, diag+cost)
			diag = up
		}
	}

	return row[len(b)]
}
