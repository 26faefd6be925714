// Package score contains the pure field scorers used by the matching engine.
// Every function is deterministic, never fails, and returns 0 on missing or
// unparsable input rather than signalling an error: absent data is "no
// signal", not a mismatch.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// Name returns a 0-100 similarity between two names. Inputs are normalized
// (trimmed, case-folded, inner whitespace collapsed); equal normalized strings
// score 100, including two blank names. The engine rejects blank queries up
// front so that quirk never surfaces. Otherwise the score is the Levenshtein
// distance scaled by the longer input.
func Name(a, b string) int {
	a = Normalize(a)
	b = Normalize(b)
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	distance := levenshtein.ComputeDistance(a, b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	s := int(math.Round((1 - float64(distance)/float64(maxLen)) * 100))
	if s < 0 {
		return 0
	}
	return s
}

// Normalize lowercases, trims, and collapses inner whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Date compares two ISO dates: 100 when year, month, and day all match, 50
// when only the year matches, 0 otherwise. Missing or unparsable dates score
// 0 because many list entries only carry a partial birth date.
func Date(a, b string) int {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	if !okA || !okB {
		return 0
	}
	if ta.Year() != tb.Year() {
		return 0
	}
	if ta.Month() == tb.Month() && ta.Day() == tb.Day() {
		return 100
	}
	return 50
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Country is a binary case-insensitive ISO code comparison; 0 when either
// side is empty.
func Country(a, b string) int {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	return 0
}
