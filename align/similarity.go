package align

import "strings"

// wordTokens lowercases and splits s into a slice of word tokens, used as
// the unit for Jaccard similarity. Punctuation is treated as a separator,
// not a character of the token.
func wordTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	default:
		return r > 127 // keep non-ASCII (accented, CJK, etc.) as word content
	}
}

// jaccardSimilarity scores two strings by word-token overlap: |A∩B|/|A∪B|.
// Symmetric, in [0,1], and 1 for identical non-empty strings, satisfying
// the property spec §4.4 pins (it does not mandate a specific algorithm).
func jaccardSimilarity(a, b string) float64 {
	ta, tb := wordTokens(a), wordTokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tb))
	for _, t := range tb {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 1
	}
	return float64(intersection) / float64(union)
}
