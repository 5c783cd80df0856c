// Package align locates an extraction's text inside its source chunk and
// reports a document-absolute character interval plus a status describing
// how confidently it was located.
package align

import (
	"strings"

	"github.com/avalon-data/langextract/types"
)

// Config controls alignment behavior.
type Config struct {
	CaseSensitive bool
	// FuzzyThreshold is the minimum similarity score ([0,1]) accepted for
	// a non-exact alignment. Defaults to 0.4 when zero.
	FuzzyThreshold float64
	// MaxSearchWindow bounds how many runes of the chunk are considered
	// during the fuzzy pass, since that comparison is O(n·m).
	MaxSearchWindow int
}

func (c Config) threshold() float64 {
	if c.FuzzyThreshold <= 0 {
		return 0.4
	}
	return c.FuzzyThreshold
}

func (c Config) searchWindow() int {
	if c.MaxSearchWindow <= 0 {
		return 8000
	}
	return c.MaxSearchWindow
}

// Align finds extractionText within chunkContent and returns the interval
// in document-absolute character coordinates (chunkOffset added in), plus
// how it was matched. A nil interval means NoMatch.
//
// Procedure, tried in order, first success wins:
//  1. Exact scan.
//  2. Case-insensitive exact scan, when Config.CaseSensitive is false.
//  3. Fuzzy token-window scan, bounded by MaxSearchWindow.
//  4. NoMatch.
func Align(extractionText, chunkContent string, chunkOffset int, cfg Config) (*types.CharInterval, types.AlignmentStatus) {
	if extractionText == "" || chunkContent == "" {
		return nil, types.AlignmentNoMatch
	}

	chunkRunes := []rune(chunkContent)
	extRunes := []rune(extractionText)

	if pos := runeIndex(chunkRunes, extRunes); pos != -1 {
		return interval(chunkOffset, pos, pos+len(extRunes)), types.AlignmentExactMatch
	}

	if !cfg.CaseSensitive {
		lowerChunk := []rune(strings.ToLower(chunkContent))
		lowerExt := []rune(strings.ToLower(extractionText))
		if pos := runeIndex(lowerChunk, lowerExt); pos != -1 {
			// Use the lowercase match's position, original-case span.
			return interval(chunkOffset, pos, pos+len(extRunes)), types.AlignmentExactMatch
		}
	}

	return fuzzyAlign(extractionText, chunkContent, chunkOffset, cfg)
}

func interval(chunkOffset, start, end int) *types.CharInterval {
	return &types.CharInterval{Start: chunkOffset + start, End: chunkOffset + end}
}

// runeIndex is strings.Index for rune slices, so positions are Unicode
// code-point offsets rather than byte offsets.
func runeIndex(haystack, needle []rune) int {
	n, m := len(haystack), len(needle)
	if m == 0 || m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if runesEqual(haystack[i:i+m], needle) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type positionedToken struct {
	start, end int // rune offsets within the (possibly truncated) chunk
}

func tokenizeWithPositions(runes []rune) []positionedToken {
	var tokens []positionedToken
	i := 0
	for i < len(runes) {
		if !isWordRune(runes[i]) {
			i++
			continue
		}
		j := i
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		tokens = append(tokens, positionedToken{start: i, end: j})
		i = j
	}
	return tokens
}

// fuzzyAlign slides a window, measured in tokens, across the chunk and
// keeps the best-scoring span. Window sizes near the query's own token
// count are tried so a span missing or adding a word can still be
// classified as Lesser/GreaterMatch instead of being scored only at the
// query's exact token length.
func fuzzyAlign(extractionText, chunkContent string, chunkOffset int, cfg Config) (*types.CharInterval, types.AlignmentStatus) {
	chunkRunes := []rune(chunkContent)
	if len(chunkRunes) > cfg.searchWindow() {
		chunkRunes = chunkRunes[:cfg.searchWindow()]
	}

	queryTokens := wordTokens(extractionText)
	if len(queryTokens) == 0 {
		return nil, types.AlignmentNoMatch
	}

	chunkTokens := tokenizeWithPositions(chunkRunes)
	if len(chunkTokens) == 0 {
		return nil, types.AlignmentNoMatch
	}

	candidateLens := candidateWindowLens(len(queryTokens), len(chunkTokens))

	bestScore := -1.0
	bestStart, bestEnd := -1, -1
	for _, winLen := range candidateLens {
		for start := 0; start+winLen <= len(chunkTokens); start++ {
			window := chunkTokens[start : start+winLen]
			windowStart, windowEnd := window[0].start, window[len(window)-1].end
			score := jaccardSimilarity(extractionText, string(chunkRunes[windowStart:windowEnd]))
			if score > bestScore {
				bestScore = score
				bestStart = windowStart
				bestEnd = windowEnd
			}
		}
	}

	if bestScore < cfg.threshold() {
		return nil, types.AlignmentNoMatch
	}

	matched := string(chunkRunes[bestStart:bestEnd])
	status := classifyFuzzyMatch(bestScore, matched, extractionText)
	return interval(chunkOffset, bestStart, bestEnd), status
}

func classifyFuzzyMatch(score float64, matched, extractionText string) types.AlignmentStatus {
	const exactTokenMatch = 1.0
	if score >= exactTokenMatch {
		return types.AlignmentFuzzyMatch
	}

	windowTokens := wordTokens(matched)
	queryTokens := wordTokens(extractionText)
	switch {
	case len(windowTokens) < len(queryTokens) && isTokenSubset(windowTokens, queryTokens):
		return types.AlignmentLesserMatch
	case len(windowTokens) > len(queryTokens) && isTokenSubset(queryTokens, windowTokens):
		return types.AlignmentGreaterMatch
	default:
		return types.AlignmentFuzzyMatch
	}
}

// isTokenSubset reports whether every token in sub also occurs in super.
func isTokenSubset(sub, super []string) bool {
	set := make(map[string]struct{}, len(super))
	for _, t := range super {
		set[t] = struct{}{}
	}
	for _, t := range sub {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func candidateWindowLens(queryLen, maxLen int) []int {
	lens := []int{queryLen}
	if queryLen > 1 {
		lens = append(lens, queryLen-1)
	}
	if queryLen+1 <= maxLen {
		lens = append(lens, queryLen+1)
	}
	return lens
}

