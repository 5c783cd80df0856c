// Package chunker splits documents into overlapping-free text windows for
// the annotation pipeline, preserving exact Unicode code-point offsets into
// the source so extractions can later be aligned back against the original.
package chunker

import "strings"

// Chunk is a contiguous slice of a source document. Content is always the
// literal substring text[Offset:Offset+Length] in code points, never a
// reconstruction, so alignment math downstream can trust it exactly.
type Chunk struct {
	Content string
	Offset  int
	Length  int
	Index   int
}

// Config controls how a document is split.
type Config struct {
	// MaxCharBuffer is the maximum number of Unicode code points a chunk
	// may contain, except for a single sentence longer than that, which
	// is kept whole as one chunk (and, in text with no sentence or
	// whitespace boundary at all, a single oversized token).
	MaxCharBuffer int
}

// Chunker splits text into Chunks honoring Config.
type Chunker struct {
	maxCharBuffer int
}

// New builds a Chunker from cfg. A non-positive MaxCharBuffer falls back to
// a conservative default.
func New(cfg Config) *Chunker {
	max := cfg.MaxCharBuffer
	if max <= 0 {
		max = 4000
	}
	return &Chunker{maxCharBuffer: max}
}

// boundaryKind ranks candidate cut points from most to least preferred.
type boundaryKind int

const (
	boundaryParagraph boundaryKind = iota
	boundarySentence
	boundaryLine
	boundaryWhitespace
)

type boundary struct {
	pos  int
	kind boundaryKind
}

// abbreviations are short tokens that precede a period without ending a
// sentence; guards against cutting "Dr. Smith" into two chunks.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "vs": true, "etc": true, "approx": true,
	"e.g": true, "i.e": true, "st": true, "mt": true, "ft": true,
	"no": true, "vol": true, "fig": true, "inc": true, "co": true,
}

// Chunk splits text into non-overlapping windows of at most maxCharBuffer
// code points, preferring to cut at paragraph breaks, then sentence
// boundaries, then line breaks, then any whitespace. A sentence longer
// than maxCharBuffer is emitted whole as one chunk; line and whitespace
// cuts are only used where no sentence or paragraph boundary lies ahead.
// It never cuts inside a token. Pure-whitespace gaps between chunks are dropped, but every
// non-whitespace character is covered by exactly one chunk. Empty input
// yields no chunks.
func (c *Chunker) Chunk(text string) []Chunk {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	bounds := findBoundaries(runes)

	var chunks []Chunk
	cursor := 0
	for cursor < n {
		end := c.nextCut(runes, bounds, cursor, n)
		start, stop := trimRuneRange(runes, cursor, end)
		if stop > start {
			chunks = append(chunks, Chunk{
				Content: string(runes[start:stop]),
				Offset:  start,
				Length:  stop - start,
				Index:   len(chunks),
			})
		}
		cursor = end
	}
	return chunks
}

// nextCut picks the end of the next chunk starting at cursor.
func (c *Chunker) nextCut(runes []rune, bounds []boundary, cursor, n int) int {
	limit := cursor + c.maxCharBuffer
	if limit >= n {
		return n
	}

	best := -1
	bestKind := boundaryWhitespace + 1
	for _, b := range bounds {
		if b.pos <= cursor || b.pos > limit {
			continue
		}
		if b.kind < bestKind || (b.kind == bestKind && b.pos > best) {
			best = b.pos
			bestKind = b.kind
		}
	}
	if best != -1 && bestKind <= boundarySentence {
		return best
	}

	// No paragraph or sentence boundary fits the budget: the sentence
	// starting at cursor runs past limit. Keep it whole, up to its own end.
	for _, b := range bounds {
		if b.pos > limit && b.kind <= boundarySentence {
			return b.pos
		}
	}

	// No sentence end lies ahead: fall back to the best line break or
	// whitespace within budget, else extend to the next boundary past
	// limit rather than splitting mid-token; if none exists, take the
	// rest of the document.
	if best != -1 {
		return best
	}
	for _, b := range bounds {
		if b.pos > limit {
			return b.pos
		}
	}
	return n
}

// trimRuneRange narrows [start,end) to exclude leading/trailing whitespace
// runes, keeping the result a literal substring of the original.
func trimRuneRange(runes []rune, start, end int) (int, int) {
	for start < end && isSpace(runes[start]) {
		start++
	}
	for end > start && isSpace(runes[end-1]) {
		end--
	}
	return start, end
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// findBoundaries scans runes once and returns every acceptable cut point,
// in ascending position order, tagged with how strongly it's preferred.
func findBoundaries(runes []rune) []boundary {
	var bounds []boundary
	n := len(runes)

	i := 0
	for i < n {
		r := runes[i]
		switch {
		case isSpace(r):
			j := i
			newlines := 0
			for j < n && isSpace(runes[j]) {
				if runes[j] == '\n' {
					newlines++
				}
				j++
			}
			kind := boundaryWhitespace
			switch {
			case newlines >= 2:
				kind = boundaryParagraph
			case newlines == 1:
				kind = boundaryLine
			}
			bounds = append(bounds, boundary{pos: i, kind: kind})
			i = j
		case r == '.' || r == '!' || r == '?':
			next := i + 1
			// Allow a single trailing quote/bracket before whitespace.
			if next < n && (runes[next] == '"' || runes[next] == '\'' || runes[next] == ')' || runes[next] == ']') {
				next++
			}
			atEnd := next >= n
			followedBySpace := !atEnd && isSpace(runes[next])
			if (atEnd || followedBySpace) && !precededByAbbreviation(runes, i) {
				bounds = append(bounds, boundary{pos: next, kind: boundarySentence})
			}
			i++
		default:
			i++
		}
	}
	return bounds
}

// precededByAbbreviation reports whether the token immediately before the
// punctuation at pos is a known abbreviation, in which case it is not a
// sentence boundary.
func precededByAbbreviation(runes []rune, pos int) bool {
	j := pos
	for j > 0 && !isSpace(runes[j-1]) && runes[j-1] != '.' {
		j--
	}
	word := strings.ToLower(string(runes[j:pos]))
	return abbreviations[word]
}
