// Package resolver turns the raw text an LLM returned for one chunk into
// an ordered list of candidate extractions, before any character alignment
// happens. It tolerates the handful of shapes models commonly return JSON
// or YAML extraction lists in.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrParse is returned when a chunk's raw model output could not be
// interpreted as any known extraction shape.
var ErrParse = errors.New("resolver: could not parse model output")

// Extraction is a single candidate extraction before alignment: it has a
// class and text but no character interval yet.
type Extraction struct {
	Class      string
	Text       string
	Attributes map[string]interface{}
	// GroupIndex is this extraction's position in the flattened output
	// list, used downstream as a stable dedup tiebreaker.
	GroupIndex int
}

// ParseError carries the raw body that failed to parse, for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("resolver: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Resolve converts raw model output into a flat, ordered list of
// extractions. Parse strategies are tried in order and the first that
// yields at least one extraction wins:
//
//  1. Strip leading/trailing ``` fences (```json, ```yaml, or bare ```).
//  2. Parse the first balanced JSON value (object or array) found via
//     bracket counting.
//  3. Parse the whole body as YAML.
//
// A bare empty JSON array (`[]`) is a well-formed answer with no
// extractions and yields an empty list with no error.
//
// Malformed or unrecognized content is a *ParseError, non-fatal to the
// caller: the annotator skips the chunk and continues.
func Resolve(raw string) ([]Extraction, error) {
	stripped := stripFences(raw)

	if candidate, ok := firstBalancedJSON(stripped); ok {
		if node, err := parseYAMLNode(candidate); err == nil {
			if result := normalize(node); len(result) > 0 {
				return result, nil
			}
			if node.Kind == yaml.SequenceNode && len(node.Content) == 0 {
				return []Extraction{}, nil
			}
		}
	}

	if node, err := parseYAMLNode(stripped); err == nil {
		if result := normalize(node); len(result) > 0 {
			return result, nil
		}
	}

	return nil, &ParseError{Raw: raw, Err: fmt.Errorf("no recognizable extraction shape in model output")}
}

// stripFences removes a leading/trailing markdown fence, optionally tagged
// with a language (```json, ```yaml, or bare ```).
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		firstLine := strings.TrimSpace(s[:nl])
		if firstLine == "" || strings.EqualFold(firstLine, "json") || strings.EqualFold(firstLine, "yaml") || strings.EqualFold(firstLine, "yml") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimRight(s, "\n\t "), "```")
	return strings.TrimSpace(s)
}

// firstBalancedJSON scans body for the first balanced {...} or [...] span,
// respecting string literals so braces inside quoted text don't confuse
// the bracket count.
func firstBalancedJSON(body string) (string, bool) {
	start := -1
	var openChar, closeChar byte
	for i := 0; i < len(body); i++ {
		if body[i] == '{' || body[i] == '[' {
			start = i
			if body[i] == '{' {
				openChar, closeChar = '{', '}'
			} else {
				openChar, closeChar = '[', ']'
			}
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(body); i++ {
		c := body[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return body[start : i+1], true
			}
		}
	}
	return "", false
}

// parseYAMLNode parses body into a yaml.Node. Since JSON is a syntactic
// subset of YAML, this one path handles both the JSON bracket-counted
// candidate and a raw YAML body, and — unlike decoding into
// map[string]interface{} — preserves mapping key order, which matters for
// assigning a deterministic group_index.
func parseYAMLNode(body string) (*yaml.Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(body), &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 {
		return nil, fmt.Errorf("empty document")
	}
	return unwrapDocument(&node), nil
}

func unwrapDocument(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}
