package resolver

import "gopkg.in/yaml.v3"

// normalize lowers any of the §4.3 accepted shapes to a flat, ordered list
// of Extraction, assigning GroupIndex by position in that flattened list.
//
// Accepted shapes:
//   - [{class: text}, ...]                     list of single-key objects
//   - {"extractions"|"data"|"results": [...]}  wrapper objects
//   - {class: [text, text, ...]}               one key, multiple values
//   - {class: {text: ..., attributes: {...}}}  extraction with attributes
func normalize(n *yaml.Node) []Extraction {
	counter := 0
	result := normalizeNode(n, &counter)
	return result
}

var wrapperKeys = []string{"extractions", "data", "results"}

func normalizeNode(n *yaml.Node, counter *int) []Extraction {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.SequenceNode:
		var out []Extraction
		for _, item := range n.Content {
			out = append(out, normalizeListItem(item, counter)...)
		}
		return out
	case yaml.MappingNode:
		pairs := mappingPairs(n)
		for _, p := range pairs {
			for _, wk := range wrapperKeys {
				if p.key == wk && p.value.Kind == yaml.SequenceNode {
					return normalizeNode(p.value, counter)
				}
			}
		}
		var out []Extraction
		for _, p := range pairs {
			out = append(out, normalizeClassValue(p.key, p.value, counter)...)
		}
		return out
	default:
		return nil
	}
}

// normalizeListItem handles one element of a top-level array: either a
// single-key object (the common shape) or, defensively, a fully-formed
// object already carrying extraction_class/extraction_text/attributes.
func normalizeListItem(item *yaml.Node, counter *int) []Extraction {
	if item.Kind != yaml.MappingNode {
		return nil
	}
	pairs := mappingPairs(item)

	if class, text, attrs, ok := fullExtractionShape(pairs); ok {
		e := Extraction{Class: class, Text: text, Attributes: attrs, GroupIndex: *counter}
		*counter++
		return []Extraction{e}
	}

	if len(pairs) == 1 {
		return normalizeClassValue(pairs[0].key, pairs[0].value, counter)
	}

	// Multiple keys with no recognizable full-extraction shape: treat
	// each key as its own class, same as the top-level map case.
	var out []Extraction
	for _, p := range pairs {
		out = append(out, normalizeClassValue(p.key, p.value, counter)...)
	}
	return out
}

// fullExtractionShape recognizes a defensive extra shape beyond §4.3's
// four: an object that already spells out extraction_class/extraction_text
// (and optionally attributes) directly, which some models produce despite
// prompting for the simpler shapes.
func fullExtractionShape(pairs []kv) (class, text string, attrs map[string]interface{}, ok bool) {
	var hasClass, hasText bool
	for _, p := range pairs {
		switch p.key {
		case "extraction_class", "class":
			if p.value.Kind == yaml.ScalarNode {
				class = p.value.Value
				hasClass = true
			}
		case "extraction_text", "text":
			if p.value.Kind == yaml.ScalarNode {
				text = p.value.Value
				hasText = true
			}
		case "attributes":
			attrs = nodeToAttributes(p.value)
		}
	}
	return class, text, attrs, hasClass && hasText
}

// normalizeClassValue expands one (class, value) pair into zero or more
// extractions, per the value's shape.
func normalizeClassValue(class string, val *yaml.Node, counter *int) []Extraction {
	if val == nil {
		return nil
	}
	switch val.Kind {
	case yaml.ScalarNode:
		e := Extraction{Class: class, Text: val.Value, GroupIndex: *counter}
		*counter++
		return []Extraction{e}
	case yaml.SequenceNode:
		var out []Extraction
		for _, item := range val.Content {
			out = append(out, extractionFromValueForClass(class, item, counter)...)
		}
		return out
	case yaml.MappingNode:
		return extractionFromValueForClass(class, val, counter)
	default:
		return nil
	}
}

// extractionFromValueForClass builds one extraction from a value already
// known to belong to class: either a bare scalar, or a {text, attributes}
// object.
func extractionFromValueForClass(class string, val *yaml.Node, counter *int) []Extraction {
	if val.Kind == yaml.ScalarNode {
		e := Extraction{Class: class, Text: val.Value, GroupIndex: *counter}
		*counter++
		return []Extraction{e}
	}
	if val.Kind == yaml.MappingNode {
		pairs := mappingPairs(val)
		var text string
		var attrs map[string]interface{}
		for _, p := range pairs {
			switch p.key {
			case "text":
				if p.value.Kind == yaml.ScalarNode {
					text = p.value.Value
				}
			case "attributes":
				attrs = nodeToAttributes(p.value)
			}
		}
		e := Extraction{Class: class, Text: text, Attributes: attrs, GroupIndex: *counter}
		*counter++
		return []Extraction{e}
	}
	return nil
}

type kv struct {
	key   string
	value *yaml.Node
}

func mappingPairs(n *yaml.Node) []kv {
	var pairs []kv
	for i := 0; i+1 < len(n.Content); i += 2 {
		pairs = append(pairs, kv{key: n.Content[i].Value, value: n.Content[i+1]})
	}
	return pairs
}

// nodeToAttributes converts a mapping node into a plain map for the
// caller-facing Attributes field, recursing through nested scalars/lists.
func nodeToAttributes(n *yaml.Node) map[string]interface{} {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make(map[string]interface{})
	for _, p := range mappingPairs(n) {
		out[p.key] = nodeToGoValue(p.value)
	}
	return out
}

func nodeToGoValue(n *yaml.Node) interface{} {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		var v interface{}
		if err := n.Decode(&v); err == nil {
			return v
		}
		return n.Value
	case yaml.SequenceNode:
		vals := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			vals = append(vals, nodeToGoValue(item))
		}
		return vals
	case yaml.MappingNode:
		return nodeToAttributes(n)
	default:
		return nil
	}
}
