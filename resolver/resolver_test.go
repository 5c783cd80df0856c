package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveListOfSingleKeyObjects(t *testing.T) {
	raw := `[{"person": "John Doe"}, {"age": "30"}, {"profession": "doctor"}]`
	got, err := Resolve(raw)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "person", got[0].Class)
	assert.Equal(t, "John Doe", got[0].Text)
	assert.Equal(t, 0, got[0].GroupIndex)
	assert.Equal(t, "age", got[1].Class)
	assert.Equal(t, 1, got[1].GroupIndex)
	assert.Equal(t, "profession", got[2].Class)
	assert.Equal(t, 2, got[2].GroupIndex)
}

func TestResolveWrapperObjectExtractions(t *testing.T) {
	raw := `{"extractions": [{"person": "Jane"}, {"person": "Bob"}]}`
	got, err := Resolve(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Jane", got[0].Text)
	assert.Equal(t, "Bob", got[1].Text)
}

func TestResolveWrapperObjectDataAndResults(t *testing.T) {
	for _, key := range []string{"data", "results"} {
		raw := `{"` + key + `": [{"thing": "one"}]}`
		got, err := Resolve(raw)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "thing", got[0].Class)
	}
}

func TestResolveSingleKeyMultiValue(t *testing.T) {
	raw := `{"ingredient": ["flour", "sugar", "eggs"]}`
	got, err := Resolve(raw)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, want := range []string{"flour", "sugar", "eggs"} {
		assert.Equal(t, "ingredient", got[i].Class)
		assert.Equal(t, want, got[i].Text)
		assert.Equal(t, i, got[i].GroupIndex)
	}
}

func TestResolveClassWithAttributes(t *testing.T) {
	raw := `{"price": {"text": "$19.99", "attributes": {"currency": "USD"}}}`
	got, err := Resolve(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "price", got[0].Class)
	assert.Equal(t, "$19.99", got[0].Text)
	assert.Equal(t, "USD", got[0].Attributes["currency"])
}

func TestResolveStripsJSONFence(t *testing.T) {
	raw := "```json\n[{\"person\": \"John\"}]\n```"
	got, err := Resolve(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "John", got[0].Text)
}

func TestResolveStripsBareFence(t *testing.T) {
	raw := "```\n[{\"person\": \"John\"}]\n```"
	got, err := Resolve(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestResolveIgnoresSurroundingProse(t *testing.T) {
	raw := "Here is the extraction you asked for:\n[{\"person\": \"John\"}]\nLet me know if you need more."
	got, err := Resolve(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "John", got[0].Text)
}

func TestResolveYAMLFallback(t *testing.T) {
	raw := "- person: John Doe\n- age: \"30\"\n"
	got, err := Resolve(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "John Doe", got[0].Text)
	assert.Equal(t, "30", got[1].Text)
}

func TestResolveMalformedReturnsParseError(t *testing.T) {
	_, err := Resolve("not json, not yaml, just : : : garbage {{{")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestResolveEmptyBodyReturnsParseError(t *testing.T) {
	_, err := Resolve("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestResolveValidJSONButNoExtractionsIsParseError(t *testing.T) {
	_, err := Resolve(`{}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestResolveShapeEquivalence(t *testing.T) {
	// Parse-shape equivalence (§8 invariant 6): semantically equivalent
	// content in different accepted shapes normalizes to the same flat
	// result.
	shapes := []string{
		`[{"fruit": "apple"}, {"fruit": "pear"}]`,
		`{"fruit": ["apple", "pear"]}`,
		`{"extractions": [{"fruit": "apple"}, {"fruit": "pear"}]}`,
	}
	var allTexts [][]string
	for _, raw := range shapes {
		got, err := Resolve(raw)
		require.NoError(t, err)
		var texts []string
		for _, e := range got {
			texts = append(texts, e.Text)
		}
		allTexts = append(allTexts, texts)
	}
	for i := 1; i < len(allTexts); i++ {
		assert.Equal(t, allTexts[0], allTexts[i])
	}
}

func TestFirstBalancedJSONIgnoresBracesInStrings(t *testing.T) {
	raw := `garbage before [{"note": "contains a } brace"}] trailing`
	candidate, ok := firstBalancedJSON(raw)
	require.True(t, ok)
	assert.Equal(t, `[{"note": "contains a } brace"}]`, candidate)
}
