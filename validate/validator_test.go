package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avalon-data/langextract/types"
)

func TestSchemaCheckFlagsEmptyClass(t *testing.T) {
	extractions := []types.Extraction{{Class: "", Text: "something"}}
	_, warnings := Run(extractions, Config{EnableSchemaValidation: true})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "empty class")
}

func TestSchemaCheckFlagsTextLengthBounds(t *testing.T) {
	extractions := []types.Extraction{
		{Class: "note", Text: "hi"},
		{Class: "note", Text: "this text is much too long for the configured maximum"},
	}
	_, warnings := Run(extractions, Config{
		EnableSchemaValidation: true,
		MinExtractionTextLen:   3,
		MaxExtractionTextLen:   20,
	})
	require.Len(t, warnings, 2)
	assert.Equal(t, 0, warnings[0].ExtractionIndex)
	assert.Equal(t, 1, warnings[1].ExtractionIndex)
}

func TestSchemaCheckFlagsMissingRequiredClass(t *testing.T) {
	extractions := []types.Extraction{{Class: "person", Text: "John"}}
	_, warnings := Run(extractions, Config{
		EnableSchemaValidation: true,
		ValidateRequiredFields: true,
		RequiredClasses:        map[string]bool{"person": true, "price": true},
	})
	require.Len(t, warnings, 1)
	assert.Equal(t, -1, warnings[0].ExtractionIndex)
	assert.Contains(t, warnings[0].Message, "price")
}

func TestSchemaCheckNoWarningsWhenDisabled(t *testing.T) {
	extractions := []types.Extraction{{Class: "", Text: ""}}
	_, warnings := Run(extractions, Config{})
	assert.Empty(t, warnings)
}

func TestCoerceCurrency(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "price", Text: "$1,234.56"}}, Config{EnableTypeCoercion: true})
	require.Len(t, out, 1)
	assert.Equal(t, 1234.56, out[0].Attributes["coerced_value"])
	assert.Equal(t, "currency", out[0].Attributes["coerced_type"])
	assert.Equal(t, "USD", out[0].Attributes["currency"])
	assert.Equal(t, "$1,234.56", out[0].Text, "coercion must not rewrite the original text")
}

func TestCoercePercentage(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "rate", Text: "95.5%"}}, Config{EnableTypeCoercion: true})
	assert.InDelta(t, 0.955, out[0].Attributes["coerced_value"], 0.0001)
}

func TestCoerceInteger(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "count", Text: "42"}}, Config{EnableTypeCoercion: true})
	assert.Equal(t, int64(42), out[0].Attributes["coerced_value"])
	assert.Equal(t, "integer", out[0].Attributes["coerced_type"])
}

func TestCoerceFloat(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "measurement", Text: "3.14"}}, Config{EnableTypeCoercion: true})
	assert.Equal(t, 3.14, out[0].Attributes["coerced_value"])
}

func TestCoerceBoolean(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "flag", Text: "yes"}}, Config{EnableTypeCoercion: true})
	assert.Equal(t, true, out[0].Attributes["coerced_value"])
}

func TestCoerceEmail(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "contact", Text: "jane@example.com"}}, Config{EnableTypeCoercion: true})
	assert.Equal(t, "jane@example.com", out[0].Attributes["coerced_value"])
	assert.Equal(t, "example.com", out[0].Attributes["domain"])
}

func TestCoercePhone(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "contact", Text: "(555) 123-4567"}}, Config{EnableTypeCoercion: true})
	assert.Equal(t, "5551234567", out[0].Attributes["coerced_value"])
}

func TestCoerceURL(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "link", Text: "https://example.com/path"}}, Config{EnableTypeCoercion: true})
	assert.Equal(t, "https", out[0].Attributes["scheme"])
	assert.Equal(t, "example.com", out[0].Attributes["host"])
}

func TestCoerceDate(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "date", Text: "January 2, 2024"}}, Config{EnableTypeCoercion: true})
	assert.Equal(t, "2024-01-02", out[0].Attributes["coerced_value"])
}

func TestCoerceNoMatchLeavesAttributesUntouched(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "note", Text: "just some prose"}}, Config{EnableTypeCoercion: true})
	assert.Nil(t, out[0].Attributes)
}

func TestCoerceDisabledLeavesExtractionsUnchanged(t *testing.T) {
	extractions := []types.Extraction{{Class: "price", Text: "$5.00"}}
	out, _ := Run(extractions, Config{})
	assert.Nil(t, out[0].Attributes)
}

func TestCoerceOrderIntegerBeforePhoneAndBoolean(t *testing.T) {
	out, _ := Run([]types.Extraction{{Class: "x", Text: "1"}}, Config{EnableTypeCoercion: true})
	assert.Equal(t, "integer", out[0].Attributes["coerced_type"])
}

func TestCoercePreservesExistingAttributes(t *testing.T) {
	extractions := []types.Extraction{{
		Class:      "price",
		Text:       "$5.00",
		Attributes: map[string]interface{}{"source": "table-1"},
	}}
	out, _ := Run(extractions, Config{EnableTypeCoercion: true})
	assert.Equal(t, "table-1", out[0].Attributes["source"])
	assert.Equal(t, 5.0, out[0].Attributes["coerced_value"])
}
