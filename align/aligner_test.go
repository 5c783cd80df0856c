package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avalon-data/langextract/types"
)

func TestAlignExactMatch(t *testing.T) {
	chunk := "The patient was prescribed 10mg of Lisinopril daily."
	interval, status := Align("Lisinopril", chunk, 0, Config{})
	require.NotNil(t, interval)
	assert.Equal(t, types.AlignmentExactMatch, status)
	assert.Equal(t, "Lisinopril", chunk[interval.Start:interval.End])
}

func TestAlignExactMatchAppliesChunkOffset(t *testing.T) {
	chunk := "Lisinopril 10mg"
	offset := 500
	interval, status := Align("Lisinopril", chunk, offset, Config{})
	require.NotNil(t, interval)
	assert.Equal(t, types.AlignmentExactMatch, status)
	assert.Equal(t, 500, interval.Start)
	assert.Equal(t, 510, interval.End)
}

func TestAlignCaseInsensitiveMatch(t *testing.T) {
	chunk := "the patient takes LISINOPRIL daily"
	interval, status := Align("lisinopril", chunk, 0, Config{CaseSensitive: false})
	require.NotNil(t, interval)
	assert.Equal(t, types.AlignmentExactMatch, status)
	assert.Equal(t, "LISINOPRIL", chunk[interval.Start:interval.End])
}

func TestAlignCaseSensitiveConfigRejectsCaseMismatch(t *testing.T) {
	chunk := "the patient takes LISINOPRIL daily"
	interval, status := Align("lisinopril", chunk, 0, Config{CaseSensitive: true, FuzzyThreshold: 2})
	assert.Nil(t, interval)
	assert.Equal(t, types.AlignmentNoMatch, status)
}

func TestAlignFuzzyMatchOnWhitespaceVariance(t *testing.T) {
	chunk := "Dr.  John   Smith works here."
	interval, status := Align("Dr. John Smith", chunk, 0, Config{})
	require.NotNil(t, interval)
	assert.Equal(t, types.AlignmentFuzzyMatch, status)
	assert.Equal(t, 0, interval.Start)
}

func TestAlignLesserMatchWhenChunkOmitsAWord(t *testing.T) {
	chunk := "Patient reports severe headache today."
	interval, status := Align("severe throbbing headache", chunk, 0, Config{FuzzyThreshold: 0.3})
	require.NotNil(t, interval)
	assert.Equal(t, types.AlignmentLesserMatch, status)
}

func TestAlignGreaterMatchWhenChunkAddsAWord(t *testing.T) {
	chunk := "Patient reports severe throbbing bilateral headache today."
	interval, status := Align("severe throbbing headache", chunk, 0, Config{FuzzyThreshold: 0.3})
	require.NotNil(t, interval)
	assert.Equal(t, types.AlignmentGreaterMatch, status)
}

func TestAlignNoMatchBelowThreshold(t *testing.T) {
	chunk := "This document discusses quarterly revenue projections."
	interval, status := Align("Lisinopril dosage schedule", chunk, 0, Config{FuzzyThreshold: 0.6})
	assert.Nil(t, interval)
	assert.Equal(t, types.AlignmentNoMatch, status)
}

func TestAlignEmptyInputsAreNoMatch(t *testing.T) {
	interval, status := Align("", "some text", 0, Config{})
	assert.Nil(t, interval)
	assert.Equal(t, types.AlignmentNoMatch, status)

	interval, status = Align("text", "", 0, Config{})
	assert.Nil(t, interval)
	assert.Equal(t, types.AlignmentNoMatch, status)
}

func TestAlignUnicodeOffsetsAreCodePoints(t *testing.T) {
	chunk := "café Lisinopril dosage"
	interval, status := Align("Lisinopril", chunk, 0, Config{})
	require.NotNil(t, interval)
	assert.Equal(t, types.AlignmentExactMatch, status)
	// "café " is 5 runes (é is one code point), not 6 bytes.
	assert.Equal(t, 5, interval.Start)
	assert.Equal(t, []rune(chunk)[interval.Start:interval.End], []rune("Lisinopril"))
}

func TestAlignRespectsMaxSearchWindow(t *testing.T) {
	padding := ""
	for i := 0; i < 200; i++ {
		padding += "filler word "
	}
	// Extra internal whitespace defeats the exact and case-insensitive
	// passes, so only the bounded fuzzy pass can find this.
	chunk := padding + "Dr.  John   Smith"
	interval, status := Align("Dr. John Smith", chunk, 0, Config{FuzzyThreshold: 0.1, MaxSearchWindow: 10})
	assert.Nil(t, interval)
	assert.Equal(t, types.AlignmentNoMatch, status)
}

func TestAlignDefaultThresholdIsPointFour(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, 0.4, cfg.threshold())
}
