// Package validate runs spec §4.6's post-aggregation schema checks and
// optional regex-driven type coercion over a finished extraction list.
package validate

import (
	"fmt"
	"strings"

	"github.com/avalon-data/langextract/types"
)

// Config controls which checks run. Mirrors ExtractConfig.Validation so
// this package has no dependency on the root package.
type Config struct {
	EnableSchemaValidation bool
	EnableTypeCoercion     bool
	ValidateRequiredFields bool
	RequiredClasses        map[string]bool
	MinExtractionTextLen   int
	MaxExtractionTextLen   int
}

// Warning is a non-fatal schema issue surfaced to the caller; it never
// blocks the call from returning its extractions.
type Warning struct {
	ExtractionIndex int // -1 for document-level warnings (e.g. a missing required class)
	Message         string
}

// Run applies schema checks and, when enabled, type coercion, returning the
// (possibly attribute-enriched) extraction list and any warnings collected.
// Coercion never rewrites Text — per §4.6, it is never destructive.
func Run(extractions []types.Extraction, cfg Config) ([]types.Extraction, []Warning) {
	var warnings []Warning

	if cfg.EnableSchemaValidation {
		warnings = append(warnings, schemaCheck(extractions, cfg)...)
	}

	out := extractions
	if cfg.EnableTypeCoercion {
		out = make([]types.Extraction, len(extractions))
		for i, e := range extractions {
			out[i] = coerceExtraction(e)
		}
	}

	return out, warnings
}

func schemaCheck(extractions []types.Extraction, cfg Config) []Warning {
	var warnings []Warning

	seenClasses := make(map[string]bool, len(extractions))
	for i, e := range extractions {
		if strings.TrimSpace(e.Class) == "" {
			warnings = append(warnings, Warning{ExtractionIndex: i, Message: "extraction has an empty class"})
		}
		seenClasses[e.Class] = true

		textLen := len([]rune(e.Text))
		if cfg.MinExtractionTextLen > 0 && textLen < cfg.MinExtractionTextLen {
			warnings = append(warnings, Warning{
				ExtractionIndex: i,
				Message:         fmt.Sprintf("extraction text length %d below minimum %d", textLen, cfg.MinExtractionTextLen),
			})
		}
		if cfg.MaxExtractionTextLen > 0 && textLen > cfg.MaxExtractionTextLen {
			warnings = append(warnings, Warning{
				ExtractionIndex: i,
				Message:         fmt.Sprintf("extraction text length %d exceeds maximum %d", textLen, cfg.MaxExtractionTextLen),
			})
		}
	}

	if cfg.ValidateRequiredFields {
		for class := range cfg.RequiredClasses {
			if !seenClasses[class] {
				warnings = append(warnings, Warning{
					ExtractionIndex: -1,
					Message:         fmt.Sprintf("required class %q missing from extraction output", class),
				})
			}
		}
	}

	return warnings
}
