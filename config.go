package langextract

// FormatType selects the wire shape the model is instructed to respond in.
type FormatType string

const (
	FormatJSON FormatType = "JSON"
	FormatYAML FormatType = "YAML"
)

// ExtractConfig controls a single extraction call end to end: chunking,
// scheduling, multipass behavior and prompt format.
type ExtractConfig struct {
	// MaxCharBuffer is the chunk size target in Unicode code points.
	MaxCharBuffer int `json:"max_char_buffer" yaml:"max_char_buffer"`
	// BatchLength is the number of chunks scheduled per wave.
	BatchLength int `json:"batch_length" yaml:"batch_length"`
	// MaxWorkers bounds concurrent inferences within a wave.
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`
	// ExtractionPasses caps the number of multipass rounds (including the
	// first pass).
	ExtractionPasses int `json:"extraction_passes" yaml:"extraction_passes"`
	// EnableMultipass turns on re-processing of low-yield chunks.
	EnableMultipass bool `json:"enable_multipass" yaml:"enable_multipass"`
	// MultipassMinExtractions is the per-chunk extraction count below
	// which a chunk is re-processed when multipass is enabled.
	MultipassMinExtractions int `json:"multipass_min_extractions" yaml:"multipass_min_extractions"`
	// MultipassQualityThreshold is reserved for callers that score
	// extraction quality upstream; the core only acts on count.
	MultipassQualityThreshold float64 `json:"multipass_quality_threshold" yaml:"multipass_quality_threshold"`
	// Temperature is the base sampling temperature for the first pass.
	// Multipass rounds increase it (see annotate.Engine).
	Temperature float64 `json:"temperature" yaml:"temperature"`
	// FormatType selects JSON or YAML prompt/response format.
	FormatType FormatType `json:"format_type" yaml:"format_type"`
	// Debug is not read by the extraction path; whether per-chunk
	// slog.Debug records appear depends only on the slog handler's level.
	Debug bool `json:"debug" yaml:"debug"`
	// Strict promotes a call-wide chunk failure (every chunk errored) to
	// a fatal error instead of returning an empty, best-effort result.
	Strict bool `json:"strict" yaml:"strict"`
	// CaseSensitive controls whether the aligner's exact-match pass also
	// tries a case-insensitive scan.
	CaseSensitive bool `json:"case_sensitive" yaml:"case_sensitive"`
	// FuzzyThreshold is the minimum similarity score accepted for a
	// non-exact alignment. Defaults to 0.4.
	FuzzyThreshold float64 `json:"fuzzy_threshold" yaml:"fuzzy_threshold"`
	// MaxSearchWindow caps the chunk view the fuzzy aligner slides over,
	// bounding its O(n*m) cost.
	MaxSearchWindow int `json:"max_search_window" yaml:"max_search_window"`
	// Validation is applied after aggregation when non-nil.
	Validation *ValidationConfig `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// ValidationConfig controls the post-aggregation validator/coercer.
type ValidationConfig struct {
	EnableSchemaValidation bool            `json:"enable_schema_validation" yaml:"enable_schema_validation"`
	EnableTypeCoercion     bool            `json:"enable_type_coercion" yaml:"enable_type_coercion"`
	ValidateRequiredFields bool            `json:"validate_required_fields" yaml:"validate_required_fields"`
	SaveRawOutput          bool            `json:"save_raw_output" yaml:"save_raw_output"`
	RawOutputDir           string          `json:"raw_output_dir" yaml:"raw_output_dir"`
	RequiredClasses        map[string]bool `json:"required_classes" yaml:"required_classes"`
	MinExtractionTextLen   int             `json:"min_extraction_text_length" yaml:"min_extraction_text_length"`
	MaxExtractionTextLen   int             `json:"max_extraction_text_length" yaml:"max_extraction_text_length"`
}

// DefaultExtractConfig returns the configuration the teacher's own
// defaults are modeled after: generous enough for local inference
// providers, conservative enough not to blow past a typical LLM's
// context window per chunk.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		MaxCharBuffer:             4000,
		BatchLength:               10,
		MaxWorkers:                8,
		ExtractionPasses:          1,
		EnableMultipass:           false,
		MultipassMinExtractions:   1,
		MultipassQualityThreshold: 0.5,
		Temperature:               0.0,
		FormatType:                FormatJSON,
		FuzzyThreshold:            0.4,
		MaxSearchWindow:           8000,
	}
}

// ApplyDefaults fills zero-valued fields with sane defaults. Exported so
// callers that build an ExtractConfig outside of Extract (e.g. a pipeline
// config's global_config, loaded straight from YAML) can normalize it
// before use without reimplementing these defaults.
func (c *ExtractConfig) ApplyDefaults() {
	c.applyDefaults()
}

// applyDefaults fills zero-valued fields with sane defaults, mirroring the
// teacher's New()/DefaultConfig() pattern of never requiring callers to
// specify every field.
func (c *ExtractConfig) applyDefaults() {
	if c.MaxCharBuffer <= 0 {
		c.MaxCharBuffer = 4000
	}
	if c.BatchLength <= 0 {
		c.BatchLength = 10
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = 8
	}
	if c.ExtractionPasses <= 0 {
		c.ExtractionPasses = 1
	}
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = 0.4
	}
	if c.MaxSearchWindow <= 0 {
		c.MaxSearchWindow = 8000
	}
	if c.FormatType == "" {
		c.FormatType = FormatJSON
	}
}

// validate rejects contradictory configuration before any inference is
// attempted, per the ConfigurationError kind in the error taxonomy.
func (c ExtractConfig) validate() error {
	if c.MaxWorkers <= 0 {
		return ErrConfiguration
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return ErrConfiguration
	}
	if c.FormatType != "" && c.FormatType != FormatJSON && c.FormatType != FormatYAML {
		return ErrConfiguration
	}
	return nil
}
