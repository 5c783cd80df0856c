package langextract

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avalon-data/langextract/annotate"
	"github.com/avalon-data/langextract/audit"
	"github.com/avalon-data/langextract/input"
	"github.com/avalon-data/langextract/llm"
	"github.com/avalon-data/langextract/resolver"
	"github.com/avalon-data/langextract/types"
	"github.com/avalon-data/langextract/validate"
)

// Engine is the top-level entry point for a single extraction call,
// mirroring the teacher's own Engine-wraps-a-capability construction
// (graph.NewBuilder(store, chat, embed, concurrency)) minus the
// store/retrieval machinery this domain has no use for.
type Engine struct {
	capability llm.Capability
	sink       audit.Sink
}

// New builds an Engine around an LLM capability. The capability is
// supplied by the caller (via llm.NewCapability or a hand-built
// implementation) rather than threaded through ExtractConfig, so config
// stays pure data and is safe to load from YAML/JSON without secrets
// leaking into it beyond what llm.Config itself carries.
func New(capability llm.Capability) *Engine {
	return &Engine{capability: capability, sink: audit.None{}}
}

// WithSink wires a raw-output sink for every chunk inference this Engine
// runs, per spec §6's optional raw-output persistence.
func (e *Engine) WithSink(sink audit.Sink) *Engine {
	if sink != nil {
		e.sink = sink
	}
	return e
}

// Extract implements spec §6's library entry point:
//
//	extract(text_or_url, prompt_description, examples, config) -> AnnotatedDocument
//
// end to end: resolve input text, chunk, annotate (chunk + infer + resolve
// + align + aggregate), then validate/coerce. Non-fatal chunk errors and
// validation warnings are surfaced in the result's Metadata rather than as
// a returned error, per §7's propagation policy; only configuration,
// input and cancellation errors are fatal, plus an all-chunks-failed
// outcome when cfg.Strict is set.
func (e *Engine) Extract(ctx context.Context, textOrURL, promptDescription string, examples []types.ExampleData, cfg ExtractConfig) (*types.AnnotatedDocument, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if e.capability == nil {
		return nil, fmt.Errorf("%w: no LLM capability configured", ErrConfiguration)
	}

	text, err := input.Load(ctx, textOrURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}

	engine := annotate.New(e.capability, annotate.DefaultPromptBuilder{}, annotate.Config{
		MaxCharBuffer:           cfg.MaxCharBuffer,
		BatchLength:             cfg.BatchLength,
		MaxWorkers:              cfg.MaxWorkers,
		ExtractionPasses:        cfg.ExtractionPasses,
		EnableMultipass:         cfg.EnableMultipass,
		MultipassMinExtractions: cfg.MultipassMinExtractions,
		Temperature:             cfg.Temperature,
		FormatType:              string(cfg.FormatType),
		CaseSensitive:           cfg.CaseSensitive,
		FuzzyThreshold:          cfg.FuzzyThreshold,
		MaxSearchWindow:         cfg.MaxSearchWindow,
		Strict:                  cfg.Strict,
	}).WithSink(e.sink)

	result, err := engine.Annotate(ctx, text, promptDescription, examples)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		if errors.Is(err, annotate.ErrStrictMode) {
			return nil, fmt.Errorf("%w: %w", ErrStrictMode, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}

	extractions := result.Extractions
	metadata := map[string]interface{}{}
	if len(result.Failures) > 0 {
		metadata["chunk_errors"] = chunkErrorList(result.Failures)
	}

	if cfg.Validation != nil {
		var warnings []validate.Warning
		extractions, warnings = validate.Run(extractions, validate.Config{
			EnableSchemaValidation: cfg.Validation.EnableSchemaValidation,
			EnableTypeCoercion:     cfg.Validation.EnableTypeCoercion,
			ValidateRequiredFields: cfg.Validation.ValidateRequiredFields,
			RequiredClasses:        cfg.Validation.RequiredClasses,
			MinExtractionTextLen:   cfg.Validation.MinExtractionTextLen,
			MaxExtractionTextLen:   cfg.Validation.MaxExtractionTextLen,
		})
		if len(warnings) > 0 {
			metadata["validation_warnings"] = validationWarningList(warnings)
		}
	}

	return &types.AnnotatedDocument{
		Text:        text,
		DocumentID:  uuid.New().String(),
		Extractions: extractions,
		Metadata:    metadata,
	}, nil
}

// Extract is a package-level convenience wrapping New(capability).Extract
// for callers that need no raw-output sink.
func Extract(ctx context.Context, capability llm.Capability, textOrURL, promptDescription string, examples []types.ExampleData, cfg ExtractConfig) (*types.AnnotatedDocument, error) {
	return New(capability).Extract(ctx, textOrURL, promptDescription, examples, cfg)
}

func chunkErrorList(failures []annotate.ChunkFailure) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(failures))
	for _, f := range failures {
		stage := "inference"
		if errors.Is(f.Err, resolver.ErrParse) {
			stage = "parse"
		}
		out = append(out, map[string]interface{}{
			"chunk_index": f.ChunkIndex,
			"stage":       stage,
			"message":     f.Err.Error(),
		})
	}
	return out
}

func validationWarningList(warnings []validate.Warning) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, map[string]interface{}{
			"extraction_index": w.ExtractionIndex,
			"message":          w.Message,
		})
	}
	return out
}
