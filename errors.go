package langextract

import "errors"

var (
	// ErrConfiguration is returned for invalid or contradictory
	// configuration (e.g. max_workers = 0, missing LLM capability).
	// Fatal at call start.
	ErrConfiguration = errors.New("langextract: invalid configuration")

	// ErrInput is returned when the input could not be read (URL fetch,
	// file not found, unsupported content type). Fatal at call start.
	ErrInput = errors.New("langextract: could not read input")

	// ErrInference wraps an annotation error that is neither a
	// cancellation nor a strict-mode failure. Per-chunk inference
	// failures are not returned as errors: Extract records them in the
	// result's chunk_errors metadata, even when every chunk fails.
	ErrInference = errors.New("langextract: inference failed")

	// ErrParse is returned when a chunk's LLM output could not be
	// interpreted as extractions. Non-fatal per chunk.
	ErrParse = errors.New("langextract: could not parse model output")

	// ErrCyclicDependency is returned when a pipeline's step graph
	// contains a cycle. Fatal.
	ErrCyclicDependency = errors.New("langextract: cyclic step dependency")

	// ErrCancelled is returned when the caller cancels an in-flight call.
	ErrCancelled = errors.New("langextract: cancelled")

	// ErrNoResults names a pipeline step with no input text to operate on
	// (e.g. all upstream extractions were filtered out). The pipeline
	// executor does not return it: such a step runs on empty input and
	// yields no extractions.
	ErrNoResults = errors.New("langextract: no input available for step")

	// ErrStrictMode is returned when strict mode is enabled and every
	// chunk failed during annotation.
	ErrStrictMode = errors.New("langextract: chunk errors present in strict mode")

	// ErrUnsupportedFormat names an input format the loader cannot read.
	// Extract does not return it: the input loader reads files with an
	// unrecognized extension as plain text.
	ErrUnsupportedFormat = errors.New("langextract: unsupported input format")
)
