// Package langextract turns unstructured text into structured, grounded
// extractions by orchestrating a large language model over arbitrarily
// large documents.
package langextract

import "github.com/avalon-data/langextract/types"

// The domain model lives in package types so every layer of the pipeline
// (resolver, aligner, annotator, validator, pipeline executor) can share it
// without importing this root package back. These aliases keep the public
// API at github.com/avalon-data/langextract unchanged for callers.
type (
	AlignmentStatus   = types.AlignmentStatus
	CharInterval      = types.CharInterval
	Extraction        = types.Extraction
	ExampleData       = types.ExampleData
	AnnotatedDocument = types.AnnotatedDocument
	ChunkError        = types.ChunkError
)

const (
	AlignmentExactMatch   = types.AlignmentExactMatch
	AlignmentFuzzyMatch   = types.AlignmentFuzzyMatch
	AlignmentLesserMatch  = types.AlignmentLesserMatch
	AlignmentGreaterMatch = types.AlignmentGreaterMatch
	AlignmentNoMatch      = types.AlignmentNoMatch
)
