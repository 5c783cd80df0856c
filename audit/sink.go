// Package audit implements the raw-output side channel described in
// spec.md §6 and §9's design notes: an optional write path for the exact
// prompt/response pair behind each chunk inference, plus (§4 of
// SPEC_FULL.md) the pipeline run history it backs. A Sink is strictly
// additive diagnostics; nothing in annotate or pipeline depends on one
// being configured.
package audit

import (
	"context"
	"time"
)

// Entry is one raw LLM request/response pair, captured at the point the
// annotator would otherwise discard it.
type Entry struct {
	StepID     string    `json:"step_id,omitempty"`
	ChunkIndex int       `json:"chunk_index"`
	Prompt     string    `json:"prompt"`
	RawResponse string   `json:"raw_response"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sink persists Entry values. Implementations must be safe for concurrent
// use: the annotator writes from every worker goroutine in a wave.
type Sink interface {
	Write(ctx context.Context, e Entry) error
}

// None is a Sink that discards every entry, the default per spec §6.
type None struct{}

func (None) Write(context.Context, Entry) error { return nil }
