package pipeline

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/avalon-data/langextract/audit"
)

// RunHistory persists each pipeline Result to a SQLite-backed audit sink,
// per SPEC_FULL.md §4: "when an audit sink is configured, each
// PipelineResult is persisted (step timings, step errors, output
// references) so a caller can inspect past DAG executions." Not part of
// spec.md; a natural consequence of audit.SQLiteSink being queryable.
type RunHistory struct {
	sink *audit.SQLiteSink
}

// NewRunHistory wraps a SQLiteSink for pipeline run persistence. A nil
// sink is valid and makes Record a no-op, so callers without a configured
// audit sink never need a nil check of their own.
func NewRunHistory(sink *audit.SQLiteSink) *RunHistory {
	return &RunHistory{sink: sink}
}

// Record persists a completed Result under a fresh run id, returning that
// id so the caller (typically the CLI) can reference it later. Returns ""
// and no error when no sink is configured.
func (h *RunHistory) Record(ctx context.Context, result *Result) (string, error) {
	if h == nil || h.sink == nil {
		return "", nil
	}

	runID := uuid.New().String()
	steps := make([]audit.RunStepRecord, 0, len(result.Steps))
	for _, stepID := range result.Order {
		outcome, ok := result.Steps[stepID]
		if !ok {
			continue
		}
		rec := audit.RunStepRecord{
			StepID:     stepID,
			DurationMS: outcome.Duration.Milliseconds(),
		}
		if outcome.Err != nil {
			rec.Error = outcome.Err.Error()
		} else if data, err := json.Marshal(outcome.Output); err == nil {
			rec.OutputJSON = string(data)
		}
		steps = append(steps, rec)
	}

	if err := h.sink.RecordRun(ctx, runID, result.TotalTime.Milliseconds(), steps); err != nil {
		return "", err
	}
	return runID, nil
}

// Replay reads back a previously recorded run by id.
func (h *RunHistory) Replay(ctx context.Context, runID string) (*audit.Run, error) {
	if h == nil || h.sink == nil {
		return nil, nil
	}
	return h.sink.GetRun(ctx, runID)
}
