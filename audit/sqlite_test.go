//go:build cgo

package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteSink(t *testing.T) *SQLiteSink {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestSQLiteSinkWriteAndMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Write(context.Background(), Entry{
		StepID: "extract", ChunkIndex: 0, Prompt: "p", RawResponse: "r", Timestamp: time.Now(),
	}))

	// Reopening the same path must not fail on already-existing tables.
	sink2, err := NewSQLiteSink(path)
	require.NoError(t, err)
	defer sink2.Close()
}

func TestSQLiteSinkRecordAndGetRun(t *testing.T) {
	sink := newTestSQLiteSink(t)
	ctx := context.Background()

	steps := []RunStepRecord{
		{StepID: "extract", DurationMS: 120, OutputJSON: `{"extractions":[]}`},
		{StepID: "classify", DurationMS: 45, Error: "annotate: all chunks failed in strict mode"},
	}
	require.NoError(t, sink.RecordRun(ctx, "run-1", 165, steps))

	run, err := sink.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, int64(165), run.TotalTimeMS)
	require.Len(t, run.Steps, 2)
	assert.Equal(t, "extract", run.Steps[0].StepID)
	assert.Equal(t, "annotate: all chunks failed in strict mode", run.Steps[1].Error)
}

func TestSQLiteSinkGetRunUnknownIDErrors(t *testing.T) {
	sink := newTestSQLiteSink(t)
	_, err := sink.GetRun(context.Background(), "does-not-exist")
	assert.Error(t, err)
}
