package audit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoneSinkDiscardsEntries(t *testing.T) {
	var sink None
	err := sink.Write(context.Background(), Entry{ChunkIndex: 0, Prompt: "p", RawResponse: "r", Timestamp: time.Unix(0, 0)})
	assert.NoError(t, err)
}

func TestInMemorySinkCollectsEntriesInOrder(t *testing.T) {
	sink := NewInMemorySink()
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, Entry{ChunkIndex: 0, Prompt: "p0", RawResponse: "r0", Timestamp: time.Unix(0, 0)}))
	require.NoError(t, sink.Write(ctx, Entry{ChunkIndex: 1, Prompt: "p1", RawResponse: "r1", Timestamp: time.Unix(1, 0)}))

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "p0", entries[0].Prompt)
	assert.Equal(t, "p1", entries[1].Prompt)
}

func TestInMemorySinkEntriesReturnsASnapshot(t *testing.T) {
	sink := NewInMemorySink()
	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, Entry{ChunkIndex: 0, Prompt: "p0", Timestamp: time.Unix(0, 0)}))

	snapshot := sink.Entries()
	require.NoError(t, sink.Write(ctx, Entry{ChunkIndex: 1, Prompt: "p1", Timestamp: time.Unix(1, 0)}))

	assert.Len(t, snapshot, 1, "earlier snapshot must not observe a later write")
}

func TestFilesystemSinkWritesOneFilePerEntryWithUniqueNames(t *testing.T) {
	dir := t.TempDir()
	sink := NewFilesystemSink(dir)
	ctx := context.Background()

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := sink.Write(ctx, Entry{StepID: "extract", ChunkIndex: i, Prompt: "p", RawResponse: "r", Timestamp: ts})
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "each write gets its own file despite identical timestamp and step id")

	for _, e := range entries {
		assert.True(t, filepath.Ext(e.Name()) == ".json")
	}
}

func TestFilesystemSinkEntryContainsPromptAndResponse(t *testing.T) {
	dir := t.TempDir()
	sink := NewFilesystemSink(dir)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, Entry{ChunkIndex: 0, Prompt: "the prompt", RawResponse: "the response", Timestamp: time.Now()}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "the prompt")
	assert.Contains(t, string(data), "the response")
}
