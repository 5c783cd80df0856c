package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FilesystemSink writes each entry as its own JSON file under Dir, per
// spec §6: "{raw_output_dir}/{iso8601}_{step_id?}_{chunk_index}.json".
// Filenames carry a uuid fragment (grounded on the pack's
// uuid.New().String() idiom, e.g. ersonp-lore-core's sqlite repository) so
// concurrent workers in the same wave never collide without needing a
// lock, per spec §5's shared-resources note.
type FilesystemSink struct {
	Dir string
}

func NewFilesystemSink(dir string) *FilesystemSink {
	return &FilesystemSink{Dir: dir}
}

func (s *FilesystemSink) Write(ctx context.Context, e Entry) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("audit: creating raw output dir: %w", err)
	}

	frag := uuid.New().String()[:8]
	name := fmt.Sprintf("%s_%s_%d_%s.json", e.Timestamp.UTC().Format("20060102T150405.000000000Z"), stepFragment(e.StepID), e.ChunkIndex, frag)

	payload := struct {
		Prompt      string `json:"prompt"`
		RawResponse string `json:"raw_response"`
		Timestamp   string `json:"timestamp"`
	}{
		Prompt:      e.Prompt,
		RawResponse: e.RawResponse,
		Timestamp:   e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z"),
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("audit: marshaling entry: %w", err)
	}

	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o644)
}

func stepFragment(stepID string) string {
	if stepID == "" {
		return "doc"
	}
	return stepID
}
