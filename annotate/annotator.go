// Package annotate orchestrates a single extraction call: chunk the input,
// prompt an LLM capability per chunk with bounded concurrency, resolve and
// align the results, then aggregate into one ordered, deduplicated list.
package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/avalon-data/langextract/align"
	"github.com/avalon-data/langextract/audit"
	"github.com/avalon-data/langextract/chunker"
	"github.com/avalon-data/langextract/llm"
	"github.com/avalon-data/langextract/resolver"
	"github.com/avalon-data/langextract/types"
)

// ErrStrictMode is returned (wrapped with a count) when strict mode is
// enabled and every chunk in the call failed. The root facade maps this to
// its own exported langextract.ErrStrictMode sentinel so callers can
// errors.Is against the documented error taxonomy without this package
// needing to import the root one (which would cycle).
var ErrStrictMode = errors.New("annotate: all chunks failed in strict mode")

// Config mirrors the subset of ExtractConfig the annotator needs, passed in
// by the root facade so this package has no dependency on it (avoiding the
// import cycle the rest of the domain model already sidesteps via `types`).
type Config struct {
	MaxCharBuffer             int
	BatchLength               int
	MaxWorkers                int
	ExtractionPasses          int
	EnableMultipass           bool
	MultipassMinExtractions   int
	Temperature               float64
	FormatType                string
	CaseSensitive             bool
	FuzzyThreshold            float64
	MaxSearchWindow           int
	Strict                    bool
}

// PromptBuilder renders the task description, examples, format instruction
// and chunk content into the final prompt text sent to the LLM capability.
// Prompt rendering detail is intentionally external per spec §4.5 step 2;
// the annotator only supplies the structured fields.
type PromptBuilder interface {
	Build(promptDescription string, examples []types.ExampleData, formatType string, chunkContent string) string
}

// Engine runs the single-pass (and, when configured, multipass) annotation
// algorithm described in spec §4.5.
type Engine struct {
	capability llm.Capability
	prompts    PromptBuilder
	cfg        Config
	sink       audit.Sink
}

func New(capability llm.Capability, prompts PromptBuilder, cfg Config) *Engine {
	return &Engine{capability: capability, prompts: prompts, cfg: cfg, sink: audit.None{}}
}

// WithSink wires a raw-output sink, per spec §6's
// "{raw_output_dir}/{iso8601}_{step_id?}_{chunk_index}.json" persistence
// option. The default Engine (via New) discards every entry.
func (e *Engine) WithSink(sink audit.Sink) *Engine {
	if sink != nil {
		e.sink = sink
	}
	return e
}

// ChunkFailure records a chunk-level error without aborting the call.
type ChunkFailure struct {
	ChunkIndex int
	Err        error
}

// Result is what Annotate returns: the aggregated extractions plus any
// per-chunk failures encountered along the way.
type Result struct {
	Extractions []types.Extraction
	Failures    []ChunkFailure
}

// Annotate implements spec §4.5's algorithm end to end for one document (or
// one pipeline step's input text).
func (e *Engine) Annotate(ctx context.Context, text, promptDescription string, examples []types.ExampleData) (*Result, error) {
	chunks := chunker.New(chunker.Config{MaxCharBuffer: e.cfg.MaxCharBuffer}).Chunk(text)
	if len(chunks) == 0 {
		return &Result{}, nil
	}

	state := newAggregateState()
	passes := e.cfg.ExtractionPasses
	if passes <= 0 {
		passes = 1
	}

	targets := chunks
	temperature := e.cfg.Temperature
	for pass := 0; pass < passes; pass++ {
		if pass > 0 {
			if !e.cfg.EnableMultipass || len(targets) == 0 {
				break
			}
			temperature = nextPassTemperature(temperature)
		}

		outcomes := e.runWaves(ctx, targets, promptDescription, examples, temperature)
		if ctx.Err() != nil {
			// Per spec §5: a cancelled call discards partial results rather
			// than returning whatever chunks happened to finish first.
			return nil, ctx.Err()
		}
		for _, oc := range outcomes {
			if oc.err != nil {
				state.failures = append(state.failures, ChunkFailure{ChunkIndex: oc.chunk.Index, Err: oc.err})
				continue
			}
			state.merge(oc.extractions)
		}

		if pass+1 < passes && e.cfg.EnableMultipass {
			targets = lowYieldChunks(targets, outcomes, e.cfg.MultipassMinExtractions)
		}
	}

	if e.cfg.Strict && len(state.failures) == len(chunks) && len(chunks) > 0 {
		return nil, fmt.Errorf("%w: all %d chunks failed", ErrStrictMode, len(chunks))
	}

	result := state.ordered()
	return &Result{Extractions: result, Failures: state.failures}, nil
}

func nextPassTemperature(t float64) float64 {
	if t <= 0 {
		return 0.7
	}
	next := t + 0.2
	if next > 1.0 {
		return 1.0
	}
	return next
}

type chunkOutcome struct {
	chunk       chunker.Chunk
	extractions []types.Extraction
	err         error
}

// runWaves schedules chunks in waves of BatchLength, with up to MaxWorkers
// concurrent inferences inside each wave, per spec §4.5 step 3. Grounded on
// the teacher's graph.Builder.Build semaphore+waitgroup pattern, generalized
// to golang.org/x/sync/semaphore so wave boundaries are explicit instead of
// one flat fire-and-wait-all loop.
func (e *Engine) runWaves(ctx context.Context, chunks []chunker.Chunk, promptDescription string, examples []types.ExampleData, temperature float64) []chunkOutcome {
	batchLength := e.cfg.BatchLength
	if batchLength <= 0 {
		batchLength = len(chunks)
	}
	maxWorkers := e.cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	outcomes := make([]chunkOutcome, len(chunks))
	for waveStart := 0; waveStart < len(chunks); waveStart += batchLength {
		waveEnd := waveStart + batchLength
		if waveEnd > len(chunks) {
			waveEnd = len(chunks)
		}
		wave := chunks[waveStart:waveEnd]
		e.runWave(ctx, wave, outcomes[waveStart:waveEnd], promptDescription, examples, temperature, maxWorkers)
	}
	return outcomes
}

func (e *Engine) runWave(ctx context.Context, wave []chunker.Chunk, out []chunkOutcome, promptDescription string, examples []types.ExampleData, temperature float64, maxWorkers int) {
	sem := semaphore.NewWeighted(int64(maxWorkers))
	done := make(chan struct{}, len(wave))

	for i, c := range wave {
		if err := sem.Acquire(ctx, 1); err != nil {
			out[i] = chunkOutcome{chunk: c, err: err}
			done <- struct{}{}
			continue
		}
		go func(idx int, chunk chunker.Chunk) {
			defer sem.Release(1)
			defer func() { done <- struct{}{} }()
			out[idx] = e.processChunk(ctx, chunk, promptDescription, examples, temperature)
		}(i, c)
	}

	for range wave {
		<-done
	}
}

func (e *Engine) processChunk(ctx context.Context, c chunker.Chunk, promptDescription string, examples []types.ExampleData, temperature float64) chunkOutcome {
	start := time.Now()
	prompt := e.prompts.Build(promptDescription, examples, e.cfg.FormatType, c.Content)

	results, err := e.capability.Infer(ctx, []string{prompt}, llm.InferParams{Temperature: temperature})
	if err != nil {
		slog.Warn("annotate: chunk inference failed", "chunk_index", c.Index, "error", err, "elapsed", time.Since(start))
		return chunkOutcome{chunk: c, err: err}
	}
	if len(results) == 0 || results[0].Err != nil {
		var reqErr error
		if len(results) > 0 {
			reqErr = results[0].Err
		} else {
			reqErr = fmt.Errorf("annotate: no result returned for chunk %d", c.Index)
		}
		slog.Warn("annotate: chunk request failed", "chunk_index", c.Index, "error", reqErr)
		return chunkOutcome{chunk: c, err: reqErr}
	}
	if len(results[0].Output.Results) == 0 {
		err := fmt.Errorf("annotate: empty output for chunk %d", c.Index)
		slog.Warn("annotate: chunk returned no candidates", "chunk_index", c.Index)
		return chunkOutcome{chunk: c, err: err}
	}

	rawText := results[0].Output.Results[0].Text
	if err := e.sink.Write(ctx, audit.Entry{ChunkIndex: c.Index, Prompt: prompt, RawResponse: rawText, Timestamp: start}); err != nil {
		slog.Warn("annotate: raw output sink write failed", "chunk_index", c.Index, "error", err)
	}

	parsed, err := resolver.Resolve(rawText)
	if err != nil {
		slog.Warn("annotate: chunk resolve failed", "chunk_index", c.Index, "error", err)
		return chunkOutcome{chunk: c, err: err}
	}

	alignCfg := align.Config{
		CaseSensitive:   e.cfg.CaseSensitive,
		FuzzyThreshold:  e.cfg.FuzzyThreshold,
		MaxSearchWindow: e.cfg.MaxSearchWindow,
	}
	extractions := make([]types.Extraction, 0, len(parsed))
	for _, p := range parsed {
		interval, status := align.Align(p.Text, c.Content, c.Offset, alignCfg)
		ext := types.Extraction{
			Class:           p.Class,
			Text:            p.Text,
			Interval:        interval,
			Attributes:      p.Attributes,
			AlignmentStatus: status,
			GroupIndex:      p.GroupIndex,
			ChunkIndex:      c.Index,
		}
		extractions = append(extractions, ext)
	}

	slog.Debug("annotate: chunk processed", "chunk_index", c.Index, "extractions", len(extractions), "elapsed", time.Since(start))
	return chunkOutcome{chunk: c, extractions: extractions}
}

func lowYieldChunks(chunks []chunker.Chunk, outcomes []chunkOutcome, minExtractions int) []chunker.Chunk {
	var out []chunker.Chunk
	for i, c := range chunks {
		if outcomes[i].err != nil {
			continue // failed chunks are not re-run; their failure stays recorded
		}
		if len(outcomes[i].extractions) < minExtractions {
			out = append(out, c)
		}
	}
	return out
}
