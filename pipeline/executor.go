package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	langextract "github.com/avalon-data/langextract"
	"github.com/avalon-data/langextract/annotate"
	"github.com/avalon-data/langextract/types"
)

// StepOutcome is one step's result: its annotated output (zero value if the
// step failed) plus the error and wall-clock duration.
type StepOutcome struct {
	Output   types.AnnotatedDocument
	Err      error
	Duration time.Duration
}

// Result is the outcome of running every step in a Config's topology, per
// spec §4.7: "a mapping from step id to output, plus wall-clock timing per
// step and total."
type Result struct {
	Steps     map[string]StepOutcome
	Order     []string // topological order, for deterministic iteration
	TotalTime time.Duration
}

// Executor runs a pipeline.Config's steps layer by layer. Each step is a
// single annotate.Engine call scoped to its own prompt and examples; an
// independent engine per step lets each step carry different examples
// while sharing one LLM capability and extraction config underneath
// (wired in by NewExecutor's caller, such as the CLI).
type Executor struct {
	newEngine func(examples []types.ExampleData) *annotate.Engine
}

// NewExecutor builds an Executor. newEngine is called once per step to
// build an annotate.Engine scoped to that step's examples; the caller
// supplies it so this package never constructs an llm.Capability itself.
func NewExecutor(newEngine func(examples []types.ExampleData) *annotate.Engine) *Executor {
	return &Executor{newEngine: newEngine}
}

// Run executes every step in cfg against inputText, per spec §4.7's
// per-step execution algorithm and layer-strict, within-layer-concurrent
// parallelism model.
func (ex *Executor) Run(ctx context.Context, inputText string, cfg *Config) (*Result, error) {
	topo, err := NewTopology(cfg.Steps)
	if err != nil {
		return nil, err
	}
	if err := ValidateFilters(cfg.Steps); err != nil {
		return nil, err
	}

	outputs := make(map[string][]types.Extraction, len(cfg.Steps))
	result := &Result{Steps: make(map[string]StepOutcome, len(cfg.Steps)), Order: topo.Order()}

	start := time.Now()
	for _, layer := range topo.Layers {
		outcomes := ex.runLayer(ctx, layer, topo, inputText, outputs, cfg.EnableParallelExecution)
		for i, stepID := range layer {
			result.Steps[stepID] = outcomes[i]
			if outcomes[i].Err == nil {
				outputs[stepID] = outcomes[i].Output.Extractions
			}
		}
	}
	result.TotalTime = time.Since(start)
	return result, nil
}

// runLayer runs every step in one topology layer, concurrently unless
// parallel execution is disabled for this pipeline (enable_parallel_execution:
// false runs the layer's steps one at a time instead — useful for
// deterministic ordering against a rate-limited provider). A step failure
// is recorded on that step's outcome only; per spec §4.7 "A step failure
// records the error and leaves the step's output empty; downstream steps
// proceed with whatever inputs they can assemble" — so runLayer itself
// never aborts on a single step's error.
func (ex *Executor) runLayer(ctx context.Context, layer []string, topo *Topology, inputText string, outputs map[string][]types.Extraction, parallel bool) []StepOutcome {
	outcomes := make([]StepOutcome, len(layer))

	runStep := func(gctx context.Context, i int, stepID string) {
		step, _ := topo.Step(stepID)
		stepStart := time.Now()

		text, err := stepInput(step, inputText, outputs)
		if err != nil {
			outcomes[i] = StepOutcome{Err: err, Duration: time.Since(stepStart)}
			return
		}

		engine := ex.newEngine(step.Examples)
		annotated, err := engine.Annotate(gctx, text, step.Prompt, step.Examples)
		if err != nil {
			outcomes[i] = StepOutcome{Err: err, Duration: time.Since(stepStart)}
			return
		}

		outcomes[i] = StepOutcome{
			Output: types.AnnotatedDocument{
				Text:        text,
				Extractions: annotated.Extractions,
				Metadata:    chunkErrorMetadata(annotated.Failures),
			},
			Duration: time.Since(stepStart),
		}
	}

	if !parallel {
		for i, stepID := range layer {
			runStep(ctx, i, stepID)
		}
		return outcomes
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, stepID := range layer {
		i, stepID := i, stepID
		g.Go(func() error {
			runStep(gctx, i, stepID)
			return nil
		})
	}
	_ = g.Wait() // errgroup is only used to fan out and wait (no concurrency limit); no step error aborts the layer

	return outcomes
}

// ValidateFilters compiles every step's text_pattern up front so a
// malformed pattern surfaces as a ConfigurationError before any step runs,
// rather than as a per-step failure discovered mid-run. Used by the CLI's
// `pipeline validate` subcommand alongside topology validation.
func ValidateFilters(steps []Step) error {
	for _, s := range steps {
		if s.Filter == nil || s.Filter.TextPattern == "" {
			continue
		}
		if _, err := regexp.Compile(s.Filter.TextPattern); err != nil {
			return fmt.Errorf("%w: step %q: invalid text_pattern %q: %v", langextract.ErrConfiguration, s.ID, s.Filter.TextPattern, err)
		}
	}
	return nil
}

// stepInput determines a step's input text per spec §4.7 step 1: the
// original input when it has no dependencies, otherwise the newline-joined
// text fields of its dependencies' filtered extractions.
func stepInput(step Step, inputText string, outputs map[string][]types.Extraction) (string, error) {
	if len(step.DependsOn) == 0 {
		return inputText, nil
	}

	var parts []string
	for _, dep := range step.DependsOn {
		filtered, err := applyFilter(outputs[dep], step.Filter)
		if err != nil {
			return "", err
		}
		for _, e := range filtered {
			parts = append(parts, e.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// applyFilter narrows extractions per spec §4.7 step 2: class_filter, then
// text_pattern, then a max_items truncation. Order is preserved throughout.
// A malformed text_pattern — possible since it comes straight from a
// user-authored YAML config, unvalidated beyond its own YAML syntax — is a
// ConfigurationError rather than a panic.
func applyFilter(extractions []types.Extraction, filter *StepFilter) ([]types.Extraction, error) {
	if filter == nil {
		return extractions, nil
	}

	var textPattern *regexp.Regexp
	if filter.TextPattern != "" {
		var err error
		textPattern, err = regexp.Compile(filter.TextPattern)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid text_pattern %q: %v", langextract.ErrConfiguration, filter.TextPattern, err)
		}
	}

	out := make([]types.Extraction, 0, len(extractions))
	for _, e := range extractions {
		if filter.ClassFilter != "" && e.Class != filter.ClassFilter {
			continue
		}
		if textPattern != nil && !textPattern.MatchString(e.Text) {
			continue
		}
		out = append(out, e)
		if filter.MaxItems > 0 && len(out) >= filter.MaxItems {
			break
		}
	}
	return out, nil
}

func chunkErrorMetadata(failures []annotate.ChunkFailure) map[string]interface{} {
	if len(failures) == 0 {
		return nil
	}
	errs := make([]map[string]interface{}, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, map[string]interface{}{
			"chunk_index": f.ChunkIndex,
			"message":     f.Err.Error(),
		})
	}
	return map[string]interface{}{"chunk_errors": errs}
}
