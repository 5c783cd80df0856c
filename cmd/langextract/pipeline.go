package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avalon-data/langextract/annotate"
	"github.com/avalon-data/langextract/audit"
	"github.com/avalon-data/langextract/input"
	"github.com/avalon-data/langextract/pipeline"
	"github.com/avalon-data/langextract/types"
)

var (
	pipelineHistoryDB string
)

func newPipelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run or validate a multi-step extraction pipeline loaded from YAML",
	}

	cmd.PersistentFlags().StringVar(&pipelineHistoryDB, "history-db", "", "SQLite path to record pipeline runs to (optional)")

	cmd.AddCommand(newPipelineRunCmd(), newPipelineValidateCmd())
	return cmd
}

func newPipelineRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <pipeline.yaml> <text|path|url>",
		Short: "Run every step of a pipeline config against an input and print the result",
		Args:  cobra.ExactArgs(2),
		RunE:  runPipelineRun,
	}
}

func newPipelineValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pipeline.yaml>",
		Short: "Check a pipeline config's step topology without making any LLM calls",
		Args:  cobra.ExactArgs(1),
		RunE:  runPipelineValidate,
	}
}

func loadPipelineConfig(path string) (*pipeline.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline config: %w", err)
	}
	cfg, err := pipeline.LoadConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing pipeline config: %w", err)
	}
	return cfg, nil
}

func runPipelineValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadPipelineConfig(args[0])
	if err != nil {
		return err
	}

	topo, err := pipeline.NewTopology(cfg.Steps)
	if err != nil {
		return fmt.Errorf("invalid pipeline topology: %w", err)
	}

	if err := pipeline.ValidateFilters(cfg.Steps); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "pipeline %q: %d step(s), %d layer(s)\n", cfg.Name, len(cfg.Steps), len(topo.Layers))
	for i, layer := range topo.Layers {
		fmt.Fprintf(os.Stdout, "  layer %d: %v\n", i, layer)
	}
	return nil
}

func runPipelineRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	configPath, textOrURL := args[0], args[1]

	cfg, err := loadPipelineConfig(configPath)
	if err != nil {
		return err
	}

	text, err := input.Load(ctx, textOrURL)
	if err != nil {
		return fmt.Errorf("loading input: %w", err)
	}

	capability, err := buildCapability()
	if err != nil {
		return fmt.Errorf("building LLM capability: %w", err)
	}
	sink := buildSink()

	global := cfg.GlobalConfig
	global.ApplyDefaults()

	newEngine := func(examples []types.ExampleData) *annotate.Engine {
		return annotate.New(capability, annotate.DefaultPromptBuilder{}, annotate.Config{
			MaxCharBuffer:           global.MaxCharBuffer,
			BatchLength:             global.BatchLength,
			MaxWorkers:              global.MaxWorkers,
			ExtractionPasses:        global.ExtractionPasses,
			EnableMultipass:         global.EnableMultipass,
			MultipassMinExtractions: global.MultipassMinExtractions,
			Temperature:             global.Temperature,
			FormatType:              string(global.FormatType),
			CaseSensitive:           global.CaseSensitive,
			FuzzyThreshold:          global.FuzzyThreshold,
			MaxSearchWindow:         global.MaxSearchWindow,
			Strict:                  global.Strict,
		}).WithSink(sink)
	}

	executor := pipeline.NewExecutor(newEngine)
	result, err := executor.Run(ctx, text, cfg)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	if pipelineHistoryDB != "" {
		historySink, err := audit.NewSQLiteSink(pipelineHistoryDB)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer historySink.Close()

		history := pipeline.NewRunHistory(historySink)
		runID, err := history.Record(ctx, result)
		if err != nil {
			return fmt.Errorf("recording pipeline run: %w", err)
		}
		fmt.Fprintf(os.Stderr, "recorded run %s\n", runID)
	}

	return printPipelineResult(result)
}

func printPipelineResult(result *pipeline.Result) error {
	type stepView struct {
		Error      string                   `json:"error,omitempty"`
		DurationMS int64                    `json:"duration_ms"`
		Output     *types.AnnotatedDocument `json:"output,omitempty"`
	}
	view := struct {
		Order   []string            `json:"order"`
		TotalMS int64               `json:"total_ms"`
		Steps   map[string]stepView `json:"steps"`
	}{
		Order:   result.Order,
		TotalMS: result.TotalTime.Milliseconds(),
		Steps:   make(map[string]stepView, len(result.Steps)),
	}
	for id, outcome := range result.Steps {
		sv := stepView{DurationMS: outcome.Duration.Milliseconds()}
		if outcome.Err != nil {
			sv.Error = outcome.Err.Error()
		} else {
			out := outcome.Output
			sv.Output = &out
		}
		view.Steps[id] = sv
	}
	return printJSON(view)
}
