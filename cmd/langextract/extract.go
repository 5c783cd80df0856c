package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	langextract "github.com/avalon-data/langextract"
	"github.com/avalon-data/langextract/types"
)

var (
	extractPromptDescription string
	extractExamplesFile      string
	extractConfigFile        string
	extractMaxCharBuffer     int
	extractFormat            string
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <text|path|url>",
		Short: "Run a single extraction call and print the AnnotatedDocument as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}

	cmd.Flags().StringVar(&extractPromptDescription, "prompt", "", "task description guiding the extraction")
	cmd.Flags().StringVar(&extractExamplesFile, "examples-file", "", "path to a JSON file of []types.ExampleData few-shot examples")
	cmd.Flags().StringVar(&extractConfigFile, "config", "", "path to a JSON ExtractConfig file; flags override its fields")
	cmd.Flags().IntVar(&extractMaxCharBuffer, "max-char-buffer", 0, "chunk size target in Unicode code points (0 = config/default)")
	cmd.Flags().StringVar(&extractFormat, "format", "", "JSON or YAML response format (empty = config/default)")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	textOrURL := args[0]

	capability, err := buildCapability()
	if err != nil {
		return fmt.Errorf("building LLM capability: %w", err)
	}

	cfg, err := loadExtractConfig()
	if err != nil {
		return err
	}
	if extractMaxCharBuffer > 0 {
		cfg.MaxCharBuffer = extractMaxCharBuffer
	}
	if extractFormat != "" {
		cfg.FormatType = langextract.FormatType(extractFormat)
	}

	examples, err := loadExamples(extractExamplesFile)
	if err != nil {
		return err
	}

	engine := langextract.New(capability).WithSink(buildSink())
	doc, err := engine.Extract(ctx, textOrURL, extractPromptDescription, examples, cfg)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	return printJSON(doc)
}

func loadExtractConfig() (langextract.ExtractConfig, error) {
	if extractConfigFile == "" {
		return langextract.DefaultExtractConfig(), nil
	}

	data, err := os.ReadFile(extractConfigFile)
	if err != nil {
		return langextract.ExtractConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	cfg := langextract.DefaultExtractConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return langextract.ExtractConfig{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

func loadExamples(path string) ([]types.ExampleData, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading examples file: %w", err)
	}
	var examples []types.ExampleData
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("parsing examples file: %w", err)
	}
	return examples, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
