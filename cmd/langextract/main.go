// Command langextract runs the extraction core from a terminal: one-shot
// single-call extraction, or a multi-step pipeline loaded from a YAML
// config, per SPEC_FULL.md §4 (Supplemented Features — CLI).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avalon-data/langextract/audit"
	"github.com/avalon-data/langextract/llm"
)

var version = "0.1.0-dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "langextract",
		Short:   "Extract structured, grounded data from text with an LLM",
		Version: version,
	}

	rootCmd.PersistentFlags().String("provider", "openai", "LLM provider: openai, ollama, lmstudio, openrouter, groq, xai, gemini, custom")
	rootCmd.PersistentFlags().String("model", "", "model name")
	rootCmd.PersistentFlags().String("base-url", "", "provider base URL override")
	rootCmd.PersistentFlags().String("api-key", "", "provider API key (falls back to LANGEXTRACT_API_KEY)")
	rootCmd.PersistentFlags().String("raw-output-dir", "", "directory to write raw prompt/response pairs to, per chunk")

	viper.SetEnvPrefix("LANGEXTRACT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("api-key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("raw-output-dir", rootCmd.PersistentFlags().Lookup("raw-output-dir"))

	rootCmd.AddCommand(newExtractCmd(), newPipelineCmd())

	return rootCmd.ExecuteContext(ctx)
}

// buildCapability constructs the LLM capability every subcommand needs
// from viper-bound flags/env, in the style of lore-core's
// buildDependencies: one place that turns CLI config into concrete
// infrastructure.
func buildCapability() (llm.Capability, error) {
	apiKey := viper.GetString("api-key")
	if apiKey == "" {
		apiKey = os.Getenv("LANGEXTRACT_API_KEY")
	}
	return llm.NewCapability(llm.Config{
		Provider: viper.GetString("provider"),
		Model:    viper.GetString("model"),
		BaseURL:  viper.GetString("base-url"),
		APIKey:   apiKey,
	})
}

// buildSink wires a filesystem audit sink when --raw-output-dir is set,
// per spec §6's optional raw-output persistence.
func buildSink() audit.Sink {
	dir := viper.GetString("raw-output-dir")
	if dir == "" {
		return audit.None{}
	}
	return audit.NewFilesystemSink(dir)
}
