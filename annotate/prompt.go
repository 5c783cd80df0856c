package annotate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/avalon-data/langextract/types"
)

// DefaultPromptBuilder renders the fields spec §4.5 step 2 requires into a
// single prompt string, in the style of the teacher's hand-templated
// prompts (graph.entityExtractionPrompt): task description, rendered
// examples, a format instruction, then the chunk text.
type DefaultPromptBuilder struct{}

func (DefaultPromptBuilder) Build(promptDescription string, examples []types.ExampleData, formatType string, chunkContent string) string {
	var b strings.Builder

	b.WriteString(promptDescription)
	b.WriteString("\n\n")

	if len(examples) > 0 {
		b.WriteString("EXAMPLES:\n\n")
		for _, ex := range examples {
			b.WriteString(fmt.Sprintf("Input: %s\nOutput:\n%s\n\n", ex.Text, renderExampleOutput(ex, formatType)))
		}
	}

	b.WriteString(formatInstruction(formatType))
	b.WriteString("\n\nTEXT:\n")
	b.WriteString(chunkContent)

	return b.String()
}

func formatInstruction(formatType string) string {
	switch formatType {
	case "YAML":
		return "Respond with a YAML list of single-key mappings, one per extraction, each key the extraction's class and its value the extracted text. Do not include any prose outside the YAML."
	default:
		return `Respond with a JSON array of single-key objects, one per extraction, each key the extraction's class and its value the extracted text. Do not include any prose outside the JSON.`
	}
}

// renderExampleOutput renders one few-shot example's extractions in the
// shape the model is being asked to produce, so the example is literally
// what a correct response looks like.
func renderExampleOutput(ex types.ExampleData, formatType string) string {
	items := make([]map[string]string, 0, len(ex.Extractions))
	for _, e := range ex.Extractions {
		items = append(items, map[string]string{e.Class: e.Text})
	}
	if formatType == "YAML" {
		var b strings.Builder
		for _, item := range items {
			for k, v := range item {
				b.WriteString(fmt.Sprintf("- %s: %q\n", k, v))
			}
		}
		return b.String()
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}
