package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/wordgen/internal/model"
	"github.com/MeKo-Tech/wordgen/internal/models"
	"github.com/MeKo-Tech/wordgen/internal/pipeline"
	"github.com/spf13/cobra"
)

const stdinPath = "-"

// generateCmd runs every generation stage against a single model.
var generateCmd = &cobra.Command{
	Use:   "generate [model]",
	Short: "Generate sentences from a word-transition model",
	Long: `Load a word-transition model and run the four generation stages:
the most probable words, the most likely successor of every word,
a greedy one-best sentence and a beam search sentence.

The model is read from the given path, from the configured model
when no path is given, or from standard input when the path is "-".
A bare name such as "catsat" is looked up in the models directory.
Files ending in .yaml, .yml or .json are read in the structured
format; anything else is read as the plain text format.

Examples:
  wordgen generate model.txt
  wordgen generate model.yaml --format json
  wordgen generate model.txt --beam-width 4 --max-length 20
  cat model.txt | wordgen generate -`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runGenerateCommand,
}

func runGenerateCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := validateFormat(cfg.Output.Format); err != nil {
		return err
	}

	path := cfg.ModelPath
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no model given: pass a model path or set %q in the config", "model")
	}
	path = models.ResolveModelPath(cfg.ModelsDir, path)

	builder := pipeline.NewBuilder().
		WithModelPath(path).
		WithDecoderConfig(cfg.ToDecoderConfig()).
		WithTopWords(cfg.Output.TopWords)

	if path == stdinPath {
		m, err := model.Load(cmd.InOrStdin(), model.FormatText)
		if err != nil {
			return fmt.Errorf("failed to read model from stdin: %w", err)
		}
		builder = builder.WithModel(m)
	}

	gen, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	slog.Debug("Generating", "model", path, "vocabulary", gen.Model.Size())

	res, err := gen.RunContext(context.Background())
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	var out string
	switch cfg.Output.Format {
	case outputFormatJSON:
		out, err = pipeline.ToJSON(res)
	case outputFormatCSV:
		out, err = pipeline.ToCSV(res)
	default:
		out, err = pipeline.ToPlainText(res)
	}
	if err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}

	return writeOutput(cmd, out, cfg.Output.File)
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json, csv)")
	generateCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	generateCmd.Flags().Int("top-words", model.DefaultTopWords, "number of words reported by the top-words stage")
	addDecoderFlags(generateCmd)

	bindFlags(generateCmd, []flagBinding{
		{"output.format", "format"},
		{"output.file", "output"},
		{"output.top_words", "top-words"},
		{"decoder.beam_width", "beam-width"},
		{"decoder.max_rounds", "max-rounds"},
		{"decoder.max_sentence_length", "max-length"},
		{"decoder.max_greedy_steps", "max-greedy-steps"},
	})
}
