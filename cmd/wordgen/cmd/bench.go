package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MeKo-Tech/wordgen/internal/benchmark"
	"github.com/MeKo-Tech/wordgen/internal/model"
	"github.com/MeKo-Tech/wordgen/internal/models"
	"github.com/MeKo-Tech/wordgen/internal/pipeline"
	"github.com/spf13/cobra"
)

const defaultBenchIterations = 100

// benchCmd times each generation stage of a model.
var benchCmd = &cobra.Command{
	Use:   "bench <model>",
	Short: "Measure how long each generation stage takes",
	Long: `Load a model once and run every generation stage repeatedly,
reporting the average duration, allocated memory and garbage collections
per stage.

Examples:
  wordgen bench model.txt
  wordgen bench model.yaml --iterations 1000 --stage beam
  wordgen bench model.txt --beam-width 8 --format json`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runBenchCommand,
}

func runBenchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cmd.Flags().Changed("top-words") {
		cfg.Output.TopWords, _ = cmd.Flags().GetInt("top-words")
	}
	applyDecoderFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != outputFormatText && format != outputFormatJSON {
		return fmt.Errorf("invalid output format: %s (must be one of: text, json)", format)
	}
	iterations, _ := cmd.Flags().GetInt("iterations")
	if iterations < 1 {
		return errors.New("iterations must be at least 1")
	}
	stage, _ := cmd.Flags().GetString("stage")
	path := models.ResolveModelPath(cfg.ModelsDir, args[0])

	gen, err := pipeline.NewBuilder().
		WithModelPath(path).
		WithDecoderConfig(cfg.ToDecoderConfig()).
		WithTopWords(cfg.Output.TopWords).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	suite := benchmark.NewGeneratorSuite(cmd.Context(), gen)
	var results []benchmark.Result
	if stage != "" {
		r := suite.Run(stage, iterations)
		if r.Error != nil {
			return fmt.Errorf("unknown stage %q (must be one of: %v)", stage, suite.Names())
		}
		results = []benchmark.Result{r}
	} else {
		if results, err = suite.RunAll(cmd.Context(), iterations); err != nil {
			return err
		}
	}
	for _, r := range results {
		if r.Error != nil {
			return fmt.Errorf("stage %s failed: %w", r.Name, r.Error)
		}
	}

	var buf bytes.Buffer
	if format == outputFormatJSON {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to format results: %w", err)
		}
	} else {
		_, _ = fmt.Fprintf(&buf, "Model: %s (%d words)\n", path, gen.Model.Size())
		for _, r := range results {
			_, _ = fmt.Fprintln(&buf, r.String())
		}
	}
	return writeOutput(cmd, buf.String(), "")
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntP("iterations", "n", defaultBenchIterations, "iterations per stage")
	benchCmd.Flags().String("stage", "", "run a single stage (top_words, successors, greedy, beam, run)")
	benchCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
	benchCmd.Flags().Int("top-words", model.DefaultTopWords, "number of words reported by the top-words stage")
	addDecoderFlags(benchCmd)
}
