package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/MeKo-Tech/wordgen/internal/batch"
	"github.com/MeKo-Tech/wordgen/internal/config"
	"github.com/MeKo-Tech/wordgen/internal/pipeline"
	"github.com/spf13/cobra"
)

// batchCmd runs the generation stages over many models in parallel.
var batchCmd = &cobra.Command{
	Use:   "batch [models or directories...]",
	Short: "Generate sentences from multiple models in parallel",
	Long: `Run every generation stage for each model file using a pool of
parallel workers. Results are reported in the order the models were given.
Directories are expanded to the model files they contain.

Examples:
  wordgen batch models/*.txt
  wordgen batch models/ --recursive --exclude 'draft*'
  wordgen batch a.yaml b.json --workers 8 --format json --output results.json
  wordgen batch models/*.txt --continue-on-error --stats`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// batchOptions holds the batch command settings after flag overrides.
type batchOptions struct {
	Format          string
	OutputFile      string
	Workers         int
	ContinueOnError bool
	Quiet           bool
	ShowStats       bool
	Discovery       batch.DiscoveryOptions
}

// configToBatchOptions maps the centralized configuration to batch
// settings, letting explicitly set flags win.
func configToBatchOptions(cfg *config.Config, cmd *cobra.Command) batchOptions {
	opts := batchOptions{
		Format:          cfg.Output.Format,
		OutputFile:      cfg.Output.File,
		Workers:         cfg.Batch.Workers,
		ContinueOnError: cfg.Batch.ContinueOnError,
	}
	if cmd.Flags().Changed("format") {
		opts.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("output") {
		opts.OutputFile, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("continue-on-error") {
		opts.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}
	if cmd.Flags().Changed("top-words") {
		cfg.Output.TopWords, _ = cmd.Flags().GetInt("top-words")
	}
	applyDecoderFlags(cmd, cfg)

	opts.Quiet, _ = cmd.Flags().GetBool("quiet")
	opts.ShowStats, _ = cmd.Flags().GetBool("stats")
	opts.Discovery.Recursive, _ = cmd.Flags().GetBool("recursive")
	opts.Discovery.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	opts.Discovery.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	return opts
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	opts := configToBatchOptions(cfg, cmd)

	if opts.Format == "" {
		opts.Format = outputFormatText
	}
	if err := validateFormat(opts.Format); err != nil {
		return err
	}
	if opts.Workers < 0 {
		return fmt.Errorf("invalid workers: %d (must not be negative)", opts.Workers)
	}
	if err := cfg.ToDecoderConfig().Validate(); err != nil {
		return fmt.Errorf("invalid decoder settings: %w", err)
	}

	paths, err := batch.DiscoverModelFiles(args, opts.Discovery)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no model files found in %s", strings.Join(args, ", "))
	}
	slog.Debug("Discovered model files", "count", len(paths))

	pCfg := cfg.ToPipelineConfig()
	pCfg.Parallel.MaxWorkers = opts.Workers
	if !opts.Quiet {
		pCfg.Parallel.ProgressCallback = pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), "Models: ")
	}
	pCfg.Parallel.ErrorHandler = func(i int, path string, err error) {
		slog.Warn("Model failed", "index", i, "model", path, "error", err)
	}

	start := time.Now()
	results, err := pipeline.RunFiles(context.Background(), paths, pCfg)
	duration := time.Since(start)
	if err != nil && (!opts.ContinueOnError || results == nil) {
		return fmt.Errorf("batch generation failed: %w", err)
	}

	out, err := formatBatch(paths, results, opts.Format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	if err := writeOutput(cmd, out, opts.OutputFile); err != nil {
		return err
	}

	if opts.ShowStats {
		workers := opts.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		stats := pipeline.CalculateParallelStats(results, duration, min(workers, len(paths)))
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(),
			"Processed %d/%d models (%d failed) in %s with %d workers (%.1f models/s)\n",
			stats.ProcessedModels, stats.TotalModels, stats.FailedModels,
			stats.TotalDuration.Round(time.Millisecond), stats.WorkerCount, stats.ThroughputPerSec)
	}
	return nil
}

// formatBatch renders the successful results; failed models leave nil
// entries and are skipped.
func formatBatch(paths []string, results []*pipeline.Result, format string) (string, error) {
	ok := make([]*pipeline.Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			ok = append(ok, r)
		}
	}

	switch format {
	case outputFormatJSON:
		return pipeline.ToJSONBatch(ok)
	case outputFormatCSV:
		return pipeline.ToCSVBatch(ok)
	}

	var sb strings.Builder
	for i, r := range results {
		if r == nil {
			continue
		}
		txt, err := pipeline.ToPlainText(r)
		if err != nil {
			return "", err
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "# %s\n", paths[i])
		sb.WriteString(txt)
	}
	return sb.String(), nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("format", "f", outputFormatText, "output format: text, json, csv")
	batchCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	batchCmd.Flags().Int("top-words", config.DefaultConfig().Output.TopWords, "number of words reported by the top-words stage")
	addDecoderFlags(batchCmd)

	batchCmd.Flags().IntP("workers", "w", 0, fmt.Sprintf("number of parallel workers (default: %d)", runtime.NumCPU()))
	batchCmd.Flags().Bool("continue-on-error", false, "report the models that succeeded even if some fail")
	batchCmd.Flags().Bool("quiet", false, "suppress progress output")

	// Model discovery flags
	batchCmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	batchCmd.Flags().StringSlice("include", batch.DefaultIncludePatterns, "file patterns to include")
	batchCmd.Flags().StringSlice("exclude", []string{}, "file patterns to exclude")
	batchCmd.Flags().Bool("stats", false, "print processing statistics")
}
