package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/MeKo-Tech/wordgen/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

type flagBinding struct {
	key  string
	flag string
}

// addDecoderFlags registers the decoder tuning flags shared by every command.
func addDecoderFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig().Decoder
	cmd.Flags().IntP("beam-width", "k", defaults.BeamWidth, "hypotheses kept per beam round")
	cmd.Flags().Int("max-rounds", defaults.MaxRounds, "maximum beam expansion rounds")
	cmd.Flags().Int("max-length", defaults.MaxSentenceLength, "maximum beam sentence length in tokens")
	cmd.Flags().Int("max-greedy-steps", defaults.MaxGreedySteps, "maximum greedy steps after the start word")
}

// applyDecoderFlags overrides the decoder section with explicitly set flags.
func applyDecoderFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("beam-width") {
		cfg.Decoder.BeamWidth, _ = cmd.Flags().GetInt("beam-width")
	}
	if cmd.Flags().Changed("max-rounds") {
		cfg.Decoder.MaxRounds, _ = cmd.Flags().GetInt("max-rounds")
	}
	if cmd.Flags().Changed("max-length") {
		cfg.Decoder.MaxSentenceLength, _ = cmd.Flags().GetInt("max-length")
	}
	if cmd.Flags().Changed("max-greedy-steps") {
		cfg.Decoder.MaxGreedySteps, _ = cmd.Flags().GetInt("max-greedy-steps")
	}
}

// bindFlags binds flags to viper configuration keys.
func bindFlags(cmd *cobra.Command, bindings []flagBinding) {
	for _, binding := range bindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func validateFormat(format string) error {
	validFormats := []string{outputFormatText, outputFormatJSON, outputFormatCSV}
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s (must be one of: %s)", format, strings.Join(validFormats, ", "))
}

// writeOutput prints content or writes it to outputFile when one is set.
func writeOutput(cmd *cobra.Command, content, outputFile string) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(content), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "Results written to %s\n", outputFile); err != nil {
			return fmt.Errorf("failed to write status: %w", err)
		}
		return nil
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), content); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
