package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/MeKo-Tech/wordgen/internal/models"
	"github.com/spf13/cobra"
)

// modelsCmd lists the models that bare names resolve to.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models in the models directory",
	Long: `List the model files in the models directory. Each listed name can
be passed to generate, bench or serve in place of a path.

Examples:
  wordgen models
  wordgen models --models-dir ./corpora --format json`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := GetConfig()
		format, _ := cmd.Flags().GetString("format")
		if format != outputFormatText && format != outputFormatJSON {
			return fmt.Errorf("invalid output format: %s (must be one of: text, json)", format)
		}

		list, err := models.ListAvailableModels(cfg.ModelsDir)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if format == outputFormatJSON {
			if list == nil {
				list = []models.ModelInfo{}
			}
			enc := json.NewEncoder(&buf)
			enc.SetIndent("", "  ")
			if err := enc.Encode(list); err != nil {
				return fmt.Errorf("failed to format models: %w", err)
			}
			return writeOutput(cmd, buf.String(), "")
		}

		if len(list) == 0 {
			return writeOutput(cmd, fmt.Sprintf("No models found in %s", models.GetModelsDir(cfg.ModelsDir)), "")
		}
		tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "NAME\tFORMAT\tSIZE\tPATH")
		for _, m := range list {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", m.Name, m.Format, m.Size, m.Path)
		}
		_ = tw.Flush()
		return writeOutput(cmd, buf.String(), "")
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringP("format", "f", outputFormatText, "output format (text, json)")
}
