package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"triviahub/internal/bootstrap/logging"
	"triviahub/internal/errs"
	"triviahub/internal/usecase/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Download the trivia CSV and load it into the questions table",
	Long: `One-shot ingestion batch: download the dataset, keep rows within the
value ceiling, validate each row, and insert all valid rows in a single
transaction. Re-running against a populated table duplicates rows.`,
	RunE: withApp(func(cmd *cobra.Command, services appServices) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		sourceURL, _ := cmd.Flags().GetString("source-url")
		maxValue, _ := cmd.Flags().GetInt("max-value")
		if sourceURL == "" {
			sourceURL = services.App.Config.Ingest.SourceURL
		}
		if maxValue <= 0 {
			maxValue = services.App.Config.Ingest.MaxValue
		}

		result, err := services.Ingest.Run(ctx, ingest.RunInput{
			SourceURL: sourceURL,
			MaxValue:  maxValue,
		})
		if err != nil {
			logging.Error(ctx, "ingestion failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run ingestion")
		}

		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"ingestion completed rows=%d filtered=%d inserted=%d skipped=%d\n",
			result.Rows, result.Filtered, result.Inserted, result.Skipped,
		); err != nil {
			return errs.Wrap(err, "write ingest output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("source-url", "", "CSV source URL (defaults to configured dataset)")
	ingestCmd.Flags().Int("max-value", 0, "Keep rows with Value at or below this dollar amount")
}
