package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/export/sheets"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	addTrendFlags(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Append a trend series to the configured Google Sheet",
	Long: `Append the aggregated trend buckets to GOOGLE_SHEET_NAME in
GOOGLE_SPREADSHEET_ID using the service account in
GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if !app.cfg.SheetsConfigured() {
		return errors.New("Google Sheets export is not configured: set GOOGLE_SPREADSHEET_ID")
	}
	q, err := parseTrendFlags(cmd)
	if err != nil {
		return err
	}
	res, err := OpenBackend(cmd.Context(), app.cfg, app.logger)
	if err != nil {
		return err
	}
	defer res.Close()

	buckets, err := loadBuckets(cmd.Context(), res.Backend, q)
	if err != nil {
		return err
	}
	exp, err := sheets.New(cmd.Context(), app.cfg)
	if err != nil {
		return err
	}
	n, err := exp.Export(cmd.Context(), buckets, q.granularity)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d %s buckets to %s\n", n, q.granularity, app.cfg.GoogleSheetName)
	return nil
}
