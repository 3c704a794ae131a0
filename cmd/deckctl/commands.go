package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/noah-isme/deck-tracker-api/internal/models"
	"github.com/noah-isme/deck-tracker-api/pkg/config"
	"github.com/noah-isme/deck-tracker-api/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := database.Migrate(cmd.Context(), a.DB); err != nil {
			return err
		}
		color.Green("schema is up to date")
		return nil
	},
}

var (
	importFile      string
	importReportDir string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import decks from a CSV sheet",
	Long: `Import decks from a CSV sheet using the same rules as the upload endpoint.

Rows that fail validation are written to an error report; its download link
is printed with the summary.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", importFile, err)
		}
		defer file.Close()

		a, err := bootstrap(withReportDir(importReportDir))
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Imports.ImportCSV(cmd.Context(), file)
		if err != nil {
			return err
		}
		printImportSummary(cmd.OutOrStdout(), result)
		return nil
	},
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send reminder mails for overdue picked-up decks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		sent, err := a.Reminders.SendOverdueReminders(cmd.Context())
		if err != nil {
			return err
		}
		if sent == 0 {
			color.Yellow("no overdue decks")
			return nil
		}
		color.Green("%d reminder(s) sent", sent)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to the CSV sheet")
	importCmd.Flags().StringVar(&importReportDir, "report-dir", "", "directory for the error report (defaults to REPORTS_STORAGE_DIR)")
	_ = importCmd.MarkFlagRequired("file")
}

func withReportDir(dir string) func(*config.Config) {
	return func(cfg *config.Config) {
		if dir != "" {
			cfg.Reports.StorageDir = dir
		}
	}
}

func printImportSummary(w io.Writer, result *models.ImportResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Submitted", "Inserted", "Failed"})
	table.Append([]string{
		strconv.Itoa(result.Submitted),
		strconv.Itoa(result.Inserted),
		strconv.Itoa(result.Failed),
	})
	table.Render()

	if len(result.Failures) == 0 {
		return
	}

	fmt.Fprintln(w)
	failures := tablewriter.NewWriter(w)
	failures.SetHeader([]string{"Line", "Reason"})
	for _, f := range result.Failures {
		failures.Append([]string{strconv.Itoa(f.Line), f.Reason})
	}
	failures.Render()

	if result.ErrorReportURL != "" {
		fmt.Fprintf(w, "\nerror report: %s\n", result.ErrorReportURL)
	}
}
