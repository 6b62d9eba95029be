package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OlderMutt/Surface-Minder/internal/adapters/notify"
	"github.com/OlderMutt/Surface-Minder/internal/adapters/reporting"
	"github.com/OlderMutt/Surface-Minder/internal/adapters/scanparse"
	"github.com/OlderMutt/Surface-Minder/internal/core/services"
)

var (
	checkTenant string
	checkKinds  []string
	checkMail   bool
	checkPDF    string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare a tenant's baseline to the latest combined snapshot",
	Long: `Ingests any new artifacts from the scans directory, assembles the latest
snapshot of the selected kinds and diffs it against the tenant's baseline.
With --mail the report is sent via SMTP; --pdf writes the report as PDF.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		ctx := cmd.Context()

		// Pick up fresh artifacts first, like a scheduled run would. An
		// ingest failure is not fatal to the comparison.
		ingest := services.NewIngestService(store, scanparse.ParseFile)
		if _, err := ingest.IngestDir(ctx, cfg.ScansDir); err != nil {
			slog.Warn("Ingest before check failed, comparing against stored artifacts", "error", err)
		}

		monitor := services.NewMonitor(store, store)
		result, err := monitor.Check(ctx, checkTenant, checkKinds)
		if err != nil {
			return err
		}

		if result.Report.Empty() {
			fmt.Println("No changes against the baseline")
			return nil
		}

		fmt.Print(notify.FormatReport(result))
		fmt.Printf("\nTotal changes: %d\n", result.Report.Total())

		if checkPDF != "" {
			data, err := reporting.NewPDFExporter().ExportDriftReport(result)
			if err != nil {
				return err
			}
			if err := os.WriteFile(checkPDF, data, 0o644); err != nil {
				return fmt.Errorf("write pdf: %w", err)
			}
			fmt.Printf("PDF report written: %s\n", checkPDF)
		}

		if checkMail {
			notifier := notify.NewSMTPNotifier(cfg.SMTP)
			notifier.PDF = reporting.NewPDFExporter()
			if err := notifier.Notify(ctx, result); err != nil {
				return fmt.Errorf("send report: %w", err)
			}
			fmt.Println("Report mailed")
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkTenant, "tenant", "", "Tenant name")
	checkCmd.Flags().StringSliceVar(&checkKinds, "kinds", defaultKinds(), "Scan kinds to combine")
	checkCmd.Flags().BoolVar(&checkMail, "mail", false, "Send the report via SMTP")
	checkCmd.Flags().StringVar(&checkPDF, "pdf", "", "Also write the report as PDF to this path")
	checkCmd.MarkFlagRequired("tenant")
	rootCmd.AddCommand(checkCmd)
}
