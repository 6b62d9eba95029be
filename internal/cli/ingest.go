package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OlderMutt/Surface-Minder/internal/adapters/scanparse"
	"github.com/OlderMutt/Surface-Minder/internal/core/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest all new scan artifacts from the scans directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		svc := services.NewIngestService(store, scanparse.ParseFile)
		stats, err := svc.IngestDir(cmd.Context(), cfg.ScansDir)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d artifact(s) (%d observations), %d duplicate(s) skipped, %d parse error(s)\n",
			stats.Ingested, stats.Observations, stats.Skipped, stats.ParseErrors)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
