package cli

import (
	"github.com/spf13/cobra"

	"github.com/OlderMutt/Surface-Minder/internal/adapters/web"
	"github.com/OlderMutt/Surface-Minder/internal/core/services"
	"github.com/OlderMutt/Surface-Minder/internal/telemetry"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only HTTP API and Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		telemetry.InitMetrics()

		addr := serveAddr
		if addr == "" {
			addr = cfg.Addr
		}
		monitor := services.NewMonitor(store, store)
		server := web.NewServer(addr, store, store, monitor, defaultKinds())
		return server.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (defaults to config addr)")
	rootCmd.AddCommand(serveCmd)
}
