// Package cli wires the cobra command surface to the core services. Every
// command maps 1:1 to one core operation; the commands themselves only
// parse flags, build adapters and print results.
package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OlderMutt/Surface-Minder/internal/adapters/storage"
	"github.com/OlderMutt/Surface-Minder/internal/config"
	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
)

var (
	cfgPath string
	dbPath  string
	debug   bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "surfaceminder",
	Short: "External attack surface drift monitor",
	Long: `SurfaceMinder ingests nmap scan artifacts, keeps per-tenant approved
baselines and reports when the exposed surface drifts from them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		if debug {
			cfg.Debug = true
		}
		level := slog.LevelInfo
		if cfg.Debug {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return nil
	},
}

// Execute runs the CLI with the given root context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// openStore opens the SQLite adapter, creating parent directories and the
// schema when missing.
func openStore() (*storage.SQLiteAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, err
	}
	return storage.NewSQLiteAdapter(cfg.DBPath)
}

// defaultKinds is the kind order used when the caller does not narrow it:
// latest TCP merged with latest UDP, UDP winning a (host, port, proto) tie.
func defaultKinds() []string {
	return []string{domain.KindTCP, domain.KindUDP}
}
