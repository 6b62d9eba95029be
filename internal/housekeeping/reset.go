// Package housekeeping archives the workspace (database, baseline CSV,
// scan artifacts) into a timestamped backup directory and recreates an
// empty schema.
package housekeeping

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/OlderMutt/Surface-Minder/internal/adapters/storage"
	"github.com/OlderMutt/Surface-Minder/internal/config"
	"github.com/OlderMutt/Surface-Minder/internal/core/ports"
)

// Archiver performs the backup-and-reset housekeeping run. None of this
// touches artifact rows selectively; retention is all-or-nothing by design,
// the core never deletes artifacts.
type Archiver struct {
	cfg *config.Config
	now func() time.Time
}

// NewArchiver creates an archiver for the configured workspace paths.
func NewArchiver(cfg *config.Config) *Archiver {
	return &Archiver{cfg: cfg, now: time.Now}
}

// Reset backs up the database file, exports the baseline table as CSV,
// moves every scan artifact into backup/<ts>/scans/, then recreates an
// empty schema at the configured database path. It opens and closes its
// own store handle: the database file must not be held open while it is
// copied away. Returns the backup directory it created.
func (a *Archiver) Reset(ctx context.Context) (string, error) {
	ts := a.now().UTC().Format("20060102-150405")
	backupDir := filepath.Join(a.cfg.BackupDir, ts)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	if _, err := os.Stat(a.cfg.DBPath); err == nil {
		if err := a.backupDatabase(ctx, backupDir); err != nil {
			return "", err
		}
	}

	if err := a.archiveScans(backupDir); err != nil {
		return "", err
	}

	// Recreate an empty schema so the next run starts clean.
	store, err := storage.NewSQLiteAdapter(a.cfg.DBPath)
	if err != nil {
		return "", fmt.Errorf("recreate database: %w", err)
	}
	if err := store.Close(); err != nil {
		return "", err
	}

	slog.Info("Workspace reset complete", "backup", backupDir)
	return backupDir, nil
}

// backupDatabase exports the baseline table as CSV, copies the database
// file into the backup directory and removes the original.
func (a *Archiver) backupDatabase(ctx context.Context, backupDir string) error {
	store, err := storage.NewSQLiteAdapter(a.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	csvErr := a.exportBaselineCSV(ctx, store, filepath.Join(backupDir, "baseline.csv"))
	if err := store.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	if csvErr != nil {
		return csvErr
	}

	if err := copyFile(a.cfg.DBPath, filepath.Join(backupDir, filepath.Base(a.cfg.DBPath))); err != nil {
		return fmt.Errorf("backup database: %w", err)
	}
	if err := os.Remove(a.cfg.DBPath); err != nil {
		return fmt.Errorf("remove database: %w", err)
	}
	return nil
}

func (a *Archiver) exportBaselineCSV(ctx context.Context, baselines ports.BaselineStore, path string) error {
	entries, err := baselines.Entries(ctx)
	if err != nil {
		return fmt.Errorf("read baseline entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create baseline csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"tenant", "host", "port", "proto", "state", "service", "set_at"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.Tenant, e.Host, strconv.Itoa(e.Port), e.Proto, e.State, e.Service,
			e.SetAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (a *Archiver) archiveScans(backupDir string) error {
	entries, err := os.ReadDir(a.cfg.ScansDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read scans dir: %w", err)
	}

	dst := filepath.Join(backupDir, "scans")
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".xml") {
			continue
		}
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return err
		}
		src := filepath.Join(a.cfg.ScansDir, e.Name())
		if err := moveFile(src, filepath.Join(dst, e.Name())); err != nil {
			return fmt.Errorf("archive %s: %w", e.Name(), err)
		}
	}
	return nil
}

// moveFile renames, falling back to copy-and-unlink across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
