package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
	"github.com/OlderMutt/Surface-Minder/internal/core/ports"
	"github.com/OlderMutt/Surface-Minder/internal/telemetry"
)

// ParseFunc turns one raw scan artifact into observations. Wired to the
// nmap XML parser in production, swappable in tests.
type ParseFunc func(path string) ([]domain.Observation, error)

// IngestStats summarizes one ingestion run over a scans directory.
type IngestStats struct {
	Ingested     int `json:"ingested"`
	Skipped      int `json:"skipped"` // already-known artifact names
	ParseErrors  int `json:"parse_errors"`
	Observations int `json:"observations"`
}

// IngestService walks a directory of scan artifacts and feeds the new ones
// into the snapshot store.
type IngestService struct {
	store ports.SnapshotStore
	parse ParseFunc
}

// NewIngestService wires the snapshot store to an artifact parser.
func NewIngestService(store ports.SnapshotStore, parse ParseFunc) *IngestService {
	return &IngestService{store: store, parse: parse}
}

// IngestDir ingests every *.xml artifact under dir, in name order. The run
// is idempotent at artifact granularity: names already in the store are
// skipped, so re-running over the same directory only processes new files.
// A file that fails to parse is logged and skipped; the batch continues.
// Storage failures abort the run.
func (s *IngestService) IngestDir(ctx context.Context, dir string) (IngestStats, error) {
	var stats IngestStats

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("read scans dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".xml") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		kind := domain.KindFromName(name)

		observations, err := s.parse(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("Skipping unparseable artifact", "artifact", name, "error", err)
			telemetry.IngestSkips.WithLabelValues("parse_error").Inc()
			stats.ParseErrors++
			continue
		}

		err = s.store.IngestArtifact(ctx, name, kind, observations)
		switch {
		case errors.Is(err, domain.ErrDuplicateArtifact):
			stats.Skipped++
			telemetry.IngestSkips.WithLabelValues("duplicate").Inc()
			continue
		case err != nil:
			return stats, fmt.Errorf("ingest %s: %w", name, err)
		}

		stats.Ingested++
		stats.Observations += len(observations)
		telemetry.ArtifactsIngested.WithLabelValues(kind).Inc()
		telemetry.ObservationsIngested.WithLabelValues(kind).Add(float64(len(observations)))
		slog.Info("Ingested artifact", "artifact", name, "kind", kind, "observations", len(observations))
	}

	return stats, nil
}
