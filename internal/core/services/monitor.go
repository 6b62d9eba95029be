package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
	"github.com/OlderMutt/Surface-Minder/internal/core/ports"
	"github.com/OlderMutt/Surface-Minder/internal/telemetry"
)

// Monitor compares tenant baselines against the assembled current surface.
type Monitor struct {
	snapshots ports.SnapshotStore
	baselines ports.BaselineStore
	assembler *Assembler
}

// NewMonitor builds the comparison pipeline on top of the two stores.
func NewMonitor(snapshots ports.SnapshotStore, baselines ports.BaselineStore) *Monitor {
	return &Monitor{
		snapshots: snapshots,
		baselines: baselines,
		assembler: NewAssembler(snapshots),
	}
}

// Check diffs the tenant's baseline against the latest combined snapshot of
// the given kinds. Zero available artifacts is a valid state: every
// baseline entry comes back as removed. An absent baseline likewise
// compares as empty.
func (m *Monitor) Check(ctx context.Context, tenant string, kinds []string) (*domain.CheckResult, error) {
	current, artifacts, err := m.assembler.LatestCombined(ctx, kinds)
	if err != nil {
		return nil, err
	}

	baseline, err := m.baselines.BaselineFor(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("baseline for %s: %w", tenant, err)
	}

	report := Diff(baseline, current)

	telemetry.ChecksTotal.WithLabelValues(tenant).Inc()
	for _, d := range report {
		telemetry.DriftEntries.WithLabelValues(tenant, "added").Add(float64(len(d.Added)))
		telemetry.DriftEntries.WithLabelValues(tenant, "removed").Add(float64(len(d.Removed)))
		telemetry.DriftEntries.WithLabelValues(tenant, "changed").Add(float64(len(d.Changed)))
	}

	return &domain.CheckResult{
		RunID:       uuid.NewString(),
		Tenant:      tenant,
		Artifacts:   artifacts,
		Report:      report,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// SetBaselineFromLatest replaces the tenant's baseline with the latest
// combined snapshot of the given kinds. It returns the artifacts the new
// baseline was taken from; with no artifacts available the baseline becomes
// explicitly empty, which is a representable "no ports expected" state.
func (m *Monitor) SetBaselineFromLatest(ctx context.Context, tenant string, kinds []string) ([]domain.Artifact, error) {
	snap, artifacts, err := m.assembler.LatestCombined(ctx, kinds)
	if err != nil {
		return nil, err
	}
	if err := m.baselines.SetBaseline(ctx, tenant, snap.Observations()); err != nil {
		return nil, fmt.Errorf("set baseline for %s: %w", tenant, err)
	}
	return artifacts, nil
}
