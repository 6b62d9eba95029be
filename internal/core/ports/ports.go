package ports

import (
	"context"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
)

// SnapshotStore persists scan artifacts and their observations. All
// mutations are durable before the call returns; multi-row writes happen in
// a single transaction so readers never see a half-written artifact.
type SnapshotStore interface {
	// IngestArtifact records the artifact and all its observations
	// atomically. Returns domain.ErrDuplicateArtifact when the name was
	// already ingested; callers treat that as a no-op.
	IngestArtifact(ctx context.Context, name, kind string, observations []domain.Observation) error

	// LatestArtifact returns the most recently ingested artifact of the
	// given kind, or nil when none exists. Recency is the store's
	// monotonic sequence, not wall clock.
	LatestArtifact(ctx context.Context, kind string) (*domain.Artifact, error)

	// ObservationsFor builds a snapshot from the named artifacts,
	// processed in the given order; on a (host, port, proto) collision
	// the later artifact wins.
	ObservationsFor(ctx context.Context, names []string) (domain.Snapshot, error)

	// Artifacts lists every ingested artifact in sequence order.
	Artifacts(ctx context.Context) ([]domain.Artifact, error)
}

// BaselineStore persists each tenant's approved set of observations.
type BaselineStore interface {
	// SetBaseline replaces the tenant's whole baseline in one
	// transaction. An empty slice is a valid "no ports expected" state.
	SetBaseline(ctx context.Context, tenant string, observations []domain.Observation) error

	// BaselineFor returns the tenant's baseline; an unknown tenant
	// yields an empty snapshot, not an error.
	BaselineFor(ctx context.Context, tenant string) (domain.Snapshot, error)

	// Tenants lists tenants that currently have a baseline.
	Tenants(ctx context.Context) ([]string, error)

	// Entries dumps every baseline row, e.g. for CSV export.
	Entries(ctx context.Context) ([]domain.BaselineEntry, error)
}

// Notifier delivers a finished check result to whoever needs to know.
type Notifier interface {
	Notify(ctx context.Context, result *domain.CheckResult) error
}

// ScanRunner executes one scan of the given kind against one target and
// returns the path of the artifact it wrote.
type ScanRunner interface {
	Run(ctx context.Context, kind, target string) (string, error)
}
