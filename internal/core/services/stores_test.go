package services

import (
	"context"
	"sort"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
	"github.com/OlderMutt/Surface-Minder/internal/core/ports"
)

// fakeSnapshotStore is an in-memory ports.SnapshotStore for service tests.
type fakeSnapshotStore struct {
	artifacts    []domain.Artifact
	observations map[string][]domain.Observation // artifact name -> rows
	err          error
}

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{observations: map[string][]domain.Observation{}}
}

func (f *fakeSnapshotStore) IngestArtifact(_ context.Context, name, kind string, observations []domain.Observation) error {
	if f.err != nil {
		return f.err
	}
	for _, a := range f.artifacts {
		if a.Name == name {
			return domain.ErrDuplicateArtifact
		}
	}
	f.artifacts = append(f.artifacts, domain.Artifact{
		Name: name,
		Kind: kind,
		Seq:  uint64(len(f.artifacts) + 1),
	})
	f.observations[name] = observations
	return nil
}

func (f *fakeSnapshotStore) LatestArtifact(_ context.Context, kind string) (*domain.Artifact, error) {
	if f.err != nil {
		return nil, f.err
	}
	var latest *domain.Artifact
	for i := range f.artifacts {
		a := f.artifacts[i]
		if a.Kind == kind && (latest == nil || a.Seq > latest.Seq) {
			latest = &f.artifacts[i]
		}
	}
	return latest, nil
}

func (f *fakeSnapshotStore) ObservationsFor(_ context.Context, names []string) (domain.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snap := domain.Snapshot{}
	for _, name := range names {
		snap.Add(f.observations[name])
	}
	return snap, nil
}

func (f *fakeSnapshotStore) Artifacts(_ context.Context) ([]domain.Artifact, error) {
	return append([]domain.Artifact{}, f.artifacts...), f.err
}

// fakeBaselineStore is an in-memory ports.BaselineStore.
type fakeBaselineStore struct {
	baselines map[string][]domain.Observation
	err       error
}

func newFakeBaselineStore() *fakeBaselineStore {
	return &fakeBaselineStore{baselines: map[string][]domain.Observation{}}
}

func (f *fakeBaselineStore) SetBaseline(_ context.Context, tenant string, observations []domain.Observation) error {
	if f.err != nil {
		return f.err
	}
	f.baselines[tenant] = append([]domain.Observation{}, observations...)
	return nil
}

func (f *fakeBaselineStore) BaselineFor(_ context.Context, tenant string) (domain.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return domain.BuildSnapshot(f.baselines[tenant]), nil
}

func (f *fakeBaselineStore) Tenants(_ context.Context) ([]string, error) {
	var tenants []string
	for t := range f.baselines {
		tenants = append(tenants, t)
	}
	sort.Strings(tenants)
	return tenants, f.err
}

func (f *fakeBaselineStore) Entries(_ context.Context) ([]domain.BaselineEntry, error) {
	var entries []domain.BaselineEntry
	for tenant, observations := range f.baselines {
		for _, o := range observations {
			entries = append(entries, domain.BaselineEntry{Tenant: tenant, Observation: o})
		}
	}
	return entries, f.err
}

var (
	_ ports.SnapshotStore = (*fakeSnapshotStore)(nil)
	_ ports.BaselineStore = (*fakeBaselineStore)(nil)
)
