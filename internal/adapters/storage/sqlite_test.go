package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
)

// setupInMemoryDB creates a new SQLiteAdapter used for testing
func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	adapter, err := NewSQLiteAdapter(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func obs(host string, port int, proto, state, service string) domain.Observation {
	return domain.Observation{Host: host, Port: port, Proto: proto, State: state, Service: service}
}

func TestIngestArtifact_RoundTrip(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	in := []domain.Observation{
		obs("10.0.0.2", 443, "tcp", "open", "https"),
		obs("10.0.0.1", 80, "tcp", "open", "http"),
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
	}
	require.NoError(t, adapter.IngestArtifact(ctx, "scan-1-tcp-a.xml", "tcp", in))

	snap, err := adapter.ObservationsFor(ctx, []string{"scan-1-tcp-a.xml"})
	require.NoError(t, err)

	// Same set comes back regardless of insertion order.
	want := domain.BuildSnapshot(in)
	assert.Equal(t, want, snap)
}

func TestIngestArtifact_DuplicateIsNoOp(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, adapter.IngestArtifact(ctx, "scan-1-tcp-a.xml", "tcp", []domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
	}))

	err := adapter.IngestArtifact(ctx, "scan-1-tcp-a.xml", "tcp", []domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
		obs("10.0.0.1", 80, "tcp", "open", "http"),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateArtifact)

	snap, err := adapter.ObservationsFor(ctx, []string{"scan-1-tcp-a.xml"})
	require.NoError(t, err)
	assert.Len(t, snap["10.0.0.1"], 1, "second ingest must not add observations")
}

func TestIngestArtifact_EmptyObservations(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, adapter.IngestArtifact(ctx, "scan-1-tcp-a.xml", "tcp", nil))

	art, err := adapter.LatestArtifact(ctx, "tcp")
	require.NoError(t, err)
	require.NotNil(t, art)
	assert.Equal(t, uint64(1), art.Seq)
}

func TestLatestArtifact_ByIngestionOrder(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, adapter.IngestArtifact(ctx, "scan-1-tcp-a.xml", "tcp", nil))
	require.NoError(t, adapter.IngestArtifact(ctx, "scan-2-udp-a.xml", "udp", nil))
	require.NoError(t, adapter.IngestArtifact(ctx, "scan-3-tcp-a.xml", "tcp", nil))

	latestTCP, err := adapter.LatestArtifact(ctx, "tcp")
	require.NoError(t, err)
	require.NotNil(t, latestTCP)
	assert.Equal(t, "scan-3-tcp-a.xml", latestTCP.Name)
	assert.Equal(t, uint64(3), latestTCP.Seq)

	latestUDP, err := adapter.LatestArtifact(ctx, "udp")
	require.NoError(t, err)
	require.NotNil(t, latestUDP)
	assert.Equal(t, "scan-2-udp-a.xml", latestUDP.Name)

	none, err := adapter.LatestArtifact(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestObservationsFor_LaterArtifactWins(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, adapter.IngestArtifact(ctx, "scan-1-tcp-a.xml", "tcp", []domain.Observation{
		obs("10.0.0.1", 80, "tcp", "open", "http"),
	}))
	require.NoError(t, adapter.IngestArtifact(ctx, "scan-2-tcp-a.xml", "tcp", []domain.Observation{
		obs("10.0.0.1", 80, "tcp", "closed", ""),
	}))

	snap, err := adapter.ObservationsFor(ctx, []string{"scan-1-tcp-a.xml", "scan-2-tcp-a.xml"})
	require.NoError(t, err)
	assert.Equal(t, domain.PortState{State: "closed"}, snap["10.0.0.1"][domain.PortKey{Port: 80, Proto: "tcp"}])

	// Reversed order flips the winner.
	snap, err = adapter.ObservationsFor(ctx, []string{"scan-2-tcp-a.xml", "scan-1-tcp-a.xml"})
	require.NoError(t, err)
	assert.Equal(t, domain.PortState{State: "open", Service: "http"}, snap["10.0.0.1"][domain.PortKey{Port: 80, Proto: "tcp"}])
}

func TestArtifacts_ListsInSequenceOrder(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, adapter.IngestArtifact(ctx, "scan-2-udp-a.xml", "udp", nil))
	require.NoError(t, adapter.IngestArtifact(ctx, "scan-1-tcp-a.xml", "tcp", nil))

	artifacts, err := adapter.Artifacts(ctx)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "scan-2-udp-a.xml", artifacts[0].Name)
	assert.Equal(t, "scan-1-tcp-a.xml", artifacts[1].Name)
	assert.False(t, artifacts[0].IngestedAt.IsZero())
}

func TestSetBaseline_ReplaceNotMerge(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, adapter.SetBaseline(ctx, "acme", []domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
		obs("10.0.0.1", 80, "tcp", "open", "http"),
	}))
	require.NoError(t, adapter.SetBaseline(ctx, "acme", []domain.Observation{
		obs("10.0.0.1", 443, "tcp", "open", "https"),
	}))

	snap, err := adapter.BaselineFor(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, snap["10.0.0.1"], 1)
	_, hasOld := snap["10.0.0.1"][domain.PortKey{Port: 22, Proto: "tcp"}]
	assert.False(t, hasOld)
}

func TestSetBaseline_EmptyIsValid(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, adapter.SetBaseline(ctx, "acme", []domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
	}))
	require.NoError(t, adapter.SetBaseline(ctx, "acme", nil))

	snap, err := adapter.BaselineFor(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestSetBaseline_TenantsAreIsolated(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, adapter.SetBaseline(ctx, "acme", []domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
	}))
	require.NoError(t, adapter.SetBaseline(ctx, "globex", []domain.Observation{
		obs("10.0.0.9", 443, "tcp", "open", "https"),
	}))
	require.NoError(t, adapter.SetBaseline(ctx, "acme", nil))

	snap, err := adapter.BaselineFor(ctx, "globex")
	require.NoError(t, err)
	assert.Len(t, snap, 1)
}

func TestBaselineFor_UnknownTenantIsEmpty(t *testing.T) {
	adapter := setupInMemoryDB(t)

	snap, err := adapter.BaselineFor(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestTenantsAndEntries(t *testing.T) {
	adapter := setupInMemoryDB(t)
	ctx := context.Background()

	require.NoError(t, adapter.SetBaseline(ctx, "globex", []domain.Observation{
		obs("10.0.0.9", 443, "tcp", "open", "https"),
	}))
	require.NoError(t, adapter.SetBaseline(ctx, "acme", []domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
		obs("10.0.0.1", 53, "udp", "open", "domain"),
	}))

	tenants, err := adapter.Tenants(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "globex"}, tenants)

	entries, err := adapter.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "acme", entries[0].Tenant)
	assert.False(t, entries[0].SetAt.IsZero())
}
