package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
)

func obs(host string, port int, proto, state, service string) domain.Observation {
	return domain.Observation{Host: host, Port: port, Proto: proto, State: state, Service: service}
}

func TestDiff_IdenticalSnapshotsAreEmpty(t *testing.T) {
	snap := domain.BuildSnapshot([]domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
		obs("10.0.0.1", 53, "udp", "open", "domain"),
		obs("10.0.0.2", 80, "tcp", "open", "http"),
	})

	assert.True(t, Diff(snap, snap).Empty())
}

func TestDiff_Changed(t *testing.T) {
	baseline := domain.BuildSnapshot([]domain.Observation{obs("10.0.0.1", 80, "tcp", "open", "")})
	current := domain.BuildSnapshot([]domain.Observation{obs("10.0.0.1", 80, "tcp", "closed", "")})

	report := Diff(baseline, current)

	assert.Len(t, report, 1)
	delta := report["10.0.0.1"]
	assert.Empty(t, delta.Added)
	assert.Empty(t, delta.Removed)
	assert.Len(t, delta.Changed, 1)
	assert.Equal(t, domain.PortState{State: "open"}, delta.Changed[0].Old)
	assert.Equal(t, domain.PortState{State: "closed"}, delta.Changed[0].New)
}

func TestDiff_Added(t *testing.T) {
	baseline := domain.BuildSnapshot([]domain.Observation{obs("10.0.0.1", 22, "tcp", "open", "")})
	current := domain.BuildSnapshot([]domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", ""),
		obs("10.0.0.1", 80, "tcp", "open", ""),
	})

	report := Diff(baseline, current)

	delta := report["10.0.0.1"]
	assert.Len(t, delta.Added, 1)
	assert.Equal(t, domain.PortKey{Port: 80, Proto: "tcp"}, delta.Added[0].Key)
	assert.Empty(t, delta.Removed)
	assert.Empty(t, delta.Changed)
}

func TestDiff_EmptyCurrentReportsAllRemoved(t *testing.T) {
	baseline := domain.BuildSnapshot([]domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
		obs("10.0.0.1", 80, "tcp", "open", "http"),
	})

	report := Diff(baseline, domain.Snapshot{})

	assert.Len(t, report["10.0.0.1"].Removed, 2)
	assert.Empty(t, report["10.0.0.1"].Added)
}

func TestDiff_ServiceCaseDifferenceIsAChange(t *testing.T) {
	// Equality is exact string equality; case is not normalized.
	baseline := domain.BuildSnapshot([]domain.Observation{obs("10.0.0.1", 80, "tcp", "open", "http")})
	current := domain.BuildSnapshot([]domain.Observation{obs("10.0.0.1", 80, "tcp", "open", "HTTP")})

	report := Diff(baseline, current)

	assert.Len(t, report["10.0.0.1"].Changed, 1)
}

func TestDiff_HostWithoutDriftIsOmitted(t *testing.T) {
	baseline := domain.BuildSnapshot([]domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
		obs("10.0.0.2", 80, "tcp", "open", "http"),
	})
	current := domain.BuildSnapshot([]domain.Observation{
		obs("10.0.0.1", 22, "tcp", "open", "ssh"),
		obs("10.0.0.2", 80, "tcp", "filtered", "http"),
	})

	report := Diff(baseline, current)

	_, quietHostPresent := report["10.0.0.1"]
	assert.False(t, quietHostPresent)
	assert.Len(t, report, 1)
}

func TestDiff_EntriesSortedWithinHost(t *testing.T) {
	current := domain.BuildSnapshot([]domain.Observation{
		obs("10.0.0.1", 443, "tcp", "open", ""),
		obs("10.0.0.1", 80, "tcp", "open", ""),
		obs("10.0.0.1", 80, "udp", "open", ""),
	})

	report := Diff(domain.Snapshot{}, current)

	added := report["10.0.0.1"].Added
	assert.Equal(t, domain.PortKey{Port: 80, Proto: "tcp"}, added[0].Key)
	assert.Equal(t, domain.PortKey{Port: 80, Proto: "udp"}, added[1].Key)
	assert.Equal(t, domain.PortKey{Port: 443, Proto: "tcp"}, added[2].Key)
}
