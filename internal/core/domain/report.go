package domain

import (
	"sort"
	"time"
)

// Entry is one added or removed port within a host delta.
type Entry struct {
	Key   PortKey   `json:"key"`
	Value PortState `json:"value"`
}

// Change is a port present on both sides with a differing (state, service).
type Change struct {
	Key PortKey   `json:"key"`
	Old PortState `json:"old"`
	New PortState `json:"new"`
}

// HostDelta collects one host's drift against the baseline.
type HostDelta struct {
	Added   []Entry  `json:"added,omitempty"`
	Removed []Entry  `json:"removed,omitempty"`
	Changed []Change `json:"changed,omitempty"`
}

// Empty reports whether the host has no drift at all.
func (d HostDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// DeltaReport maps host -> drift. Hosts with an empty delta are never
// present, so len(report) counts hosts with drift.
type DeltaReport map[string]HostDelta

// Hosts returns the drifted hosts sorted for deterministic output.
func (r DeltaReport) Hosts() []string {
	hosts := make([]string, 0, len(r))
	for h := range r {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Total counts the individual added/removed/changed entries in the report.
func (r DeltaReport) Total() int {
	n := 0
	for _, d := range r {
		n += len(d.Added) + len(d.Removed) + len(d.Changed)
	}
	return n
}

// Empty reports whether no host drifted.
func (r DeltaReport) Empty() bool {
	return len(r) == 0
}

// CheckResult is the outcome of one baseline comparison run: the report
// plus the identities of the artifacts that formed the current snapshot.
type CheckResult struct {
	RunID       string      `json:"run_id"`
	Tenant      string      `json:"tenant"`
	Artifacts   []Artifact  `json:"artifacts"`
	Report      DeltaReport `json:"report"`
	GeneratedAt time.Time   `json:"generated_at"`
}
