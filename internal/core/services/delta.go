package services

import (
	"sort"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
)

// Diff computes the structural difference between a baseline snapshot and a
// current snapshot. For every host in either side: keys only in current are
// added, keys only in baseline are removed, keys in both with a differing
// (state, service) are changed. Comparison is exact string equality; a
// casing or whitespace difference is a real change. Hosts without drift are
// left out of the report.
func Diff(baseline, current domain.Snapshot) domain.DeltaReport {
	report := domain.DeltaReport{}

	hosts := map[string]struct{}{}
	for h := range baseline {
		hosts[h] = struct{}{}
	}
	for h := range current {
		hosts[h] = struct{}{}
	}

	for h := range hosts {
		delta := diffHost(baseline[h], current[h])
		if !delta.Empty() {
			report[h] = delta
		}
	}
	return report
}

func diffHost(base, cur map[domain.PortKey]domain.PortState) domain.HostDelta {
	var d domain.HostDelta

	for _, k := range sortedKeys(cur) {
		v := cur[k]
		old, ok := base[k]
		switch {
		case !ok:
			d.Added = append(d.Added, domain.Entry{Key: k, Value: v})
		case old != v:
			d.Changed = append(d.Changed, domain.Change{Key: k, Old: old, New: v})
		}
	}
	for _, k := range sortedKeys(base) {
		if _, ok := cur[k]; !ok {
			d.Removed = append(d.Removed, domain.Entry{Key: k, Value: base[k]})
		}
	}
	return d
}

// sortedKeys keeps entry order inside a host delta deterministic.
func sortedKeys(m map[domain.PortKey]domain.PortState) []domain.PortKey {
	keys := make([]domain.PortKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Port != keys[j].Port {
			return keys[i].Port < keys[j].Port
		}
		return keys[i].Proto < keys[j].Proto
	})
	return keys
}
