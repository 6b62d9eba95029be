package domain

import (
	"fmt"
	"sort"
)

// Observation is a single (host, port, proto) reachability/service fact
// extracted from one scan artifact.
type Observation struct {
	Host    string `json:"host"`  // e.g. "203.0.113.10"
	Port    int    `json:"port"`  // 0-65535
	Proto   string `json:"proto"` // "tcp", "udp"
	State   string `json:"state"` // e.g. "open", "closed", "filtered"
	Service string `json:"service,omitempty"`
}

// Key returns the observation's position within its host.
func (o Observation) Key() PortKey {
	return PortKey{Port: o.Port, Proto: o.Proto}
}

// Value returns the observation's comparable payload.
func (o Observation) Value() PortState {
	return PortState{State: o.State, Service: o.Service}
}

// PortKey identifies a port within a host. Two scan kinds producing the
// same port number still yield distinct keys as long as the proto differs.
type PortKey struct {
	Port  int    `json:"port"`
	Proto string `json:"proto"`
}

func (k PortKey) String() string {
	return fmt.Sprintf("%d/%s", k.Port, k.Proto)
}

// PortState is the comparable payload of an observation. Equality is exact
// string equality, case included; no normalization is applied.
type PortState struct {
	State   string `json:"state"`
	Service string `json:"service,omitempty"`
}

// Snapshot maps host -> (port, proto) -> (state, service). It is the common
// input shape of the delta engine, built either from a tenant's baseline or
// from the observations of one or more artifacts.
type Snapshot map[string]map[PortKey]PortState

// BuildSnapshot folds observations into a snapshot in input order. When two
// observations collide on (host, port, proto) the later one wins.
func BuildSnapshot(observations []Observation) Snapshot {
	s := Snapshot{}
	s.Add(observations)
	return s
}

// Add folds more observations into the snapshot, later entries winning.
func (s Snapshot) Add(observations []Observation) {
	for _, o := range observations {
		hostPorts, ok := s[o.Host]
		if !ok {
			hostPorts = map[PortKey]PortState{}
			s[o.Host] = hostPorts
		}
		hostPorts[o.Key()] = o.Value()
	}
}

// Hosts returns the snapshot's hosts sorted for deterministic iteration.
func (s Snapshot) Hosts() []string {
	hosts := make([]string, 0, len(s))
	for h := range s {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Observations flattens the snapshot back into a host/port/proto sorted
// slice, e.g. to persist it as a baseline.
func (s Snapshot) Observations() []Observation {
	var out []Observation
	for _, host := range s.Hosts() {
		keys := make([]PortKey, 0, len(s[host]))
		for k := range s[host] {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Port != keys[j].Port {
				return keys[i].Port < keys[j].Port
			}
			return keys[i].Proto < keys[j].Proto
		})
		for _, k := range keys {
			v := s[host][k]
			out = append(out, Observation{Host: host, Port: k.Port, Proto: k.Proto, State: v.State, Service: v.Service})
		}
	}
	return out
}
