package domain

import (
	"strings"
	"time"
)

// Scan kinds. The set is open: artifacts whose filename carries no kind
// marker are ingested as KindUnknown and only reachable by asking for that
// kind explicitly.
const (
	KindTCP     = "tcp"
	KindUDP     = "udp"
	KindUnknown = "unknown"
)

// Artifact is one completed scan's raw output, identified by its file name.
// Seq is a monotonic sequence assigned at ingestion; "latest" is always
// decided by Seq, never by wall clock, so ordering survives clock skew.
type Artifact struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	Seq        uint64    `json:"seq"`
	IngestedAt time.Time `json:"ingested_at"`
}

// KindFromName derives the scan kind from an artifact file name, following
// the scanner's naming scheme scan-<ts>-<kind>-<target>.xml.
func KindFromName(name string) string {
	switch {
	case strings.Contains(name, "-tcp-"):
		return KindTCP
	case strings.Contains(name, "-udp-"):
		return KindUDP
	default:
		return KindUnknown
	}
}

// BaselineEntry is one expected observation of a tenant's approved surface.
type BaselineEntry struct {
	Tenant      string    `json:"tenant"`
	Observation           // embedded host/port/proto/state/service
	SetAt       time.Time `json:"set_at"`
}
