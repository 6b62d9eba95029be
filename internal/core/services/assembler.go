package services

import (
	"context"
	"fmt"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
	"github.com/OlderMutt/Surface-Minder/internal/core/ports"
)

// Assembler builds the "current" comparison snapshot by merging the latest
// artifact of each relevant scan kind into one observation set.
type Assembler struct {
	store ports.SnapshotStore
}

// NewAssembler creates an assembler on top of the snapshot store.
func NewAssembler(store ports.SnapshotStore) *Assembler {
	return &Assembler{store: store}
}

// LatestCombined looks up the latest artifact of each kind (kinds with no
// artifact are skipped) and merges their observations. The merge follows
// the given kind order: should two kinds ever produce the same
// (host, port, proto) key, the later kind wins. That tie-break is
// deterministic and deliberate, not a detected error. Zero matching
// artifacts yields an empty snapshot.
func (a *Assembler) LatestCombined(ctx context.Context, kinds []string) (domain.Snapshot, []domain.Artifact, error) {
	var selected []domain.Artifact
	var names []string

	for _, kind := range kinds {
		art, err := a.store.LatestArtifact(ctx, kind)
		if err != nil {
			return nil, nil, fmt.Errorf("latest %s artifact: %w", kind, err)
		}
		if art == nil {
			continue
		}
		selected = append(selected, *art)
		names = append(names, art.Name)
	}

	if len(names) == 0 {
		return domain.Snapshot{}, nil, nil
	}

	snap, err := a.store.ObservationsFor(ctx, names)
	if err != nil {
		return nil, nil, fmt.Errorf("observations for %v: %w", names, err)
	}
	return snap, selected, nil
}
