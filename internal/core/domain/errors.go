package domain

import "errors"

// ErrDuplicateArtifact signals that an artifact name was already ingested.
// It is an idempotency marker, not a failure: callers skip the artifact and
// carry on with the batch.
var ErrDuplicateArtifact = errors.New("artifact already ingested")
