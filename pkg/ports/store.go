package ports

import (
	"context"
)

// SnapshotStore defines the durable key/value substrate behind a journey.
// It stores opaque encoded snapshots; merging is the journey store's job.
type SnapshotStore interface {
	// Save persists the snapshot for a given key, replacing any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Load retrieves the snapshot for a given key.
	// Returns domain.ErrSnapshotNotFound if the key does not exist.
	// Returns an error wrapping domain.ErrStorageUnavailable if the substrate can't be reached.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the snapshot for a given key.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently stored.
	List(ctx context.Context) ([]string, error)
}
