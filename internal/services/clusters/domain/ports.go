package domain

import "context"

// SnapshotPort loads and saves clustering state
type SnapshotPort interface {
	// Load returns the snapshot for mode. ok is false when no snapshot
	// was ever recorded. A recorded snapshot that cannot be read back
	// consistently returns an unavailable error, never a silent empty
	Load(ctx context.Context, mode string) (Snapshot, bool, error)

	// Save replaces the snapshot for its mode atomically
	Save(ctx context.Context, snap Snapshot) error
}
