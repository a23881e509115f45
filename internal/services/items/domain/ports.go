package domain

import (
	"context"

	"cintel/internal/core/intel"
)

// WriterPort ingests normalized items
type WriterPort interface {
	// UpsertBatch writes items idempotently and reports how many rows
	// were newly inserted
	UpsertBatch(ctx context.Context, xs []intel.Item) (int, error)
}

// ReaderPort reads items back for the pipeline and the API
type ReaderPort interface {
	// ListWindow returns items published inside the window ordered by
	// (published_at, id)
	ListWindow(ctx context.Context, in ListInput) ([]intel.Item, error)

	// ByIDs returns the named items; missing ids are silently absent
	ByIDs(ctx context.Context, ids []string) ([]intel.Item, error)
}

// FingerprintCachePort avoids recomputing signatures across runs
type FingerprintCachePort interface {
	// Lookup returns cached fingerprints keyed by content hash
	Lookup(ctx context.Context, hashes []string) (map[string]CachedFingerprint, error)

	// Store writes fingerprints, overwriting same-hash rows
	Store(ctx context.Context, fps []CachedFingerprint) error
}
