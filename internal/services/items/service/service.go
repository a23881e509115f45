// Package service provides the items service implementation
package service

import (
	"context"

	"cintel/internal/core/intel"
	"cintel/internal/modkit/repokit"
	"cintel/internal/services/items/domain"
	"cintel/internal/services/items/repo"
)

// Config for the items service
type Config struct {
	// HardLimit caps any single window listing
	HardLimit int

	// WriteChunk bounds one multi-row upsert statement
	WriteChunk int
}

// Service implements the items ports over a bound Postgres repo
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	cfg    Config
}

// New constructs the items service
func New(tx repokit.TxRunner, binder repokit.Binder[repo.Storage], cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 5000
	}
	if cfg.WriteChunk <= 0 {
		cfg.WriteChunk = 500
	}
	return &Service{tx: tx, binder: binder, cfg: cfg}
}

// UpsertBatch implements domain.WriterPort
// the whole batch commits or none of it does
func (s *Service) UpsertBatch(ctx context.Context, xs []intel.Item) (int, error) {
	if len(xs) == 0 {
		return 0, nil
	}
	inserted := 0
	err := s.tx.Tx(ctx, func(q repokit.Queryer) error {
		st := s.binder.Bind(q)
		for start := 0; start < len(xs); start += s.cfg.WriteChunk {
			end := min(start+s.cfg.WriteChunk, len(xs))
			n, err := st.UpsertBatch(ctx, xs[start:end])
			if err != nil {
				return err
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListWindow implements domain.ReaderPort
func (s *Service) ListWindow(ctx context.Context, in domain.ListInput) ([]intel.Item, error) {
	return s.binder.Bind(s.tx).ListWindow(ctx, in, s.cfg.HardLimit)
}

// ByIDs implements domain.ReaderPort
func (s *Service) ByIDs(ctx context.Context, ids []string) ([]intel.Item, error) {
	return s.binder.Bind(s.tx).ByIDs(ctx, ids)
}

// Lookup implements domain.FingerprintCachePort
func (s *Service) Lookup(ctx context.Context, hashes []string) (map[string]domain.CachedFingerprint, error) {
	return s.binder.Bind(s.tx).LookupFingerprints(ctx, hashes)
}

// Store implements domain.FingerprintCachePort
func (s *Service) Store(ctx context.Context, fps []domain.CachedFingerprint) error {
	st := s.binder.Bind(s.tx)
	for start := 0; start < len(fps); start += s.cfg.WriteChunk {
		end := min(start+s.cfg.WriteChunk, len(fps))
		if err := st.StoreFingerprints(ctx, fps[start:end]); err != nil {
			return err
		}
	}
	return nil
}
