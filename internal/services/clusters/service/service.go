// Package service provides the clusters snapshot service
package service

import (
	"context"

	perr "cintel/internal/platform/errors"

	"cintel/internal/modkit/repokit"
	"cintel/internal/services/clusters/domain"
	"cintel/internal/services/clusters/repo"
)

// Service implements domain.SnapshotPort over a bound Postgres repo
type Service struct {
	tx     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
}

// New constructs the clusters service
func New(tx repokit.TxRunner, binder repokit.Binder[repo.Storage]) *Service {
	return &Service{tx: tx, binder: binder}
}

// Load implements domain.SnapshotPort
//
// a never-recorded mode loads as (zero, false, nil) so a first run
// starts from empty state. A recorded header whose cluster rows cannot
// be read back in full is a hard unavailable error: clustering against
// partial prior state would silently fork cluster identities
func (s *Service) Load(ctx context.Context, mode string) (domain.Snapshot, bool, error) {
	st := s.binder.Bind(s.tx)

	h, ok, err := st.ReadHeader(ctx, mode)
	if err != nil {
		return domain.Snapshot{}, false, perr.Wrap(err, perr.ErrorCodeUnavailable, "cluster state unavailable")
	}
	if !ok {
		return domain.Snapshot{}, false, nil
	}

	clusters, err := st.ReadClusters(ctx, mode)
	if err != nil {
		return domain.Snapshot{}, false, perr.Wrap(err, perr.ErrorCodeUnavailable, "cluster state unavailable")
	}
	if len(clusters) != h.ClusterCount {
		return domain.Snapshot{}, false, perr.Unavailablef(
			"cluster state unavailable: header says %d clusters, found %d", h.ClusterCount, len(clusters))
	}

	return domain.Snapshot{
		Mode:        h.Mode,
		WindowStart: h.WindowStart,
		WindowEnd:   h.WindowEnd,
		RunID:       h.RunID,
		Clusters:    clusters,
		CreatedAt:   h.CreatedAt,
	}, true, nil
}

// Save implements domain.SnapshotPort
// the replace runs in one transaction; a failed save leaves the prior
// snapshot fully intact
func (s *Service) Save(ctx context.Context, snap domain.Snapshot) error {
	if snap.Mode == "" {
		return perr.InvalidArgf("snapshot mode required")
	}
	return s.tx.Tx(ctx, func(q repokit.Queryer) error {
		return s.binder.Bind(q).ReplaceSnapshot(ctx, snap)
	})
}
