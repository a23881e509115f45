// Package service implements the digest read API over snapshots and items
package service

import (
	"context"
	"time"

	"cintel/internal/core/intel"
	"cintel/internal/core/window"
	perr "cintel/internal/platform/errors"
	"cintel/internal/services/api/digest/domain"
	clustersdom "cintel/internal/services/clusters/domain"
	itemsdom "cintel/internal/services/items/domain"
)

// DefaultLimit bounds listings when the caller does not pick one
const DefaultLimit = 50

// MaxLimit is the hard ceiling for one listing
const MaxLimit = 200

// Service implements domain.ReaderPort
type Service struct {
	Snaps clustersdom.SnapshotPort
	Items itemsdom.ReaderPort
}

// New constructs the read service
func New(snaps clustersdom.SnapshotPort, items itemsdom.ReaderPort) *Service {
	return &Service{Snaps: snaps, Items: items}
}

// List implements domain.ReaderPort
func (s *Service) List(ctx context.Context, mode string, limit int) (domain.ListOutput, error) {
	snap, err := s.load(ctx, mode)
	if err != nil {
		return domain.ListOutput{}, err
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	clusters := snap.Clusters
	if len(clusters) > limit {
		clusters = clusters[:limit]
	}

	views, err := s.itemViews(ctx, exemplarIDs(clusters))
	if err != nil {
		return domain.ListOutput{}, err
	}

	out := domain.ListOutput{
		Snapshot: snapshotView(snap),
		Clusters: make([]domain.ClusterSummary, 0, len(clusters)),
	}
	for _, c := range clusters {
		out.Clusters = append(out.Clusters, summary(c, views))
	}
	return out, nil
}

// Get implements domain.ReaderPort
func (s *Service) Get(ctx context.Context, mode, id string) (domain.ClusterDetail, error) {
	snap, err := s.load(ctx, mode)
	if err != nil {
		return domain.ClusterDetail{}, err
	}

	for _, c := range snap.Clusters {
		if c.ID != id {
			continue
		}
		views, err := s.itemViews(ctx, c.MemberIDs)
		if err != nil {
			return domain.ClusterDetail{}, err
		}
		det := domain.ClusterDetail{
			ClusterSummary: summary(c, views),
			Members:        make([]domain.ItemView, 0, len(c.MemberIDs)),
		}
		for _, mid := range c.MemberIDs {
			if v, ok := views[mid]; ok {
				det.Members = append(det.Members, v)
			}
		}
		return det, nil
	}
	return domain.ClusterDetail{}, perr.NotFoundf("cluster %q not in the %s snapshot", id, mode)
}

func (s *Service) load(ctx context.Context, mode string) (clustersdom.Snapshot, error) {
	if !window.Mode(mode).Valid() {
		return clustersdom.Snapshot{}, perr.InvalidArgf("unknown window mode %q", mode)
	}
	snap, ok, err := s.Snaps.Load(ctx, mode)
	if err != nil {
		return clustersdom.Snapshot{}, err
	}
	if !ok {
		return clustersdom.Snapshot{}, perr.NotFoundf("no digest snapshot for mode %q yet", mode)
	}
	return snap, nil
}

// itemViews hydrates the named items, tolerating ids that no longer resolve
func (s *Service) itemViews(ctx context.Context, ids []string) (map[string]domain.ItemView, error) {
	if len(ids) == 0 {
		return map[string]domain.ItemView{}, nil
	}
	items, err := s.Items.ByIDs(ctx, ids)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "load cluster members")
	}
	out := make(map[string]domain.ItemView, len(items))
	for _, it := range items {
		out[it.ID] = itemView(it)
	}
	return out, nil
}

func exemplarIDs(cs []intel.Cluster) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ExemplarID)
	}
	return ids
}

func summary(c intel.Cluster, views map[string]domain.ItemView) domain.ClusterSummary {
	return domain.ClusterSummary{
		ID:        c.ID,
		Project:   c.Project,
		Score:     c.Score,
		Size:      len(c.MemberIDs),
		FirstSeen: c.FirstSeen.UTC().Format(time.RFC3339),
		LastSeen:  c.LastSeen.UTC().Format(time.RFC3339),
		Exemplar:  views[c.ExemplarID],
	}
}

func itemView(it intel.Item) domain.ItemView {
	return domain.ItemView{
		ID:          it.ID,
		Source:      string(it.Source),
		Project:     it.Project,
		Title:       it.Title,
		URL:         it.URL,
		PublishedAt: it.PublishedAt.UTC().Format(time.RFC3339),
		Tags:        it.Tags,
	}
}

func snapshotView(snap clustersdom.Snapshot) domain.SnapshotView {
	return domain.SnapshotView{
		Mode:        snap.Mode,
		WindowStart: snap.WindowStart.UTC().Format(time.RFC3339),
		WindowEnd:   snap.WindowEnd.UTC().Format(time.RFC3339),
		RunID:       snap.RunID,
		Clusters:    len(snap.Clusters),
		CreatedAt:   snap.CreatedAt.UTC().Format(time.RFC3339),
	}
}
