// Package repo provides the clusters repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cintel/internal/core/intel"
	"cintel/internal/modkit/repokit"
	"cintel/internal/services/clusters/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Header is the snapshot bookkeeping row
type Header struct {
	Mode         string
	WindowStart  time.Time
	WindowEnd    time.Time
	RunID        string
	ClusterCount int
	CreatedAt    time.Time
}

// Storage defines the clusters repository
type Storage interface {
	ReadHeader(ctx context.Context, mode string) (Header, bool, error)
	ReadClusters(ctx context.Context, mode string) ([]intel.Cluster, error)
	ReplaceSnapshot(ctx context.Context, snap domain.Snapshot) error
}

// ReadHeader implements Storage
func (s *pg) ReadHeader(ctx context.Context, mode string) (Header, bool, error) {
	var h Header
	err := s.q.QueryRow(ctx, `
		SELECT mode, window_start, window_end, run_id, cluster_count, created_at
		FROM cluster_snapshots WHERE mode = $1`, mode).
		Scan(&h.Mode, &h.WindowStart, &h.WindowEnd, &h.RunID, &h.ClusterCount, &h.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return Header{}, false, nil
		}
		return Header{}, false, err
	}
	return h, true, nil
}

// ReadClusters implements Storage
// rows come back in the ranked order they were written
func (s *pg) ReadClusters(ctx context.Context, mode string) ([]intel.Cluster, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, project, exemplar_id, member_ids, first_seen, last_seen, score
		FROM clusters WHERE mode = $1 ORDER BY rank`, mode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []intel.Cluster
	for rows.Next() {
		var c intel.Cluster
		if err := rows.Scan(
			&c.ID, &c.Project, &c.ExemplarID, &c.MemberIDs,
			&c.FirstSeen, &c.LastSeen, &c.Score,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceSnapshot implements Storage
// callers run this inside a transaction so a failed write leaves the
// previous snapshot untouched
func (s *pg) ReplaceSnapshot(ctx context.Context, snap domain.Snapshot) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM clusters WHERE mode = $1`, snap.Mode); err != nil {
		return err
	}

	if len(snap.Clusters) > 0 {
		var sb strings.Builder
		sb.WriteString(`INSERT INTO clusters
			(mode, rank, id, project, exemplar_id, member_ids, first_seen, last_seen, score) VALUES `)

		args := make([]any, 0, len(snap.Clusters)*9)
		for i, c := range snap.Clusters {
			if i > 0 {
				sb.WriteByte(',')
			}
			base := i*9 + 1
			fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base, base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
			args = append(args,
				snap.Mode, i, c.ID, c.Project, c.ExemplarID, c.MemberIDs,
				c.FirstSeen, c.LastSeen, c.Score,
			)
		}
		if _, err := s.q.Exec(ctx, sb.String(), args...); err != nil {
			return err
		}
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO cluster_snapshots (mode, window_start, window_end, run_id, cluster_count, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (mode) DO UPDATE SET
			window_start = EXCLUDED.window_start,
			window_end = EXCLUDED.window_end,
			run_id = EXCLUDED.run_id,
			cluster_count = EXCLUDED.cluster_count,
			created_at = NOW()`,
		snap.Mode, snap.WindowStart, snap.WindowEnd, snap.RunID, len(snap.Clusters))
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, stdsql.ErrNoRows)
}
