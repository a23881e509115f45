package repo

import (
	"context"

	"cintel/internal/modkit/repokit"
)

// EnsureSchema creates the snapshot tables when they are missing
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cluster_snapshots (
			mode          TEXT PRIMARY KEY,
			window_start  TIMESTAMPTZ NOT NULL,
			window_end    TIMESTAMPTZ NOT NULL,
			run_id        TEXT NOT NULL,
			cluster_count INT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS clusters (
			mode        TEXT NOT NULL,
			rank        INT NOT NULL,
			id          TEXT NOT NULL,
			project     TEXT NOT NULL DEFAULT '',
			exemplar_id TEXT NOT NULL,
			member_ids  TEXT[] NOT NULL,
			first_seen  TIMESTAMPTZ NOT NULL,
			last_seen   TIMESTAMPTZ NOT NULL,
			score       DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (mode, id)
		)`,
		`CREATE INDEX IF NOT EXISTS clusters_rank_idx ON clusters (mode, rank)`,
	}
	for _, stmt := range stmts {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
