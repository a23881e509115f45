package repo

import (
	"context"

	"cintel/internal/modkit/repokit"
)

// EnsureSchema creates the items tables when they are missing
// safe to run on every startup
func EnsureSchema(ctx context.Context, q repokit.Queryer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id            TEXT PRIMARY KEY,
			source        TEXT NOT NULL,
			project       TEXT NOT NULL DEFAULT '',
			title         TEXT NOT NULL,
			body_excerpt  TEXT NOT NULL DEFAULT '',
			url           TEXT NOT NULL DEFAULT '',
			published_at  TIMESTAMPTZ NOT NULL,
			tags          TEXT[] NOT NULL DEFAULT '{}',
			authority     DOUBLE PRECISION NOT NULL DEFAULT 0,
			embedding     REAL[],
			ingested_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS items_published_idx ON items (published_at, id)`,
		`CREATE INDEX IF NOT EXISTS items_project_idx ON items (project, published_at)`,
		`CREATE TABLE IF NOT EXISTS fingerprint_cache (
			content_hash TEXT PRIMARY KEY,
			item_id      TEXT NOT NULL,
			sketch       BIGINT[] NOT NULL,
			embedding    REAL[],
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
