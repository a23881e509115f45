// Package repo provides the items repository implementation
package repo

import (
	"context"
	"fmt"
	"strings"

	"cintel/internal/core/intel"
	"cintel/internal/modkit/repokit"
	"cintel/internal/services/items/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the items repository
type Storage interface {
	UpsertBatch(ctx context.Context, xs []intel.Item) (int, error)
	ListWindow(ctx context.Context, in domain.ListInput, hardLimit int) ([]intel.Item, error)
	ByIDs(ctx context.Context, ids []string) ([]intel.Item, error)
	LookupFingerprints(ctx context.Context, hashes []string) (map[string]domain.CachedFingerprint, error)
	StoreFingerprints(ctx context.Context, fps []domain.CachedFingerprint) error
}

const itemCols = `id, source::text, project, title, body_excerpt, url, published_at, tags, authority, embedding`

// UpsertBatch implements Storage
// re-ingesting the same id refreshes mutable fields but never clears a
// previously stored embedding
func (s *pg) UpsertBatch(ctx context.Context, xs []intel.Item) (int, error) {
	if len(xs) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO items
		(id, source, project, title, body_excerpt, url, published_at, tags, authority, embedding) VALUES `)

	args := make([]any, 0, len(xs)*10)
	for i, it := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*10 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)

		tags := it.Tags
		if tags == nil {
			tags = []string{}
		}
		args = append(args,
			it.ID, string(it.Source), it.Project, it.Title, it.BodyExcerpt,
			it.URL, it.PublishedAt, tags, it.Authority, it.Embedding,
		)
	}
	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		body_excerpt = EXCLUDED.body_excerpt,
		tags = EXCLUDED.tags,
		authority = EXCLUDED.authority,
		embedding = COALESCE(EXCLUDED.embedding, items.embedding)
		WHERE items.title IS DISTINCT FROM EXCLUDED.title
			OR items.body_excerpt IS DISTINCT FROM EXCLUDED.body_excerpt
			OR items.tags IS DISTINCT FROM EXCLUDED.tags
			OR items.authority IS DISTINCT FROM EXCLUDED.authority
			OR EXCLUDED.embedding IS NOT NULL`)
	sb.WriteString(` RETURNING (xmax = 0) AS inserted`)

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	inserted := 0
	for rows.Next() {
		var fresh bool
		if err := rows.Scan(&fresh); err != nil {
			return 0, err
		}
		if fresh {
			inserted++
		}
	}
	return inserted, rows.Err()
}

// ListWindow implements Storage
func (s *pg) ListWindow(ctx context.Context, in domain.ListInput, hardLimit int) ([]intel.Item, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT ` + itemCols + `
		FROM items
		WHERE published_at >= ` + arg(in.Since) + ` AND published_at <= ` + arg(in.Until) + `
	`)
	if len(in.Projects) > 0 {
		sb.WriteString("  AND project = ANY(" + arg(in.Projects) + ")\n")
	}

	limit := in.Limit
	if limit <= 0 || limit > hardLimit {
		limit = hardLimit
	}
	sb.WriteString("ORDER BY published_at, id\nLIMIT " + arg(limit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows, limit)
}

// ByIDs implements Storage
func (s *pg) ByIDs(ctx context.Context, ids []string) ([]intel.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.q.Query(ctx,
		`SELECT `+itemCols+` FROM items WHERE id = ANY($1) ORDER BY published_at, id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows, len(ids))
}

func scanItems(rows repokit.Rows, capHint int) ([]intel.Item, error) {
	out := make([]intel.Item, 0, capHint)
	for rows.Next() {
		var it intel.Item
		var src string
		if err := rows.Scan(
			&it.ID, &src, &it.Project, &it.Title, &it.BodyExcerpt,
			&it.URL, &it.PublishedAt, &it.Tags, &it.Authority, &it.Embedding,
		); err != nil {
			return nil, err
		}
		it.Source = intel.Source(src)
		out = append(out, it)
	}
	return out, rows.Err()
}

// LookupFingerprints implements Storage
func (s *pg) LookupFingerprints(ctx context.Context, hashes []string) (map[string]domain.CachedFingerprint, error) {
	if len(hashes) == 0 {
		return map[string]domain.CachedFingerprint{}, nil
	}
	rows, err := s.q.Query(ctx, `
		SELECT content_hash, item_id, sketch, embedding
		FROM fingerprint_cache
		WHERE content_hash = ANY($1)`, hashes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.CachedFingerprint, len(hashes))
	for rows.Next() {
		var cf domain.CachedFingerprint
		var sketch []int64
		if err := rows.Scan(&cf.ContentHash, &cf.FP.ItemID, &sketch, &cf.FP.Embedding); err != nil {
			return nil, err
		}
		cf.FP.ContentHash = cf.ContentHash
		cf.FP.Sketch = sketchFromPG(sketch)
		out[cf.ContentHash] = cf
	}
	return out, rows.Err()
}

// StoreFingerprints implements Storage
func (s *pg) StoreFingerprints(ctx context.Context, fps []domain.CachedFingerprint) error {
	if len(fps) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO fingerprint_cache (content_hash, item_id, sketch, embedding) VALUES `)

	args := make([]any, 0, len(fps)*4)
	for i, cf := range fps {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*4 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d)", base, base+1, base+2, base+3)
		args = append(args, cf.ContentHash, cf.FP.ItemID, sketchToPG(cf.FP.Sketch), cf.FP.Embedding)
	}
	sb.WriteString(` ON CONFLICT (content_hash) DO UPDATE SET
		item_id = EXCLUDED.item_id,
		sketch = EXCLUDED.sketch,
		embedding = EXCLUDED.embedding`)

	_, err := s.q.Exec(ctx, sb.String(), args...)
	return err
}

// sketch hashes ride in bigint[]; the sign bit round-trips through the cast
func sketchToPG(xs []uint64) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

func sketchFromPG(xs []int64) []uint64 {
	if len(xs) == 0 {
		return nil
	}
	out := make([]uint64, len(xs))
	for i, x := range xs {
		out[i] = uint64(x)
	}
	return out
}
