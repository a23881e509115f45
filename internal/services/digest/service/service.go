// Package service implements the digest pipeline orchestrator
//
// One run resolves the reporting window, fingerprints the window's items
// (cache first), extends the prior snapshot's clusters with them, ranks
// the result and commits the new snapshot. Every step before the commit
// is read only, so a failed run never corrupts the prior state
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cintel/internal/adapters/embed"
	"cintel/internal/core/clusterer"
	"cintel/internal/core/fingerprint"
	"cintel/internal/core/intel"
	"cintel/internal/core/rank"
	"cintel/internal/core/similarity"
	"cintel/internal/core/window"
	"cintel/internal/platform/logger"
	"cintel/internal/platform/store"
	clustersdom "cintel/internal/services/clusters/domain"
	"cintel/internal/services/digest/domain"
	itemsdom "cintel/internal/services/items/domain"
)

// Config bundles the pipeline knobs
type Config struct {
	Window      window.Config
	Fingerprint fingerprint.Config
	Similarity  similarity.Config
	Clusterer   clusterer.Config
	Rank        rank.Config

	// Workers bounds parallel fingerprint extraction
	Workers int
}

// Service implements domain.RunnerPort
type Service struct {
	Items    itemsdom.ReaderPort
	Cache    itemsdom.FingerprintCachePort
	Snaps    clustersdom.SnapshotPort
	Embedder embed.Embedder   // nil means lexical only
	Ledger   store.Clickhouse // nil disables the run ledger
	Cfg      Config
}

// New constructs a digest service
// the embedder's model version salts the fingerprint cache so switching
// models invalidates every cached entry
func New(items itemsdom.ReaderPort, cache itemsdom.FingerprintCachePort, snaps clustersdom.SnapshotPort, cfg Config) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Service{Items: items, Cache: cache, Snaps: snaps, Cfg: cfg}
}

// WithEmbedder attaches an optional embedder
func (s *Service) WithEmbedder(e embed.Embedder) *Service {
	s.Embedder = e
	if e != nil {
		s.Cfg.Fingerprint.ModelVersion = e.Model()
	}
	return s
}

// WithLedger attaches the optional ClickHouse run ledger
func (s *Service) WithLedger(ch store.Clickhouse) *Service {
	s.Ledger = ch
	return s
}

// Run implements domain.RunnerPort
func (s *Service) Run(ctx context.Context, mode string) (domain.RunResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = store.WithRunID(ctx, runID)
	log := logger.C(ctx)

	wcfg := s.Cfg.Window
	if mode != "" {
		wcfg.Mode = window.Mode(mode)
	}
	win, err := window.Resolve(wcfg, time.Now())
	if err != nil {
		return domain.RunResult{}, err
	}

	res := domain.RunResult{
		RunID:       runID,
		Mode:        string(win.Mode),
		WindowStart: win.Start,
		WindowEnd:   win.End,
	}

	prior, hadPrior, err := s.Snaps.Load(ctx, string(win.Mode))
	if err != nil {
		return domain.RunResult{}, err
	}

	items, err := s.Items.ListWindow(ctx, itemsdom.ListInput{Since: win.Start, Until: win.End})
	if err != nil {
		return domain.RunResult{}, err
	}
	res.Items = len(items)

	// prior exemplars outside the window stay comparable by loading them in
	items, err = s.appendPriorExemplars(ctx, items, prior.Clusters)
	if err != nil {
		return domain.RunResult{}, err
	}

	pairs, cacheStats, err := s.fingerprintAll(ctx, items)
	if err != nil {
		return domain.RunResult{}, err
	}
	res.CacheHits = cacheStats.hits
	res.CacheMisses = cacheStats.misses
	res.Embedded = cacheStats.embedded

	engine := clusterer.New(s.Cfg.Clusterer, similarity.New(s.Cfg.Similarity))
	clusters, stats, err := engine.Cluster(ctx, prior.Clusters, pairs)
	if err != nil {
		return domain.RunResult{}, err
	}
	res.Created = stats.Created
	res.Joined = stats.Joined
	res.Merges = stats.Merges
	res.Skipped = stats.Skipped
	res.Anomalies = len(stats.Anomalies)
	for _, a := range stats.Anomalies {
		log.Warn().Str("item_id", a.ItemID).Strs("cluster_ids", a.ClusterIDs).Str("reason", a.Reason).
			Msg("clustering anomaly")
	}

	byID := make(map[string]intel.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	ranked := rank.Rank(s.Cfg.Rank, clusters, byID, win.End)
	res.Clusters = len(ranked)

	err = s.Snaps.Save(ctx, clustersdom.Snapshot{
		Mode:        string(win.Mode),
		WindowStart: win.Start,
		WindowEnd:   win.End,
		RunID:       runID,
		Clusters:    ranked,
	})
	if err != nil {
		return domain.RunResult{}, err
	}

	res.Elapsed = time.Since(start)
	s.writeLedger(ctx, res)

	log.Info().
		Str("mode", res.Mode).
		Bool("had_prior", hadPrior).
		Int("items", res.Items).
		Int("clusters", res.Clusters).
		Int("created", res.Created).
		Int("joined", res.Joined).
		Int("merges", res.Merges).
		Dur("elapsed", res.Elapsed).
		Msg("digest run committed")
	return res, nil
}

// appendPriorExemplars loads prior exemplar items missing from the window
func (s *Service) appendPriorExemplars(ctx context.Context, items []intel.Item, prior []intel.Cluster) ([]intel.Item, error) {
	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[it.ID] = true
	}
	var missing []string
	for _, c := range prior {
		if !present[c.ExemplarID] {
			missing = append(missing, c.ExemplarID)
		}
	}
	if len(missing) == 0 {
		return items, nil
	}
	extra, err := s.Items.ByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	return append(items, extra...), nil
}

type cacheStats struct {
	hits, misses, embedded int
}

// fingerprintAll resolves a fingerprint for every item, cache first
func (s *Service) fingerprintAll(ctx context.Context, items []intel.Item) ([]similarity.Pair, cacheStats, error) {
	var cs cacheStats
	log := logger.C(ctx)

	hashes := make([]string, len(items))
	for i, it := range items {
		hashes[i] = fingerprint.ContentHash(s.Cfg.Fingerprint, it.Title, it.BodyExcerpt)
	}
	cached, err := s.Cache.Lookup(ctx, hashes)
	if err != nil {
		return nil, cs, err
	}

	pairs := make([]similarity.Pair, len(items))
	var missIdx []int
	var missItems []intel.Item
	for i, it := range items {
		if cf, ok := cached[hashes[i]]; ok {
			fp := cf.FP
			fp.ItemID = it.ID
			if len(fp.Embedding) == 0 {
				fp.Embedding = it.Embedding
			}
			pairs[i] = similarity.Pair{Item: it, FP: fp}
			cs.hits++
			continue
		}
		missIdx = append(missIdx, i)
		missItems = append(missItems, it)
		cs.misses++
	}

	if len(missItems) > 0 {
		fps, err := fingerprint.ExtractAll(ctx, s.Cfg.Fingerprint, missItems, s.Cfg.Workers)
		if err != nil {
			return nil, cs, err
		}

		fresh := make([]itemsdom.CachedFingerprint, 0, len(fps))
		for j, fp := range fps {
			it := missItems[j]
			if len(fp.Embedding) == 0 && s.Embedder != nil && s.Embedder.Available() {
				vec, err := s.Embedder.Embed(ctx, it.Title+" "+it.BodyExcerpt)
				if err != nil {
					log.Warn().Err(err).Str("item_id", it.ID).Msg("embedding failed, lexical only")
				} else {
					fp.Embedding = vec
					cs.embedded++
				}
			}
			pairs[missIdx[j]] = similarity.Pair{Item: it, FP: fp}
			fresh = append(fresh, itemsdom.CachedFingerprint{ContentHash: fp.ContentHash, FP: fp})
		}
		if err := s.Cache.Store(ctx, fresh); err != nil {
			return nil, cs, err
		}
	}
	return pairs, cs, nil
}

// EnsureLedger creates the run ledger table when it is missing
func EnsureLedger(ctx context.Context, ch store.Clickhouse) error {
	return ch.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS digest_runs (
			run_id        String,
			mode          LowCardinality(String),
			window_start  DateTime64(3, 'UTC'),
			window_end    DateTime64(3, 'UTC'),
			items         Int64,
			clusters      Int64,
			created       Int64,
			joined        Int64,
			merges        Int64,
			skipped       Int64,
			anomalies     Int64,
			cache_hits    Int64,
			cache_misses  Int64,
			embedded      Int64,
			elapsed_ms    Int64,
			finished_at   DateTime64(3, 'UTC')
		)
		ENGINE = MergeTree
		ORDER BY (mode, finished_at)`)
}

// writeLedger appends the run to the ClickHouse ledger, best effort
func (s *Service) writeLedger(ctx context.Context, res domain.RunResult) {
	if s.Ledger == nil {
		return
	}
	row := []any{
		res.RunID, res.Mode, res.WindowStart, res.WindowEnd,
		int64(res.Items), int64(res.Clusters),
		int64(res.Created), int64(res.Joined), int64(res.Merges), int64(res.Skipped),
		int64(res.Anomalies), int64(res.CacheHits), int64(res.CacheMisses), int64(res.Embedded),
		res.Elapsed.Milliseconds(), time.Now().UTC(),
	}
	if err := s.Ledger.Insert(ctx, "digest_runs", [][]any{row}); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("run ledger write failed")
	}
}
