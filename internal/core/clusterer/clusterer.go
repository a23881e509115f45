// Package clusterer partitions a window of items into event clusters
//
// The pass is inherently sequential: items are processed in ascending
// published order with deterministic tie breaks so the same input always
// yields the same partition. Fingerprinting may run in parallel before
// this pass; nothing here mutates shared state concurrently
package clusterer

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"time"

	"cintel/internal/core/intel"
	"cintel/internal/core/similarity"
)

// Config bounds the candidate search
type Config struct {
	// RecencyHorizon stops old clusters from being reopened indefinitely
	// a cluster is a candidate only while the item's published time is
	// within this horizon of the cluster's last activity
	RecencyHorizon time.Duration
}

// WithDefaults fills zero fields
func (c Config) WithDefaults() Config {
	if c.RecencyHorizon <= 0 {
		c.RecencyHorizon = 72 * time.Hour
	}
	return c
}

// Anomaly describes an invariant violation observed during a pass
type Anomaly struct {
	ItemID     string
	ClusterIDs []string
	Reason     string
}

// Stats summarizes one clustering pass
type Stats struct {
	Considered int
	Created    int
	Joined     int
	Merges     int
	Skipped    int // already members of a prior cluster
	Anomalies  []Anomaly
}

// Engine runs clustering passes with a fixed oracle and config
type Engine struct {
	cfg    Config
	oracle similarity.Oracle
}

// New builds an engine
func New(cfg Config, oracle similarity.Oracle) *Engine {
	return &Engine{cfg: cfg.WithDefaults(), oracle: oracle}
}

// NewID derives the stable cluster id from the founding item id
// the id never changes afterwards, even across merges and incremental runs
func NewID(foundingItemID string) string {
	sum := sha1.Sum([]byte(foundingItemID))
	return "c_" + hex.EncodeToString(sum[:])[:16]
}

// arena cluster state; members reference item ids by value so merges are
// an id remapping, never a pointer graph rewrite
type working struct {
	c        intel.Cluster
	exemplar similarity.Pair
	hasFP    bool // exemplar fingerprint available for comparison
}

// Cluster extends prior clusters with the window's items
//
// prior comes from the previous run's persisted snapshot (empty on a first
// run). pairs must carry every window item plus, for incremental runs, the
// exemplar items of prior clusters so they stay comparable; a prior
// cluster whose exemplar pair is absent is carried through untouched.
//
// The pass is all or nothing: a context cancellation between items aborts
// with an error and no partial result
func (e *Engine) Cluster(ctx context.Context, prior []intel.Cluster, pairs []similarity.Pair) ([]intel.Cluster, Stats, error) {
	var stats Stats

	byID := make(map[string]similarity.Pair, len(pairs))
	for _, p := range pairs {
		byID[p.Item.ID] = p
	}

	// seed the arena from the prior snapshot
	arena := make(map[string]*working, len(prior)+len(pairs))
	assigned := make(map[string]string, len(pairs)) // item id -> cluster id
	for _, pc := range prior {
		w := &working{c: pc.Clone()}
		if ex, ok := byID[pc.ExemplarID]; ok {
			w.exemplar = ex
			w.hasFP = !ex.FP.Empty() || len(ex.FP.Embedding) > 0
		}
		arena[pc.ID] = w
		for _, m := range pc.MemberIDs {
			assigned[m] = pc.ID
		}
	}

	// ascending published order with stable tie breaks keeps results
	// reproducible across runs over the same input
	ordered := make([]similarity.Pair, 0, len(pairs))
	for _, p := range pairs {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i].Item, ordered[j].Item
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.Before(b.PublishedAt)
		}
		if a.Source.Priority() != b.Source.Priority() {
			return a.Source.Priority() < b.Source.Priority()
		}
		return a.ID < b.ID
	})

	for _, p := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, err
		}
		if _, ok := assigned[p.Item.ID]; ok {
			stats.Skipped++
			continue
		}
		stats.Considered++

		accepted := e.matches(p, arena)

		switch len(accepted) {
		case 0:
			id := NewID(p.Item.ID)
			w := &working{
				c: intel.Cluster{
					ID:         id,
					Project:    p.Item.Project,
					ExemplarID: p.Item.ID,
					FirstSeen:  p.Item.PublishedAt,
					LastSeen:   p.Item.PublishedAt,
				},
				exemplar: p,
				hasFP:    true,
			}
			w.c.Add(p.Item.ID)
			arena[id] = w
			assigned[p.Item.ID] = id
			stats.Created++

		case 1:
			join(accepted[0], p)
			assigned[p.Item.ID] = accepted[0].c.ID
			stats.Joined++

		default:
			target := accepted
			if mixed := projectsDiffer(accepted); mixed {
				// unreachable via the oracle's cross-project rejection;
				// record the anomaly and fall back to the single best match
				stats.Anomalies = append(stats.Anomalies, Anomaly{
					ItemID:     p.Item.ID,
					ClusterIDs: ids(accepted),
					Reason:     "multi-accept across projects",
				})
				target = accepted[:1]
			}

			survivor := target[0]
			if len(target) > 1 {
				survivor = e.merge(target, arena, assigned)
				stats.Merges += len(target) - 1
			}
			join(survivor, p)
			assigned[p.Item.ID] = survivor.c.ID
			stats.Joined++
		}
	}

	out := make([]intel.Cluster, 0, len(arena))
	for _, w := range arena {
		out = append(out, w.c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstSeen.Equal(out[j].FirstSeen) {
			return out[i].FirstSeen.Before(out[j].FirstSeen)
		}
		return out[i].ID < out[j].ID
	})
	return out, stats, nil
}

// matches returns every candidate cluster the oracle accepts, ordered by
// descending score with deterministic tie breaks
func (e *Engine) matches(p similarity.Pair, arena map[string]*working) []*working {
	type hit struct {
		w *working
		v similarity.Verdict
	}
	var hits []hit
	for _, w := range arena {
		if !w.hasFP || w.c.Project != p.Item.Project {
			continue
		}
		if !withinHorizon(p.Item.PublishedAt, w.c.LastSeen, e.cfg.RecencyHorizon) {
			continue
		}
		if v := e.oracle.SameEvent(p, w.exemplar); v.Decision {
			hits = append(hits, hit{w: w, v: v})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].v.Score != hits[j].v.Score {
			return hits[i].v.Score > hits[j].v.Score
		}
		if !hits[i].w.c.FirstSeen.Equal(hits[j].w.c.FirstSeen) {
			return hits[i].w.c.FirstSeen.Before(hits[j].w.c.FirstSeen)
		}
		return hits[i].w.c.ID < hits[j].w.c.ID
	})
	out := make([]*working, len(hits))
	for i := range hits {
		out[i] = hits[i].w
	}
	return out
}

// merge folds every cluster in target into the one with the earliest
// FirstSeen (tie: smaller id), keeping that cluster's id and rebinding
// all member assignments. The exemplar of the survivor becomes the
// highest-authority exemplar among the merged clusters
func (e *Engine) merge(target []*working, arena map[string]*working, assigned map[string]string) *working {
	survivor := target[0]
	for _, w := range target[1:] {
		if w.c.FirstSeen.Before(survivor.c.FirstSeen) ||
			(w.c.FirstSeen.Equal(survivor.c.FirstSeen) && w.c.ID < survivor.c.ID) {
			survivor = w
		}
	}

	for _, w := range target {
		if w == survivor {
			continue
		}
		for _, m := range w.c.MemberIDs {
			survivor.c.Add(m)
			assigned[m] = survivor.c.ID
		}
		if w.c.FirstSeen.Before(survivor.c.FirstSeen) {
			survivor.c.FirstSeen = w.c.FirstSeen
		}
		if w.c.LastSeen.After(survivor.c.LastSeen) {
			survivor.c.LastSeen = w.c.LastSeen
		}
		if w.hasFP && betterExemplar(w.exemplar, survivor.exemplar, survivor.hasFP) {
			survivor.exemplar = w.exemplar
			survivor.hasFP = true
			survivor.c.ExemplarID = w.c.ExemplarID
		}
		delete(arena, w.c.ID)
	}
	return survivor
}

// join adds the item as a member and runs the exemplar state machine:
// the exemplar changes only on strictly higher source authority
func join(w *working, p similarity.Pair) {
	w.c.Add(p.Item.ID)
	if p.Item.PublishedAt.After(w.c.LastSeen) {
		w.c.LastSeen = p.Item.PublishedAt
	}
	if p.Item.PublishedAt.Before(w.c.FirstSeen) {
		w.c.FirstSeen = p.Item.PublishedAt
	}
	if betterExemplar(p, w.exemplar, w.hasFP) {
		w.exemplar = p
		w.hasFP = true
		w.c.ExemplarID = p.Item.ID
	}
}

// betterExemplar is the explicit exemplar comparison: strictly higher
// authority wins, otherwise the incumbent stays
func betterExemplar(cand, incumbent similarity.Pair, incumbentKnown bool) bool {
	if !incumbentKnown {
		return true
	}
	return cand.Item.Authority > incumbent.Item.Authority
}

func withinHorizon(itemAt, lastSeen time.Time, horizon time.Duration) bool {
	gap := itemAt.Sub(lastSeen)
	if gap < 0 {
		// cluster activity after the item; always comparable
		return true
	}
	return gap <= horizon
}

func projectsDiffer(ws []*working) bool {
	for i := 1; i < len(ws); i++ {
		if ws[i].c.Project != ws[0].c.Project {
			return true
		}
	}
	return false
}

func ids(ws []*working) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.c.ID
	}
	return out
}
