// Package rank scores and orders clusters by importance
//
// Ranking is a pure function of cluster state, member items and the
// window end, so re-ranking after an incremental update never requires
// reclustering
package rank

import (
	"math"
	"sort"
	"time"

	"cintel/internal/core/intel"
)

// Config weighs the scoring signals
type Config struct {
	// MemberWeight scales the log-damped member count
	MemberWeight float64

	// AuthorityWeight scales the aggregate source authority
	AuthorityWeight float64

	// RecencyWeight scales the freshness factor against the window end
	RecencyWeight float64

	// RecencyHalfLife halves freshness per elapsed half-life
	RecencyHalfLife time.Duration

	// TagBoost is added once per distinct high-signal tag present
	TagBoost float64

	// HighSignalTags marks the tags that boost a cluster
	HighSignalTags []string
}

// WithDefaults fills zero fields
func (c Config) WithDefaults() Config {
	if c.MemberWeight <= 0 {
		c.MemberWeight = 1.0
	}
	if c.AuthorityWeight <= 0 {
		c.AuthorityWeight = 1.0
	}
	if c.RecencyWeight <= 0 {
		c.RecencyWeight = 1.0
	}
	if c.RecencyHalfLife <= 0 {
		c.RecencyHalfLife = 48 * time.Hour
	}
	if c.TagBoost <= 0 {
		c.TagBoost = 0.5
	}
	if len(c.HighSignalTags) == 0 {
		c.HighSignalTags = []string{"breaking-change", "security", "priority:high"}
	}
	return c
}

// Rank assigns an importance score to every cluster and returns them in
// descending score order. Ties break on most recent LastSeen, then id.
// Member ids inside each cluster are reordered exemplar first, then by
// ascending published time
//
// items maps item id to its NormalizedItem; members without an entry
// contribute nothing to authority or tags
func Rank(cfg Config, clusters []intel.Cluster, items map[string]intel.Item, windowEnd time.Time) []intel.Cluster {
	cfg = cfg.WithDefaults()

	out := make([]intel.Cluster, 0, len(clusters))
	for _, c := range clusters {
		cc := c.Clone()
		cc.Score = score(cfg, cc, items, windowEnd)
		orderMembers(&cc, items)
		out = append(out, cc)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func score(cfg Config, c intel.Cluster, items map[string]intel.Item, windowEnd time.Time) float64 {
	// more independent reports means more important, log damped
	members := cfg.MemberWeight * math.Log1p(float64(len(c.MemberIDs)))

	var authority float64
	signal := map[string]bool{}
	for _, id := range c.MemberIDs {
		it, ok := items[id]
		if !ok {
			continue
		}
		authority += it.Authority
		for _, tag := range cfg.HighSignalTags {
			if it.HasTag(tag) {
				signal[tag] = true
			}
		}
	}

	recency := 1.0
	if gap := windowEnd.Sub(c.LastSeen); gap > 0 {
		recency = math.Pow(0.5, float64(gap)/float64(cfg.RecencyHalfLife))
	}

	return members +
		cfg.AuthorityWeight*authority +
		cfg.RecencyWeight*recency +
		cfg.TagBoost*float64(len(signal))
}

// orderMembers puts the exemplar first and the rest in ascending
// published order with an id tie break
func orderMembers(c *intel.Cluster, items map[string]intel.Item) {
	sort.SliceStable(c.MemberIDs, func(i, j int) bool {
		a, b := c.MemberIDs[i], c.MemberIDs[j]
		if a == c.ExemplarID {
			return b != c.ExemplarID
		}
		if b == c.ExemplarID {
			return false
		}
		ia, okA := items[a]
		ib, okB := items[b]
		if okA && okB && !ia.PublishedAt.Equal(ib.PublishedAt) {
			return ia.PublishedAt.Before(ib.PublishedAt)
		}
		return a < b
	})
}
