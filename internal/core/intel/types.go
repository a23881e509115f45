// Package intel holds the canonical activity model shared by the
// fingerprint, similarity, clustering and ranking stages
package intel

import (
	"sort"
	"time"
)

// Source identifies where an item was observed
type Source string

const (
	// SourceRepoCommits is a repository commit feed
	SourceRepoCommits Source = "repo-commits"
	// SourceRepoPRs is a repository pull request feed
	SourceRepoPRs Source = "repo-prs"
	// SourceForumPost is a discussion forum post
	SourceForumPost Source = "forum-post"
	// SourceRelease is an official release feed
	SourceRelease Source = "release"
	// SourceAggregator is a secondary aggregator or newsletter
	SourceAggregator Source = "aggregator"
)

// Valid reports whether s is a known source
func (s Source) Valid() bool {
	switch s {
	case SourceRepoCommits, SourceRepoPRs, SourceForumPost, SourceRelease, SourceAggregator:
		return true
	}
	return false
}

// Priority orders sources for deterministic tie breaks, lower sorts first
// primary sources come before secondary mentions
func (s Source) Priority() int {
	switch s {
	case SourceRepoCommits:
		return 0
	case SourceRepoPRs:
		return 1
	case SourceRelease:
		return 2
	case SourceForumPost:
		return 3
	case SourceAggregator:
		return 4
	default:
		return 5
	}
}

// Weights maps sources to configured authority weights
type Weights map[Source]float64

// DefaultWeights favors primary sources over aggregator mentions
func DefaultWeights() Weights {
	return Weights{
		SourceRepoCommits: 1.0,
		SourceRepoPRs:     0.9,
		SourceRelease:     0.85,
		SourceForumPost:   0.6,
		SourceAggregator:  0.4,
	}
}

// For returns the weight for s or a conservative fallback
func (w Weights) For(s Source) float64 {
	if v, ok := w[s]; ok {
		return v
	}
	return 0.5
}

// Item is one normalized unit of activity, immutable once created
type Item struct {
	// ID is stable, derived from source plus the source native id
	ID          string
	Source      Source
	Project     string
	Title       string
	BodyExcerpt string
	URL         string
	PublishedAt time.Time
	Tags        []string

	// Authority is the configured per source weight
	Authority float64

	// Embedding is the optional semantic vector, nil when unavailable
	Embedding []float32
}

// HasTag reports whether the item carries tag
func (it Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Cluster aggregates items judged to report the same underlying event
// MemberIDs is kept sorted so snapshots compare byte for byte
type Cluster struct {
	// ID is assigned at creation and stable across incremental runs
	ID         string
	Project    string
	ExemplarID string
	MemberIDs  []string
	FirstSeen  time.Time
	LastSeen   time.Time
	Score      float64
}

// Has reports whether itemID is a member
func (c Cluster) Has(itemID string) bool {
	i := sort.SearchStrings(c.MemberIDs, itemID)
	return i < len(c.MemberIDs) && c.MemberIDs[i] == itemID
}

// Add inserts itemID keeping MemberIDs sorted, duplicates are ignored
func (c *Cluster) Add(itemID string) {
	i := sort.SearchStrings(c.MemberIDs, itemID)
	if i < len(c.MemberIDs) && c.MemberIDs[i] == itemID {
		return
	}
	c.MemberIDs = append(c.MemberIDs, "")
	copy(c.MemberIDs[i+1:], c.MemberIDs[i:])
	c.MemberIDs[i] = itemID
}

// Clone returns a deep copy so callers can mutate freely
func (c Cluster) Clone() Cluster {
	out := c
	out.MemberIDs = append([]string(nil), c.MemberIDs...)
	return out
}
