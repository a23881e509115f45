// Package similarity implements the same-event oracle over fingerprints
//
// The oracle is deterministic: no randomness, no external calls. Given the
// same pair and the same Config the verdict never changes
package similarity

import (
	"math"
	"time"

	"cintel/internal/core/fingerprint"
	"cintel/internal/core/intel"
)

// Config carries the acceptance policy knobs
// thread it explicitly so tests can exercise several regimes in one process
type Config struct {
	// Threshold is the combined score acceptance bar
	Threshold float64

	// StrictLexical accepts on lexical similarity alone, bypassing decay
	StrictLexical float64

	// LexicalWeight and SemanticWeight blend the two signals when an
	// embedding is present on both sides
	LexicalWeight  float64
	SemanticWeight float64

	// TimeSlack is the gap tolerated before the score starts decaying
	TimeSlack time.Duration

	// TimeHalfLife halves the score for every extra half-life beyond slack
	TimeHalfLife time.Duration

	// SketchSize mirrors the fingerprint bottom-k size
	SketchSize int
}

// WithDefaults fills zero fields with the standard policy
func (c Config) WithDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = 0.3
	}
	if c.StrictLexical <= 0 {
		c.StrictLexical = 0.85
	}
	if c.LexicalWeight <= 0 {
		c.LexicalWeight = 0.6
	}
	if c.SemanticWeight <= 0 {
		c.SemanticWeight = 0.4
	}
	if c.TimeSlack <= 0 {
		c.TimeSlack = 36 * time.Hour
	}
	if c.TimeHalfLife <= 0 {
		c.TimeHalfLife = 72 * time.Hour
	}
	if c.SketchSize <= 0 {
		c.SketchSize = 64
	}
	return c
}

// Pair bundles an item with its fingerprint for oracle calls
type Pair struct {
	Item intel.Item
	FP   fingerprint.Fingerprint
}

// Verdict is the oracle output for one pair
type Verdict struct {
	// Score is the combined, time-decayed similarity in [0,1]
	Score float64

	// Lexical is the raw sketch resemblance before decay
	Lexical float64

	// Semantic is the embedding cosine, or 0 when unavailable
	Semantic float64

	// SemanticUsed reports whether both sides carried an embedding
	SemanticUsed bool

	// Decision is the same-event acceptance
	Decision bool
}

// Oracle decides whether two items report the same underlying event
type Oracle struct {
	cfg Config
}

// New builds an oracle with cfg defaults applied
func New(cfg Config) Oracle {
	return Oracle{cfg: cfg.WithDefaults()}
}

// Config returns the effective policy
func (o Oracle) Config() Config { return o.cfg }

// SameEvent scores a pair and applies the acceptance policy
//
// cross-project pairs are rejected outright regardless of score; a GCC
// post and an LLVM post are never the same event
func (o Oracle) SameEvent(a, b Pair) Verdict {
	if a.Item.Project != b.Item.Project {
		return Verdict{}
	}

	lex := fingerprint.Resemblance(a.FP.Sketch, b.FP.Sketch, o.cfg.SketchSize)

	v := Verdict{Lexical: lex}
	combined := lex
	if sem, ok := cosine(a.FP.Embedding, b.FP.Embedding); ok {
		v.Semantic = sem
		v.SemanticUsed = true
		combined = o.cfg.LexicalWeight*lex + o.cfg.SemanticWeight*sem
	}

	combined *= o.timeFactor(a.Item.PublishedAt, b.Item.PublishedAt)

	v.Score = combined
	v.Decision = combined >= o.cfg.Threshold || lex >= o.cfg.StrictLexical
	return v
}

// timeFactor is 1 within the slack and halves per half-life beyond it
// far-apart timestamps lower confidence even with high text similarity,
// which separates recurring-but-distinct events like weekly release notes
func (o Oracle) timeFactor(a, b time.Time) float64 {
	gap := a.Sub(b)
	if gap < 0 {
		gap = -gap
	}
	if gap <= o.cfg.TimeSlack {
		return 1
	}
	excess := float64(gap-o.cfg.TimeSlack) / float64(o.cfg.TimeHalfLife)
	return math.Pow(0.5, excess)
}

// cosine returns the cosine similarity of two vectors
// ok is false when either side is missing or the lengths differ
func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// clamp fp drift
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c, true
}
