// Package fingerprint derives compact similarity signatures from items
//
// The lexical signature is a bottom-k sketch over word shingles so two
// sketches estimate the Jaccard similarity of their full shingle sets in
// O(k). The semantic signature is the optional embedding carried on the
// item; its absence never errors
package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strconv"

	"cintel/internal/core/intel"
	"cintel/internal/core/textnorm"
)

// Config controls shingling and sketching
// changing HashSeed or ModelVersion invalidates every cached fingerprint
type Config struct {
	// MinShingle and MaxShingle bound the shingle width in words
	MinShingle int
	MaxShingle int

	// SketchSize is the bottom-k sketch size
	SketchSize int

	// HashSeed salts the shingle hash
	HashSeed uint64

	// ModelVersion tags the embedding model the pipeline runs with
	ModelVersion string
}

// WithDefaults fills zero fields with the standard knobs
func (c Config) WithDefaults() Config {
	if c.MinShingle <= 0 {
		c.MinShingle = 3
	}
	if c.MaxShingle < c.MinShingle {
		c.MaxShingle = c.MinShingle + 2
	}
	if c.SketchSize <= 0 {
		c.SketchSize = 64
	}
	return c
}

// Fingerprint is the derived signature of one item
type Fingerprint struct {
	ItemID string

	// Sketch is the ascending bottom-k of distinct shingle hashes
	Sketch []uint64

	// Embedding mirrors the item's optional semantic vector
	Embedding []float32

	// ContentHash keys the cache, salted by seed and model version
	ContentHash string
}

// Empty reports whether the lexical sketch carries no signal
func (f Fingerprint) Empty() bool { return len(f.Sketch) == 0 }

// Extract computes the fingerprint for one item
// pure: identical title and excerpt always yield an identical sketch
func Extract(cfg Config, it intel.Item) Fingerprint {
	cfg = cfg.WithDefaults()

	toks := textnorm.Tokens(it.Title + " " + it.BodyExcerpt)
	return Fingerprint{
		ItemID:      it.ID,
		Sketch:      sketch(cfg, toks),
		Embedding:   it.Embedding,
		ContentHash: ContentHash(cfg, it.Title, it.BodyExcerpt),
	}
}

// ContentHash is the cache invalidation key for an item's text
func ContentHash(cfg Config, title, body string) string {
	cfg = cfg.WithDefaults()
	h := sha1.New()
	h.Write([]byte(strconv.FormatUint(cfg.HashSeed, 16)))
	h.Write([]byte{0})
	h.Write([]byte(cfg.ModelVersion))
	h.Write([]byte{0})
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}

// sketch hashes every n-gram shingle for n in [MinShingle, MaxShingle]
// and keeps the k smallest distinct values, ascending
//
// texts shorter than twice MaxShingle shingle at 1..3 words instead;
// bare titles produce so few wide shingles that one shared trigram
// would dominate the estimate
func sketch(cfg Config, toks []string) []uint64 {
	if len(toks) == 0 {
		return nil
	}

	if len(toks) < 2*cfg.MaxShingle {
		cfg.MinShingle, cfg.MaxShingle = 1, 3
	}

	seen := make(map[uint64]struct{}, len(toks)*(cfg.MaxShingle-cfg.MinShingle+1))
	for n := cfg.MinShingle; n <= cfg.MaxShingle; n++ {
		if n > len(toks) {
			break
		}
		for i := 0; i+n <= len(toks); i++ {
			seen[hashShingle(cfg.HashSeed, toks[i:i+n])] = struct{}{}
		}
	}

	out := make([]uint64, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) > cfg.SketchSize {
		out = out[:cfg.SketchSize]
	}
	return out
}

// hashShingle is FNV-1a over the joined shingle, xor-seeded
func hashShingle(seed uint64, parts []string) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	h := uint64(offset) ^ seed
	for i, p := range parts {
		if i > 0 {
			h ^= ' '
			h *= prime
		}
		for j := 0; j < len(p); j++ {
			h ^= uint64(p[j])
			h *= prime
		}
	}
	return h
}

// Resemblance estimates the Jaccard similarity of the sets behind two
// bottom-k sketches. Both sketches must come from the same Config
func Resemblance(a, b []uint64, k int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if k <= 0 {
		k = 64
	}

	// walk the merged union bottom-k and count values present in both
	n := 0      // union values examined
	shared := 0 // values in both sketches
	i, j := 0, 0
	for n < k && (i < len(a) || j < len(b)) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			i++
		case i >= len(a) || b[j] < a[i]:
			j++
		default:
			shared++
			i++
			j++
		}
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(shared) / float64(n)
}
