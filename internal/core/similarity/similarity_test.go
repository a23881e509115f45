package similarity

import (
	"testing"
	"time"

	"cintel/internal/core/fingerprint"
	"cintel/internal/core/intel"
)

var t0 = time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)

func pair(id, project, title string, at time.Time, emb []float32) Pair {
	it := intel.Item{
		ID:          id,
		Source:      intel.SourceRepoCommits,
		Project:     project,
		Title:       title,
		PublishedAt: at,
		Embedding:   emb,
	}
	return Pair{Item: it, FP: fingerprint.Extract(fingerprint.Config{}, it)}
}

func TestSameEvent_IdenticalText(t *testing.T) {
	t.Parallel()

	o := New(Config{})
	a := pair("a", "LLVM", "LLVM fixes loop vectorizer crash", t0, nil)
	b := pair("b", "LLVM", "LLVM fixes loop vectorizer crash", t0.Add(2*time.Hour), nil)

	v := o.SameEvent(a, b)
	if !v.Decision {
		t.Fatalf("identical text should be the same event: %+v", v)
	}
	if v.Lexical != 1 {
		t.Fatalf("lexical = %v, want 1", v.Lexical)
	}
	if v.SemanticUsed {
		t.Fatalf("no embeddings were provided")
	}
}

func TestSameEvent_CrossProjectRejectedOutright(t *testing.T) {
	t.Parallel()

	o := New(Config{})
	// structurally similar "X released" headlines across projects
	a := pair("a", "GCC", "GCC 15 released", t0, nil)
	b := pair("b", "LLVM", "LLVM 19 released", t0, nil)

	v := o.SameEvent(a, b)
	if v.Decision {
		t.Fatalf("cross-project pair must never be the same event")
	}
	if v.Score != 0 {
		t.Fatalf("cross-project score = %v, want 0", v.Score)
	}
}

func TestSameEvent_Deterministic(t *testing.T) {
	t.Parallel()

	o := New(Config{})
	a := pair("a", "LLVM", "LLVM fixes loop vectorizer crash", t0, nil)
	b := pair("b", "LLVM", "Fix: loop vectorizer crash in LLVM", t0.Add(2*time.Hour), nil)

	first := o.SameEvent(a, b)
	for i := 0; i < 5; i++ {
		if got := o.SameEvent(a, b); got != first {
			t.Fatalf("verdict changed across calls: %+v vs %+v", got, first)
		}
	}
	// symmetry
	if got := o.SameEvent(b, a); got != first {
		t.Fatalf("verdict not symmetric: %+v vs %+v", got, first)
	}
}

func TestSameEvent_TimeDecayLowersScore(t *testing.T) {
	t.Parallel()

	o := New(Config{TimeSlack: time.Hour, TimeHalfLife: 24 * time.Hour})
	a := pair("a", "LLVM", "weekly snapshot notes for testing", t0, nil)

	near := pair("b", "LLVM", "weekly snapshot notes for testing", t0.Add(30*time.Minute), nil)
	far := pair("c", "LLVM", "weekly snapshot notes for testing", t0.Add(7*24*time.Hour), nil)

	vNear := o.SameEvent(a, near)
	vFar := o.SameEvent(a, far)
	if vFar.Score >= vNear.Score {
		t.Fatalf("decay failed: far %v >= near %v", vFar.Score, vNear.Score)
	}
	if vFar.Lexical != vNear.Lexical {
		t.Fatalf("lexical must not decay: %v vs %v", vFar.Lexical, vNear.Lexical)
	}
}

func TestSameEvent_StrictLexicalOverridesDecay(t *testing.T) {
	t.Parallel()

	// aggressive decay drives the combined score to ~0, yet identical
	// text must still be accepted via the strict lexical bar
	o := New(Config{Threshold: 0.6, StrictLexical: 0.9, TimeSlack: time.Minute, TimeHalfLife: time.Minute})
	a := pair("a", "LLVM", "LLVM fixes loop vectorizer crash", t0, nil)
	b := pair("b", "LLVM", "LLVM fixes loop vectorizer crash", t0.Add(48*time.Hour), nil)

	v := o.SameEvent(a, b)
	if v.Score >= 0.6 {
		t.Fatalf("expected the combined score to be decayed, got %v", v.Score)
	}
	if !v.Decision {
		t.Fatalf("strict lexical override should accept: %+v", v)
	}
}

func TestSameEvent_EmbeddingsBlendIn(t *testing.T) {
	t.Parallel()

	o := New(Config{})
	emb := []float32{0.1, 0.9, 0.3}
	a := pair("a", "LLVM", "vectorizer crash fixed in trunk", t0, emb)
	b := pair("b", "LLVM", "loop vectorizer no longer crashes", t0.Add(time.Hour), emb)

	v := o.SameEvent(a, b)
	if !v.SemanticUsed {
		t.Fatalf("both sides carry embeddings, semantic should be used")
	}
	if v.Semantic != 1 {
		t.Fatalf("identical embeddings cosine = %v, want 1", v.Semantic)
	}

	// one side missing: never an error, falls back to lexical only
	c := pair("c", "LLVM", "loop vectorizer no longer crashes", t0.Add(time.Hour), nil)
	vc := o.SameEvent(a, c)
	if vc.SemanticUsed {
		t.Fatalf("missing embedding must fall back to lexical only")
	}
}

func TestSameEvent_LengthMismatchedEmbeddingsIgnored(t *testing.T) {
	t.Parallel()

	o := New(Config{})
	a := pair("a", "LLVM", "same words here", t0, []float32{1, 0})
	b := pair("b", "LLVM", "same words here", t0, []float32{1, 0, 0})

	v := o.SameEvent(a, b)
	if v.SemanticUsed {
		t.Fatalf("mismatched embedding lengths must be treated as unavailable")
	}
	if !v.Decision {
		t.Fatalf("identical text should still be accepted lexically")
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	if got, ok := cosine([]float32{1, 0}, []float32{0, 1}); !ok || got != 0 {
		t.Fatalf("orthogonal cosine = %v ok=%v, want 0 true", got, ok)
	}
	if _, ok := cosine([]float32{0, 0}, []float32{1, 0}); ok {
		t.Fatalf("zero vector must be unavailable")
	}
	if _, ok := cosine(nil, []float32{1}); ok {
		t.Fatalf("nil vector must be unavailable")
	}
}
