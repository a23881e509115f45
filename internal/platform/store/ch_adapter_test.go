package store

import (
	"context"
	"testing"

	"cintel/internal/platform/store/ch"
)

// TestCHAdapter_Insert_RejectsBadShape refuses payloads that are not [][]any
func TestCHAdapter_Insert_RejectsBadShape(t *testing.T) {
	t.Parallel()

	a := newCHAdapter(&ch.CH{})
	if err := a.Insert(context.Background(), "some_table", struct{}{}); err == nil {
		t.Fatalf("Insert expected error for unsupported payload shape")
	}
}

// TestCHAdapter_Insert_EmptyRowsNoop sends nothing for an empty batch
func TestCHAdapter_Insert_EmptyRowsNoop(t *testing.T) {
	t.Parallel()

	a := newCHAdapter(&ch.CH{})
	if err := a.Insert(context.Background(), "some_table", [][]any{}); err != nil {
		t.Fatalf("Insert on empty batch returned error: %v", err)
	}
}

// TestCHAdapter_Ping_NilInner reports an error instead of panicking
func TestCHAdapter_Ping_NilInner(t *testing.T) {
	t.Parallel()

	var a *clickhouseAdapter
	if err := a.Ping(context.Background()); err == nil {
		t.Fatalf("Ping on nil adapter expected error")
	}
}
