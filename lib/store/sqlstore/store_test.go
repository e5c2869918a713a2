package sqlstore

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/hrishi045/segstore/lib/store"
	storetesting "github.com/hrishi045/segstore/lib/store/testing"
)

// tempFactory hands out a fresh database file per store instance.
func tempFactory(t testing.TB) store.StoreFactory {
	dir := t.TempDir()
	var counter atomic.Int64
	return func() (store.ISegmentedStore, error) {
		return New(filepath.Join(dir, fmt.Sprintf("segstore-%d.db", counter.Add(1))))
	}
}

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "SQLiteStore", tempFactory(t))
}

func Benchmark(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "SQLiteStore", tempFactory(b))
}

// TestPersistence verifies that records survive a close/reopen cycle.
func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segstore.db")
	ctx := context.Background()

	key := []string{"doc", "persisted"}
	value := []byte{0xde, 0xad, 0xbe, 0xef}

	s, err := New(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.Put(ctx, key, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	result, err := reopened.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if !bytes.Equal(result, value) {
		t.Errorf("value changed across reopen: got %v, want %v", result, value)
	}
}

// TestInvalidKeyBeforeBackend checks that the key bound is enforced
// without touching the database.
func TestInvalidKeyBeforeBackend(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "segstore.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	// A cancelled context would make any backend call fail with a
	// storage error; an InvalidKey result proves validation runs first.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Put(ctx, nil, []byte("x")); !store.IsInvalidKey(err) {
		t.Errorf("expected InvalidKey, got %v", err)
	}
	if _, err := s.RangeGet(ctx, []string{"a", "b", "c", "d", "e"}); !store.IsInvalidKey(err) {
		t.Errorf("expected InvalidKey, got %v", err)
	}
}

func TestPrefixFilter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "segment0 = ?"},
		{2, "segment0 = ? AND segment1 = ?"},
		{4, "segment0 = ? AND segment1 = ? AND segment2 = ? AND segment3 = ?"},
	}

	for _, tt := range tests {
		if got := prefixFilter(tt.n); got != tt.want {
			t.Errorf("prefixFilter(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
