package testing

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/hrishi045/segstore/lib/store"
)

// RunStoreTests runs a comprehensive test suite for an ISegmentedStore
// implementation. Each subtest receives a fresh store from the factory.
func RunStoreTests(t *testing.T, name string, factory store.StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("RoundTrip", func(t *testing.T) {
			testRoundTrip(t, mustCreate(t, factory))
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, mustCreate(t, factory))
		})

		t.Run("EmptyValue", func(t *testing.T) {
			testEmptyValue(t, mustCreate(t, factory))
		})

		t.Run("IdempotentDelete", func(t *testing.T) {
			testIdempotentDelete(t, mustCreate(t, factory))
		})

		t.Run("PrefixScoping", func(t *testing.T) {
			testPrefixScoping(t, mustCreate(t, factory))
		})

		t.Run("BoundEnforcement", func(t *testing.T) {
			testBoundEnforcement(t, mustCreate(t, factory))
		})

		t.Run("RangeDeleteCompleteness", func(t *testing.T) {
			testRangeDeleteCompleteness(t, mustCreate(t, factory))
		})

		t.Run("EmbeddedEmptySegment", func(t *testing.T) {
			testEmbeddedEmptySegment(t, mustCreate(t, factory))
		})

		t.Run("ValueIsolation", func(t *testing.T) {
			testValueIsolation(t, mustCreate(t, factory))
		})

		t.Run("DocumentScenario", func(t *testing.T) {
			testDocumentScenario(t, mustCreate(t, factory))
		})

		t.Run("ConcurrentPuts", func(t *testing.T) {
			testConcurrentPuts(t, mustCreate(t, factory))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustCreate(t testing.TB, factory store.StoreFactory) store.ISegmentedStore {
	t.Helper()
	s, err := factory()
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func mustPut(t testing.TB, s store.ISegmentedStore, key []string, value []byte) {
	t.Helper()
	if err := s.Put(context.Background(), key, value); err != nil {
		t.Fatalf("Put(%v) failed: %v", key, err)
	}
}

// sortRecords orders records by their joined key so result sets can be
// compared even though range order is unspecified.
func sortRecords(records []store.Record) {
	sort.Slice(records, func(i, j int) bool {
		return strings.Join(records[i].Key, "\x00") < strings.Join(records[j].Key, "\x00")
	})
}

// expectKeys asserts that the range result contains exactly the given
// logical keys, in any order.
func expectKeys(t testing.TB, records []store.Record, keys ...[]string) {
	t.Helper()

	if len(records) != len(keys) {
		t.Fatalf("expected %d records, got %d (%v)", len(keys), len(records), records)
	}

	sortRecords(records)
	expected := make([]store.Record, len(keys))
	for i, k := range keys {
		expected[i] = store.Record{Key: k}
	}
	sortRecords(expected)

	for i := range records {
		if strings.Join(records[i].Key, "\x00") != strings.Join(expected[i].Key, "\x00") {
			t.Errorf("record %d: expected key %v, got %v", i, expected[i].Key, records[i].Key)
		}
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testRoundTrip(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	keys := [][]string{
		{"a"},
		{"doc", "abc123"},
		{"doc", "abc123", "snapshot"},
		{"w", "x", "y", "z"},
	}

	for i, key := range keys {
		value := []byte(fmt.Sprintf("value-%d", i))
		mustPut(t, s, key, value)

		result, err := s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%v) failed: %v", key, err)
		}
		if !bytes.Equal(result, value) {
			t.Errorf("Get(%v) = %q, want %q", key, result, value)
		}
	}

	// Binary payloads must survive unchanged.
	binary := []byte{0x00, 0x01, 0xff, 0xfe, 0x00}
	mustPut(t, s, []string{"bin"}, binary)
	result, err := s.Get(ctx, []string{"bin"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(result, binary) {
		t.Errorf("binary value corrupted: got %v, want %v", result, binary)
	}
}

func testOverwrite(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	key := []string{"doc", "session"}
	mustPut(t, s, key, []byte("first"))
	mustPut(t, s, key, []byte("second"))

	result, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(result, []byte("second")) {
		t.Errorf("expected overwritten value %q, got %q", "second", result)
	}

	// An overwrite must not create a second record.
	records, err := s.RangeGet(ctx, []string{"doc"})
	if err != nil {
		t.Fatalf("RangeGet failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected exactly one record after overwrite, got %d", len(records))
	}
}

func testEmptyValue(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	key := []string{"empty"}
	for _, value := range [][]byte{{}, nil} {
		mustPut(t, s, key, value)

		result, err := s.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get failed after Put(%v): %v", value, err)
		}
		if len(result) != 0 {
			t.Errorf("expected empty value, got %v", result)
		}
	}
}

func testIdempotentDelete(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	key := []string{"never", "existed"}
	for i := 0; i < 3; i++ {
		if err := s.Delete(ctx, key); err != nil {
			t.Errorf("Delete #%d of a non-existent key failed: %v", i+1, err)
		}
	}

	mustPut(t, s, key, []byte("x"))
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := s.Get(ctx, key); !store.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("repeated Delete failed: %v", err)
	}
}

func testPrefixScoping(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	mustPut(t, s, []string{"a", "b"}, []byte("1"))
	mustPut(t, s, []string{"a", "c"}, []byte("2"))
	mustPut(t, s, []string{"x"}, []byte("3"))

	records, err := s.RangeGet(ctx, []string{"a"})
	if err != nil {
		t.Fatalf("RangeGet failed: %v", err)
	}
	expectKeys(t, records, []string{"a", "b"}, []string{"a", "c"})

	records, err = s.RangeGet(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("RangeGet failed: %v", err)
	}
	expectKeys(t, records, []string{"a", "b"})

	// Exact equality per slot, not substring matching.
	records, err = s.RangeGet(ctx, []string{"a", "b-longer"})
	if err != nil {
		t.Fatalf("RangeGet failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no matches for unrelated prefix, got %v", records)
	}

	records, err = s.RangeGet(ctx, []string{"nothing", "here"})
	if err != nil {
		t.Fatalf("RangeGet on empty prefix space failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty result, got %v", records)
	}
}

func testBoundEnforcement(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	tooLong := []string{"a", "b", "c", "d", "e"}

	if err := s.Put(ctx, nil, []byte("x")); !store.IsInvalidKey(err) {
		t.Errorf("Put with empty key: expected InvalidKey, got %v", err)
	}
	if err := s.Put(ctx, tooLong, []byte("x")); !store.IsInvalidKey(err) {
		t.Errorf("Put with 5 segments: expected InvalidKey, got %v", err)
	}
	if _, err := s.Get(ctx, nil); !store.IsInvalidKey(err) {
		t.Errorf("Get with empty key: expected InvalidKey, got %v", err)
	}
	if _, err := s.Get(ctx, tooLong); !store.IsInvalidKey(err) {
		t.Errorf("Get with 5 segments: expected InvalidKey, got %v", err)
	}
	if err := s.Delete(ctx, nil); !store.IsInvalidKey(err) {
		t.Errorf("Delete with empty key: expected InvalidKey, got %v", err)
	}
	if _, err := s.RangeGet(ctx, nil); !store.IsInvalidKey(err) {
		t.Errorf("RangeGet with empty prefix: expected InvalidKey, got %v", err)
	}
	if _, err := s.RangeGet(ctx, tooLong); !store.IsInvalidKey(err) {
		t.Errorf("RangeGet with 5 segments: expected InvalidKey, got %v", err)
	}
	if err := s.RangeDelete(ctx, nil); !store.IsInvalidKey(err) {
		t.Errorf("RangeDelete with empty prefix: expected InvalidKey, got %v", err)
	}
	if err := s.RangeDelete(ctx, tooLong); !store.IsInvalidKey(err) {
		t.Errorf("RangeDelete with 5 segments: expected InvalidKey, got %v", err)
	}
}

func testRangeDeleteCompleteness(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	mustPut(t, s, []string{"a", "b"}, []byte("1"))
	mustPut(t, s, []string{"a", "c"}, []byte("2"))
	mustPut(t, s, []string{"x"}, []byte("3"))

	if err := s.RangeDelete(ctx, []string{"a"}); err != nil {
		t.Fatalf("RangeDelete failed: %v", err)
	}

	records, err := s.RangeGet(ctx, []string{"a"})
	if err != nil {
		t.Fatalf("RangeGet failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records under deleted prefix, got %v", records)
	}

	// Records outside the prefix are unaffected.
	value, err := s.Get(ctx, []string{"x"})
	if err != nil {
		t.Fatalf("Get of unrelated key failed: %v", err)
	}
	if !bytes.Equal(value, []byte("3")) {
		t.Errorf("unrelated record damaged by range delete: got %q", value)
	}

	// Deleting an already empty range succeeds.
	if err := s.RangeDelete(ctx, []string{"a"}); err != nil {
		t.Errorf("RangeDelete of empty range failed: %v", err)
	}
}

func testEmbeddedEmptySegment(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	// An empty segment in a non-trailing position is a distinct key.
	mustPut(t, s, []string{"a", "", "b"}, []byte("embedded"))
	mustPut(t, s, []string{"a"}, []byte("short"))

	value, err := s.Get(ctx, []string{"a", "", "b"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(value, []byte("embedded")) {
		t.Errorf("expected %q, got %q", "embedded", value)
	}

	value, err = s.Get(ctx, []string{"a"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(value, []byte("short")) {
		t.Errorf("expected %q, got %q", "short", value)
	}

	records, err := s.RangeGet(ctx, []string{"a"})
	if err != nil {
		t.Fatalf("RangeGet failed: %v", err)
	}
	expectKeys(t, records, []string{"a", "", "b"}, []string{"a"})
}

func testValueIsolation(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	key := []string{"isolated"}
	original := []byte("pristine")
	mustPut(t, s, key, original)

	// Mutating the slice passed to Put must not affect the store.
	original[0] = 'X'

	value, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(value, []byte("pristine")) {
		t.Errorf("stored value shares memory with caller: got %q", value)
	}

	// Mutating a returned value must not affect later reads.
	value[0] = 'Y'
	again, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(again, []byte("pristine")) {
		t.Errorf("returned value shares memory with store: got %q", again)
	}
}

// testDocumentScenario walks through the lifecycle of a document
// snapshot the way the sync service uses the store.
func testDocumentScenario(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	key := []string{"doc1", "snap"}
	payload := []byte{0x01, 0x02}

	mustPut(t, s, key, payload)

	value, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(value, payload) {
		t.Errorf("Get returned %v, want %v", value, payload)
	}

	records, err := s.RangeGet(ctx, []string{"doc1"})
	if err != nil {
		t.Fatalf("RangeGet failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if strings.Join(records[0].Key, "/") != "doc1/snap" || !bytes.Equal(records[0].Value, payload) {
		t.Errorf("unexpected range record: %+v", records[0])
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := s.Get(ctx, key); !store.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
}

func testConcurrentPuts(t *testing.T, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				key := []string{"concurrent", fmt.Sprintf("w%d", w), fmt.Sprintf("k%d", i)}
				if err := s.Put(ctx, key, []byte(fmt.Sprintf("%d-%d", w, i))); err != nil {
					t.Errorf("concurrent Put(%v) failed: %v", key, err)
				}
			}
		}(w)
	}
	wg.Wait()

	records, err := s.RangeGet(ctx, []string{"concurrent"})
	if err != nil {
		t.Fatalf("RangeGet failed: %v", err)
	}
	if len(records) != writers*perWriter {
		t.Errorf("expected %d records, got %d", writers*perWriter, len(records))
	}
}
