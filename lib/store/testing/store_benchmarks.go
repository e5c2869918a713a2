package testing

import (
	"context"
	"fmt"
	"testing"

	"github.com/hrishi045/segstore/lib/store"
)

// RunStoreBenchmarks runs a benchmark suite for an ISegmentedStore
// implementation.
func RunStoreBenchmarks(b *testing.B, name string, factory store.StoreFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Put", func(b *testing.B) {
			benchmarkPut(b, mustCreate(b, factory))
		})

		b.Run("PutExisting", func(b *testing.B) {
			benchmarkPutExisting(b, mustCreate(b, factory))
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, mustCreate(b, factory))
		})

		b.Run("RangeGet", func(b *testing.B) {
			benchmarkRangeGet(b, mustCreate(b, factory))
		})
	})
}

const benchKeySpread = 512

func benchKey(i int) []string {
	return []string{"bench", fmt.Sprintf("doc-%d", i%benchKeySpread), "snap"}
}

func benchmarkPut(b *testing.B, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()
	value := []byte("benchmark-value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Put(ctx, benchKey(i), value); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}
}

func benchmarkPutExisting(b *testing.B, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()
	value := []byte("benchmark-value")

	key := []string{"bench", "existing"}
	if err := s.Put(ctx, key, value); err != nil {
		b.Fatalf("Put failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Put(ctx, key, value); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}
}

func benchmarkGet(b *testing.B, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	for i := 0; i < benchKeySpread; i++ {
		if err := s.Put(ctx, benchKey(i), []byte("benchmark-value")); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Get(ctx, benchKey(i)); err != nil {
			b.Fatalf("Get failed: %v", err)
		}
	}
}

func benchmarkRangeGet(b *testing.B, s store.ISegmentedStore) {
	defer s.Close()
	ctx := context.Background()

	// 16 snapshots under one document prefix.
	for i := 0; i < 16; i++ {
		key := []string{"bench", "ranged", fmt.Sprintf("chunk-%d", i)}
		if err := s.Put(ctx, key, []byte("benchmark-value")); err != nil {
			b.Fatalf("Put failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.RangeGet(ctx, []string{"bench", "ranged"}); err != nil {
			b.Fatalf("RangeGet failed: %v", err)
		}
	}
}
