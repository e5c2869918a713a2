package memstore

import (
	"testing"

	"github.com/hrishi045/segstore/lib/store"
	storetesting "github.com/hrishi045/segstore/lib/store/testing"
)

func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "MemStore", func() (store.ISegmentedStore, error) {
		return New(), nil
	})
}

func Benchmark(b *testing.B) {
	storetesting.RunStoreBenchmarks(b, "MemStore", func() (store.ISegmentedStore, error) {
		return New(), nil
	})
}
