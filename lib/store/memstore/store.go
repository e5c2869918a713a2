package memstore

import (
	"context"
	"fmt"

	"github.com/hrishi045/segstore/lib/keycodec"
	"github.com/hrishi045/segstore/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
)

type entry struct {
	encoded keycodec.EncodedKey
	value   []byte
}

type storeImpl struct {
	items *xsync.MapOf[string, entry]
}

// New creates a new in-memory store instance.
// This store implementation offers no durability and is intended for
// development setups and tests.
func New() store.ISegmentedStore {
	return &storeImpl{
		items: xsync.NewMapOf[string, entry](),
	}
}

// mapKey flattens an encoded key into a collision-free map key. Segments
// are length-prefixed so that segment contents can never fake a slot
// boundary.
func mapKey(encoded keycodec.EncodedKey) string {
	var key string
	for _, segment := range encoded[:] {
		key += fmt.Sprintf("%d:%s", len(segment), segment)
	}
	return key
}

// clone copies a value so callers never share memory with the store.
func clone(value []byte) []byte {
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Put(_ context.Context, segments []string, value []byte) error {
	encoded, err := keycodec.Encode(segments)
	if err != nil {
		return store.NewError(store.RetCInvalidKey, err.Error())
	}

	s.items.Store(mapKey(encoded), entry{
		encoded: encoded,
		value:   clone(value),
	})
	return nil
}

func (s *storeImpl) Get(_ context.Context, segments []string) ([]byte, error) {
	encoded, err := keycodec.Encode(segments)
	if err != nil {
		return nil, store.NewError(store.RetCInvalidKey, err.Error())
	}

	item, ok := s.items.Load(mapKey(encoded))
	if !ok {
		return nil, store.NewError(store.RetCNotFound, "item not found")
	}
	return clone(item.value), nil
}

func (s *storeImpl) Delete(_ context.Context, segments []string) error {
	encoded, err := keycodec.Encode(segments)
	if err != nil {
		return store.NewError(store.RetCInvalidKey, err.Error())
	}

	s.items.Delete(mapKey(encoded))
	return nil
}

func (s *storeImpl) RangeGet(_ context.Context, prefix []string) ([]store.Record, error) {
	if err := keycodec.Validate(prefix); err != nil {
		return nil, store.NewError(store.RetCInvalidKey, err.Error())
	}

	var records []store.Record
	s.items.Range(func(_ string, item entry) bool {
		if keycodec.MatchesPrefix(item.encoded, prefix) {
			records = append(records, store.Record{
				Key:   keycodec.Decode(item.encoded),
				Value: clone(item.value),
			})
		}
		return true
	})
	return records, nil
}

func (s *storeImpl) RangeDelete(_ context.Context, prefix []string) error {
	if err := keycodec.Validate(prefix); err != nil {
		return store.NewError(store.RetCInvalidKey, err.Error())
	}

	s.items.Range(func(key string, item entry) bool {
		if keycodec.MatchesPrefix(item.encoded, prefix) {
			s.items.Delete(key)
		}
		return true
	})
	return nil
}

func (s *storeImpl) Close() error {
	s.items.Clear()
	return nil
}
