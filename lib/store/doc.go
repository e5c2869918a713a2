// Package store provides the interface for a segmented key-value store:
// a durable mapping from hierarchical keys of 1 to 4 string segments to
// opaque byte blobs, with point operations addressing exactly one fully
// specified key and range operations addressing all keys sharing a
// prefix. It serves as an abstraction layer over the storage backends,
// adding key validation and standardized error reporting.
//
// The package focuses on:
//   - A unified interface (ISegmentedStore) across different backends
//   - Pluggable storage backend architecture through the StoreFactory pattern
//
// Key Components:
//
//   - ISegmentedStore Interface: The core abstraction defining point
//     (Put/Get/Delete) and range (RangeGet/RangeDelete) operations. All
//     implementations share this common interface, allowing applications
//     to switch between backends without code changes. The interface
//     methods return custom Error values that carry a typed return code.
//
//   - Error System: A structured error reporting mechanism using typed
//     error codes (InvalidKey, NotFound, StorageUnavailable) and
//     descriptive messages, plus errors.As-based helpers so callers can
//     branch on the condition rather than on message text.
//
//   - StoreFactory: A function type that abstracts the creation of
//     store instances, providing dependency injection with an explicit
//     open-once/close-at-shutdown lifecycle instead of ambient global
//     state.
//
// Implementations:
//
//	The package includes two implementations of the ISegmentedStore
//	interface:
//
//	- SQLite Store (sqlstore): The durable implementation backed by a
//	  single SQLite table whose composite primary key spans the four
//	  encoded key slots, enforcing key uniqueness at the storage layer.
//	  This is the implementation used in production deployments.
//	  Available in the "github.com/hrishi045/segstore/lib/store/sqlstore" package.
//
//	- Memory Store (memstore): An ephemeral implementation backed by a
//	  concurrent map. It offers no durability and is intended for
//	  development setups and tests.
//	  Available in the "github.com/hrishi045/segstore/lib/store/memstore" package.
package store
