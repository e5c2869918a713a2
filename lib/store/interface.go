package store

import (
	"context"
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Record represents one stored blob together with its logical key.
// Records handed out by a store are copies; mutating them does not
// affect the stored state.
type Record struct {
	Key   []string
	Value []byte
}

// StoreFactory is a function type that creates a new segmented store.
// This is used to abstract the creation of the backend from the code
// using it (server setup, shared test suite).
type StoreFactory func() (ISegmentedStore, error)

// ISegmentedStore is the generic interface for a durable mapping from
// hierarchical keys (1 to keycodec.MaxSegments string segments) to
// opaque byte blobs.
//
// All operations validate the segment-count bound and return an *Error
// with RetCInvalidKey when it is violated. Writes are committed before
// the call returns; a nil error means the change survives a crash.
// Implementations must be safe for concurrent use. The context is used
// only to bound the underlying backend call; a write cancelled by a
// deadline is not guaranteed to have been rolled back.
type ISegmentedStore interface {
	// Put inserts or replaces the value for the exact key. Concurrent
	// Puts to the same key race; the last write to commit wins.
	Put(ctx context.Context, segments []string, value []byte) error
	// Get returns the current value for the exact key. It returns an
	// *Error with RetCNotFound if no record matches.
	Get(ctx context.Context, segments []string) ([]byte, error)
	// Delete removes the record for the exact key. Deleting a key that
	// does not exist is not an error.
	Delete(ctx context.Context, segments []string) error
	// RangeGet returns every record whose key agrees with the prefix on
	// its leading segments. The result order is unspecified, and an
	// empty result is not an error.
	RangeGet(ctx context.Context, prefix []string) ([]Record, error)
	// RangeDelete removes every record matching the prefix. It succeeds
	// even if nothing matches.
	RangeDelete(ctx context.Context, prefix []string) error
	// Close releases the underlying storage handle. The store must not
	// be used afterwards.
	Close() error
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("SegmentedStoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new store error with a formatted message.
func NewErrorf(code RetCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// hasCode reports whether err is or wraps a store *Error with the code.
func hasCode(err error, code RetCode) bool {
	var storeErr *Error
	return errors.As(err, &storeErr) && storeErr.Code == code
}

// IsInvalidKey reports whether err signals a violated key bound.
func IsInvalidKey(err error) bool {
	return hasCode(err, RetCInvalidKey)
}

// IsNotFound reports whether err signals a missing record.
func IsNotFound(err error) bool {
	return hasCode(err, RetCNotFound)
}

// IsStorageUnavailable reports whether err signals a backend failure.
func IsStorageUnavailable(err error) bool {
	return hasCode(err, RetCStorageUnavailable)
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Operation executed successfully.
	RetCInvalidKey                        // 1: Key sequence empty or over the segment bound.
	RetCNotFound                          // 2: Exact-match read found no record.
	RetCStorageUnavailable                // 3: The durable backend rejected or failed the operation.
)

// String returns the string representation of a RetCode.
func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInvalidKey:
		return "InvalidKey"
	case RetCNotFound:
		return "NotFound"
	case RetCStorageUnavailable:
		return "StorageUnavailable"
	default:
		return "Unknown"
	}
}
