// Package testing provides a shared test and benchmark suite for
// ISegmentedStore implementations. Every backend registers the suite
// against its own factory so all implementations are held to the same
// semantics.
package testing
