// Package common provides core data structures and utilities shared
// across the HTTP layer of the segmented store. It defines the wire
// envelopes, configuration structures, and logger setup used by both
// the server and the client.
//
// The package focuses on:
//   - Wire envelope definitions for the /storage API (status, error,
//     and range-item bodies)
//   - Configuration structures for the server and client components
//   - Process-wide logger construction on top of zap
//
// Key Components:
//
//   - StatusResponse / ErrorResponse / RangeItem: The JSON bodies the
//     HTTP API speaks. Range item data is raw bytes and travels as
//     base64, matching the service this store was extracted from.
//
//   - ServerConfig: Configuration for the storage server, covering the
//     listen endpoint, the storage backend selection, per-request
//     timeouts, and logging.
//
//   - ClientConfig: Configuration for client components, controlling
//     endpoints, timeouts, and retry behavior.
package common
