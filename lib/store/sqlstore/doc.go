// Package sqlstore implements the durable segmented store on top of a
// single SQLite table (via the pure-Go modernc.org/sqlite driver).
//
// Encoded keys map onto four fixed TEXT columns whose composite primary
// key enforces key uniqueness; point upserts use INSERT .. ON CONFLICT.
// Every statement the store runs is prepared at open time, including the
// four per-prefix-length variants used by the range operations, so no
// SQL is ever assembled from request input. Writes commit before the
// call returns (WAL journal with synchronous=NORMAL); concurrency
// control is left entirely to SQLite.
package sqlstore
