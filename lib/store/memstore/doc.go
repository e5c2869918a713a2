// Package memstore implements the segmented store on a concurrent
// in-memory map. Range operations filter with the key codec's prefix
// matcher over a full iteration. Nothing is persisted; use sqlstore for
// durable storage.
package memstore
