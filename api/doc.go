// Package api contains the HTTP surface of the segmented store: the
// server exposing /storage/item and /storage/range, the client that
// implements the store interface against a remote server, and the
// wire-level types both sides share.
package api
