// Package client implements the ISegmentedStore interface against a
// remote storage server, so the read/write path of an application looks
// the same whether the store is embedded or reached over HTTP. Requests
// are spread over the configured endpoints round-robin and retried on
// transport failures; HTTP error responses are translated back into the
// store's typed errors.
package client
