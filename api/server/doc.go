// Package server exposes a segmented store over HTTP.
//
// Point operations live under /storage/item and range operations under
// /storage/range; the hierarchical key travels as repeated "key" query
// parameters in both cases. Write operations answer {"status":"ok"},
// reads answer raw bytes (point) or a JSON list of key/base64-data
// pairs (range), and failures map the store's error taxonomy onto 400,
// 404, and 500 with an {"detail":...} body.
//
// The server owns the injected storage handle for its lifetime and
// closes it on graceful shutdown. Request handling is stateless and
// safe for any level of concurrency the backend tolerates. Prometheus
// metrics for every operation are served on /metrics.
package server
