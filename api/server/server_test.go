package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/hrishi045/segstore/api/common"
	"github.com/hrishi045/segstore/lib/store/memstore"
	"go.uber.org/zap"
)

// newTestServer spins up the full handler stack over an in-memory store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	s := New(common.ServerConfig{
		Endpoint: "127.0.0.1:0",
		Backend:  common.BackendMemory,
		LogLevel: "error",
	}, memstore.New(), zap.NewNop())

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

// itemURL builds /storage/item or /storage/range with repeated key params.
func itemURL(base, path string, key ...string) string {
	query := url.Values{"key": key}
	return base + path + "?" + query.Encode()
}

func doRequest(t *testing.T, method, target string, body []byte) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	return resp
}

func expectStatus(t *testing.T, resp *http.Response, want int) []byte {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d (body: %s)", want, resp.StatusCode, body)
	}
	return body
}

func expectStatusOK(t *testing.T, resp *http.Response) {
	t.Helper()

	body := expectStatus(t, resp, http.StatusOK)
	var status common.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("failed to decode status response %s: %v", body, err)
	}
	if status.Status != "ok" {
		t.Errorf("expected status ok, got %q", status.Status)
	}
}

func TestItemLifecycle(t *testing.T) {
	ts := newTestServer(t)
	payload := []byte{0x01, 0x02}

	// Save
	resp := doRequest(t, http.MethodPut, itemURL(ts.URL, "/storage/item", "doc1", "snap"), payload)
	expectStatusOK(t, resp)

	// Load returns the raw bytes
	resp = doRequest(t, http.MethodGet, itemURL(ts.URL, "/storage/item", "doc1", "snap"), nil)
	body := expectStatus(t, resp, http.StatusOK)
	if !bytes.Equal(body, payload) {
		t.Errorf("expected body %v, got %v", payload, body)
	}

	// Remove
	resp = doRequest(t, http.MethodDelete, itemURL(ts.URL, "/storage/item", "doc1", "snap"), nil)
	expectStatusOK(t, resp)

	// Load after remove
	resp = doRequest(t, http.MethodGet, itemURL(ts.URL, "/storage/item", "doc1", "snap"), nil)
	expectStatus(t, resp, http.StatusNotFound)

	// Remove is idempotent
	resp = doRequest(t, http.MethodDelete, itemURL(ts.URL, "/storage/item", "doc1", "snap"), nil)
	expectStatusOK(t, resp)
}

func TestKeyValidation(t *testing.T) {
	ts := newTestServer(t)
	tooLong := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name   string
		method string
		path   string
		key    []string
		body   []byte
	}{
		{"SaveWithoutKey", http.MethodPut, "/storage/item", nil, []byte("x")},
		{"SaveTooManySegments", http.MethodPut, "/storage/item", tooLong, []byte("x")},
		{"LoadWithoutKey", http.MethodGet, "/storage/item", nil, nil},
		{"RemoveWithoutKey", http.MethodDelete, "/storage/item", nil, nil},
		{"RangeWithoutKey", http.MethodGet, "/storage/range", nil, nil},
		{"RangeTooManySegments", http.MethodGet, "/storage/range", tooLong, nil},
		{"RangeRemoveWithoutKey", http.MethodDelete, "/storage/range", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, tt.method, itemURL(ts.URL, tt.path, tt.key...), tt.body)
			body := expectStatus(t, resp, http.StatusBadRequest)

			var errResp common.ErrorResponse
			if err := json.Unmarshal(body, &errResp); err != nil {
				t.Fatalf("failed to decode error response %s: %v", body, err)
			}
			if errResp.Detail == "" {
				t.Error("expected a non-empty error detail")
			}
		})
	}
}

func TestRangeOperations(t *testing.T) {
	ts := newTestServer(t)

	seed := map[string][]string{
		"1": {"a", "b"},
		"2": {"a", "c"},
		"3": {"x"},
	}
	for value, key := range seed {
		resp := doRequest(t, http.MethodPut, itemURL(ts.URL, "/storage/item", key...), []byte(value))
		expectStatusOK(t, resp)
	}

	// Range over "a" returns both nested records with base64 data.
	resp := doRequest(t, http.MethodGet, itemURL(ts.URL, "/storage/range", "a"), nil)
	body := expectStatus(t, resp, http.StatusOK)

	var items []common.RangeItem
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("failed to decode range response %s: %v", body, err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d: %s", len(items), body)
	}

	found := map[string]string{}
	for _, item := range items {
		found[strings.Join(item.Key, "/")] = string(item.Data)
	}
	want := map[string]string{"a/b": "1", "a/c": "2"}
	if !reflect.DeepEqual(found, want) {
		t.Errorf("expected range result %v, got %v", want, found)
	}

	// An empty range is 200 with an empty JSON list, not an error.
	resp = doRequest(t, http.MethodGet, itemURL(ts.URL, "/storage/range", "missing"), nil)
	body = expectStatus(t, resp, http.StatusOK)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("expected empty list body, got %s", body)
	}

	// Range delete removes exactly the prefix.
	resp = doRequest(t, http.MethodDelete, itemURL(ts.URL, "/storage/range", "a"), nil)
	expectStatusOK(t, resp)

	resp = doRequest(t, http.MethodGet, itemURL(ts.URL, "/storage/range", "a"), nil)
	body = expectStatus(t, resp, http.StatusOK)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("expected empty list after range delete, got %s", body)
	}

	resp = doRequest(t, http.MethodGet, itemURL(ts.URL, "/storage/item", "x"), nil)
	body = expectStatus(t, resp, http.StatusOK)
	if string(body) != "3" {
		t.Errorf("record outside deleted range was damaged: %s", body)
	}
}

func TestEmptyBodyUpsert(t *testing.T) {
	ts := newTestServer(t)

	resp := doRequest(t, http.MethodPut, itemURL(ts.URL, "/storage/item", "empty"), []byte{})
	expectStatusOK(t, resp)

	resp = doRequest(t, http.MethodGet, itemURL(ts.URL, "/storage/item", "empty"), nil)
	body := expectStatus(t, resp, http.StatusOK)
	if len(body) != 0 {
		t.Errorf("expected empty body, got %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	// Generate one request so the op counters exist.
	resp := doRequest(t, http.MethodGet, itemURL(ts.URL, "/storage/range", "warmup"), nil)
	expectStatus(t, resp, http.StatusOK)

	resp = doRequest(t, http.MethodGet, ts.URL+"/metrics", nil)
	body := expectStatus(t, resp, http.StatusOK)
	if !strings.Contains(string(body), "segstore_requests_total") {
		t.Errorf("expected request counters in metrics output, got: %.200s", body)
	}
}
