package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/hrishi045/segstore/api/common"
	"github.com/hrishi045/segstore/lib/keycodec"
	"github.com/hrishi045/segstore/lib/store"
)

// New creates a segmented store backed by a remote storage server.
// The returned value implements store.ISegmentedStore, so callers can
// switch between an embedded backend and a remote one without code
// changes.
func New(config common.ClientConfig) (store.ISegmentedStore, error) {
	if len(config.Endpoints) == 0 {
		return nil, fmt.Errorf("at least one endpoint is required")
	}

	// Parse each server URL
	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, endpoint := range config.Endpoints {
		parsedURL, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint %s: %w", endpoint, err)
		}
		parsedURLs[i] = parsedURL
	}

	retries := config.RetryCount
	if retries < 1 {
		retries = 1
	}

	return &remoteStore{
		serverURLs: parsedURLs,
		retryCount: retries,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     time.Duration(config.TimeoutSecond) * time.Second,
			},
			Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		},
	}, nil
}

type remoteStore struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (c *remoteStore) Put(ctx context.Context, segments []string, value []byte) error {
	if err := keycodec.Validate(segments); err != nil {
		return store.NewError(store.RetCInvalidKey, err.Error())
	}
	_, err := c.send(ctx, http.MethodPut, "/storage/item", segments, value)
	return err
}

func (c *remoteStore) Get(ctx context.Context, segments []string) ([]byte, error) {
	if err := keycodec.Validate(segments); err != nil {
		return nil, store.NewError(store.RetCInvalidKey, err.Error())
	}
	return c.send(ctx, http.MethodGet, "/storage/item", segments, nil)
}

func (c *remoteStore) Delete(ctx context.Context, segments []string) error {
	if err := keycodec.Validate(segments); err != nil {
		return store.NewError(store.RetCInvalidKey, err.Error())
	}
	_, err := c.send(ctx, http.MethodDelete, "/storage/item", segments, nil)
	return err
}

func (c *remoteStore) RangeGet(ctx context.Context, prefix []string) ([]store.Record, error) {
	if err := keycodec.Validate(prefix); err != nil {
		return nil, store.NewError(store.RetCInvalidKey, err.Error())
	}

	body, err := c.send(ctx, http.MethodGet, "/storage/range", prefix, nil)
	if err != nil {
		return nil, err
	}

	var items []common.RangeItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, store.NewErrorf(store.RetCStorageUnavailable, "malformed range response: %v", err)
	}
	return common.Records(items), nil
}

func (c *remoteStore) RangeDelete(ctx context.Context, prefix []string) error {
	if err := keycodec.Validate(prefix); err != nil {
		return store.NewError(store.RetCInvalidKey, err.Error())
	}
	_, err := c.send(ctx, http.MethodDelete, "/storage/range", prefix, nil)
	return err
}

func (c *remoteStore) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// send performs one API call, retrying transport-level failures against
// round-robin selected endpoints. HTTP-level failures are mapped onto
// the store error taxonomy and never retried.
func (c *remoteStore) send(ctx context.Context, method, path string, key []string, body []byte) ([]byte, error) {
	var resp *http.Response
	var err error

	for attempt := 0; attempt < c.retryCount; attempt++ {
		// Select the next server via round-robin
		idx := atomic.AddUint32(&c.counter, 1) % uint32(len(c.serverURLs))
		target := c.requestURL(c.serverURLs[idx], path, key)

		// The request is rebuilt per attempt so the body reader is fresh.
		var req *http.Request
		req, err = http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
		if err != nil {
			return nil, store.NewErrorf(store.RetCStorageUnavailable, "failed to build request: %v", err)
		}

		resp, err = c.client.Do(req)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, store.NewErrorf(store.RetCStorageUnavailable, "request failed after %d attempts: %v", c.retryCount, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, store.NewErrorf(store.RetCStorageUnavailable, "failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp.StatusCode, payload)
	}
	return payload, nil
}

// requestURL builds the full target URL with repeated key parameters.
func (c *remoteStore) requestURL(server *url.URL, path string, key []string) string {
	query := url.Values{"key": key}
	return server.JoinPath(path).String() + "?" + query.Encode()
}

// responseError converts a non-200 response into a store error,
// preferring the detail message the server sent.
func responseError(statusCode int, body []byte) *store.Error {
	detail := fmt.Sprintf("http status %d", statusCode)
	var errResp common.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		detail = errResp.Detail
	}

	switch statusCode {
	case http.StatusBadRequest:
		return store.NewError(store.RetCInvalidKey, detail)
	case http.StatusNotFound:
		return store.NewError(store.RetCNotFound, detail)
	default:
		return store.NewError(store.RetCStorageUnavailable, detail)
	}
}
