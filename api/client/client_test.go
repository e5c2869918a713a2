package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/hrishi045/segstore/api/common"
	"github.com/hrishi045/segstore/api/server"
	"github.com/hrishi045/segstore/lib/store"
	"github.com/hrishi045/segstore/lib/store/memstore"
	storetesting "github.com/hrishi045/segstore/lib/store/testing"
	"go.uber.org/zap"
)

// The remote store is held to the same semantics as the embedded
// backends: the shared suite runs against a client talking to a real
// server over the loopback interface.
func Test(t *testing.T) {
	storetesting.RunStoreTests(t, "RemoteStore", func() (store.ISegmentedStore, error) {
		s := server.New(common.ServerConfig{
			Endpoint: "127.0.0.1:0",
			Backend:  common.BackendMemory,
			LogLevel: "error",
		}, memstore.New(), zap.NewNop())

		ts := httptest.NewServer(s.Routes())
		t.Cleanup(ts.Close)

		return New(common.ClientConfig{
			Endpoints:     []string{ts.URL},
			TimeoutSecond: 5,
			RetryCount:    3,
		})
	})
}

// TestEndpointFailover verifies that a dead endpoint is skipped by the
// retry loop as long as a healthy one remains.
func TestEndpointFailover(t *testing.T) {
	s := server.New(common.ServerConfig{
		Endpoint: "127.0.0.1:0",
		Backend:  common.BackendMemory,
		LogLevel: "error",
	}, memstore.New(), zap.NewNop())

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)

	c, err := New(common.ClientConfig{
		// The first endpoint refuses connections.
		Endpoints:     []string{"http://127.0.0.1:1", ts.URL},
		TimeoutSecond: 5,
		RetryCount:    4,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := []string{"doc", "snap"}

	if err := c.Put(ctx, key, []byte("payload")); err != nil {
		t.Fatalf("Put with failover failed: %v", err)
	}
	if _, err := c.Get(ctx, key); err != nil {
		t.Fatalf("Get with failover failed: %v", err)
	}
}

func TestNoEndpoints(t *testing.T) {
	if _, err := New(common.ClientConfig{}); err == nil {
		t.Error("expected an error for a client without endpoints")
	}
}
