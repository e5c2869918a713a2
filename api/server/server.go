package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/hrishi045/segstore/api/common"
	"github.com/hrishi045/segstore/lib/store"
	"go.uber.org/zap"
)

// shutdownGrace bounds how long in-flight requests may run after a
// shutdown signal arrives.
const shutdownGrace = 10 * time.Second

// Server exposes a segmented store over HTTP. The storage handle is
// injected and owned by the server for its lifetime: it is used for
// every request and closed during shutdown.
type Server struct {
	config common.ServerConfig
	store  store.ISegmentedStore
	logger *zap.Logger
}

// New creates a new storage server.
//
// Usage:
//
//	s := server.New(config, sqlStore, logger)
//	if err := s.ListenAndServe(); err != nil {
//		panic(err)
//	}
func New(config common.ServerConfig, st store.ISegmentedStore, logger *zap.Logger) *Server {
	return &Server{
		config: config,
		store:  st,
		logger: logger.Named("api"),
	}
}

// Routes builds the request mux. Exposed separately from ListenAndServe
// so tests can drive the full handler stack without a listener.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("PUT /storage/item", s.instrumented("put", s.handleSaveItem))
	mux.HandleFunc("GET /storage/item", s.instrumented("get", s.handleLoadItem))
	mux.HandleFunc("DELETE /storage/item", s.instrumented("delete", s.handleRemoveItem))
	mux.HandleFunc("GET /storage/range", s.instrumented("range_get", s.handleLoadRange))
	mux.HandleFunc("DELETE /storage/range", s.instrumented("range_delete", s.handleRemoveRange))

	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	return mux
}

// ListenAndServe starts the HTTP server and blocks until it fails or a
// termination signal triggers a graceful shutdown. The injected store
// is closed as part of the shutdown sequence.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:    s.config.Endpoint,
		Handler: s.Routes(),
	}

	s.logger.Info("starting HTTP server", zap.String("endpoint", s.config.Endpoint))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		_ = s.store.Close()
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-stop:
		s.logger.Info("shutting down", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		err := srv.Shutdown(ctx)
		if closeErr := s.store.Close(); err == nil {
			err = closeErr
		}
		return err
	}
}

// --------------------------------------------------------------------------
// Middleware (logging, metrics, timeouts)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrumented wraps a handler with request counting, latency tracking,
// per-request deadlines, and debug logging.
func (s *Server) instrumented(op string, next http.HandlerFunc) http.HandlerFunc {
	requests := metrics.GetOrCreateCounter(fmt.Sprintf(`segstore_requests_total{op=%q}`, op))
	failures := metrics.GetOrCreateCounter(fmt.Sprintf(`segstore_request_failures_total{op=%q}`, op))
	duration := metrics.GetOrCreateSummary(fmt.Sprintf(`segstore_request_duration_seconds{op=%q}`, op))

	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requests.Inc()

		if s.config.TimeoutSecond > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.config.TimeoutSecond)*time.Second)
			defer cancel()
			r = r.WithContext(ctx)
		}

		// Create custom response writer to capture the status code
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration.UpdateDuration(start)
		if rw.statusCode >= http.StatusInternalServerError {
			failures.Inc()
		}

		s.logger.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.statusCode),
			zap.Duration("took", time.Since(start)),
		)
	}
}
