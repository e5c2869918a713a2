package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hrishi045/segstore/api/common"
	"github.com/hrishi045/segstore/lib/store"
	"go.uber.org/zap"
)

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

// Keys arrive as repeated "key" query parameters; net/url preserves
// their order, which is what makes them a hierarchical key.

func (s *Server) handleSaveItem(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query()["key"]

	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, common.NewErrorResponse("failed to read request body"))
		return
	}

	if err := s.store.Put(r.Context(), key, data); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, common.NewStatusOK())
}

func (s *Server) handleLoadItem(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query()["key"]

	value, err := s.store.Get(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(value); err != nil {
		s.logger.Error("failed to write response", zap.Error(err))
	}
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query()["key"]

	if err := s.store.Delete(r.Context(), key); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, common.NewStatusOK())
}

func (s *Server) handleLoadRange(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query()["key"]

	records, err := s.store.RangeGet(r.Context(), prefix)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, common.NewRangeResponse(records))
}

func (s *Server) handleRemoveRange(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query()["key"]

	if err := s.store.RangeDelete(r.Context(), prefix); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, common.NewStatusOK())
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// writeError maps the store error taxonomy onto HTTP status codes:
// InvalidKey is the caller's fault (400), NotFound is a miss on an
// exact-match read (404), everything else is a backend failure (500).
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		switch storeErr.Code {
		case store.RetCInvalidKey:
			s.writeJSON(w, http.StatusBadRequest, common.NewErrorResponse(storeErr.Msg))
			return
		case store.RetCNotFound:
			s.writeJSON(w, http.StatusNotFound, common.NewErrorResponse(storeErr.Msg))
			return
		}
	}

	// Backend details go to the log, not to the client.
	s.logger.Error("storage backend failure", zap.Error(err))
	s.writeJSON(w, http.StatusInternalServerError, common.NewErrorResponse("storage backend unavailable"))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
