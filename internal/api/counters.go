package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var counterKinds = map[string]struct{}{
	"likes": {},
	"views": {},
}

func (s *Server) getCounter(w http.ResponseWriter, r *http.Request) {
	kind, slug, ok := counterParams(w, r)
	if !ok {
		return
	}
	count, err := s.counters.Counter(kind, slug)
	if err != nil {
		s.logger.Error("read counter failed", zap.String("kind", kind), zap.String("slug", slug), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "read counter")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "slug": slug, "count": count})
}

func (s *Server) incrementCounter(w http.ResponseWriter, r *http.Request) {
	kind, slug, ok := counterParams(w, r)
	if !ok {
		return
	}
	count, err := s.counters.IncrementCounter(kind, slug)
	if err != nil {
		s.logger.Error("increment counter failed", zap.String("kind", kind), zap.String("slug", slug), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "increment counter")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "slug": slug, "count": count})
}

func counterParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	kind := chi.URLParam(r, "kind")
	slug := chi.URLParam(r, "slug")
	if _, ok := counterKinds[kind]; !ok {
		writeError(w, http.StatusBadRequest, "unknown counter kind")
		return "", "", false
	}
	if slug == "" {
		writeError(w, http.StatusBadRequest, "missing slug")
		return "", "", false
	}
	return kind, slug, true
}
