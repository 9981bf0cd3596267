package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/SouravInsights/gardend/internal/garden"
	"github.com/SouravInsights/gardend/internal/storage/postgres"
)

type linksResponse struct {
	Links []garden.EnrichedLink `json:"links"`
	Count int                   `json:"count"`
}

// getLinks renders the merged link-garden view: fresh messages from the chat
// platform joined against the curated set by normalized URL. The rendered
// payload is cached until the TTL lapses or the revalidation endpoint fires.
func (s *Server) getLinks(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path + "?" + r.URL.RawQuery
	now := s.clock.Now()
	if body, ok := s.cache.get(key, now); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	channelFilter := r.URL.Query().Get("channel")
	channels := s.source.ListChannels(r.Context())

	var messages []garden.RawMessage
	for _, ch := range channels {
		if channelFilter != "" && ch.Name != channelFilter {
			continue
		}
		messages = append(messages, s.source.ListMessages(r.Context(), ch.ID)...)
	}
	extracted := garden.ExtractLinks(messages)

	// A failing curated read degrades to an un-enriched list; the reader
	// still sees links.
	curated, err := s.curated.List(r.Context())
	if err != nil {
		s.logger.Error("list curated links failed", zap.Error(err))
		curated = nil
	}

	resp := linksResponse{
		Links: garden.MergeWithCuration(extracted, curated),
		Count: len(extracted),
	}
	body, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode links")
		return
	}
	s.cache.put(key, body, now)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type createLinkRequest struct {
	Title          string `json:"title" validate:"required"`
	URL            string `json:"url" validate:"required,url"`
	Category       string `json:"category" validate:"required"`
	Description    string `json:"description"`
	Notes          string `json:"notes"`
	CreatorTwitter string `json:"creator_twitter"`
}

func (s *Server) createLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.validate.ValidateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	link := garden.CuratedLink{
		Title:          req.Title,
		URL:            req.URL,
		Category:       req.Category,
		Description:    optional(req.Description),
		Notes:          optional(req.Notes),
		CreatorTwitter: optional(req.CreatorTwitter),
	}
	created, err := s.curated.Create(r.Context(), link)
	if err != nil {
		if errors.Is(err, postgres.ErrDuplicateURL) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.logger.Error("create curated link failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "create curated link")
		return
	}
	s.cache.invalidate()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "link": created})
}

type updateLinkRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Category       *string `json:"category"`
	Notes          *string `json:"notes"`
	CreatorTwitter *string `json:"creator_twitter"`
}

func (s *Server) updateLink(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid link id")
		return
	}
	var req updateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := s.curated.Update(r.Context(), id, garden.CuratedLinkUpdate{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Notes:          req.Notes,
		CreatorTwitter: req.CreatorTwitter,
	})
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}
		s.logger.Error("update curated link failed", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "update curated link")
		return
	}
	s.cache.invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "link": updated})
}

func (s *Server) incrementClicks(w http.ResponseWriter, r *http.Request) {
	id, err := linkID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid link id")
		return
	}
	if err := s.curated.IncrementClicks(r.Context(), id); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}
		s.logger.Error("increment clicks failed", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "increment clicks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) getBooks(w http.ResponseWriter, r *http.Request) {
	tracked := s.books.TrackedBooks(r.Context())
	catalog := s.books.Catalog(r.Context())
	matched := garden.MatchBooks(tracked, catalog)
	writeJSON(w, http.StatusOK, map[string]any{"books": matched, "count": len(matched)})
}

func linkID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
