package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SouravInsights/gardend/internal/garden"
	"github.com/SouravInsights/gardend/internal/storage/postgres"
)

type draftRequest struct {
	LinkID int64 `json:"link_id" validate:"required"`
}

// createNewsletterDraft turns one curated link into a provider draft email
// and records the draft state on the link row.
func (s *Server) createNewsletterDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.validate.ValidateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	link, err := s.curated.Get(r.Context(), req.LinkID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}
		s.logger.Error("load link for draft failed", zap.Int64("id", req.LinkID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load link")
		return
	}

	emailID, err := s.newsletter.CreateDraft(r.Context(), link.Title, draftBody(link))
	if err != nil {
		s.logger.Error("create newsletter draft failed", zap.Int64("id", req.LinkID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "newsletter provider error")
		return
	}
	if err := s.curated.SetNewsletter(r.Context(), link.ID, "draft", emailID); err != nil {
		s.logger.Error("record draft state failed", zap.Int64("id", link.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "record draft state")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "email_id": emailID})
}

type scheduleRequest struct {
	LinkID    int64  `json:"link_id" validate:"required"`
	PublishAt string `json:"publish_at" validate:"required"`
}

// scheduleNewsletter moves an existing draft to scheduled with a future
// publish timestamp.
func (s *Server) scheduleNewsletter(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.validate.ValidateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	publishAt, err := time.Parse(time.RFC3339, req.PublishAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "publish_at must be RFC3339")
		return
	}
	if !publishAt.After(s.clock.Now()) {
		writeError(w, http.StatusBadRequest, "publish_at must be in the future")
		return
	}

	link, err := s.curated.Get(r.Context(), req.LinkID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}
		s.logger.Error("load link for schedule failed", zap.Int64("id", req.LinkID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "load link")
		return
	}
	if link.ButtondownEmailID == nil || *link.ButtondownEmailID == "" {
		writeError(w, http.StatusBadRequest, "link has no newsletter draft")
		return
	}

	if err := s.newsletter.Schedule(r.Context(), *link.ButtondownEmailID, publishAt); err != nil {
		s.logger.Error("schedule newsletter failed", zap.Int64("id", link.ID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "newsletter provider error")
		return
	}
	if err := s.curated.SetNewsletter(r.Context(), link.ID, "scheduled", *link.ButtondownEmailID); err != nil {
		s.logger.Error("record schedule state failed", zap.Int64("id", link.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "record schedule state")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "publish_at": publishAt.Format(time.RFC3339)})
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := s.validate.ValidateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.newsletter.Subscribe(r.Context(), req.Email); err != nil {
		s.logger.Error("subscribe failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "newsletter provider error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func draftBody(link garden.CuratedLink) string {
	body := fmt.Sprintf("### [%s](%s)", link.Title, link.URL)
	if link.Description != nil && *link.Description != "" {
		body += "\n\n" + *link.Description
	}
	if link.Notes != nil && *link.Notes != "" {
		body += "\n\n" + *link.Notes
	}
	if link.CreatorTwitter != nil && *link.CreatorTwitter != "" {
		body += fmt.Sprintf("\n\nby [@%s](https://twitter.com/%s)", *link.CreatorTwitter, *link.CreatorTwitter)
	}
	return body
}
