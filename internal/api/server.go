// Package api exposes the HTTP interface for the garden service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SouravInsights/gardend/internal/clock"
	"github.com/SouravInsights/gardend/internal/config"
	"github.com/SouravInsights/gardend/internal/garden"
	"github.com/SouravInsights/gardend/internal/telemetry"
	"github.com/SouravInsights/gardend/internal/validator"
)

// CurationStore is the persisted curated-link set.
type CurationStore interface {
	Create(ctx context.Context, link garden.CuratedLink) (garden.CuratedLink, error)
	Get(ctx context.Context, id int64) (garden.CuratedLink, error)
	Update(ctx context.Context, id int64, upd garden.CuratedLinkUpdate) (garden.CuratedLink, error)
	List(ctx context.Context) ([]garden.CuratedLink, error)
	IncrementClicks(ctx context.Context, id int64) error
	SetNewsletter(ctx context.Context, id int64, status, emailID string) error
}

// LinkSource supplies raw link material; both methods fail open to empty
// lists so content pages degrade rather than error.
type LinkSource interface {
	ListChannels(ctx context.Context) []garden.Channel
	ListMessages(ctx context.Context, channelID string) []garden.RawMessage
}

// CounterStore tracks page likes/views.
type CounterStore interface {
	IncrementCounter(kind, slug string) (int64, error)
	Counter(kind, slug string) (int64, error)
}

// BookSource supplies the reading tracker and highlights catalog, failing
// open like LinkSource.
type BookSource interface {
	TrackedBooks(ctx context.Context) []garden.TrackedBook
	Catalog(ctx context.Context) []garden.CatalogBook
}

// Newsletter is the newsletter provider.
type Newsletter interface {
	CreateDraft(ctx context.Context, subject, body string) (string, error)
	Schedule(ctx context.Context, emailID string, publishAt time.Time) error
	Subscribe(ctx context.Context, email string) error
}

const linksCacheTTL = time.Minute

// Server wires HTTP handlers to the stores and upstream clients.
type Server struct {
	router     chi.Router
	curated    CurationStore
	source     LinkSource
	counters   CounterStore
	books      BookSource
	newsletter Newsletter
	clock      clock.Clock
	cfg        config.Config
	validate   *validator.Validator
	cache      *responseCache
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	curated CurationStore,
	source LinkSource,
	counters CounterStore,
	books BookSource,
	newsletter Newsletter,
	clk clock.Clock,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		curated:    curated,
		source:     source,
		counters:   counters,
		books:      books,
		newsletter: newsletter,
		clock:      clk,
		cfg:        cfg,
		validate:   validator.New(),
		cache:      newResponseCache(linksCacheTTL),
		logger:     logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(telemetry.Middleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", telemetry.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/links", s.getLinks)
		r.Post("/links/{id}/clicks", s.incrementClicks)
		r.Get("/counters/{kind}/{slug}", s.getCounter)
		r.Post("/counters/{kind}/{slug}/increment", s.incrementCounter)
		r.Get("/books", s.getBooks)
		r.Post("/subscribe", s.subscribe)
		r.Post("/revalidate", s.revalidatePage)

		r.Group(func(r chi.Router) {
			r.Use(bearerAuthMiddleware(s.cfg.Auth.AdminToken))
			r.Post("/links", s.createLink)
			r.Patch("/links/{id}", s.updateLink)
			r.Post("/newsletter/draft", s.createNewsletterDraft)
			r.Post("/newsletter/schedule", s.scheduleNewsletter)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type revalidateRequest struct {
	Secret string `json:"secret"`
	Path   string `json:"path"`
}

// revalidatePage drops the cached links payload when the shared secret
// matches. The change detector is the expected caller.
func (s *Server) revalidatePage(w http.ResponseWriter, r *http.Request) {
	var req revalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if s.cfg.Auth.RevalidateSecret == "" || req.Secret != s.cfg.Auth.RevalidateSecret {
		writeError(w, http.StatusUnauthorized, "invalid secret")
		return
	}
	path := req.Path
	if path == "" {
		path = s.cfg.Revalidate.Path
	}
	s.cache.invalidate()
	s.logger.Info("page revalidated", zap.String("path", path))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "revalidated": path})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

// bearerAuthMiddleware guards admin routes with exact token equality.
func bearerAuthMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if expected == "" || token != expected {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
