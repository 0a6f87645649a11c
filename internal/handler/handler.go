package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/kdos/folio/docs" // Register swagger docs
	"github.com/kdos/folio/internal/config"
	"github.com/kdos/folio/internal/database"
	"github.com/kdos/folio/internal/handler/dto"
	"github.com/kdos/folio/internal/mailer"
	"github.com/kdos/folio/internal/metrics"
	"github.com/kdos/folio/internal/middleware"
	"github.com/kdos/folio/internal/repository"
	"github.com/kdos/folio/internal/service"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the services the handlers call into.
type Services struct {
	Guard   *service.SessionGuard
	Content *service.ContentService
	Contact *service.ContactService
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	db             Pinger
	guard          *service.SessionGuard
	content        *service.ContentService
	contact        *service.ContactService
	authMiddleware *middleware.AuthMiddleware
	loginLimiter   *middleware.RateLimiter
	metrics        *metrics.Metrics
	sessionTTL     time.Duration
	secureCookies  bool
	trustProxy     bool
}

// New creates a Handler backed by Postgres repositories.
func New(db *database.DB, cfg config.Config, m *metrics.Metrics) *Handler {
	// Create repositories
	contentRepo := repository.NewContentRepository(db.Pool())
	sessionRepo := repository.NewSessionRepository(db.Pool())

	// Pick the contact delivery channel
	var mail mailer.Mailer = mailer.NewLogMailer()
	if cfg.Contact.ResendAPIKey != "" {
		mail = mailer.NewResendMailerFromKey(cfg.Contact.ResendAPIKey, cfg.Contact.From, cfg.Contact.To)
	}
	slog.Info("contact delivery configured", "delivery", mail.Name())

	// Create services
	validator := service.NewValidator()
	svc := Services{
		Guard:   service.NewSessionGuard(sessionRepo, cfg.Admin, cfg.Session.TTL, m),
		Content: service.NewContentService(contentRepo, validator, m),
		Contact: service.NewContactService(mail, validator, m),
	}

	return NewWithServices(db, cfg, m, svc)
}

// NewWithServices creates a Handler from already constructed services.
func NewWithServices(db Pinger, cfg config.Config, m *metrics.Metrics, svc Services) *Handler {
	return &Handler{
		db:             db,
		guard:          svc.Guard,
		content:        svc.Content,
		contact:        svc.Contact,
		authMiddleware: middleware.NewAuthMiddleware(svc.Guard),
		loginLimiter:   middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy, m),
		metrics:        m,
		sessionTTL:     cfg.Session.TTL,
		secureCookies:  cfg.Session.SecureCookies,
		trustProxy:     cfg.RateLimit.TrustProxy,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Operations
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.Handle("GET /metrics", h.metrics.Handler())
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// Session guard
	mux.Handle("POST /api/auth/login", h.loginLimiter.Limit(http.HandlerFunc(h.handleLogin)))
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/check", h.handleCheck)

	// Content store
	mux.HandleFunc("GET /api/skills", h.handleGetSkills)
	mux.Handle("POST /api/skills", h.authMiddleware.RequireAuth(http.HandlerFunc(h.handlePutSkills)))
	mux.HandleFunc("GET /api/projects", h.handleGetProjects)
	mux.Handle("POST /api/projects", h.authMiddleware.RequireAuth(http.HandlerFunc(h.handlePutProjects)))

	// Contact relay
	mux.HandleFunc("GET /api/contact", h.handleContactStatus)
	mux.HandleFunc("POST /api/contact", h.handleContact)
}

// Routes returns the instrumented router.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h.metrics.Middleware(mux)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, dto.NewErrorResponse(message))
}

// respondDomainError maps err to a status and writes it.
// fallback is shown to clients for server-side failures.
func respondDomainError(w http.ResponseWriter, err error, fallback string) {
	status, message := dto.MapDomainError(err, fallback)
	respondError(w, status, message)
}

// decodeJSON reads a single JSON value from the request body into v.
// With strict, unknown fields are rejected so stored documents keep their shape.
// Returns false if decoding failed (error already sent to client).
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, strict bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxBodyBytes))
	if strict {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		slog.Debug("invalid request body", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	return true
}
