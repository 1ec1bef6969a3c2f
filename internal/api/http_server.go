package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"trailhead/internal/config"
	"trailhead/internal/export"
	"trailhead/internal/models"
	"trailhead/internal/render"
	"trailhead/internal/service"
	"trailhead/internal/storage"

	"github.com/rs/zerolog"
)

const (
	msgRetry     = "request failed, please retry"
	maxJSONBytes = 1 << 20
)

// Services are the collaborators behind the HTTP routes. Uploads may be nil
// when no bucket is configured.
type Services struct {
	Itineraries  *service.ItineraryService
	Destinations *service.DestinationService
	Catalog      []*service.CatalogService
	Reviews      *service.ReviewService
	Gallery      *service.GalleryService
	Posts        *service.PostService
	Forms        *service.FormService
	Uploads      *storage.Uploader
	Pages        *render.Pages
	Templates    *render.Templates
	Export       *export.Exporter
}

// Checker reports whether a dependency is usable; /readyz runs all of them.
type Checker func(ctx context.Context) error

// HTTPServer serves the JSON API, the admin form API and the public pages.
type HTTPServer struct {
	cfg    config.APIConfig
	svc    Services
	ready  map[string]Checker
	auth   *Authenticator
	logger *zerolog.Logger
	server *http.Server
}

func NewHTTPServer(cfg config.APIConfig, svc Services, ready map[string]Checker, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		cfg:    cfg,
		svc:    svc,
		ready:  ready,
		auth:   NewAuthenticator(cfg.Auth),
		logger: logger,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	handler := chain(captureRoute(mux),
		requestID(logger),
		recoverPanics,
		accessLog,
		corsHandler(cfg.CORS.AllowedOrigins),
		rateLimit(newRateLimiter(cfg.RateLimit)),
		withTimeout(cfg.RequestTimeout),
	)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}
	return s
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	registerResource(mux, s.auth, "itineraries", "itinerary", s.svc.Itineraries)
	registerResource(mux, s.auth, "destinations", "destination", s.svc.Destinations)
	for _, c := range s.svc.Catalog {
		registerResource(mux, s.auth, string(c.Kind()), c.Kind().Singular(), c)
	}
	registerResource(mux, s.auth, "gallery", "item", s.svc.Gallery)
	registerResource(mux, s.auth, "posts", "post", s.svc.Posts)
	mux.HandleFunc("GET /api/posts/slug/{slug}", s.handlePostBySlug)

	mux.HandleFunc("GET /api/reviews/{type}/{typeId}", s.handleListReviews)
	mux.HandleFunc("POST /api/reviews/{type}/{typeId}", s.handleCreateReview)
	mux.HandleFunc("DELETE /api/reviews/{id}", s.auth.Require(s.handleDeleteReview))

	mux.HandleFunc("POST /api/uploads", s.auth.Require(s.handleUpload))

	mux.HandleFunc("POST /api/admin/forms", s.auth.Require(s.handleOpenForm))
	mux.HandleFunc("GET /api/admin/forms/{session}", s.auth.Require(s.handleGetForm))
	mux.HandleFunc("DELETE /api/admin/forms/{session}", s.auth.Require(s.handleDiscardForm))
	mux.HandleFunc("POST /api/admin/forms/{session}/actions", s.auth.Require(s.handleFormAction))
	mux.HandleFunc("GET /api/admin/export/itineraries.xlsx", s.auth.Require(s.handleExportItineraries))

	mux.HandleFunc("GET /itineraries", s.handleItineraryListPage)
	mux.HandleFunc("GET /itineraries/{id}", s.handleItineraryPage)
	mux.HandleFunc("GET /itineraries/{id}/brochure.pdf", s.handleBrochure)
	mux.HandleFunc("GET /destinations", s.handleDestinationListPage)
	mux.HandleFunc("GET /destinations/{id}", s.handleDestinationPage)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.ready))
	code := http.StatusOK
	for name, check := range s.ready {
		if err := check(r.Context()); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("check", name).Msg("readiness check failed")
			checks[name] = "down"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	writeJSON(w, code, map[string]any{"success": code == http.StatusOK, "checks": checks})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"success": false, "error": message})
}

// writeFailure maps a service error to a status code. Validation messages
// are shown verbatim; anything unexpected is logged and reported as retryable.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded):
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("request timed out")
		writeError(w, http.StatusGatewayTimeout, msgRetry)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, msgRetry)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.NewValidationError("", "invalid JSON body")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError(name, "must be a positive number")
	}
	return id, nil
}

func listQuery(r *http.Request) (models.ListQuery, error) {
	v := r.URL.Query()
	q := models.ListQuery{
		Q:          strings.TrimSpace(v.Get("q")),
		Difficulty: strings.TrimSpace(v.Get("difficulty")),
		Location:   strings.TrimSpace(v.Get("location")),
		Status:     strings.TrimSpace(v.Get("status")),
		Category:   strings.TrimSpace(firstNonEmpty(v.Get("category"), v.Get("tag"))),
	}

	var err error
	if q.Limit, err = nonNegative(v.Get("limit"), "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = nonNegative(v.Get("offset"), "offset"); err != nil {
		return q, err
	}
	if q.Limit > models.MaxListLimit {
		q.Limit = models.MaxListLimit
	}
	return q, nil
}

func nonNegative(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, models.NewValidationError(field, "must be a non-negative integer")
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
