package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"washify/internal/catalog"
	"washify/internal/config"
	"washify/internal/models"
	"washify/internal/service"

	"github.com/rs/zerolog"
)

// BookingStore is the booking surface the REST API needs.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	ListBookings(ctx context.Context) ([]models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) (*models.Booking, error)
}

type Exporter interface {
	Export(ctx context.Context) (string, error)
}

// Deps are the collaborators behind the HTTP routes. Forms and Exporter are
// optional; their routes answer 503 when absent.
type Deps struct {
	Bookings BookingStore
	Forms    *service.FormService
	Catalog  *catalog.Catalog
	Exporter Exporter
	// Ready reports whether the backing stores are reachable.
	Ready    func(ctx context.Context) error
	PageSize int
}

// HTTPServer exposes the booking REST API.
type HTTPServer struct {
	cfg    config.APIConfig
	deps   Deps
	server *http.Server
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	if deps.PageSize <= 0 {
		deps.PageSize = models.DefaultPageSize
	}
	srv := &HTTPServer{cfg: cfg, deps: deps, logger: logger}

	mux := http.NewServeMux()
	srv.routes(mux)

	handler := chain(mux,
		withRequestID,
		loggingMiddleware(logger),
		recoverMiddleware(logger),
		corsMiddleware(cfg.CORS.AllowedOrigins),
		rateLimitMiddleware(newRateLimiter(cfg.RateLimit)),
		bodyLimitMiddleware(cfg.MaxBodyBytes),
	)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	// Контракт доступен и под /api/bookings, и под /bookings
	for _, prefix := range []string{"/api/bookings", "/bookings"} {
		mux.HandleFunc("POST "+prefix, s.handleCreateBooking)
		mux.HandleFunc("GET "+prefix, s.handleListBookings)
		mux.HandleFunc("DELETE "+prefix+"/{id}", s.handleDeleteBooking)
		mux.HandleFunc("DELETE "+prefix+"/{$}", s.handleDeleteBooking)
		mux.HandleFunc("PATCH "+prefix+"/{id}", s.handleUpdateBookingStatus)
		mux.HandleFunc("PATCH "+prefix+"/{$}", s.handleUpdateBookingStatus)
	}

	mux.HandleFunc("GET /api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("POST /api/v1/quote", s.handleQuote)
	mux.HandleFunc("POST /api/v1/booking-form", s.handleSubmitForm)
	mux.HandleFunc("GET /api/v1/drafts/{key}", s.handleGetDraft)
	mux.HandleFunc("PUT /api/v1/drafts/{key}", s.handlePutDraft)
	mux.HandleFunc("DELETE /api/v1/drafts/{key}", s.handleDeleteDraft)
	mux.HandleFunc("GET /api/v1/bookings/view", s.handleBookingsView)
	mux.HandleFunc("GET /api/v1/bookings/export", s.handleExport)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
}

// Handler returns the fully wrapped handler.
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

// Serve accepts connections on an existing listener.
func (s *HTTPServer) Serve(lis net.Listener) error {
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("HTTP API listening")
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *HTTPServer) log(r *http.Request) *zerolog.Event {
	return s.logger.Error().Str("request_id", requestIDFromContext(r.Context()))
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
