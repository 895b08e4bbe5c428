// Package api provides the HTTP API server and handlers for the Rolodex server.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	domainerrors "github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/http/rescue"
	"github.com/rolodexapp/rolodex-server/internal/http/response"
	"github.com/rolodexapp/rolodex-server/internal/metrics"
	"github.com/rolodexapp/rolodex-server/internal/ratelimit"
	"github.com/rolodexapp/rolodex-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Contact *service.ContactService
	Tag     *service.TagService
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures request handling.
type Options struct {
	Environment string
	CORSOrigins []string
	// MaxPerPage caps per_page when positive.
	MaxPerPage int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	db       Pinger
	opts     Options
	rescuer  *rescue.Rescuer
	metrics  *metrics.Metrics
	limiter  *ratelimit.KeyedRateLimiter
	router   *chi.Mux
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// m and limiter may be nil, which disables metrics and rate limiting.
func NewServer(services *Services, db Pinger, opts Options, m *metrics.Metrics, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		services: services,
		db:       db,
		opts:     opts,
		rescuer:  rescue.New(opts.Environment, logger),
		metrics:  m,
		limiter:  limiter,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(requestLogger(s.logger))
	s.router.Use(s.rescuer.Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	s.router.NotFound(s.handle(func(http.ResponseWriter, *http.Request) error {
		return domainerrors.NotFound("Route not found")
	}))
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusMethodNotAllowed, rescue.Body{
			Error:   "MethodNotAllowed",
			Message: "Method not allowed",
		}, s.logger)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(rateLimitMiddleware(s.limiter, s.logger))
		}

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", s.handle(s.handleListContacts))
			r.Post("/", s.handle(s.handleCreateContact))
			r.Get("/search", s.handle(s.handleSearchContacts))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handle(s.handleGetContact))
				r.Put("/", s.handle(s.handleUpdateContact))
				r.Patch("/", s.handle(s.handleUpdateContact))
				r.Delete("/", s.handle(s.handleDeleteContact))
				r.Post("/tags", s.handle(s.handleAddContactTag))
				r.Delete("/tags/{tagID}", s.handle(s.handleRemoveContactTag))
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handle(s.handleListTags))
			r.Post("/", s.handle(s.handleCreateTag))
			r.Get("/search", s.handle(s.handleSearchTags))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handle(s.handleGetTag))
				r.Put("/", s.handle(s.handleUpdateTag))
				r.Patch("/", s.handle(s.handleUpdateTag))
				r.Delete("/", s.handle(s.handleDeleteTag))
			})
		})
	})
}

// handlerFunc is an HTTP handler that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts h to http.HandlerFunc. Returned errors are normalized and
// written by the rescuer.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.rescuer.Respond(w, r, err)
		}
	}
}
