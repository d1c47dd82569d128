package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/climate-graph/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ClimateService looks up climate records and positions for places.
type ClimateService interface {
	Extract(ctx context.Context, place string) domain.Record
	Coordinates(ctx context.Context, place string) (domain.Coordinates, bool)
	Compare(ctx context.Context, places []string, months [domain.NumMonths]bool, categories map[domain.Category]bool) domain.Comparison
}

// QueryClassifier turns free-text tokens into a query.
type QueryClassifier interface {
	Classify(ctx context.Context, tokens []string) domain.Query
}

// Server exposes the climate API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	climate    ClimateService
	classifier QueryClassifier
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the operational routes and the /v1
// climate API.
func NewServer(addr string, ready sharedobs.ReadinessChecker, climate ClimateService, classifier QueryClassifier, logger *slog.Logger) *Server {
	s := &Server{
		climate:    climate,
		classifier: classifier,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/climate/{place}", s.getClimate)
		r.Get("/coordinates/{place}", s.getCoordinates)
		r.Get("/query", s.getQuery)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unknown"
		}
		s.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
