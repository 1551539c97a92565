// Package api exposes event stream replay over HTTP: stream creation,
// point-in-time state queries, and loan payment projections.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/loansplit/loansplit/internal/auth"
	"github.com/loansplit/loansplit/internal/metrics"
	"github.com/loansplit/loansplit/internal/middleware"
	"github.com/loansplit/loansplit/internal/storage"
)

// Server routes API requests to the stream store.
type Server struct {
	store             storage.Store
	metrics           *metrics.Metrics
	jwt               *auth.JWTManager
	adminPasswordHash string
	registry          *prometheus.Registry
}

// Options configures optional server features. A nil JWT disables auth;
// a nil Metrics disables instrumentation.
type Options struct {
	JWT               *auth.JWTManager
	AdminPasswordHash string
	Metrics           *metrics.Metrics
	Registry          *prometheus.Registry
}

// NewServer creates a server over the given store.
func NewServer(store storage.Store, opts Options) *Server {
	return &Server{
		store:             store,
		metrics:           opts.Metrics,
		jwt:               opts.JWT,
		adminPasswordHash: opts.AdminPasswordHash,
		registry:          opts.Registry,
	}
}

// Handler builds the full HTTP handler: routes, auth, CORS and request
// logging.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	if s.jwt != nil {
		r.HandleFunc("/auth/token", s.handleToken).Methods(http.MethodPost)
	}

	streams := r.PathPrefix("/eventStream").Subrouter()
	streams.Use(middleware.RequireAuth(s.jwt))
	streams.HandleFunc("", s.handleCreateStream).Methods(http.MethodPost)
	streams.HandleFunc("/{id}", s.handleGetState).Methods(http.MethodGet)
	streams.HandleFunc("/{id}/loanSummary", s.handleLoanSummary).Methods(http.MethodGet)
	streams.HandleFunc("/{id}/events", s.handleGetEvents).Methods(http.MethodGet)
	streams.HandleFunc("/{id}/stateSnapshot", s.handleStateSnapshot).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return middleware.Logging(c.Handler(r))
}
