// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/tackline/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit stores and queues a log. Returns the session ID and whether the
	// key was seen before.
	Submit(ctx context.Context, key string, samples []model.Sample) (string, bool, error)

	// Analyze runs the analysis inline.
	Analyze(ctx context.Context, samples []model.Sample) (model.Analysis, error)

	// Read operations expose stored sessions.
	Session(ctx context.Context, id string) (model.Session, error)
	Sessions(ctx context.Context, limit int) ([]model.Session, error)
}

const (
	defaultMaxUploadBytes = 32 << 20
	defaultListLimit      = 20
	defaultMaxListLimit   = 500
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	analyzeHandler  *AnalyzeHandler
}

// Option configures the Server.
type Option func(*limits)

type limits struct {
	maxUploadBytes int64
	maxListLimit   int
}

// WithMaxUploadBytes caps the body of POST /sessions and POST /analyze.
func WithMaxUploadBytes(n int64) Option {
	return func(l *limits) {
		if n > 0 {
			l.maxUploadBytes = n
		}
	}
}

// WithMaxListLimit caps GET /sessions?limit.
func WithMaxListLimit(n int) Option {
	return func(l *limits) {
		if n > 0 {
			l.maxListLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	l := limits{maxUploadBytes: defaultMaxUploadBytes, maxListLimit: defaultMaxListLimit}
	for _, opt := range opts {
		opt(&l)
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		sessionsHandler: NewSessionsHandler(deps, l.maxUploadBytes, l.maxListLimit),
		analyzeHandler:  NewAnalyzeHandler(deps, l.maxUploadBytes),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandleSubmit, "sessions_submit"))
	mux.HandleFunc("GET /sessions", MetricsMiddleware(s.sessionsHandler.HandleList, "sessions_list"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "sessions_get"))
	mux.HandleFunc("GET /sessions/{id}/{view}", MetricsMiddleware(s.sessionsHandler.HandleView, "sessions_view"))
	mux.HandleFunc("POST /analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
}
