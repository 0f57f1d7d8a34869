// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/immoeliza/pricer/internal/domain/property"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict prices one property record.
	Predict(ctx context.Context, f *property.Features) (float64, error)
	// Schema describes the accepted record.
	Schema() []property.Column
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	schemaHandler  *SchemaHandler
	limiter        *RateLimiter
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRateLimit limits POST /predict to rps requests per second per client
// IP with the given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 {
			s.limiter = NewRateLimiter(rps, burst)
		}
	}
}

// WithMaxBodyBytes caps the size of a prediction request body.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.predictHandler.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		predictHandler: NewPredictHandler(deps),
		schemaHandler:  NewSchemaHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	predict := s.predictHandler.HandlePredict
	if s.limiter != nil {
		predict = s.limiter.Middleware(predict)
		go s.limiter.Cleanup(ctx)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/schema", MetricsMiddleware(s.schemaHandler.HandleSchema, "schema"))
	mux.HandleFunc("/predict", RequestIDMiddleware(MetricsMiddleware(predict, "predict")))
}

type predictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
}

type schemaResponse struct {
	Columns []property.Column `json:"columns"`
}

type errorResponse struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Fields  []property.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err using the status and code of its kind.
func writeError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	resp := errorResponse{Code: code, Message: http.StatusText(status)}
	if err != nil {
		resp.Message = err.Error()
	}
	var fields property.FieldErrors
	if errors.As(err, &fields) {
		resp.Fields = fields
	}
	writeJSON(w, status, resp)
}
