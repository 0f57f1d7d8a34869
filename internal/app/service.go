// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the form UI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/immoeliza/pricer/internal/adapters/cache"
	"github.com/immoeliza/pricer/internal/domain/encoding"
	"github.com/immoeliza/pricer/internal/domain/property"
	"github.com/immoeliza/pricer/internal/domain/regression"
	"github.com/immoeliza/pricer/pkg/logger"
	"github.com/immoeliza/pricer/pkg/metrics"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrNotConfigured     = errors.New("service is missing its model or encoder")
	ErrNonNumericFeature = errors.New("feature is not numeric after encoding")
)

// Prediction outcomes reported to metrics.
const (
	outcomeOK         = "ok"
	outcomeInvalid    = "invalid"
	outcomeUnknown    = "unknown_category"
	outcomeNonNumeric = "non_numeric"
	outcomeError      = "error"
)

// Service turns property records into prices using the loaded encoder and model.
type Service struct {
	mu sync.RWMutex

	// Core components
	encoder *encoding.TargetEncoder
	model   regression.Model
	cache   cache.PredictionCache

	// Configuration
	cacheSize int

	// State
	started bool
	served  atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEncoder sets the target encoder.
func WithEncoder(enc *encoding.TargetEncoder) Option {
	return func(s *Service) {
		s.encoder = enc
	}
}

// WithModel sets the regression model.
func WithModel(m regression.Model) Option {
	return func(s *Service) {
		s.model = m
	}
}

// WithCacheSize sets the number of memoized predictions. 0 disables the cache.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cacheSize: 10_000,
		logger:    nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start checks that the encoder and model fit together and prepares the cache.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.encoder == nil || s.model == nil {
		return ErrNotConfigured
	}

	features := make(map[string]struct{})
	for _, name := range s.model.FeatureNames() {
		features[name] = struct{}{}
	}
	for _, col := range s.encoder.Columns() {
		if _, ok := features[col]; !ok {
			return fmt.Errorf("%w: encoder column %s is not a model feature", ErrNotConfigured, col)
		}
	}

	s.cache = cache.New(cache.WithMaxSize(s.cacheSize))

	metrics.UpdateModelInfo(s.model.Kind(), len(features))
	metrics.UpdateEncoderColumns(len(s.encoder.Columns()))
	metrics.UpdateCacheEntries(0)

	s.started = true
	s.logger.Info(ctx, "price service started",
		logger.String("model", s.model.Kind()),
		logger.Int("features", len(features)),
		logger.Int("encodedColumns", len(s.encoder.Columns())),
		logger.String("unknownCategory", string(s.encoder.Policy())),
		logger.Int("cacheSize", s.cacheSize),
	)

	return nil
}

// Stop marks the service as stopped. Artifacts stay loaded.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "price service stopped",
		logger.Int("served", int(s.served.Load())),
	)
}

// Predict validates, normalizes and encodes f, then evaluates the model.
func (s *Service) Predict(ctx context.Context, f *property.Features) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	s.mu.RLock()
	started, memo := s.started, s.cache
	s.mu.RUnlock()
	if !started {
		return 0, ErrNotStarted
	}

	if err := property.Validate(f); err != nil {
		metrics.RecordPrediction(outcomeInvalid)
		return 0, err
	}

	x, err := s.vector(ctx, f)
	if err != nil {
		switch {
		case errors.Is(err, encoding.ErrUnknownCategory):
			metrics.RecordPrediction(outcomeUnknown)
		case errors.Is(err, ErrNonNumericFeature):
			metrics.RecordPrediction(outcomeNonNumeric)
		default:
			metrics.RecordPrediction(outcomeError)
		}
		s.logger.Debug(ctx, "record rejected", logger.Error(err))
		return 0, err
	}

	key := cache.Key(x)
	if price, ok := memo.Get(ctx, key); ok {
		metrics.RecordCacheHit()
		metrics.RecordPrediction(outcomeOK)
		s.served.Add(1)
		return price, nil
	}
	metrics.RecordCacheMiss()

	price, err := s.model.Predict(x)
	if err != nil {
		metrics.RecordPrediction(outcomeError)
		s.logger.Error(ctx, "model evaluation failed", logger.Error(err))
		return 0, fmt.Errorf("predict: %w", err)
	}

	memo.Add(ctx, key, price)
	metrics.UpdateCacheEntries(int(memo.Size()))
	metrics.RecordPredictedPrice(price)
	metrics.RecordPrediction(outcomeOK)
	s.served.Add(1)

	return price, nil
}

// vector builds the model input row in the model's feature order.
func (s *Service) vector(ctx context.Context, f *property.Features) ([]float64, error) {
	rec := property.Normalize(f.Record())

	encoded, unknown, err := s.encoder.Transform(rec)
	if err != nil {
		return nil, err
	}
	for _, col := range unknown {
		metrics.RecordUnknownCategory(col)
		s.logger.Debug(ctx, "unknown category replaced by prior",
			logger.String("column", col),
			logger.String("value", rec[col].String()),
		)
	}

	names := s.model.FeatureNames()
	x := make([]float64, len(names))
	for i, name := range names {
		v, ok := encoded[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s is missing", ErrNonNumericFeature, name)
		}
		num, ok := v.Float()
		if !ok {
			return nil, fmt.Errorf("%w: %s=%q", ErrNonNumericFeature, name, v.String())
		}
		x[i] = num
	}
	return x, nil
}

// Schema describes the accepted record.
func (s *Service) Schema() []property.Column {
	return property.Schema()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"cacheSize": s.cacheSize,
		"served":    s.served.Load(),
	}

	if s.model != nil {
		stats["model"] = s.model.Kind()
		stats["features"] = len(s.model.FeatureNames())
	}
	if s.encoder != nil {
		stats["encodedColumns"] = s.encoder.Columns()
		stats["unknownCategory"] = string(s.encoder.Policy())
		stats["prior"] = s.encoder.Prior()
	}
	if s.cache != nil {
		cs := s.cache.Stats()
		stats["cacheEntries"] = cs.Entries
		stats["cacheHits"] = cs.Hits
		stats["cacheMisses"] = cs.Misses
		metrics.UpdateCacheEntries(int(cs.Entries))
	}

	return stats
}
