package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/immoeliza/pricer/internal/adapters/artifact"
	"github.com/immoeliza/pricer/internal/adapters/http/api"
	"github.com/immoeliza/pricer/internal/adapters/http/swagger"
	"github.com/immoeliza/pricer/internal/adapters/http/ui"
	app "github.com/immoeliza/pricer/internal/app"
	"github.com/immoeliza/pricer/internal/config"
	"github.com/immoeliza/pricer/internal/domain/encoding"
	"github.com/immoeliza/pricer/pkg/client"
	"github.com/immoeliza/pricer/pkg/logger"
	"github.com/immoeliza/pricer/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logOpts := []logger.Option{logger.WithFormat(cfg.LogFormat)}
	if cfg.LogFile != "" {
		logOpts = append(logOpts, logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups))
	}
	if err := logger.Init(logOpts...); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	handler, svc, err := newHandler(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "startup failed", logger.Error(err))
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// newHandler loads the artifacts, starts the service and wires every route.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, *app.Service, error) {
	policy, err := encoding.ParsePolicy(cfg.UnknownCategory)
	if err != nil {
		return nil, nil, err
	}
	loaderOpts := []artifact.Option{}
	if cfg.UnknownCategory != "" {
		loaderOpts = append(loaderOpts, artifact.WithPolicy(policy))
	}
	loader := artifact.NewLoader(loaderOpts...)

	enc, err := loader.LoadEncoder(cfg.EncoderPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load encoder %s: %w", cfg.EncoderPath, err)
	}
	model, err := loader.LoadModel(cfg.ModelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load model %s: %w", cfg.ModelPath, err)
	}
	log.Info(ctx, "artifacts loaded",
		logger.String("encoder", cfg.EncoderPath),
		logger.String("model", cfg.ModelPath),
		logger.String("kind", model.Kind()),
	)

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithEncoder(enc),
		app.WithModel(model),
		app.WithCacheSize(cfg.CacheSize),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start service: %w", err)
	}

	// The form calls the in-process service unless a remote URL is configured.
	var predictor ui.Predictor = svc
	if cfg.UIPredictURL != "" {
		c, err := client.New(cfg.UIPredictURL, client.WithTimeout(time.Duration(cfg.ClientTimeoutMS)*time.Millisecond))
		if err != nil {
			svc.Stop()
			return nil, nil, err
		}
		predictor = c
		log.Info(ctx, "form uses remote predictor", logger.String("url", cfg.UIPredictURL))
	}

	mux := http.NewServeMux()

	var docsOpts []swagger.Option
	if cfg.DocsAssetDir != "" {
		docsOpts = append(docsOpts, swagger.WithAssetDir(cfg.DocsAssetDir))
	}
	swagger.Register(ctx, mux, docsOpts...)

	apiServer := api.NewServer(svc, svc,
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
	apiServer.Register(ctx, mux)

	ui.Register(ctx, mux, ui.NewHandler(predictor, ui.WithLogger(log.Named("ui"))))

	return mux, svc, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the cache gauge as a side effect.
			_ = svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
