// Package app assembles and runs the dashboard service: configuration,
// logging, the dataset store, the report service and the HTTP server with
// graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vettoo/internal/config"
	"vettoo/internal/dataset"
	apierrors "vettoo/internal/errors"
	"vettoo/internal/infrastructure"
	"vettoo/internal/middleware"
	"vettoo/internal/services"
	handlers "vettoo/internal/transport/http"
)

// Application is the assembled dashboard service.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Store         *dataset.Store
	ReportService *services.ReportService
	Router        *chi.Mux
	Server        *http.Server
}

// NewApplication loads configuration, opens the dataset and wires the HTTP
// stack. A missing or unreadable workbook fails here, before the server
// starts serving.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	workbook, err := dataset.FindWorkbook(cfg.Paths.DataDir, cfg.Paths.WorkbookPattern)
	if err != nil {
		return nil, fmt.Errorf("resolve workbook: %w", err)
	}
	store, err := dataset.Open(ctx, workbook, logger)
	if err != nil {
		return nil, fmt.Errorf("load workbook %s: %w", workbook, err)
	}
	logger.InfoContext(ctx, "dataset loaded", slog.String("workbook", workbook))

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Store:         store,
		ReportService: services.NewReportService(store, cfg.Dashboard.RoundingBucket, logger),
	}
	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (a *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(a.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.RateLimiter(a.Config.Server.RateLimit))

	errorHandler := apierrors.NewErrorHandler(a.Logger)
	reportHandler := handlers.NewReportHandler(a.ReportService, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.ReportService, a.Logger)

	r.Mount("/api", reportHandler.Routes())
	r.Get("/healthz", healthHandler.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Run serves HTTP until the context is cancelled or a shutdown signal
// arrives, then drains connections within the configured timeout.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
