package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/irfndi/prediction-dashboard/internal/api"
	"github.com/irfndi/prediction-dashboard/internal/config"
	"github.com/irfndi/prediction-dashboard/internal/dashboard"
	"github.com/irfndi/prediction-dashboard/internal/dataset"
	"github.com/irfndi/prediction-dashboard/internal/logging"
	"github.com/irfndi/prediction-dashboard/internal/middleware"
	"github.com/irfndi/prediction-dashboard/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, otlpLogger := newLogger(cfg)
	defer func() {
		if otlpLogger == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otlpLogger.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to shutdown log exporter: %v\n", err)
		}
	}()

	// Initialize telemetry before the router so otelgin picks up the provider
	provider, err := telemetry.InitTelemetry(context.Background(), newTelemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Failed to shutdown telemetry")
		}
	}()

	// gin's own output goes through logrus; requests are logged by middleware
	ginOut := logging.NewGinWriter(os.Stdout, cfg.LogLevel, logrus.InfoLevel)
	ginErr := logging.NewGinWriter(os.Stderr, cfg.LogLevel, logrus.ErrorLevel)
	defer func() {
		_ = ginOut.Close()
		_ = ginErr.Close()
	}()
	gin.DefaultWriter = ginOut
	gin.DefaultErrorWriter = ginErr

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.LogStartup(cfg.Telemetry.ServiceName, cfg.Telemetry.ServiceVersion, cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.LogShutdown(cfg.Telemetry.ServiceName, "signal received: "+sig.String())
	case err := <-serverErr:
		logger.LogShutdown(cfg.Telemetry.ServiceName, "server error")
		return fmt.Errorf("failed to start server: %w", err)
	}

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 30*time.Second))
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.WithService(cfg.Telemetry.ServiceName).Info("Server exited gracefully")
	return nil
}

// newTelemetryConfig overlays the configured telemetry options on the
// package defaults; empty strings keep the default.
func newTelemetryConfig(cfg *config.Config) telemetry.TelemetryConfig {
	tc := telemetry.DefaultConfig()
	tc.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.Exporter != "" {
		tc.Exporter = cfg.Telemetry.Exporter
	}
	if cfg.Telemetry.OTLPEndpoint != "" {
		tc.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	}
	if cfg.Telemetry.ServiceName != "" {
		tc.ServiceName = cfg.Telemetry.ServiceName
	}
	if cfg.Telemetry.ServiceVersion != "" {
		tc.ServiceVersion = cfg.Telemetry.ServiceVersion
	}
	if cfg.Environment != "" {
		tc.Environment = cfg.Environment
	}
	return tc
}

// newLogger returns the stdout JSON logger, or an OTLP-exporting one when
// log export is enabled. The second value is nil unless OTLP is in use.
func newLogger(cfg *config.Config) (*logging.StandardLogger, *logging.OTLPLogger) {
	if cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled {
		return logging.NewStandardOTLPLogger(logging.OTLPConfig{
			Enabled:        true,
			Endpoint:       cfg.Telemetry.OTLPEndpoint,
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Environment,
			LogLevel:       cfg.LogLevel,
		})
	}
	return logging.NewStandardLogger(cfg.LogLevel, cfg.Environment), nil
}

// newRouter wires the middleware chain, templates and routes.
func newRouter(cfg *config.Config, logger logging.Logger) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	localizer, err := dashboard.NewLocalizer(cfg.Dashboard.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to create localizer: %w", err)
	}

	tmpl, err := dashboard.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	source := dataset.NewLoader(cfg.Dashboard.DataPath, cfg.Dashboard.SQLiteTable)
	renderer := dashboard.NewRenderer(source, localizer, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TelemetryMiddleware(cfg.Telemetry.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.SetHTMLTemplate(tmpl)

	api.SetupRoutes(router, renderer, localizer, cfg.Dashboard.DataPath, cfg.Telemetry.ServiceVersion, logger)
	return router, nil
}

// newServer creates the HTTP server with the configured timeouts.
func newServer(cfg *config.Config, logger logging.Logger) (*http.Server, error) {
	router, err := newRouter(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:      config.Duration(cfg.Server.WriteTimeout, 30*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}
