package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"edgarcli/internal/config"
	"edgarcli/internal/infrastructure"
	"edgarcli/internal/operations"
	transporthttp "edgarcli/internal/transport/http"
)

// Application is the long-running web server: the pipeline exposed
// over HTTP with health, run control, data views and metrics.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Providers *infrastructure.OTelProviders
	Manager   *operations.Manager
	Server    *http.Server
}

// NewApplication loads configuration and wires the web server.
func NewApplication() (*Application, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	providers, err := infrastructure.InitializeOTel(nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	manager, err := operations.NewPipelineManager(logger, cfg, operations.PipelineOptions{
		Providers: providers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble pipeline: %w", err)
	}

	router := transporthttp.NewRouter(transporthttp.RouterDeps{
		Manager:   manager,
		Paths:     config.NewPaths(cfg.Paths),
		Logger:    logger,
		Providers: providers,
		Server:    cfg.Server,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Providers: providers,
		Manager:   manager,
		Server:    server,
	}, nil
}

// Run starts the server and blocks until an interrupt, then shuts
// down gracefully.
func (a *Application) Run() error {
	ctx := context.Background()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "server listening",
			slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	}

	return a.Stop(ctx)
}

// Stop shuts the server and the telemetry providers down within the
// configured timeout.
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "server shutdown failed",
			slog.String("error", err.Error()))
		return err
	}

	if a.Providers != nil {
		if err := a.Providers.Shutdown(shutdownCtx); err != nil {
			a.Logger.WarnContext(ctx, "telemetry shutdown failed",
				slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return err
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}
