package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"scraperd/internal/config"
	"scraperd/internal/domain"
	"scraperd/internal/infrastructure/scrape"
	"scraperd/internal/infrastructure/storage"
	"scraperd/internal/server"
	"scraperd/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, logger *slog.Logger) *Application {
	return &Application{cfg: cfg, logger: logger}
}

// Run connects the store, bootstraps the schema and serves the HTTP
// boundary until the process is signalled to stop.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profile, err := domain.ProfileByName(a.cfg.Scraper.Profile)
	if err != nil {
		return err
	}

	store, err := storage.New(ctx, a.cfg.Database.DSN(), a.logger.With("component", "storage"))
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}
	defer store.Close()

	if err := store.Bootstrap(ctx, profile.Variant); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}

	registry := a.buildRegistry()
	extractor, err := registry.Resolve(profile.Extractor)
	if err != nil {
		return err
	}

	dispatcher := usecase.NewDispatcher(
		a.cfg.Scraper.Workers, a.cfg.Scraper.QueueSize,
		a.logger.With("component", "dispatcher"))
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Extractor:  extractor,
		Store:      store,
		Jobs:       store,
		Dispatcher: dispatcher,
		Profile:    profile,
		Logger:     a.logger.With("component", "pipeline"),
	})

	boundary := server.New(pipeline, store, a.logger.With("component", "server"))
	httpServer := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: boundary.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("serving", "addr", a.cfg.Server.Addr, "profile", profile.Name)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildRegistry registers every extractor the configuration can drive; the
// agent variant joins only when a credential is present.
func (a *Application) buildRegistry() *scrape.Registry {
	timeout := a.cfg.Scraper.FetchTimeout.Std()

	registry := scrape.NewRegistry()
	registry.Register(scrape.NewStaticExtractor(timeout, a.logger.With("component", "scrape.static")))
	registry.Register(scrape.NewRenderedExtractor(timeout, a.logger.With("component", "scrape.rendered")))

	if a.cfg.OpenAI.APIKey != "" {
		registry.Register(scrape.NewAgentExtractor(
			a.cfg.OpenAI.APIKey, a.cfg.OpenAI.Model, timeout,
			a.logger.With("component", "scrape.agent")))
	}

	return registry
}
