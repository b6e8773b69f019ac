// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/catalogservice"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/state"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("state_path", cfg.State.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Resolve and load the source document. Format problems are fatal:
	// serving an empty or half-parsed catalog silently would be worse.
	src, err := catalog.NewSource(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("init catalog source: %w", err)
	}
	data, sum, err := src.Load()
	if err != nil {
		return fmt.Errorf("read catalog source: %w", err)
	}
	raws, err := catalog.ParseDocument(data)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrEmptyCatalog):
			return fmt.Errorf("catalog source %s holds no templates: %w", src.Path(), err)
		case errors.Is(err, apperr.ErrDataFormat):
			return fmt.Errorf("catalog source %s is not a template document: %w", src.Path(), err)
		default:
			return fmt.Errorf("parse catalog source: %w", err)
		}
	}
	cat := catalog.Build(raws, cfg.Catalog.BaseURL)
	logger.Info("Catalog loaded",
		slog.Int("templates", cat.Len()),
		slog.String("checksum", sum))

	// View-state store.
	store, err := state.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("init state store: %w", err)
	}
	defer store.Close()

	svc := catalogservice.New(cat, store, src, cfg.Catalog.BaseURL, logger)

	// MCP stdio mode replaces the HTTP surface entirely.
	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the source document and hot-reload the catalog.
	g.Go(func() error {
		return catalog.Watch(gCtx, src, logger, func() {
			if reloadErr := svc.ReloadFromSource(); reloadErr != nil {
				logger.Warn("hot reload failed, keeping previous catalog",
					slog.String("error", reloadErr.Error()))
				return
			}
			broker.PublishReload(svc.Len())
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
