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

	"github.com/starford/portal/internal/api"
	"github.com/starford/portal/internal/mcpserver"
	"github.com/starford/portal/internal/pageservice"
	"github.com/starford/portal/internal/snapshot"
	"github.com/starford/portal/internal/sse"
	"github.com/starford/portal/internal/store"
)

type runtime struct {
	cfg      *Config
	logger   *slog.Logger
	db       *store.DB
	exporter *snapshot.Exporter
	svc      *pageservice.Service
}

func newRuntime(opts []Option, svcOpts ...pageservice.Option) (*runtime, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("snapshot_path", cfg.Snapshot.Path),
		slog.String("static_dir", cfg.Site.StaticDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := store.Open(cfg.Data.DBPath())
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	exporter, err := snapshot.NewExporter(db, cfg.Snapshot.Path)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot: %w", err)
	}

	svcOpts = append([]pageservice.Option{pageservice.WithLogger(logger)}, svcOpts...)
	if cfg.Content.SanitizeHTML {
		svcOpts = append(svcOpts, pageservice.WithSanitizer(pageservice.HTMLSanitizer()))
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		exporter: exporter,
		svc:      pageservice.New(db, exporter, svcOpts...),
	}, nil
}

func healthHandler(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rt, err := newRuntime(opts, pageservice.WithEventCallback(broker.PublishPageEvent))
	if err != nil {
		return err
	}
	defer rt.db.Close()
	cfg, logger := rt.cfg, rt.logger

	// Seed on first run, then bring the snapshot in line with the store.
	if err := rt.svc.Export(ctx); err != nil {
		return fmt.Errorf("initial export: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		healthHandler(w, http.StatusOK, `{"status":"ok"}`)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.svc.Ping(pingCtx); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			healthHandler(w, http.StatusServiceUnavailable, `{"status":"unavailable"}`)
			return
		}
		healthHandler(w, http.StatusOK, `{"status":"ok"}`)
	})

	r.Mount("/api", api.NewRouter(rt.svc, api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		Events:      broker,
	}))
	r.Mount("/admin", api.NewAdminRouter(rt.svc, logger))
	api.MountSite(r, cfg.Site.StaticDir)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild the snapshot when it is deleted or edited outside the app.
	if cfg.Snapshot.Watch {
		g.Go(func() error {
			err := rt.exporter.Watch(gCtx, logger, broker.PublishSnapshotRebuilt)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("snapshot guard stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stops the snapshot guard.
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunExport seeds the store if needed and rewrites the snapshot once.
func RunExport(ctx context.Context, opts ...Option) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	if err := rt.svc.Export(ctx); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	rt.logger.Info("Snapshot exported", slog.String("path", rt.exporter.Path()))
	return nil
}

// RunMCP serves the page tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	if err := rt.svc.EnsureSeeded(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc).ServeStdio()
}
