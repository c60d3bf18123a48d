// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/extdeck/internal/api"
	"github.com/starford/extdeck/internal/assets"
	"github.com/starford/extdeck/internal/controller"
	"github.com/starford/extdeck/internal/mcpserver"
	"github.com/starford/extdeck/internal/session"
	"github.com/starford/extdeck/internal/source"
	"github.com/starford/extdeck/internal/sse"
	"github.com/starford/extdeck/internal/tui"
)

var errConfigRequired = errors.New("config is required")

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// initialLoad fetches the collection once and resolves the session either
// way. There is no retry.
func initialLoad(ctx context.Context, f source.Fetcher, sess *session.Session, logger *slog.Logger) {
	records, err := f.Fetch(ctx)
	if err != nil {
		logger.Error("initial load failed", slog.String("error", err.Error()))
		if failErr := sess.Fail(err); failErr != nil {
			logger.Warn("load failure after shutdown", slog.String("error", failErr.Error()))
		}
		return
	}
	if err := sess.Load(records); err != nil {
		logger.Warn("load after shutdown", slog.String("error", err.Error()))
		return
	}
	logger.Info("Extensions loaded", slog.Int("count", len(records)))
}

// reload replaces the collection after the watched file changed. A failed
// reload keeps the current state.
func reload(ctx context.Context, f source.Fetcher, sess *session.Session, logger *slog.Logger) {
	records, err := f.Fetch(ctx)
	if err != nil {
		logger.Warn("reload failed", slog.String("error", err.Error()))
		return
	}
	if err := sess.Load(records); err != nil {
		return
	}
	logger.Info("Extensions reloaded", slog.Int("count", len(records)))
}

// changeFeed forwards session events to the broker. Only events that change
// the list invalidate open pages; a load failure is reported as is.
func changeFeed(b *sse.Broker) session.Notifier {
	return func(kind string, data map[string]any) {
		b.Publish(sse.Event{Type: kind, Data: data, Invalidates: kind != session.KindLoadFail})
	}
}

// newServerRouter assembles health checks, the JSON API and the HTML pages.
func newServerRouter(cfg *Config, sess *session.Session, broker *sse.Broker, assetDir *assets.Dir) chi.Router {
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
		if !sess.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	var sseHandler http.Handler
	if broker != nil {
		sseHandler = broker
	}
	r.Mount("/api", api.NewRouter(sess, cfg.Auth.AuthEnabled(), cfg.Auth.Token, sseHandler))

	live := broker != nil && !cfg.Auth.AuthEnabled()
	r.Mount("/", api.NewPageRouter(sess, api.NewAssetHandler(assetDir), live))

	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("source", cfg.Source.Location),
		slog.Bool("watch", cfg.Source.Watch),
		slog.String("assets_path", cfg.Assets.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	assetDir, err := assets.NewDir(cfg.Assets.Path)
	if err != nil {
		logger.Warn("assets disabled", slog.String("error", err.Error()))
		assetDir = nil
	}

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.Throttle,
		sse.WithKeepAlive(cfg.Events.KeepAlive),
		sse.WithLogger(logger))
	defer broker.Close()

	sess := session.New(controller.New(logger), session.WithNotifier(changeFeed(broker)))
	defer sess.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newServerRouter(cfg, sess, broker, assetDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Initial load runs alongside the server; /health/ready reports 503 until
	// it resolves.
	g.Go(func() error {
		initialLoad(gCtx, app.fetcher, sess, logger)
		return nil
	})

	if cfg.Source.Watch {
		g.Go(func() error {
			return source.Watch(gCtx, cfg.Source.Location, logger, func() {
				reload(gCtx, app.fetcher, sess, logger)
			})
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunTUI starts the terminal interface. Logs go to app.log_file, or nowhere,
// because the terminal belongs to the UI.
func RunTUI(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	out := io.Discard
	if cfg.App.LogFile != "" {
		f, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := newLogger(out, cfg.App.LogLevel)
	slog.SetDefault(logger)

	model := tui.New(controller.New(logger), app.fetcher)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// RunMCP serves MCP tools on stdio. Logs go to stderr because stdout carries
// the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	sess := session.New(controller.New(logger))
	defer sess.Close()

	initialLoad(ctx, app.fetcher, sess, logger)

	logger.Info("MCP server starting on stdio", slog.String("source", cfg.Source.Location))
	return mcpserver.New(sess).ServeStdio()
}
