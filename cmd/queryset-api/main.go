// main is the entry point of the queryset API.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the record store (SQLite or in-memory)
//  4. Optionally seed the sample roster into an empty store
//  5. Register all HTTP routes
//  6. Start the HTTP server in a separate goroutine
//  7. Block until an OS signal (Ctrl+C / kill) arrives
//  8. Gracefully shut down: finish in-flight requests, close the store,
//     then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/queryset-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/queryset-api
package main

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

	"github.com/aanand-mishra/queryset-api/internal/config"
	"github.com/aanand-mishra/queryset-api/internal/http/router"
	"github.com/aanand-mishra/queryset-api/internal/seed"
	"github.com/aanand-mishra/queryset-api/internal/storage"
	"github.com/aanand-mishra/queryset-api/internal/storage/driver"
)

// openStore is swapped out by tests.
var openStore = driver.Open

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Installed as the default so handler packages can call slog.Info
	// directly and still get the env-specific format.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting queryset-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	// The context is cancelled on Ctrl+C / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// os.Exit skips deferred calls, so every step that owns a resource
	// lives in run and returns its error here instead of exiting.
	if err := run(ctx, cfg, log); err != nil {
		log.Error("queryset-api stopped with error", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// run owns the store and the HTTP server. It returns once ctx is
// cancelled and the server has drained, or as soon as a step fails; the
// store is closed on every path.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// ── 3. Open Storage ───────────────────────────────────────────────────
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	log.Info("storage initialised",
		slog.String("driver", cfg.StorageDriver),
		slog.String("path", cfg.StoragePath))

	// ── 4. Seed ───────────────────────────────────────────────────────────
	if cfg.SeedOnStart {
		if err := seedIfEmpty(store); err != nil {
			return fmt.Errorf("failed to seed storage: %w", err)
		}
	}

	// ── 5. Routes ─────────────────────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router.New(store),

		// Production hardening: timeouts stop slow clients holding connections.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 6. Start Server in a Goroutine ────────────────────────────────────
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected, so it is not reported as an error.
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server encountered an error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, stopping server...")

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}
	return nil
}

// seedIfEmpty loads the sample roster only into a store with no courses,
// so restarting the server never duplicates or wipes real data.
func seedIfEmpty(store storage.Storage) error {
	courses, err := store.GetCourses()
	if err != nil {
		return err
	}
	if len(courses) > 0 {
		slog.Info("store not empty, skipping seed", slog.Int("courses", len(courses)))
		return nil
	}
	_, err = seed.LoadDefault(store, false)
	return err
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
