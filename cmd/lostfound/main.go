// Command lostfound runs the lost and found staff portal.
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

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/portal"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/telemetry"
	"github.com/erazemk/lostfound/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Flags default to the values loaded
// from the environment.
func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "lostfound",
		Short:        "Lost and found staff portal",
		Long:         "Serves the lost and found portal. Without a subcommand, runs serve.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.DBPath, "db", "d", cfg.DBPath, "SQLite database path")
	pf.StringVarP(&cfg.AdminUser, "user", "u", cfg.AdminUser, "admin username on first run")
	pf.StringVarP(&cfg.LogPath, "log", "l", cfg.LogPath, "log file path (default: stdout/stderr only)")
	root.Flags().StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "listen address")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (creates the database if missing)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
	serve.Flags().StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "listen address")

	root.AddCommand(serve, newInitCmd(cfg), newStatsCmd(cfg))
	root.Args = cobra.NoArgs
	return root
}

func runServe(ctx context.Context, cfg *config.Config) error {
	closeLog, err := setupLogger(os.Stdout, os.Stderr, cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(ctx, cfg.DBPath, cfg.AdminUser)
		if err != nil {
			slog.Error("failed to initialize database", "error", err)
			return err
		}
		database.Close()

		printInitResult(os.Stdout, cfg.DBPath, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return err
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		return err
	}
	slog.Info("database ready", "path", cfg.DBPath)

	if n, err := store.PurgeExpiredTokens(ctx, database, time.Now()); err != nil {
		slog.Warn("failed to purge expired tokens", "error", err)
	} else if n > 0 {
		slog.Info("purged expired tokens", "count", n)
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, "lostfound")
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			slog.Error("failed to flush traces", "error", err)
		}
	}()
	if cfg.OTLPEndpoint != "" {
		slog.Info("tracing enabled", "endpoint", cfg.OTLPEndpoint)
	}

	// JWT secret is generated on first run and kept in the database.
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		return err
	}

	issuer := auth.NewIssuer(jwtSecret, cfg.TokenExpiry)
	limiter := auth.NewLoginLimiter(cfg.LoginRate, cfg.LoginBurst)
	images := &store.ImageRepository{DB: database, MaxBytes: cfg.MaxImageBytes}
	svc := portal.NewService(&store.ItemRepository{DB: database}, images)

	apiRouter := api.NewRouter(api.Deps{
		DB:            database,
		Issuer:        issuer,
		Limiter:       limiter,
		Portal:        svc,
		Images:        images,
		MaxImageBytes: cfg.MaxImageBytes,
	})
	webRouter, err := web.NewRouter(&web.Server{
		DB:             database,
		Issuer:         issuer,
		Limiter:        limiter,
		Portal:         svc,
		MaxUploadBytes: cfg.MaxImageBytes,
	})
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		return err
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(api.RecoveryMiddleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(sctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
