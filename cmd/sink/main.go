package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/movieimport/internal/config"
	"github.com/JonMunkholm/movieimport/internal/logging"
	"github.com/JonMunkholm/movieimport/internal/sink"
)

func main() {
	// Load .env file if it exists; variables already in the environment win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadSink()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()

	var store sink.Store
	if cfg.Database.URL == "" {
		slog.Info("DATABASE_URL not set, keeping movies in memory")
		store = sink.NewMemoryStore()
	} else {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		pgStore, err := sink.NewPostgresStore(ctx, pool)
		if err != nil {
			slog.Error("failed to prepare database", "error", err)
			os.Exit(1)
		}
		store = pgStore
		slog.Info("connected to database", "max_conns", cfg.Database.MaxConns)
	}

	server := sink.NewServer(store, cfg.Server.APIKeys)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("sink starting", "addr", cfg.Server.Addr(), "auth", len(cfg.Server.APIKeys) > 0)
	if err := server.Start(cfg.Server.Addr(), cfg.Server.ReadTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
