package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/movieimport/internal/config"
	"github.com/JonMunkholm/movieimport/internal/core"
	"github.com/JonMunkholm/movieimport/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file if it exists; variables already in the environment win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := core.OpenCSV(cfg.Import.CSVIn, cfg.Import.DelimiterRune())
	if err != nil {
		slog.Error("failed to open input", "path", cfg.Import.CSVIn, "error", err)
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		return 1
	}
	defer src.Close()

	var rejects *core.RejectsWriter
	if cfg.Import.RejectsOut != "" {
		rejects, err = core.CreateRejects(cfg.Import.RejectsOut, cfg.Import.DelimiterRune())
		if err != nil {
			slog.Error("failed to create rejects file", "path", cfg.Import.RejectsOut, "error", err)
			return 1
		}
		defer func() {
			if err := rejects.Close(); err != nil {
				slog.Error("failed to flush rejects file", "error", err)
			}
		}()
	}

	client := &http.Client{Timeout: cfg.Client.Timeout}
	submitter := core.NewSubmitter(client, cfg.Import.URLOut).WithAPIKey(cfg.Client.APIKey)

	summary, err := core.Run(ctx, src, submitter, core.Options{
		StopOnError:   cfg.Import.StopOnError(),
		MaxConcurrent: cfg.Import.MaxConcurrent,
		Rejects:       rejects,
	})

	fmt.Printf("run %s: %d rows read, %d imported, %d rejected, %d failed in %s\n",
		summary.RunID, summary.Read, summary.Imported, summary.Rejected, summary.Failed, summary.Duration)

	if err != nil {
		fmt.Fprintf(os.Stderr, "import aborted: %v\n%s\n", err, core.FormatUserError(err))
		return 1
	}
	return 0
}
