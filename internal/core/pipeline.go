package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/movieimport/internal/logging"
)

// DefaultProgressInterval is how often (in rows read) progress is logged.
const DefaultProgressInterval = 1000

// Options controls one import run.
type Options struct {
	// StopOnError aborts the run on the first rejected or failed record.
	StopOnError bool

	// MaxConcurrent caps records in flight; 0 means unbounded.
	MaxConcurrent int

	// Rejects receives every rejected or failed row. Optional.
	Rejects *RejectsWriter

	// ProgressInterval overrides DefaultProgressInterval when positive.
	ProgressInterval int
}

// progressReporter is implemented by sources that know how far they are.
type progressReporter interface {
	Progress() int
}

type run struct {
	submitter RecordSubmitter
	opts      Options

	read     atomic.Int64
	imported atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
}

// Run imports every record of src through sub.
//
// Records are read lazily in file order and each one is normalized and
// submitted in its own goroutine; completion order is unspecified. Record
// failures are logged and counted. With StopOnError the first failure cancels
// all outstanding records and is returned. Read errors always abort the run.
// The summary is returned in every case.
func Run(ctx context.Context, src RecordSource, sub RecordSubmitter, opts Options) (RunSummary, error) {
	start := time.Now()
	runID := uuid.NewString()

	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	progressEvery := opts.ProgressInterval
	if progressEvery <= 0 {
		progressEvery = DefaultProgressInterval
	}

	r := &run{submitter: sub, opts: opts}
	limiter := NewLimiter(opts.MaxConcurrent)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	logger.Info("import started",
		"stop_on_error", opts.StopOnError,
		"max_concurrent", limiter.MaxConcurrent(),
	)

	var readErr error
	for gctx.Err() == nil {
		raw, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = fmt.Errorf("read record: %w", err)
			cancel()
			break
		}

		n := r.read.Add(1)
		if n%int64(progressEvery) == 0 {
			args := []any{"rows_read", n}
			if p, ok := src.(progressReporter); ok {
				args = append(args, "percent", p.Progress())
			}
			logger.Info("processing progress", args...)
		}

		if err := limiter.Acquire(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer limiter.Release()
			return r.process(gctx, logger, raw)
		})
	}

	err := g.Wait()
	if readErr != nil {
		err = readErr
	} else if err == nil && ctx.Err() != nil {
		// Cancelled from outside (signal); not a record failure
		err = ctx.Err()
	}

	summary := RunSummary{
		RunID:    runID,
		Read:     r.read.Load(),
		Imported: r.imported.Load(),
		Rejected: r.rejected.Load(),
		Failed:   r.failed.Load(),
		Duration: time.Since(start),
	}

	if err != nil {
		logger.Error("import aborted",
			"error", err,
			"code", MapError(err).Code,
			"rows_read", summary.Read,
			"rows_imported", summary.Imported,
		)
		return summary, err
	}

	logger.Info("import finished",
		"rows_read", summary.Read,
		"rows_imported", summary.Imported,
		"rows_rejected", summary.Rejected,
		"rows_failed", summary.Failed,
		"duration", summary.Duration.String(),
	)
	return summary, nil
}

// process normalizes and submits one record. It returns an error only when
// the run must stop: a record failure in strict mode, or cancellation.
func (r *run) process(ctx context.Context, logger *slog.Logger, raw RawRecord) error {
	rec, subs, err := Normalize(raw)
	logSubstitutions(logger, raw.Line, subs)
	if err != nil {
		r.rejected.Add(1)
		return r.fail(logger, raw, StateRejected, err)
	}

	if err := r.submitter.Submit(ctx, &rec); err != nil {
		if ctx.Err() != nil {
			// Aborted by another record or by the caller. A sink answer that
			// arrived anyway is still reported, but not counted.
			var subErr *SubmissionError
			if errors.As(err, &subErr) && subErr.StatusCode != 0 {
				logger.Error("record not imported", append(failureArgs(raw, StateSubmitFailed, err), "cancelled", true)...)
			}
			return ctx.Err()
		}
		r.failed.Add(1)
		return r.fail(logger, raw, StateSubmitFailed, err)
	}

	r.imported.Add(1)
	return nil
}

func (r *run) fail(logger *slog.Logger, raw RawRecord, state RecordState, err error) error {
	logger.Error("record not imported", failureArgs(raw, state, err)...)

	if werr := r.opts.Rejects.Write(raw, state, err); werr != nil {
		logger.Warn("failed to record rejected row", "line", raw.Line, "error", werr)
	}

	if r.opts.StopOnError {
		return fmt.Errorf("line %d: %w", raw.Line, err)
	}
	return nil
}

// failureArgs builds the log attributes for a record that was not imported.
func failureArgs(raw RawRecord, state RecordState, err error) []any {
	args := []any{
		"line", raw.Line,
		"state", state,
		"code", MapError(err).Code,
		"error", err,
	}
	var subErr *SubmissionError
	if errors.As(err, &subErr) && subErr.StatusCode != 0 {
		args = append(args,
			"http_status", subErr.StatusCode,
			"http_reason", subErr.Reason,
			"http_resp", subErr.Body,
		)
	}
	return args
}
