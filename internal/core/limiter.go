package core

// limiter.go implements the optional concurrency cap for record processing.
//
// The limiter uses a semaphore pattern to restrict in-flight records to a
// configured maximum, bounding memory and open connections on large files.
// A nil *Limiter is valid and never blocks, which is the unbounded default.

import (
	"context"
	"sync/atomic"
)

// Limiter controls concurrent record processing using a semaphore pattern.
type Limiter struct {
	semaphore chan struct{}
	active    atomic.Int64
}

// NewLimiter creates a limiter that allows at most maxConcurrent records in flight.
// Returns nil (no limit) when maxConcurrent <= 0.
func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent <= 0 {
		return nil
	}
	return &Limiter{
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

// Acquire blocks until a slot is free or ctx is done.
// The caller MUST call Release() when the record completes (use defer).
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}

	select {
	case l.semaphore <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire.
func (l *Limiter) Release() {
	if l == nil {
		return
	}
	l.active.Add(-1)
	<-l.semaphore
}

// ActiveCount returns the number of records currently holding a slot.
func (l *Limiter) ActiveCount() int {
	if l == nil {
		return 0
	}
	return int(l.active.Load())
}

// MaxConcurrent returns the configured cap, 0 when unbounded.
func (l *Limiter) MaxConcurrent() int {
	if l == nil {
		return 0
	}
	return cap(l.semaphore)
}
