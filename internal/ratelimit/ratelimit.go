// Package ratelimit bounds outbound request pressure against the Graph API.
//
// The limiter combines two independent budgets that every request must clear
// before being issued: a windowed request budget (token bucket) matching the
// API's published request ceiling, and a concurrency cap bounding how many
// requests may be in flight at once. Both are shared by all goroutines of a
// batch, and across batches issued through the same client.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config configures a Limiter.
type Config struct {
	// MaxConcurrent is the upper bound on simultaneous in-flight requests.
	MaxConcurrent int

	// RequestsPerWindow is the upper bound on requests started per window.
	RequestsPerWindow int

	// Window is the duration of the request window.
	Window time.Duration
}

// Limiter gates request admission. It is safe for concurrent use: the
// underlying rate.Limiter and semaphore.Weighted are both goroutine-safe.
//
// Acquire never fails on budget exhaustion, it only delays; the sole failure
// mode is cancellation of the caller's context.
type Limiter struct {
	window *rate.Limiter
	slots  *semaphore.Weighted
	max    int64
}

// New creates a limiter allowing at most requestsPerWindow request starts per
// window and maxConcurrent requests in flight.
//
// Example configurations:
//   - unauthenticated Semantic Scholar: New(Config{MaxConcurrent: 10, RequestsPerWindow: 100, Window: 5 * time.Minute})
//   - authenticated: New(Config{MaxConcurrent: 10, RequestsPerWindow: 1, Window: time.Second})
func New(cfg Config) *Limiter {
	perSecond := float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()
	return &Limiter{
		window: rate.NewLimiter(rate.Limit(perSecond), cfg.RequestsPerWindow),
		slots:  semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		max:    int64(cfg.MaxConcurrent),
	}
}

// Acquire blocks until both a concurrency slot and a window token are
// available, or the context is done. On success the caller holds one slot
// and must call Release exactly once when its request finishes.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquiring request slot: %w", err)
	}
	if err := l.window.Wait(ctx); err != nil {
		l.slots.Release(1)
		return fmt.Errorf("waiting for request window: %w", err)
	}
	return nil
}

// Release returns the concurrency slot taken by a successful Acquire.
func (l *Limiter) Release() {
	l.slots.Release(1)
}

// Allow reports whether a request could be admitted without waiting.
// It consumes one window token and one slot if admitted; the caller must
// Release on true.
func (l *Limiter) Allow() bool {
	if !l.slots.TryAcquire(1) {
		return false
	}
	if !l.window.Allow() {
		l.slots.Release(1)
		return false
	}
	return true
}

// SetRate updates the windowed budget while keeping the burst size.
// Useful when an API key raises the permitted request rate at runtime.
func (l *Limiter) SetRate(requestsPerWindow int, window time.Duration) {
	l.window.SetLimit(rate.Limit(float64(requestsPerWindow) / window.Seconds()))
	l.window.SetBurst(requestsPerWindow)
}

// Tokens returns the number of window tokens currently available.
func (l *Limiter) Tokens() float64 {
	return l.window.Tokens()
}
