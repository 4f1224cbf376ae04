// Package batch executes many independent lookups concurrently and merges
// their outcomes into a keyed result.
//
// Every key in a batch is resolved independently: one key failing, retrying,
// or coming back empty never aborts the others. The orchestrator owns retry
// policy (transport performs single attempts) and gates every attempt through
// a shared limiter.
package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/scholarkit/scholargraph/domain"
	"github.com/scholarkit/scholargraph/observability"
)

// Outcome is the tagged result for one key. Exactly one of the three states
// holds: success (Err nil, NotFound false), not found (NotFound true), or
// error (Err non-nil).
type Outcome[T any] struct {
	// Value is the fetched payload on success.
	Value T

	// NotFound reports that the lookup completed but matched nothing.
	// Not-found is an expected outcome, distinct from a failure.
	NotFound bool

	// Err is the terminal error after retries were exhausted or a
	// non-retryable failure occurred.
	Err error

	// Attempts is the number of fetch attempts made for this key.
	Attempts int
}

// OK reports whether the lookup succeeded with a payload.
func (o Outcome[T]) OK() bool {
	return o.Err == nil && !o.NotFound
}

// Result maps every input key of a batch to its outcome. The key set always
// equals the distinct input key set: no key is dropped, none duplicated.
type Result[T any] map[string]Outcome[T]

// Counts returns the number of keys per outcome state.
func (r Result[T]) Counts() (success, notFound, failed int) {
	for _, o := range r {
		switch {
		case o.Err != nil:
			failed++
		case o.NotFound:
			notFound++
		default:
			success++
		}
	}
	return success, notFound, failed
}

// Limiter admits request attempts. Acquire blocks until a permit is
// available or ctx is done; Release must be called once per successful
// Acquire.
type Limiter interface {
	Acquire(ctx context.Context) error
	Release()
}

// FetchFunc resolves one key to a payload. Implementations signal an empty
// result by returning an error wrapping domain.ErrNotFound.
type FetchFunc[T any] func(ctx context.Context, key string) (T, error)

// Config configures retry behavior for a batch.
type Config struct {
	// MaxAttempts is the total number of attempts per key, including the
	// first. Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff is the delay before the first retry; it doubles with each
	// further retry. A server-provided Retry-After overrides the computed
	// delay when longer.
	Backoff time.Duration
}

// Runner executes batches of lookups for one payload type.
type Runner[T any] struct {
	cfg     Config
	limiter Limiter
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewRunner creates a batch runner. metrics may be nil.
func NewRunner[T any](cfg Config, limiter Limiter, logger zerolog.Logger, metrics *observability.Metrics) *Runner[T] {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Runner[T]{
		cfg:     cfg,
		limiter: limiter,
		logger:  logger,
		metrics: metrics,
	}
}

// Run resolves all keys concurrently and returns one outcome per distinct
// key. Duplicate input keys are fetched once.
//
// Run always returns a complete result: it waits for every spawned lookup
// and never cancels the batch on individual failures. If ctx is cancelled,
// already-finished outcomes are kept and still-pending keys are recorded as
// errors carrying the context error, so callers get a best-effort partial
// result with the key-set invariant intact.
func (r *Runner[T]) Run(ctx context.Context, keys []string, fetch FetchFunc[T]) Result[T] {
	distinct := dedupe(keys)
	result := make(Result[T], len(distinct))
	if len(distinct) == 0 {
		return result
	}

	logger := observability.WithBatchContext(r.logger, uuid.NewString(), len(distinct))
	start := time.Now()
	logger.Debug().Msg("batch started")
	if r.metrics != nil {
		r.metrics.BatchesStarted.Inc()
	}

	type keyed struct {
		key     string
		outcome Outcome[T]
	}
	outcomes := make(chan keyed, len(distinct))

	var wg sync.WaitGroup
	for _, key := range distinct {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			outcomes <- keyed{key: key, outcome: r.resolve(ctx, key, fetch, logger)}
		}(key)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		result[o.key] = o.outcome
	}

	success, notFound, failed := result.Counts()
	if r.metrics != nil {
		r.metrics.RecordBatch(time.Since(start).Seconds(), success, notFound, failed)
	}
	logger.Info().
		Int("success", success).
		Int("not_found", notFound).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("batch finished")

	return result
}

// resolve runs the attempt loop for one key. Attempts are strictly
// sequential; each one acquires a fresh limiter permit.
func (r *Runner[T]) resolve(ctx context.Context, key string, fetch FetchFunc[T], logger zerolog.Logger) Outcome[T] {
	var outcome Outcome[T]

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if err := r.limiter.Acquire(ctx); err != nil {
			outcome.Err = err
			return outcome
		}
		value, err := fetch(ctx, key)
		r.limiter.Release()
		outcome.Attempts = attempt

		if err == nil {
			outcome.Value = value
			return outcome
		}
		if errors.Is(err, domain.ErrNotFound) {
			outcome.NotFound = true
			return outcome
		}
		outcome.Err = err

		if !domain.Retryable(err) || attempt == r.cfg.MaxAttempts {
			return outcome
		}

		delay := r.cfg.Backoff << (attempt - 1)
		if ra := domain.RetryAfter(err); ra > delay {
			delay = ra
		}
		logger.Debug().
			Err(err).
			Str("key", key).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("retrying key")
		if r.metrics != nil {
			r.metrics.RetriesTotal.Inc()
		}
		if err := sleep(ctx, delay); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	return outcome
}

// sleep waits for delay, respecting context cancellation.
func sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// dedupe returns the distinct keys in first-seen order.
func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	distinct := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, key)
	}
	return distinct
}
