// Package retry provides exponential backoff for the listener side of
// the server: binding an address that is briefly unavailable, and
// pausing an accept loop that hits a temporary error.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError wraps an error to signal that retrying will not help.
// Return [Permanent](err) from the operation function to stop retrying
// immediately.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err has been marked as permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ── Backoff ──────────────────────────────────────────────────────────

// Backoff implements exponential backoff with optional jitter.
type Backoff struct {
	// InitialDelay is the delay after the first failure (default 5ms).
	InitialDelay time.Duration
	// MaxDelay caps the backoff duration (default 1s).
	MaxDelay time.Duration
	// Multiplier increases the delay each attempt (default 2.0).
	Multiplier float64
	// MaxAttempts is the total number of tries including the first.
	// 0 means unlimited (until the context is cancelled).
	MaxAttempts int
	// Jitter adds ±25% randomisation.
	Jitter bool
}

// DefaultBackoff is the accept-loop schedule: 5ms doubling to 1s, the
// same curve net/http uses for temporary accept errors.
func DefaultBackoff() *Backoff {
	return &Backoff{
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}
}

// BindBackoff retries a listen a handful of times, for addresses still
// held by a previous process.
func BindBackoff() *Backoff {
	return &Backoff{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  5,
		Jitter:       true,
	}
}

func (b *Backoff) params() (initial, maxDelay time.Duration, mult float64) {
	initial, maxDelay, mult = b.InitialDelay, b.MaxDelay, b.Multiplier
	if initial <= 0 {
		initial = 5 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = time.Second
	}
	if mult <= 0 {
		mult = 2.0
	}
	return initial, maxDelay, mult
}

// Delay returns the wait after the given 1-based failed attempt.
func (b *Backoff) Delay(attempt int) time.Duration {
	initial, maxDelay, mult := b.params()
	if attempt < 1 {
		attempt = 1
	}
	d := float64(initial) * math.Pow(mult, float64(attempt-1))
	if d > float64(maxDelay) || math.IsInf(d, 0) {
		d = float64(maxDelay)
	}
	if b.Jitter {
		return addJitter(time.Duration(d))
	}
	return time.Duration(d)
}

// Wait sleeps for Delay(attempt) or until ctx is done.
func (b *Backoff) Wait(ctx context.Context, attempt int) error {
	t := time.NewTimer(b.Delay(attempt))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do executes fn until it succeeds, returns a permanent error, or the
// attempt budget or ctx runs out.  attempt is 1-based.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			return fmt.Errorf("max retries (%d) exceeded: %w", b.MaxAttempts, err)
		}
		if werr := b.Wait(ctx, attempt); werr != nil {
			return fmt.Errorf("retry cancelled: %w", werr)
		}
	}
}

// addJitter adds ±25% randomisation to a duration.
func addJitter(d time.Duration) time.Duration {
	quarter := float64(d) * 0.25
	delta := (rand.Float64() * 2 * quarter) - quarter
	result := float64(d) + delta
	return time.Duration(math.Max(result, float64(time.Millisecond)))
}
