package retry

import (
	"context"
	"errors"
	"time"
)

var newTimer = time.NewTimer

// Policy is a bounded retry schedule for calls to external services. Attempts
// counts the initial call, so Attempts=3 means at most two retries. Backoff
// holds the waits applied before each retry; the last entry repeats if the
// schedule is shorter than the retry count.
type Policy struct {
	Attempts int
	Backoff  []time.Duration
}

// Default is the schedule applied to all external calls: one initial attempt,
// two retries with 1s and 2s backoff.
func Default() *Policy {
	return &Policy{
		Attempts: 3,
		Backoff:  []time.Duration{time.Second, 2 * time.Second},
	}
}

// Do runs op until it succeeds, returns a non-transient error, or the attempt
// budget is exhausted. Only errors marked with Transient are retried.
func (p *Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if werr := waitFor(ctx, p.backoffFor(attempt-1)); werr != nil {
				return werr
			}
		}

		err = op(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
	}

	return err
}

func (p *Policy) backoffFor(retry int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if retry >= len(p.Backoff) {
		retry = len(p.Backoff) - 1
	}
	return p.Backoff[retry]
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable. A nil err is returned unchanged.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err (or any wrapped error) was marked with Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := newTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
