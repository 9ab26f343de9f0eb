// Package backoff implements the exponential-backoff strategy used between
// retried API requests. The strategy follows the gRPC connection-backoff
// protocol: https://github.com/grpc/grpc/blob/master/doc/connection-backoff.md
package backoff

import (
	"math/rand/v2"
	"time"
)

const (
	// Initial is the backoff applied before the first retry.
	Initial = 1 * time.Second

	// Max caps the backoff regardless of how many retries have occurred.
	Max = 120 * time.Second

	// Multiplier grows the backoff after each retry.
	Multiplier = 1.6

	// Jitter is applied as a symmetric proportion of the backoff: with
	// jitter 0.23 the deadline is backoff multiplied by a random value
	// in [0.77, 1.23].
	Jitter = 0.23
)

// Timer tracks the retry count, the current backoff magnitude and the
// absolute deadline of the next attempt for a single request. It is owned by
// exactly one request execution and is not safe for concurrent use.
type Timer struct {
	minTimeout time.Duration
	numRetries int
	backoff    time.Duration
	deadline   time.Time

	now func() time.Time
}

// NewTimer returns a Timer whose Timeout never drops below minTimeout.
func NewTimer(minTimeout time.Duration) *Timer {
	t := &Timer{
		minTimeout: minTimeout,
		backoff:    Initial,
		now:        time.Now,
	}
	t.deadline = t.now().Add(t.backoff)
	return t
}

// NumRetries returns how many times Advance has been called.
func (t *Timer) NumRetries() int {
	return t.numRetries
}

// Timeout returns the time until the current deadline, floored at the
// minimum connection timeout so an attempt is never starved even when the
// deadline is imminent or already past.
func (t *Timer) Timeout() time.Duration {
	if d := t.TimeUntilDeadline(); d > t.minTimeout {
		return d
	}
	return t.minTimeout
}

// TimeUntilDeadline returns the remaining time before the current deadline,
// or zero if the deadline has passed.
func (t *Timer) TimeUntilDeadline() time.Duration {
	if d := t.deadline.Sub(t.now()); d > 0 {
		return d
	}
	return 0
}

// Advance grows the backoff, recomputes the deadline with jitter and
// increments the retry count. It returns the time that remained until the
// previous deadline; callers sleep for that duration before the next attempt.
func (t *Timer) Advance() time.Duration {
	wait := t.TimeUntilDeadline()

	t.backoff = time.Duration(float64(t.backoff) * Multiplier)
	if t.backoff > Max {
		t.backoff = Max
	}

	jittered := float64(t.backoff) * (1 + Jitter*(rand.Float64()*2-1))
	t.deadline = t.now().Add(time.Duration(jittered))
	t.numRetries++
	return wait
}
