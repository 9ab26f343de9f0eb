package backoff

import (
	"testing"
	"time"
)

func TestAdvanceGrowsBackoffMonotonically(t *testing.T) {
	timer := NewTimer(10 * time.Second)

	prev := timer.backoff
	for i := 0; i < 20; i++ {
		timer.Advance()
		if timer.backoff < prev {
			t.Fatalf("backoff shrank on retry %d: %v -> %v", i+1, prev, timer.backoff)
		}
		if timer.backoff > Max {
			t.Fatalf("backoff exceeded cap on retry %d: %v", i+1, timer.backoff)
		}
		prev = timer.backoff
	}

	if timer.backoff != Max {
		t.Errorf("expected backoff to reach cap after 20 retries, got %v", timer.backoff)
	}
}

func TestAdvanceIncrementsRetryCount(t *testing.T) {
	timer := NewTimer(10 * time.Second)

	for i := 1; i <= 7; i++ {
		timer.Advance()
		if timer.NumRetries() != i {
			t.Fatalf("expected %d retries, got %d", i, timer.NumRetries())
		}
	}
}

func TestAdvanceReturnsPreviousTimeUntilDeadline(t *testing.T) {
	now := time.Now()
	timer := NewTimer(10 * time.Second)
	timer.now = func() time.Time { return now }
	timer.deadline = now.Add(3 * time.Second)

	wait := timer.Advance()
	if wait != 3*time.Second {
		t.Errorf("expected wait of 3s (previous deadline), got %v", wait)
	}
}

func TestDeadlineJitterStaysWithinBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		now := time.Now()
		timer := NewTimer(10 * time.Second)
		timer.now = func() time.Time { return now }

		timer.Advance()

		// After one advance the backoff is 1.6s; the deadline must land
		// within the jitter band around it.
		d := timer.deadline.Sub(now)
		lo := time.Duration(1.6 * (1 - Jitter) * float64(time.Second))
		hi := time.Duration(1.6 * (1 + Jitter) * float64(time.Second))
		if d < lo || d > hi {
			t.Fatalf("deadline %v outside jitter bounds [%v, %v]", d, lo, hi)
		}
	}
}

func TestTimeoutNeverBelowFloor(t *testing.T) {
	now := time.Now()
	timer := NewTimer(10 * time.Second)
	timer.now = func() time.Time { return now }

	// Deadline in the past: the timeout must still be the floor.
	timer.deadline = now.Add(-time.Minute)
	if got := timer.Timeout(); got != 10*time.Second {
		t.Errorf("expected floor timeout 10s with past deadline, got %v", got)
	}

	// Deadline beyond the floor: the timeout follows the deadline.
	timer.deadline = now.Add(45 * time.Second)
	if got := timer.Timeout(); got != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", got)
	}
}

func TestTimeUntilDeadlineClampsAtZero(t *testing.T) {
	now := time.Now()
	timer := NewTimer(10 * time.Second)
	timer.now = func() time.Time { return now }
	timer.deadline = now.Add(-time.Second)

	if got := timer.TimeUntilDeadline(); got != 0 {
		t.Errorf("expected 0 for past deadline, got %v", got)
	}
}
