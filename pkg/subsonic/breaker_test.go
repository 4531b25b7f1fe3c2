package subsonic

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// fakeClock is an injectable clock for breaker tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker(threshold int, timeout time.Duration) (*breaker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	b := newBreaker(threshold, timeout)
	b.now = clock.Now
	return b, clock
}

var errBoom = errors.New("boom")

func TestBreakerOpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)

	calls := 0
	fail := func() error { calls++; return errBoom }

	for i := 0; i < 3; i++ {
		if err := b.execute(fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err = %v, want errBoom", i, err)
		}
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	// The next call must be rejected without invoking the call.
	err := b.execute(fail)
	var open *CircuitOpenError
	if !errors.As(err, &open) {
		t.Fatalf("err = %v, want *CircuitOpenError", err)
	}
	if open.Failures != 3 {
		t.Errorf("open.Failures = %d, want 3", open.Failures)
	}
	if calls != 3 {
		t.Errorf("rejected call still reached the network (calls = %d)", calls)
	}
}

func TestBreakerSuccessResetsCounter(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)

	_ = b.execute(func() error { return errBoom })
	_ = b.execute(func() error { return errBoom })
	if err := b.execute(func() error { return nil }); err != nil {
		t.Fatalf("success call err = %v", err)
	}

	// Two more failures must not open a threshold-3 breaker.
	_ = b.execute(func() error { return errBoom })
	_ = b.execute(func() error { return errBoom })
	if err := b.execute(func() error { return nil }); err != nil {
		t.Fatalf("breaker opened despite interleaved success: %v", err)
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b, clock := newTestBreaker(2, 30*time.Second)

	_ = b.execute(func() error { return errBoom })
	_ = b.execute(func() error { return errBoom })

	// Before the recovery timeout: still rejecting.
	if err := b.allow(); err == nil {
		t.Fatal("allow() = nil while open, want rejection")
	}

	clock.Advance(31 * time.Second)

	// Exactly one probe is admitted.
	if err := b.allow(); err != nil {
		t.Fatalf("probe not admitted after recovery timeout: %v", err)
	}
	if err := b.allow(); err == nil {
		t.Fatal("second concurrent probe admitted in half-open state")
	}

	t.Run("probe success closes", func(t *testing.T) {
		b.success()
		if err := b.allow(); err != nil {
			t.Fatalf("circuit not closed after probe success: %v", err)
		}
		b.success()
	})
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(2, 30*time.Second)

	_ = b.execute(func() error { return errBoom })
	_ = b.execute(func() error { return errBoom })
	clock.Advance(31 * time.Second)

	if err := b.execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("probe err = %v, want errBoom", err)
	}

	// Reopened: rejected again until another recovery timeout passes.
	if err := b.execute(func() error { return nil }); err == nil {
		t.Fatal("circuit closed after failed probe, want open")
	}
	clock.Advance(31 * time.Second)
	if err := b.execute(func() error { return nil }); err != nil {
		t.Fatalf("second probe rejected: %v", err)
	}
}

func TestBreakerConcurrentAccess(t *testing.T) {
	b, _ := newTestBreaker(5, time.Second)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				_ = b.execute(func() error {
					if (i+j)%3 == 0 {
						return fmt.Errorf("fail %d/%d", i, j)
					}
					return nil
				})
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
