package subsonic

import (
	"sync"
	"time"
)

// circuitState is the breaker's position in its state machine.
type circuitState int

const (
	// circuitClosed allows all calls through.
	circuitClosed circuitState = iota
	// circuitOpen rejects all calls without network I/O.
	circuitOpen
	// circuitHalfOpen allows exactly one probe call through.
	circuitHalfOpen
)

// breaker is a circuit breaker guarding calls to one server.
//
// State transitions:
//
//	Closed   -> Open      after threshold consecutive failures
//	Open     -> HalfOpen  after the recovery timeout elapses
//	HalfOpen -> Closed    on the next success
//	HalfOpen -> Open      on the next failure
//
// The failure counter is shared by every worker in the pool, so all
// accesses go through the mutex.
type breaker struct {
	threshold int
	timeout   time.Duration
	now       func() time.Time // injectable clock for tests

	mu          sync.Mutex
	state       circuitState
	failures    int
	lastFailure time.Time
	probing     bool // a half-open probe is in flight
}

func newBreaker(threshold int, timeout time.Duration) *breaker {
	return &breaker{
		threshold: threshold,
		timeout:   timeout,
		now:       time.Now,
	}
}

// allow reports whether a call may proceed. When the breaker is open and
// the recovery timeout has elapsed it transitions to half-open and admits
// a single probe; concurrent callers are rejected until the probe
// resolves.
func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case circuitClosed:
		return nil
	case circuitOpen:
		if b.now().Sub(b.lastFailure) < b.timeout {
			return &CircuitOpenError{Failures: b.failures}
		}
		b.state = circuitHalfOpen
		b.probing = true
		return nil
	case circuitHalfOpen:
		if b.probing {
			return &CircuitOpenError{Failures: b.failures}
		}
		b.probing = true
		return nil
	}
	return nil
}

// success records a successful call. In half-open state this closes the
// circuit and resets the failure counter.
func (b *breaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.probing = false
	b.state = circuitClosed
}

// failure records a failed call. In half-open state it reopens the
// circuit immediately; in closed state it opens once the consecutive
// failure count reaches the threshold.
func (b *breaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()
	b.probing = false

	if b.state == circuitHalfOpen || b.failures >= b.threshold {
		b.state = circuitOpen
	}
}

// execute runs call under the breaker's supervision.
func (b *breaker) execute(call func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	if err := call(); err != nil {
		b.failure()
		return err
	}
	b.success()
	return nil
}
