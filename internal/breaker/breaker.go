// Package breaker implements a named circuit breaker shared by every caller
// of a protected dependency. It is constructed once at startup and injected,
// never looked up from global state.
package breaker

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOpen is returned without invoking the protected call while the
// breaker is open or a half-open probe is already in flight.
var ErrOpen = errors.New("circuit breaker is open")

type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

type Config struct {
	// FailureRate above which the breaker trips, in (0, 1].
	FailureRate float64
	// MinRequests is the minimum call volume in the window before the
	// failure rate is evaluated.
	MinRequests int
	// OpenFor is how long the breaker rejects calls after tripping.
	OpenFor time.Duration
	// Window bounds the failure-rate accounting; counters reset when a
	// window elapses without a trip.
	Window time.Duration
}

func (c Config) withDefaults() Config {
	if c.FailureRate <= 0 || c.FailureRate > 1 {
		c.FailureRate = 0.5
	}
	if c.MinRequests <= 0 {
		c.MinRequests = 5
	}
	if c.OpenFor <= 0 {
		c.OpenFor = 10 * time.Second
	}
	if c.Window <= 0 {
		c.Window = 10 * time.Second
	}
	return c
}

// Breaker guards a dependency with a closed/open/half-open state machine.
// All accounting happens under one mutex so state transitions are
// linearizable across concurrent requests.
type Breaker struct {
	name string
	cfg  Config

	mu          sync.Mutex
	state       State
	requests    int
	failures    int
	windowStart time.Time
	openedAt    time.Time
	probing     bool

	now func() time.Time // overridable in tests
}

func New(name string, cfg Config) *Breaker {
	return &Breaker{
		name:  name,
		cfg:   cfg.withDefaults(),
		state: StateClosed,
		now:   time.Now,
	}
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Do runs fn under the breaker. While open it fails fast with ErrOpen; after
// the cooldown a single trial call is let through, its outcome deciding
// whether the breaker closes or re-opens.
func (b *Breaker) Do(fn func() error) error {
	probe, err := b.allow()
	if err != nil {
		return err
	}

	err = fn()
	b.record(probe, err == nil)
	return err
}

func (b *Breaker) allow() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	switch b.state {
	case StateOpen:
		if now.Sub(b.openedAt) < b.cfg.OpenFor {
			return false, ErrOpen
		}
		b.state = StateHalfOpen
		b.probing = true
		return true, nil
	case StateHalfOpen:
		if b.probing {
			return false, ErrOpen
		}
		b.probing = true
		return true, nil
	}

	if now.Sub(b.windowStart) > b.cfg.Window {
		b.requests = 0
		b.failures = 0
		b.windowStart = now
	}
	return false, nil
}

func (b *Breaker) record(probe, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if probe {
		b.probing = false
		if success {
			b.reset()
		} else {
			b.trip()
		}
		return
	}

	// A call admitted while closed may finish after a trip; its outcome no
	// longer matters.
	if b.state != StateClosed {
		return
	}

	b.requests++
	if !success {
		b.failures++
	}
	if b.requests >= b.cfg.MinRequests &&
		float64(b.failures)/float64(b.requests) >= b.cfg.FailureRate {
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
}

func (b *Breaker) reset() {
	b.state = StateClosed
	b.requests = 0
	b.failures = 0
	b.windowStart = b.now()
}
