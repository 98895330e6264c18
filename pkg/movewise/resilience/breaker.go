package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by Do while the breaker is open; the wrapped
// operation is not invoked.
var ErrBreakerOpen = errors.New("circuit breaker open")

// State is the circuit breaker state.
type State int

// Breaker states.
const (
	// StateClosed executes operations normally, counting failures.
	StateClosed State = iota

	// StateOpen fails fast until the reset timeout elapses.
	StateOpen

	// StateHalfOpen lets a single probe call through.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker defaults.
const (
	// DefaultFailureThreshold is the consecutive-failure count that opens
	// the breaker.
	DefaultFailureThreshold = 5

	// DefaultResetTimeout is how long an open breaker rejects calls before
	// permitting a half-open probe.
	DefaultResetTimeout = 30 * time.Second
)

// Breaker is a circuit breaker guarding one logical operation. Transitions
// are pure functions of consecutive failure/success counts and elapsed
// time. Safe for concurrent use.
type Breaker struct {
	name      string
	threshold int
	reset     time.Duration

	// now is injectable for tests.
	now func() time.Time

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	lastFailure  time.Time
}

// BreakerOption customizes a Breaker.
type BreakerOption func(*Breaker)

// WithFailureThreshold overrides the consecutive-failure trip count.
func WithFailureThreshold(n int) BreakerOption {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithResetTimeout overrides the open-state cooldown.
func WithResetTimeout(d time.Duration) BreakerOption {
	return func(b *Breaker) {
		if d > 0 {
			b.reset = d
		}
	}
}

// WithClock overrides the time source. Used by tests to step through the
// open-state cooldown without sleeping.
func WithClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBreaker creates a closed breaker for the named operation.
func NewBreaker(name string, opts ...BreakerOption) *Breaker {
	b := &Breaker{
		name:      name,
		threshold: DefaultFailureThreshold,
		reset:     DefaultResetTimeout,
		now:       time.Now,
		state:     StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Do executes op under the breaker's supervision. While open, Do returns
// ErrBreakerOpen without invoking op until the reset timeout elapses; the
// next call is then dispatched as a half-open probe whose outcome either
// closes or reopens the breaker.
func (b *Breaker) Do(op func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := op()
	b.record(err == nil)
	return err
}

// allow checks whether a call may be dispatched, performing the
// open-to-half-open transition when the cooldown has elapsed.
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.lastFailure) < b.reset {
			return fmt.Errorf("%w: %s", ErrBreakerOpen, b.name)
		}
		b.state = StateHalfOpen
	}
	return nil
}

// record applies the outcome of a dispatched call.
func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.successCount++
		b.failureCount = 0
		b.state = StateClosed
		return
	}

	b.failureCount++
	b.lastFailure = b.now()

	// A failed half-open probe reopens immediately; a closed breaker opens
	// once the consecutive-failure threshold is reached.
	if b.state == StateHalfOpen || b.failureCount >= b.threshold {
		b.state = StateOpen
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot describes a breaker for logging and diagnostics.
type Snapshot struct {
	Name         string    `json:"name"`
	State        string    `json:"state"`
	FailureCount int       `json:"failure_count"`
	SuccessCount int       `json:"success_count"`
	LastFailure  time.Time `json:"last_failure,omitzero"`
}

// Snapshot returns a point-in-time copy of the breaker's counters.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Name:         b.name,
		State:        b.state.String(),
		FailureCount: b.failureCount,
		SuccessCount: b.successCount,
		LastFailure:  b.lastFailure,
	}
}

// Registry maps stable operation-name strings to breakers, one per logical
// operation rather than per path, bounding total retry storms across a scan.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	opts     []BreakerOption
}

// NewRegistry creates an empty registry. Options apply to every breaker the
// registry creates.
func NewRegistry(opts ...BreakerOption) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		opts:     opts,
	}
}

// Get returns the breaker for an operation name, creating it on first use.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := NewBreaker(name, r.opts...)
	r.breakers[name] = b
	return b
}

// Snapshots returns the state of every breaker in the registry.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Snapshot, 0, len(r.breakers))
	for _, b := range r.breakers {
		out = append(out, b.Snapshot())
	}
	return out
}
