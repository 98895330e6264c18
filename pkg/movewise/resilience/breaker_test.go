package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// testClock is a manually stepped time source.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time       { return c.now }
func (c *testClock) Step(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker() (*Breaker, *testClock) {
	clock := &testClock{now: time.Unix(1000, 0)}
	b := NewBreaker("readdir", WithClock(clock.Now))
	return b, clock
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker()

	fail := func() error { return errBoom }
	for i := 0; i < DefaultFailureThreshold; i++ {
		require.ErrorIs(t, b.Do(fail), errBoom)
	}
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerFailsFastWhileOpen(t *testing.T) {
	b, clock := newTestBreaker()
	for i := 0; i < DefaultFailureThreshold; i++ {
		_ = b.Do(func() error { return errBoom })
	}

	clock.Step(DefaultResetTimeout - time.Second)

	invoked := false
	err := b.Do(func() error {
		invoked = true
		return nil
	})
	require.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, invoked, "operation must not run while the breaker is open")
}

func TestBreakerHalfOpenProbeSuccess(t *testing.T) {
	b, clock := newTestBreaker()
	for i := 0; i < DefaultFailureThreshold; i++ {
		_ = b.Do(func() error { return errBoom })
	}

	clock.Step(DefaultResetTimeout)

	// The next call after the cooldown is dispatched as a probe.
	invoked := false
	require.NoError(t, b.Do(func() error {
		invoked = true
		return nil
	}))
	assert.True(t, invoked)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 0, b.Snapshot().FailureCount, "success must zero the failure counter")
}

func TestBreakerHalfOpenProbeFailureReopens(t *testing.T) {
	b, clock := newTestBreaker()
	for i := 0; i < DefaultFailureThreshold; i++ {
		_ = b.Do(func() error { return errBoom })
	}

	clock.Step(DefaultResetTimeout)
	require.ErrorIs(t, b.Do(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, b.State())

	// And it keeps failing fast until another cooldown elapses.
	require.ErrorIs(t, b.Do(func() error { return nil }), ErrBreakerOpen)
}

func TestBreakerSuccessResetsConsecutiveCount(t *testing.T) {
	b, _ := newTestBreaker()

	for i := 0; i < DefaultFailureThreshold-1; i++ {
		_ = b.Do(func() error { return errBoom })
	}
	require.NoError(t, b.Do(func() error { return nil }))

	// The failure streak was broken, so the next failures start from zero.
	for i := 0; i < DefaultFailureThreshold-1; i++ {
		_ = b.Do(func() error { return errBoom })
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerCustomThreshold(t *testing.T) {
	b := NewBreaker("stat", WithFailureThreshold(2))
	_ = b.Do(func() error { return errBoom })
	assert.Equal(t, StateClosed, b.State())
	_ = b.Do(func() error { return errBoom })
	assert.Equal(t, StateOpen, b.State())
}

func TestRegistryReturnsSameBreakerPerName(t *testing.T) {
	r := NewRegistry()

	assert.Same(t, r.Get("readdir"), r.Get("readdir"))
	assert.NotSame(t, r.Get("readdir"), r.Get("stat"))

	snaps := r.Snapshots()
	assert.Len(t, snaps, 2)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
