// Package resilience provides the retry and circuit-breaker primitives that
// wrap every filesystem call made by the scanners. Retry absorbs transient
// OS errors (resource busy, would-block, descriptor exhaustion); breakers
// stop a scan from hammering an unresponsive mount with repeated retries.
package resilience

import (
	"context"
	"errors"
	"syscall"
	"time"
)

// Policy configures retry behavior for one operation class.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// Multiplier grows the delay after each failed attempt.
	Multiplier float64

	// MaxDelay caps the per-attempt delay.
	MaxDelay time.Duration

	// Retryable decides whether a failure is worth another attempt.
	// Nil means IsTransient.
	Retryable func(error) bool
}

// DefaultPolicy returns the retry policy used for filesystem syscalls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   50 * time.Millisecond,
		Multiplier:  2,
		MaxDelay:    time.Second,
	}
}

// Retry executes op until it succeeds, the failure is not retryable, the
// attempts are exhausted, or ctx is cancelled. The last error propagates
// unchanged so callers can classify it with errors.Is.
func Retry(ctx context.Context, p Policy, op func() error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			if sleepErr := sleep(ctx, p.delay(attempt-1)); sleepErr != nil {
				return sleepErr
			}
		}

		if err = op(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return err
}

// delay computes the backoff for the given zero-based retry index.
func (p Policy) delay(retry int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 0; i < retry; i++ {
		d *= p.Multiplier
	}
	if limit := float64(p.MaxDelay); p.MaxDelay > 0 && d > limit {
		d = limit
	}
	return time.Duration(d)
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// transientErrnos are the OS error classes worth retrying: the resource is
// momentarily busy or the process is momentarily out of descriptors or
// buffers. Permanent path errors (ENOENT, EACCES, ENOTDIR) never retry.
var transientErrnos = []syscall.Errno{
	syscall.EBUSY,
	syscall.EAGAIN,
	syscall.EINTR,
	syscall.EMFILE,
	syscall.ENFILE,
	syscall.ENOBUFS,
}

// IsTransient reports whether err is a transient OS error.
func IsTransient(err error) bool {
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
