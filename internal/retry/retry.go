// Package retry provides the pure backoff-delay function and
// retryability classification from spec §4.10, built on top of
// cenkalti/backoff/v4's ExponentialBackOff for the jittered-exponential
// arithmetic rather than hand-rolling it.
package retry

import (
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/nolan-howard/quyc/internal/chunk"
)

// Policy holds the backoff parameters spec §4.10 validates.
type Policy struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterFactor      float64
}

// DefaultPolicy matches the spec's stated defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialDelay:      200 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
		JitterFactor:      0.2,
	}
}

// Validate checks the invariants spec §4.10 mandates.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return errors.New("retry: max_attempts must be >= 1")
	}
	if p.BackoffMultiplier <= 0 {
		return errors.New("retry: backoff_multiplier must be > 0")
	}
	if p.JitterFactor < 0 || p.JitterFactor > 1 {
		return errors.New("retry: jitter_factor must be in [0, 1]")
	}
	if p.InitialDelay > p.MaxDelay {
		return errors.New("retry: initial_delay_ms must be <= max_delay_ms")
	}
	return nil
}

// safeExponentMantissa is the 2^53 magnitude spec §4.10 names as the
// point past which float64 can no longer represent integers exactly;
// beyond it the exponent itself is clamped before exponentiating,
// rather than letting the float64 power computation silently lose
// precision.
const safeExponentMantissa = 1 << 53

// Delay computes the backoff delay for attempt (1-based; attempt 0
// always yields zero per spec §4.10) by configuring a
// backoff.ExponentialBackOff to the policy's parameters and stepping it
// attempt times. cenkalti/backoff's own jitter (RandomizationFactor)
// supplies the "uniform jitter in ±(delay*jitter_factor)" term;
// precision-guarding the exponent for pathologically large attempt
// counts is handled before handing the multiplier to backoff, since the
// library itself does not guard against float64 overflow on extreme
// inputs.
func Delay(attempt int, p Policy) time.Duration {
	if attempt <= 0 {
		return 0
	}

	exponent := attempt - 1
	multiplier := p.BackoffMultiplier
	if multiplier > 1 {
		maxSafeExponent := int(math.Log(safeExponentMantissa) / math.Log(multiplier))
		if exponent > maxSafeExponent {
			exponent = maxSafeExponent
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = multiplier
	b.RandomizationFactor = p.JitterFactor
	b.MaxElapsedTime = 0 // no overall cap here; MaxAttempts is enforced by the caller
	// NewExponentialBackOff already reset to the library's default
	// interval; reset again so stepping starts at InitialInterval.
	b.Reset()

	var d time.Duration
	for i := 0; i <= exponent; i++ {
		d = b.NextBackOff()
	}
	if d < 0 {
		d = 0
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// IsRetryable implements spec §4.10's classification: generic request,
// connect, timeout, and stream errors are always retryable; status
// errors are retryable only for 5xx and 429; everything else (builder,
// redirect, body, decode, upgrade, payload-too-large) is not.
func IsRetryable(err error) bool {
	var ce *chunk.Error
	if errors.As(err, &ce) {
		return ce.Retryable()
	}
	return false
}
