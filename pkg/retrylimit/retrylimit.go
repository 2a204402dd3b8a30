// Package retrylimit throttles outbound calls with an adaptive token bucket and
// retries failures with exponential backoff. Errors that carry an HTTP status
// get special handling: 429 halves the rate, 5xx backs off, other 4xx should be
// wrapped in FatalError by the caller.
//
//	lim := retrylimit.NewAdaptiveLimiter(2, 0.5, 5, 0.5, 0.5)
//	err := retrylimit.Do(ctx, lim, retrylimit.DefaultConfig(), func(ctx context.Context) error {
//	    return call(ctx)
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a rate.Limiter whose rate grows on success and shrinks
// when the remote side pushes back.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	min, max  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
	now       func() time.Time
}

// NewAdaptiveLimiter starts at initial rps, bounded by [min, max]. stepUp is
// added after a success, stepDown multiplies the rate after pushback.
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min <= 0 {
		min = 0.1
	}
	if max < min {
		max = min
	}
	if initial < min {
		initial = min
	}
	if initial > max {
		initial = max
	}
	if stepDown <= 0 || stepDown >= 1 {
		stepDown = 0.5
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		min:      min,
		max:      max,
		stepUp:   stepUp,
		stepDown: stepDown,
		now:      time.Now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless pushback happened in the last 10 seconds.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.now().Sub(a.lastError) > 10*time.Second {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited lowers the rate after pushback.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = a.now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// Limit returns the current requests per second.
func (a *AdaptiveLimiter) Limit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	if l > a.max {
		l = a.max
	} else if l < a.min {
		l = a.min
	}
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

func burstFor(l rate.Limit) int {
	if b := int(l); b > 1 {
		return b
	}
	return 1
}

// HTTPError is implemented by errors carrying an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// RetryAfterError is implemented by errors that know how long the server asked to wait.
type RetryAfterError interface {
	error
	RetryAfter() time.Duration
}

// FatalError stops retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal wraps err so Do gives up on it.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// ErrAttemptsExceeded is wrapped around the last error once MaxAttempts is spent.
var ErrAttemptsExceeded = errors.New("max attempts exceeded")

// Config controls Do.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RateLimitDelay time.Duration // wait after a 429 without Retry-After
	Multiplier     float64
	Jitter         bool
	Logger         zerolog.Logger
	OnRetry        func(attempt int, err error)
}

// DefaultConfig suits a chat completion endpoint.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		RateLimitDelay: time.Second,
		Multiplier:     2.0,
		Jitter:         true,
		Logger:         zerolog.Nop(),
	}
}

// Do runs fn until it succeeds, returns a FatalError, ctx is done or
// MaxAttempts is spent. lim may be nil.
func Do(ctx context.Context, lim *AdaptiveLimiter, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	delay := cfg.InitialDelay
	var last error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn(ctx)
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				cfg.Logger.Info().Int("attempt", attempt).Msg("retry succeeded")
			}
			return nil
		}
		last = err

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal.Err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		wait := delay
		switch {
		case IsRateLimit(err):
			if lim != nil {
				lim.RateLimited()
			}
			wait = cfg.RateLimitDelay
			var ra RetryAfterError
			if errors.As(err, &ra) && ra.RetryAfter() > 0 {
				wait = ra.RetryAfter()
			}
			if cfg.MaxDelay > 0 && wait > cfg.MaxDelay {
				wait = cfg.MaxDelay
			}
			cfg.Logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("rate limited")
		default:
			if IsServerError(err) && lim != nil {
				lim.RateLimited()
			}
			if cfg.Jitter {
				wait = addJitter(delay)
			}
			cfg.Logger.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("request failed, retrying")
			delay = time.Duration(float64(delay) * cfg.Multiplier)
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("%w (%d): %w", ErrAttemptsExceeded, cfg.MaxAttempts, last)
}

// IsRateLimit reports a 429 anywhere in err's chain.
func IsRateLimit(err error) bool {
	var h HTTPError
	return errors.As(err, &h) && h.StatusCode() == http.StatusTooManyRequests
}

// IsServerError reports a 5xx anywhere in err's chain.
func IsServerError(err error) bool {
	var h HTTPError
	if !errors.As(err, &h) {
		return false
	}
	code := h.StatusCode()
	return code >= 500 && code < 600
}

// addJitter adds 0-25% of delay.
func addJitter(delay time.Duration) time.Duration {
	if q := int64(delay / 4); q > 0 {
		return delay + time.Duration(rand.Int63n(q))
	}
	return delay
}
