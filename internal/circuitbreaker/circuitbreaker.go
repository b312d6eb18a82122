// Package circuitbreaker wraps sony/gobreaker/v2 with the defaults and
// naming convention used across this module's outbound calls.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config mirrors gobreaker.Settings; kept as a distinct type so callers
// never need to import gobreaker directly except for gobreaker.State in
// an OnStateChange hook.
type Config struct {
	Name          string
	MaxRequests   uint32
	Interval      time.Duration
	Timeout       time.Duration
	FailureRatio  float64
	MinRequests   uint32
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig returns the settings used throughout this module:
// trip after at least 5 requests with a failure ratio of 60% or more, stay
// open for 30 seconds, then allow a single trial request.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
		MinRequests:  5,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker[T] for a single result type.
type CircuitBreaker[T any] struct {
	inner *gobreaker.CircuitBreaker[T]
}

// New builds a breaker from cfg.
func New[T any](cfg Config) *CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}
	return &CircuitBreaker[T]{inner: gobreaker.NewCircuitBreaker[T](settings)}
}

// Execute runs fn through the breaker.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return c.inner.Execute(fn)
}

// State reports the breaker's current state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.inner.State()
}

// IsOpenStateError reports whether err is the breaker rejecting a call
// because it is open or limiting half-open trial requests.
func IsOpenStateError(err error) bool {
	return err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests
}
