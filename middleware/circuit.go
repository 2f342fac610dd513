// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package middleware

import (
	"errors"
	"time"

	"github.com/tryerr-io/tryerr"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type circuitOptions struct {
	name        string
	logger      *zap.Logger
	maxRequests uint32
	interval    time.Duration
	timeout     time.Duration
	tripCount   uint32
	countsAs    func(*tryerr.Error) bool
}

// CircuitOption configures the [CircuitBreaker] stage.
type CircuitOption func(*circuitOptions)

// CircuitName is the name of the circuit breaker. This will be used to create
// a named logger for logging state changes.
func CircuitName(name string) CircuitOption {
	return func(co *circuitOptions) {
		co.name = name
	}
}

// CircuitLogger sets the logger used to report breaker state changes.
func CircuitLogger(logger *zap.Logger) CircuitOption {
	return func(co *circuitOptions) {
		co.logger = logger
	}
}

// CircuitMaxRequests is the maximum number of errors allowed to pass through
// to downstream stages while the breaker is half-open. If MaxRequests is 0,
// only 1 is allowed.
func CircuitMaxRequests(maxRequests uint32) CircuitOption {
	return func(co *circuitOptions) {
		co.maxRequests = maxRequests
	}
}

// CircuitInterval is the cyclic period of the closed state after which the
// breaker clears its internal counts. If Interval is 0, counts are only
// cleared on state changes.
func CircuitInterval(interval time.Duration) CircuitOption {
	return func(co *circuitOptions) {
		co.interval = interval
	}
}

// CircuitTimeout is the period of the open state, after which the breaker
// becomes half-open. If Timeout is 0, it defaults to 60 seconds.
func CircuitTimeout(timeout time.Duration) CircuitOption {
	return func(co *circuitOptions) {
		co.timeout = timeout
	}
}

// CircuitTripCount determines the number of consecutive counted errors
// required to trip the circuit.
func CircuitTripCount(n uint32) CircuitOption {
	return func(co *circuitOptions) {
		co.tripCount = n
	}
}

// CountCircuitErrorIf registers a predicate deciding which errors count
// towards tripping the circuit. By default every error counts.
func CountCircuitErrorIf(f func(*tryerr.Error) bool) CircuitOption {
	return func(co *circuitOptions) {
		co.countsAs = f
	}
}

var errCounted = errors.New("counted circuit error")

// CircuitBreaker returns a stage that guards the stages downstream of it
// with a circuit breaker. While the circuit is closed, errors flow through
// unchanged and counted errors accumulate towards the trip threshold. While
// the circuit is open, downstream stages are skipped entirely and the error
// is tagged with context key "circuit" = "open" instead.
//
// This keeps expensive enrichment stages from piling onto an error storm.
func CircuitBreaker(opts ...CircuitOption) tryerr.Middleware {
	co := &circuitOptions{
		logger:      zap.NewNop(),
		tripCount:   5,
		timeout:     60 * time.Second,
		maxRequests: 1,
		countsAs: func(*tryerr.Error) bool {
			return true
		},
	}
	for _, opt := range opts {
		opt(co)
	}

	log := co.logger.Named(co.name)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        co.name,
		MaxRequests: co.maxRequests,
		Interval:    co.interval,
		Timeout:     co.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= co.tripCount
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info(
				"circuit state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
		out := e
		_, err := cb.Execute(func() (any, error) {
			out = next(e)
			if out != nil && co.countsAs(out) {
				return nil, errCounted
			}
			return nil, nil
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return e.With("circuit", "open")
		}
		return out
	}
}
