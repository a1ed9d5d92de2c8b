// Package circuitbreaker tracks the health of PayPal API operations and
// stops calling an operation that keeps failing until a cool-down has passed.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// State represents the state of one circuit.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

const (
	defaultFailureThreshold  = 3
	defaultResetTimeout      = 30 * time.Second
	defaultHalfOpenSuccesses = 1
)

var circuitState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "salesman_paypal_circuit_state",
		Help: "Circuit state per PayPal operation (0 closed, 1 open, 2 half open).",
	},
	[]string{"operation"},
)

// GetCircuitState returns the circuit state gauge for tests.
func GetCircuitState() *prometheus.GaugeVec {
	return circuitState
}

// Config tunes a CircuitBreaker. Zero values fall back to the defaults.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens a circuit.
	FailureThreshold int
	// ResetTimeout is how long a circuit stays open before a trial call is let through.
	ResetTimeout time.Duration
	// HalfOpenSuccesses is the number of trial successes needed to close again.
	HalfOpenSuccesses int
}

type circuit struct {
	state     State
	failures  int
	successes int
	openUntil time.Time
}

// CircuitBreaker holds one circuit per key. It is safe for concurrent use.
type CircuitBreaker struct {
	mu       sync.Mutex
	circuits map[string]*circuit
	cfg      Config
	now      func() time.Time
}

// NewCircuitBreaker creates a CircuitBreaker, filling unset Config fields
// with defaults.
func NewCircuitBreaker(cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = defaultResetTimeout
	}
	if cfg.HalfOpenSuccesses <= 0 {
		cfg.HalfOpenSuccesses = defaultHalfOpenSuccesses
	}
	return &CircuitBreaker{
		circuits: make(map[string]*circuit),
		cfg:      cfg,
		now:      time.Now,
	}
}

// caller holds cb.mu
func (cb *CircuitBreaker) get(key string) *circuit {
	c, ok := cb.circuits[key]
	if !ok {
		c = &circuit{state: StateClosed}
		cb.circuits[key] = c
	}
	return c
}

func (cb *CircuitBreaker) set(key string, c *circuit, s State) {
	c.state = s
	circuitState.WithLabelValues(key).Set(float64(s))
}

// AllowRequest reports whether a call for key may proceed. An open circuit
// whose timeout has elapsed moves to half open and lets the call through.
func (cb *CircuitBreaker) AllowRequest(key string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	if c.state != StateOpen {
		return true
	}
	if cb.now().Before(c.openUntil) {
		return false
	}
	c.successes = 0
	cb.set(key, c, StateHalfOpen)
	return true
}

// RecordFailure records a failed call for key.
func (cb *CircuitBreaker) RecordFailure(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	switch c.state {
	case StateClosed:
		c.failures++
		if c.failures >= cb.cfg.FailureThreshold {
			c.openUntil = cb.now().Add(cb.cfg.ResetTimeout)
			cb.set(key, c, StateOpen)
		}
	case StateHalfOpen:
		c.successes = 0
		c.openUntil = cb.now().Add(cb.cfg.ResetTimeout)
		cb.set(key, c, StateOpen)
	}
}

// RecordSuccess records a successful call for key.
func (cb *CircuitBreaker) RecordSuccess(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(key)
	switch c.state {
	case StateClosed:
		c.failures = 0
	case StateHalfOpen:
		c.successes++
		if c.successes >= cb.cfg.HalfOpenSuccesses {
			c.failures = 0
			c.successes = 0
			cb.set(key, c, StateClosed)
		}
	}
}

// Status returns the state and consecutive failure count for key without
// changing it.
func (cb *CircuitBreaker) Status(key string) (State, int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[key]
	if !ok {
		return StateClosed, 0
	}
	return c.state, c.failures
}
