package wireclient

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kako-jun/nostr-arena-go/internal/metrics"
)

// circuitRegistry holds one gobreaker.CircuitBreaker per relay URL, following
// the teacher's bus.Service pattern of wrapping a single external dependency
// (there: Redis; here: each relay) behind a named breaker that reports its
// state transitions to Prometheus.
type circuitRegistry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func newCircuitRegistry() *circuitRegistry {
	return &circuitRegistry{breakers: make(map[string]*gobreaker.CircuitBreaker)}
}

func (r *circuitRegistry) get(relay string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.breakers[relay]; ok {
		return cb
	}
	st := gobreaker.Settings{
		Name:        relay,
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			var stateVal float64
			switch to {
			case gobreaker.StateClosed:
				stateVal = 0
			case gobreaker.StateOpen:
				stateVal = 1
			case gobreaker.StateHalfOpen:
				stateVal = 2
			}
			metrics.RelayCircuitState.WithLabelValues(name).Set(stateVal)
		},
	}
	cb := gobreaker.NewCircuitBreaker(st)
	r.breakers[relay] = cb
	return cb
}

// state returns a human-readable circuit state for RelayStatus, without
// tripping a request against the breaker.
func (r *circuitRegistry) state(relay string) string {
	switch r.get(relay).State() {
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// execute runs fn through relay's circuit breaker.
func (r *circuitRegistry) execute(relay string, fn func() (any, error)) (any, error) {
	return r.get(relay).Execute(fn)
}
