// Package circuitbreaker stops calling a failing upstream for a cool-down period.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the state of the circuit breaker.
type State int

const (
	// Closed is the initial state where requests are allowed.
	Closed State = iota
	// Open state is when the circuit has tripped and requests are blocked.
	Open
	// HalfOpen lets trial requests through to test recovery.
	HalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Settings configures a Breaker.
type Settings struct {
	Name             string
	FailureThreshold uint32        // consecutive failures that trip the circuit
	SuccessThreshold uint32        // consecutive half-open successes that close it
	Timeout          time.Duration // time spent open before a trial call
	// OnStateChange is called with the lock released.
	OnStateChange func(name string, from, to State)
	// IsFailure decides which errors count against the circuit. Defaults to err != nil.
	IsFailure func(err error) bool
}

// Breaker is a consecutive-failure circuit breaker.
type Breaker struct {
	settings  Settings
	mutex     sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
	now       func() time.Time
}

// New creates a Breaker. Zero thresholds default to 5 failures and 1 success, a zero
// timeout to 30 seconds.
func New(s Settings) *Breaker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.SuccessThreshold == 0 {
		s.SuccessThreshold = 1
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.IsFailure == nil {
		s.IsFailure = func(err error) bool { return err != nil }
	}
	return &Breaker{settings: s, state: Closed, now: time.Now}
}

// State returns the current state, moving Open to HalfOpen once the timeout elapsed.
func (cb *Breaker) State() State {
	cb.mutex.Lock()
	from, to := cb.advance()
	cb.mutex.Unlock()
	cb.notify(from, to)
	return to
}

// Execute runs req unless the circuit is open.
func (cb *Breaker) Execute(req func() error) error {
	cb.mutex.Lock()
	from, to := cb.advance()
	cb.mutex.Unlock()
	cb.notify(from, to)

	if to == Open {
		return ErrCircuitOpen
	}
	err := req()
	cb.record(err)
	return err
}

// Do is the typed form of Execute.
func Do[T any](cb *Breaker, req func() (T, error)) (T, error) {
	var res T
	err := cb.Execute(func() error {
		var err error
		res, err = req()
		return err
	})
	return res, err
}

// advance must be called with the lock held.
func (cb *Breaker) advance() (State, State) {
	from := cb.state
	if cb.state == Open && cb.now().Sub(cb.openedAt) > cb.settings.Timeout {
		cb.state = HalfOpen
		cb.successes = 0
	}
	return from, cb.state
}

func (cb *Breaker) record(err error) {
	cb.mutex.Lock()
	from := cb.state
	if cb.settings.IsFailure(err) {
		switch cb.state {
		case HalfOpen:
			cb.trip()
		case Closed:
			cb.failures++
			if cb.failures >= cb.settings.FailureThreshold {
				cb.trip()
			}
		}
	} else {
		switch cb.state {
		case HalfOpen:
			cb.successes++
			if cb.successes >= cb.settings.SuccessThreshold {
				cb.state = Closed
				cb.failures = 0
				cb.successes = 0
			}
		case Closed:
			cb.failures = 0
		}
	}
	to := cb.state
	cb.mutex.Unlock()
	cb.notify(from, to)
}

func (cb *Breaker) trip() {
	cb.state = Open
	cb.openedAt = cb.now()
	cb.failures = 0
	cb.successes = 0
}

func (cb *Breaker) notify(from, to State) {
	if from != to && cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.settings.Name, from, to)
	}
}
