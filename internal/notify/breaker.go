package notify

import (
	"sync"
	"time"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Breaker trips after failThreshold consecutive failures and stays open for
// openFor. After that a single probe is let through; its outcome closes or
// re-opens the breaker.
type Breaker struct {
	mu            sync.Mutex
	state         breakerState
	fails         int
	failThreshold int
	openFor       time.Duration
	reopenAt      time.Time
	probing       bool
	now           func() time.Time
}

func NewBreaker(failThreshold int, openFor time.Duration) *Breaker {
	if failThreshold <= 0 {
		failThreshold = 3
	}
	if openFor <= 0 {
		openFor = 15 * time.Second
	}
	return &Breaker{failThreshold: failThreshold, openFor: openFor, now: time.Now}
}

// Ready reports whether Allow would currently succeed, without side effects.
func (b *Breaker) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		return !b.probing && b.now().After(b.reopenAt)
	case stateHalfOpen:
		return !b.probing
	default:
		return true
	}
}

// Allow reserves the right to make a call. In the open state it turns the
// breaker half-open and hands out the single probe slot.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		if b.probing || !b.now().After(b.reopenAt) {
			return false
		}
		b.state = stateHalfOpen
		b.probing = true
		return true
	case stateHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

// Record feeds the outcome of an allowed call back into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probing = false
	if err == nil {
		b.fails = 0
		b.state = stateClosed
		return
	}

	b.fails++
	if b.state == stateHalfOpen || b.fails >= b.failThreshold {
		b.state = stateOpen
		b.reopenAt = b.now().Add(b.openFor)
	}
}

func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}
