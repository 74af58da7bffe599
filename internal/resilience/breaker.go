// Package resilience provides degradation primitives for external service calls.
package resilience

import (
	"sync"
	"sync/atomic"
)

// Breaker is a one-way circuit breaker. Once tripped it stays tripped for
// the lifetime of the process; there is no reset, automatic or manual.
// Callers trip it only on known-terminal failure modes (bad credentials,
// exhausted quota, a down backend), never on transient errors.
//
// Safe for concurrent use across workers sharing one breaker.
type Breaker struct {
	tripped atomic.Bool
	once    sync.Once
	onTrip  func()
}

// NewBreaker creates a closed breaker. onTrip, if non-nil, runs exactly once
// on the first Trip call.
func NewBreaker(onTrip func()) *Breaker {
	return &Breaker{onTrip: onTrip}
}

// Tripped reports whether the breaker has been tripped.
func (b *Breaker) Tripped() bool {
	return b.tripped.Load()
}

// Trip permanently opens the breaker. Subsequent calls are no-ops.
func (b *Breaker) Trip() {
	b.once.Do(func() {
		b.tripped.Store(true)
		if b.onTrip != nil {
			b.onTrip()
		}
	})
}
