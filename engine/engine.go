package engine

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/krisalay/filesoup/expiration"
	"github.com/krisalay/filesoup/types"
)

/*
Engine is the "brain" of the registry.
It is responsible for the "behavior" of entries, NOT storage.
This acts as the policy layer.

It decides:
- What time it is
- How timestamps change on reads and writes
- When an entry counts as idle
- How metrics are recorded

It does NOT:
- Store data
- Handle sharding
- Handle locking
*/
type Engine struct {

	// Clock is the source of every "now" the registry uses.
	// The real clock returns time.Now() values, which carry a monotonic reading,
	// so idle ages are immune to wall-clock adjustments.
	Clock clockwork.Clock

	// Expiration controls how entries age.
	Expiration expiration.Strategy

	// Metrics is how we keep track of what the registry is doing.
	Metrics types.Metrics
}

/*
New creates an Engine. Nil arguments are replaced with the defaults:
the real clock, IdleTimeout and NoopMetrics.
*/
func New(clock clockwork.Clock, exp expiration.Strategy, metrics types.Metrics) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if exp == nil {
		exp = expiration.IdleTimeout{}
	}
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}

	return &Engine{
		Clock:      clock,
		Expiration: exp,
		Metrics:    metrics,
	}
}

// Now returns the current instant of the configured clock.
func (e *Engine) Now() time.Time {
	return e.Clock.Now()
}

// NewEntry builds a fresh entry stamped with the current time.
func (e *Engine) NewEntry(id, payload string) types.Entry {
	ent := types.Entry{ID: id, Payload: payload}
	e.Expiration.OnWrite(&ent, e.Now())
	return ent
}

// OnRead is called every time the registry successfully returns an entry.
func (e *Engine) OnRead(ent *types.Entry) {
	e.Expiration.OnAccess(ent, e.Now())
	e.Metrics.Hit()
}

// IsIdle reports whether ent may be evicted at now.
func (e *Engine) IsIdle(ent types.Entry, maxIdle time.Duration, now time.Time) bool {
	return e.Expiration.IsIdle(ent, maxIdle, now)
}
