// Package metrics counts registry events.
package metrics

import (
	"go.uber.org/atomic"

	"github.com/krisalay/filesoup/types"
)

var _ types.Metrics = (*Counters)(nil)

// Counters is a lock-free types.Metrics implementation.
// The zero value is ready to use.
type Counters struct {
	inserts    atomic.Uint64
	overwrites atomic.Uint64
	hits       atomic.Uint64
	misses     atomic.Uint64
	evictions  atomic.Uint64
	sweeps     atomic.Uint64
}

func (c *Counters) Insert()    { c.inserts.Inc() }
func (c *Counters) Overwrite() { c.overwrites.Inc() }
func (c *Counters) Hit()       { c.hits.Inc() }
func (c *Counters) Miss()      { c.misses.Inc() }

func (c *Counters) Evict(n int) {
	c.evictions.Add(uint64(n))
}

// Sweep records one completed reaper pass. The registry never calls it.
func (c *Counters) Sweep() { c.sweeps.Inc() }

// Snapshot is a point-in-time copy of the counters.
// Fields are read one by one, so they may be off by in-flight events.
type Snapshot struct {
	Inserts    uint64 `json:"inserts"`
	Overwrites uint64 `json:"overwrites"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Evictions  uint64 `json:"evictions"`
	Sweeps     uint64 `json:"sweeps"`
}

// Snapshot copies the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Inserts:    c.inserts.Load(),
		Overwrites: c.overwrites.Load(),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
		Sweeps:     c.sweeps.Load(),
	}
}

// HitRatio returns hits / (hits + misses), or 0 before the first lookup.
func (s Snapshot) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
