package types

// This file defines how the registry reports what it is doing.

/*
Metrics is the set of events the registry emits.
Each method is called while the shard lock is held, so implementations
MUST be cheap and must never block.
*/
type Metrics interface {

	// Insert is called when a new id is stored.
	Insert()

	// Overwrite is called when an insert replaced an existing entry with the same id.
	Overwrite()

	// Hit is called when a lookup found the id.
	Hit()

	// Miss is called when a lookup did not find the id.
	Miss()

	// Evict is called once per shard sweep with the number of entries removed.
	Evict(n int)
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.
The registry uses it when no metrics sink is configured, so the rest of the
code never has to check for nil.
*/
type NoopMetrics struct{}

func (NoopMetrics) Insert()    {}
func (NoopMetrics) Overwrite() {}
func (NoopMetrics) Hit()       {}
func (NoopMetrics) Miss()      {}
func (NoopMetrics) Evict(int)  {}
