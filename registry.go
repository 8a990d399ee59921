package filesoup

import (
	"fmt"
	"time"

	"github.com/krisalay/filesoup/api"
	"github.com/krisalay/filesoup/engine"
	"github.com/krisalay/filesoup/shard"
	"github.com/krisalay/filesoup/types"
)

var _ api.Registry = (*ShardedRegistry)(nil)

/*
ShardedRegistry is the main registry implementation.
This struct is the orchestrator that connects:
- shards
- the engine (clock, idle policy, metrics)
*/
type ShardedRegistry struct {
	// shards are the actual storage units. Each shard is an independent locked map.
	shards []*shard.Shard

	// engine contains the "rules" of the registry: clock, idle policy, metrics.
	engine *engine.Engine

	// selector decides which shard an id goes to.
	selector shard.Selector
}

// NewShardedRegistry builds a registry with n shards, each backed by a store of the given backend.
// n < 1 is treated as 1. A nil engine gets the defaults of engine.New.
func NewShardedRegistry(n int, backend shard.Backend, eng *engine.Engine) (*ShardedRegistry, error) {
	if n < 1 {
		n = 1
	}
	if eng == nil {
		eng = engine.New(nil, nil, nil)
	}

	s := make([]*shard.Shard, n)
	for i := range s {
		store, err := shard.NewStore(backend)
		if err != nil {
			return nil, fmt.Errorf("filesoup: shard %d: %w", i, err)
		}
		s[i] = shard.NewShard(store)
	}

	return &ShardedRegistry{
		shards:   s,
		engine:   eng,
		selector: shard.HashSelector{},
	}, nil
}

// New returns a single-shard, map-backed registry using the real clock.
func New() *ShardedRegistry {
	r, _ := NewShardedRegistry(1, shard.Map, nil)
	return r
}

/*
Insert stores payload under id, replacing whatever was there.
*/
func (r *ShardedRegistry) Insert(id, payload string) types.Entry {
	sh := r.selector.Select(id, r.shards)

	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	ent := r.engine.NewEntry(id, payload)
	if sh.Store.Put(ent) {
		r.engine.Metrics.Overwrite()
	} else {
		r.engine.Metrics.Insert()
	}
	return ent
}

/*
InsertIfAbsent stores payload under id only if the id is free.
It returns the stored entry and true, or the existing entry and false.
An existing entry is not touched.
*/
func (r *ShardedRegistry) InsertIfAbsent(id, payload string) (types.Entry, bool) {
	sh := r.selector.Select(id, r.shards)

	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	if cur, ok := sh.Store.Get(id); ok {
		return cur, false
	}

	ent := r.engine.NewEntry(id, payload)
	sh.Store.Put(ent)
	r.engine.Metrics.Insert()
	return ent, true
}

/*
Get retrieves an entry and moves its idle clock forward.
*/
func (r *ShardedRegistry) Get(id string) (types.Entry, bool) {
	sh := r.selector.Select(id, r.shards)

	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	ent, ok := sh.Store.Get(id)
	if !ok {
		r.engine.Metrics.Miss()
		return types.Entry{}, false
	}

	r.engine.OnRead(&ent)
	sh.Store.Put(ent)
	return ent, true
}

/*
EvictIdle sweeps every shard and drops idle entries.

Shards are swept one at a time. While a shard is swept, no insert or get on
any of its ids can run, so an entry is either touched before the sweep sees
it or removed before the touch happens.
*/
func (r *ShardedRegistry) EvictIdle(maxIdle time.Duration, now time.Time) int {
	total := 0
	for _, sh := range r.shards {
		total += r.evictShard(sh, maxIdle, now)
	}
	return total
}

func (r *ShardedRegistry) evictShard(sh *shard.Shard, maxIdle time.Duration, now time.Time) int {
	sh.Mu.Lock()
	defer sh.Mu.Unlock()

	var idle []string
	sh.Store.Range(func(ent types.Entry) bool {
		if r.engine.IsIdle(ent, maxIdle, now) {
			idle = append(idle, ent.ID)
		}
		return true
	})

	// Collect first, delete after: stores do not allow writes during Range.
	for _, id := range idle {
		sh.Store.Delete(id)
	}
	if len(idle) > 0 {
		r.engine.Metrics.Evict(len(idle))
	}
	return len(idle)
}

/*
Len returns the number of live entries across all shards.
The count is exact per shard but shards are read one after another.
*/
func (r *ShardedRegistry) Len() int {
	n := 0
	for _, sh := range r.shards {
		sh.Mu.Lock()
		n += sh.Store.Len()
		sh.Mu.Unlock()
	}
	return n
}

// Now returns the current instant of the registry's clock.
func (r *ShardedRegistry) Now() time.Time {
	return r.engine.Now()
}
