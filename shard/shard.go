package shard

import (
	"sync"
)

/*
This file defines what a "Shard" is. A shard is a small, independent piece of the registry.
Instead of having: One big map and one big lock
We split the keyspace into many shards. Each shard:
- Holds some portion of the entries
- Has its own lock

A registry with a single shard is the plain "one mutex around one map" design.
*/

// Shard pairs a store with the mutex that serializes every call on it.
type Shard struct {

	// Store holds the actual id → entry data for this shard.
	Store ShardStore

	// Mu guards Store. It is held for the whole critical section of every
	// registry operation touching this shard, reads included, because a read
	// also moves the idle clock of the entry.
	Mu sync.Mutex
}

// NewShard wraps store in an unlocked Shard.
func NewShard(store ShardStore) *Shard {
	return &Shard{Store: store}
}
