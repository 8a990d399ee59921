package shard

import "hash/fnv"

/*
This file decides HOW an id is assigned to a shard.
If every request went to the same shard, that shard would become a bottleneck.
*/

// Selector decides which shard handles a given id.
// It must always return the same shard for the same id, otherwise
// operations on one key would stop being serialized.
type Selector interface {
	Select(string, []*Shard) *Shard
}

// HashSelector picks a shard by hashing the id.
type HashSelector struct{}

// hash converts a string key into a number. FNV is a fast, non-cryptographic hash commonly used in systems like this.
func hash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Select chooses the shard for a given id.
func (HashSelector) Select(id string, shards []*Shard) *Shard {
	if len(shards) == 1 {
		return shards[0]
	}
	return shards[hash(id)%uint32(len(shards))]
}
