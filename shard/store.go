package shard

import (
	"fmt"

	"github.com/krisalay/filesoup/types"
)

/*
This file defines how entries are actually stored inside a shard.

A ShardStore is NOT safe for concurrent use. The owning Shard's mutex
serializes every call, which also means no method may fail or block.
*/

// ShardStore is the interface used by a shard to store and retrieve entries.
// Entries go in and come out by value.
type ShardStore interface {

	// Get retrieves an entry by id.
	Get(string) (types.Entry, bool)

	// Put inserts or replaces an entry. It reports whether an entry with the same id existed.
	Put(types.Entry) bool

	// Delete removes an entry.
	Delete(string)

	// Len returns how many entries are stored.
	Len() int

	// Range calls fn for every stored entry until fn returns false.
	// fn must not modify the store.
	Range(fn func(types.Entry) bool)
}

// Backend names a ShardStore implementation.
type Backend string

const (
	// Map keeps entries in a plain Go map.
	Map Backend = "map"

	// MemDB keeps entries in a go-memdb table. Every write is a committed transaction.
	MemDB Backend = "memdb"
)

// NewStore is a small factory function.
// Given a Backend, it creates the matching store.
func NewStore(b Backend) (ShardStore, error) {
	switch b {
	case Map, "":
		return NewMapStore(), nil
	case MemDB:
		return NewMemDBStore()
	default:
		return nil, fmt.Errorf("shard: unknown store backend %q", b)
	}
}

// mapStore is the default ShardStore.
type mapStore struct {
	data map[string]types.Entry
}

// NewMapStore returns an empty map backed store.
func NewMapStore() ShardStore {
	return &mapStore{data: make(map[string]types.Entry)}
}

func (s *mapStore) Get(id string) (types.Entry, bool) {
	ent, ok := s.data[id]
	return ent, ok
}

func (s *mapStore) Put(ent types.Entry) bool {
	_, existed := s.data[ent.ID]
	s.data[ent.ID] = ent
	return existed
}

func (s *mapStore) Delete(id string) {
	delete(s.data, id)
}

func (s *mapStore) Len() int {
	return len(s.data)
}

func (s *mapStore) Range(fn func(types.Entry) bool) {
	for _, ent := range s.data {
		if !fn(ent) {
			return
		}
	}
}
