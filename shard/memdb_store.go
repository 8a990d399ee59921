package shard

import (
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/krisalay/filesoup/types"
)

const entryTable = "entries"

// record is the row stored in memdb. The key carries a prefix so that
// the empty id is still a valid, non-missing index value.
type record struct {
	Key   string
	Entry types.Entry
}

func recordKey(id string) string { return "id:" + id }

var entrySchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		entryTable: {
			Name: entryTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Key"},
				},
			},
		},
	},
}

/*
memdbStore is a ShardStore on top of go-memdb.

memdb requires that stored objects are never modified in place, so every
write inserts a fresh record. Readers get a copy of the embedded Entry.
memdb has no cheap row count, so the size is tracked next to it.
*/
type memdbStore struct {
	db   *memdb.MemDB
	size int
}

// NewMemDBStore returns an empty go-memdb backed store.
func NewMemDBStore() (ShardStore, error) {
	db, err := memdb.NewMemDB(entrySchema)
	if err != nil {
		return nil, fmt.Errorf("shard: create memdb: %w", err)
	}
	return &memdbStore{db: db}, nil
}

func (s *memdbStore) Get(id string) (types.Entry, bool) {
	txn := s.db.Txn(false)
	raw, err := txn.First(entryTable, "id", recordKey(id))
	if err != nil || raw == nil {
		return types.Entry{}, false
	}
	return raw.(*record).Entry, true
}

// Put panics if memdb rejects the insert. With the fixed schema and a
// non-empty key that cannot happen, and the shard lock is held, so there is
// no way to report a partial write.
func (s *memdbStore) Put(ent types.Entry) bool {
	txn := s.db.Txn(true)
	key := recordKey(ent.ID)
	existing, err := txn.First(entryTable, "id", key)
	if err != nil {
		txn.Abort()
		panic(fmt.Sprintf("shard: memdb lookup %q: %v", ent.ID, err))
	}
	if err := txn.Insert(entryTable, &record{Key: key, Entry: ent}); err != nil {
		txn.Abort()
		panic(fmt.Sprintf("shard: memdb insert %q: %v", ent.ID, err))
	}
	txn.Commit()

	if existing != nil {
		return true
	}
	s.size++
	return false
}

func (s *memdbStore) Delete(id string) {
	txn := s.db.Txn(true)
	if err := txn.Delete(entryTable, &record{Key: recordKey(id)}); err != nil {
		// memdb.ErrNotFound: nothing to delete.
		txn.Abort()
		return
	}
	txn.Commit()
	s.size--
}

func (s *memdbStore) Len() int {
	return s.size
}

// Range iterates a read snapshot, so callers may delete the visited ids
// after Range returns.
func (s *memdbStore) Range(fn func(types.Entry) bool) {
	txn := s.db.Txn(false)
	it, err := txn.Get(entryTable, "id")
	if err != nil {
		panic(fmt.Sprintf("shard: memdb scan: %v", err))
	}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		if !fn(raw.(*record).Entry) {
			return
		}
	}
}
