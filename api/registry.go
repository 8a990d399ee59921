package api

import (
	"time"

	"github.com/krisalay/filesoup/types"
)

/*
Registry defines the PUBLIC API of the expiring directory.
This is a contract that guarantees certain behaviors, without exposing internals.
Sharding, locking, storage backends and the clock are hidden behind this interface.

Every method is safe for concurrent use. Operations on the same id are
linearizable: an operation that starts after another one on the same id has
returned observes its effects.
*/
type Registry interface {

	/*
		Insert stores payload under id and returns a copy of the stored entry.

		BEHAVIOR:
		---------
		- InsertedAt is set to now
		- LastAccessedAt starts absent
		- An existing entry with the same id is REPLACED, not merged

		Insert never fails.
	*/
	Insert(id, payload string) types.Entry

	/*
		Get looks up id.

		BEHAVIOR:
		---------
		1. If the id is absent:
		   - Returns false. This is a normal outcome, not an error.

		2. If the id is present:
		   - Sets LastAccessedAt to now (never earlier than its previous value)
		   - Returns a copy that already reflects the new timestamp

		The touch and the read happen as one step.
	*/
	Get(id string) (types.Entry, bool)

	Evictor

	// Len returns the number of live entries.
	Len() int
}

// Evictor is the narrow view the reaper needs.
type Evictor interface {

	/*
		EvictIdle removes every entry whose idle age at now is >= maxIdle
		and returns how many were removed.

		now is supplied by the caller so eviction timing can be tested
		deterministically.
	*/
	EvictIdle(maxIdle time.Duration, now time.Time) int
}
