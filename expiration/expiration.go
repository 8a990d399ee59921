// This file defines how entries age and when they become idle.

package expiration

import (
	"time"

	"github.com/krisalay/filesoup/types"
)

/*
Strategy is the interface that all expiration rules must follow. Instead of hard-coding
the idle rules into the registry, we define a strategy so the aging behavior can be swapped easily.

All methods are called with the owning shard locked.
*/
type Strategy interface {

	// IsIdle reports whether the entry has been idle for at least maxIdle at now.
	IsIdle(ent types.Entry, maxIdle time.Duration, now time.Time) bool

	// OnAccess is called whenever an entry is read successfully.
	OnAccess(ent *types.Entry, now time.Time)

	// OnWrite is called whenever an entry is created or replaced.
	OnWrite(ent *types.Entry, now time.Time)
}
