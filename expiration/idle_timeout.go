package expiration

import (
	"time"

	"github.com/krisalay/filesoup/types"
)

/*
IdleTimeout implements "expire after access": every read pushes the idle clock
of the entry forward. As long as somebody keeps reading an entry it stays alive;
once nobody touches it for maxIdle it becomes eligible for the reaper.
*/
type IdleTimeout struct{}

// IsIdle checks whether the entry has reached maxIdle. The boundary is inclusive.
func (IdleTimeout) IsIdle(ent types.Entry, maxIdle time.Duration, now time.Time) bool {
	return ent.IdleAge(now) >= maxIdle
}

/*
OnAccess records a read. LastAccessedAt never moves backwards: if now is
earlier than the current idle reference (clock skew, a fake clock rewound in a
test) the reference is kept instead.
*/
func (IdleTimeout) OnAccess(ent *types.Entry, now time.Time) {
	if prev := ent.IdleSince(); now.Before(prev) {
		now = prev
	}
	ent.LastAccessedAt = now
}

/*
OnWrite is called when the entry is first written or replaced.
A replaced entry starts over: new insertion time, never read.
*/
func (IdleTimeout) OnWrite(ent *types.Entry, now time.Time) {
	ent.InsertedAt = now
	ent.LastAccessedAt = time.Time{}
}
