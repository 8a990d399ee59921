package types

import "time"

/*
Entry is one record of the directory.

ID, Payload and InsertedAt are set once when the entry is created and never
change afterwards. LastAccessedAt is the zero time until the first successful
read and only moves forward after that.

Entries handed out by the registry are copies. Mutating one has no effect on
the stored record.
*/
type Entry struct {
	ID             string    `json:"id"`
	Payload        string    `json:"magnetUri"`
	InsertedAt     time.Time `json:"-"`
	LastAccessedAt time.Time `json:"-"` // zero => never read
}

// Accessed reports whether the entry has been read at least once.
func (e Entry) Accessed() bool {
	return !e.LastAccessedAt.IsZero()
}

// IdleSince returns the instant the idle clock of the entry started:
// the last read if there was one, the insertion time otherwise.
func (e Entry) IdleSince() time.Time {
	if e.Accessed() {
		return e.LastAccessedAt
	}
	return e.InsertedAt
}

// IdleAge returns how long the entry has been idle at now.
// Times taken from a clock with a monotonic reading are compared on that
// reading, so wall-clock jumps do not affect the result.
func (e Entry) IdleAge(now time.Time) time.Duration {
	return now.Sub(e.IdleSince())
}
