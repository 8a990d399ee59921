package expiration_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/krisalay/filesoup/expiration"
	"github.com/krisalay/filesoup/types"
)

func TestIdleTimeoutBoundary(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ent := types.Entry{ID: "a", InsertedAt: t0}
	exp := expiration.IdleTimeout{}

	assert.False(t, exp.IsIdle(ent, time.Minute, t0.Add(59*time.Second)))
	assert.True(t, exp.IsIdle(ent, time.Minute, t0.Add(time.Minute)))
	assert.True(t, exp.IsIdle(ent, time.Minute, t0.Add(2*time.Minute)))
}

func TestIdleTimeoutAccessMovesIdleClock(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ent := types.Entry{ID: "a", InsertedAt: t0}
	exp := expiration.IdleTimeout{}

	exp.OnAccess(&ent, t0.Add(30*time.Second))

	assert.True(t, ent.Accessed())
	assert.Equal(t, t0.Add(30*time.Second), ent.IdleSince())
	assert.False(t, exp.IsIdle(ent, time.Minute, t0.Add(time.Minute)))
}

func TestIdleTimeoutAccessNeverRegresses(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ent := types.Entry{ID: "a", InsertedAt: t0}
	exp := expiration.IdleTimeout{}

	exp.OnAccess(&ent, t0.Add(time.Minute))
	exp.OnAccess(&ent, t0.Add(10*time.Second))
	assert.Equal(t, t0.Add(time.Minute), ent.LastAccessedAt)

	fresh := types.Entry{ID: "b", InsertedAt: t0}
	exp.OnAccess(&fresh, t0.Add(-time.Hour))
	assert.Equal(t, t0, fresh.LastAccessedAt)
}

func TestIdleTimeoutWriteResetsEntry(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ent := types.Entry{ID: "a", InsertedAt: t0, LastAccessedAt: t0.Add(time.Second)}

	expiration.IdleTimeout{}.OnWrite(&ent, t0.Add(time.Hour))

	assert.Equal(t, t0.Add(time.Hour), ent.InsertedAt)
	assert.False(t, ent.Accessed())
}
