package engine_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/krisalay/filesoup/engine"
	"github.com/krisalay/filesoup/expiration"
	"github.com/krisalay/filesoup/types"
)

func TestNewFillsDefaults(t *testing.T) {
	e := engine.New(nil, nil, nil)

	assert.NotNil(t, e.Clock)
	assert.Equal(t, expiration.IdleTimeout{}, e.Expiration)
	assert.Equal(t, types.NoopMetrics{}, e.Metrics)
}

func TestEngineStampsEntries(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(t0)
	e := engine.New(clock, nil, nil)

	ent := e.NewEntry("kale", "magnet:?xt=1")
	assert.Equal(t, t0, ent.InsertedAt)
	assert.False(t, ent.Accessed())

	clock.Advance(time.Minute)
	e.OnRead(&ent)
	assert.Equal(t, t0.Add(time.Minute), ent.LastAccessedAt)

	assert.False(t, e.IsIdle(ent, 2*time.Minute, clock.Now().Add(time.Minute)))
	assert.True(t, e.IsIdle(ent, 2*time.Minute, clock.Now().Add(2*time.Minute)))
}
