package reaper_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/filesoup"
	"github.com/krisalay/filesoup/engine"
	"github.com/krisalay/filesoup/reaper"
	"github.com/krisalay/filesoup/shard"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type sweep struct {
	removed int
	at      time.Time
}

func setup(t *testing.T) (*filesoup.ShardedRegistry, clockwork.FakeClock, *reaper.Reaper, chan sweep) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(epoch)
	reg, err := filesoup.NewShardedRegistry(4, shard.Map, engine.New(clock, nil, nil))
	require.NoError(t, err)

	sweeps := make(chan sweep, 16)
	r := reaper.New(reg, reaper.Options{
		Interval: 10 * time.Second,
		MaxIdle:  10 * time.Minute,
		Clock:    clock,
		OnSweep: func(removed int, at time.Time) {
			sweeps <- sweep{removed, at}
		},
	})
	return reg, clock, r, sweeps
}

func waitSweep(t *testing.T, sweeps <-chan sweep) sweep {
	t.Helper()
	select {
	case s := <-sweeps:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for sweep")
		return sweep{}
	}
}

func TestSweepUsesClockAndMaxIdle(t *testing.T) {
	reg, clock, r, sweeps := setup(t)
	reg.Insert("kale", "magnet:?xt=1")

	clock.Advance(10*time.Minute - time.Second)
	assert.Equal(t, 0, r.Sweep())
	assert.Equal(t, sweep{0, epoch.Add(10*time.Minute - time.Second)}, <-sweeps)

	clock.Advance(time.Second)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 0, reg.Len())
}

func TestRunSweepsOnTicks(t *testing.T) {
	reg, clock, r, sweeps := setup(t)
	reg.Insert("kale", "magnet:?xt=1")
	reg.Insert("corn", "magnet:?xt=2")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	// Wait for the ticker to be registered on the fake clock.
	clock.BlockUntil(1)

	clock.Advance(10 * time.Second)
	s := waitSweep(t, sweeps)
	assert.Equal(t, 0, s.removed)

	reg.Get("corn")

	// The ticker fires many times during Advance; the first sweep still
	// reads the clock after Advance has finished.
	clock.Advance(10*time.Minute - 10*time.Second)
	s = waitSweep(t, sweeps)
	assert.Equal(t, 1, s.removed)
	assert.Equal(t, epoch.Add(10*time.Minute), s.at)

	_, ok := reg.Get("corn")
	assert.True(t, ok, "entry read after insertion must survive")
	_, ok = reg.Get("kale")
	assert.False(t, ok)
}

func TestRunStopsOnCancel(t *testing.T) {
	_, _, r, _ := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStartStopIsIdempotent(t *testing.T) {
	_, clock, r, _ := setup(t)

	r.Start(context.Background())
	r.Start(context.Background())
	clock.BlockUntil(1)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Stop()
		}()
	}
	wg.Wait()
	r.Stop()
}

type countingEvictor struct {
	mu      sync.Mutex
	maxIdle time.Duration
}

func (c *countingEvictor) EvictIdle(maxIdle time.Duration, _ time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxIdle = maxIdle
	return 0
}

func TestDefaults(t *testing.T) {
	ev := &countingEvictor{}
	r := reaper.New(ev, reaper.Options{})
	r.Sweep()
	assert.Equal(t, reaper.DefaultMaxIdle, ev.maxIdle)
}
