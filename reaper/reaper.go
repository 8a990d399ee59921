// Package reaper runs the background sweep that drops idle entries.
package reaper

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/krisalay/filesoup/api"
)

const (
	DefaultInterval = 10 * time.Second
	DefaultMaxIdle  = 10 * time.Minute
)

// SweepFunc is told how many entries a sweep removed.
// It runs on the reaper goroutine after the registry locks are released.
type SweepFunc func(removed int, at time.Time)

// Options configures a Reaper. Zero values select the defaults.
type Options struct {
	Interval time.Duration
	MaxIdle  time.Duration
	Clock    clockwork.Clock
	OnSweep  SweepFunc
}

/*
Reaper periodically asks the registry to evict idle entries.

The reaper holds the registry by handle only; handlers keep using it
directly while the reaper runs.
*/
type Reaper struct {
	reg      api.Evictor
	interval time.Duration
	maxIdle  time.Duration
	clock    clockwork.Clock
	onSweep  SweepFunc

	// mu guards cancel; wg tracks the goroutine started by Start.
	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a stopped Reaper sweeping reg. Call Run or Start to begin.
func New(reg api.Evictor, opts Options) *Reaper {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxIdle <= 0 {
		opts.MaxIdle = DefaultMaxIdle
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Reaper{
		reg:      reg,
		interval: opts.Interval,
		maxIdle:  opts.MaxIdle,
		clock:    opts.Clock,
		onSweep:  opts.OnSweep,
	}
}

// Sweep runs one eviction pass now and returns the number of removed entries.
func (r *Reaper) Sweep() int {
	now := r.clock.Now()
	n := r.reg.EvictIdle(r.maxIdle, now)
	if r.onSweep != nil {
		r.onSweep(n, now)
	}
	return n
}

/*
Run sweeps on every tick until ctx is cancelled, then returns ctx.Err().

The first sweep happens one interval after Run starts. Ticks that pile up
while a sweep is running are coalesced, never queued.
*/
func (r *Reaper) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			r.Sweep()
		}
	}
}

/*
Start runs the loop in its own goroutine. Calling Start on a running
reaper does nothing.
*/
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_ = r.Run(ctx)
	}()
}

/*
Stop cancels the loop started by Start and waits for it to exit.
After Stop returns no sweep is in progress. Stop is idempotent.
*/
func (r *Reaper) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}
