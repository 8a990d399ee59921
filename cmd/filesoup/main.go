package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/krisalay/filesoup"
	"github.com/krisalay/filesoup/config"
	"github.com/krisalay/filesoup/directory"
	"github.com/krisalay/filesoup/engine"
	"github.com/krisalay/filesoup/expiration"
	"github.com/krisalay/filesoup/idgen"
	"github.com/krisalay/filesoup/internal/httpapi"
	"github.com/krisalay/filesoup/internal/logger"
	"github.com/krisalay/filesoup/internal/mcptools"
	"github.com/krisalay/filesoup/metrics"
	"github.com/krisalay/filesoup/reaper"
)

const version = "0.1.0"

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "filesoup:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LogPath, logger.ParseLevel(cfg.LogLevel)); err != nil {
		return err
	}
	defer logger.Close()

	// ---------------- Registry ----------------
	clock := clockwork.NewRealClock()
	counters := &metrics.Counters{}
	eng := engine.New(clock, expiration.IdleTimeout{}, counters)

	reg, err := filesoup.NewShardedRegistry(cfg.Shards, cfg.Store, eng)
	if err != nil {
		return err
	}

	ids, err := idgen.New(idgen.Options{Length: cfg.IDLength, Separator: cfg.IDSeparator})
	if err != nil {
		return err
	}

	dir := directory.New(reg, ids, directory.Options{
		MaxPayloadLength: cfg.MaxPayloadLength,
		CollisionRetries: cfg.CollisionRetries,
		OnCollision: func(id string) {
			logger.Warnf("identifier collision on %s", id)
		},
	})

	// ---------------- Reaper ----------------
	rp := reaper.New(reg, reaper.Options{
		Interval: cfg.SweepInterval,
		MaxIdle:  cfg.MaxIdle,
		Clock:    clock,
		OnSweep: func(removed int, _ time.Time) {
			counters.Sweep()
			if removed > 0 {
				logger.Debugf("sweep removed %d idle entries, %d left", removed, reg.Len())
			}
		},
	})

	// ---------------- HTTP ----------------
	h := httpapi.New(dir, httpapi.Options{
		MaxPayloadLength: cfg.MaxPayloadLength,
		NotFound:         directory.NotFound,
		Stats:            counters.Snapshot,
	})
	h.Handle("/mcp", mcptools.NewHTTPHandler(mcptools.NewServer(dir, version)))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Infof("filesoup %s listening on %s (store=%s shards=%d max-idle=%s sweep=%s id-space=%.0f)",
		version, cfg.Addr, cfg.Store, cfg.Shards, cfg.MaxIdle, cfg.SweepInterval, ids.Space())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := rp.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server error: %v", err)
		return err
	}
	logger.Infof("stopped cleanly")
	return nil
}
