package main

import (
	"context"
	"flag"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/krisalay/filesoup"
	"github.com/krisalay/filesoup/engine"
	"github.com/krisalay/filesoup/idgen"
	"github.com/krisalay/filesoup/metrics"
	"github.com/krisalay/filesoup/reaper"
	"github.com/krisalay/filesoup/shard"
)

// ================= BENCHMARK =================

func main() {
	shards := flag.Int("shards", 16, "number of shards")
	store := flag.String("store", "map", "store backend: map or memdb")
	preload := flag.Int("preload", 100000, "entries inserted before the run")
	goroutines := flag.Int("goroutines", 200, "concurrent readers")
	opsPerG := flag.Int("ops", 5000, "lookups per goroutine")
	flag.Parse()

	if *preload < 1 {
		fmt.Println("ERROR: -preload must be at least 1")
		return
	}

	fmt.Println("\n================ REGISTRY LOAD BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Shards       :", *shards)
	fmt.Println("Store        :", *store)
	fmt.Println("Preload      :", *preload)
	fmt.Println("Goroutines   :", *goroutines)
	fmt.Println("Ops/Goroutine:", *opsPerG)
	fmt.Println("---------------------------------")

	// ---------------- Registry ----------------
	counters := &metrics.Counters{}
	reg, err := filesoup.NewShardedRegistry(*shards, shard.Backend(*store), engine.New(nil, nil, counters))
	if err != nil {
		fmt.Println("ERROR:", err)
		return
	}

	ids, err := idgen.New(idgen.Options{})
	if err != nil {
		fmt.Println("ERROR:", err)
		return
	}

	// ---------------- Preload ----------------
	fmt.Println("Preloading registry...")
	keys := make([]string, *preload)
	for i := range keys {
		keys[i] = ids.Next()
		reg.Insert(keys[i], fmt.Sprintf("magnet:?xt=urn:btih:%d", i))
	}
	fmt.Printf("Preload complete. %d live entries (%d collisions overwritten).\n",
		reg.Len(), counters.Snapshot().Overwrites)

	// ---------------- Reaper running alongside ----------------
	rp := reaper.New(reg, reaper.Options{
		Interval: 50 * time.Millisecond,
		MaxIdle:  time.Hour,
		OnSweep:  func(int, time.Time) { counters.Sweep() },
	})
	rp.Start(context.Background())

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark...")
	start := time.Now()

	var g errgroup.Group
	var mu sync.Mutex
	misses := 0
	for i := 0; i < *goroutines; i++ {
		g.Go(func() error {
			local := 0
			for j := 0; j < *opsPerG; j++ {
				if _, ok := reg.Get(keys[(i*(*opsPerG)+j)%len(keys)]); !ok {
					local++
				}
			}
			mu.Lock()
			misses += local
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	rp.Stop()

	duration := time.Since(start)
	totalOps := *goroutines * *opsPerG

	snap := counters.Snapshot()
	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Printf("Misses           : %d\n", misses)
	fmt.Printf("Sweeps           : %d\n", snap.Sweeps)
	fmt.Printf("Hit Ratio        : %.4f\n", snap.HitRatio())
	fmt.Println("=========================================")
}
