package filesoup_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/krisalay/filesoup"
	"github.com/krisalay/filesoup/shard"
)

func newBenchmarkRegistry(b *testing.B, backend shard.Backend) *filesoup.ShardedRegistry {
	r, err := filesoup.NewShardedRegistry(16, backend, nil)
	if err != nil {
		b.Fatalf("new registry: %v", err)
	}
	return r
}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkRegistryGetHit(b *testing.B) {
	r := newBenchmarkRegistry(b, shard.Map)
	r.Insert("key", "magnet:?xt=1")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Get("key")
	}
}

func BenchmarkRegistryInsert(b *testing.B) {
	for _, backend := range []shard.Backend{shard.Map, shard.MemDB} {
		b.Run(string(backend), func(b *testing.B) {
			r := newBenchmarkRegistry(b, backend)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				r.Insert(fmt.Sprintf("key-%d", i), "magnet:?xt=1")
			}
		})
	}
}

//
// ================= PARALLEL BENCH =================
//

func BenchmarkRegistryParallelGet(b *testing.B) {
	r := newBenchmarkRegistry(b, shard.Map)
	for i := 0; i < 1000; i++ {
		r.Insert(fmt.Sprintf("key-%d", i), "magnet:?xt=1")
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			r.Get(fmt.Sprintf("key-%d", i%1000))
			i++
		}
	})
}

//
// ================= SWEEP BENCH =================
//

func BenchmarkRegistryEvictIdleNothingIdle(b *testing.B) {
	r := newBenchmarkRegistry(b, shard.Map)
	for i := 0; i < 10000; i++ {
		r.Insert(fmt.Sprintf("key-%d", i), "magnet:?xt=1")
	}
	now := r.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.EvictIdle(time.Hour, now)
	}
}
