package cache

import (
	"context"
	"testing"

	"github.com/IvanBrykalov/fftplan/device"
	"github.com/IvanBrykalov/fftplan/engine"
	"github.com/IvanBrykalov/fftplan/engine/enginetest"
)

// benchmarkLookup measures the hit path for a warm cache with a handful of
// resident keys. RunParallel spawns GOMAXPROCS goroutines.
func benchmarkLookup(b *testing.B, dir engine.Direction) {
	c := New(Options{Engine: enginetest.New(), Registry: device.NewRegistry(nil)})
	b.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	lengths := []int{256, 512, 1024, 2048, 4096}
	lookup := c.Forward
	in, out := engine.Float64, engine.Complex128
	if dir == engine.Inverse {
		lookup = c.Inverse
		in, out = out, in
	}
	for _, n := range lengths {
		if _, err := lookup(ctx, in, out, n); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := lookup(ctx, in, out, lengths[i%len(lengths)]); err != nil {
				b.Error(err)
				return
			}
			i++
		}
	})
}

func BenchmarkForwardHit(b *testing.B) { benchmarkLookup(b, engine.Forward) }
func BenchmarkInverseHit(b *testing.B) { benchmarkLookup(b, engine.Inverse) }
