package fft

import (
	"context"
	"sync"

	"github.com/IvanBrykalov/fftplan/cache"
	"github.com/IvanBrykalov/fftplan/device"
	"github.com/IvanBrykalov/fftplan/engine"
	"github.com/IvanBrykalov/fftplan/engine/cpu"
)

var (
	defaultOnce       sync.Once
	defaultCache      *cache.PlanCache
	defaultDispatcher *Dispatcher
)

func initDefault() {
	defaultCache = cache.New(cache.Options{
		Engine:   cpu.New(cpu.Options{}),
		Registry: device.Default(),
		Name:     "fft.default",
	})
	defaultDispatcher = New(defaultCache, Options{})
}

// Default returns the process-wide dispatcher. It runs on the CPU engine and
// its plan cache is cleared by device.Teardown. Both are created on first use.
func Default() *Dispatcher {
	defaultOnce.Do(initDefault)
	return defaultDispatcher
}

// DefaultCache returns the plan cache behind Default.
func DefaultCache() *cache.PlanCache {
	defaultOnce.Do(initDefault)
	return defaultCache
}

// Forward runs a forward transform on the default dispatcher.
func Forward(ctx context.Context, in, out engine.Buffer, prec Precision, inDomain, outDomain Domain) error {
	return Default().Forward(ctx, in, out, prec, inDomain, outDomain)
}

// Inverse runs an inverse transform on the default dispatcher.
func Inverse(ctx context.Context, in, out engine.Buffer, prec Precision, inDomain, outDomain Domain) error {
	return Default().Inverse(ctx, in, out, prec, inDomain, outDomain)
}
