package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/fftplan/device"
	"github.com/IvanBrykalov/fftplan/engine"
)

var (
	// ErrClosed is returned by lookups on a closed PlanCache.
	ErrClosed = errors.New("cache: closed")

	// ErrPlanConstruction matches every *BuildError via errors.Is.
	ErrPlanConstruction = errors.New("cache: plan construction failed")
)

// BuildError reports that the engine refused or failed to build a plan.
// It wraps the engine error unchanged.
type BuildError struct {
	Direction engine.Direction
	Key       Key
	Err       error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("cache: build %s plan %s: %v", e.Direction, e.Key, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPlanConstruction) true for any BuildError.
func (e *BuildError) Is(target error) bool { return target == ErrPlanConstruction }

// PlanCache holds the forward and inverse plan mappings. Plans are built
// lazily on first request for their key and dropped only by Clear (there is
// no per-plan eviction). All methods are safe for concurrent use.
type PlanCache struct {
	fwd *store
	inv *store

	opt        Options
	closed     atomic.Bool
	clears     atomic.Int64
	deregister func()
	closeOnce  sync.Once
}

// New constructs an empty PlanCache and registers Clear as a teardown
// callback on opt.Registry (device.Default() when nil).
// It panics if opt.Engine is nil.
func New(opt Options) *PlanCache {
	if opt.Engine == nil {
		panic("cache: Engine must be set")
	}
	if opt.Registry == nil {
		opt.Registry = device.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opt.Name == "" {
		opt.Name = "fftplan"
	}

	c := &PlanCache{opt: opt}
	c.fwd = newStore(engine.Forward, &c.opt)
	c.inv = newStore(engine.Inverse, &c.opt)
	c.deregister = opt.Registry.OnTeardown(opt.Name, c.Clear)
	return c
}

// Forward returns the forward plan for (in, out, inputLen), building it on
// first use with shape (inputLen,).
func (c *PlanCache) Forward(ctx context.Context, in, out engine.DType, inputLen int) (engine.Plan, error) {
	return c.lookup(ctx, c.fwd, Key{In: in, Out: out, N: inputLen})
}

// Inverse returns the inverse plan for (in, out, outputLen). Inverse plans
// are keyed and built by the output length: a complex-to-real plan of
// length n consumes only n/2+1 complex inputs.
func (c *PlanCache) Inverse(ctx context.Context, in, out engine.DType, outputLen int) (engine.Plan, error) {
	return c.lookup(ctx, c.inv, Key{In: in, Out: out, N: outputLen})
}

func (c *PlanCache) lookup(ctx context.Context, s *store, k Key) (engine.Plan, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return s.getOrBuild(ctx, k)
}

// Clear empties both mappings. It is idempotent and safe on empty mappings.
// Plans that implement io.Closer are closed.
func (c *PlanCache) Clear() {
	f := c.fwd.clear()
	i := c.inv.clear()
	c.clears.Add(1)
	c.opt.Metrics.Clear(f, i)
	c.opt.Logger.Debug("plan cache cleared", "cache", c.opt.Name, "forward", f, "inverse", i)
}

// Close deregisters the teardown callback and clears both mappings.
// Later lookups return ErrClosed. Close is idempotent and returns nil.
func (c *PlanCache) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.deregister()
		c.Clear()
	})
	return nil
}

// Len returns the number of resident plans for dir.
func (c *PlanCache) Len(dir engine.Direction) int {
	return c.storeFor(dir).len()
}

// Keys returns the resident keys for dir, ordered by (In, Out, N).
func (c *PlanCache) Keys(dir engine.Direction) []Key {
	return c.storeFor(dir).keys()
}

// DirStats are counters for one mapping.
type DirStats struct {
	Entries  int
	Hits     int64
	Misses   int64
	Builds   int64
	Failures int64
	// Inflight is the number of builds currently running.
	Inflight int
}

// Stats is a point-in-time snapshot of both mappings.
type Stats struct {
	Forward DirStats
	Inverse DirStats
	Clears  int64
}

// Stats returns the cache counters.
func (c *PlanCache) Stats() Stats {
	return Stats{
		Forward: c.fwd.stats(),
		Inverse: c.inv.stats(),
		Clears:  c.clears.Load(),
	}
}

func (c *PlanCache) storeFor(dir engine.Direction) *store {
	if dir == engine.Inverse {
		return c.inv
	}
	return c.fwd
}
