package cache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/IvanBrykalov/fftplan/device"
	"github.com/IvanBrykalov/fftplan/engine"
)

// Key identifies a plan within one direction's mapping.
//
// N is the characteristic length: the input length for forward plans and
// the output length for inverse plans. A complex-to-real inverse plan must
// be sized by the real output (n), not by the n/2+1 complex input.
type Key struct {
	In  engine.DType
	Out engine.DType
	N   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s->%s/%d", k.In, k.Out, k.N)
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit(dir engine.Direction)
	Miss(dir engine.Direction)
	// Build reports one engine plan construction and how long it took.
	Build(dir engine.Direction, took time.Duration, err error)
	// Clear reports a teardown/clear and how many plans each mapping dropped.
	Clear(forward, inverse int)
	// Size reports the mapping's entry count. It is called with the mapping
	// locked, so reports arrive in mutation order; it must not call back
	// into the cache.
	Size(dir engine.Direction, entries int)
}

// Options configures a PlanCache. Zero values are safe except Engine;
// defaults are applied in New():
//   - nil Registry => device.Default()
//   - nil Metrics  => NoopMetrics
//   - nil Logger   => discard
type Options struct {
	// Engine builds plans on a miss. Required.
	Engine engine.Engine

	// Registry receives the cache's teardown callback.
	Registry *device.Registry

	// Name labels the teardown callback and log lines.
	Name string

	Metrics Metrics
	Logger  *slog.Logger
}
