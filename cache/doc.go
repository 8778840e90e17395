// Package cache provides a two-mapping FFT plan cache with get-or-build
// semantics, wired to the device teardown registry.
//
// Design
//
//   - Mappings: one for forward plans, one for inverse plans. A forward and
//     an inverse plan for the same nominal shape are distinct engine objects,
//     and the key's length means different things per direction.
//
//   - Keys: Key{In, Out, N}. N is the input length for forward plans and the
//     output length for inverse plans (a complex-to-real plan of length n
//     reads only n/2+1 complex values).
//
//   - Get-or-build: a miss builds the plan through engine.Engine and inserts
//     it. Concurrent misses for one key are coalesced (singleflight), so each
//     key is built at most once per generation. Build errors surface as
//     *BuildError and are never cached or retried.
//
//   - Lifecycle: New registers Clear with a device.Registry. When the host
//     tears the device context down, both mappings are emptied and plans
//     that implement io.Closer are closed. A build still in flight during a
//     clear is closed on arrival and its callers get engine.ErrPlanClosed.
//     Close deregisters.
//
//   - Capacity: unbounded. Plans live until the next Clear.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Build/Clear/Size signals.
//     By default NoopMetrics is used; see metrics/prom for a Prometheus adapter.
//
// Basic usage
//
//	c := cache.New(cache.Options{Engine: cpu.New(cpu.Options{})})
//	defer c.Close()
//
//	p, err := c.Forward(ctx, engine.Float64, engine.Complex128, 4096)
//	if err != nil {
//	    return err
//	}
//	err = p.Execute(engine.Forward, samples, spectrum)
//
// Exporting metrics
//
//	m := prom.New(nil, "fftplan", "cache", nil)
//	c := cache.New(cache.Options{Engine: eng, Metrics: m})
package cache
