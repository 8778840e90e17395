// Package prom exports plan cache metrics to Prometheus.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/fftplan/cache"
	"github.com/IvanBrykalov/fftplan/engine"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	builds    *prometheus.CounterVec
	buildTime *prometheus.HistogramVec
	clears    prometheus.Counter
	cleared   *prometheus.CounterVec
	plans     *prometheus.GaugeVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Plan lookups served from the cache",
			ConstLabels: constLabels,
		}, []string{"direction"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Plan lookups that required a build",
			ConstLabels: constLabels,
		}, []string{"direction"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "builds_total",
			Help:        "Engine plan constructions by result",
			ConstLabels: constLabels,
		}, []string{"direction", "result"}),
		buildTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "build_seconds",
			Help:        "Time spent constructing plans",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"direction"}),
		clears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "clears_total",
			Help:        "Cache clears (device teardowns and explicit clears)",
			ConstLabels: constLabels,
		}),
		cleared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "cleared_plans_total",
			Help:        "Plans dropped by clears",
			ConstLabels: constLabels,
		}, []string{"direction"}),
		plans: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "plans",
			Help:        "Number of resident plans",
			ConstLabels: constLabels,
		}, []string{"direction"}),
	}
	reg.MustRegister(a.hits, a.misses, a.builds, a.buildTime, a.clears, a.cleared, a.plans)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit(dir engine.Direction) { a.hits.WithLabelValues(dir.String()).Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss(dir engine.Direction) { a.misses.WithLabelValues(dir.String()).Inc() }

// Build counts a plan construction and observes its duration.
func (a *Adapter) Build(dir engine.Direction, took time.Duration, err error) {
	a.builds.WithLabelValues(dir.String(), result(err)).Inc()
	a.buildTime.WithLabelValues(dir.String()).Observe(took.Seconds())
}

// Clear counts a clear and the plans it dropped.
func (a *Adapter) Clear(forward, inverse int) {
	a.clears.Inc()
	a.cleared.WithLabelValues(engine.Forward.String()).Add(float64(forward))
	a.cleared.WithLabelValues(engine.Inverse.String()).Add(float64(inverse))
}

// Size updates the resident plan gauge.
func (a *Adapter) Size(dir engine.Direction, entries int) {
	a.plans.WithLabelValues(dir.String()).Set(float64(entries))
}

// result maps a build error to a stable label value.
func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
