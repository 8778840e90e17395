package cache

import (
	"time"

	"github.com/IvanBrykalov/fftplan/engine"
)

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is safe for concurrent use and intended as the default when
// no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit(engine.Direction)                         {}
func (NoopMetrics) Miss(engine.Direction)                        {}
func (NoopMetrics) Build(engine.Direction, time.Duration, error) {}
func (NoopMetrics) Clear(forward, inverse int)                   {}
func (NoopMetrics) Size(engine.Direction, int)                   {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
