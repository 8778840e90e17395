// Package cpu is a host-memory FFT engine backed by gonum's dsp/fourier.
//
// It stands in for a device engine: plans are built once per shape and type
// signature and executed against caller buffers. Like cuFFT, inverse
// transforms are unnormalized, so inverse(forward(x)) == n*x.
//
// Supported type signatures:
//
//	complex64  -> complex64   forward and inverse
//	complex128 -> complex128  forward and inverse
//	float32    -> complex64   forward only, output length n/2+1
//	float64    -> complex128  forward only, output length n/2+1
//	complex64  -> float32     inverse only, input length n/2+1
//	complex128 -> float64     inverse only, input length n/2+1
package cpu

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/IvanBrykalov/fftplan/engine"
)

// Options configures the engine. The zero value is ready to use.
type Options struct {
	// Logger receives plan construction events at Debug. Nil => discard.
	Logger *slog.Logger
}

// Engine implements engine.Engine on the CPU.
type Engine struct {
	log *slog.Logger
}

// New returns a CPU engine.
func New(opt Options) *Engine {
	l := opt.Logger
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{log: l}
}

// NewPlan builds a plan of length n for the in -> out signature.
func (e *Engine) NewPlan(n int, in, out engine.DType) (engine.Plan, error) {
	if n < 1 {
		return nil, fmt.Errorf("cpu: plan length %d: %w", n, engine.ErrInvalidLength)
	}

	var p engine.Plan
	switch {
	case in == engine.Complex64 && out == engine.Complex64,
		in == engine.Complex128 && out == engine.Complex128:
		p = newComplexPlan(n, in.IsSingle())
	case in == engine.Float32 && out == engine.Complex64,
		in == engine.Float64 && out == engine.Complex128:
		p = newRealForwardPlan(n, in.IsSingle())
	case in == engine.Complex64 && out == engine.Float32,
		in == engine.Complex128 && out == engine.Float64:
		p = newRealInversePlan(n, in.IsSingle())
	default:
		return nil, fmt.Errorf("cpu: %s -> %s: %w", in, out, engine.ErrUnsupportedTypes)
	}

	e.log.Debug("cpu plan built", "n", n, "in", in.String(), "out", out.String())
	return p, nil
}

var _ engine.Engine = (*Engine)(nil)
