package cpu

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/fftplan/engine"
)

func newEngine() *Engine { return New(Options{}) }

// A unit impulse has a flat spectrum; the unnormalized inverse returns n*x.
func TestRealRoundTrip_Double(t *testing.T) {
	t.Parallel()

	const n = 8
	e := newEngine()
	fwd, err := e.NewPlan(n, engine.Float64, engine.Complex128)
	require.NoError(t, err)
	inv, err := e.NewPlan(n, engine.Complex128, engine.Float64)
	require.NoError(t, err)

	x := []float64{1, 0, 0, 0, 0, 0, 0, 0}
	spec := make([]complex128, n/2+1)
	require.NoError(t, fwd.Execute(engine.Forward, x, spec))
	for k, c := range spec {
		assert.InDelta(t, 1, real(c), 1e-12, "bin %d", k)
		assert.InDelta(t, 0, imag(c), 1e-12, "bin %d", k)
	}

	back := make([]float64, n)
	require.NoError(t, inv.Execute(engine.Inverse, spec, back))
	for i := range back {
		assert.InDelta(t, x[i], back[i]/n, 1e-12, "sample %d", i)
	}
}

func TestRealRoundTrip_Single(t *testing.T) {
	t.Parallel()

	const n = 12
	e := newEngine()
	fwd, err := e.NewPlan(n, engine.Float32, engine.Complex64)
	require.NoError(t, err)
	inv, err := e.NewPlan(n, engine.Complex64, engine.Float32)
	require.NoError(t, err)

	x := make([]float32, n)
	for i := range x {
		x[i] = float32(math.Sin(float64(i) * 0.7))
	}
	spec := make([]complex64, n/2+1)
	require.NoError(t, fwd.Execute(engine.Forward, x, spec))

	back := make([]float32, n)
	require.NoError(t, inv.Execute(engine.Inverse, spec, back))
	for i := range back {
		assert.InDelta(t, x[i], back[i]/n, 1e-6, "sample %d", i)
	}
}

func TestComplexRoundTrip(t *testing.T) {
	t.Parallel()

	const n = 10
	e := newEngine()
	p, err := e.NewPlan(n, engine.Complex128, engine.Complex128)
	require.NoError(t, err)

	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(float64(i), -float64(i)/2)
	}
	spec := make([]complex128, n)
	require.NoError(t, p.Execute(engine.Forward, x, spec))

	// DC bin is the plain sum.
	var sum complex128
	for _, v := range x {
		sum += v
	}
	assert.InDelta(t, 0, cmplx.Abs(spec[0]-sum), 1e-9)

	back := make([]complex128, n)
	require.NoError(t, p.Execute(engine.Inverse, spec, back))
	for i := range back {
		assert.InDelta(t, 0, cmplx.Abs(back[i]/n-x[i]), 1e-12, "sample %d", i)
	}

	p32, err := e.NewPlan(n, engine.Complex64, engine.Complex64)
	require.NoError(t, err)
	x32 := make([]complex64, n)
	for i := range x32 {
		x32[i] = complex64(x[i])
	}
	spec32 := make([]complex64, n)
	back32 := make([]complex64, n)
	require.NoError(t, p32.Execute(engine.Forward, x32, spec32))
	require.NoError(t, p32.Execute(engine.Inverse, spec32, back32))
	for i := range back32 {
		assert.InDelta(t, 0, cmplx.Abs(complex128(back32[i]/n-x32[i])), 1e-5, "sample %d", i)
	}
}

func TestNewPlan_Rejects(t *testing.T) {
	t.Parallel()

	e := newEngine()
	_, err := e.NewPlan(0, engine.Complex128, engine.Complex128)
	assert.ErrorIs(t, err, engine.ErrInvalidLength)

	for _, pair := range [][2]engine.DType{
		{engine.Float64, engine.Float64},
		{engine.Complex128, engine.Complex64},
		{engine.Float32, engine.Complex128},
		{engine.Complex64, engine.Float64},
	} {
		_, err := e.NewPlan(8, pair[0], pair[1])
		assert.ErrorIs(t, err, engine.ErrUnsupportedTypes, "%s -> %s", pair[0], pair[1])
	}
}

func TestExecute_Errors(t *testing.T) {
	t.Parallel()

	e := newEngine()
	r2c, err := e.NewPlan(8, engine.Float64, engine.Complex128)
	require.NoError(t, err)
	c2r, err := e.NewPlan(8, engine.Complex128, engine.Float64)
	require.NoError(t, err)

	err = r2c.Execute(engine.Inverse, make([]float64, 8), make([]complex128, 5))
	assert.ErrorIs(t, err, engine.ErrDirection)
	err = c2r.Execute(engine.Forward, make([]complex128, 5), make([]float64, 8))
	assert.ErrorIs(t, err, engine.ErrDirection)

	err = r2c.Execute(engine.Forward, make([]float64, 8), make([]complex128, 4))
	assert.ErrorIs(t, err, engine.ErrLengthMismatch)
	err = c2r.Execute(engine.Inverse, make([]complex128, 5), make([]float64, 7))
	assert.ErrorIs(t, err, engine.ErrLengthMismatch)

	err = r2c.Execute(engine.Forward, make([]float32, 8), make([]complex128, 5))
	assert.ErrorIs(t, err, engine.ErrHandleType)
}

// Buffers must match the plan exactly; a longer buffer is not silently
// truncated or left with an untouched tail.
func TestExecute_OversizedBuffers(t *testing.T) {
	t.Parallel()

	e := newEngine()
	r2c, err := e.NewPlan(8, engine.Float64, engine.Complex128)
	require.NoError(t, err)
	c2c, err := e.NewPlan(8, engine.Complex64, engine.Complex64)
	require.NoError(t, err)
	c2r, err := e.NewPlan(8, engine.Complex128, engine.Float64)
	require.NoError(t, err)

	out := make([]complex128, 6)
	out[5] = 42
	err = r2c.Execute(engine.Forward, make([]float64, 8), out)
	assert.ErrorIs(t, err, engine.ErrLengthMismatch)
	assert.Equal(t, complex128(42), out[5])

	err = r2c.Execute(engine.Forward, make([]float64, 9), make([]complex128, 5))
	assert.ErrorIs(t, err, engine.ErrLengthMismatch)

	err = c2c.Execute(engine.Inverse, make([]complex64, 9), make([]complex64, 8))
	assert.ErrorIs(t, err, engine.ErrLengthMismatch)

	err = c2r.Execute(engine.Inverse, make([]complex128, 6), make([]float64, 8))
	assert.ErrorIs(t, err, engine.ErrLengthMismatch)
}

func TestClose_DisablesPlan(t *testing.T) {
	t.Parallel()

	p, err := newEngine().NewPlan(4, engine.Complex128, engine.Complex128)
	require.NoError(t, err)

	closer, ok := p.(interface{ Close() error })
	require.True(t, ok, "cpu plans release their work space on Close")
	require.NoError(t, closer.Close())

	err = p.Execute(engine.Forward, make([]complex128, 4), make([]complex128, 4))
	assert.ErrorIs(t, err, engine.ErrPlanClosed)
}
