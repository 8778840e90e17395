package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/fftplan/cache"
	"github.com/IvanBrykalov/fftplan/device"
	"github.com/IvanBrykalov/fftplan/engine"
	"github.com/IvanBrykalov/fftplan/engine/cpu"
	"github.com/IvanBrykalov/fftplan/fft"
)

func newDispatcher(t *testing.T) (*fft.Dispatcher, *cache.PlanCache) {
	t.Helper()
	c := cache.New(cache.Options{Engine: cpu.New(cpu.Options{}), Registry: device.NewRegistry(nil)})
	t.Cleanup(func() { _ = c.Close() })
	return fft.New(c, fft.Options{}), c
}

func TestMatched_FindsDelay(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher(t)
	ctx := context.Background()

	const n, delay = 128, 37
	template := []float64{0.5, 1, -0.75, 0.25, 2, -1}
	m, err := NewMatched(ctx, d, template, n)
	require.NoError(t, err)
	assert.Equal(t, n, m.Len())

	data := make([]float64, n)
	for j, v := range template {
		data[delay+j] = v
	}

	series, err := m.Correlate(ctx, data)
	require.NoError(t, err)
	require.Len(t, series, n)

	idx, val := Peak(series)
	assert.Equal(t, delay, idx)

	var energy float64
	for _, v := range template {
		energy += v * v
	}
	assert.InDelta(t, energy, val, 1e-9)
}

// Filtering many segments reuses one forward and one inverse plan.
func TestMatched_ReusesPlans(t *testing.T) {
	t.Parallel()

	d, c := newDispatcher(t)
	ctx := context.Background()

	m, err := NewMatched(ctx, d, []float64{1, -1}, 64)
	require.NoError(t, err)

	data := make([]float64, 64)
	for i := 0; i < 10; i++ {
		data[i] = 1
		_, err := m.Correlate(ctx, data)
		require.NoError(t, err)
	}

	st := c.Stats()
	assert.Equal(t, int64(1), st.Forward.Builds)
	assert.Equal(t, int64(1), st.Inverse.Builds)
	assert.Equal(t, int64(10), st.Forward.Hits)
	assert.Equal(t, int64(9), st.Inverse.Hits)
	assert.Equal(t, []cache.Key{{In: engine.Complex128, Out: engine.Float64, N: 64}}, c.Keys(engine.Inverse))
}

func TestMatched_Errors(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher(t)
	ctx := context.Background()

	_, err := NewMatched(ctx, d, make([]float64, 9), 8)
	assert.ErrorIs(t, err, ErrTemplateTooLong)

	m, err := NewMatched(ctx, d, []float64{1}, 8)
	require.NoError(t, err)
	_, err = m.Correlate(ctx, make([]float64, 7))
	assert.ErrorIs(t, err, ErrSegmentLength)
}
