// Package filter implements FFT-based matched filtering on top of the
// plan-caching dispatcher. Repeated calls with the same length reuse the
// same forward and inverse plans.
package filter

import (
	"context"
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"github.com/IvanBrykalov/fftplan/engine"
	"github.com/IvanBrykalov/fftplan/fft"
)

var (
	// ErrTemplateTooLong is returned when a template does not fit the segment.
	ErrTemplateTooLong = errors.New("filter: template longer than segment")

	// ErrSegmentLength is returned when data does not match the filter length.
	ErrSegmentLength = errors.New("filter: data length does not match segment")
)

// Matched correlates fixed-length segments against one template.
// A Matched reuses its work buffers and is not safe for concurrent use;
// give each goroutine its own, sharing one Dispatcher.
type Matched struct {
	d *fft.Dispatcher
	n int

	tmpl engine.Slice[complex128] // conjugated template spectrum, n/2+1 bins
	spec engine.Slice[complex128]
	out  engine.Slice[float64]
}

// NewMatched precomputes the template spectrum for segments of length n.
// The template is zero-padded to n.
func NewMatched(ctx context.Context, d *fft.Dispatcher, template []float64, n int) (*Matched, error) {
	if len(template) > n {
		return nil, fmt.Errorf("%w: %d > %d", ErrTemplateTooLong, len(template), n)
	}

	padded := make(engine.Slice[float64], n)
	copy(padded, template)

	m := &Matched{
		d:    d,
		n:    n,
		tmpl: make(engine.Slice[complex128], n/2+1),
		spec: make(engine.Slice[complex128], n/2+1),
		out:  make(engine.Slice[float64], n),
	}
	if err := d.Forward(ctx, padded, m.tmpl, fft.Double, fft.Real, fft.Complex); err != nil {
		return nil, fmt.Errorf("filter: template spectrum: %w", err)
	}
	for i, c := range m.tmpl {
		m.tmpl[i] = cmplx.Conj(c)
	}
	return m, nil
}

// Len returns the segment length.
func (m *Matched) Len() int { return m.n }

// Correlate returns the circular cross-correlation of data with the
// template: out[k] = sum_j data[(j+k) mod n] * template[j].
// The returned slice is owned by m and overwritten by the next call.
func (m *Matched) Correlate(ctx context.Context, data []float64) ([]float64, error) {
	if len(data) != m.n {
		return nil, fmt.Errorf("%w: %d != %d", ErrSegmentLength, len(data), m.n)
	}

	if err := m.d.Forward(ctx, engine.Slice[float64](data), m.spec, fft.Double, fft.Real, fft.Complex); err != nil {
		return nil, err
	}
	for i := range m.spec {
		m.spec[i] *= m.tmpl[i]
	}
	if err := m.d.Inverse(ctx, m.spec, m.out, fft.Double, fft.Complex, fft.Real); err != nil {
		return nil, err
	}
	floats.Scale(1/float64(m.n), m.out)
	return m.out, nil
}

// Peak returns the index and value of the largest sample in series.
// It panics on an empty series.
func Peak(series []float64) (int, float64) {
	i := floats.MaxIdx(series)
	return i, series[i]
}
