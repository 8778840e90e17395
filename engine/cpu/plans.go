package cpu

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/IvanBrykalov/fftplan/engine"
)

// gonum plans keep internal work space, so every plan serialises its own
// executions with mu. Single precision plans also own float64 scratch.

// complexPlan runs complex -> complex transforms in both directions.
type complexPlan struct {
	mu     sync.Mutex
	n      int
	single bool
	fft    *fourier.CmplxFFT
	src    []complex128 // single precision scratch
	dst    []complex128
}

func newComplexPlan(n int, single bool) *complexPlan {
	p := &complexPlan{n: n, single: single, fft: fourier.NewCmplxFFT(n)}
	if single {
		p.src = make([]complex128, n)
		p.dst = make([]complex128, n)
	}
	return p
}

func (p *complexPlan) Execute(dir engine.Direction, in, out any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fft == nil {
		return engine.ErrPlanClosed
	}

	if p.single {
		src, ok1 := in.([]complex64)
		dst, ok2 := out.([]complex64)
		if !ok1 || !ok2 {
			return handleErr(in, out, "[]complex64", "[]complex64")
		}
		if err := checkLen(len(src), p.n, len(dst), p.n); err != nil {
			return err
		}
		widenComplex(p.src, src[:p.n])
		p.run(dir, p.dst, p.src)
		narrowComplex(dst[:p.n], p.dst)
		return nil
	}

	src, ok1 := in.([]complex128)
	dst, ok2 := out.([]complex128)
	if !ok1 || !ok2 {
		return handleErr(in, out, "[]complex128", "[]complex128")
	}
	if err := checkLen(len(src), p.n, len(dst), p.n); err != nil {
		return err
	}
	p.run(dir, dst[:p.n], src[:p.n])
	return nil
}

func (p *complexPlan) run(dir engine.Direction, dst, src []complex128) {
	if dir == engine.Inverse {
		p.fft.Sequence(dst, src)
		return
	}
	p.fft.Coefficients(dst, src)
}

func (p *complexPlan) Close() error {
	p.mu.Lock()
	p.fft, p.src, p.dst = nil, nil, nil
	p.mu.Unlock()
	return nil
}

// realForwardPlan runs real -> complex forward transforms. The output holds
// the n/2+1 non-redundant coefficients.
type realForwardPlan struct {
	mu     sync.Mutex
	n      int
	single bool
	fft    *fourier.FFT
	seq    []float64 // single precision scratch
	coeff  []complex128
}

func newRealForwardPlan(n int, single bool) *realForwardPlan {
	p := &realForwardPlan{n: n, single: single, fft: fourier.NewFFT(n)}
	if single {
		p.seq = make([]float64, n)
		p.coeff = make([]complex128, n/2+1)
	}
	return p
}

func (p *realForwardPlan) Execute(dir engine.Direction, in, out any) error {
	if dir != engine.Forward {
		return fmt.Errorf("cpu: real-to-complex plan run %s: %w", dir, engine.ErrDirection)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fft == nil {
		return engine.ErrPlanClosed
	}
	m := p.n/2 + 1

	if p.single {
		src, ok1 := in.([]float32)
		dst, ok2 := out.([]complex64)
		if !ok1 || !ok2 {
			return handleErr(in, out, "[]float32", "[]complex64")
		}
		if err := checkLen(len(src), p.n, len(dst), m); err != nil {
			return err
		}
		widenReal(p.seq, src[:p.n])
		p.fft.Coefficients(p.coeff, p.seq)
		narrowComplex(dst[:m], p.coeff)
		return nil
	}

	src, ok1 := in.([]float64)
	dst, ok2 := out.([]complex128)
	if !ok1 || !ok2 {
		return handleErr(in, out, "[]float64", "[]complex128")
	}
	if err := checkLen(len(src), p.n, len(dst), m); err != nil {
		return err
	}
	p.fft.Coefficients(dst[:m], src[:p.n])
	return nil
}

func (p *realForwardPlan) Close() error {
	p.mu.Lock()
	p.fft, p.seq, p.coeff = nil, nil, nil
	p.mu.Unlock()
	return nil
}

// realInversePlan runs complex -> real inverse transforms. n is the length
// of the real output; the input holds n/2+1 coefficients.
type realInversePlan struct {
	mu     sync.Mutex
	n      int
	single bool
	fft    *fourier.FFT
	coeff  []complex128 // single precision scratch
	seq    []float64
}

func newRealInversePlan(n int, single bool) *realInversePlan {
	p := &realInversePlan{n: n, single: single, fft: fourier.NewFFT(n)}
	if single {
		p.coeff = make([]complex128, n/2+1)
		p.seq = make([]float64, n)
	}
	return p
}

func (p *realInversePlan) Execute(dir engine.Direction, in, out any) error {
	if dir != engine.Inverse {
		return fmt.Errorf("cpu: complex-to-real plan run %s: %w", dir, engine.ErrDirection)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fft == nil {
		return engine.ErrPlanClosed
	}
	m := p.n/2 + 1

	if p.single {
		src, ok1 := in.([]complex64)
		dst, ok2 := out.([]float32)
		if !ok1 || !ok2 {
			return handleErr(in, out, "[]complex64", "[]float32")
		}
		if err := checkLen(len(src), m, len(dst), p.n); err != nil {
			return err
		}
		widenComplex(p.coeff, src[:m])
		p.fft.Sequence(p.seq, p.coeff)
		narrowReal(dst[:p.n], p.seq)
		return nil
	}

	src, ok1 := in.([]complex128)
	dst, ok2 := out.([]float64)
	if !ok1 || !ok2 {
		return handleErr(in, out, "[]complex128", "[]float64")
	}
	if err := checkLen(len(src), m, len(dst), p.n); err != nil {
		return err
	}
	p.fft.Sequence(dst[:p.n], src[:m])
	return nil
}

func (p *realInversePlan) Close() error {
	p.mu.Lock()
	p.fft, p.coeff, p.seq = nil, nil, nil
	p.mu.Unlock()
	return nil
}

// ---- helpers ----

// checkLen requires exact lengths: a plan of length n never reads or writes
// a partial buffer.
func checkLen(inLen, inWant, outLen, outWant int) error {
	if inLen != inWant || outLen != outWant {
		return fmt.Errorf("cpu: in %d (want %d), out %d (want %d): %w",
			inLen, inWant, outLen, outWant, engine.ErrLengthMismatch)
	}
	return nil
}

func handleErr(in, out any, wantIn, wantOut string) error {
	return fmt.Errorf("cpu: got %T -> %T, want %s -> %s: %w", in, out, wantIn, wantOut, engine.ErrHandleType)
}

func widenComplex(dst []complex128, src []complex64) {
	for i, v := range src {
		dst[i] = complex128(v)
	}
}

func narrowComplex(dst []complex64, src []complex128) {
	for i, v := range src {
		dst[i] = complex64(v)
	}
}

func widenReal(dst []float64, src []float32) {
	for i, v := range src {
		dst[i] = float64(v)
	}
}

func narrowReal(dst []float32, src []float64) {
	for i, v := range src {
		dst[i] = float32(v)
	}
}
