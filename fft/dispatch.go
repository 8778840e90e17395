package fft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/IvanBrykalov/fftplan/engine"
)

// ErrNilBuffer is returned when an input or output buffer is nil.
var ErrNilBuffer = errors.New("fft: nil buffer")

// Plans is the plan source the dispatcher draws from. *cache.PlanCache
// implements it.
type Plans interface {
	Forward(ctx context.Context, in, out engine.DType, inputLen int) (engine.Plan, error)
	Inverse(ctx context.Context, in, out engine.DType, outputLen int) (engine.Plan, error)
}

// Options configures a Dispatcher.
type Options struct {
	// Logger receives rejected requests at Debug. Nil => discard.
	Logger *slog.Logger
}

// Dispatcher turns (direction, input domain, output domain) requests into a
// plan lookup plus one execution. It holds no per-call state and is safe
// for concurrent use when its Plans are.
type Dispatcher struct {
	plans Plans
	log   *slog.Logger
}

// New returns a Dispatcher drawing plans from plans.
func New(plans Plans, opt Options) *Dispatcher {
	l := opt.Logger
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{plans: plans, log: l}
}

// Forward transforms in into out. Supported domain pairs are complex ->
// complex and real -> complex; both use the forward plan keyed by
// (in dtype, out dtype, in length). Real -> complex output holds n/2+1
// coefficients. Device engines may leave imaginary residue on the order of
// the precision's epsilon where exact zeros are expected; callers that need
// exact zeros must post-process.
func (d *Dispatcher) Forward(ctx context.Context, in, out engine.Buffer, _ Precision, inDomain, outDomain Domain) error {
	return d.dispatch(ctx, engine.Forward, in, out, inDomain, outDomain)
}

// Inverse transforms in into out. Supported domain pairs are complex ->
// complex and complex -> real; both use the inverse plan keyed by
// (in dtype, out dtype, out length). The transform is unnormalized.
func (d *Dispatcher) Inverse(ctx context.Context, in, out engine.Buffer, _ Precision, inDomain, outDomain Domain) error {
	return d.dispatch(ctx, engine.Inverse, in, out, inDomain, outDomain)
}

func (d *Dispatcher) dispatch(ctx context.Context, dir engine.Direction, in, out engine.Buffer, inDomain, outDomain Domain) error {
	t := Resolve(dir, inDomain, outDomain)
	if t == Unsupported {
		d.log.Debug("transform rejected", "direction", dir.String(), "in", inDomain.String(), "out", outDomain.String())
		return &UnsupportedTransformError{Direction: dir, In: inDomain, Out: outDomain}
	}
	return d.Execute(ctx, t, in, out)
}

// Execute runs an already resolved transform. Buffer dtypes must belong to
// the transform's domains, so a plan is never run with buffers that
// disagree with the key it was fetched under.
func (d *Dispatcher) Execute(ctx context.Context, t Transform, in, out engine.Buffer) error {
	if in == nil || out == nil {
		return ErrNilBuffer
	}

	var (
		plan engine.Plan
		err  error
	)
	switch t {
	case ForwardC2C, ForwardR2C:
		if err := checkDomains(t, in, out); err != nil {
			return err
		}
		plan, err = d.plans.Forward(ctx, in.DType(), out.DType(), in.Len())
	case InverseC2C, InverseC2R:
		if err := checkDomains(t, in, out); err != nil {
			return err
		}
		plan, err = d.plans.Inverse(ctx, in.DType(), out.DType(), out.Len())
	default:
		return &UnsupportedTransformError{Direction: t.Direction()}
	}
	if err != nil {
		return err
	}
	return plan.Execute(t.Direction(), in.Data(), out.Data())
}

// domains returns the (input, output) domains of a supported transform.
func (t Transform) domains() (in, out Domain) {
	switch t {
	case ForwardR2C:
		return Real, Complex
	case InverseC2R:
		return Complex, Real
	default:
		return Complex, Complex
	}
}

func checkDomains(t Transform, in, out engine.Buffer) error {
	inDom, outDom := t.domains()
	if !inDom.accepts(in.DType()) || !outDom.accepts(out.DType()) {
		return fmt.Errorf("fft: %s with %s -> %s buffers: %w", t, in.DType(), out.DType(), ErrDomainMismatch)
	}
	return nil
}
