// Package engine defines the contracts between the plan cache and an FFT
// execution engine: element types, numeric buffers, plans and the engine
// that builds them.
package engine

import "errors"

// DType is the element type of a numeric buffer.
type DType uint8

const (
	Float32 DType = iota + 1
	Float64
	Complex64
	Complex128
)

func (t DType) String() string {
	switch t {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	default:
		return "invalid"
	}
}

// IsComplex reports whether t holds complex elements.
func (t DType) IsComplex() bool { return t == Complex64 || t == Complex128 }

// IsSingle reports whether t is a single precision type.
func (t DType) IsSingle() bool { return t == Float32 || t == Complex64 }

// Direction selects the sign of the transform exponent.
type Direction uint8

const (
	Forward Direction = iota
	Inverse
)

func (d Direction) String() string {
	if d == Inverse {
		return "inverse"
	}
	return "forward"
}

// Buffer is a numeric array as seen by the engine.
type Buffer interface {
	DType() DType
	Len() int
	// Data returns the raw storage handle passed to Plan.Execute.
	Data() any
}

// Plan is a prebuilt execution template for one shape and type signature.
// Plans are never mutated after construction. A Plan may also implement
// io.Closer; owners close it when the plan is dropped.
type Plan interface {
	// Execute transforms in into out. The result is written directly into
	// the storage behind out.
	Execute(dir Direction, in, out any) error
}

// Engine builds plans. It is the only place that knows about concrete
// device or library types.
type Engine interface {
	// NewPlan builds a 1-D plan of length n converting in-typed elements to
	// out-typed elements.
	NewPlan(n int, in, out DType) (Plan, error)
}

var (
	// ErrUnsupportedTypes is returned by NewPlan for type pairs the engine
	// cannot transform.
	ErrUnsupportedTypes = errors.New("engine: unsupported type pair")

	// ErrInvalidLength is returned by NewPlan for non-positive lengths.
	ErrInvalidLength = errors.New("engine: invalid length")

	// ErrLengthMismatch is returned by Execute when a handle's length differs
	// from what the plan requires (n, or n/2+1 on the complex side of a
	// real transform).
	ErrLengthMismatch = errors.New("engine: length mismatch")

	// ErrDirection is returned by Execute when the plan cannot run in the
	// requested direction (e.g. inverse on a real-to-complex plan).
	ErrDirection = errors.New("engine: direction not supported by plan")

	// ErrHandleType is returned by Execute when a handle does not match the
	// plan's element types.
	ErrHandleType = errors.New("engine: unexpected handle type")

	// ErrPlanClosed is returned by Execute on a plan that was closed.
	ErrPlanClosed = errors.New("engine: plan closed")
)
