package fft

import (
	"errors"
	"fmt"

	"github.com/IvanBrykalov/fftplan/engine"
)

// Domain tells whether a buffer holds real or complex samples.
type Domain uint8

const (
	Real Domain = iota + 1
	Complex
)

func (d Domain) String() string {
	switch d {
	case Real:
		return "real"
	case Complex:
		return "complex"
	default:
		return "invalid"
	}
}

// accepts reports whether buffers of type t belong to d.
func (d Domain) accepts(t engine.DType) bool {
	switch d {
	case Real:
		return t == engine.Float32 || t == engine.Float64
	case Complex:
		return t.IsComplex()
	default:
		return false
	}
}

// Precision is accepted for symmetry with other backends. Plan selection
// depends only on the domains and the buffers' dtypes.
type Precision uint8

const (
	Single Precision = iota + 1
	Double
)

func (p Precision) String() string {
	switch p {
	case Single:
		return "single"
	case Double:
		return "double"
	default:
		return "unspecified"
	}
}

// Transform is the closed set of dispatchable (direction, in, out) shapes.
type Transform uint8

const (
	Unsupported Transform = iota
	ForwardC2C
	ForwardR2C
	InverseC2C
	InverseC2R
)

func (t Transform) String() string {
	switch t {
	case ForwardC2C:
		return "forward c2c"
	case ForwardR2C:
		return "forward r2c"
	case InverseC2C:
		return "inverse c2c"
	case InverseC2R:
		return "inverse c2r"
	default:
		return "unsupported"
	}
}

// Direction returns the engine direction of t. Unsupported maps to Forward.
func (t Transform) Direction() engine.Direction {
	if t == InverseC2C || t == InverseC2R {
		return engine.Inverse
	}
	return engine.Forward
}

// Resolve classifies a request. Anything other than the four supported
// shapes is Unsupported.
func Resolve(dir engine.Direction, in, out Domain) Transform {
	switch {
	case dir == engine.Forward && in == Complex && out == Complex:
		return ForwardC2C
	case dir == engine.Forward && in == Real && out == Complex:
		return ForwardR2C
	case dir == engine.Inverse && in == Complex && out == Complex:
		return InverseC2C
	case dir == engine.Inverse && in == Complex && out == Real:
		return InverseC2R
	default:
		return Unsupported
	}
}

var (
	// ErrUnsupportedTransform matches every *UnsupportedTransformError.
	ErrUnsupportedTransform = errors.New("fft: unsupported transform")

	// ErrDomainMismatch is returned when a buffer's dtype disagrees with its
	// declared domain.
	ErrDomainMismatch = errors.New("fft: buffer dtype does not match domain")
)

// UnsupportedTransformError reports a domain pair with no dispatch rule.
// Nothing is built or executed and the output buffer is left untouched.
type UnsupportedTransformError struct {
	Direction engine.Direction
	In, Out   Domain
}

func (e *UnsupportedTransformError) Error() string {
	return fmt.Sprintf("fft: unsupported %s transform %s -> %s", e.Direction, e.In, e.Out)
}

// Is makes errors.Is(err, ErrUnsupportedTransform) true.
func (e *UnsupportedTransformError) Is(target error) bool { return target == ErrUnsupportedTransform }
