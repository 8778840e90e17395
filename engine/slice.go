package engine

// Element is the set of Go element types a host Slice can hold.
type Element interface {
	float32 | float64 | complex64 | complex128
}

// Slice is a host-memory Buffer. Data returns the underlying []T, so engines
// write results straight into the caller's slice.
type Slice[T Element] []T

// DType maps T to its element type tag.
func (s Slice[T]) DType() DType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case complex64:
		return Complex64
	default:
		return Complex128
	}
}

func (s Slice[T]) Len() int  { return len(s) }
func (s Slice[T]) Data() any { return []T(s) }

// Compile-time checks.
var (
	_ Buffer = Slice[float32](nil)
	_ Buffer = Slice[complex128](nil)
)
