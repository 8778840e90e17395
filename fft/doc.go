// Package fft dispatches forward and inverse transforms onto cached plans.
//
// A request names a direction and the domains of its input and output
// buffers. Resolve maps the request onto one of four transforms:
//
//	ForwardC2C  complex -> complex  plan keyed by input length
//	ForwardR2C  real    -> complex  plan keyed by input length
//	InverseC2C  complex -> complex  plan keyed by output length
//	InverseC2R  complex -> real     plan keyed by output length
//
// Every other pair is Unsupported and fails with ErrUnsupportedTransform
// without touching the output. Engine errors (plan construction or
// execution) are returned unchanged.
//
// Forward and Inverse at package level use Default, a dispatcher over the
// gonum CPU engine whose cache is registered with device.Default().
package fft
