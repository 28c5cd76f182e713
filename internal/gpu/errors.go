//go:build !nogpu

package gpu

import "errors"

var (
	// ErrNoAdapter is returned when no HAL backend or adapter can serve
	// a headless device.
	ErrNoAdapter = errors.New("gpu: no GPU adapter available")

	// ErrNilDevice is returned when a device or queue handle is missing.
	ErrNilDevice = errors.New("gpu: device is nil")

	// ErrInvalidProvider is returned when a device provider does not expose
	// HAL device and queue handles.
	ErrInvalidProvider = errors.New("gpu: provider does not expose HAL types")

	// ErrShaderCompile is returned when WGSL fails to compile to SPIR-V or
	// the resulting module is rejected by the device.
	ErrShaderCompile = errors.New("gpu: shader compilation failed")

	// ErrDestroyed is returned when a destroyed renderer is used.
	ErrDestroyed = errors.New("gpu: quad renderer has been destroyed")

	// ErrInvalidSize is returned for zero render target dimensions.
	ErrInvalidSize = errors.New("gpu: invalid render target size")

	// ErrShortBuffer is returned when a destination pixel buffer is smaller
	// than the render target.
	ErrShortBuffer = errors.New("gpu: destination buffer too small")

	// ErrReadbackTimeout is returned when the GPU does not signal the frame
	// fence within the readback timeout.
	ErrReadbackTimeout = errors.New("gpu: timed out waiting for frame")
)
