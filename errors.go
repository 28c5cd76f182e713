package quadcast

import "errors"

// Startup errors. New wraps every failure in ErrStartup and, where it
// applies, one of the more specific errors below.
var (
	// ErrStartup is returned by New when the renderer cannot be created.
	// Hosts should treat it as fatal.
	ErrStartup = errors.New("quadcast: renderer startup failed")

	// ErrNoGPU is returned when no suitable GPU device can be opened.
	ErrNoGPU = errors.New("quadcast: no GPU device available")

	// ErrShaderCompile is returned when the embedded shaders fail to compile
	// or are rejected by the device.
	ErrShaderCompile = errors.New("quadcast: shader compilation failed")

	// ErrInvalidSize is returned for non-positive frame dimensions.
	ErrInvalidSize = errors.New("quadcast: invalid frame size")

	// ErrInvalidColor is returned by ParseHex for malformed hex colors.
	ErrInvalidColor = errors.New("quadcast: invalid hex color")
)

// Per-frame errors. The renderer remains usable after ErrFrameUnavailable.
var (
	// ErrFrameUnavailable is returned when a single render, readback, or
	// encode fails.
	ErrFrameUnavailable = errors.New("quadcast: frame unavailable")

	// ErrClosed is returned when a closed renderer is used.
	ErrClosed = errors.New("quadcast: renderer is closed")
)
