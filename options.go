package quadcast

import (
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// Default frame dimensions.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	// Default: 800x600, Vulkan, white background
//	r, err := quadcast.New()
//
//	// Smaller frames with continuous rotation speed
//	r, err := quadcast.New(quadcast.WithSize(320, 240), quadcast.WithSmoothRotation())
type RendererOption func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	width, height int
	smooth        bool
	clear         RGBA
	clock         func() time.Time
	provider      gpucontext.DeviceProvider
	backend       hal.Backend
}

// defaultOptions returns the default renderer options.
func defaultOptions() rendererOptions {
	return rendererOptions{
		width:   DefaultWidth,
		height:  DefaultHeight,
		clear:   White,
		clock:   time.Now,
		backend: nil, // registered Vulkan backend
	}
}

// WithSize sets the frame dimensions in pixels.
// New fails with ErrInvalidSize if either dimension is not positive.
func WithSize(width, height int) RendererOption {
	return func(o *rendererOptions) {
		o.width = width
		o.height = height
	}
}

// WithSmoothRotation derives the rotation angle from the whole time elapsed
// since the previous frame instead of its millisecond component, removing
// the once-per-second wrap in rotation speed.
func WithSmoothRotation() RendererOption {
	return func(o *rendererOptions) {
		o.smooth = true
	}
}

// WithClearColor sets the background the target is cleared to every frame.
// The default is White.
func WithClearColor(c RGBA) RendererOption {
	return func(o *rendererOptions) {
		o.clear = c
	}
}

// WithClock sets the time source used to animate the quad.
// Useful for deterministic output in tests and recordings.
func WithClock(now func() time.Time) RendererOption {
	return func(o *rendererOptions) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithDeviceProvider renders on a device shared by a host application.
// The provider must also implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue. Close never destroys this device.
//
// Example:
//
//	app := gogpu.NewApp(gogpu.DefaultConfig())
//	r, err := quadcast.New(quadcast.WithDeviceProvider(app.GPUContextProvider()))
func WithDeviceProvider(provider gpucontext.DeviceProvider) RendererOption {
	return func(o *rendererOptions) {
		o.provider = provider
	}
}

// WithBackend opens the headless device on the given HAL backend instead of
// the registered Vulkan backend. Ignored when WithDeviceProvider is set.
func WithBackend(b hal.Backend) RendererOption {
	return func(o *rendererOptions) {
		o.backend = b
	}
}
