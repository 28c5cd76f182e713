package quadcast

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// frameSource renders the quad into RGBA pixel buffers.
type frameSource interface {
	// upload replaces the quad vertices (VertexStride bytes each).
	upload(vertices []byte) error
	// render draws one frame into dst as tightly packed RGBA.
	render(dst []byte) error
	// adapterName names the device frames are rendered on.
	adapterName() string
	// close releases every resource held by the source.
	close()
}

// Stats describes the renderer's recent work.
type Stats struct {
	// Frames is the number of frames rendered successfully.
	Frames uint64
	// Failed is the number of frames that returned ErrFrameUnavailable.
	Failed uint64
	// RenderTime is the draw and readback time of the last frame.
	RenderTime time.Duration
	// EncodeTime is the BMP and base64 encoding time of the last GetImage.
	EncodeTime time.Duration
}

// Renderer draws the rotating quad off-screen and returns encoded frames.
//
// All methods are safe for concurrent use; calls are serialized.
type Renderer struct {
	mu sync.Mutex

	src    frameSource
	anim   *Animator
	quad   Quad
	vbuf   []byte
	width  int
	height int

	stats  Stats
	busy   atomic.Bool
	closed bool
}

// New opens a headless GPU device and creates everything the render cycle
// needs: target, staging buffer, shaders, pipeline, and vertex and index
// buffers.
//
// Any failure is wrapped in ErrStartup and leaves nothing allocated.
func New(opts ...RendererOption) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.width <= 0 || o.height <= 0 {
		return nil, fmt.Errorf("%w: %w: %dx%d", ErrStartup, ErrInvalidSize, o.width, o.height)
	}

	src, err := openSource(&o)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}
	r, err := newRenderer(&o, src)
	if err != nil {
		src.close()
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}

	Logger().Info("quadcast: renderer ready",
		"adapter", src.adapterName(),
		"width", o.width, "height", o.height,
		"smooth", o.smooth)
	return r, nil
}

// newRenderer wraps an open frame source and uploads the initial quad.
func newRenderer(o *rendererOptions, src frameSource) (*Renderer, error) {
	r := &Renderer{
		src:    src,
		anim:   NewAnimator(o.clock, o.smooth),
		quad:   NewQuad(),
		vbuf:   make([]byte, 0, len(Quad{})*VertexStride),
		width:  o.width,
		height: o.height,
	}
	r.vbuf = r.quad.AppendBytes(r.vbuf[:0])
	if err := r.src.upload(r.vbuf); err != nil {
		return nil, fmt.Errorf("upload vertices: %w", err)
	}
	return r, nil
}

// Size returns the frame dimensions.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// Quad returns a copy of the current vertex state.
func (r *Renderer) Quad() Quad {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quad
}

// Stats returns a snapshot of frame counters and timings.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Busy reports whether a frame is being rendered or encoded.
func (r *Renderer) Busy() bool {
	return r.busy.Load()
}

// GetImage advances the animation, renders one frame, and returns it as a
// base64-encoded BMP without any data URI prefix.
//
// Per-frame failures wrap ErrFrameUnavailable; the next call may succeed.
// After Close, GetImage returns ErrClosed.
func (r *Renderer) GetImage() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrClosed
	}
	r.busy.Store(true)
	defer r.busy.Store(false)

	f, err := r.renderLocked()
	if err != nil {
		return "", err
	}

	start := time.Now()
	s, err := f.Base64()
	if err != nil {
		r.stats.Failed++
		return "", fmt.Errorf("%w: %w", ErrFrameUnavailable, err)
	}
	r.stats.EncodeTime = time.Since(start)

	Logger().Debug("quadcast: frame encoded",
		"frame", r.stats.Frames,
		"render", r.stats.RenderTime,
		"encode", r.stats.EncodeTime,
		"base64_len", len(s))
	return s, nil
}

// RenderFrame advances the animation and renders one frame without
// encoding it.
func (r *Renderer) RenderFrame() (*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	r.busy.Store(true)
	defer r.busy.Store(false)

	return r.renderLocked()
}

// renderLocked rotates and uploads the quad, then renders and reads back a
// frame. r.mu must be held.
func (r *Renderer) renderLocked() (*Frame, error) {
	start := time.Now()

	r.quad.Rotate(r.anim.Advance())
	r.vbuf = r.quad.AppendBytes(r.vbuf[:0])
	if err := r.src.upload(r.vbuf); err != nil {
		return nil, r.frameFailed(err)
	}

	f := NewFrame(r.width, r.height)
	if err := r.src.render(f.data); err != nil {
		return nil, r.frameFailed(err)
	}

	r.stats.Frames++
	r.stats.RenderTime = time.Since(start)
	return f, nil
}

func (r *Renderer) frameFailed(err error) error {
	r.stats.Failed++
	Logger().Warn("quadcast: frame failed", "error", err)
	return fmt.Errorf("%w: %w", ErrFrameUnavailable, err)
}

// Close releases all GPU resources in reverse creation order and, when the
// device was opened by New, the device itself. Calling Close more than once
// is a no-op.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.src.close()
	r.src = nil

	Logger().Info("quadcast: renderer closed", "frames", r.stats.Frames)
	return nil
}
