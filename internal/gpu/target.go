//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targetFormat is the pixel format of the offscreen color target and the
// staging buffer. Bytes are stored B, G, R, A.
const targetFormat = gputypes.TextureFormatBGRA8Unorm

// copyPitchAlignment is the row pitch alignment WebGPU (and DX12) require
// for texture-to-buffer copies.
const copyPitchAlignment = 256

// alignedBytesPerRow returns the staging row pitch for a target of the given
// width: 4 bytes per pixel rounded up to copyPitchAlignment.
func alignedBytesPerRow(width uint32) uint32 {
	bytesPerRow := width * 4
	return (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// offscreenTarget holds the color texture rendered into and the CPU-readable
// staging buffer it is copied to. Both share the same size and format.
type offscreenTarget struct {
	colorTex  hal.Texture
	colorView hal.TextureView
	staging   hal.Buffer

	width       uint32
	height      uint32
	bytesPerRow uint32
}

// create allocates the color texture, its view, and the staging buffer.
// On failure everything allocated so far is released.
func (t *offscreenTarget) create(device hal.Device, w, h uint32) error {
	if w == 0 || h == 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}

	colorTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quad_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create color target: %w", err)
	}
	t.colorTex = colorTex

	colorView, err := device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: "quad_target_view",
	})
	if err != nil {
		t.destroy(device)
		return fmt.Errorf("create color target view: %w", err)
	}
	t.colorView = colorView

	bytesPerRow := alignedBytesPerRow(w)
	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quad_staging",
		Size:  uint64(bytesPerRow) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		t.destroy(device)
		return fmt.Errorf("create staging buffer: %w", err)
	}
	t.staging = staging

	t.width = w
	t.height = h
	t.bytesPerRow = bytesPerRow
	return nil
}

// stagingSize returns the staging buffer size in bytes.
func (t *offscreenTarget) stagingSize() uint64 {
	return uint64(t.bytesPerRow) * uint64(t.height)
}

// destroy releases the staging buffer, view, and texture, and resets
// dimensions. Safe to call on a partially created or empty target.
func (t *offscreenTarget) destroy(device hal.Device) {
	if t.staging != nil {
		device.DestroyBuffer(t.staging)
		t.staging = nil
	}
	if t.colorView != nil {
		device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.colorTex != nil {
		device.DestroyTexture(t.colorTex)
		t.colorTex = nil
	}
	t.width = 0
	t.height = 0
	t.bytesPerRow = 0
}
