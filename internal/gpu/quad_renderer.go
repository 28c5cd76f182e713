//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// QuadVertexStride is the byte stride per vertex in the quad pipeline.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location 0)
//	color    (vec4<f32>) = 16 bytes (location 1)
//
// Total = 24 bytes per vertex.
const QuadVertexStride = 24

// QuadVertexCount is the number of vertices (and indices) in the quad strip.
const QuadVertexCount = 4

// readbackTimeout bounds the wait for a submitted frame before the staging
// buffer is read.
const readbackTimeout = 5 * time.Second

// quadIndices draws the four vertices in order as a triangle strip.
var quadIndices = [QuadVertexCount]uint16{0, 1, 2, 3}

// QuadRendererConfig configures a QuadRenderer.
type QuadRendererConfig struct {
	// Width and Height are the offscreen target size in pixels.
	Width  uint32
	Height uint32

	// ClearColor is the color the target is cleared to each frame.
	ClearColor gputypes.Color
}

// QuadRenderer owns every GPU resource of the offscreen quad: shader modules,
// pipeline, vertex and index buffers, color target, and staging buffer.
//
// The resources are created together by NewQuadRenderer and released
// together by Destroy. A QuadRenderer is not safe for concurrent use; the
// caller serializes UploadVertices and RenderFrame.
type QuadRenderer struct {
	device hal.Device
	queue  hal.Queue

	clear gputypes.Color

	vsModule   hal.ShaderModule
	fsModule   hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	vertBuf hal.Buffer
	idxBuf  hal.Buffer

	target offscreenTarget

	// readback receives the padded staging rows each frame.
	readback []byte

	destroyOnce sync.Once
	destroyed   bool
}

// NewQuadRenderer compiles the quad shaders and creates the pipeline,
// buffers, and offscreen target on the given device.
//
// If any step fails, everything created before it is released and the
// error is returned; no partially built renderer escapes.
func NewQuadRenderer(device hal.Device, queue hal.Queue, cfg QuadRendererConfig) (*QuadRenderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, cfg.Width, cfg.Height)
	}

	r := &QuadRenderer{
		device: device,
		queue:  queue,
		clear:  cfg.ClearColor,
	}
	if err := r.init(cfg.Width, cfg.Height); err != nil {
		r.Destroy()
		return nil, err
	}

	slogger().Debug("gpu: quad renderer created",
		"width", cfg.Width, "height", cfg.Height,
		"bytes_per_row", r.target.bytesPerRow)
	return r, nil
}

// init creates resources in dependency order: target, shaders, layout,
// pipeline, buffers.
func (r *QuadRenderer) init(w, h uint32) error {
	if err := r.target.create(r.device, w, h); err != nil {
		return err
	}
	r.readback = make([]byte, r.target.stagingSize())

	vs, err := createShaderModule(r.device, "quad_vs", quadVertexShaderSource)
	if err != nil {
		return err
	}
	r.vsModule = vs

	fs, err := createShaderModule(r.device, "quad_fs", quadFragmentShaderSource)
	if err != nil {
		return err
	}
	r.fsModule = fs

	if err := r.createPipeline(); err != nil {
		return err
	}
	return r.createBuffers()
}

// createPipeline builds the fixed-function quad pipeline: no depth/stencil,
// unblended color writes, back-face culling, triangle strip, clockwise
// front faces.
func (r *QuadRenderer) createPipeline() error {
	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "quad_pipe_layout",
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	// A nil Blend replaces the destination with the fragment color.
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quad_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.vsModule,
			EntryPoint: shaderEntryPoint,
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.fsModule,
			EntryPoint: shaderEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleStrip,
			FrontFace: gputypes.FrontFaceCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline: %w", err)
	}
	r.pipeline = pipeline
	return nil
}

// createBuffers allocates the vertex buffer and uploads the fixed indices.
func (r *QuadRenderer) createBuffers() error {
	vertBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quad_vertices",
		Size:  QuadVertexCount * QuadVertexStride,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create quad vertex buffer: %w", err)
	}
	r.vertBuf = vertBuf

	idxData := make([]byte, len(quadIndices)*2)
	for i, idx := range quadIndices {
		binary.LittleEndian.PutUint16(idxData[i*2:], idx)
	}
	idxBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quad_indices",
		Size:  uint64(len(idxData)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create quad index buffer: %w", err)
	}
	r.idxBuf = idxBuf
	r.queue.WriteBuffer(r.idxBuf, 0, idxData)
	return nil
}

// quadVertexLayout returns the vertex buffer layout for the quad pipeline.
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: QuadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1}, // color
			},
		},
	}
}

// Size returns the offscreen target dimensions.
func (r *QuadRenderer) Size() (width, height uint32) {
	return r.target.width, r.target.height
}

// BytesPerRow returns the padded staging row pitch.
func (r *QuadRenderer) BytesPerRow() uint32 {
	return r.target.bytesPerRow
}

// UploadVertices writes QuadVertexCount vertices (QuadVertexStride bytes
// each) to the vertex buffer.
func (r *QuadRenderer) UploadVertices(data []byte) error {
	if r.destroyed {
		return ErrDestroyed
	}
	if len(data) != QuadVertexCount*QuadVertexStride {
		return fmt.Errorf("gpu: vertex data is %d bytes, want %d", len(data), QuadVertexCount*QuadVertexStride)
	}
	r.queue.WriteBuffer(r.vertBuf, 0, data)
	return nil
}

// RenderFrame clears the target, draws the quad when draw is true, copies
// the target into the staging buffer, waits for the GPU, and writes the
// frame into dst as tightly packed RGBA.
//
// dst must hold at least width*height*4 bytes.
func (r *QuadRenderer) RenderFrame(dst []byte, draw bool) error {
	if r.destroyed {
		return ErrDestroyed
	}
	w, h := r.target.width, r.target.height
	if need := int(w) * int(h) * 4; len(dst) < need {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrShortBuffer, need, len(dst))
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "quad_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quad_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "quad_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       r.target.colorView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.clear,
		}},
	})
	if draw {
		rp.SetPipeline(r.pipeline)
		rp.SetVertexBuffer(0, r.vertBuf, 0)
		rp.SetIndexBuffer(r.idxBuf, gputypes.IndexFormatUint16, 0)
		rp.DrawIndexed(QuadVertexCount, 1, 0, 0, 0)
	}
	rp.End()

	// The target leaves the pass in attachment layout; the copy needs it as
	// a transfer source. No-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.target.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	encoder.CopyTextureToBuffer(r.target.colorTex, r.target.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: r.target.bytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.target.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	// Back to attachment usage so the next frame's pass starts from the
	// layout it expects.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.target.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	if err := r.submitAndWait(cmdBuf); err != nil {
		return err
	}

	if err := r.queue.ReadBuffer(r.target.staging, 0, r.readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	convertBGRAToRGBA(r.readback, dst, int(w), int(h), int(r.target.bytesPerRow))
	return nil
}

// submitAndWait submits the command buffer and blocks until the GPU has
// finished it. Reading the staging buffer before this returns could observe
// a stale or partially rendered frame.
func (r *QuadRenderer) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := r.device.Wait(fence, 1, readbackTimeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return ErrReadbackTimeout
	}
	return nil
}

// Destroy releases all GPU resources in reverse creation order: pipeline,
// shader modules, pipeline layout, buffers, then the offscreen target.
// Safe to call multiple times or on a partially initialized renderer.
func (r *QuadRenderer) Destroy() {
	r.destroyOnce.Do(r.destroy)
}

func (r *QuadRenderer) destroy() {
	r.destroyed = true
	if r.device == nil {
		return
	}
	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.fsModule != nil {
		r.device.DestroyShaderModule(r.fsModule)
		r.fsModule = nil
	}
	if r.vsModule != nil {
		r.device.DestroyShaderModule(r.vsModule)
		r.vsModule = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.vertBuf != nil {
		r.device.DestroyBuffer(r.vertBuf)
		r.vertBuf = nil
	}
	if r.idxBuf != nil {
		r.device.DestroyBuffer(r.idxBuf)
		r.idxBuf = nil
	}
	r.target.destroy(r.device)
	r.readback = nil
}
