//go:build !nogpu

package quadcast

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/quadcast/internal/gpu"
)

// gpuSource renders frames with the internal/gpu quad renderer.
type gpuSource struct {
	dev  *gpu.Device
	quad *gpu.QuadRenderer
}

// openSource opens the device selected by o and builds the quad renderer
// on it. On failure nothing stays allocated.
func openSource(o *rendererOptions) (frameSource, error) {
	var (
		dev *gpu.Device
		err error
	)
	if o.provider != nil {
		dev, err = gpu.DeviceFromProvider(o.provider)
	} else {
		dev, err = gpu.OpenDevice(o.backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoGPU, err)
	}

	device, queue := dev.HAL()
	quad, err := gpu.NewQuadRenderer(device, queue, gpu.QuadRendererConfig{
		Width:  uint32(o.width),  //nolint:gosec // validated positive by New
		Height: uint32(o.height), //nolint:gosec // validated positive by New
		ClearColor: gputypes.Color{
			R: o.clear.R,
			G: o.clear.G,
			B: o.clear.B,
			A: o.clear.A,
		},
	})
	if err != nil {
		dev.Close()
		if errors.Is(err, gpu.ErrShaderCompile) {
			return nil, fmt.Errorf("%w: %w", ErrShaderCompile, err)
		}
		return nil, err
	}
	Logger().Debug("quadcast: gpu source ready",
		"adapter", dev.AdapterName(),
		"external", dev.External(),
		"bytes_per_row", quad.BytesPerRow())
	return &gpuSource{dev: dev, quad: quad}, nil
}

func (s *gpuSource) upload(vertices []byte) error {
	return s.quad.UploadVertices(vertices)
}

func (s *gpuSource) render(dst []byte) error {
	return s.quad.RenderFrame(dst, true)
}

func (s *gpuSource) adapterName() string {
	return s.dev.AdapterName()
}

// close destroys the quad resources before the device they live on.
func (s *gpuSource) close() {
	s.quad.Destroy()
	s.dev.Close()
}

// propagateLogger forwards the package logger to the GPU layer.
func propagateLogger(l *slog.Logger) {
	gpu.SetLogger(l)
}
