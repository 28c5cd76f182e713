//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL shader sources. Both stages use the entry point "main",
// so they live in separate modules.

//go:embed shaders/quad_vs.wgsl
var quadVertexShaderSource string

//go:embed shaders/quad_fs.wgsl
var quadFragmentShaderSource string

// shaderEntryPoint is the entry point name of both quad stages.
const shaderEntryPoint = "main"

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(label, source string) ([]uint32, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: %s: empty source", ErrShaderCompile, label)
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: %s: SPIR-V length %d is not word aligned", ErrShaderCompile, label, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// createShaderModule compiles source and creates a device shader module
// from the resulting SPIR-V.
func createShaderModule(device hal.Device, label, source string) (hal.ShaderModule, error) {
	code, err := compileWGSL(label, source)
	if err != nil {
		return nil, err
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: code,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}
	return module, nil
}
