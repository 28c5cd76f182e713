//go:build !nogpu

// Package gpu renders the quadcast quad off-screen with gogpu/wgpu HAL.
//
// It owns the headless device (Device), the quad's GPU resource set
// (QuadRenderer), and the frame readback path:
//
//	clear + draw -> BGRA8Unorm target -> CopyTextureToBuffer -> staging
//	buffer (rows aligned to 256 bytes) -> fence wait -> ReadBuffer -> RGBA
//
// Shaders are written in WGSL, embedded, and compiled to SPIR-V with naga
// when the renderer is created. Both stages use the entry point "main".
//
// Devices come from a registered HAL backend (Vulkan by default) or from a
// host application that exposes HalDevice() and HalQueue(). A borrowed
// device is never destroyed here.
//
// This is an internal package. Use the quadcast package instead.
package gpu
