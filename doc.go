// Package quadcast renders a rotating colored quad off-screen on the GPU and
// hands each frame back as a base64-encoded BMP.
//
// # Quick Start
//
//	r, err := quadcast.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	b64, err := r.GetImage()
//	if err != nil {
//	    log.Print(err) // the next call may succeed
//	}
//	html := `<img src="` + quadcast.DataURI(b64) + `">`
//
// # Render Cycle
//
// Each GetImage call advances the animation, rotates the four quad vertices
// in place, uploads them, renders into an 800x600 BGRA8Unorm target with no
// swap chain, copies the target into a staging buffer, waits for the GPU,
// swaps the channels to RGBA, and encodes the pixels as BMP and base64.
//
// The rotation angle is the millisecond component of the time since the
// previous call, scaled so 1000 ms is half a turn. This makes rotation speed
// wrap once per second. WithSmoothRotation uses the whole elapsed time.
//
// # Devices
//
// By default New opens a headless Vulkan device. WithBackend selects another
// registered HAL backend, and WithDeviceProvider borrows the device of a host
// application (for example a gogpu window); a borrowed device is never
// destroyed by Close.
//
// # Concurrency
//
// A Renderer serializes its operations. Concurrent GetImage calls are safe
// but run one after another; a host timer should not schedule a new call
// before the previous one returns.
//
// # Logging
//
// quadcast is silent by default. Call SetLogger to receive device selection
// and per-frame timing records.
package quadcast
