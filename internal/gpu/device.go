//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device is a headless GPU device: a HAL device and queue with no surface
// or swap chain attached.
//
// A Device either owns its instance and device (created by OpenDevice) or
// borrows them from a host application (created by DeviceFromProvider).
// Borrowed handles are never destroyed by Close.
type Device struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	adapterName string
	external    bool
	closed      bool
}

// OpenDevice creates a headless device on the given HAL backend. A nil
// backend selects the registered Vulkan backend.
//
// Discrete and integrated GPUs are preferred over software adapters.
func OpenDevice(backend hal.Backend) (*Device, error) {
	if backend == nil {
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("%w: vulkan backend not registered", ErrNoAdapter)
		}
		backend = b
	}

	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoAdapter, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[selectAdapter(adapters)]

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", ErrNoAdapter, err)
	}

	slogger().Info("gpu: headless device opened", "adapter", selected.Info.Name)

	return &Device{
		instance:    instance,
		device:      openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
	}, nil
}

// selectAdapter returns the index of the first hardware adapter, or 0 when
// only software or unknown adapters are exposed.
func selectAdapter(adapters []hal.ExposedAdapter) int {
	for i := range adapters {
		switch adapters[i].Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU:
			return i
		}
	}
	return 0
}

// DeviceFromProvider wraps a device shared by a host application. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func DeviceFromProvider(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrInvalidProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrInvalidProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrInvalidProvider)
	}

	slogger().Info("gpu: using shared device from provider")

	return &Device{
		device:      device,
		queue:       queue,
		adapterName: "external",
		external:    true,
	}, nil
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) {
	return d.device, d.queue
}

// AdapterName returns the name of the selected adapter, or "external" for
// borrowed devices.
func (d *Device) AdapterName() string {
	return d.adapterName
}

// External reports whether the device is borrowed from a host.
func (d *Device) External() bool {
	return d.external
}

// Close destroys the device and instance when owned. Safe to call more
// than once.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true

	if !d.external {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.instance = nil
}
