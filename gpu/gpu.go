//go:build !nogpu

// Package gpu registers the Vulkan accelerator used by monotext.Render.
//
// If GPU initialization fails (no Vulkan device available), the accelerator
// stays idle and every frame is drawn by the software renderer.
//
// Usage:
//
//	import _ "github.com/gogpu/monotext/gpu" // enable GPU rendering
//
// Hosts that already own a device either hand it to the registered
// accelerator with SetDeviceProvider or build a standalone Renderer with
// NewRendererFromProvider.
package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/monotext"
	gpuimpl "github.com/gogpu/monotext/internal/gpu"
	"github.com/gogpu/wgpu/hal"
)

// Renderer draws monotext frames on a hal device with offscreen readback.
type Renderer = gpuimpl.Renderer

// RendererConfig configures a Renderer.
type RendererConfig = gpuimpl.RendererConfig

// DefaultRendererConfig returns the default renderer configuration.
func DefaultRendererConfig() RendererConfig { return gpuimpl.DefaultRendererConfig() }

// ErrNoHALAccess is returned by NewRendererFromProvider for providers
// that do not expose their hal device and queue.
var ErrNoHALAccess = gpuimpl.ErrNoHAL

func init() {
	accel := gpuimpl.NewAccelerator(gpuimpl.DefaultRendererConfig())
	if err := monotext.RegisterAccelerator(accel); err != nil {
		monotext.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the registered accelerator to render on a
// shared device. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func SetDeviceProvider(provider any) error {
	return monotext.SetAcceleratorDeviceProvider(provider)
}

// NewRenderer returns a renderer for an existing hal device and queue.
func NewRenderer(device hal.Device, queue hal.Queue, cfg RendererConfig) *Renderer {
	return gpuimpl.NewRenderer(device, queue, cfg)
}

// NewRendererFromProvider returns a renderer on the device of a
// gpucontext.DeviceProvider, such as a gogpu application.
func NewRendererFromProvider(p gpucontext.DeviceProvider, cfg RendererConfig) (*Renderer, error) {
	device, queue, err := gpuimpl.HALFromProvider(p)
	if err != nil {
		return nil, err
	}
	monotext.Logger().Debug("renderer on provider device", "surface_format", p.SurfaceFormat())
	return gpuimpl.NewRenderer(device, queue, cfg), nil
}
