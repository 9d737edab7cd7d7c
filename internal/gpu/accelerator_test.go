//go:build !nogpu

package gpu

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/monotext"
)

type halTestProvider struct {
	device any
	queue  any
}

func (p halTestProvider) HalDevice() any { return p.device }
func (p halTestProvider) HalQueue() any  { return p.queue }

func TestAcceleratorIdleFallsBack(t *testing.T) {
	a := NewAccelerator(DefaultRendererConfig())
	if a.Name() != "vulkan" {
		t.Errorf("Name() = %q, want vulkan", a.Name())
	}
	if a.Ready() {
		t.Fatal("accelerator ready before Init")
	}

	atlas := testAtlas(t)
	f := testFrame(t, atlas)
	err := a.RenderFrame(image.NewRGBA(f.Window.Bounds()), f)
	if !errors.Is(err, monotext.ErrFallbackToCPU) {
		t.Errorf("RenderFrame = %v, want ErrFallbackToCPU", err)
	}
	a.Close()
}

func TestAcceleratorSetDeviceProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	a := NewAccelerator(DefaultRendererConfig())
	if err := a.SetDeviceProvider(halTestProvider{device: device, queue: queue}); err != nil {
		t.Fatalf("SetDeviceProvider: %v", err)
	}
	if !a.Ready() {
		t.Fatal("accelerator not ready with a shared device")
	}

	atlas := testAtlas(t)
	f := testFrame(t, atlas)
	if err := a.RenderFrame(image.NewRGBA(f.Window.Bounds()), f); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	// Close must leave the shared device to its owner.
	a.Close()
	if a.Ready() {
		t.Error("accelerator ready after Close")
	}
	fence, err := device.CreateFence()
	if err != nil {
		t.Fatalf("shared device unusable after Close: %v", err)
	}
	device.DestroyFence(fence)
}

func TestAcceleratorRejectsBadProviders(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	tests := []struct {
		name     string
		provider any
	}{
		{"no hal methods", struct{}{}},
		{"wrong device type", halTestProvider{device: 1, queue: 2}},
		{"missing queue", halTestProvider{device: device}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccelerator(DefaultRendererConfig())
			defer a.Close()
			if err := a.SetDeviceProvider(tt.provider); !errors.Is(err, ErrNoHAL) {
				t.Errorf("SetDeviceProvider = %v, want ErrNoHAL", err)
			}
			if a.Ready() {
				t.Error("accelerator ready after a rejected provider")
			}
		})
	}
}

func TestSetLoggerNil(t *testing.T) {
	a := NewAccelerator(DefaultRendererConfig())
	a.SetLogger(nil)
	if slogger() == nil {
		t.Fatal("slogger() is nil after SetLogger(nil)")
	}
}
