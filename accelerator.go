package monotext

import (
	"errors"
	"image"
	"sync"
)

// GPUAccelerator is an optional GPU renderer for frames.
//
// When registered via RegisterAccelerator, Render tries the accelerator
// first. If it returns ErrFallbackToCPU or any other error, the frame is
// drawn by the software renderer instead.
//
// Users opt in to GPU rendering via blank import:
//
//	import _ "github.com/gogpu/monotext/gpu"
type GPUAccelerator interface {
	// Name returns the accelerator name (e.g., "vulkan").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// RenderFrame draws f over target. It must leave target untouched
	// when it returns an error.
	RenderFrame(target *image.RGBA, f *Frame) error
}

// DeviceProviderAware is an optional interface for accelerators that can
// render on a device owned by the host application instead of creating
// their own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   GPUAccelerator
)

// RegisterAccelerator registers the GPU accelerator used by Render.
//
// Only one accelerator can be registered; a later call replaces and closes
// the previous one. Init is called first and, if it fails, nothing is
// registered.
func RegisterAccelerator(a GPUAccelerator) error {
	if a == nil {
		return errors.New("monotext: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())

	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil && old != a {
		old.Close()
	}
	return nil
}

// Accelerator returns the registered accelerator, or nil.
func Accelerator() GPUAccelerator {
	accelMu.RLock()
	defer accelMu.RUnlock()
	return accel
}

// SetAcceleratorDeviceProvider hands a device provider to the registered
// accelerator. It is a no-op without an accelerator or when the
// accelerator cannot share devices.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}

// Render draws f over target, on the GPU when an accelerator is registered
// and on the CPU otherwise.
func Render(target *image.RGBA, f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := checkTarget(target, f.Window); err != nil {
		return err
	}
	if a := Accelerator(); a != nil {
		err := a.RenderFrame(target, f)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrFallbackToCPU) {
			Logger().Debug("accelerator declined frame", "accelerator", a.Name(), "reason", err)
		} else {
			Logger().Warn("accelerator failed, rendering on CPU", "accelerator", a.Name(), "err", err)
		}
	}
	return sharedSoftwareRenderer().RenderFrame(target, f)
}
