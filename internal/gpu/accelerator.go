//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/monotext"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Accelerator renders monotext frames on a Vulkan device through wgpu/hal.
// It implements monotext.GPUAccelerator.
//
// Init never fails: without a usable adapter the accelerator stays idle and
// every frame returns monotext.ErrFallbackToCPU.
type Accelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	renderer *Renderer

	cfg            RendererConfig
	gpuReady       bool
	externalDevice bool
}

var (
	_ monotext.GPUAccelerator      = (*Accelerator)(nil)
	_ monotext.DeviceProviderAware = (*Accelerator)(nil)
)

// NewAccelerator returns an accelerator whose renderer uses cfg.
func NewAccelerator(cfg RendererConfig) *Accelerator {
	return &Accelerator{cfg: cfg}
}

func (a *Accelerator) Name() string { return "vulkan" }

func (a *Accelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initGPU(); err != nil {
		slogger().Warn("GPU init failed, using CPU fallback", "err", err)
		a.releaseOwned()
	}
	return nil
}

// Ready reports whether frames are rendered on the GPU.
func (a *Accelerator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// SetLogger routes the package log output to l.
func (a *Accelerator) SetLogger(l *slog.Logger) { setLogger(l) }

func (a *Accelerator) RenderFrame(target *image.RGBA, f *monotext.Frame) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady || a.renderer == nil {
		return monotext.ErrFallbackToCPU
	}
	return a.renderer.RenderFrame(target, f)
}

func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.renderer != nil {
		a.renderer.Close()
		a.renderer = nil
	}
	if a.externalDevice {
		a.device = nil
		a.instance = nil
	} else {
		a.releaseOwned()
	}
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}

// SetDeviceProvider switches the accelerator to a device owned by the host.
// The provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func (a *Accelerator) SetDeviceProvider(provider any) error {
	device, queue, err := HALFromProvider(provider)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.renderer != nil {
		a.renderer.Close()
		a.renderer = nil
	}
	if !a.externalDevice {
		a.releaseOwned()
	}

	a.device = device
	a.queue = queue
	a.externalDevice = true
	a.renderer = NewRenderer(device, queue, a.cfg)
	a.gpuReady = true
	slogger().Info("switched to shared GPU device")
	return nil
}

// ErrNoHAL is returned for device providers that do not expose HAL types.
var ErrNoHAL = errors.New("gpu: provider does not expose HAL types")

// HALFromProvider extracts the hal device and queue of a provider
// implementing HalDevice() any and HalQueue() any.
func HALFromProvider(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return device, queue, nil
}

func (a *Accelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		t := adapters[i].Info.DeviceType
		if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	a.renderer = NewRenderer(a.device, a.queue, a.cfg)
	if err := a.renderer.glyph.ensurePipeline(); err != nil {
		return fmt.Errorf("create glyph pipeline: %w", err)
	}
	if err := a.renderer.blit.ensurePipeline(); err != nil {
		return fmt.Errorf("create blit pipeline: %w", err)
	}
	a.gpuReady = true
	slogger().Info("GPU accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

// releaseOwned destroys the device and instance this accelerator created.
func (a *Accelerator) releaseOwned() {
	if a.renderer != nil {
		a.renderer.Close()
		a.renderer = nil
	}
	if a.device != nil {
		a.device.Destroy()
		a.device = nil
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}
	a.queue = nil
	a.gpuReady = false
}
