package monotext

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// stubAccel implements GPUAccelerator for testing.
type stubAccel struct {
	name      string
	initErr   error
	renderErr error

	mu       sync.Mutex
	closed   bool
	rendered int
}

func (s *stubAccel) Name() string { return s.name }

func (s *stubAccel) Init() error { return s.initErr }

func (s *stubAccel) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *stubAccel) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *stubAccel) RenderFrame(target *image.RGBA, _ *Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rendered++
	if s.renderErr != nil {
		return s.renderErr
	}
	target.SetRGBA(0, 0, color.RGBA{G: 255, A: 255})
	return nil
}

// resetAccelerator clears the global accelerator state between tests.
func resetAccelerator() {
	accelMu.Lock()
	accel = nil
	accelMu.Unlock()
}

func TestRegisterAcceleratorNil(t *testing.T) {
	resetAccelerator()
	if err := RegisterAccelerator(nil); err == nil {
		t.Fatal("expected error when registering nil accelerator")
	}
	if Accelerator() != nil {
		t.Error("accelerator should remain nil after failed registration")
	}
}

func TestRegisterAcceleratorInitError(t *testing.T) {
	t.Cleanup(resetAccelerator)
	resetAccelerator()

	initErr := errors.New("GPU init failed")
	if err := RegisterAccelerator(&stubAccel{name: "failing", initErr: initErr}); !errors.Is(err, initErr) {
		t.Fatalf("err = %v, want %v", err, initErr)
	}
	if Accelerator() != nil {
		t.Error("accelerator registered despite Init failure")
	}
}

func TestRegisterAcceleratorReplacesAndCloses(t *testing.T) {
	t.Cleanup(resetAccelerator)
	resetAccelerator()

	first := &stubAccel{name: "first"}
	second := &stubAccel{name: "second"}
	if err := RegisterAccelerator(first); err != nil {
		t.Fatal(err)
	}
	if err := RegisterAccelerator(second); err != nil {
		t.Fatal(err)
	}
	if Accelerator() != second {
		t.Errorf("Accelerator() = %v, want second", Accelerator())
	}
	if !first.isClosed() {
		t.Error("replaced accelerator was not closed")
	}
	if second.isClosed() {
		t.Error("active accelerator was closed")
	}
}

type providerAccel struct {
	stubAccel
	provider any
}

func (p *providerAccel) SetDeviceProvider(provider any) error {
	p.provider = provider
	return nil
}

func TestSetAcceleratorDeviceProvider(t *testing.T) {
	t.Cleanup(resetAccelerator)
	resetAccelerator()

	if err := SetAcceleratorDeviceProvider("device"); err != nil {
		t.Errorf("no accelerator: err = %v", err)
	}

	a := &providerAccel{}
	if err := RegisterAccelerator(a); err != nil {
		t.Fatal(err)
	}
	if err := SetAcceleratorDeviceProvider("device"); err != nil {
		t.Fatal(err)
	}
	if a.provider != "device" {
		t.Errorf("provider = %v, want \"device\"", a.provider)
	}
}

func TestRenderUsesAccelerator(t *testing.T) {
	t.Cleanup(resetAccelerator)
	resetAccelerator()

	a := &stubAccel{name: "stub"}
	if err := RegisterAccelerator(a); err != nil {
		t.Fatal(err)
	}
	target := image.NewRGBA(image.Rect(0, 0, 16, 8))
	if err := Render(target, glyphFrame(t, false)); err != nil {
		t.Fatal(err)
	}
	if a.rendered != 1 {
		t.Errorf("accelerator rendered %d frames, want 1", a.rendered)
	}
	if got := target.RGBAAt(0, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("pixel = %v, want accelerator output", got)
	}
}

func TestRenderFallsBackToCPU(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	t.Cleanup(resetAccelerator)
	resetAccelerator()

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	tests := []struct {
		name string
		err  error
		warn bool
	}{
		{"declined", ErrFallbackToCPU, false},
		{"failed", errors.New("device lost"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			if err := RegisterAccelerator(&stubAccel{name: "stub", renderErr: tt.err}); err != nil {
				t.Fatal(err)
			}
			target := image.NewRGBA(image.Rect(0, 0, 16, 8))
			if err := Render(target, glyphFrame(t, false)); err != nil {
				t.Fatal(err)
			}
			if target.RGBAAt(2, 2).A != 255 {
				t.Error("software fallback drew nothing")
			}
			if got := strings.Contains(buf.String(), "level=WARN"); got != tt.warn {
				t.Errorf("warning logged = %v, want %v: %q", got, tt.warn, buf.String())
			}
		})
	}
}

func TestRenderWithoutAccelerator(t *testing.T) {
	resetAccelerator()
	target := image.NewRGBA(image.Rect(0, 0, 16, 8))
	if err := Render(target, glyphFrame(t, false)); err != nil {
		t.Fatal(err)
	}
	if target.RGBAAt(2, 2) != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("pixel = %v", target.RGBAAt(2, 2))
	}
}

func TestRenderValidatesBeforeAccelerator(t *testing.T) {
	t.Cleanup(resetAccelerator)
	resetAccelerator()

	a := &stubAccel{name: "stub"}
	_ = RegisterAccelerator(a)
	f := glyphFrame(t, false)
	f.Glyphs[0].Instances[0].Count = 0
	if err := Render(image.NewRGBA(image.Rect(0, 0, 16, 8)), f); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("err = %v, want ErrInvalidInstance", err)
	}
	if a.rendered != 0 {
		t.Error("invalid frame reached the accelerator")
	}
}
