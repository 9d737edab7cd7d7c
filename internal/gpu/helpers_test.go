//go:build !nogpu

package gpu

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/monotext"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device for tests that need hal objects
// without a real GPU.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// testAtlas returns a default-layout atlas whose 'A' cell is fully covered.
func testAtlas(t *testing.T) *monotext.Atlas {
	t.Helper()
	img := image.NewGray(monotext.DefaultLayout.Bounds())
	r := monotext.CellRect(monotext.DefaultLayout, 'A')
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	atlas, err := monotext.NewAtlas(img, monotext.DefaultLayout)
	if err != nil {
		t.Fatalf("NewAtlas: %v", err)
	}
	return atlas
}

// testFrame builds a 32x16 frame with one layer and one glyph draw of "AB".
func testFrame(t *testing.T, atlas *monotext.Atlas) *monotext.Frame {
	t.Helper()
	b := monotext.NewBatch(atlas.Layout())
	if err := b.Add("AB", 2, 4, monotext.RGB(1, 1, 1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	draw, err := b.Draw(atlas, true)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	bg := image.NewRGBA(image.Rect(0, 0, 4, 4))
	return &monotext.Frame{
		Window: monotext.Window{Width: 32, Height: 16},
		Layers: []monotext.Layer{{Image: bg}},
		Glyphs: []monotext.GlyphDraw{draw},
	}
}

// skipOnNagaLimitation skips the test for errors caused by WGSL features
// naga does not implement yet.
func skipOnNagaLimitation(t *testing.T, err error) {
	t.Helper()
	msg := err.Error()
	if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
		t.Skipf("Skipping: naga feature not yet implemented: %v", err)
	}
	if strings.Contains(msg, "lowering error") {
		t.Skipf("Skipping: naga lowering limitation: %v", err)
	}
}
