//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"image"
	"math"
	"testing"

	"github.com/gogpu/monotext"
)

func readFloat(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestBuildInstanceData(t *testing.T) {
	inst := monotext.Instance{
		Rect:       monotext.Rect{X: 3, Y: 4, W: 40, H: 8},
		WordOffset: 2,
		Count:      5,
		Color:      monotext.RGBA{R: 1, G: 0.5, B: 0, A: 0.5},
	}
	b := buildInstanceData([]monotext.Instance{inst, inst}, monotext.DefaultLayout)
	if len(b) != 2*glyphInstanceStride {
		t.Fatalf("len = %d, want %d", len(b), 2*glyphInstanceStride)
	}

	floats := []struct {
		off  int
		want float32
	}{
		{0, 3}, {4, 4}, {8, 40}, {12, 8}, // rect
		{16, 40}, {20, 8}, // uv extent: Count*W, H
		{32, 0.5}, {36, 0.25}, {40, 0}, {44, 0.5}, // premultiplied tint
	}
	for _, f := range floats {
		if got := readFloat(b, f.off); got != f.want {
			t.Errorf("float at %d = %v, want %v", f.off, got, f.want)
		}
	}
	if got := binary.LittleEndian.Uint32(b[24:]); got != 2 {
		t.Errorf("word offset = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(b[28:]); got != 5 {
		t.Errorf("count = %d, want 5", got)
	}
	if got := readFloat(b, glyphInstanceStride); got != 3 {
		t.Errorf("second instance rect.x = %v, want 3", got)
	}
}

func TestGlyphInstanceLayout(t *testing.T) {
	layouts := glyphInstanceLayout()
	if len(layouts) != 1 {
		t.Fatalf("got %d layouts, want 1", len(layouts))
	}
	l := layouts[0]
	if l.ArrayStride != glyphInstanceStride {
		t.Errorf("stride = %d, want %d", l.ArrayStride, glyphInstanceStride)
	}
	for i, a := range l.Attributes {
		if int(a.ShaderLocation) != i {
			t.Errorf("attribute %d location = %d", i, a.ShaderLocation)
		}
	}
}

func TestMakeGlyphParams(t *testing.T) {
	atlas := testAtlas(t)
	cfg := monotext.DrawConfig{Window: monotext.Window{Width: 640, Height: 480}, Antialias: true}
	b := makeGlyphParams(cfg, atlas)
	if len(b) != glyphParamsSize {
		t.Fatalf("len = %d, want %d", len(b), glyphParamsSize)
	}
	want := []float32{640, 480, 2048, 8, 8, 8}
	for i, w := range want {
		if got := readFloat(b, i*4); got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
	if got := binary.LittleEndian.Uint32(b[24:]); got != 256 {
		t.Errorf("columns = %d, want 256", got)
	}
	if got := binary.LittleEndian.Uint32(b[28:]); got != flagAntialias {
		t.Errorf("flags = %d, want %d", got, flagAntialias)
	}

	cfg.Antialias = false
	if got := binary.LittleEndian.Uint32(makeGlyphParams(cfg, atlas)[28:]); got != 0 {
		t.Errorf("flags without antialias = %d, want 0", got)
	}
}

func TestMakeBlitParams(t *testing.T) {
	cfg := monotext.DrawConfig{Window: monotext.Window{Width: 100, Height: 50}}
	b := makeBlitParams(cfg, image.Rect(10, 20, 30, 50))
	want := map[int]float32{0: 100, 4: 50, 16: 10, 20: 20, 24: 20, 28: 30}
	for off, w := range want {
		if got := readFloat(b, off); got != w {
			t.Errorf("float at %d = %v, want %v", off, got, w)
		}
	}
}

func TestAtlasTexels(t *testing.T) {
	atlas := testAtlas(t)
	texels := atlasTexels(atlas)
	size := atlas.Size()
	if len(texels) != size.X*size.Y {
		t.Fatalf("len = %d, want %d", len(texels), size.X*size.Y)
	}
	if texels['A'*8] != 255 || texels['B'*8] != 0 {
		t.Errorf("texels A=%d B=%d, want 255 and 0", texels['A'*8], texels['B'*8])
	}
}

func TestTightAndStoreRows(t *testing.T) {
	parent := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for i := range parent.Pix {
		parent.Pix[i] = uint8(i)
	}
	sub := parent.SubImage(image.Rect(2, 1, 5, 3)).(*image.RGBA)

	rows := tightRows(sub)
	if len(rows) != 3*2*4 {
		t.Fatalf("len = %d, want 24", len(rows))
	}
	if rows[0] != parent.Pix[parent.PixOffset(2, 1)] {
		t.Errorf("first byte = %d, want %d", rows[0], parent.Pix[parent.PixOffset(2, 1)])
	}

	// Store with a padded pitch, as a readback buffer would have.
	const pitch = 256
	padded := make([]byte, pitch*2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 12; x++ {
			padded[y*pitch+x] = 0xAB
		}
	}
	storeRows(sub, padded, pitch)
	if got := parent.Pix[parent.PixOffset(4, 2)]; got != 0xAB {
		t.Errorf("stored pixel = %#x, want 0xab", got)
	}
	if got := parent.Pix[parent.PixOffset(5, 2)]; got == 0xAB {
		t.Error("storeRows wrote outside the sub-image")
	}
}

func TestPremultipliedPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0], img.Pix[1], img.Pix[2], img.Pix[3] = 255, 255, 255, 128
	got := premultipliedPixels(img)
	if got[0] != 128 || got[3] != 128 {
		t.Errorf("premultiplied = %v, want [128 128 128 128]", got)
	}
}
