package main

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/monotext"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/basicfont"
)

func TestParseScene(t *testing.T) {
	data := []byte(`
width: 200
height: 40
antialias: false
texts:
  - text: "a\nb"
    x: 4
    y: 2
    color: "#ff000080"
`)
	got, err := parseScene(data)
	if err != nil {
		t.Fatalf("parseScene: %v", err)
	}
	want := defaultScene()
	want.Width, want.Height, want.Antialias = 200, 40, false
	want.Texts = []TextItem{{Text: "a\nb", X: 4, Y: 2, Color: "#ff000080"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scene mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSceneErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "width: [1"},
		{"zero width", "width: 0"},
		{"no texts", "texts: []"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseScene([]byte(tt.data)); err == nil {
				t.Error("parseScene succeeded")
			}
		})
	}
	if _, err := parseScene([]byte("height: -1")); !errors.Is(err, monotext.ErrInvalidWindow) {
		t.Errorf("negative height err = %v, want ErrInvalidWindow", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#fff", color.RGBA{255, 255, 255, 255}, true},
		{"#102030", color.RGBA{0x10, 0x20, 0x30, 0xff}, true},
		{"10203040", color.RGBA{0x10, 0x20, 0x30, 0x40}, true},
		{"#12345", color.RGBA{}, false},
		{"#zzzzzz", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, err := parseHexColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("parseHexColor(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGradientEndpoints(t *testing.T) {
	img, err := gradient([]string{"#000000", "#ffffff"})
	if err != nil {
		t.Fatalf("gradient: %v", err)
	}
	b := img.Bounds()
	if got := img.RGBAAt(0, b.Min.Y); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("top = %v, want black", got)
	}
	if got := img.RGBAAt(0, b.Max.Y-1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("bottom = %v, want white", got)
	}
}

func TestSceneFrameRenders(t *testing.T) {
	face := basicfont.Face7x13
	atlas, err := monotext.BuildAtlas(face, monotext.LayoutForFace(face), monotext.Latin1)
	if err != nil {
		t.Fatalf("BuildAtlas: %v", err)
	}
	s := defaultScene()
	f, err := s.Frame(atlas)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if len(f.Layers) != 1 || len(f.Glyphs) != 1 {
		t.Fatalf("frame has %d layers and %d glyph draws", len(f.Layers), len(f.Glyphs))
	}
	if n := len(f.Glyphs[0].Instances); n != 2 {
		t.Errorf("instances = %d, want 2 (one per line)", n)
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
