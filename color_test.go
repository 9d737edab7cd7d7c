package monotext

import (
	"image/color"
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPremultiply(t *testing.T) {
	c := RGBA{R: 1, G: 0.5, B: 0.25, A: 0.5}.Premultiply()
	want := RGBA{R: 0.5, G: 0.25, B: 0.125, A: 0.5}
	if c != want {
		t.Errorf("Premultiply() = %+v, want %+v", c, want)
	}
}

func TestScaleAllChannels(t *testing.T) {
	c := RGBA{R: 0.8, G: 0.4, B: 0.2, A: 1}.Scale(0.75)
	for i, got := range []float64{c.R, c.G, c.B, c.A} {
		want := []float64{0.6, 0.3, 0.15, 0.75}[i]
		if !approxEqual(got, want) {
			t.Errorf("channel %d = %v, want %v", i, got, want)
		}
	}
}

func TestOver(t *testing.T) {
	tests := []struct {
		name     string
		src, dst RGBA
		want     RGBA
	}{
		{"opaque src wins", RGBA{R: 1, A: 1}, RGBA{B: 1, A: 1}, RGBA{R: 1, A: 1}},
		{"transparent src keeps dst", RGBA{}, RGBA{G: 1, A: 1}, RGBA{G: 1, A: 1}},
		{"half over opaque", RGBA{R: 0.5, A: 0.5}, RGBA{B: 1, A: 1}, RGBA{R: 0.5, B: 0.5, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.src.Over(tt.dst); got != tt.want {
				t.Errorf("Over() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFromColorRoundTrip(t *testing.T) {
	in := color.NRGBA{R: 255, G: 128, B: 0, A: 255}
	got := FromColor(in).Color().(color.NRGBA)
	if got != in {
		t.Errorf("round trip = %+v, want %+v", got, in)
	}
}

func TestToPremulRGBAClamps(t *testing.T) {
	got := RGBA{R: 2, G: -1, B: 0.5, A: 1}.toPremulRGBA()
	want := color.RGBA{R: 255, G: 0, B: 128, A: 255}
	if got != want {
		t.Errorf("toPremulRGBA() = %+v, want %+v", got, want)
	}
}
