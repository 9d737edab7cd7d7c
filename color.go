package monotext

import (
	"image/color"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1]. Values are straight (not
// premultiplied) unless a function says otherwise.
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// FromColor converts a standard color.Color to straight RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// Premultiply returns a premultiplied color.
func (c RGBA) Premultiply() RGBA {
	return RGBA{
		R: c.R * c.A,
		G: c.G * c.A,
		B: c.B * c.A,
		A: c.A,
	}
}

// Scale multiplies every channel, alpha included, by k.
func (c RGBA) Scale(k float64) RGBA {
	return RGBA{R: c.R * k, G: c.G * k, B: c.B * k, A: c.A * k}
}

// Over composites premultiplied src over premultiplied dst.
func (c RGBA) Over(dst RGBA) RGBA {
	inv := 1 - c.A
	return RGBA{
		R: c.R + dst.R*inv,
		G: c.G + dst.G*inv,
		B: c.B + dst.B*inv,
		A: c.A + dst.A*inv,
	}
}

// Float32 returns the four channels as float32, in RGBA order.
func (c RGBA) Float32() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// premulFromRGBA reads a premultiplied color.RGBA pixel.
func premulFromRGBA(p color.RGBA) RGBA {
	return RGBA{
		R: float64(p.R) / 255,
		G: float64(p.G) / 255,
		B: float64(p.B) / 255,
		A: float64(p.A) / 255,
	}
}

// toPremulRGBA quantizes a premultiplied color to 8 bits per channel.
func (c RGBA) toPremulRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp255(c.R*255 + 0.5)),
		G: uint8(clamp255(c.G*255 + 0.5)),
		B: uint8(clamp255(c.B*255 + 0.5)),
		A: uint8(clamp255(c.A*255 + 0.5)),
	}
}

// clamp255 restricts a value to [0, 255] range.
func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Transparent = RGBA{}
)
