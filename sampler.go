package monotext

import (
	"image"
	"math"
)

// Sampler reads normalized coordinates from an image with clamp-to-edge
// addressing, the way the GPU samplers are configured.
type Sampler struct {
	Filter Filter
}

// Coverage samples the atlas coverage at normalized (u, v).
func (s Sampler) Coverage(a *Atlas, u, v float64) float64 {
	size := a.Size()
	if s.Filter == FilterNearest {
		x, y := nearestTexel(u, v, size)
		return a.Texel(x, y)
	}
	x0, y0, fx, fy := linearFootprint(u, v, size)
	c00 := a.Texel(x0, y0)
	c10 := a.Texel(x0+1, y0)
	c01 := a.Texel(x0, y0+1)
	c11 := a.Texel(x0+1, y0+1)
	top := c00 + (c10-c00)*fx
	bottom := c01 + (c11-c01)*fx
	return top + (bottom-top)*fy
}

// Gather returns the four atlas texels of the bilinear footprint around
// (u, v), in the order (x0,y1), (x1,y1), (x1,y0), (x0,y0). The filter
// does not affect the footprint.
func (s Sampler) Gather(a *Atlas, u, v float64) [4]float64 {
	x0, y0, _, _ := linearFootprint(u, v, a.Size())
	return [4]float64{
		a.Texel(x0, y0+1),
		a.Texel(x0+1, y0+1),
		a.Texel(x0+1, y0),
		a.Texel(x0, y0),
	}
}

// Color samples img at normalized (u, v) and returns a premultiplied
// color.
func (s Sampler) Color(img image.Image, u, v float64) RGBA {
	b := img.Bounds()
	size := b.Size()
	at := func(x, y int) RGBA {
		x = clampInt(x, 0, size.X-1) + b.Min.X
		y = clampInt(y, 0, size.Y-1) + b.Min.Y
		return pixelAt(img, x, y)
	}
	if s.Filter == FilterNearest {
		x, y := nearestTexel(u, v, size)
		return at(x, y)
	}
	x0, y0, fx, fy := linearFootprint(u, v, size)
	c00, c10 := at(x0, y0), at(x0+1, y0)
	c01, c11 := at(x0, y0+1), at(x0+1, y0+1)
	return RGBA{
		R: lerp2(c00.R, c10.R, c01.R, c11.R, fx, fy),
		G: lerp2(c00.G, c10.G, c01.G, c11.G, fx, fy),
		B: lerp2(c00.B, c10.B, c01.B, c11.B, fx, fy),
		A: lerp2(c00.A, c10.A, c01.A, c11.A, fx, fy),
	}
}

func nearestTexel(u, v float64, size image.Point) (int, int) {
	return int(math.Floor(u * float64(size.X))), int(math.Floor(v * float64(size.Y)))
}

// linearFootprint returns the top-left texel of the 2x2 footprint and the
// fractional weights toward the far texels.
func linearFootprint(u, v float64, size image.Point) (x0, y0 int, fx, fy float64) {
	px := u*float64(size.X) - 0.5
	py := v*float64(size.Y) - 0.5
	fx0, fy0 := math.Floor(px), math.Floor(py)
	return int(fx0), int(fy0), px - fx0, py - fy0
}

func lerp2(c00, c10, c01, c11, fx, fy float64) float64 {
	top := c00 + (c10-c00)*fx
	bottom := c01 + (c11-c01)*fx
	return top + (bottom-top)*fy
}

// pixelAt returns the premultiplied color of one pixel.
func pixelAt(img image.Image, x, y int) RGBA {
	switch src := img.(type) {
	case *image.RGBA:
		return premulFromRGBA(src.RGBAAt(x, y))
	case *image.NRGBA:
		c := src.NRGBAAt(x, y)
		return RGBA{
			R: float64(c.R) / 255, G: float64(c.G) / 255,
			B: float64(c.B) / 255, A: float64(c.A) / 255,
		}.Premultiply()
	}
	r, g, b, a := img.At(x, y).RGBA()
	return RGBA{
		R: float64(r) / 0xffff, G: float64(g) / 0xffff,
		B: float64(b) / 0xffff, A: float64(a) / 0xffff,
	}
}
