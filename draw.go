package monotext

import (
	"fmt"
	"image"
)

// Window is the window transform parameter: the pixel dimensions of the
// render target that every stage of a draw normalizes against.
type Window struct {
	Width, Height int
}

// Size returns the window as an image.Point.
func (w Window) Size() image.Point { return image.Pt(w.Width, w.Height) }

// Bounds returns the window rectangle anchored at the origin.
func (w Window) Bounds() image.Rectangle { return image.Rect(0, 0, w.Width, w.Height) }

func (w Window) validate() error {
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidWindow, w.Width, w.Height)
	}
	return nil
}

// Filter selects how a stage samples its source image.
type Filter uint8

const (
	// FilterNearest selects the texel containing the sample point.
	FilterNearest Filter = iota

	// FilterLinear interpolates the four texels around the sample point.
	FilterLinear
)

// String returns the filter name.
func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "Nearest"
	case FilterLinear:
		return "Linear"
	default:
		return "Unknown"
	}
}

// DrawConfig is the per-draw configuration handed to every stage
// invocation. A renderer derives one DrawConfig per draw from its Frame,
// so every stage of a frame sees the same Window.
type DrawConfig struct {
	Window Window

	// Antialias blends each coverage sample with the average of its four
	// neighboring texels. It applies to a whole draw.
	Antialias bool

	// Filter is the sampler filter for the draw's source image.
	Filter Filter
}

// Rect is a destination rectangle in window pixel coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point lies inside the half-open rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// pixelBounds returns the pixels whose centers lie inside r, clipped to
// clip.
func (r Rect) pixelBounds(clip image.Rectangle) image.Rectangle {
	b := image.Rect(
		ceilInt(r.X-0.5), ceilInt(r.Y-0.5),
		ceilInt(r.X+r.W-0.5), ceilInt(r.Y+r.H-0.5),
	)
	return b.Intersect(clip)
}

// Instance is a glyph instance: one quad drawing Count characters of a
// packed buffer starting at word WordOffset.
//
// Inside the quad the local UV runs from (0, 0) at the top-left corner to
// (Count*W, H) at the bottom-right, where W and H are the atlas cell
// size. UV is local to the instance; WordOffset is what places the
// instance's characters inside a shared buffer.
type Instance struct {
	Rect       Rect
	WordOffset uint32
	Count      uint32
	Color      RGBA
}

// UVExtent returns the local UV at the bottom-right corner of the quad.
func (in Instance) UVExtent(l Layout) (float64, float64) {
	cell := l.CellSize()
	return float64(in.Count) * float64(cell.X), float64(cell.Y)
}

// LocalUV maps a window-space point to the instance's local UV.
// Count and the quad size must be non-zero; Frame.Validate enforces that.
func (in Instance) LocalUV(x, y float64, l Layout) (u, v float64) {
	ue, ve := in.UVExtent(l)
	u = (x - in.Rect.X) / in.Rect.W * ue
	v = (y - in.Rect.Y) / in.Rect.H * ve
	return u, v
}

func (in Instance) validate(text PackedText) error {
	if in.Count == 0 {
		return fmt.Errorf("%w: zero character count", ErrInvalidInstance)
	}
	if in.Rect.W <= 0 || in.Rect.H <= 0 {
		return fmt.Errorf("%w: empty rect %+v", ErrInvalidInstance, in.Rect)
	}
	first := int(in.WordOffset) * CharsPerWord
	if first+int(in.Count) > text.Len {
		return fmt.Errorf("%w: instance reads characters %d..%d of %d",
			ErrOutOfRange, first, first+int(in.Count)-1, text.Len)
	}
	return nil
}

// GlyphDraw draws instances of one packed buffer with one atlas.
type GlyphDraw struct {
	Atlas     *Atlas
	Text      PackedText
	Instances []Instance
	Antialias bool
	Filter    Filter
}

// Layer is a pre-rendered image blitted into Dst. An empty Dst covers the
// whole window. Layer pixels replace what is underneath; they are not
// blended.
type Layer struct {
	Image  image.Image
	Dst    image.Rectangle
	Filter Filter
}

// Frame is everything drawn into one target: background layers first, then
// glyph draws, each list in order. There is no depth test; later draws
// paint over earlier ones.
type Frame struct {
	Window Window
	Layers []Layer
	Glyphs []GlyphDraw
}

// GlyphConfig returns the DrawConfig for one of the frame's glyph draws.
func (f *Frame) GlyphConfig(d *GlyphDraw) DrawConfig {
	return DrawConfig{Window: f.Window, Antialias: d.Antialias, Filter: d.Filter}
}

// LayerConfig returns the DrawConfig for one of the frame's layers.
func (f *Frame) LayerConfig(l *Layer) DrawConfig {
	return DrawConfig{Window: f.Window, Filter: l.Filter}
}

// LayerRect returns the destination of a layer, defaulting to the window.
func (f *Frame) LayerRect(l *Layer) image.Rectangle {
	if l.Dst.Empty() {
		return f.Window.Bounds()
	}
	return l.Dst
}

// Validate checks every invariant the stages rely on but do not check
// themselves: window and atlas dimensions, non-zero counts, and buffer
// bounds for every instance.
func (f *Frame) Validate() error {
	if err := f.Window.validate(); err != nil {
		return err
	}
	for i := range f.Layers {
		if f.Layers[i].Image == nil || f.Layers[i].Image.Bounds().Empty() {
			return fmt.Errorf("layer %d: %w: empty image", i, ErrInvalidAtlas)
		}
	}
	for i := range f.Glyphs {
		d := &f.Glyphs[i]
		if err := d.Atlas.validate(); err != nil {
			return fmt.Errorf("glyph draw %d: %w", i, err)
		}
		if err := d.Text.Validate(); err != nil {
			return fmt.Errorf("glyph draw %d: %w", i, err)
		}
		for j, in := range d.Instances {
			if err := in.validate(d.Text); err != nil {
				return fmt.Errorf("glyph draw %d instance %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// ceilInt returns ceil(v) as an int.
func ceilInt(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}
