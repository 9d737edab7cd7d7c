package monotext

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Atlas is a monospace glyph atlas: a single-channel coverage image
// partitioned into cells by a Layout. An Atlas is read-only after
// construction and may be shared by any number of concurrent draws.
//
// The image may be narrower than Layout.Bounds(). Codes whose cells fall
// outside the image sample with clamp-to-edge; callers must only encode
// codes the atlas actually holds.
type Atlas struct {
	mask   *image.Alpha
	layout Layout
}

// NewAtlas wraps an existing glyph image. Coverage is taken from the red
// channel; the image is copied so later writes to img do not affect the
// atlas.
func NewAtlas(img image.Image, layout Layout) (*Atlas, error) {
	if err := validateLayout(layout); err != nil {
		return nil, err
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidAtlas)
	}
	b := img.Bounds()
	mask := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			mask.SetAlpha(x-b.Min.X, y-b.Min.Y, color.Alpha{A: uint8(r >> 8)})
		}
	}
	return &Atlas{mask: mask, layout: layout}, nil
}

// BuildAtlas draws the glyph of every code into its cell. Each code is
// mapped to a rune through cs, so the atlas and the encoder agree on what
// code N means. Glyphs are clipped to their cell; the baseline is placed so
// the face's ascent plus descent is vertically centered.
//
// face should be a bitmap face whose advance matches the cell width, such
// as basicfont.Face7x13 with LayoutForFace.
func BuildAtlas(face font.Face, layout Layout, cs Charset) (*Atlas, error) {
	if face == nil {
		return nil, fmt.Errorf("%w: nil face", ErrInvalidAtlas)
	}
	if err := validateLayout(layout); err != nil {
		return nil, err
	}

	cell := layout.CellSize()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	baseline := ascent + (cell.Y-ascent-descent)/2
	if baseline > cell.Y {
		baseline = cell.Y
	}

	mask := image.NewAlpha(layout.Bounds())
	drawn := 0
	for c := 0; c < numCodes; c++ {
		code := byte(c)
		r := cs.Rune(code)
		cellRect := CellRect(layout, code)
		dot := fixed.P(cellRect.Min.X, cellRect.Min.Y+baseline)

		dr, glyph, gp, _, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		clip := dr.Intersect(cellRect)
		if clip.Empty() {
			continue
		}
		draw.DrawMask(mask, clip, image.Opaque, image.Point{}, glyph,
			gp.Add(clip.Min.Sub(dr.Min)), draw.Over)
		drawn++
	}
	Logger().Debug("monotext: atlas built",
		"glyphs", drawn, "width", mask.Bounds().Dx(), "height", mask.Bounds().Dy())

	return &Atlas{mask: mask, layout: layout}, nil
}

// LayoutForFace returns a single-row layout whose cell fits one advance of
// a monospace face and its full line height.
func LayoutForFace(face font.Face) RowLayout {
	adv, ok := face.GlyphAdvance('M')
	if !ok {
		adv = fixed.I(DefaultCellWidth)
	}
	m := face.Metrics()
	return RowLayout{W: adv.Ceil(), H: (m.Ascent + m.Descent).Ceil()}
}

// Layout returns the cell layout.
func (a *Atlas) Layout() Layout { return a.layout }

// Size returns the atlas image dimensions in pixels.
func (a *Atlas) Size() image.Point { return a.mask.Bounds().Size() }

// Mask returns the coverage image. Callers must not modify it.
func (a *Atlas) Mask() *image.Alpha { return a.mask }

// Texel returns the coverage of pixel (x, y) in [0, 1], clamping
// coordinates to the image edge.
func (a *Atlas) Texel(x, y int) float64 {
	size := a.Size()
	x = clampInt(x, 0, size.X-1)
	y = clampInt(y, 0, size.Y-1)
	return float64(a.mask.Pix[y*a.mask.Stride+x]) / 255
}

// Covers reports whether the atlas image contains the whole cell of code.
func (a *Atlas) Covers(code byte) bool {
	return CellRect(a.layout, code).In(a.mask.Bounds())
}

func (a *Atlas) validate() error {
	if a == nil || a.mask == nil {
		return fmt.Errorf("%w: nil atlas", ErrInvalidAtlas)
	}
	if a.mask.Bounds().Empty() {
		return fmt.Errorf("%w: empty image", ErrInvalidAtlas)
	}
	return validateLayout(a.layout)
}

// clampInt clamps v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
