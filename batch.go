package monotext

import "fmt"

// Batch lays out several strings into one shared PackedText. Each string
// becomes one Instance whose run starts on a word boundary, so the
// instance's local UV and its WordOffset address the same characters.
type Batch struct {
	layout     Layout
	charset    Charset
	scale      float64
	lineHeight float64

	codes     []byte
	instances []Instance
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithScale sets the size of one atlas cell on screen, as a multiple of
// the cell size. The default is 1.
func WithScale(s float64) BatchOption {
	return func(b *Batch) {
		if s > 0 {
			b.scale = s
		}
	}
}

// WithLineHeight sets the distance between lines added with AddLines, in
// cells. The default is 1.
func WithLineHeight(h float64) BatchOption {
	return func(b *Batch) {
		if h > 0 {
			b.lineHeight = h
		}
	}
}

// WithCharset sets the code page used to encode strings. The default is
// Latin1.
func WithCharset(cs Charset) BatchOption {
	return func(b *Batch) {
		b.charset = cs
	}
}

// NewBatch returns an empty batch for atlases with the given layout.
// A nil layout uses DefaultLayout.
func NewBatch(layout Layout, opts ...BatchOption) *Batch {
	if layout == nil {
		layout = DefaultLayout
	}
	b := &Batch{layout: layout, charset: Latin1, scale: 1, lineHeight: 1}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add encodes s and appends one instance drawing it with its top-left
// corner at (x, y). Empty strings add nothing.
func (b *Batch) Add(s string, x, y float64, c RGBA) error {
	codes, err := b.charset.Codes(s)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if len(codes) == 0 {
		return nil
	}
	for len(b.codes)%CharsPerWord != 0 {
		b.codes = append(b.codes, 0)
	}
	cell := b.layout.CellSize()
	b.instances = append(b.instances, Instance{
		Rect: Rect{
			X: x,
			Y: y,
			W: float64(len(codes)*cell.X) * b.scale,
			H: float64(cell.Y) * b.scale,
		},
		WordOffset: uint32(len(b.codes) / CharsPerWord),
		Count:      uint32(len(codes)),
		Color:      c,
	})
	b.codes = append(b.codes, codes...)
	return nil
}

// AddLines adds each line below the previous one, stepping by the line
// height.
func (b *Batch) AddLines(lines []string, x, y float64, c RGBA) error {
	step := float64(b.layout.CellSize().Y) * b.scale * b.lineHeight
	for i, line := range lines {
		if err := b.Add(line, x, y+float64(i)*step, c); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}

// Len returns the number of instances.
func (b *Batch) Len() int { return len(b.instances) }

// Reset empties the batch, keeping its options.
func (b *Batch) Reset() {
	b.codes = b.codes[:0]
	b.instances = b.instances[:0]
}

// Text returns the packed buffer for all added strings.
func (b *Batch) Text() PackedText { return EncodeBytes(b.codes) }

// Instances returns a copy of the added instances.
func (b *Batch) Instances() []Instance {
	return append([]Instance(nil), b.instances...)
}

// Draw returns a glyph draw of the batch with the given atlas. The atlas
// cell size must match the batch layout, since instance rects were sized
// from it.
func (b *Batch) Draw(atlas *Atlas, antialias bool) (GlyphDraw, error) {
	if err := atlas.validate(); err != nil {
		return GlyphDraw{}, fmt.Errorf("batch: %w", err)
	}
	if got, want := atlas.Layout().CellSize(), b.layout.CellSize(); got != want {
		return GlyphDraw{}, fmt.Errorf("batch: %w: atlas cell %v, batch cell %v", ErrInvalidAtlas, got, want)
	}
	return GlyphDraw{
		Atlas:     atlas,
		Text:      b.Text(),
		Instances: b.Instances(),
		Antialias: antialias,
		Filter:    FilterNearest,
	}, nil
}
