package monotext

import (
	"fmt"
	"image"
)

// Default cell geometry of a monospace glyph atlas, in pixels.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 8
)

// numCodes is the number of distinct 8-bit character codes.
const numCodes = 256

// Layout describes how 8-bit codes map to fixed-size cells of a glyph
// atlas image. Implementations must be pure and safe for concurrent use;
// the decode stage calls CellOrigin for every pixel.
//
// Columns reports the number of cells per atlas row. The GPU path
// evaluates origin = ((code mod Columns)*W, (code / Columns)*H), so a
// Layout whose CellOrigin disagrees with that formula can only be drawn by
// the software renderer.
type Layout interface {
	CellSize() image.Point
	CellOrigin(code byte) image.Point
	Columns() int
	Bounds() image.Rectangle
}

// DefaultLayout is the single-row 8x8 layout.
var DefaultLayout Layout = RowLayout{W: DefaultCellWidth, H: DefaultCellHeight}

// RowLayout places every cell in one row: origin = (code*W, 0).
// Zero dimensions fall back to the 8x8 default.
type RowLayout struct {
	W, H int
}

func (l RowLayout) size() (int, int) {
	w, h := l.W, l.H
	if w <= 0 {
		w = DefaultCellWidth
	}
	if h <= 0 {
		h = DefaultCellHeight
	}
	return w, h
}

// CellSize returns (W, H).
func (l RowLayout) CellSize() image.Point {
	w, h := l.size()
	return image.Pt(w, h)
}

// CellOrigin returns (code*W, 0).
func (l RowLayout) CellOrigin(code byte) image.Point {
	w, _ := l.size()
	return image.Pt(int(code)*w, 0)
}

// Columns returns 256: every code lives in row zero.
func (l RowLayout) Columns() int { return numCodes }

// Bounds returns the extent needed for all 256 codes, 256*W by H.
func (l RowLayout) Bounds() image.Rectangle {
	w, h := l.size()
	return image.Rect(0, 0, numCodes*w, h)
}

// GridLayout wraps cells into rows of Cols cells:
// origin = ((code mod Cols)*W, (code / Cols)*H).
type GridLayout struct {
	W, H int
	Cols int
}

func (l GridLayout) dims() (w, h, cols int) {
	w, h = RowLayout{W: l.W, H: l.H}.size()
	cols = l.Cols
	if cols <= 0 || cols > numCodes {
		cols = 16
	}
	return w, h, cols
}

// CellSize returns (W, H).
func (l GridLayout) CellSize() image.Point {
	w, h, _ := l.dims()
	return image.Pt(w, h)
}

// CellOrigin returns the top-left pixel of the cell holding code.
func (l GridLayout) CellOrigin(code byte) image.Point {
	w, h, cols := l.dims()
	c := int(code)
	return image.Pt((c%cols)*w, (c/cols)*h)
}

// Columns returns the number of cells per row. Zero selects 16.
func (l GridLayout) Columns() int {
	_, _, cols := l.dims()
	return cols
}

// Bounds returns the extent needed for all 256 codes.
func (l GridLayout) Bounds() image.Rectangle {
	w, h, cols := l.dims()
	rows := (numCodes + cols - 1) / cols
	return image.Rect(0, 0, cols*w, rows*h)
}

// CellRect returns the pixel rectangle of the cell holding code.
func CellRect(l Layout, code byte) image.Rectangle {
	o := l.CellOrigin(code)
	return image.Rectangle{Min: o, Max: o.Add(l.CellSize())}
}

// IsGridLayout reports whether l follows the grid formula the GPU shader
// evaluates, checking every code.
func IsGridLayout(l Layout) bool {
	cell := l.CellSize()
	cols := l.Columns()
	if cols <= 0 {
		return false
	}
	for c := 0; c < numCodes; c++ {
		want := image.Pt((c%cols)*cell.X, (c/cols)*cell.Y)
		if l.CellOrigin(byte(c)) != want {
			return false
		}
	}
	return true
}

// validateLayout rejects layouts with empty cells.
func validateLayout(l Layout) error {
	if l == nil {
		return fmt.Errorf("%w: nil layout", ErrInvalidAtlas)
	}
	cell := l.CellSize()
	if cell.X <= 0 || cell.Y <= 0 {
		return fmt.Errorf("%w: cell size %v", ErrInvalidAtlas, cell)
	}
	if l.Columns() <= 0 {
		return fmt.Errorf("%w: %d columns", ErrInvalidAtlas, l.Columns())
	}
	return nil
}
