//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/monotext"
)

// glyphInstanceStride is the byte stride per instance in the glyph
// pipeline. Layout, matching InstanceInput in glyph.wgsl:
//
//	rect      (vec4<f32>) offset  0  location 0
//	uv_extent (vec2<f32>) offset 16  location 1
//	run       (vec2<u32>) offset 24  location 2
//	color     (vec4<f32>) offset 32  location 3
const glyphInstanceStride = 48

// glyphParamsSize is the byte size of DrawParams: window, atlas_size and
// cell (vec2<f32> each), columns and flags (u32 each).
const glyphParamsSize = 32

// blitParamsSize is the byte size of BlitParams: window and padding
// (vec2<f32> each) followed by the destination rect (vec4<f32>).
const blitParamsSize = 32

// flagAntialias is bit 0 of DrawParams.flags.
const flagAntialias uint32 = 1

func glyphInstanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: glyphInstanceStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // rect
				{Format: gputypes.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1}, // uv_extent
				{Format: gputypes.VertexFormatUint32x2, Offset: 24, ShaderLocation: 2},  // run
				{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3}, // color
			},
		},
	}
}

// buildInstanceData serializes instances. Colors are premultiplied here;
// the shader multiplies them by coverage only.
func buildInstanceData(instances []monotext.Instance, layout monotext.Layout) []byte {
	buf := make([]byte, len(instances)*glyphInstanceStride)
	for i, in := range instances {
		b := buf[i*glyphInstanceStride:]
		ue, ve := in.UVExtent(layout)
		putFloats(b[0:], float32(in.Rect.X), float32(in.Rect.Y), float32(in.Rect.W), float32(in.Rect.H))
		putFloats(b[16:], float32(ue), float32(ve))
		binary.LittleEndian.PutUint32(b[24:], in.WordOffset)
		binary.LittleEndian.PutUint32(b[28:], in.Count)
		c := in.Color.Premultiply().Float32()
		putFloats(b[32:], c[0], c[1], c[2], c[3])
	}
	return buf
}

// makeGlyphParams builds the DrawParams uniform for one glyph draw.
func makeGlyphParams(cfg monotext.DrawConfig, atlas *monotext.Atlas) []byte {
	buf := make([]byte, glyphParamsSize)
	size := atlas.Size()
	cell := atlas.Layout().CellSize()
	putFloats(buf[0:],
		float32(cfg.Window.Width), float32(cfg.Window.Height),
		float32(size.X), float32(size.Y),
		float32(cell.X), float32(cell.Y),
	)
	binary.LittleEndian.PutUint32(buf[24:], uint32(atlas.Layout().Columns())) //nolint:gosec // at most 256
	var flags uint32
	if cfg.Antialias {
		flags |= flagAntialias
	}
	binary.LittleEndian.PutUint32(buf[28:], flags)
	return buf
}

// makeBlitParams builds the BlitParams uniform for one layer.
func makeBlitParams(cfg monotext.DrawConfig, dst image.Rectangle) []byte {
	buf := make([]byte, blitParamsSize)
	putFloats(buf[0:], float32(cfg.Window.Width), float32(cfg.Window.Height))
	putFloats(buf[16:],
		float32(dst.Min.X), float32(dst.Min.Y),
		float32(dst.Dx()), float32(dst.Dy()),
	)
	return buf
}

// atlasTexels returns the coverage mask as tightly packed R8 rows.
func atlasTexels(atlas *monotext.Atlas) []byte {
	mask := atlas.Mask()
	size := atlas.Size()
	if mask.Stride == size.X {
		return mask.Pix[:size.X*size.Y]
	}
	out := make([]byte, size.X*size.Y)
	for y := 0; y < size.Y; y++ {
		copy(out[y*size.X:(y+1)*size.X], mask.Pix[y*mask.Stride:])
	}
	return out
}

// premultipliedPixels returns img as tightly packed premultiplied RGBA8
// rows.
func premultipliedPixels(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if rgba, ok := img.(*image.RGBA); ok {
		return tightRows(rgba)
	}
	out := make([]byte, w*h*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out[i+0] = uint8(r >> 8)
			out[i+1] = uint8(g >> 8)
			out[i+2] = uint8(bl >> 8)
			out[i+3] = uint8(a >> 8)
			i += 4
		}
	}
	return out
}

// tightRows returns the pixels of img without row padding.
func tightRows(img *image.RGBA) []byte {
	b := img.Bounds()
	rowBytes := b.Dx() * 4
	if img.Stride == rowBytes && img.PixOffset(b.Min.X, b.Min.Y) == 0 {
		return img.Pix[:rowBytes*b.Dy()]
	}
	out := make([]byte, rowBytes*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*rowBytes:(y+1)*rowBytes], img.Pix[off:off+rowBytes])
	}
	return out
}

// storeRows copies tightly packed or pitch-aligned rows into img.
func storeRows(img *image.RGBA, src []byte, srcPitch int) {
	b := img.Bounds()
	rowBytes := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(img.Pix[off:off+rowBytes], src[y*srcPitch:y*srcPitch+rowBytes])
	}
}

func putFloats(b []byte, vs ...float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
}
