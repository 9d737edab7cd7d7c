// Package monotext draws short runs of monospace text from a packed
// character buffer and a fixed-cell glyph atlas.
//
// # Overview
//
// Text is encoded as 8-bit character codes, four per uint32 word with the
// first character in the lowest byte. A glyph Instance is one screen quad
// covering a run of characters; every pixel of the quad finds its
// character from the quad-local UV, reads the code from the packed buffer,
// and samples that code's cell in the Atlas. The sampled coverage is
// optionally antialiased and multiplied by the instance tint.
//
// # Quick Start
//
//	import "github.com/gogpu/monotext"
//
//	face := basicfont.Face7x13
//	atlas, _ := monotext.BuildAtlas(face, monotext.LayoutForFace(face), monotext.Latin1)
//
//	b := monotext.NewBatch(atlas.Layout(), monotext.WithScale(2))
//	_ = b.Add("Hello", 10, 10, monotext.RGB(1, 1, 1))
//	draw, _ := b.Draw(atlas, true)
//
//	frame := &monotext.Frame{
//	    Window: monotext.Window{Width: 320, Height: 64},
//	    Glyphs: []monotext.GlyphDraw{draw},
//	}
//	img := image.NewRGBA(frame.Window.Bounds())
//	_ = monotext.Render(img, frame)
//
// # Renderers
//
// Render uses the registered GPUAccelerator and falls back to the
// SoftwareRenderer. Import the gpu sub-package to register the Vulkan
// accelerator:
//
//	import _ "github.com/gogpu/monotext/gpu"
//
// Both renderers evaluate the same stages (DecodeGlyph, CompositeGlyph,
// BlitLayer). Layers are drawn first and replace the pixels under them;
// glyph draws are then composited with source-over in order.
//
// # Coordinate System
//
// Window and instance rectangles are in pixels with the origin at the
// top-left and Y increasing down. Atlas UVs are normalized to [0, 1].
package monotext

// Version is the current version of the library.
const Version = "0.1.0"
