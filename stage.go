package monotext

import (
	"fmt"
	"math"
)

// CharLocation is where a character sits in a packed buffer, relative to
// the instance's first word.
type CharLocation struct {
	CharIndex int // floor(u / W)
	Word      int // CharIndex / 4
	Offset    int // CharIndex mod 4, the byte lane inside Word
}

// LocateChar maps the x component of a local UV to a character position.
func LocateChar(u float64, cellWidth int) CharLocation {
	ix := int(math.Floor(u / float64(cellWidth)))
	return CharLocation{CharIndex: ix, Word: ix / CharsPerWord, Offset: ix % CharsPerWord}
}

// GlyphSample is the result of decoding one pixel of a glyph instance.
type GlyphSample struct {
	Code byte

	// U and V are the normalized atlas coordinates to sample.
	U, V float64
}

// DecodeGlyph resolves a local UV inside inst to a normalized atlas
// coordinate: it finds the character under u, unpacks its code from text
// and offsets into the code's atlas cell.
//
// A character index at or past inst.Count, or a word past the end of
// text, is reported as ErrOutOfRange.
func DecodeGlyph(u, v float64, inst Instance, text PackedText, atlas *Atlas) (GlyphSample, error) {
	layout := atlas.Layout()
	cell := layout.CellSize()
	loc := LocateChar(u, cell.X)
	if loc.CharIndex < 0 || loc.CharIndex >= int(inst.Count) {
		return GlyphSample{}, fmt.Errorf("%w: character %d of %d", ErrOutOfRange, loc.CharIndex, inst.Count)
	}
	word := int(inst.WordOffset) + loc.Word
	if word >= len(text.Words) {
		return GlyphSample{}, fmt.Errorf("%w: word %d of %d", ErrOutOfRange, word, len(text.Words))
	}
	code := UnpackCode(text.Words[word], loc.Offset)
	origin := layout.CellOrigin(code)
	localX := u - float64(loc.CharIndex*cell.X)
	size := atlas.Size()
	return GlyphSample{
		Code: code,
		U:    (float64(origin.X) + localX) / float64(size.X),
		V:    (float64(origin.Y) + v) / float64(size.Y),
	}, nil
}

// BlendCoverage applies the antialiasing rule: with antialiasing the
// result is 0.75*alpha + 0.25*neighbor, otherwise alpha unchanged.
func BlendCoverage(alpha, neighbor float64, antialias bool) float64 {
	if !antialias {
		return alpha
	}
	return 0.75*alpha + 0.25*neighbor
}

// CompositeGlyph samples the atlas coverage at (u, v) and multiplies tint
// by it on every channel. tint is used as given; renderers pass the
// premultiplied instance color so the result is premultiplied.
func CompositeGlyph(atlas *Atlas, u, v float64, tint RGBA, cfg DrawConfig) RGBA {
	s := Sampler{Filter: cfg.Filter}
	alpha := s.Coverage(atlas, u, v)
	var neighbor float64
	if cfg.Antialias {
		g := s.Gather(atlas, u, v)
		neighbor = (g[0] + g[1] + g[2] + g[3]) * 0.25
	}
	return tint.Scale(BlendCoverage(alpha, neighbor, cfg.Antialias))
}

// BlitLayer returns the layer image sampled at normalized (u, v) as a
// premultiplied color, without modulation.
func BlitLayer(l *Layer, u, v float64, cfg DrawConfig) RGBA {
	return Sampler{Filter: cfg.Filter}.Color(l.Image, u, v)
}
