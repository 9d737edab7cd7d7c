package monotext

import (
	"golang.org/x/text/encoding/charmap"
)

// Charset maps text to 8-bit character codes through a single-byte code
// page. The atlas must be built with the same Charset so that cell N holds
// the glyph for code N.
type Charset struct {
	cm *charmap.Charmap
}

// Common code pages.
var (
	// Latin1 maps U+0000..U+00FF to themselves.
	Latin1 = NewCharset(charmap.ISO8859_1)

	// CodePage437 is the original IBM PC set, common for 8x8 bitmap fonts.
	CodePage437 = NewCharset(charmap.CodePage437)
)

// NewCharset wraps a charmap. A nil charmap selects ISO 8859-1.
func NewCharset(cm *charmap.Charmap) Charset {
	if cm == nil {
		cm = charmap.ISO8859_1
	}
	return Charset{cm: cm}
}

// Name returns the code page name.
func (c Charset) Name() string {
	return c.charmap().String()
}

func (c Charset) charmap() *charmap.Charmap {
	if c.cm == nil {
		return charmap.ISO8859_1
	}
	return c.cm
}

// Codes converts s to 8-bit codes. A rune without a mapping fails with an
// *EncodingError naming the rune, its index and the code page.
func (c Charset) Codes(s string) ([]byte, error) {
	cm := c.charmap()
	codes := make([]byte, 0, len(s))
	i := 0
	for _, r := range s {
		b, ok := cm.EncodeRune(r)
		if !ok {
			return nil, &EncodingError{Rune: r, Index: i, Charset: cm.String()}
		}
		codes = append(codes, b)
		i++
	}
	return codes, nil
}

// Encode converts s through the code page and packs it.
func (c Charset) Encode(s string) (PackedText, error) {
	codes, err := c.Codes(s)
	if err != nil {
		return PackedText{}, err
	}
	return EncodeBytes(codes), nil
}

// Rune returns the character the code page assigns to code.
func (c Charset) Rune(code byte) rune {
	return c.charmap().DecodeByte(code)
}

// Decode converts packed codes back to text.
func (c Charset) Decode(p PackedText) string {
	codes := p.Codes()
	runes := make([]rune, len(codes))
	for i, b := range codes {
		runes[i] = c.Rune(b)
	}
	return string(runes)
}
