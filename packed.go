package monotext

import (
	"encoding/binary"
	"fmt"
)

// CharsPerWord is the number of 8-bit character codes packed into one
// 32-bit word.
const CharsPerWord = 4

// PackedText is the packed character buffer: character codes stored four
// per 32-bit word, low byte first.
//
// Len is the logical character count. Words always holds
// ceil(Len/CharsPerWord) entries and the unused high bytes of the final
// word are zero. A PackedText is immutable once built; share it freely
// between goroutines and draws.
type PackedText struct {
	Words []uint32
	Len   int
}

// WordsFor returns the number of words needed to hold n characters.
func WordsFor(n int) int {
	return (n + CharsPerWord - 1) / CharsPerWord
}

// EncodeBytes packs raw 8-bit codes. It cannot fail.
func EncodeBytes(codes []byte) PackedText {
	words := make([]uint32, WordsFor(len(codes)))
	for i, c := range codes {
		words[i/CharsPerWord] |= uint32(c) << (uint(i%CharsPerWord) * 8)
	}
	return PackedText{Words: words, Len: len(codes)}
}

// Encode packs s, treating every rune as its own 8-bit code. Runes above
// 0xFF (including invalid UTF-8, which decodes as U+FFFD) are rejected with
// an *EncodingError. Use a Charset to map text through a code page instead.
func Encode(s string) (PackedText, error) {
	codes := make([]byte, 0, len(s))
	i := 0
	for _, r := range s {
		if r > 0xFF {
			return PackedText{}, &EncodingError{Rune: r, Index: i}
		}
		codes = append(codes, byte(r))
		i++
	}
	return EncodeBytes(codes), nil
}

// UnpackCode extracts the code stored at byte position offset (0..3) of a
// packed word.
func UnpackCode(word uint32, offset int) byte {
	return byte(word >> (uint(offset) * 8))
}

// At returns the code of character i. The recorded length is checked, so
// an index inside the final word's padding is out of range.
func (p PackedText) At(i int) (byte, error) {
	if i < 0 || i >= p.Len {
		return 0, fmt.Errorf("%w: index %d, length %d", ErrOutOfRange, i, p.Len)
	}
	w := i / CharsPerWord
	if w >= len(p.Words) {
		return 0, fmt.Errorf("%w: word %d, buffer holds %d", ErrOutOfRange, w, len(p.Words))
	}
	return UnpackCode(p.Words[w], i%CharsPerWord), nil
}

// Codes unpacks every character code.
func (p PackedText) Codes() []byte {
	out := make([]byte, p.Len)
	for i := range out {
		out[i] = UnpackCode(p.Words[i/CharsPerWord], i%CharsPerWord)
	}
	return out
}

// Validate checks the Len/Words invariant and the zero padding of the final
// word.
func (p PackedText) Validate() error {
	if p.Len < 0 || len(p.Words) != WordsFor(p.Len) {
		return fmt.Errorf("%w: length %d needs %d words, have %d",
			ErrOutOfRange, p.Len, WordsFor(p.Len), len(p.Words))
	}
	if rem := p.Len % CharsPerWord; rem != 0 {
		if p.Words[len(p.Words)-1]>>(uint(rem)*8) != 0 {
			return fmt.Errorf("%w: non-zero padding after character %d", ErrOutOfRange, p.Len)
		}
	}
	return nil
}

// Bytes serializes the words little-endian, ready for upload into a
// storage buffer. An empty buffer yields one zero word because GPU buffers
// cannot be zero-sized.
func (p PackedText) Bytes() []byte {
	n := len(p.Words)
	if n == 0 {
		n = 1
	}
	buf := make([]byte, n*4)
	for i, w := range p.Words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

// String returns the codes as a byte string (one byte per character).
func (p PackedText) String() string {
	return string(p.Codes())
}
