package monotext

import (
	"errors"
	"fmt"
)

// Errors reported by encoding, validation and rendering.
var (
	// ErrEncoding is the sentinel wrapped by every *EncodingError.
	ErrEncoding = errors.New("monotext: character does not fit in 8 bits")

	// ErrOutOfRange is returned when a character index falls outside the
	// run length recorded for an instance or buffer.
	ErrOutOfRange = errors.New("monotext: character index out of range")

	// ErrInvalidInstance is returned for instances with a zero character
	// count or an empty destination rectangle.
	ErrInvalidInstance = errors.New("monotext: invalid glyph instance")

	// ErrInvalidWindow is returned when a draw carries a zero-sized window.
	ErrInvalidWindow = errors.New("monotext: invalid window dimensions")

	// ErrInvalidAtlas is returned for nil or empty atlases and layouts.
	ErrInvalidAtlas = errors.New("monotext: invalid atlas")

	// ErrFallbackToCPU indicates the GPU accelerator cannot handle a frame.
	// Render transparently falls back to the software renderer.
	ErrFallbackToCPU = errors.New("monotext: falling back to CPU rendering")
)

// EncodingError reports a character that cannot be represented as an
// 8-bit code. It wraps ErrEncoding.
type EncodingError struct {
	// Rune is the offending character.
	Rune rune
	// Index is the character position (in runes) within the input.
	Index int
	// Charset names the code page used, empty for raw 8-bit encoding.
	Charset string
}

func (e *EncodingError) Error() string {
	if e.Charset != "" {
		return fmt.Sprintf("monotext: cannot encode %q (U+%04X) at index %d in %s",
			e.Rune, e.Rune, e.Index, e.Charset)
	}
	return fmt.Sprintf("monotext: cannot encode %q (U+%04X) at index %d as 8-bit code",
		e.Rune, e.Rune, e.Index)
}

// Unwrap returns ErrEncoding.
func (e *EncodingError) Unwrap() error { return ErrEncoding }
