//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/glyph.wgsl
var glyphShaderSource string

//go:embed shaders/blit.wgsl
var blitShaderSource string

// GlyphShaderSource returns the WGSL source of the glyph pipeline.
func GlyphShaderSource() string { return glyphShaderSource }

// BlitShaderSource returns the WGSL source of the layer blit pipeline.
func BlitShaderSource() string { return blitShaderSource }

// ValidateShaders compiles every embedded shader to SPIR-V with naga and
// reports the first failure.
func ValidateShaders() error {
	shaders := []struct {
		name   string
		source string
	}{
		{"glyph", glyphShaderSource},
		{"blit", blitShaderSource},
	}
	for _, s := range shaders {
		if s.source == "" {
			return fmt.Errorf("%s shader source is empty", s.name)
		}
		if _, err := naga.Compile(s.source); err != nil {
			return fmt.Errorf("compile %s shader: %w", s.name, err)
		}
	}
	return nil
}
