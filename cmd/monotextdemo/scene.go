package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/monotext"
	"gopkg.in/yaml.v3"
)

// Scene describes what the demo draws. It can be loaded from YAML:
//
//	width: 480
//	height: 160
//	scale: 2
//	antialias: true
//	background: ["#1a3366", "#8080a0"]
//	texts:
//	  - text: "Hello, monotext!"
//	    x: 16
//	    y: 16
//	    color: "#ffffff"
type Scene struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Scale      float64    `yaml:"scale"`
	LineHeight float64    `yaml:"line_height"`
	Antialias  bool       `yaml:"antialias"`
	Background []string   `yaml:"background"`
	Texts      []TextItem `yaml:"texts"`
}

// TextItem is one block of text. Lines are separated by newlines.
type TextItem struct {
	Text  string  `yaml:"text"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Color string  `yaml:"color"`
}

func defaultScene() Scene {
	return Scene{
		Width:      480,
		Height:     160,
		Scale:      2,
		LineHeight: 1.25,
		Antialias:  true,
		Background: []string{"#1a3366", "#8080a0"},
		Texts: []TextItem{{
			Text:  "Hello, monotext!\npacked glyphs, one quad per line",
			X:     16,
			Y:     16,
			Color: "#ffffff",
		}},
	}
}

// loadScene reads a YAML scene. Missing fields keep their defaults.
func loadScene(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, err
	}
	return parseScene(data)
}

func parseScene(data []byte) (Scene, error) {
	s := defaultScene()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scene{}, fmt.Errorf("parse scene: %w", err)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return Scene{}, fmt.Errorf("scene size %dx%d: %w", s.Width, s.Height, monotext.ErrInvalidWindow)
	}
	if len(s.Texts) == 0 {
		return Scene{}, errors.New("scene has no texts")
	}
	return s, nil
}

// Frame lays out the scene's texts with atlas.
func (s Scene) Frame(atlas *monotext.Atlas) (*monotext.Frame, error) {
	batch := monotext.NewBatch(atlas.Layout(),
		monotext.WithScale(s.Scale), monotext.WithLineHeight(s.LineHeight))
	for i, item := range s.Texts {
		c, err := parseHexColor(item.Color)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		if err := batch.AddLines(strings.Split(item.Text, "\n"), item.X, item.Y, monotext.FromColor(c)); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}

	draw, err := batch.Draw(atlas, s.Antialias)
	if err != nil {
		return nil, err
	}
	f := &monotext.Frame{
		Window: monotext.Window{Width: s.Width, Height: s.Height},
		Glyphs: []monotext.GlyphDraw{draw},
	}
	if len(s.Background) > 0 {
		bg, err := gradient(s.Background)
		if err != nil {
			return nil, err
		}
		f.Layers = []monotext.Layer{{Image: bg, Filter: monotext.FilterLinear}}
	}
	return f, nil
}

// gradient returns a one pixel wide vertical gradient through stops; the
// blit stretches it over the window.
func gradient(stops []string) (*image.RGBA, error) {
	const steps = 64
	cs := make([]color.RGBA, len(stops))
	for i, s := range stops {
		c, err := parseHexColor(s)
		if err != nil {
			return nil, fmt.Errorf("background stop %d: %w", i, err)
		}
		cs[i] = c
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, steps))
	for y := 0; y < steps; y++ {
		if len(cs) == 1 {
			img.SetRGBA(0, y, cs[0])
			continue
		}
		pos := float64(y) / float64(steps-1) * float64(len(cs)-1)
		i := int(pos)
		if i >= len(cs)-1 {
			i = len(cs) - 2
		}
		img.SetRGBA(0, y, mix(cs[i], cs[i+1], pos-float64(i)))
	}
	return img, nil
}

func mix(a, b color.RGBA, t float64) color.RGBA {
	l := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5) }
	return color.RGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}

// parseHexColor parses #rgb, #rrggbb or #rrggbbaa.
func parseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
