// Command monotextdemo renders packed text over a gradient layer and saves
// the result as PNG.
package main

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/monotext"
	_ "github.com/gogpu/monotext/gpu" // enable GPU rendering
	"github.com/spf13/pflag"
	"golang.org/x/image/font/basicfont"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		scenePath string
		output    string
		text      string
		width     int
		height    int
		scale     float64
		noAA      bool
		cpu       bool
		verbose   bool
	)
	pflag.StringVarP(&scenePath, "scene", "s", "", "YAML scene file")
	pflag.StringVarP(&output, "output", "o", "monotext.png", "output file")
	pflag.StringVarP(&text, "text", "t", "", `text to draw, lines separated by \n`)
	pflag.IntVarP(&width, "width", "w", 0, "image width (overrides the scene)")
	pflag.IntVar(&height, "height", 0, "image height (overrides the scene)")
	pflag.Float64Var(&scale, "scale", 0, "glyph scale (overrides the scene)")
	pflag.BoolVar(&noAA, "no-aa", false, "disable glyph antialiasing")
	pflag.BoolVar(&cpu, "cpu", false, "render on the CPU even when a GPU is available")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pflag.Parse()

	if verbose {
		monotext.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	scene := defaultScene()
	if scenePath != "" {
		var err error
		if scene, err = loadScene(scenePath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	if text != "" {
		scene.Texts = []TextItem{{Text: strings.ReplaceAll(text, `\n`, "\n"), X: 16, Y: 16, Color: "#ffffff"}}
	}
	if width > 0 {
		scene.Width = width
	}
	if height > 0 {
		scene.Height = height
	}
	if scale > 0 {
		scene.Scale = scale
	}
	if noAA {
		scene.Antialias = false
	}

	face := basicfont.Face7x13
	atlas, err := monotext.BuildAtlas(face, monotext.LayoutForFace(face), monotext.Latin1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: build atlas: %v\n", err)
		return 1
	}
	frame, err := scene.Frame(atlas)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	target := image.NewRGBA(frame.Window.Bounds())
	if cpu {
		r := monotext.NewSoftwareRenderer(monotext.DefaultSoftwareConfig())
		err = r.RenderFrame(target, frame)
		r.Close()
	} else {
		err = monotext.Render(target, frame)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: render: %v\n", err)
		return 1
	}

	if err := savePNG(output, target); err != nil {
		fmt.Fprintf(os.Stderr, "Error: save: %v\n", err)
		return 1
	}
	fmt.Printf("Demo saved to %s (%dx%d)\n", output, scene.Width, scene.Height)
	return 0
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
