package monotext

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/monotext/internal/parallel"
)

// FrameRenderer draws a Frame into an RGBA target.
type FrameRenderer interface {
	RenderFrame(target *image.RGBA, f *Frame) error
	Close()
}

// SoftwareConfig configures a SoftwareRenderer.
type SoftwareConfig struct {
	// Workers is the number of goroutines; 0 means GOMAXPROCS.
	Workers int

	// BandHeight is the number of rows one task renders; 0 means
	// parallel.DefaultBandHeight.
	BandHeight int
}

// DefaultSoftwareConfig returns the default configuration.
func DefaultSoftwareConfig() SoftwareConfig {
	return SoftwareConfig{BandHeight: parallel.DefaultBandHeight}
}

// SoftwareRenderer executes the decode, composite and blit stages on the
// CPU. The target is split into row bands that render in parallel; every
// pixel is evaluated at its center.
type SoftwareRenderer struct {
	cfg  SoftwareConfig
	pool *parallel.WorkerPool
}

// NewSoftwareRenderer starts a renderer with its own worker pool.
func NewSoftwareRenderer(cfg SoftwareConfig) *SoftwareRenderer {
	if cfg.BandHeight <= 0 {
		cfg.BandHeight = parallel.DefaultBandHeight
	}
	return &SoftwareRenderer{cfg: cfg, pool: parallel.NewWorkerPool(cfg.Workers)}
}

// Close stops the worker pool. A closed renderer still works, on the
// calling goroutine.
func (r *SoftwareRenderer) Close() {
	r.pool.Close()
}

// RenderFrame draws f over the current contents of target. The target
// must have the frame's window size.
func (r *SoftwareRenderer) RenderFrame(target *image.RGBA, f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := checkTarget(target, f.Window); err != nil {
		return err
	}

	bands := parallel.SplitRows(f.Window.Height, r.cfg.BandHeight)
	tasks := make([]func(), len(bands))
	for i, b := range bands {
		tasks[i] = func() { renderBand(target, f, b) }
	}
	if !r.pool.Run(tasks) {
		for _, task := range tasks {
			task()
		}
	}
	Logger().Debug("software frame rendered",
		"window", f.Window.Size(), "bands", len(bands),
		"layers", len(f.Layers), "glyph_draws", len(f.Glyphs))
	return nil
}

func checkTarget(target *image.RGBA, w Window) error {
	if target == nil {
		return fmt.Errorf("%w: nil target", ErrInvalidWindow)
	}
	if target.Bounds().Size() != w.Size() {
		return fmt.Errorf("%w: target %v, window %v", ErrInvalidWindow, target.Bounds().Size(), w.Size())
	}
	return nil
}

// renderBand draws rows [b.Y0, b.Y1) of every layer and then every glyph
// draw.
func renderBand(target *image.RGBA, f *Frame, b parallel.Band) {
	band := image.Rect(0, b.Y0, f.Window.Width, b.Y1)
	origin := target.Bounds().Min

	for i := range f.Layers {
		l := &f.Layers[i]
		cfg := f.LayerConfig(l)
		dst := f.LayerRect(l)
		area := dst.Intersect(band)
		for y := area.Min.Y; y < area.Max.Y; y++ {
			v := (float64(y-dst.Min.Y) + 0.5) / float64(dst.Dy())
			for x := area.Min.X; x < area.Max.X; x++ {
				u := (float64(x-dst.Min.X) + 0.5) / float64(dst.Dx())
				c := BlitLayer(l, u, v, cfg)
				target.SetRGBA(origin.X+x, origin.Y+y, c.toPremulRGBA())
			}
		}
	}

	for i := range f.Glyphs {
		d := &f.Glyphs[i]
		cfg := f.GlyphConfig(d)
		layout := d.Atlas.Layout()
		for _, inst := range d.Instances {
			tint := inst.Color.Premultiply()
			area := inst.Rect.pixelBounds(band)
			for y := area.Min.Y; y < area.Max.Y; y++ {
				for x := area.Min.X; x < area.Max.X; x++ {
					u, v := inst.LocalUV(float64(x)+0.5, float64(y)+0.5, layout)
					s, err := DecodeGlyph(u, v, inst, d.Text, d.Atlas)
					if err != nil {
						continue
					}
					src := CompositeGlyph(d.Atlas, s.U, s.V, tint, cfg)
					if src.A == 0 {
						continue
					}
					px, py := origin.X+x, origin.Y+y
					dst := premulFromRGBA(target.RGBAAt(px, py))
					target.SetRGBA(px, py, src.Over(dst).toPremulRGBA())
				}
			}
		}
	}
}

var (
	defaultSoftwareOnce sync.Once
	defaultSoftware     *SoftwareRenderer
)

func sharedSoftwareRenderer() *SoftwareRenderer {
	defaultSoftwareOnce.Do(func() {
		defaultSoftware = NewSoftwareRenderer(DefaultSoftwareConfig())
	})
	return defaultSoftware
}
