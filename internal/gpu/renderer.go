//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/monotext"
	"github.com/gogpu/monotext/internal/cache"
	"github.com/gogpu/wgpu/hal"
)

// ErrRendererClosed is returned by RenderFrame after Close.
var ErrRendererClosed = errors.New("gpu: renderer is closed")

// copyPitchAlignment is the required BytesPerRow alignment of texture to
// buffer copies.
const copyPitchAlignment = 256

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// MaxInstances caps the instances of a single glyph draw.
	// Default: 65536
	MaxInstances int

	// MaxAtlases caps the atlas textures kept on the device. The least
	// recently drawn atlas is released first. A frame drawing from more
	// distinct atlases fails with monotext.ErrFallbackToCPU.
	// Default: 8
	MaxAtlases int

	// FenceTimeout bounds the wait for a submitted frame.
	// Default: 5s
	FenceTimeout time.Duration
}

// DefaultRendererConfig returns the default configuration.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		MaxInstances: 65536,
		MaxAtlases:   8,
		FenceTimeout: 5 * time.Second,
	}
}

// Renderer draws monotext frames on a hal device. Layers are blitted
// first, then glyph draws, in one render pass over a texture seeded with
// the target's current pixels.
//
// Atlas textures are cached per *monotext.Atlas, up to
// RendererConfig.MaxAtlases. Renderer is safe for concurrent use; frames are serialized.
type Renderer struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	cfg    RendererConfig

	glyph *GlyphPipeline
	blit  *BlitPipeline

	target  *texture
	atlases *cache.Cache[*monotext.Atlas, *texture]
	closed  bool
}

var _ monotext.FrameRenderer = (*Renderer)(nil)

// NewRenderer returns a renderer for the device. Zero config fields take
// their defaults.
func NewRenderer(device hal.Device, queue hal.Queue, cfg RendererConfig) *Renderer {
	def := DefaultRendererConfig()
	if cfg.MaxInstances <= 0 {
		cfg.MaxInstances = def.MaxInstances
	}
	if cfg.MaxAtlases <= 0 {
		cfg.MaxAtlases = def.MaxAtlases
	}
	if cfg.FenceTimeout <= 0 {
		cfg.FenceTimeout = def.FenceTimeout
	}
	r := &Renderer{
		device: device,
		queue:  queue,
		cfg:    cfg,
		glyph:  NewGlyphPipeline(device, queue),
		blit:   NewBlitPipeline(device, queue),
	}
	r.atlases = cache.New(cfg.MaxAtlases, func(_ *monotext.Atlas, t *texture) {
		t.destroy(r.device)
	})
	return r
}

// Size returns the dimensions of the current render target texture, or
// zero before the first frame.
func (r *Renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target == nil {
		return 0, 0
	}
	return r.target.size.X, r.target.size.Y
}

// Close releases every GPU object the renderer created. The device itself
// is not destroyed.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.atlases.Clear()
	r.target.destroy(r.device)
	r.target = nil
	r.glyph.Destroy()
	r.blit.Destroy()
	r.closed = true
}

// ReleaseAtlas drops the cached texture of an atlas.
func (r *Renderer) ReleaseAtlas(a *monotext.Atlas) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.atlases.Remove(a)
}

// RenderFrame draws f over target. Frames using an atlas layout the shader
// cannot express return monotext.ErrFallbackToCPU. target is written only
// after a successful readback.
func (r *Renderer) RenderFrame(target *image.RGBA, f *monotext.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if target == nil || target.Bounds().Size() != f.Window.Size() {
		return fmt.Errorf("%w: target does not match window %v", monotext.ErrInvalidWindow, f.Window.Size())
	}
	// Every atlas of the frame stays bound until submit, so none of them
	// may be evicted by a later one.
	atlases := make(map[*monotext.Atlas]struct{})
	for i := range f.Glyphs {
		d := &f.Glyphs[i]
		if !monotext.IsGridLayout(d.Atlas.Layout()) {
			return fmt.Errorf("glyph draw %d: custom atlas layout: %w", i, monotext.ErrFallbackToCPU)
		}
		if len(d.Instances) > r.cfg.MaxInstances {
			return fmt.Errorf("glyph draw %d: %d instances: %w", i, len(d.Instances), ErrInstanceOverflow)
		}
		if len(d.Instances) > 0 {
			atlases[d.Atlas] = struct{}{}
		}
	}
	if len(atlases) > r.cfg.MaxAtlases {
		return fmt.Errorf("%d atlases in one frame, limit %d: %w", len(atlases), r.cfg.MaxAtlases, monotext.ErrFallbackToCPU)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRendererClosed
	}

	if err := r.ensureTarget(f.Window.Size()); err != nil {
		return err
	}
	r.target.upload(r.queue, tightRows(target), 4)

	blits, glyphs, err := r.prepareFrame(f)
	defer r.releaseFrame(blits, glyphs)
	if err != nil {
		return err
	}

	if err := r.encodeSubmitReadback(target, blits, glyphs); err != nil {
		return err
	}
	slogger().Debug("gpu frame rendered",
		"window", f.Window.Size(), "layers", len(blits), "glyph_draws", len(glyphs))
	return nil
}

func (r *Renderer) ensureTarget(size image.Point) error {
	if r.target != nil && r.target.size == size {
		return nil
	}
	r.target.destroy(r.device)
	r.target = nil
	t, err := newTexture(r.device, "monotext_target", size, targetFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	r.target = t
	return nil
}

func (r *Renderer) atlasTexture(a *monotext.Atlas) (*texture, error) {
	if t, ok := r.atlases.Get(a); ok {
		return t, nil
	}
	t, err := newTexture(r.device, "glyph_atlas", a.Size(), gputypes.TextureFormatR8Unorm,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	t.upload(r.queue, atlasTexels(a), 1)
	r.atlases.Put(a, t)
	slogger().Debug("atlas uploaded", "size", a.Size(), "cell", a.Layout().CellSize())
	return t, nil
}

// prepareFrame uploads everything the pass reads. On error the returned
// slices hold what was created so far.
func (r *Renderer) prepareFrame(f *monotext.Frame) ([]*blitResources, []*glyphResources, error) {
	blits := make([]*blitResources, 0, len(f.Layers))
	for i := range f.Layers {
		l := &f.Layers[i]
		res, err := r.blit.prepare(l, f.LayerConfig(l), f.LayerRect(l))
		if err != nil {
			return blits, nil, fmt.Errorf("layer %d: %w", i, err)
		}
		blits = append(blits, res)
	}

	glyphs := make([]*glyphResources, 0, len(f.Glyphs))
	for i := range f.Glyphs {
		d := &f.Glyphs[i]
		if len(d.Instances) == 0 {
			continue
		}
		atlas, err := r.atlasTexture(d.Atlas)
		if err != nil {
			return blits, glyphs, fmt.Errorf("glyph draw %d: %w", i, err)
		}
		res, err := r.glyph.prepare(d, f.GlyphConfig(d), atlas.view)
		if err != nil {
			return blits, glyphs, fmt.Errorf("glyph draw %d: %w", i, err)
		}
		glyphs = append(glyphs, res)
	}
	return blits, glyphs, nil
}

func (r *Renderer) releaseFrame(blits []*blitResources, glyphs []*glyphResources) {
	for _, res := range glyphs {
		r.glyph.release(res)
	}
	for _, res := range blits {
		r.blit.release(res)
	}
}

// encodeSubmitReadback records the pass, copies the target texture to a
// staging buffer, waits for the fence and stores the pixels in target.
func (r *Renderer) encodeSubmitReadback(target *image.RGBA, blits []*blitResources, glyphs []*glyphResources) error {
	w, h := uint32(r.target.size.X), uint32(r.target.size.Y) //nolint:gosec // window sizes are positive

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "monotext_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("monotext_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "monotext_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    r.target.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	for _, res := range blits {
		r.blit.record(rp, res)
	}
	for _, res := range glyphs {
		r.glyph.record(rp, res)
	}
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)
	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "monotext_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(r.target.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.target.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.target.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := r.device.Wait(fence, 1, r.cfg.FenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}

	readback := make([]byte, stagingSize)
	if err := r.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	storeRows(target, readback, int(alignedBytesPerRow))
	return nil
}
