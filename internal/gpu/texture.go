//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// texture pairs a 2D texture with its default view.
type texture struct {
	tex    hal.Texture
	view   hal.TextureView
	size   image.Point
	format gputypes.TextureFormat
}

func newTexture(device hal.Device, label string, size image.Point, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*texture, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          extent(size),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return &texture{tex: tex, view: view, size: size, format: format}, nil
}

// upload writes tightly packed rows covering the whole texture.
func (t *texture) upload(queue hal.Queue, data []byte, bytesPerPixel int) {
	ext := extent(t.size)
	queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(t.size.X * bytesPerPixel), //nolint:gosec // texture width fits uint32
			RowsPerImage: ext.Height,
		},
		&ext,
	)
}

// destroy releases the view and texture. Safe on a nil receiver.
func (t *texture) destroy(device hal.Device) {
	if t == nil {
		return
	}
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

func extent(size image.Point) hal.Extent3D {
	return hal.Extent3D{
		Width:              uint32(size.X), //nolint:gosec // image sizes are non-negative
		Height:             uint32(size.Y), //nolint:gosec // image sizes are non-negative
		DepthOrArrayLayers: 1,
	}
}
