//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/monotext"
	"github.com/gogpu/wgpu/hal"
)

// BlitPipeline copies layer textures into destination rectangles of the
// target. It has no blend state: layer pixels replace the target.
//
// Bind group 0:
//
//	binding 0  sampler (filtering)
//	binding 1  layer texture (RGBA8Unorm, premultiplied)
//	binding 2  BlitParams uniform
type BlitPipeline struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	samplers samplerCache
}

// NewBlitPipeline returns a pipeline for the device. GPU objects are
// created on first use.
func NewBlitPipeline(device hal.Device, queue hal.Queue) *BlitPipeline {
	return &BlitPipeline{device: device, queue: queue, samplers: samplerCache{device: device, label: "blit"}}
}

func (p *BlitPipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	if err := p.createPipeline(); err != nil {
		p.destroyPipeline()
		return err
	}
	return nil
}

func (p *BlitPipeline) createPipeline() error {
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "blit_shader",
		Source: hal.ShaderSource{WGSL: blitShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile blit shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "blit_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create blit bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "blit_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create blit pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "blit_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create blit pipeline: %w", err)
	}
	p.pipeline = pipeline
	slogger().Debug("blit pipeline created")
	return nil
}

// Destroy releases all GPU objects. Safe to call more than once.
func (p *BlitPipeline) Destroy() {
	p.destroyPipeline()
	p.samplers.destroy()
}

func (p *BlitPipeline) destroyPipeline() {
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// blitResources holds the per-frame texture, uniform and bind group of
// one layer.
type blitResources struct {
	tex       *texture
	paramBuf  hal.Buffer
	bindGroup hal.BindGroup
}

// prepare uploads the layer image and its destination.
func (p *BlitPipeline) prepare(l *monotext.Layer, cfg monotext.DrawConfig, dst image.Rectangle) (*blitResources, error) {
	if err := p.ensurePipeline(); err != nil {
		return nil, err
	}
	sampler, err := p.samplers.get(cfg.Filter)
	if err != nil {
		return nil, err
	}

	res := &blitResources{}
	size := l.Image.Bounds().Size()
	res.tex, err = newTexture(p.device, "blit_layer", size, gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	res.tex.upload(p.queue, premultipliedPixels(l.Image), 4)

	res.paramBuf, err = p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "blit_params",
		Size:  blitParamsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		p.release(res)
		return nil, fmt.Errorf("create blit params buffer: %w", err)
	}
	p.queue.WriteBuffer(res.paramBuf, 0, makeBlitParams(cfg, dst))

	res.bindGroup, err = p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "blit_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: res.tex.view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.BufferBinding{
				Buffer: res.paramBuf.NativeHandle(), Offset: 0, Size: blitParamsSize,
			}},
		},
	})
	if err != nil {
		p.release(res)
		return nil, fmt.Errorf("create blit bind group: %w", err)
	}
	return res, nil
}

func (p *BlitPipeline) record(rp hal.RenderPassEncoder, res *blitResources) {
	if res == nil {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, res.bindGroup, nil)
	rp.Draw(6, 1, 0, 0)
}

func (p *BlitPipeline) release(res *blitResources) {
	if res == nil {
		return
	}
	if res.bindGroup != nil {
		p.device.DestroyBindGroup(res.bindGroup)
	}
	if res.paramBuf != nil {
		p.device.DestroyBuffer(res.paramBuf)
	}
	res.tex.destroy(p.device)
	*res = blitResources{}
}
