//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/monotext"
	"github.com/gogpu/wgpu/hal"
)

// Glyph pipeline errors.
var (
	// ErrNoInstances is returned when a glyph draw has nothing to draw.
	ErrNoInstances = errors.New("gpu: glyph draw has no instances")

	// ErrInstanceOverflow is returned when a draw exceeds
	// RendererConfig.MaxInstances.
	ErrInstanceOverflow = errors.New("gpu: too many instances in one draw")
)

// targetFormat is the format of the offscreen render target.
const targetFormat = gputypes.TextureFormatRGBA8Unorm

// GlyphPipeline owns the shader, layouts and render pipeline that decode
// packed text per fragment. Samplers are created on first use per filter.
//
// Bind group 0:
//
//	binding 0  sampler (filtering)
//	binding 1  atlas coverage texture (R8Unorm)
//	binding 2  packed text, read-only storage array<u32>
//	binding 3  DrawParams uniform
type GlyphPipeline struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	samplers samplerCache
}

// NewGlyphPipeline returns a pipeline for the device. GPU objects are
// created by the first call to ensurePipeline.
func NewGlyphPipeline(device hal.Device, queue hal.Queue) *GlyphPipeline {
	return &GlyphPipeline{device: device, queue: queue, samplers: samplerCache{device: device, label: "glyph"}}
}

func (p *GlyphPipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	if err := p.createPipeline(); err != nil {
		p.destroyPipeline()
		return err
	}
	return nil
}

func (p *GlyphPipeline) createPipeline() error {
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "glyph_shader",
		Source: hal.ShaderSource{WGSL: glyphShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile glyph shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "glyph_bind_layout",
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
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    3,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create glyph bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "glyph_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create glyph pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "glyph_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    glyphInstanceLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					Blend:     &premulBlend,
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
		return fmt.Errorf("create glyph pipeline: %w", err)
	}
	p.pipeline = pipeline
	slogger().Debug("glyph pipeline created")
	return nil
}

// Destroy releases all GPU objects. Safe to call more than once.
func (p *GlyphPipeline) Destroy() {
	p.destroyPipeline()
	p.samplers.destroy()
}

func (p *GlyphPipeline) destroyPipeline() {
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

// glyphResources holds the per-frame buffers and bind group of one glyph
// draw.
type glyphResources struct {
	textBuf       hal.Buffer
	instanceBuf   hal.Buffer
	paramBuf      hal.Buffer
	bindGroup     hal.BindGroup
	instanceCount uint32
}

// prepare uploads the packed text, instances and draw parameters of d and
// binds them with the atlas view.
func (p *GlyphPipeline) prepare(d *monotext.GlyphDraw, cfg monotext.DrawConfig, atlasView hal.TextureView) (*glyphResources, error) {
	if len(d.Instances) == 0 {
		return nil, ErrNoInstances
	}
	if err := p.ensurePipeline(); err != nil {
		return nil, err
	}
	sampler, err := p.samplers.get(cfg.Filter)
	if err != nil {
		return nil, err
	}

	res := &glyphResources{instanceCount: uint32(len(d.Instances))} //nolint:gosec // bounded by MaxInstances
	textBytes := d.Text.Bytes()
	instBytes := buildInstanceData(d.Instances, d.Atlas.Layout())
	paramBytes := makeGlyphParams(cfg, d.Atlas)

	if res.textBuf, err = p.createBuffer("glyph_packed_text", textBytes,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst); err != nil {
		p.release(res)
		return nil, err
	}
	if res.instanceBuf, err = p.createBuffer("glyph_instances", instBytes,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst); err != nil {
		p.release(res)
		return nil, err
	}
	if res.paramBuf, err = p.createBuffer("glyph_params", paramBytes,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst); err != nil {
		p.release(res)
		return nil, err
	}

	res.bindGroup, err = p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "glyph_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.SamplerBinding{Sampler: sampler.NativeHandle()}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: atlasView.NativeHandle()}},
			{Binding: 2, Resource: gputypes.BufferBinding{
				Buffer: res.textBuf.NativeHandle(), Offset: 0, Size: uint64(len(textBytes)),
			}},
			{Binding: 3, Resource: gputypes.BufferBinding{
				Buffer: res.paramBuf.NativeHandle(), Offset: 0, Size: glyphParamsSize,
			}},
		},
	})
	if err != nil {
		p.release(res)
		return nil, fmt.Errorf("create glyph bind group: %w", err)
	}

	slogger().Debug("glyph draw prepared",
		"instances", len(d.Instances), "text_bytes", len(textBytes), "antialias", cfg.Antialias)
	return res, nil
}

func (p *GlyphPipeline) createBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	p.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// record draws one prepared glyph draw: six vertices per instance.
func (p *GlyphPipeline) record(rp hal.RenderPassEncoder, res *glyphResources) {
	if res == nil || res.instanceCount == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, res.bindGroup, nil)
	rp.SetVertexBuffer(0, res.instanceBuf, 0)
	rp.Draw(6, res.instanceCount, 0, 0)
}

// release destroys per-frame resources in reverse creation order.
func (p *GlyphPipeline) release(res *glyphResources) {
	if res == nil {
		return
	}
	if res.bindGroup != nil {
		p.device.DestroyBindGroup(res.bindGroup)
	}
	for _, b := range []hal.Buffer{res.paramBuf, res.instanceBuf, res.textBuf} {
		if b != nil {
			p.device.DestroyBuffer(b)
		}
	}
	*res = glyphResources{}
}
