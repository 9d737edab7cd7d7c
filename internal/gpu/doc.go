// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package gpu renders monotext frames with wgpu/hal render pipelines.
//
// Two pipelines share one render pass per frame:
//
//	BlitPipeline   layer textures copied into destination rectangles
//	GlyphPipeline  instanced quads decoding packed text per fragment
//
// The glyph pipeline binds the packed character buffer as a read-only
// storage buffer and the atlas as an R8Unorm texture. The fragment shader
// unpacks the code under each pixel, offsets into the code's atlas cell,
// samples coverage and multiplies the instance color by it.
//
// Renderer draws into an offscreen RGBA8 texture seeded with the current
// target pixels, then copies the result back after a fence wait.
// Accelerator wraps a Renderer as a monotext.GPUAccelerator and owns the
// device unless one is supplied through SetDeviceProvider.
package gpu
