//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/monotext"
	"github.com/gogpu/wgpu/hal"
)

// samplerCache creates one clamp-to-edge sampler per filter on demand.
type samplerCache struct {
	device   hal.Device
	label    string
	samplers map[monotext.Filter]hal.Sampler
}

func (c *samplerCache) get(f monotext.Filter) (hal.Sampler, error) {
	if s, ok := c.samplers[f]; ok {
		return s, nil
	}
	mode := filterMode(f)
	s, err := c.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        fmt.Sprintf("%s_sampler_%s", c.label, f),
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    mode,
		MinFilter:    mode,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s sampler: %w", c.label, err)
	}
	if c.samplers == nil {
		c.samplers = make(map[monotext.Filter]hal.Sampler)
	}
	c.samplers[f] = s
	return s, nil
}

func (c *samplerCache) destroy() {
	for f, s := range c.samplers {
		c.device.DestroySampler(s)
		delete(c.samplers, f)
	}
}

func filterMode(f monotext.Filter) gputypes.FilterMode {
	if f == monotext.FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}
