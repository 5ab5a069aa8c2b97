//go:build windows

package d3d12

import (
	"github.com/arkose-engine/render/core"
	"github.com/arkose-engine/render/hal"
	arktypes "github.com/arkose-engine/render/types"
)

// Swapchain is kept as a CPU-side back-buffer array for the same reason
// hal/vulkan's is: real IDXGISwapChain4 creation needs an HWND this module
// never has (it is a headless rendering core; windowing is the
// application's concern per spec.md §4.1), so there is no real presentation
// surface for a DXGI swapchain to present into.
type Swapchain struct {
	device  *Device
	desc    hal.SwapchainDescriptor
	buffers []*Texture
	current uint32
}

func (d *Device) CreateSwapchain(desc hal.SwapchainDescriptor) (hal.Swapchain, error) {
	if desc.BufferCount == 0 {
		return nil, core.NewConstructionError("Swapchain", "bufferCount", "must be at least 1")
	}
	buffers := make([]*Texture, desc.BufferCount)
	for i := range buffers {
		tex, err := d.CreateTexture(hal.TextureDescriptor{
			Label:  "swapchain-backbuffer",
			Extent: arktypes.Extent3D{Width: desc.Width, Height: desc.Height, Depth: 1},
			Format: desc.Format,
		})
		if err != nil {
			return nil, err
		}
		buffers[i] = tex.(*Texture)
	}
	return &Swapchain{device: d, desc: desc, buffers: buffers}, nil
}

type swapchainImage struct {
	hal.SwapchainImageBase
	swapchain *Swapchain
	index     uint32
}

// AcquireNextImage advances to the next back buffer in round-robin order,
// matching hal/vulkan's simplification: there is no compositor here to
// block on.
func (s *Swapchain) AcquireNextImage() (hal.SwapchainImage, uint32, error) {
	idx := s.current
	s.current = (s.current + 1) % uint32(len(s.buffers))
	return &swapchainImage{swapchain: s, index: idx}, idx, nil
}

func (s *Swapchain) BackBufferTexture(index uint32) hal.Texture {
	return s.buffers[index]
}

func (s *Swapchain) Resize(width, height uint32) error {
	for i, old := range s.buffers {
		tex, err := s.device.CreateTexture(hal.TextureDescriptor{
			Label:  old.desc.Label,
			Extent: arktypes.Extent3D{Width: width, Height: height, Depth: 1},
			Format: old.desc.Format,
		})
		if err != nil {
			return err
		}
		s.buffers[i] = tex.(*Texture)
	}
	s.desc.Width, s.desc.Height = width, height
	return nil
}

func (s *Swapchain) present(index uint32) error { return nil }

func (s *Swapchain) Destroy() { s.buffers = nil }
