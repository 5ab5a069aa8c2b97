package vulkan

import (
	"github.com/arkose-engine/render/core"
	"github.com/arkose-engine/render/hal"
	arktypes "github.com/arkose-engine/render/types"
)

// Swapchain, like the other resource kinds in this package, is kept as a
// CPU-side record rather than a real VkSwapchainKHR plus per-image
// VkImageView set (see the package comment in resource.go): the frame
// scheduler only needs stable back-buffer textures to build render targets
// against and an acquire/present cadence to drive, not actual presentable
// memory, since nothing in this environment has a display surface to
// present to.
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

// swapchainImage identifies one acquired back buffer, handed to
// Queue.Present once the frame that renders into it has been submitted.
type swapchainImage struct {
	hal.SwapchainImageBase
	swapchain *Swapchain
	index     uint32
}

// AcquireNextImage advances to the next back buffer in round-robin order.
// A real presentation engine would block on vkAcquireNextImageKHR's
// semaphore until the compositor releases an image; this backend has no
// compositor to wait on, so every buffer is always considered available.
func (s *Swapchain) AcquireNextImage() (hal.SwapchainImage, uint32, error) {
	idx := s.current
	s.current = (s.current + 1) % uint32(len(s.buffers))
	return &swapchainImage{swapchain: s, index: idx}, idx, nil
}

func (s *Swapchain) BackBufferTexture(index uint32) hal.Texture {
	return s.buffers[index]
}

// Resize recreates every back buffer at the new dimensions, per spec.md
// §4.6's swapchain-recreation-on-resize contract.
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

// present is the synchronization point Queue.Present forwards to; it has
// nothing to wait on in this backend beyond advancing acquire order, which
// AcquireNextImage already does unconditionally.
func (s *Swapchain) present(index uint32) error { return nil }

func (s *Swapchain) Destroy() { s.buffers = nil }
