// Package render is the public facade of the Arkose render core: a
// backend-agnostic GPU resource and pipeline abstraction sitting over the
// hal Vulkan and D3D12 implementations. Application code allocates
// resources through a Backend and records work through a CommandList;
// it never touches package hal directly.
package render

import (
	"github.com/arkose-engine/render/core"
	"github.com/arkose-engine/render/hal"
	"github.com/arkose-engine/render/types"
)

// resource is the common embedded base every facade resource type carries:
// a back-reference to the owning Backend, a human-readable name for
// debugging/RenderDoc captures, and a reusable flag. Nothing in this module
// sets the flag; registry reuse across pipeline reconstruction compares
// texture descriptors and does not consult it.
type resource struct {
	backend  *Backend
	name     string
	reusable bool
}

// Name returns the debug label given at creation time.
func (r *resource) Name() string { return r.name }

// Reusable reports the reusable flag, which nothing in this module sets;
// Registry rebuilds do not read it.
func (r *resource) Reusable() bool { return r.reusable }

// Buffer is a linear GPU memory allocation (vertex, index, constant,
// storage, or staging), spec.md §3.
type Buffer struct {
	resource
	handle core.BufferHandle
	native hal.Buffer
	desc   hal.BufferDescriptor
}

// Handle returns the opaque handle identifying this buffer in the owning
// Registry.
func (b *Buffer) Handle() core.BufferHandle { return b.handle }

// Size returns the buffer's byte size as given at creation.
func (b *Buffer) Size() uint64 { return b.desc.Size }

// Stride returns the per-vertex stride for Vertex-usage buffers, else 0.
func (b *Buffer) Stride() uint32 { return b.desc.Stride }

// Usage returns the usage bitmask given at creation.
func (b *Buffer) Usage() types.BufferUsage { return b.desc.Usage }

// UpdateData writes size bytes from data at offset into the buffer, spec.md
// §3's "updateData(bytes, size, offset)".
func (b *Buffer) UpdateData(data []byte, size, offset uint64) error {
	if offset+size > b.desc.Size {
		return core.NewRecordingError("UpdateData", "write [%d,%d) exceeds buffer size %d", offset, offset+size, b.desc.Size)
	}
	return b.backend.device.WriteBuffer(b.native, offset, data[:size])
}

// MapData reads size bytes at offset and passes them to callback. Only
// valid for Upload/Readback-usage buffers, per spec.md §3
// ("mapData(mode, size, offset, callback) (Upload/Readback only)"); mode is
// accepted for interface symmetry with a real mapped-pointer API even
// though this facade always round-trips through a byte slice.
func (b *Buffer) MapData(mode types.MapMode, size, offset uint64, callback func([]byte)) error {
	if !b.desc.Usage.Has(types.BufferUsageUpload) && !b.desc.Usage.Has(types.BufferUsageReadback) {
		return core.NewConstructionError("MapData", "usage", "buffer usage %v is neither Upload nor Readback", b.desc.Usage)
	}
	data, err := b.backend.device.ReadBuffer(b.native, offset, size)
	if err != nil {
		return err
	}
	callback(data)
	if mode == types.MapWrite {
		return b.backend.device.WriteBuffer(b.native, offset, data)
	}
	return nil
}

// ReallocateWithSize replaces the buffer's backing storage with one of
// newSize, either copying the old bytes forward (strategy == ReallocCopy)
// or discarding them (ReallocDiscard), per spec.md §3.
func (b *Buffer) ReallocateWithSize(newSize uint64, strategy types.ReallocStrategy) error {
	native, err := b.backend.device.ResizeBuffer(b.native, b.desc.Size, newSize, strategy)
	if err != nil {
		return err
	}
	b.native = native
	b.desc.Size = newSize
	return nil
}

// GrowOnWrite doubles the buffer's capacity (preserving existing bytes) if
// it cannot currently hold neededSize bytes, spec.md §3's "grow-on-write
// helper [that] doubles capacity when needed". Returns true if a grow
// happened.
func (b *Buffer) GrowOnWrite(neededSize uint64) (bool, error) {
	if neededSize <= b.desc.Size {
		return false, nil
	}
	newSize := b.desc.Size
	if newSize == 0 {
		newSize = neededSize
	}
	for newSize < neededSize {
		newSize *= 2
	}
	core.Log().Debug("buffer grown", "name", b.name, "oldSize", b.desc.Size, "newSize", newSize)
	return true, b.ReallocateWithSize(newSize, types.ReallocCopy)
}

// TextureMipView is a single-mip-level view into a Texture, used as a
// render target attachment or a sampled/storage binding.
type TextureMipView struct {
	native   hal.TextureView
	texture  *Texture
	baseMip  uint32
	mipCount uint32
}

// Texture returns the parent texture this view was created from.
func (v *TextureMipView) Texture() *Texture { return v.texture }

// BaseMip returns the first mip level this view covers.
func (v *TextureMipView) BaseMip() uint32 { return v.baseMip }

// Texture is a 1D/2D/3D/cube image resource, spec.md §3. A Texture may be
// multisampled and/or mipmapped; MipExtent halving follows
// types.Extent3D.MipExtent.
type Texture struct {
	resource
	handle core.TextureHandle
	native hal.Texture
	desc   hal.TextureDescriptor
	views  []*TextureMipView
}

// Handle returns the opaque handle identifying this texture.
func (t *Texture) Handle() core.TextureHandle { return t.handle }

// MipLevels returns the mip chain length computed at creation time.
func (t *Texture) MipLevels() uint32 { return t.desc.MipLevels() }

// Clear fills mip level 0 with color, spec.md §3's "clear" operation.
func (t *Texture) Clear(color [4]float32) error {
	return t.backend.device.ClearTexture(t.native, 0, color)
}

// SetPixelData fills mip level 0 with a single repeated color, spec.md §3's
// "setPixelData(color)".
func (t *Texture) SetPixelData(color [4]float32) error {
	return t.backend.device.ClearTexture(t.native, 0, color)
}

// SetData uploads raw bytes into mipIdx/arrayIdx, spec.md §3's
// "setData(bytes, mipIdx, arrayIdx)". The bytes are also written to a
// staging buffer scoped to this call, but no copy command reads it: the
// texture is written directly from data through the device's WriteTexture.
func (t *Texture) SetData(data []byte, mipIdx, arrayIdx uint32) error {
	if mipIdx >= t.desc.MipLevels() {
		return core.NewRecordingError("SetData", "mip %d out of range (%d levels)", mipIdx, t.desc.MipLevels())
	}
	staging, err := t.backend.CreateBuffer(hal.BufferDescriptor{
		Label: t.name + "-upload-staging",
		Size:  uint64(len(data)),
		Usage: types.BufferUsageUpload,
	})
	if err != nil {
		return err
	}
	if err := t.backend.device.WriteBuffer(staging.native, 0, data); err != nil {
		return err
	}
	return t.backend.device.WriteTexture(t.native, mipIdx, arrayIdx, data)
}

// GenerateMipmaps fills every mip level above 0 from mip 0, spec.md §3.
// Calling this on a texture whose MipmapMode is None is a logged no-op,
// spec.md §4.10's non-fatal "texture generateMipmaps on a non-mipmapped
// texture (ignored)".
func (t *Texture) GenerateMipmaps() error {
	return t.backend.device.GenerateMipmaps(t.native)
}

// View returns (creating if necessary) the TextureMipView covering
// [baseMip, baseMip+mipCount).
func (t *Texture) View(baseMip, mipCount uint32) (*TextureMipView, error) {
	for _, v := range t.views {
		if v.baseMip == baseMip && v.mipCount == mipCount {
			return v, nil
		}
	}
	dev := t.backend.device
	native, err := dev.CreateTextureView(t.native, baseMip, mipCount)
	if err != nil {
		return nil, err
	}
	v := &TextureMipView{native: native, texture: t, baseMip: baseMip, mipCount: mipCount}
	t.views = append(t.views, v)
	return v, nil
}

// Sampler configures texture filtering and wrap behavior, spec.md §3.
type Sampler struct {
	resource
	handle core.SamplerHandle
	native hal.Sampler
}

// Handle returns the opaque handle identifying this sampler.
func (s *Sampler) Handle() core.SamplerHandle { return s.handle }
