package vulkan

import (
	"github.com/arkose-engine/render/core"
	"github.com/arkose-engine/render/hal"
	arktypes "github.com/arkose-engine/render/types"
)

// CommandEncoder records a single command buffer. State-transition and
// binding-table writes are tracked at the render.CommandList layer above
// this package (spec.md §4.3); this layer only needs to remember which
// allocator it was last reset against and forward recorded operations to
// the allocator's identity for Submit.
type CommandEncoder struct {
	device    *Device
	handle    uint64
	allocator *CommandAllocator
}

func (d *Device) CreateCommandEncoder(alloc hal.CommandAllocator) (hal.CommandEncoder, error) {
	a, ok := alloc.(*CommandAllocator)
	if !ok {
		return nil, core.NewConstructionError("CommandEncoder", "allocator", "not a vulkan command allocator")
	}
	return &CommandEncoder{device: d, handle: d.newHandle(), allocator: a}, nil
}

func (e *CommandEncoder) Reset(alloc hal.CommandAllocator) error {
	a, ok := alloc.(*CommandAllocator)
	if !ok {
		return core.NewConstructionError("CommandEncoder.Reset", "allocator", "not a vulkan command allocator")
	}
	e.allocator = a
	return nil
}

func (e *CommandEncoder) Close() error { return nil }

func (e *CommandEncoder) BeginRenderPass(hal.RenderTarget) error { return nil }
func (e *CommandEncoder) EndRenderPass() error                   { return nil }

func (e *CommandEncoder) SetRenderState(hal.RenderState) error         { return nil }
func (e *CommandEncoder) SetComputeState(hal.ComputeState) error       { return nil }
func (e *CommandEncoder) SetRayTracingState(hal.RayTracingState) error { return nil }
func (e *CommandEncoder) BindSet(uint32, hal.BindingSet) error         { return nil }
func (e *CommandEncoder) WriteNamedConstant(string, []byte) error      { return nil }

func (e *CommandEncoder) SetVertexBuffer(uint32, hal.Buffer, uint64) error { return nil }
func (e *CommandEncoder) SetIndexBuffer(hal.Buffer, uint64, arktypes.IndexType) error {
	return nil
}
func (e *CommandEncoder) Draw(uint32, uint32, uint32, uint32) error                   { return nil }
func (e *CommandEncoder) DrawIndexed(uint32, uint32, uint32, int32, uint32) error      { return nil }
func (e *CommandEncoder) DrawIndirect(hal.Buffer, uint64, hal.Buffer, uint64, uint32) error {
	return nil
}
func (e *CommandEncoder) DrawIndexedIndirect(hal.Buffer, uint64, hal.Buffer, uint64, uint32) error {
	return nil
}

func (e *CommandEncoder) Dispatch(uint32, uint32, uint32) error     { return nil }
func (e *CommandEncoder) DispatchRays(uint32, uint32, uint32) error { return nil }
func (e *CommandEncoder) DispatchMesh(uint32, uint32, uint32) error { return nil }
func (e *CommandEncoder) DispatchMeshIndirect(hal.Buffer, uint64) error { return nil }

// CopyBuffer moves bytes between the two buffers' CPU-side shadows
// immediately. A real command buffer would defer this until submission;
// this backend has no native memory to defer against (see the package
// comment in resource.go), so the copy is visible the instant it is
// recorded. Callers (notably upload.Buffer.Flush) rely only on "happens
// before the next frame's reads", which this satisfies trivially.
func (e *CommandEncoder) CopyBuffer(dst hal.Buffer, dstOffset uint64, src hal.Buffer, srcOffset, size uint64) error {
	data, err := e.device.ReadBuffer(src, srcOffset, size)
	if err != nil {
		return err
	}
	return e.device.WriteBuffer(dst, dstOffset, data)
}

func (e *CommandEncoder) CopyBufferToTexture(dst hal.Texture, mip uint32, src hal.Buffer, srcOffset uint64) error {
	t, ok := dst.(*Texture)
	if !ok {
		return core.NewConstructionError("CopyBufferToTexture", "dst", "not a vulkan texture")
	}
	if int(mip) >= len(t.mips) {
		return core.NewRecordingError("CopyBufferToTexture", "mip %d out of range", mip)
	}
	data, err := e.device.ReadBuffer(src, srcOffset, uint64(len(t.mips[mip])))
	if err != nil {
		return err
	}
	return e.device.WriteTexture(dst, mip, 0, data)
}

func (e *CommandEncoder) TransitionTexture(hal.Texture, bool) error { return nil }
func (e *CommandEncoder) TransitionBuffer(hal.Buffer) error         { return nil }
