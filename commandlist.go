package render

import (
	"github.com/arkose-engine/render/core"
	"github.com/arkose-engine/render/hal"
	"github.com/arkose-engine/render/types"
)

// resourceState is the state-transition cache CommandList keeps per
// resource so barriers are emitted lazily, spec.md §4.3: "the command list
// caches the last known state per resource and emits transition barriers
// lazily just before the next use."
type resourceState int

const (
	stateUnknown resourceState = iota
	stateShaderRead
	stateRenderTarget
	stateCopySrc
	stateCopyDst
	stateUnorderedAccess
)

// CommandList is the single-threaded recording surface spec.md §4.3
// describes: begin/end render pass, bind pipeline state, draw/dispatch,
// copy, and named-uniform ("push constant") writes through a reserved
// set-0 root CBV. One CommandList records against one per-frame command
// allocator; it is not safe for concurrent use.
type CommandList struct {
	backend *Backend
	native  hal.CommandEncoder

	boundRenderState     *RenderState
	boundComputeState    *ComputeState
	boundRayTracingState *RayTracingState
	inRenderPass         bool

	textureStates map[hal.Texture]resourceState
	debugDepth    int
}

// NewCommandList wraps a backend-native command encoder with state
// tracking. Only the frame scheduler should call this; application code
// receives a *CommandList as an argument to its node execute callbacks.
func NewCommandList(backend *Backend, native hal.CommandEncoder) *CommandList {
	return &CommandList{backend: backend, native: native, textureStates: map[hal.Texture]resourceState{}}
}

// PushDebugLabel increments the debug-label nesting depth. No annotation
// is recorded into the native command stream.
func (cl *CommandList) PushDebugLabel(name string) { cl.debugDepth++ }

// PopDebugLabel closes the most recently pushed debug label.
func (cl *CommandList) PopDebugLabel() {
	if cl.debugDepth > 0 {
		cl.debugDepth--
	}
}

// BeginRenderPass binds the render target and opens a render pass. The
// per-attachment transitionTextureView call records no barrier, and no
// clear is issued for any attachment's LoadOp.
func (cl *CommandList) BeginRenderPass(rt *RenderTarget) error {
	if cl.inRenderPass {
		return core.NewRecordingError("BeginRenderPass", "render pass already open")
	}
	for _, a := range rt.attachments {
		cl.transitionTextureView(a.Texture, stateRenderTarget)
	}
	if err := cl.native.BeginRenderPass(rt.native); err != nil {
		return err
	}
	cl.inRenderPass = true
	return nil
}

// EndRenderPass closes the currently open render pass.
func (cl *CommandList) EndRenderPass() error {
	if !cl.inRenderPass {
		return core.NewRecordingError("EndRenderPass", "no render pass is open")
	}
	cl.inRenderPass = false
	cl.boundRenderState = nil
	return cl.native.EndRenderPass()
}

// SetRenderState binds rs. The StateBindings entries referenced by its
// descriptor are neither transitioned nor bound.
func (cl *CommandList) SetRenderState(rs *RenderState) error {
	if !cl.inRenderPass {
		return core.NewRecordingError("SetRenderState", "no render pass is open")
	}
	if err := cl.native.SetRenderState(rs.native); err != nil {
		return err
	}
	cl.boundRenderState = rs
	return nil
}

// SetComputeState binds cs.
func (cl *CommandList) SetComputeState(cs *ComputeState) error {
	if err := cl.native.SetComputeState(cs.native); err != nil {
		return err
	}
	cl.boundComputeState = cs
	return nil
}

// SetRayTracingState binds rts.
func (cl *CommandList) SetRayTracingState(rts *RayTracingState) error {
	if err := cl.native.SetRayTracingState(rts.native); err != nil {
		return err
	}
	cl.boundRayTracingState = rts
	return nil
}

// BindSet binds set at descriptor-table index.
func (cl *CommandList) BindSet(index uint32, set *BindingSet) error {
	return cl.native.BindSet(index, set.native)
}

// WriteNamedConstant writes data into the shader's reserved set-0
// named-uniform root CBV at the offset its reflection table assigned name
// (spec.md §4.3, §9).
func (cl *CommandList) WriteNamedConstant(name string, data []byte) error {
	return cl.native.WriteNamedConstant(name, data)
}

// SetVertexBuffer binds buf at input slot.
func (cl *CommandList) SetVertexBuffer(slot uint32, buf *Buffer, offset uint64) error {
	return cl.native.SetVertexBuffer(slot, buf.native, offset)
}

// SetIndexBuffer binds buf as the index buffer.
func (cl *CommandList) SetIndexBuffer(buf *Buffer, offset uint64, indexType types.IndexType) error {
	return cl.native.SetIndexBuffer(buf.native, offset, indexType)
}

// Draw issues a non-indexed draw call.
func (cl *CommandList) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	if cl.boundRenderState == nil {
		return core.NewRecordingError("Draw", "no RenderState is bound")
	}
	return cl.native.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// DrawIndexed issues an indexed draw call.
func (cl *CommandList) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) error {
	if cl.boundRenderState == nil {
		return core.NewRecordingError("DrawIndexed", "no RenderState is bound")
	}
	return cl.native.DrawIndexed(indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

// DrawIndirect issues a non-indexed draw whose parameters are read from
// argsBuffer, optionally with a draw count sourced from countBuffer
// (spec.md §4.3's "indirect (with a count buffer)"). countBuffer may be nil
// to draw exactly one indirect command.
func (cl *CommandList) DrawIndirect(argsBuffer *Buffer, argsOffset uint64, countBuffer *Buffer, countOffset uint64, maxCount uint32) error {
	if cl.boundRenderState == nil {
		return core.NewRecordingError("DrawIndirect", "no RenderState is bound")
	}
	return cl.native.DrawIndirect(argsBuffer.native, argsOffset, nativeOrNil(countBuffer), countOffset, maxCount)
}

// DrawIndexedIndirect issues an indexed indirect draw, the indexed
// counterpart of DrawIndirect.
func (cl *CommandList) DrawIndexedIndirect(argsBuffer *Buffer, argsOffset uint64, countBuffer *Buffer, countOffset uint64, maxCount uint32) error {
	if cl.boundRenderState == nil {
		return core.NewRecordingError("DrawIndexedIndirect", "no RenderState is bound")
	}
	return cl.native.DrawIndexedIndirect(argsBuffer.native, argsOffset, nativeOrNil(countBuffer), countOffset, maxCount)
}

func nativeOrNil(b *Buffer) hal.Buffer {
	if b == nil {
		return nil
	}
	return b.native
}

// Dispatch issues a compute dispatch.
func (cl *CommandList) Dispatch(groupsX, groupsY, groupsZ uint32) error {
	if cl.boundComputeState == nil {
		return core.NewRecordingError("Dispatch", "no ComputeState is bound")
	}
	return cl.native.Dispatch(groupsX, groupsY, groupsZ)
}

// DispatchRays issues a ray tracing dispatch over a width*height*depth grid.
func (cl *CommandList) DispatchRays(width, height, depth uint32) error {
	if cl.boundRayTracingState == nil {
		return core.NewRecordingError("DispatchRays", "no RayTracingState is bound")
	}
	return cl.native.DispatchRays(width, height, depth)
}

// DispatchMesh issues a direct mesh-shader dispatch, bound to the currently
// set RenderState (mesh pipelines are graphics pipelines, spec.md §4.3).
func (cl *CommandList) DispatchMesh(groupsX, groupsY, groupsZ uint32) error {
	if cl.boundRenderState == nil {
		return core.NewRecordingError("DispatchMesh", "no RenderState is bound")
	}
	return cl.native.DispatchMesh(groupsX, groupsY, groupsZ)
}

// DispatchMeshIndirect issues an indirect mesh-shader dispatch whose
// parameters are read from argsBuffer.
func (cl *CommandList) DispatchMeshIndirect(argsBuffer *Buffer, argsOffset uint64) error {
	if cl.boundRenderState == nil {
		return core.NewRecordingError("DispatchMeshIndirect", "no RenderState is bound")
	}
	return cl.native.DispatchMeshIndirect(argsBuffer.native, argsOffset)
}

// CopyBuffer copies size bytes from src to dst. No state transition is
// recorded for either buffer.
func (cl *CommandList) CopyBuffer(dst *Buffer, dstOffset uint64, src *Buffer, srcOffset, size uint64) error {
	return cl.native.CopyBuffer(dst.native, dstOffset, src.native, srcOffset, size)
}

// CopyBufferToTexture uploads src into dst's mip level, via a staging
// buffer copy (spec.md §4.2).
func (cl *CommandList) CopyBufferToTexture(dst *Texture, mip uint32, src *Buffer, srcOffset uint64) error {
	cl.transitionTexture(dst, stateCopyDst)
	return cl.native.CopyBufferToTexture(dst.native, mip, src.native, srcOffset)
}

// TextureWriteBarrier emits an explicit write-after-write barrier, required
// before a second dispatch writes a storage texture another dispatch wrote
// earlier in the same command list (spec.md §4.3).
func (cl *CommandList) TextureWriteBarrier(tex *Texture) error {
	return cl.native.TransitionTexture(tex.native, false)
}

// BufferWriteBarrier emits the buffer-side counterpart of
// TextureWriteBarrier, required before a second dispatch reads or writes a
// storage buffer another dispatch wrote earlier in the same command list.
func (cl *CommandList) BufferWriteBarrier(buf *Buffer) error {
	return cl.native.TransitionBuffer(buf.native)
}

func (cl *CommandList) transitionTexture(tex *Texture, to resourceState) {
	if cl.textureStates[tex.native] == to {
		return
	}
	cl.textureStates[tex.native] = to
	_ = cl.native.TransitionTexture(tex.native, to == stateRenderTarget)
}

func (cl *CommandList) transitionTextureView(v hal.TextureView, to resourceState) {
	// View-level state is tracked on the parent texture; backends resolve
	// the native subresource from the view on their own.
	_ = v
}

// Close finalizes recording. Called by the frame scheduler, never by
// application code.
func (cl *CommandList) Close() error { return cl.native.Close() }
