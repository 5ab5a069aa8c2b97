package render

import (
	"github.com/arkose-engine/render/core"
	"github.com/arkose-engine/render/hal"
)

// RenderTarget groups color/depth/stencil attachments for a render pass,
// spec.md §3. A multisampled color attachment must carry a matching resolve
// target; attachment pixel dimensions are not checked for agreement.
type RenderTarget struct {
	resource
	handle      core.RenderTargetHandle
	native      hal.RenderTarget
	attachments []hal.Attachment
}

// Handle returns the opaque handle identifying this render target.
func (rt *RenderTarget) Handle() core.RenderTargetHandle { return rt.handle }

// Attachments returns the attachment list given at creation, in slot order.
func (rt *RenderTarget) Attachments() []hal.Attachment { return rt.attachments }

// BindingSet is a descriptor-table-backed group of shader resource bindings
// (buffers, textures, acceleration structures), spec.md §3.
type BindingSet struct {
	resource
	handle   core.BindingSetHandle
	native   hal.BindingSet
	bindings []hal.ShaderBindingDescriptor
}

// Handle returns the opaque handle identifying this binding set.
func (bs *BindingSet) Handle() core.BindingSetHandle { return bs.handle }

// StateBindings is a sparse index->BindingSet map attached to a
// RenderState/ComputeState/RayTracingState at creation, spec.md §3. Index 0
// is reserved for the per-draw named-uniform constant buffer.
type StateBindings map[uint32]*BindingSet

func (sb StateBindings) toHAL() hal.StateBindings {
	out := make(hal.StateBindings, len(sb))
	for idx, set := range sb {
		if set != nil {
			out[idx] = set.native
		}
	}
	return out
}

// RenderState is a compiled graphics pipeline (shader + fixed-function
// state + vertex layout + bindings + target), spec.md §3.
type RenderState struct {
	resource
	handle core.RenderStateHandle
	native hal.RenderState
}

// Handle returns the opaque handle identifying this render state.
func (rs *RenderState) Handle() core.RenderStateHandle { return rs.handle }

// ComputeState is a compiled compute pipeline, spec.md §3.
type ComputeState struct {
	resource
	handle core.ComputeStateHandle
	native hal.ComputeState
}

// Handle returns the opaque handle identifying this compute state.
func (cs *ComputeState) Handle() core.ComputeStateHandle { return cs.handle }

// ShaderBindingTable names the ray generation, hit group, and miss shaders
// a RayTracingState dispatches between, spec.md §3.
type ShaderBindingTable = hal.ShaderBindingTable

// RayTracingState is a compiled ray tracing pipeline, spec.md §3.
type RayTracingState struct {
	resource
	handle core.RayTracingStateHandle
	native hal.RayTracingState
}

// Handle returns the opaque handle identifying this ray tracing state.
func (rts *RayTracingState) Handle() core.RayTracingStateHandle { return rts.handle }

// BottomLevelAS is a ray tracing acceleration structure built over one
// mesh's geometry, spec.md §3.
type BottomLevelAS struct {
	resource
	handle core.BottomLevelASHandle
	native hal.BottomLevelAS
}

// Handle returns the opaque handle identifying this acceleration structure.
func (b *BottomLevelAS) Handle() core.BottomLevelASHandle { return b.handle }

// TopLevelAS is a ray tracing acceleration structure instancing a set of
// BottomLevelAS with per-instance transforms, spec.md §3.
type TopLevelAS struct {
	resource
	handle core.TopLevelASHandle
	native hal.TopLevelAS
}

// Handle returns the opaque handle identifying this acceleration structure.
func (t *TopLevelAS) Handle() core.TopLevelASHandle { return t.handle }
