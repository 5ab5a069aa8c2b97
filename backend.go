package render

import (
	"fmt"
	"sync"

	"github.com/arkose-engine/render/core"
	"github.com/arkose-engine/render/hal"
	"github.com/arkose-engine/render/shaderreflect"
	"github.com/arkose-engine/render/types"
)

// AppSpec configures Backend creation: which backend to target, and which
// capabilities are required (fatal if unsupported) versus merely requested
// (enabled opportunistically), spec.md §4.1.
type AppSpec struct {
	Name                 string
	PreferredBackend     types.Backend
	RequiredCapabilities []types.Capability
	RequestedCapabilities []types.Capability
	EnableValidation     bool
	SwapchainWidth       uint32
	SwapchainHeight      uint32
	SwapchainBufferCount uint32 // defaults to 3 when 0
}

// PipelineChangeListener is notified when the Backend rebuilds the active
// RenderPipeline (spec.md §4.1's renderPipelineDidChange) or when a shader
// recompile forces a pipeline-state rebuild (shadersDidRecompile).
type PipelineChangeListener interface {
	RenderPipelineDidChange()
	ShadersDidRecompile()
}

// Backend is the process-wide singleton gateway to one selected adapter: it
// owns the device, the resource registries, capability negotiation, and the
// frame-execution driver (spec.md §4.1). Application code never talks to
// package hal directly; it goes through a Backend.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	info     hal.AdapterInfo
	enabled  map[types.Capability]bool

	buffers          *core.Registry[*bufferSlot, core.BufferMarker]
	textures         *core.Registry[*textureSlot, core.TextureMarker]
	samplers         *core.Registry[*samplerSlot, core.SamplerMarker]
	renderTargets    *core.Registry[*renderTargetSlot, core.RenderTargetMarker]
	bindingSets      *core.Registry[*bindingSetSlot, core.BindingSetMarker]
	renderStates     *core.Registry[*renderStateSlot, core.RenderStateMarker]
	computeStates    *core.Registry[*computeStateSlot, core.ComputeStateMarker]
	rtStates         *core.Registry[*rtStateSlot, core.RayTracingStateMarker]
	blas             *core.Registry[*blasSlot, core.BottomLevelASMarker]
	tlas             *core.Registry[*tlasSlot, core.TopLevelASMarker]

	listeners []PipelineChangeListener
}

type bufferSlot = Buffer
type textureSlot = Texture
type samplerSlot = Sampler
type renderTargetSlot = RenderTarget
type bindingSetSlot = BindingSet
type renderStateSlot = RenderState
type computeStateSlot = ComputeState
type rtStateSlot = RayTracingState
type blasSlot = BottomLevelAS
type tlasSlot = TopLevelAS

var mandatoryCapabilities = []types.Capability{} // none unconditionally required by the core itself

// Create selects an adapter for appSpec.PreferredBackend, preferring a
// discrete adapter, validates every required capability is supported
// (emitting a fatal *core.ConstructionError otherwise per spec.md §4.1),
// and enables every supported requested capability opportunistically.
func Create(appSpec AppSpec) (*Backend, error) {
	if appSpec.SwapchainBufferCount == 0 {
		appSpec.SwapchainBufferCount = 3
	}

	instance, err := hal.CreateInstance(appSpec.PreferredBackend, hal.InstanceDescriptor{
		AppName:               appSpec.Name,
		EnableValidation:      appSpec.EnableValidation,
		RequiredCapabilities:  appSpec.RequiredCapabilities,
		RequestedCapabilities: appSpec.RequestedCapabilities,
	})
	if err != nil {
		return nil, err
	}

	adapters, err := instance.EnumerateAdapters()
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, core.NewConstructionError("Backend", "adapter", "no adapters available for backend %s", appSpec.PreferredBackend)
	}

	best := pickHighPerformanceAdapter(adapters)

	for _, cap := range appSpec.RequiredCapabilities {
		if !hasCapability(adapters[best].SupportedCapabilities, cap) {
			instance.Destroy()
			return nil, core.NewConstructionError("Backend", "requiredCapability", "capability %s is not supported by adapter %q", cap, adapters[best].Name)
		}
	}

	enabled := append([]types.Capability{}, appSpec.RequiredCapabilities...)
	for _, cap := range appSpec.RequestedCapabilities {
		if hasCapability(adapters[best].SupportedCapabilities, cap) && !hasCapability(enabled, cap) {
			enabled = append(enabled, cap)
		}
	}

	device, err := instance.CreateDevice(best, enabled)
	if err != nil {
		instance.Destroy()
		return nil, err
	}

	enabledSet := make(map[types.Capability]bool, len(enabled))
	for _, c := range enabled {
		enabledSet[c] = true
	}

	b := &Backend{
		instance:      instance,
		device:        device,
		info:          adapters[best],
		enabled:       enabledSet,
		buffers:       core.NewRegistry[*bufferSlot, core.BufferMarker](),
		textures:      core.NewRegistry[*textureSlot, core.TextureMarker](),
		samplers:      core.NewRegistry[*samplerSlot, core.SamplerMarker](),
		renderTargets: core.NewRegistry[*renderTargetSlot, core.RenderTargetMarker](),
		bindingSets:   core.NewRegistry[*bindingSetSlot, core.BindingSetMarker](),
		renderStates:  core.NewRegistry[*renderStateSlot, core.RenderStateMarker](),
		computeStates: core.NewRegistry[*computeStateSlot, core.ComputeStateMarker](),
		rtStates:      core.NewRegistry[*rtStateSlot, core.RayTracingStateMarker](),
		blas:          core.NewRegistry[*blasSlot, core.BottomLevelASMarker](),
		tlas:          core.NewRegistry[*tlasSlot, core.TopLevelASMarker](),
	}

	core.Log().Info("backend created", "backend", appSpec.PreferredBackend, "adapter", adapters[best].Name, "enabledCapabilities", enabled)
	return b, nil
}

func pickHighPerformanceAdapter(adapters []hal.AdapterInfo) int {
	for i, a := range adapters {
		if a.IsDiscrete {
			return i
		}
	}
	return 0
}

func hasCapability(caps []types.Capability, want types.Capability) bool {
	for _, c := range caps {
		if c == want {
			return true
		}
	}
	return false
}

// HasCapability reports whether cap was enabled at Create time.
func (b *Backend) HasCapability(cap types.Capability) bool { return b.enabled[cap] }

// Info returns the selected adapter's reported capabilities and name.
func (b *Backend) Info() hal.AdapterInfo { return b.info }

// Device exposes the underlying hal.Device for packages inside this module
// (registry, frame, descriptor, upload) that must reach past the facade.
// Application code should not need it.
func (b *Backend) Device() hal.Device { return b.device }

// AddPipelineChangeListener registers l to be notified of future
// renderPipelineDidChange/shadersDidRecompile events.
func (b *Backend) AddPipelineChangeListener(l PipelineChangeListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

func (b *Backend) notifyPipelineChanged() {
	b.mu.Lock()
	ls := append([]PipelineChangeListener{}, b.listeners...)
	b.mu.Unlock()
	for _, l := range ls {
		l.RenderPipelineDidChange()
	}
}

func (b *Backend) notifyShadersRecompiled() {
	b.mu.Lock()
	ls := append([]PipelineChangeListener{}, b.listeners...)
	b.mu.Unlock()
	for _, l := range ls {
		l.ShadersDidRecompile()
	}
}

// CompletePendingOperations forces a device-idle wait across every frame
// context's fence, per spec.md §4.1. Registry.Destroy calls this before
// dropping any owned resource, so nothing is freed while the GPU may still
// be reading it.
func (b *Backend) CompletePendingOperations() error {
	return b.device.CompletePendingOperations()
}

// CreateBuffer allocates a Buffer through the active device, per spec.md
// §4.2's heap-mapping rules (applied inside the concrete backend): Upload
// usage maps to a CPU-writable heap, Readback to a CPU-readable heap,
// everything else to device-local memory; ConstantBuffer sizes are rounded
// up to 256-byte alignment by the backend before native creation.
func (b *Backend) CreateBuffer(desc hal.BufferDescriptor) (*Buffer, error) {
	if desc.Usage.Has(types.BufferUsageConstant) {
		desc.Size = roundUp256(desc.Size)
	}
	native, err := b.device.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("CreateBuffer %q: %w", desc.Label, err)
	}
	buf := &Buffer{resource: resource{backend: b, name: desc.Label}, native: native, desc: desc}
	buf.handle = b.buffers.Register(buf)
	return buf, nil
}

func roundUp256(size uint64) uint64 {
	const align = 256
	return (size + align - 1) &^ (align - 1)
}

// CreateTexture allocates a Texture, setting the storage-capable native
// flag when its format supports storage and it is not multisampled. No
// render-target or depth-stencil flag is derived.
func (b *Backend) CreateTexture(desc hal.TextureDescriptor) (*Texture, error) {
	desc.StorageCapable = desc.Format.StorageCapable() && desc.MultisampleN <= 1
	native, err := b.device.CreateTexture(desc)
	if err != nil {
		return nil, fmt.Errorf("CreateTexture %q: %w", desc.Label, err)
	}
	tex := &Texture{resource: resource{backend: b, name: desc.Label}, native: native, desc: desc}
	tex.handle = b.textures.Register(tex)
	return tex, nil
}

// CreateSampler allocates a Sampler.
func (b *Backend) CreateSampler(desc hal.SamplerDescriptor) (*Sampler, error) {
	native, err := b.device.CreateSampler(desc)
	if err != nil {
		return nil, err
	}
	s := &Sampler{resource: resource{backend: b}, native: native}
	s.handle = b.samplers.Register(s)
	return s, nil
}

// CreateRenderTarget allocates a RenderTarget from the given attachments.
// A multisampled color attachment must carry a MultisampleResolveTexture.
// Attachment pixel dimensions are not compared, here or in any backend.
func (b *Backend) CreateRenderTarget(desc hal.RenderTargetDescriptor) (*RenderTarget, error) {
	if err := validateAttachments(desc.Attachments); err != nil {
		return nil, err
	}
	native, err := b.device.CreateRenderTarget(desc)
	if err != nil {
		return nil, fmt.Errorf("CreateRenderTarget %q: %w", desc.Label, err)
	}
	rt := &RenderTarget{resource: resource{backend: b, name: desc.Label}, native: native, attachments: desc.Attachments}
	rt.handle = b.renderTargets.Register(rt)
	return rt, nil
}

// validateAttachments enforces spec.md §3's RenderTarget invariants: no slot
// repeated, color slots densely packed from Color0 with no gaps (property
// 3), and a multisampled attachment paired with a resolve texture in both
// directions, the same check src/backend/base/RenderTarget.cpp's
// constructor runs before accepting an attachment list. Cross-attachment
// extent agreement is not checked, here or by any hal.Device's
// CreateRenderTarget; the multisample count is available here because every
// backend's TextureView satisfies hal.MultisampleQuerier.
func validateAttachments(atts []hal.Attachment) error {
	seen := map[types.AttachmentType]bool{}
	colorCount := 0
	for _, a := range atts {
		if seen[a.Type] {
			return core.NewConstructionError("RenderTarget", "attachments", "duplicate attachment slot %v", a.Type)
		}
		seen[a.Type] = true
		if a.Type.IsColor() {
			colorCount++
		}
		if err := validateMultisamplePairing(a); err != nil {
			return err
		}
	}
	for i := 0; i < colorCount; i++ {
		if !seen[types.AttachmentType(i)] {
			return core.NewConstructionError("RenderTarget", "attachments", "color attachments must be densely packed from Color0, missing Color%d", i)
		}
	}
	return nil
}

// validateMultisamplePairing checks that a multisampled attachment carries
// a MultisampleResolveTexture and a non-multisampled one does not, in
// either direction. A backend whose TextureView does not implement
// hal.MultisampleQuerier is skipped rather than rejected, since the
// invariant is then simply unverifiable at this layer.
func validateMultisamplePairing(a hal.Attachment) error {
	q, ok := a.Texture.(hal.MultisampleQuerier)
	if !ok {
		return nil
	}
	multisampled := q.MultisampleN() > 1
	hasResolve := a.MultisampleResolveTexture != nil
	switch {
	case multisampled && !hasResolve:
		return core.NewConstructionError("RenderTarget", "attachments", "%v is multisampled (%dx) but has no MultisampleResolveTexture", a.Type, q.MultisampleN())
	case !multisampled && hasResolve:
		return core.NewConstructionError("RenderTarget", "attachments", "%v is not multisampled but carries a MultisampleResolveTexture", a.Type)
	}
	return nil
}

// CreateBindingSet allocates a BindingSet from the given bindings. Per
// spec.md §3's BindingSet invariant, the bindings must be either all
// implicit (assigned 0..N-1 in declaration order) or all explicit and
// unique; a mix or a duplicate explicit index is a fatal construction
// error (spec.md §4.10).
func (b *Backend) CreateBindingSet(desc hal.BindingSetDescriptor) (*BindingSet, error) {
	resolved, err := resolveBindingIndices(desc.Bindings)
	if err != nil {
		return nil, err
	}
	desc.Bindings = resolved
	native, err := b.device.CreateBindingSet(desc)
	if err != nil {
		return nil, fmt.Errorf("CreateBindingSet %q: %w", desc.Label, err)
	}
	bs := &BindingSet{resource: resource{backend: b, name: desc.Label}, native: native, bindings: desc.Bindings}
	bs.handle = b.bindingSets.Register(bs)
	return bs, nil
}

func resolveBindingIndices(bindings []hal.ShaderBindingDescriptor) ([]hal.ShaderBindingDescriptor, error) {
	allImplicit, allExplicit := true, true
	for _, bd := range bindings {
		if bd.BindingIndex < 0 {
			allExplicit = false
		} else {
			allImplicit = false
		}
	}
	out := make([]hal.ShaderBindingDescriptor, len(bindings))
	copy(out, bindings)
	if !allImplicit && !allExplicit {
		return nil, core.NewConstructionError("BindingSet", "bindingIndex", "bindings must be either all implicit (-1) or all explicit, not mixed")
	}
	if allImplicit {
		for i := range out {
			out[i].BindingIndex = int32(i)
		}
		return out, nil
	}
	seen := make(map[int32]bool, len(out))
	for _, bd := range out {
		if seen[bd.BindingIndex] {
			return nil, core.NewConstructionError("BindingSet", "bindingIndex", "duplicate binding index %d", bd.BindingIndex)
		}
		seen[bd.BindingIndex] = true
	}
	return out, nil
}

// CreateShaderModule hands a precompiled backend-native shader blob (SPIR-V
// for Vulkan, DXIL for D3D12) plus its reflected named-constant table to the
// device, spec.md §6. Unlike the other Create* factories this does not
// allocate a tracked Handle: a ShaderModule has no independent lifetime, it
// is only ever held by the RenderState/ComputeState/RayTracingState that
// references it.
func (b *Backend) CreateShaderModule(desc hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	mod, err := b.device.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("CreateShaderModule %q: %w", desc.Label, err)
	}
	return mod, nil
}

// CreateShaderModuleFromWGSL compiles wgsl through shaderreflect (naga parse
// + lower + SPIR-V compile, plus a reflected named-uniform offset table for
// constantBufferName) and hands the result to CreateShaderModule. This is
// the Vulkan-path convenience entry point: hal/d3d12.Device.CreateShaderModule
// expects a pre-compiled DXIL blob in desc.Blob, not WGSL source, so a D3D12
// build's shader pipeline needs a separate WGSL->HLSL->DXIL step this
// package does not provide.
func (b *Backend) CreateShaderModuleFromWGSL(label, wgsl, constantBufferName string, stage types.ShaderStage) (hal.ShaderModule, error) {
	reflected, err := shaderreflect.Compile(wgsl, constantBufferName)
	if err != nil {
		return nil, fmt.Errorf("CreateShaderModuleFromWGSL %q: %w", label, err)
	}
	return b.CreateShaderModule(hal.ShaderModuleDescriptor{
		Label:  label,
		Blob:   reflected.SPIRV,
		Stage:  stage,
		Offset: reflected.Table,
	})
}

// CreateRenderState compiles a graphics pipeline.
func (b *Backend) CreateRenderState(desc hal.RenderStateDescriptor) (*RenderState, error) {
	native, err := b.device.CreateRenderState(desc)
	if err != nil {
		return nil, fmt.Errorf("CreateRenderState %q: %w", desc.Label, err)
	}
	rs := &RenderState{resource: resource{backend: b, name: desc.Label}, native: native}
	rs.handle = b.renderStates.Register(rs)
	return rs, nil
}

// CreateComputeState compiles a compute pipeline.
func (b *Backend) CreateComputeState(desc hal.ComputeStateDescriptor) (*ComputeState, error) {
	native, err := b.device.CreateComputeState(desc)
	if err != nil {
		return nil, fmt.Errorf("CreateComputeState %q: %w", desc.Label, err)
	}
	cs := &ComputeState{resource: resource{backend: b, name: desc.Label}, native: native}
	cs.handle = b.computeStates.Register(cs)
	return cs, nil
}

// CreateRayTracingState compiles a ray tracing pipeline. Returns a
// *core.FeatureError if types.CapabilityRayTracing was not enabled at
// Create time.
func (b *Backend) CreateRayTracingState(desc hal.RayTracingStateDescriptor) (*RayTracingState, error) {
	if !b.HasCapability(types.CapabilityRayTracing) {
		return nil, &core.FeatureError{Capability: types.CapabilityRayTracing.String(), Resource: "RayTracingState"}
	}
	native, err := b.device.CreateRayTracingState(desc)
	if err != nil {
		return nil, fmt.Errorf("CreateRayTracingState %q: %w", desc.Label, err)
	}
	rts := &RayTracingState{resource: resource{backend: b, name: desc.Label}, native: native}
	rts.handle = b.rtStates.Register(rts)
	return rts, nil
}

// CreateBottomLevelAS builds a BLAS over geometry. Returns a
// *core.FeatureError if ray tracing was not enabled.
func (b *Backend) CreateBottomLevelAS(geometry []hal.RTGeometry) (*BottomLevelAS, error) {
	if !b.HasCapability(types.CapabilityRayTracing) {
		return nil, &core.FeatureError{Capability: types.CapabilityRayTracing.String(), Resource: "BottomLevelAS"}
	}
	native, err := b.device.CreateBottomLevelAS(geometry)
	if err != nil {
		return nil, err
	}
	blas := &BottomLevelAS{resource: resource{backend: b}, native: native}
	blas.handle = b.blas.Register(blas)
	return blas, nil
}

// CreateTopLevelAS instances a set of BottomLevelAS into a TLAS. Returns a
// *core.FeatureError if ray tracing was not enabled.
func (b *Backend) CreateTopLevelAS(instances []hal.RTGeometryInstance) (*TopLevelAS, error) {
	if !b.HasCapability(types.CapabilityRayTracing) {
		return nil, &core.FeatureError{Capability: types.CapabilityRayTracing.String(), Resource: "TopLevelAS"}
	}
	native, err := b.device.CreateTopLevelAS(instances)
	if err != nil {
		return nil, err
	}
	tlas := &TopLevelAS{resource: resource{backend: b}, native: native}
	tlas.handle = b.tlas.Register(tlas)
	return tlas, nil
}
