package hal

import (
	"context"

	"github.com/arkose-engine/render/types"
)

// InstanceDescriptor configures Backend creation, mirroring spec.md §4.1's
// AppSpec: which capabilities the application requires vs. merely requests,
// and whether validation/debug layers should be enabled.
type InstanceDescriptor struct {
	AppName             string
	EnableValidation    bool
	RequiredCapabilities []types.Capability
	RequestedCapabilities []types.Capability
}

// AdapterInfo reports what a physical device supports, so the caller can
// pick one and know which capabilities actually ended up enabled.
type AdapterInfo struct {
	Name               string
	IsDiscrete         bool
	SupportedCapabilities []types.Capability
}

// Instance is the entry point a concrete backend exposes before a Device
// has been created. Vulkan implements this over VkInstance/VkPhysicalDevice
// enumeration; D3D12 over IDXGIFactory/IDXGIAdapter enumeration.
type Instance interface {
	Backend() types.Backend
	EnumerateAdapters() ([]AdapterInfo, error)
	CreateDevice(adapterIndex int, enabled []types.Capability) (Device, error)
	Destroy()
}

// CreateInstance constructs an Instance for the named backend. Concrete
// backend packages register themselves via RegisterBackend at init time;
// this indirection keeps hal free of any import on vulkan/d3d12, which in
// turn keeps a platform build from pulling in the other platform's cgo-free
// FFI bindings.
func CreateInstance(backend types.Backend, desc InstanceDescriptor) (Instance, error) {
	ctor, ok := registeredBackends[backend]
	if !ok {
		return nil, NewUnsupportedBackendError(backend)
	}
	return ctor(desc)
}

type instanceConstructor func(InstanceDescriptor) (Instance, error)

var registeredBackends = map[types.Backend]instanceConstructor{}

// RegisterBackend is called from a concrete backend package's init() to
// make itself available to CreateInstance. Not safe to call concurrently
// with CreateInstance; registration happens during package init only.
func RegisterBackend(backend types.Backend, ctor func(InstanceDescriptor) (Instance, error)) {
	registeredBackends[backend] = ctor
}

// AvailableBackends reports which backends have registered themselves in
// this build (governed by the importing binary's build tags).
func AvailableBackends() []types.Backend {
	out := make([]types.Backend, 0, len(registeredBackends))
	for b := range registeredBackends {
		out = append(out, b)
	}
	return out
}

// Queue submits recorded command buffers and orders GPU/CPU synchronization
// around them.
type Queue interface {
	Submit(lists []CommandEncoder, signal Fence, signalValue uint64) error
	Wait(fence Fence, value uint64, timeout context.Context) error
	Present(image SwapchainImage) error
}

// Device is the factory for every GPU resource kind spec.md §3 names, plus
// the frame-lifecycle primitives (fences, command allocators, descriptor
// heaps, swapchain) spec.md §4.6 needs. One Device corresponds to one
// physical adapter selected at startup; Arkose does not support switching
// adapters at runtime.
type Device interface {
	Backend() types.Backend
	Info() AdapterInfo
	Queue() Queue

	CreateBuffer(BufferDescriptor) (Buffer, error)
	CreateTexture(TextureDescriptor) (Texture, error)
	CreateTextureView(tex Texture, baseMip, mipCount uint32) (TextureView, error)
	CreateSampler(SamplerDescriptor) (Sampler, error)
	CreateRenderTarget(RenderTargetDescriptor) (RenderTarget, error)
	CreateBindingSet(BindingSetDescriptor) (BindingSet, error)
	CreateShaderModule(ShaderModuleDescriptor) (ShaderModule, error)
	CreateRenderState(RenderStateDescriptor) (RenderState, error)
	CreateComputeState(ComputeStateDescriptor) (ComputeState, error)
	CreateRayTracingState(RayTracingStateDescriptor) (RayTracingState, error)
	CreateBottomLevelAS(geometry []RTGeometry) (BottomLevelAS, error)
	CreateTopLevelAS(instances []RTGeometryInstance) (TopLevelAS, error)

	// WriteBuffer copies data into buf at offset. Used for Upload-heap
	// buffers mapped directly (spec.md §4.2: "ConstantBuffer updates may
	// map directly") and as the staging-copy destination for device-local
	// buffer writes recorded through a CommandEncoder.
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	// ReadBuffer blocks until size bytes starting at offset are read back
	// from buf, spec.md §4.3's "blocking readback of a buffer to a host
	// pointer (slow path)".
	ReadBuffer(buf Buffer, offset, size uint64) ([]byte, error)
	// ResizeBuffer implements Buffer.reallocateWithSize: it allocates a new
	// buffer of newSize and, per strategy, either copies the old contents
	// forward (ReallocCopy) or leaves the new buffer uninitialized
	// (ReallocDiscard).
	ResizeBuffer(buf Buffer, oldSize, newSize uint64, strategy types.ReallocStrategy) (Buffer, error)

	// WriteTexture uploads data into one mip/array slice of tex via a
	// staging buffer and copy command, spec.md §4.2.
	WriteTexture(tex Texture, mip, arrayIdx uint32, data []byte) error
	// ClearTexture fills every texel of tex's given mip level with color.
	ClearTexture(tex Texture, mip uint32, color [4]float32) error
	// GenerateMipmaps fills mip levels 1..N-1 from mip 0, spec.md §4.3
	// ("compute-shader blits for non-equal extents"). A no-op, logged at
	// Debug, if tex was not created with a MipmapMode other than None.
	GenerateMipmaps(tex Texture) error

	CreateFence(initialValue uint64) (Fence, error)
	CreateCommandAllocator() (CommandAllocator, error)
	CreateCommandEncoder(CommandAllocator) (CommandEncoder, error)

	CreateDescriptorHeap(kind DescriptorHeapKind, capacity uint32) (DescriptorHeap, error)

	CreateSwapchain(SwapchainDescriptor) (Swapchain, error)

	// CompletePendingOperations blocks until every submitted command list
	// has retired. Called before Registry teardown so owned resources may
	// be safely dropped without the GPU still reading them (spec.md §3).
	CompletePendingOperations() error

	Destroy()
}

// DescriptorHeapKind selects which of the three heap spaces spec.md §4.7
// describes a CreateDescriptorHeap call targets.
type DescriptorHeapKind int

const (
	DescriptorHeapCPU DescriptorHeapKind = iota
	DescriptorHeapShaderVisible
	DescriptorHeapSampler
)

// SwapchainDescriptor configures presentation surface creation/recreation.
type SwapchainDescriptor struct {
	Width, Height uint32
	BufferCount   uint32
	Format        types.TextureFormat
}

// Swapchain owns the presentable back buffers and the logic to acquire and
// present them, per spec.md §4.6.
type Swapchain interface {
	AcquireNextImage() (SwapchainImage, uint32, error)
	BackBufferTexture(index uint32) Texture
	Resize(width, height uint32) error
	Destroy()
}

// CommandEncoder is the backend-native recording surface that the root
// arkose.CommandList wraps with spec.md §4.3's higher-level, state-tracked
// API (bound RenderState validation, named-uniform writes, etc). A single
// CommandEncoder records one command buffer between Begin and End/Close.
type CommandEncoder interface {
	Reset(CommandAllocator) error
	Close() error

	BeginRenderPass(RenderTarget) error
	EndRenderPass() error

	SetRenderState(RenderState) error
	SetComputeState(ComputeState) error
	SetRayTracingState(RayTracingState) error
	BindSet(index uint32, set BindingSet) error
	WriteNamedConstant(name string, data []byte) error

	SetVertexBuffer(slot uint32, buf Buffer, offset uint64) error
	SetIndexBuffer(buf Buffer, offset uint64, indexType types.IndexType) error
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) error
	DrawIndirect(argsBuffer Buffer, argsOffset uint64, countBuffer Buffer, countOffset uint64, maxCount uint32) error
	DrawIndexedIndirect(argsBuffer Buffer, argsOffset uint64, countBuffer Buffer, countOffset uint64, maxCount uint32) error

	Dispatch(groupsX, groupsY, groupsZ uint32) error
	DispatchRays(width, height, depth uint32) error
	DispatchMesh(groupsX, groupsY, groupsZ uint32) error
	DispatchMeshIndirect(argsBuffer Buffer, argsOffset uint64) error

	CopyBuffer(dst Buffer, dstOffset uint64, src Buffer, srcOffset, size uint64) error
	CopyBufferToTexture(dst Texture, mip uint32, src Buffer, srcOffset uint64) error

	TransitionTexture(tex Texture, toAttachment bool) error
	TransitionBuffer(buf Buffer) error
}
