package hal

// The resource interfaces below are opaque handles into a backend's native
// object model. Each concrete backend (vulkan, d3d12) defines its own type
// satisfying the interface; nothing outside that backend package may type
// assert on it. They exist so hal.Device's factory methods, and the
// descriptor structs that reference other resources (e.g.
// ShaderBindingDescriptor.Texture), can be expressed without either package
// importing the other.
type (
	Buffer             interface{ isBuffer() }
	Texture            interface{ isTexture() }
	TextureView        interface{ isTextureView() }
	Sampler            interface{ isSampler() }
	RenderTarget       interface{ isRenderTarget() }
	BindingSet         interface{ isBindingSet() }
	ShaderModule       interface{ isShaderModule() }
	RenderState        interface{ isRenderState() }
	ComputeState       interface{ isComputeState() }
	RayTracingState    interface{ isRayTracingState() }
	BottomLevelAS      interface{ isBottomLevelAS() }
	TopLevelAS         interface{ isTopLevelAS() }
	DescriptorHeap     interface{ isDescriptorHeap() }
	Fence              interface{ isFence() }
	CommandAllocator   interface{ isCommandAllocator() }
	SwapchainImage     interface{ isSwapchainImage() }
)

// MultisampleQuerier is implemented by every backend's TextureView so the
// facade layer (arkose.validateAttachments) can check the RenderTarget
// multisample/resolve-texture pairing invariant once, without duplicating
// it in each backend's CreateRenderTarget.
type MultisampleQuerier interface {
	MultisampleN() uint32
}

// The Base types below exist purely so a concrete backend's resource type
// can embed one and pick up the corresponding marker method. Unexported
// interface methods are scoped to the package that declares them, so a
// method a backend package writes itself (e.g. its own isBuffer()) never
// satisfies hal.Buffer; embedding hal.BufferBase promotes a method that is
// still recognized as declared here, which is what actually lets vulkan
// and d3d12 implement these interfaces from outside this package.
type (
	BufferBase           struct{}
	TextureBase          struct{}
	TextureViewBase      struct{}
	SamplerBase          struct{}
	RenderTargetBase     struct{}
	BindingSetBase       struct{}
	ShaderModuleBase     struct{}
	RenderStateBase      struct{}
	ComputeStateBase     struct{}
	RayTracingStateBase  struct{}
	BottomLevelASBase    struct{}
	TopLevelASBase       struct{}
	DescriptorHeapBase   struct{}
	FenceBase            struct{}
	CommandAllocatorBase struct{}
	SwapchainImageBase   struct{}
)

func (BufferBase) isBuffer()                     {}
func (TextureBase) isTexture()                   {}
func (TextureViewBase) isTextureView()           {}
func (SamplerBase) isSampler()                   {}
func (RenderTargetBase) isRenderTarget()         {}
func (BindingSetBase) isBindingSet()             {}
func (ShaderModuleBase) isShaderModule()         {}
func (RenderStateBase) isRenderState()           {}
func (ComputeStateBase) isComputeState()         {}
func (RayTracingStateBase) isRayTracingState()   {}
func (BottomLevelASBase) isBottomLevelAS()       {}
func (TopLevelASBase) isTopLevelAS()             {}
func (DescriptorHeapBase) isDescriptorHeap()     {}
func (FenceBase) isFence()                       {}
func (CommandAllocatorBase) isCommandAllocator() {}
func (SwapchainImageBase) isSwapchainImage()     {}
