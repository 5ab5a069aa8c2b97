// Package hal is the polymorphic seam spec.md §4.1-4.2 describes: a
// backend-neutral set of interfaces that the Vulkan and D3D12 packages
// implement, and that the root arkose package and core/registry/frame
// packages program against. Nothing in this package knows which concrete
// graphics API backs it.
package hal

import "github.com/arkose-engine/render/types"

// BufferDescriptor describes a Buffer to create.
type BufferDescriptor struct {
	Label  string
	Size   uint64
	Usage  types.BufferUsage
	Stride uint32 // only meaningful for Vertex usage
}

// TextureDescriptor describes a Texture to create.
type TextureDescriptor struct {
	Label          string
	Type           types.TextureType
	ArrayCount     uint32
	Extent         types.Extent3D
	Format         types.TextureFormat
	MinFilter      types.FilterMode
	MagFilter      types.FilterMode
	WrapModeU      types.WrapMode
	WrapModeV      types.WrapMode
	WrapModeW      types.WrapMode
	MipmapMode     types.MipmapMode
	MultisampleN   uint32 // 1 == not multisampled
	StorageCapable bool   // derived, but cached on the descriptor for backends
}

// MipLevels returns the mip chain length per spec.md §3: floor(log2(max(w,h)))+1
// when mipmapped, else 1.
func (d TextureDescriptor) MipLevels() uint32 {
	if d.MipmapMode == types.MipmapModeNone {
		return 1
	}
	m := d.Extent.Width
	if d.Extent.Height > m {
		m = d.Extent.Height
	}
	levels := uint32(1)
	for m > 1 {
		m >>= 1
		levels++
	}
	return levels
}

// SamplerDescriptor describes a Sampler to create.
type SamplerDescriptor struct {
	WrapModeU, WrapModeV, WrapModeW types.WrapMode
	MinFilter, MagFilter            types.FilterMode
	MipmapMode                      types.MipmapMode
}

// Attachment describes one slot of a RenderTarget.
type Attachment struct {
	Type                      types.AttachmentType
	Texture                   TextureView
	LoadOp                    types.LoadOp
	StoreOp                   types.StoreOp
	BlendMode                 types.BlendMode
	MultisampleResolveTexture TextureView // nil unless Texture is multisampled
}

// RenderTargetDescriptor describes a RenderTarget to create.
type RenderTargetDescriptor struct {
	Label       string
	Attachments []Attachment
}

// ShaderBindingDescriptor describes one entry of a BindingSet.
type ShaderBindingDescriptor struct {
	BindingIndex int32 // -1 means implicit (assigned by declaration order)
	ArrayCount   uint32
	ShaderStage  types.ShaderStage
	Type         types.BindingType

	Buffer  Buffer      // ConstantBuffer / StorageBuffer
	Texture TextureView // StorageTexture / SampledTexture
	TLAS    TopLevelAS  // RTAccelerationStructure
}

// BindingSetDescriptor describes a BindingSet to create.
type BindingSetDescriptor struct {
	Label    string
	Bindings []ShaderBindingDescriptor
}

// VertexAttribute describes one input of a vertex layout.
type VertexAttribute struct {
	Name   string
	Offset uint32
	Format types.TextureFormat // reuses TextureFormat enum for attribute element typing
}

// VertexLayout describes one vertex buffer's stride and attributes.
type VertexLayout struct {
	Stride     uint32
	Attributes []VertexAttribute
}

// RasterState is the fixed-function rasterizer configuration.
type RasterState struct {
	CullBackFace bool
	Wireframe    bool
}

// DepthState is the fixed-function depth-test configuration.
type DepthState struct {
	TestEnabled  bool
	WriteEnabled bool
}

// StencilState is the fixed-function stencil-test configuration.
type StencilState struct {
	Enabled   bool
	Reference uint32
}

// StateBindings is a sparse, positional mapping from descriptor-set index
// to BindingSet (spec.md §3 "StateBindings"). Index 0 is reserved for the
// named-uniform constant buffer (spec.md §4.3, §9).
type StateBindings map[uint32]BindingSet

// RenderStateDescriptor describes a RenderState (graphics PSO) to create.
type RenderStateDescriptor struct {
	Label         string
	Shader        ShaderModule
	Bindings      StateBindings
	RenderTarget  RenderTarget
	VertexLayouts []VertexLayout
	Raster        RasterState
	Depth         DepthState
	Stencil       StencilState
}

// ComputeStateDescriptor describes a ComputeState (compute PSO) to create.
type ComputeStateDescriptor struct {
	Label    string
	Shader   ShaderModule
	Bindings StateBindings
}

// HitGroup is one entry of a ShaderBindingTable.
type HitGroup struct {
	ClosestHit   ShaderModule
	AnyHit       ShaderModule // optional
	Intersection ShaderModule // optional
}

// ShaderBindingTable describes the ray-tracing shader groups (spec.md §3).
type ShaderBindingTable struct {
	RayGen     ShaderModule
	HitGroups  []HitGroup
	MissShader []ShaderModule
}

// RayTracingStateDescriptor describes a RayTracingState (RT PSO) to create.
type RayTracingStateDescriptor struct {
	Label             string
	Bindings          StateBindings
	Table             ShaderBindingTable
	MaxRecursionDepth uint32
}

// RTGeometryKind selects between triangle meshes and procedural AABBs for a
// bottom-level acceleration structure.
type RTGeometryKind int

const (
	RTGeometryTriangles RTGeometryKind = iota
	RTGeometryAABBs
)

// RTGeometry is one piece of geometry contributing to a BottomLevelAS.
type RTGeometry struct {
	Kind         RTGeometryKind
	VertexBuffer Buffer
	IndexBuffer  Buffer
	AABBBuffer   Buffer
}

// RTGeometryInstance places a BottomLevelAS into a TopLevelAS.
type RTGeometryInstance struct {
	BLAS      BottomLevelAS
	Transform [12]float32 // row-major 3x4
	Mask      uint8
}

// ShaderModuleDescriptor wraps precompiled backend-specific shader bytecode
// (SPIR-V for Vulkan, DXIL for D3D12) plus the reflected name->offset table
// for named-uniform dispatch (spec.md §6, §9).
type ShaderModuleDescriptor struct {
	Label  string
	Blob   []byte
	Stage  types.ShaderStage
	Offset ReflectionTable
}

// ReflectionTable maps a named constant to its byte offset/size within the
// reserved set-0 constant buffer. Produced by feeding the shader blob
// through naga's reflection pass (see shaderreflect package).
type ReflectionTable map[string]NamedConstant

// NamedConstant is one reflected entry of a ReflectionTable.
type NamedConstant struct {
	Offset uint32
	Size   uint32
}
