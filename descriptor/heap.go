package descriptor

import (
	"sync"

	render "github.com/arkose-engine/render"
	"github.com/arkose-engine/render/hal"
)

// Heap pairs a hal.DescriptorHeap with the Allocator that sub-allocates
// runs out of it, guarded by a mutex since binding-set construction can
// happen from multiple pipeline nodes concurrently during construct.
type Heap struct {
	mu        sync.Mutex
	native    hal.DescriptorHeap
	allocator *Allocator
	kind      hal.DescriptorHeapKind
}

// NewShaderVisibleHeap creates the CBV/SRV/UAV heap bound to the command
// list for the whole frame, sized at DefaultShaderVisibleCapacity.
func NewShaderVisibleHeap(backend *render.Backend) (*Heap, error) {
	return newHeap(backend, hal.DescriptorHeapShaderVisible, DefaultShaderVisibleCapacity)
}

// NewSamplerHeap creates the sampler heap, sized at DefaultSamplerCapacity.
func NewSamplerHeap(backend *render.Backend) (*Heap, error) {
	return newHeap(backend, hal.DescriptorHeapSampler, DefaultSamplerCapacity)
}

// NewCopyableHeap creates a CPU-only staging heap descriptors are written
// into before being copied into the shader-visible heap at bind time.
func NewCopyableHeap(backend *render.Backend, capacity uint32) (*Heap, error) {
	return newHeap(backend, hal.DescriptorHeapCPU, capacity)
}

func newHeap(backend *render.Backend, kind hal.DescriptorHeapKind, capacity uint32) (*Heap, error) {
	native, err := backend.Device().CreateDescriptorHeap(kind, capacity)
	if err != nil {
		return nil, err
	}
	gpuBase := uint32(0)
	if kind == hal.DescriptorHeapShaderVisible || kind == hal.DescriptorHeapSampler {
		gpuBase = 1 // concrete backends resolve the real GPU virtual address; this marks "shader-visible"
	}
	return &Heap{native: native, allocator: New(capacity, 1, gpuBase), kind: kind}, nil
}

// Allocate reserves count contiguous descriptors.
func (h *Heap) Allocate(count uint32) (Allocation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocator.Allocate(count)
}

// Free releases alloc.
func (h *Heap) Free(alloc Allocation) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.allocator.Free(alloc)
}

// Native returns the backend descriptor heap this Heap sub-allocates from,
// for binding onto a command list at the start of a frame.
func (h *Heap) Native() hal.DescriptorHeap { return h.native }

// Kind reports which of the three heap spaces this is.
func (h *Heap) Kind() hal.DescriptorHeapKind { return h.kind }
