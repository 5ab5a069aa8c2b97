// Package descriptor implements the sub-allocator backing the three
// descriptor heap spaces spec.md §4.7 describes: a CPU-only "copyable"
// heap, a shader-visible CBV/SRV/UAV heap (~100k descriptors), and a
// sampler heap (~2k descriptors). Each heap is a single large allocation
// that this package carves into contiguous runs on demand.
package descriptor

import (
	"sort"

	"github.com/arkose-engine/render/core"
)

const (
	// DefaultShaderVisibleCapacity is the reference heap size for the
	// shader-visible CBV/SRV/UAV heap, spec.md §4.7.
	DefaultShaderVisibleCapacity = 100_000
	// DefaultSamplerCapacity is the reference heap size for the sampler
	// heap, spec.md §4.7.
	DefaultSamplerCapacity = 2_000
)

type freeRun struct {
	offset, count uint32
}

// Allocation is returned by Allocate: the contiguous descriptor range
// `[FirstCPUDescriptor, FirstCPUDescriptor+Count)` within the CPU-visible
// half of the heap, the matching shader-visible GPU base (for
// shader-visible heaps; zero for CPU-only heaps), and an internal token
// Free needs back.
type Allocation struct {
	FirstCPUDescriptor uint32
	FirstGPUDescriptor uint32
	Count              uint32

	offset uint32 // internal: the free-list key
}

// Allocator is a best-fit, free-list descriptor sub-allocator over one
// fixed-capacity heap. Not safe for concurrent use without an external
// lock; the owning heap wraps it with one.
type Allocator struct {
	capacity      uint32
	descriptorSize uint32
	gpuBase        uint32
	free           []freeRun // sorted by offset, non-overlapping, coalesced
	live           uint32
}

// New creates an Allocator over a heap of capacity descriptors, each
// descriptorSize bytes apart. gpuBase is the shader-visible base offset (0
// for a CPU-only heap).
func New(capacity, descriptorSize, gpuBase uint32) *Allocator {
	return &Allocator{
		capacity:       capacity,
		descriptorSize: descriptorSize,
		gpuBase:        gpuBase,
		free:           []freeRun{{offset: 0, count: capacity}},
	}
}

// Allocate reserves a contiguous run of count descriptors using best-fit:
// the smallest free run that still fits count, to minimize fragmentation
// versus first-fit. Returns a *core.LimitError if no run is large enough.
func (a *Allocator) Allocate(count uint32) (Allocation, error) {
	if count == 0 {
		return Allocation{}, core.NewConstructionError("descriptor.Allocator", "count", "count must be > 0")
	}
	bestIdx := -1
	var bestCount uint32
	for i, run := range a.free {
		if run.count >= count && (bestIdx == -1 || run.count < bestCount) {
			bestIdx = i
			bestCount = run.count
		}
	}
	if bestIdx == -1 {
		return Allocation{}, &core.LimitError{Resource: "descriptor.Allocator", Limit: "freeSpace", Actual: uint64(count), Maximum: uint64(a.largestFreeRun())}
	}

	run := a.free[bestIdx]
	alloc := Allocation{FirstCPUDescriptor: run.offset, Count: count, offset: run.offset}
	if a.gpuBase != 0 {
		alloc.FirstGPUDescriptor = a.gpuBase + run.offset
	}

	if run.count == count {
		a.free = append(a.free[:bestIdx], a.free[bestIdx+1:]...)
	} else {
		a.free[bestIdx] = freeRun{offset: run.offset + count, count: run.count - count}
	}
	a.live += count
	return alloc, nil
}

func (a *Allocator) largestFreeRun() uint32 {
	var max uint32
	for _, r := range a.free {
		if r.count > max {
			max = r.count
		}
	}
	return max
}

// Free releases alloc's range back to the pool and coalesces it with
// adjacent free runs. alloc becomes invalid for further use; any
// descriptor writes into its range become undefined.
func (a *Allocator) Free(alloc Allocation) {
	a.live -= alloc.Count
	a.free = append(a.free, freeRun{offset: alloc.offset, count: alloc.Count})
	sort.Slice(a.free, func(i, j int) bool { return a.free[i].offset < a.free[j].offset })

	merged := a.free[:0]
	for _, run := range a.free {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.offset+last.count == run.offset {
				last.count += run.count
				continue
			}
		}
		merged = append(merged, run)
	}
	a.free = merged
}

// Capacity returns the heap's total descriptor count.
func (a *Allocator) Capacity() uint32 { return a.capacity }

// Live returns the number of descriptors currently allocated.
func (a *Allocator) Live() uint32 { return a.live }
