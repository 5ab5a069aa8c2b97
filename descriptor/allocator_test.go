package descriptor

import (
	"testing"

	"github.com/arkose-engine/render/core"
)

func TestAllocatorBasicAllocate(t *testing.T) {
	a := New(16, 1, 0)
	alloc, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if alloc.FirstCPUDescriptor != 0 || alloc.Count != 4 {
		t.Errorf("Allocate() = %+v, want offset 0 count 4", alloc)
	}
	if a.Live() != 4 {
		t.Errorf("Live() = %d, want 4", a.Live())
	}
}

func TestAllocatorZeroCountRejected(t *testing.T) {
	a := New(16, 1, 0)
	if _, err := a.Allocate(0); err == nil {
		t.Error("Allocate(0) = nil error, want ConstructionError")
	} else if !core.IsConstructionError(err) {
		t.Errorf("Allocate(0) error = %v, want ConstructionError", err)
	}
}

func TestAllocatorOverCapacityFails(t *testing.T) {
	a := New(8, 1, 0)
	if _, err := a.Allocate(9); err == nil {
		t.Error("Allocate(9) on 8-capacity heap = nil, want LimitError")
	}
}

func TestAllocatorBestFit(t *testing.T) {
	a := New(100, 1, 0)
	// Carve out three separate runs: [0,10) [10,30) [30,100)
	first, _ := a.Allocate(10)
	second, _ := a.Allocate(20)
	a.Free(first)
	// Free list now has a 10-wide run at offset 0 and a 70-wide run at offset 30.
	// A request for 5 should best-fit into the 10-wide run, not the 70-wide one.
	third, err := a.Allocate(5)
	if err != nil {
		t.Fatalf("Allocate(5) error = %v", err)
	}
	if third.FirstCPUDescriptor != 0 {
		t.Errorf("best-fit chose offset %d, want 0 (smallest sufficient run)", third.FirstCPUDescriptor)
	}
	_ = second
}

func TestAllocatorFreeCoalescesAdjacentRuns(t *testing.T) {
	a := New(30, 1, 0)
	r1, _ := a.Allocate(10)
	r2, _ := a.Allocate(10)
	r3, _ := a.Allocate(10)
	a.Free(r1)
	a.Free(r3)
	a.Free(r2)
	// Everything freed in a different order than allocated; the whole heap
	// should coalesce back into one run of 30.
	whole, err := a.Allocate(30)
	if err != nil {
		t.Fatalf("Allocate(30) after freeing everything: error = %v", err)
	}
	if whole.FirstCPUDescriptor != 0 || whole.Count != 30 {
		t.Errorf("Allocate(30) = %+v, want a single coalesced run covering the whole heap", whole)
	}
}

func TestAllocatorGPUBaseOffset(t *testing.T) {
	a := New(16, 1, 1000)
	alloc, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if alloc.FirstGPUDescriptor != 1000 {
		t.Errorf("FirstGPUDescriptor = %d, want 1000", alloc.FirstGPUDescriptor)
	}
}

func TestAllocatorCPUOnlyHeapHasNoGPUBase(t *testing.T) {
	a := New(16, 1, 0)
	alloc, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if alloc.FirstGPUDescriptor != 0 {
		t.Errorf("FirstGPUDescriptor = %d, want 0 for a CPU-only heap", alloc.FirstGPUDescriptor)
	}
}

func TestAllocatorCapacity(t *testing.T) {
	a := New(42, 1, 0)
	if a.Capacity() != 42 {
		t.Errorf("Capacity() = %d, want 42", a.Capacity())
	}
}
