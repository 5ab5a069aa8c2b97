package taskgraph

import (
	"sync/atomic"
	"testing"
)

func TestEnqueueTaskRunsAndWaitForBlocksUntilDone(t *testing.T) {
	g := New()
	defer g.Shutdown()

	var ran atomic.Bool
	h := g.EnqueueTask(func() { ran.Store(true) })
	g.WaitFor(h)
	if !ran.Load() {
		t.Error("task did not run before WaitFor returned")
	}
}

func TestEnqueueTaskFanOutCompletesAll(t *testing.T) {
	g := New()
	defer g.Shutdown()

	var count atomic.Int32
	var handles []Handle
	for i := 0; i < len(g.workers)*4; i++ {
		handles = append(handles, g.EnqueueTask(func() { count.Add(1) }))
	}
	for _, h := range handles {
		if h.workerID < 0 || h.workerID >= len(g.workers) {
			t.Fatalf("handle workerID = %d, out of range [0,%d)", h.workerID, len(g.workers))
		}
		g.WaitFor(h)
	}
	if got := int(count.Load()); got != len(handles) {
		t.Errorf("count = %d, want %d", got, len(handles))
	}
}

func TestParallelForCoversEveryIndex(t *testing.T) {
	g := New()
	defer g.Shutdown()

	const n = 997
	var hits [n]atomic.Int32
	g.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			hits[i].Add(1)
		}
	})
	for i := 0; i < n; i++ {
		if hits[i].Load() != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, hits[i].Load())
		}
	}
}

func TestParallelForZeroCountIsNoop(t *testing.T) {
	g := New()
	defer g.Shutdown()

	called := false
	g.ParallelFor(0, func(start, end int) { called = true })
	if called {
		t.Error("ParallelFor(0, ...) invoked body, want no-op")
	}
}
