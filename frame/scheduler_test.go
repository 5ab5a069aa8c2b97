package frame

import (
	"testing"
	"time"

	render "github.com/arkose-engine/render"
	_ "github.com/arkose-engine/render/internal/testhal"
	"github.com/arkose-engine/render/pipeline"
	"github.com/arkose-engine/render/registry"
	"github.com/arkose-engine/render/types"
	"github.com/arkose-engine/render/upload"
)

func testBackend(t *testing.T) *render.Backend {
	t.Helper()
	b, err := render.Create(render.AppSpec{Name: "frame-test", PreferredBackend: types.BackendVulkan})
	if err != nil {
		t.Fatalf("render.Create() error = %v", err)
	}
	return b
}

func fixedClock(t *testing.T) func() {
	t.Helper()
	clock := time.Unix(1700000000, 0)
	old := now
	now = func() time.Time {
		clock = clock.Add(16 * time.Millisecond)
		return clock
	}
	return func() { now = old }
}

func TestExecuteFrameRunsEveryNodeOnce(t *testing.T) {
	restore := fixedClock(t)
	defer restore()

	b := testBackend(t)
	p := pipeline.New()
	var invocations int
	p.AddNode(pipeline.Lambda("n", func(scene any, reg *registry.Registry) (pipeline.ExecuteCallback, error) {
		return func(render.AppState, *render.CommandList, *upload.Buffer) { invocations++ }, nil
	}))

	s, err := New(b, 64, 64, 2, p)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.pipeline.ConstructAll(nil, s.registry); err != nil {
		t.Fatalf("ConstructAll() error = %v", err)
	}

	if err := s.ExecuteFrame(nil, 64, 64); err != nil {
		t.Fatalf("ExecuteFrame() error = %v", err)
	}
	if invocations != 1 {
		t.Errorf("invocations = %d, want 1", invocations)
	}
	if s.currentFrameIndex != 1 {
		t.Errorf("currentFrameIndex = %d, want 1", s.currentFrameIndex)
	}
	if s.relativeFrameIndex != 1 {
		t.Errorf("relativeFrameIndex = %d, want 1", s.relativeFrameIndex)
	}
}

// TestExecuteFrameMinimizedIsNoop covers spec.md §4.6's minimized-window
// guard: a zero-area framebuffer must not touch the swapchain or advance
// any frame counters.
func TestExecuteFrameMinimizedIsNoop(t *testing.T) {
	restore := fixedClock(t)
	defer restore()

	b := testBackend(t)
	p := pipeline.New()
	s, err := New(b, 64, 64, 2, p)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.ExecuteFrame(nil, 0, 64); err != nil {
		t.Fatalf("ExecuteFrame(minimized) error = %v", err)
	}
	if s.currentFrameIndex != 0 {
		t.Errorf("currentFrameIndex after minimized frame = %d, want 0", s.currentFrameIndex)
	}
}

// TestExecuteFrameResizeTriggersRebuild covers scenario S5: a framebuffer
// size change detected at the end of ExecuteFrame resizes the swapchain
// and rebuilds the pipeline, resetting relativeFrameIndex.
func TestExecuteFrameResizeTriggersRebuild(t *testing.T) {
	restore := fixedClock(t)
	defer restore()

	b := testBackend(t)
	p := pipeline.New()
	var constructs int
	p.AddNode(pipeline.Lambda("n", func(scene any, reg *registry.Registry) (pipeline.ExecuteCallback, error) {
		constructs++
		return func(render.AppState, *render.CommandList, *upload.Buffer) {}, nil
	}))

	s, err := New(b, 64, 64, 2, p)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := s.pipeline.ConstructAll(nil, s.registry); err != nil {
		t.Fatalf("ConstructAll() error = %v", err)
	}
	constructs = 0 // only count rebuild-triggered constructs below

	if err := s.ExecuteFrame(nil, 128, 128); err != nil {
		t.Fatalf("ExecuteFrame(resized) error = %v", err)
	}
	if constructs != 1 {
		t.Errorf("constructs after resize = %d, want 1 (Rebuild must re-run ConstructAll)", constructs)
	}
	if s.width != 128 || s.height != 128 {
		t.Errorf("scheduler size = %dx%d, want 128x128", s.width, s.height)
	}
	if s.relativeFrameIndex != 0 {
		t.Errorf("relativeFrameIndex after rebuild = %d, want 0", s.relativeFrameIndex)
	}
}

func TestShadersDidRecompileNotifiesListenersAndRebuilds(t *testing.T) {
	restore := fixedClock(t)
	defer restore()

	b := testBackend(t)
	p := pipeline.New()
	p.AddNode(pipeline.Lambda("n", func(scene any, reg *registry.Registry) (pipeline.ExecuteCallback, error) {
		return func(render.AppState, *render.CommandList, *upload.Buffer) {}, nil
	}))
	s, err := New(b, 32, 32, 2, p)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var shadersNotified, pipelineChanged bool
	s.AddPipelineChangeListener(testListener{
		onShaders:  func() { shadersNotified = true },
		onPipeline: func() { pipelineChanged = true },
	})

	if err := s.ShadersDidRecompile(nil); err != nil {
		t.Fatalf("ShadersDidRecompile() error = %v", err)
	}
	if !shadersNotified {
		t.Error("ShadersDidRecompile listener not notified")
	}
	if !pipelineChanged {
		t.Error("RenderPipelineDidChange listener not notified")
	}
}

type testListener struct {
	onShaders  func()
	onPipeline func()
}

func (l testListener) ShadersDidRecompile()    { l.onShaders() }
func (l testListener) RenderPipelineDidChange() { l.onPipeline() }
