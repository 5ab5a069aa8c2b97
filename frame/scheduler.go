// Package frame implements the frame scheduler spec.md §4.6 describes as
// Scheduler: the N-buffered Context set, swapchain acquire/present/recreate, and the
// executeFrame driver spec.md §4.1 specifies step by step.
package frame

import (
	"context"
	"time"

	render "github.com/arkose-engine/render"
	"github.com/arkose-engine/render/core"
	"github.com/arkose-engine/render/hal"
	"github.com/arkose-engine/render/pipeline"
	"github.com/arkose-engine/render/registry"
	"github.com/arkose-engine/render/upload"
)

// Context owns one frame slot's resources: the fence it waits on before
// reuse, the command allocator/encoder pair, the swapchain back-buffer
// reference for this slot, and a dedicated UploadBuffer, per spec.md §4.2
// ("For each frame slot, a FrameContext owning (frameFence, ...,
// commandAllocator, commandList, backBufferResource, uploadBuffer)").
type Context struct {
	fence            hal.Fence
	fenceValue       uint64 // last value submitted on this context
	commandAllocator hal.CommandAllocator
	encoder          hal.CommandEncoder
	upload           *upload.Buffer
}

// Scheduler drives the per-frame acquire/record/submit/present loop and
// owns swapchain recreation.
type Scheduler struct {
	backend    *render.Backend
	swapchain  hal.Swapchain
	contexts   []*Context
	bufferCount uint32

	width, height uint32

	currentFrameIndex  uint64
	relativeFrameIndex uint64

	pipeline    *pipeline.Pipeline
	registry    *registry.Registry
	placeholder *render.RenderTarget // swapchain attachment patched in step 6

	startTime time.Time
	lastTime  time.Time

	listeners []render.PipelineChangeListener
}

// New creates a Scheduler with bufferCount frame contexts (spec.md §4.2
// recommends N >= 2, reference uses 3) over a swapchain of the given size.
func New(backend *render.Backend, width, height, bufferCount uint32, p *pipeline.Pipeline) (*Scheduler, error) {
	if bufferCount == 0 {
		bufferCount = 3
	}
	sc, err := backend.Device().CreateSwapchain(hal.SwapchainDescriptor{Width: width, Height: height, BufferCount: bufferCount})
	if err != nil {
		return nil, err
	}

	contexts := make([]*Context, bufferCount)
	for i := range contexts {
		fence, err := backend.Device().CreateFence(0)
		if err != nil {
			return nil, err
		}
		alloc, err := backend.Device().CreateCommandAllocator()
		if err != nil {
			return nil, err
		}
		encoder, err := backend.Device().CreateCommandEncoder(alloc)
		if err != nil {
			return nil, err
		}
		up, err := upload.New(backend)
		if err != nil {
			return nil, err
		}
		contexts[i] = &Context{fence: fence, commandAllocator: alloc, encoder: encoder, upload: up}
	}

	s := &Scheduler{
		backend:     backend,
		swapchain:   sc,
		contexts:    contexts,
		bufferCount: bufferCount,
		width:       width,
		height:      height,
		pipeline:    p,
		registry:    registry.New(backend, registry.PerPipeline, nil),
		startTime:   now(),
	}
	s.lastTime = s.startTime
	return s, nil
}

// now is split out so a fixed clock can be injected in tests without this
// package reaching for wall-clock time directly in the scheduling logic.
var now = time.Now

// Rebuild runs a full pipeline reconstruction: waits for the device to go
// idle, creates a fresh registry chained to the current one for texture
// reuse, re-runs ConstructAll against it, and then destroys the previous
// registry (the single destruction point for per-pipeline resources,
// spec.md §4.5).
func (s *Scheduler) Rebuild(scene any) error {
	prev := s.registry
	if err := s.backend.CompletePendingOperations(); err != nil {
		return err
	}
	next := registry.New(s.backend, registry.PerPipeline, prev)
	if err := s.pipeline.ConstructAll(scene, next); err != nil {
		return err
	}
	if err := prev.Destroy(); err != nil {
		return err
	}
	s.registry = next
	s.relativeFrameIndex = 0
	core.Log().Info("pipeline reconstructed")
	s.notifyPipelineChanged()
	return nil
}

// AddPipelineChangeListener registers l for RenderPipelineDidChange /
// ShadersDidRecompile notifications this scheduler issues.
func (s *Scheduler) AddPipelineChangeListener(l render.PipelineChangeListener) {
	s.listeners = append(s.listeners, l)
}

func (s *Scheduler) notifyPipelineChanged() {
	for _, l := range s.listeners {
		l.RenderPipelineDidChange()
	}
}

// ShadersDidRecompile wipes the pipeline registry and re-runs construct,
// per spec.md §4.6's capability-reporting contract: "an off-thread file
// watcher may notify that shaders changed; the main thread then calls
// renderPipelineDidChange, which wipes the pipeline registry and re-runs
// construct."
func (s *Scheduler) ShadersDidRecompile(scene any) error {
	for _, l := range s.listeners {
		l.ShadersDidRecompile()
	}
	return s.Rebuild(scene)
}

// ExecuteFrame runs one frame along the eleven-step contract of spec.md
// §4.1. The swapchain image is never transitioned (neither to render-target
// state nor back for present), no placeholder attachment is patched, and no
// GUI pass is recorded (steps 5, 6 and 8); the acquired image is only
// handed to Present.
func (s *Scheduler) ExecuteFrame(scene any, framebufferWidth, framebufferHeight uint32) error {
	if framebufferWidth == 0 || framebufferHeight == 0 {
		// Minimized: spec.md §4.6 blocks on window events until non-zero
		// area is available. The caller (owning the window event loop) is
		// responsible for not calling ExecuteFrame until then; returning
		// nil here lets a caller that calls anyway degrade to a no-op frame.
		return nil
	}

	image, bufferIndex, err := s.swapchain.AcquireNextImage()
	if err != nil {
		return err
	}
	ctx := s.contexts[bufferIndex]

	// Step 2: wait on the context's frame fence.
	if err := s.backend.Device().Queue().Wait(ctx.fence, ctx.fenceValue, context.Background()); err != nil {
		return err
	}

	// Step 3: reset command allocator/list.
	if err := ctx.encoder.Reset(ctx.commandAllocator); err != nil {
		return err
	}

	// Step 4: reset the upload buffer cursor.
	ctx.upload.Reset()

	// Steps 5 + 6 (swapchain texture transition, placeholder attachment
	// patch) are not performed; image is only handed to Present.
	_ = image

	cl := render.NewCommandList(s.backend, ctx.encoder)

	now := now()
	elapsed := now.Sub(s.startTime).Seconds()
	delta := now.Sub(s.lastTime).Seconds()
	s.lastTime = now

	state := render.AppState{
		WindowExtent:             render.WindowExtent{Width: framebufferWidth, Height: framebufferHeight},
		DeltaTime:                delta,
		ElapsedTime:              elapsed,
		CurrentFrameIndex:        s.currentFrameIndex,
		RelativeFrameIndex:       s.relativeFrameIndex,
		NextSwapchainBufferIndex: bufferIndex,
	}

	// Step 7: invoke each node's execute callback.
	s.pipeline.ForEachNodeInResolvedOrder(func(n pipeline.Node, cb pipeline.ExecuteCallback) {
		cl.PushDebugLabel(n.Name())
		cb(state, cl, ctx.upload)
		cl.PopDebugLabel()
	})

	if err := ctx.upload.Flush(cl); err != nil {
		return err
	}

	// Step 9: close and submit.
	if err := cl.Close(); err != nil {
		return err
	}
	ctx.fenceValue++
	if err := s.backend.Device().Queue().Submit([]hal.CommandEncoder{ctx.encoder}, ctx.fence, ctx.fenceValue); err != nil {
		return err
	}

	// Step 10: present.
	if err := s.backend.Device().Queue().Present(image); err != nil {
		return err
	}

	s.currentFrameIndex++
	s.relativeFrameIndex++

	// Step 11: recreate swapchain if framebuffer size changed.
	if framebufferWidth != s.width || framebufferHeight != s.height {
		if err := s.resize(framebufferWidth, framebufferHeight); err != nil {
			return err
		}
		return s.Rebuild(scene)
	}
	return nil
}

func (s *Scheduler) resize(width, height uint32) error {
	if err := s.backend.CompletePendingOperations(); err != nil {
		return err
	}
	if err := s.swapchain.Resize(width, height); err != nil {
		return err
	}
	s.width, s.height = width, height
	core.Log().Info("swapchain resized", "width", width, "height", height)
	return nil
}

// CompletePendingOperations forces a device-idle wait across every frame
// context's fence, per spec.md §4.1.
func (s *Scheduler) CompletePendingOperations() error {
	return s.backend.CompletePendingOperations()
}
