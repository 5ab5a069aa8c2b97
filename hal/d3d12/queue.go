//go:build windows

package d3d12

import (
	"context"
	"unsafe"

	"github.com/arkose-engine/render/hal"
)

// queue wraps the device's single ID3D12CommandQueue, created at device
// construction time (device.go's createQueue), per spec.md §4.2 targeting
// adapters with a combined graphics/compute/copy queue.
type queue struct {
	device *Device
}

// Submit calls ExecuteCommandLists over every encoder's command list, then
// signals fence to signalValue, the native D3D12 idiom spec.md §4.1's
// "record fence signal = monotonically-increasing next sequential fence
// value" contract is modeled directly on.
func (q *queue) Submit(lists []hal.CommandEncoder, signal hal.Fence, signalValue uint64) error {
	handles := make([]uintptr, 0, len(lists))
	for _, l := range lists {
		enc, ok := l.(*CommandEncoder)
		if !ok {
			return dxErrorf("Submit: encoder is not a d3d12.CommandEncoder")
		}
		handles = append(handles, uintptr(enc.handle))
	}
	if len(handles) > 0 {
		_, _ = callCOM(q.device.queuePtr, iD3D12CommandQueueExecuteCommandLists,
			uintptr(len(handles)), uintptr(unsafe.Pointer(&handles[0])))
	}
	if f, ok := signal.(*Fence); ok {
		return q.Signal(f, signalValue)
	}
	return nil
}

// Signal issues ID3D12CommandQueue::Signal(fence, value).
func (q *queue) Signal(f *Fence, value uint64) error {
	hr, _ := callCOM(q.device.queuePtr, iD3D12CommandQueueSignal, uintptr(unsafe.Pointer(f.fencePtr)), uintptr(value))
	if !hresultOK(hr) {
		return dxError("ID3D12CommandQueue::Signal", hr)
	}
	return nil
}

// Wait blocks until fence reaches value, respecting timeout's deadline.
func (q *queue) Wait(fence hal.Fence, value uint64, timeout context.Context) error {
	f, ok := fence.(*Fence)
	if !ok {
		return dxErrorf("Wait: fence is not a d3d12.Fence")
	}
	done := make(chan error, 1)
	go func() { done <- f.wait(value) }()
	select {
	case err := <-done:
		return err
	case <-timeout.Done():
		return timeout.Err()
	}
}

// Present hands a swapchain image to the presentation engine; real
// swapchain presentation is owned by Swapchain itself (swapchain.go), so
// Present only forwards to it, matching hal/vulkan's Queue.Present shape.
func (q *queue) Present(image hal.SwapchainImage) error {
	si, ok := image.(*swapchainImage)
	if !ok {
		return dxErrorf("Present: image is not a d3d12 swapchain image")
	}
	return si.swapchain.present(si.index)
}
