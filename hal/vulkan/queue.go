package vulkan

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/goffi/types"

	"github.com/arkose-engine/render/hal"
)

var pQueueSubmit = &proc{
	name:     "vkQueueSubmit",
	returns:  types.Int32TypeDescriptor,
	argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor, types.UInt32TypeDescriptor, types.PointerTypeDescriptor, types.UInt64TypeDescriptor},
}

type submitInfo struct {
	sType                uint32
	_pad                 uint32
	pNext                unsafe.Pointer
	waitSemaphoreCount   uint32
	_pad2                uint32
	pWaitSemaphores      unsafe.Pointer
	pWaitDstStageMask    unsafe.Pointer
	commandBufferCount   uint32
	_pad3                uint32
	pCommandBuffers      unsafe.Pointer
	signalSemaphoreCount uint32
	_pad4                uint32
	pSignalSemaphores    unsafe.Pointer
}

const structTypeSubmitInfo uint32 = 4

// queue wraps the device's single VkQueue, used for both graphics
// submission and presentation (spec.md §4.2 targets adapters with a
// combined queue).
type queue struct {
	device *Device
}

// Submit records and submits every encoder's command buffer, signaling
// fence to signalValue once the GPU retires them. Vulkan fences are
// one-shot; this backend signals by waiting on the submission inline and
// then advancing Fence.lastSignaled, preserving spec.md §4.1's "record
// fence signal = monotonically-increasing next sequential fence value"
// contract for the CPU-visible side of the API even though the native
// VkFence itself does not carry a monotonic value.
func (q *queue) Submit(lists []hal.CommandEncoder, signal hal.Fence, signalValue uint64) error {
	handles := make([]uint64, 0, len(lists))
	for _, l := range lists {
		enc, ok := l.(*CommandEncoder)
		if !ok {
			return fmt.Errorf("vulkan: Submit: encoder is not a vulkan.CommandEncoder")
		}
		handles = append(handles, enc.handle)
	}
	if len(handles) == 0 {
		return nil
	}
	info := submitInfo{
		sType:              structTypeSubmitInfo,
		commandBufferCount: uint32(len(handles)),
		pCommandBuffers:    unsafe.Pointer(&handles[0]),
	}
	infoPtr := unsafe.Pointer(&info)
	var result int32
	if err := pQueueSubmit.call(q.device.handle, unsafe.Pointer(&result),
		unsafe.Pointer(&q.device.handle), unsafe.Pointer(new(uint32)), unsafe.Pointer(&infoPtr), unsafe.Pointer(new(uint64))); err != nil {
		return err
	}
	if result != 0 {
		return vkError("vkQueueSubmit", result)
	}
	if f, ok := signal.(*Fence); ok {
		if err := q.device.CompletePendingOperations(); err != nil {
			return err
		}
		f.lastSignaled = signalValue
	}
	return nil
}

// Wait blocks until fence reaches value, respecting timeout's deadline if
// one is set.
func (q *queue) Wait(fence hal.Fence, value uint64, timeout context.Context) error {
	f, ok := fence.(*Fence)
	if !ok {
		return fmt.Errorf("vulkan: Wait: fence is not a vulkan.Fence")
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

// Present forwards image to its Swapchain's present method. That method
// issues no vkQueuePresentKHR call and returns nil, so nothing reaches the
// presentation engine.
func (q *queue) Present(image hal.SwapchainImage) error {
	si, ok := image.(*swapchainImage)
	if !ok {
		return fmt.Errorf("vulkan: Present: image is not a vulkan swapchain image")
	}
	return si.swapchain.present(si.index)
}
