package vulkan

import (
	"unsafe"

	"github.com/go-webgpu/goffi/types"

	"github.com/arkose-engine/render/hal"
)

type fenceCreateInfo struct {
	sType uint32
	_pad  uint32
	pNext unsafe.Pointer
	flags uint32
	_pad2 uint32
}

var (
	pCreateFence = &proc{
		name:     "vkCreateFence",
		returns:  types.Int32TypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor, types.PointerTypeDescriptor, types.PointerTypeDescriptor},
	}
	pWaitForFences = &proc{
		name:     "vkWaitForFences",
		returns:  types.Int32TypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor, types.UInt32TypeDescriptor, types.PointerTypeDescriptor, types.UInt32TypeDescriptor, types.UInt64TypeDescriptor},
	}
	pGetFenceStatus = &proc{
		name:     "vkGetFenceStatus",
		returns:  types.Int32TypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor, types.UInt64TypeDescriptor},
	}
)

// Fence wraps a VkFence used as the per-frame-context synchronization
// primitive spec.md §4.2 describes. Unlike D3D12's monotonically
// increasing fence value, a VkFence is a one-shot signal; this backend
// layers spec.md's "fenceValue" semantics on top by tracking the value in
// lastSignaled, which the queue advances after each submission. The native
// VkFence is never reset or recreated.
type Fence struct {
	hal.FenceBase
	device       *Device
	handle       uint64
	lastSignaled uint64
}

func (d *Device) CreateFence(initialValue uint64) (hal.Fence, error) {
	createInfo := fenceCreateInfo{sType: structTypeFenceCreateInfo}
	var handle uint64
	handlePtr := unsafe.Pointer(&handle)
	var result int32
	createInfoPtr := unsafe.Pointer(&createInfo)
	if err := pCreateFence.call(d.handle, unsafe.Pointer(&result),
		unsafe.Pointer(&d.handle), unsafe.Pointer(&createInfoPtr), nilPtrPtr(), unsafe.Pointer(&handlePtr)); err != nil {
		return nil, err
	}
	if result != 0 {
		return nil, vkError("vkCreateFence", result)
	}
	return &Fence{device: d, handle: handle, lastSignaled: initialValue}, nil
}

// wait blocks until lastSignaled reaches or exceeds value, per spec.md
// §4.1 step 2.
func (f *Fence) wait(value uint64) error {
	if f.lastSignaled >= value {
		return nil
	}
	var result int32
	handle := f.handle
	handlePtr := unsafe.Pointer(&handle)
	waitAll := uint32(1)
	const timeoutNanos = ^uint64(0)
	if err := pWaitForFences.call(f.device.handle, unsafe.Pointer(&result),
		unsafe.Pointer(&f.device.handle), unsafe.Pointer(new(uint32)), unsafe.Pointer(&handlePtr),
		unsafe.Pointer(&waitAll), unsafe.Pointer(ptrUint64(timeoutNanos))); err != nil {
		return err
	}
	if result != 0 {
		return vkError("vkWaitForFences", result)
	}
	f.lastSignaled = value
	return nil
}

func ptrUint64(v uint64) *uint64 { return &v }
