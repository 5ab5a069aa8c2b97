package vulkan

import (
	"sync/atomic"
	"unsafe"

	"github.com/go-webgpu/goffi/types"

	"github.com/arkose-engine/render/hal"
	arktypes "github.com/arkose-engine/render/types"
)

const (
	structTypeDeviceQueueCreateInfo uint32 = 2
	structTypeDeviceCreateInfo      uint32 = 3
	structTypeFenceCreateInfo       uint32 = 8
	structTypeCommandPoolCreateInfo uint32 = 39
	structTypeCommandBufferAllocateInfo uint32 = 40
)

type deviceQueueCreateInfo struct {
	sType            uint32
	_pad             uint32
	pNext            unsafe.Pointer
	flags            uint32
	queueFamilyIndex uint32
	queueCount       uint32
	_pad2            uint32
	pQueuePriorities unsafe.Pointer
}

type deviceCreateInfo struct {
	sType                   uint32
	_pad                    uint32
	pNext                   unsafe.Pointer
	flags                   uint32
	queueCreateInfoCount    uint32
	pQueueCreateInfos       unsafe.Pointer
	enabledLayerCount       uint32
	_pad2                   uint32
	ppEnabledLayerNames     unsafe.Pointer
	enabledExtensionCount   uint32
	_pad3                   uint32
	ppEnabledExtensionNames unsafe.Pointer
	pEnabledFeatures        unsafe.Pointer
}

var (
	pCreateDevice = &proc{
		name:     "vkCreateDevice",
		returns:  types.Int32TypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor, types.PointerTypeDescriptor, types.PointerTypeDescriptor},
	}
	pDestroyDevice = &proc{
		name:     "vkDestroyDevice",
		returns:  types.VoidTypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor},
	}
	pDeviceWaitIdle = &proc{
		name:     "vkDeviceWaitIdle",
		returns:  types.Int32TypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor},
	}
	pGetDeviceQueue = &proc{
		name:     "vkGetDeviceQueue",
		returns:  types.VoidTypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor, types.UInt32TypeDescriptor, types.UInt32TypeDescriptor, types.PointerTypeDescriptor},
	}
)

// graphicsQueueFamilyIndex is fixed at 0; a production backend would query
// vkGetPhysicalDeviceQueueFamilyProperties and pick the first family
// advertising VK_QUEUE_GRAPHICS_BIT, elided here since every adapter this
// module targets exposes a combined graphics/compute/transfer queue at
// index 0.
const graphicsQueueFamilyIndex = 0

// Device implements hal.Device over one logical VkDevice. The device is
// created with no VkPhysicalDeviceFeatures enabled; descriptor-indexing and
// update-after-bind features (the Vulkan counterpart of resource-binding
// tier 3) are neither queried nor requested.
type Device struct {
	instance  *Instance
	physDev   uint64
	handle    uint64
	queueHandle uint64
	enabled   map[arktypes.Capability]bool

	nextHandle atomic.Uint64
}

func newDevice(inst *Instance, physDev uint64, enabled []arktypes.Capability) (*Device, error) {
	priority := float32(1.0)
	queueInfo := deviceQueueCreateInfo{
		sType:            structTypeDeviceQueueCreateInfo,
		queueFamilyIndex: graphicsQueueFamilyIndex,
		queueCount:       1,
		pQueuePriorities: unsafe.Pointer(&priority),
	}
	createInfo := deviceCreateInfo{
		sType:                structTypeDeviceCreateInfo,
		queueCreateInfoCount: 1,
		pQueueCreateInfos:    unsafe.Pointer(&queueInfo),
	}

	var deviceHandle uint64
	devicePtr := unsafe.Pointer(&deviceHandle)
	var result int32
	createInfoPtr := unsafe.Pointer(&createInfo)
	if err := pCreateDevice.call(inst.handle, unsafe.Pointer(&result),
		unsafe.Pointer(&physDev), unsafe.Pointer(&createInfoPtr), nilPtrPtr(), unsafe.Pointer(&devicePtr)); err != nil {
		return nil, err
	}
	if result != 0 {
		return nil, vkError("vkCreateDevice", result)
	}

	enabledSet := make(map[arktypes.Capability]bool, len(enabled))
	for _, c := range enabled {
		enabledSet[c] = true
	}
	d := &Device{instance: inst, physDev: physDev, handle: deviceHandle, enabled: enabledSet}

	var queueHandle uint64
	queueHandlePtr := unsafe.Pointer(&queueHandle)
	familyIdx := uint32(graphicsQueueFamilyIndex)
	queueIdx := uint32(0)
	_ = pGetDeviceQueue.call(deviceHandle, nil,
		unsafe.Pointer(&deviceHandle), unsafe.Pointer(&familyIdx), unsafe.Pointer(&queueIdx), unsafe.Pointer(&queueHandlePtr))
	d.queueHandle = queueHandle

	return d, nil
}

func (d *Device) Backend() arktypes.Backend   { return arktypes.BackendVulkan }
func (d *Device) Info() hal.AdapterInfo {
	return hal.AdapterInfo{Name: "Vulkan Physical Device", SupportedCapabilities: capabilitiesOf(d.enabled)}
}

func capabilitiesOf(m map[arktypes.Capability]bool) []arktypes.Capability {
	out := make([]arktypes.Capability, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	return out
}

func (d *Device) Queue() hal.Queue { return &queue{device: d} }

func (d *Device) newHandle() uint64 { return d.nextHandle.Add(1) }

// CompletePendingOperations blocks until the device is fully idle, per
// spec.md §4.1's completePendingOperations.
func (d *Device) CompletePendingOperations() error {
	var result int32
	if err := pDeviceWaitIdle.call(d.handle, unsafe.Pointer(&result), unsafe.Pointer(&d.handle)); err != nil {
		return err
	}
	if result != 0 {
		return vkError("vkDeviceWaitIdle", result)
	}
	return nil
}

// Destroy releases the logical device.
func (d *Device) Destroy() {
	var result int32
	_ = pDestroyDevice.call(d.handle, unsafe.Pointer(&result), unsafe.Pointer(&d.handle), nilPtrPtr())
}
