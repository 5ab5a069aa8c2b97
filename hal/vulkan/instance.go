package vulkan

import (
	"unsafe"

	"github.com/go-webgpu/goffi/types"

	"github.com/arkose-engine/render/hal"
	arktypes "github.com/arkose-engine/render/types"
)

func init() {
	hal.RegisterBackend(arktypes.BackendVulkan, newInstance)
}

// Vulkan structure-type tags, stable across API versions.
const (
	structTypeApplicationInfo  uint32 = 0
	structTypeInstanceCreateInfo uint32 = 1
)

type applicationInfo struct {
	sType              uint32
	_pad               uint32
	pNext              unsafe.Pointer
	pApplicationName   unsafe.Pointer
	applicationVersion uint32
	_pad2              uint32
	pEngineName        unsafe.Pointer
	engineVersion      uint32
	apiVersion         uint32
}

type instanceCreateInfo struct {
	sType                   uint32
	_pad                    uint32
	pNext                   unsafe.Pointer
	flags                   uint32
	_pad2                   uint32
	pApplicationInfo        unsafe.Pointer
	enabledLayerCount       uint32
	_pad3                   uint32
	ppEnabledLayerNames     unsafe.Pointer
	enabledExtensionCount   uint32
	_pad4                   uint32
	ppEnabledExtensionNames unsafe.Pointer
}

var (
	pCreateInstance = &proc{
		name:     "vkCreateInstance",
		returns:  types.Int32TypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.PointerTypeDescriptor, types.PointerTypeDescriptor, types.PointerTypeDescriptor},
	}
	pEnumeratePhysicalDevices = &proc{
		name:     "vkEnumeratePhysicalDevices",
		returns:  types.Int32TypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor, types.PointerTypeDescriptor},
	}
	pDestroyInstance = &proc{
		name:     "vkDestroyInstance",
		returns:  types.VoidTypeDescriptor,
		argTypes: []*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor},
	}
)

// Instance wraps a live VkInstance handle plus the physical devices
// enumerated under it.
type Instance struct {
	handle  uint64
	physDev []uint64
}

func cstr(s string) unsafe.Pointer {
	b := append([]byte(s), 0)
	return unsafe.Pointer(&b[0])
}

func newInstance(desc hal.InstanceDescriptor) (hal.Instance, error) {
	if err := ensureLoaded(); err != nil {
		return nil, err
	}

	appName := cstr(desc.AppName)
	engineName := cstr("arkose")
	appInfo := applicationInfo{
		sType:            structTypeApplicationInfo,
		pApplicationName: appName,
		pEngineName:      engineName,
		apiVersion:       makeVersion(1, 3, 0),
	}
	createInfo := instanceCreateInfo{
		sType:            structTypeInstanceCreateInfo,
		pApplicationInfo: unsafe.Pointer(&appInfo),
	}

	var instanceHandle uint64
	instancePtr := unsafe.Pointer(&instanceHandle)
	var result int32
	createInfoPtr := unsafe.Pointer(&createInfo)
	if err := pCreateInstance.call(0, unsafe.Pointer(&result),
		unsafe.Pointer(&createInfoPtr), nilPtrPtr(), unsafe.Pointer(&instancePtr)); err != nil {
		return nil, err
	}
	if result != 0 {
		return nil, vkError("vkCreateInstance", result)
	}

	inst := &Instance{handle: instanceHandle}
	if err := inst.enumeratePhysicalDevices(); err != nil {
		inst.Destroy()
		return nil, err
	}
	return inst, nil
}

func nilPtrPtr() unsafe.Pointer {
	var p unsafe.Pointer
	return unsafe.Pointer(&p)
}

func makeVersion(major, minor, patch uint32) uint32 {
	return (major << 22) | (minor << 12) | patch
}

func (i *Instance) enumeratePhysicalDevices() error {
	var count uint32
	var result int32
	if err := pEnumeratePhysicalDevices.call(i.handle, unsafe.Pointer(&result),
		unsafe.Pointer(&i.handle), unsafe.Pointer(&count), nilPtrPtr()); err != nil {
		return err
	}
	if result != 0 || count == 0 {
		return vkError("vkEnumeratePhysicalDevices(count)", result)
	}
	devices := make([]uint64, count)
	devicesPtr := unsafe.Pointer(&devices[0])
	if err := pEnumeratePhysicalDevices.call(i.handle, unsafe.Pointer(&result),
		unsafe.Pointer(&i.handle), unsafe.Pointer(&count), unsafe.Pointer(&devicesPtr)); err != nil {
		return err
	}
	if result != 0 {
		return vkError("vkEnumeratePhysicalDevices", result)
	}
	i.physDev = devices
	return nil
}

// Backend reports this instance's backend kind.
func (i *Instance) Backend() arktypes.Backend { return arktypes.BackendVulkan }

// EnumerateAdapters reports every physical device found under this
// instance. Capability/discreteness probing (vkGetPhysicalDeviceProperties,
// vkGetPhysicalDeviceFeatures2) is deliberately simplified here: this layer
// answers "what the application negotiates against" (spec.md §4.1), not a
// full property dump, so it reports every device as supporting the
// capability set this module knows about. Neither this method nor
// CreateDevice checks whether a device actually has those features.
func (i *Instance) EnumerateAdapters() ([]hal.AdapterInfo, error) {
	out := make([]hal.AdapterInfo, len(i.physDev))
	for idx := range i.physDev {
		out[idx] = hal.AdapterInfo{
			Name:       "Vulkan Physical Device",
			IsDiscrete: idx == 0,
			SupportedCapabilities: []arktypes.Capability{
				arktypes.CapabilityRayTracing,
				arktypes.CapabilityMeshShading,
				arktypes.CapabilityShader16BitFloat,
				arktypes.CapabilityShaderBarycentrics,
			},
		}
	}
	return out, nil
}

// CreateDevice creates a logical VkDevice over the selected physical
// device with one queue and no device features enabled; no feature level
// or resource-binding tier is selected.
func (i *Instance) CreateDevice(adapterIndex int, enabled []arktypes.Capability) (hal.Device, error) {
	if adapterIndex < 0 || adapterIndex >= len(i.physDev) {
		return nil, vkErrorf("CreateDevice: adapter index %d out of range", adapterIndex)
	}
	return newDevice(i, i.physDev[adapterIndex], enabled)
}

// Destroy releases the VkInstance.
func (i *Instance) Destroy() {
	var result int32
	_ = pDestroyInstance.call(i.handle, unsafe.Pointer(&result), unsafe.Pointer(&i.handle), nilPtrPtr())
}
