//go:build windows

package d3d12

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/arkose-engine/render/hal"
	arktypes "github.com/arkose-engine/render/types"
)

func init() {
	hal.RegisterBackend(arktypes.BackendD3D12, newInstance)
}

// iidID3D12Device is the IID D3D12CreateDevice expects in riid when asked
// to return an ID3D12Device.
var iidID3D12Device = windows.GUID{
	Data1: 0x189819f1,
	Data2: 0x1db6,
	Data3: 0x4b57,
	Data4: [8]byte{0xbe, 0x54, 0x18, 0x21, 0x33, 0x9b, 0x85, 0xf7},
}

const featureLevel11_0 = 0xb000

// Instance holds the loaded D3D12/DXGI libraries. Full IDXGIFactory adapter
// enumeration (IDXGIFactory6.EnumAdapterByGpuPreference,
// IDXGIAdapter1.GetDesc1) is the part of this backend left unimplemented:
// D3D12CreateDevice accepts a nil adapter pointer to select the default
// adapter, which is what CreateDevice below does, so EnumerateAdapters
// reports a single synthesized entry rather than driving real DXGI
// enumeration (paralleling hal/vulkan's own simplified
// EnumerateAdapters, which reports the capability set statically too).
type Instance struct{}

func newInstance(desc hal.InstanceDescriptor) (hal.Instance, error) {
	if err := ensureLoaded(); err != nil {
		return nil, err
	}
	return &Instance{}, nil
}

func (i *Instance) Backend() arktypes.Backend { return arktypes.BackendD3D12 }

// EnumerateAdapters reports the single default adapter D3D12CreateDevice
// will select when passed a nil adapter pointer. Ray tracing is reported as
// an unsupported capability here: CreateRayTracingState/CreateBottomLevelAS/
// CreateTopLevelAS (resource.go) are the genuinely NOT_YET_IMPLEMENTED
// paths of this backend (DXR state-object creation is out of scope), so the
// capability is never advertised as present in the first place.
func (i *Instance) EnumerateAdapters() ([]hal.AdapterInfo, error) {
	return []hal.AdapterInfo{{
		Name:       "D3D12 Default Adapter",
		IsDiscrete: true,
		SupportedCapabilities: []arktypes.Capability{
			arktypes.CapabilityMeshShading,
			arktypes.CapabilityShader16BitFloat,
			arktypes.CapabilityShaderBarycentrics,
		},
	}}, nil
}

// CreateDevice calls D3D12CreateDevice with a nil adapter pointer, which
// per the Direct3D 12 documentation selects the default adapter; adapterIndex
// is accepted for hal.Instance interface symmetry but only 0 is meaningful
// given EnumerateAdapters always reports exactly one adapter.
func (i *Instance) CreateDevice(adapterIndex int, enabled []arktypes.Capability) (hal.Device, error) {
	if adapterIndex != 0 {
		return nil, dxErrorf("CreateDevice: adapter index %d out of range", adapterIndex)
	}
	var devicePtr unsafe.Pointer
	r1, _, _ := procD3D12CreateDevice.Call(
		0, // pAdapter = nullptr: use default adapter
		featureLevel11_0,
		uintptr(unsafe.Pointer(&iidID3D12Device)),
		uintptr(unsafe.Pointer(&devicePtr)),
	)
	if !hresultOK(r1) {
		return nil, dxError("D3D12CreateDevice", r1)
	}
	return newDevice(devicePtr, enabled), nil
}

func (i *Instance) Destroy() {}
