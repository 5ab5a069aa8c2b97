//go:build windows

package d3d12

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/arkose-engine/render/hal"
)

var iidID3D12Fence = windows.GUID{
	Data1: 0x0a753dcf, Data2: 0xc4d8, Data3: 0x4b91,
	Data4: [8]byte{0xad, 0xf6, 0xbe, 0x5a, 0x60, 0xd9, 0x5a, 0x76},
}

// Fence wraps an ID3D12Fence, which is natively monotonically increasing
// (unlike Vulkan's one-shot VkFence), so unlike hal/vulkan's Fence this one
// needs no lastSignaled bookkeeping: GetCompletedValue already reports the
// real current value.
type Fence struct {
	hal.FenceBase
	fencePtr unsafe.Pointer
}

func (d *Device) CreateFence(initialValue uint64) (hal.Fence, error) {
	var fencePtr unsafe.Pointer
	hr, _ := callCOM(d.devicePtr, iD3D12DeviceCreateFence,
		uintptr(initialValue),
		0, // D3D12_FENCE_FLAG_NONE
		uintptr(unsafe.Pointer(&iidID3D12Fence)),
		uintptr(unsafe.Pointer(&fencePtr)))
	if !hresultOK(hr) {
		return nil, dxError("ID3D12Device::CreateFence", hr)
	}
	return &Fence{fencePtr: fencePtr}, nil
}

func (f *Fence) completedValue() uint64 {
	v, _ := callCOM(f.fencePtr, iD3D12FenceGetCompletedValue)
	return uint64(v)
}

// wait spin-polls GetCompletedValue, matching the spin-poll style
// taskgraph.Graph.WaitFor already uses elsewhere in this module rather than
// registering a Win32 event via SetEventOnCompletion+WaitForSingleObject.
func (f *Fence) wait(value uint64) error {
	for f.completedValue() < value {
		runtime.Gosched()
	}
	return nil
}
