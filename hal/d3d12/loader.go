//go:build windows

// Package d3d12 implements the D3D12 hal.Device/hal.Instance backend.
// Entry points fall into two families: flat DLL exports (D3D12CreateDevice,
// CreateDXGIFactory2) resolved via golang.org/x/sys/windows the way the
// teacher's loader resolves Vulkan entry points, and COM vtable methods
// (ID3D12Device.CreateFence, ID3D12CommandQueue.ExecuteCommandLists, ...)
// invoked by reading the interface's vtable pointer and calling through it
// with syscall.SyscallN, the same pattern the rest of the Go ecosystem uses
// to drive COM without cgo.
package d3d12

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	d3d12DLL *windows.LazyDLL
	dxgiDLL  *windows.LazyDLL

	procD3D12CreateDevice   *windows.LazyProc
	procCreateDXGIFactory2  *windows.LazyProc

	loadOnce sync.Once
	loadErr  error
)

// ensureLoaded resolves d3d12.dll and dxgi.dll exactly once per process.
func ensureLoaded() error {
	loadOnce.Do(func() {
		d3d12DLL = windows.NewLazySystemDLL("d3d12.dll")
		if err := d3d12DLL.Load(); err != nil {
			loadErr = fmt.Errorf("d3d12: load d3d12.dll: %w", err)
			return
		}
		dxgiDLL = windows.NewLazySystemDLL("dxgi.dll")
		if err := dxgiDLL.Load(); err != nil {
			loadErr = fmt.Errorf("d3d12: load dxgi.dll: %w", err)
			return
		}
		procD3D12CreateDevice = d3d12DLL.NewProc("D3D12CreateDevice")
		procCreateDXGIFactory2 = dxgiDLL.NewProc("CreateDXGIFactory2")
	})
	return loadErr
}

// comObject is the layout every COM interface this package touches starts
// with: a pointer to a vtable of function pointers. callCOM reinterprets a
// raw interface pointer as *comObject and indexes into vtbl by the
// interface's documented method ordinal; no wrapper type embeds it.
type comObject struct {
	vtbl *uintptr
}

func (o *comObject) method(index int) uintptr {
	base := unsafe.Pointer(o.vtbl)
	return *(*uintptr)(unsafe.Pointer(uintptr(base) + uintptr(index)*unsafe.Sizeof(uintptr(0))))
}

// callCOM invokes the COM method at vtable ordinal index on obj, passing
// args after the implicit "this" pointer. Used for the handful of vtable
// calls this backend issues for real: AddRef/Release (ordinals 1/2, common
// to every COM interface), and the device/queue/fence methods named at each
// call site.
func callCOM(obj unsafe.Pointer, index int, args ...uintptr) (uintptr, error) {
	o := (*comObject)(obj)
	full := append([]uintptr{uintptr(obj)}, args...)
	ret, _, _ := syscall.SyscallN(o.method(index), full...)
	return ret, nil
}

const (
	iUnknownRelease = 2

	iD3D12DeviceCreateCommandQueue     = 8
	iD3D12DeviceCreateCommandAllocator = 9
	iD3D12DeviceCreateFence            = 36

	iD3D12CommandQueueExecuteCommandLists = 10
	iD3D12CommandQueueSignal               = 14

	iD3D12FenceGetCompletedValue   = 8
	iD3D12FenceSetEventOnCompletion = 9
	iD3D12FenceSignal              = 10
)

func comRelease(obj unsafe.Pointer) {
	if obj == nil {
		return
	}
	_, _ = callCOM(obj, iUnknownRelease)
}

func hresultOK(hr uintptr) bool { return int32(hr) >= 0 }
