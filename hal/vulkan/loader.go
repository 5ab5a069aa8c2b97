// Package vulkan implements the Vulkan hal.Device/hal.Instance backend.
// Entry-point resolution and calls follow the teacher's
// "goffi expects args[] to contain pointers to WHERE argument values are
// stored" calling convention: every scalar argument is passed as a pointer
// to its storage, and every native pointer argument is passed as a pointer
// to a variable holding that pointer.
package vulkan

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	"github.com/go-webgpu/goffi/types"
)

var (
	vulkanLib             unsafe.Pointer
	vkGetInstanceProcAddr unsafe.Pointer
	cifGetInstanceProcAddr types.CallInterface

	initOnce sync.Once
	initErr  error
)

func libraryName() string {
	switch runtime.GOOS {
	case "windows":
		return "vulkan-1.dll"
	case "darwin":
		return "libvulkan.dylib"
	default:
		return "libvulkan.so.1"
	}
}

// ensureLoaded loads libvulkan and resolves vkGetInstanceProcAddr exactly
// once per process.
func ensureLoaded() error {
	initOnce.Do(func() {
		var err error
		vulkanLib, err = ffi.LoadLibrary(libraryName())
		if err != nil {
			initErr = fmt.Errorf("vulkan: load %s: %w", libraryName(), err)
			return
		}
		vkGetInstanceProcAddr, err = ffi.GetSymbol(vulkanLib, "vkGetInstanceProcAddr")
		if err != nil {
			initErr = fmt.Errorf("vulkan: vkGetInstanceProcAddr not found: %w", err)
			return
		}
		// PFN_vkVoidFunction vkGetInstanceProcAddr(VkInstance, const char*)
		err = ffi.PrepareCallInterface(&cifGetInstanceProcAddr, types.DefaultCall,
			types.PointerTypeDescriptor,
			[]*types.TypeDescriptor{types.UInt64TypeDescriptor, types.PointerTypeDescriptor})
		if err != nil {
			initErr = fmt.Errorf("vulkan: prepare vkGetInstanceProcAddr interface: %w", err)
		}
	})
	return initErr
}

// getInstanceProcAddr resolves a global or instance-level Vulkan entry
// point. Pass instance=0 for global functions (vkCreateInstance,
// vkEnumerateInstance*).
func getInstanceProcAddr(instance uint64, name string) unsafe.Pointer {
	cname := append([]byte(name), 0)
	var result unsafe.Pointer
	namePtr := unsafe.Pointer(&cname[0])
	args := [2]unsafe.Pointer{unsafe.Pointer(&instance), unsafe.Pointer(&namePtr)}
	_ = ffi.CallFunction(&cifGetInstanceProcAddr, vkGetInstanceProcAddr, unsafe.Pointer(&result), args[:])
	return result
}

// proc is a lazily-resolved Vulkan entry point plus the calling convention
// needed to invoke it. cif is prepared once on first use.
type proc struct {
	name       string
	returns    *types.TypeDescriptor
	argTypes   []*types.TypeDescriptor
	addr       unsafe.Pointer
	cif        types.CallInterface
	cifReady   bool
}

func (p *proc) resolve(instance uint64) error {
	if p.addr == nil {
		p.addr = getInstanceProcAddr(instance, p.name)
		if p.addr == nil {
			return fmt.Errorf("vulkan: entry point %s not available", p.name)
		}
	}
	if !p.cifReady {
		if err := ffi.PrepareCallInterface(&p.cif, types.DefaultCall, p.returns, p.argTypes); err != nil {
			return fmt.Errorf("vulkan: prepare %s call interface: %w", p.name, err)
		}
		p.cifReady = true
	}
	return nil
}

func (p *proc) call(instance uint64, ret unsafe.Pointer, args ...unsafe.Pointer) error {
	if err := p.resolve(instance); err != nil {
		return err
	}
	return ffi.CallFunction(&p.cif, p.addr, ret, args)
}
