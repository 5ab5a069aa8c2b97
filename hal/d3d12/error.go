//go:build windows

package d3d12

import "fmt"

func dxError(call string, hr uintptr) error {
	return fmt.Errorf("d3d12: %s failed with HRESULT 0x%08X", call, uint32(hr))
}

func dxErrorf(format string, args ...any) error {
	return fmt.Errorf("d3d12: "+format, args...)
}
