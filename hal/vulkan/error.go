package vulkan

import "fmt"

// vkResult names the common negative VkResult codes this package checks
// for; the full enum has many more values the application layer above
// hal never needs to distinguish.
type vkResult int32

const (
	vkSuccess            vkResult = 0
	vkErrorOutOfDateKHR  vkResult = -1000001004
	vkErrorDeviceLost    vkResult = -4
)

func vkError(call string, result int32) error {
	return fmt.Errorf("vulkan: %s failed with VkResult %d", call, result)
}

func vkErrorf(format string, args ...any) error {
	return fmt.Errorf("vulkan: "+format, args...)
}
