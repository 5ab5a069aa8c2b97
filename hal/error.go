package hal

import (
	"fmt"

	"github.com/arkose-engine/render/types"
)

// UnsupportedBackendError is returned by CreateInstance when the named
// backend has no registered constructor in this build (e.g. asking for
// BackendD3D12 in a binary built without the windows build tag that pulls
// in the d3d12 package's init()).
type UnsupportedBackendError struct {
	Backend types.Backend
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf("hal: backend %s is not registered in this build", e.Backend)
}

// NewUnsupportedBackendError builds an UnsupportedBackendError.
func NewUnsupportedBackendError(b types.Backend) *UnsupportedBackendError {
	return &UnsupportedBackendError{Backend: b}
}
