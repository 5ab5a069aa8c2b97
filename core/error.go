package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Registry/Storage lookups.
var (
	ErrInvalidHandle    = errors.New("render: invalid or zero handle")
	ErrResourceNotFound = errors.New("render: resource not found")
	ErrEpochMismatch    = errors.New("render: epoch mismatch, handle refers to a recycled slot")
)

// ConstructionError reports a violated invariant at resource-creation time.
// It is returned to the caller as a normal Go error; nothing in this module
// logs it or aborts the process on it.
type ConstructionError struct {
	Resource string
	Field    string
	Message  string
	Cause    error
}

func (e *ConstructionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Resource, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Resource, e.Message)
}

func (e *ConstructionError) Unwrap() error { return e.Cause }

// NewConstructionError builds a ConstructionError with a formatted message.
func NewConstructionError(resource, field, format string, args ...any) *ConstructionError {
	return &ConstructionError{Resource: resource, Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsConstructionError reports whether err is (or wraps) a ConstructionError.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}

// RecordingError reports a command recorded against an invalid CommandList
// state (e.g. a draw with no bound RenderState). It is returned to the
// caller and is neither logged nor fatal, in any build.
type RecordingError struct {
	Operation string
	Message   string
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("recording %s: %s", e.Operation, e.Message)
}

// NewRecordingError builds a RecordingError.
func NewRecordingError(operation, format string, args ...any) *RecordingError {
	return &RecordingError{Operation: operation, Message: fmt.Sprintf(format, args...)}
}

// IsRecordingError reports whether err is (or wraps) a RecordingError.
func IsRecordingError(err error) bool {
	var re *RecordingError
	return errors.As(err, &re)
}

// LimitError reports a value exceeding a device- or format-imposed limit.
type LimitError struct {
	Resource string
	Limit    string
	Actual   uint64
	Maximum  uint64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s: %s exceeded (got %d, max %d)", e.Resource, e.Limit, e.Actual, e.Maximum)
}

// FeatureError reports a missing required capability.
type FeatureError struct {
	Capability string
	Resource   string
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%s requires capability %q which is not enabled", e.Resource, e.Capability)
}
