// Package upload implements the per-frame bump-allocating UploadBuffer
// spec.md §4.8 describes: a fixed-capacity upload-heap buffer that nodes
// write into during command recording, paired with a CommandList copy to
// move the bytes into their destination buffer.
package upload

import (
	render "github.com/arkose-engine/render"
	"github.com/arkose-engine/render/core"
	"github.com/arkose-engine/render/hal"
	"github.com/arkose-engine/render/types"
)

const defaultCapacity = 32 * 1024 * 1024

// BufferCopyOperation describes one pending upload-to-destination copy,
// recorded by Upload and later replayed against a CommandList, per
// spec.md §4.8.
type BufferCopyOperation struct {
	SrcOffset uint64
	DstBuffer *render.Buffer
	DstOffset uint64
	Size      uint64
}

// Buffer is a per-frame bump allocator backed by an upload-heap Buffer.
// Reset rewinds the cursor at the start of each frame; if a frame's total
// upload volume exceeds capacity the backing buffer grows (doubling) and a
// warning is logged, per spec.md §4.8 ("this is permitted but undesirable").
type Buffer struct {
	backend  *render.Backend
	native   *render.Buffer
	capacity uint64
	cursor   uint64
	pending  []BufferCopyOperation
	staging  []byte
}

// New allocates an UploadBuffer with the default ~32 MiB capacity.
func New(backend *render.Backend) (*Buffer, error) {
	return NewWithCapacity(backend, defaultCapacity)
}

// NewWithCapacity allocates an UploadBuffer with an explicit initial
// capacity.
func NewWithCapacity(backend *render.Backend, capacity uint64) (*Buffer, error) {
	buf, err := backend.CreateBuffer(hal.BufferDescriptor{
		Label: "upload-buffer",
		Size:  capacity,
		Usage: types.BufferUsageUpload,
	})
	if err != nil {
		return nil, err
	}
	return &Buffer{backend: backend, native: buf, capacity: capacity, staging: make([]byte, capacity)}, nil
}

// Reset rewinds the bump-allocation cursor and clears pending copy
// operations. Called once at the start of every frame.
func (b *Buffer) Reset() {
	b.cursor = 0
	b.pending = b.pending[:0]
}

// Upload copies data into the upload region at the current cursor,
// advances the cursor, and records a BufferCopyOperation describing the
// pending copy into dst at dstOffset. Growing the backing buffer (doubling)
// happens transparently when data does not fit in the remaining capacity.
func (b *Buffer) Upload(data []byte, dst *render.Buffer, dstOffset uint64) (BufferCopyOperation, error) {
	size := uint64(len(data))
	if b.cursor+size > b.capacity {
		if err := b.grow(b.cursor + size); err != nil {
			return BufferCopyOperation{}, err
		}
	}
	copy(b.staging[b.cursor:], data)
	op := BufferCopyOperation{SrcOffset: b.cursor, DstBuffer: dst, DstOffset: dstOffset, Size: size}
	b.cursor += size
	b.pending = append(b.pending, op)
	return op, nil
}

func (b *Buffer) grow(minCapacity uint64) error {
	newCapacity := b.capacity
	for newCapacity < minCapacity {
		newCapacity *= 2
	}
	core.Log().Warn("upload buffer grown", "oldCapacity", b.capacity, "newCapacity", newCapacity)
	newNative, err := b.backend.CreateBuffer(hal.BufferDescriptor{Label: "upload-buffer", Size: newCapacity, Usage: types.BufferUsageUpload})
	if err != nil {
		return err
	}
	newStaging := make([]byte, newCapacity)
	copy(newStaging, b.staging)
	b.native = newNative
	b.staging = newStaging
	b.capacity = newCapacity
	return nil
}

// Native returns the backing Buffer the pending copies' src region lives in.
func (b *Buffer) Native() *render.Buffer { return b.native }

// Pending returns every BufferCopyOperation recorded since the last Reset.
func (b *Buffer) Pending() []BufferCopyOperation { return b.pending }

// Flush replays every pending copy operation against cl, moving staged
// bytes from the upload buffer into their destination buffers. Called by
// the frame scheduler once per frame, after every node's execute callback
// has run.
func (b *Buffer) Flush(cl *render.CommandList) error {
	if b.cursor > 0 {
		if err := b.native.UpdateData(b.staging[:b.cursor], b.cursor, 0); err != nil {
			return err
		}
	}
	for _, op := range b.pending {
		if err := cl.CopyBuffer(op.DstBuffer, op.DstOffset, b.native, op.SrcOffset, op.Size); err != nil {
			return err
		}
	}
	return nil
}
