package upload

import (
	"testing"

	render "github.com/arkose-engine/render"
	"github.com/arkose-engine/render/hal"
	_ "github.com/arkose-engine/render/internal/testhal"
	"github.com/arkose-engine/render/types"
)

func testBackend(t *testing.T) *render.Backend {
	t.Helper()
	b, err := render.Create(render.AppSpec{Name: "upload-test", PreferredBackend: types.BackendVulkan})
	if err != nil {
		t.Fatalf("render.Create() error = %v", err)
	}
	return b
}

// TestUploadWithinCapacityDoesNotGrow covers scenario S6's first half: a
// 1 MiB upload buffer accepting a 0.6 MiB upload in one frame without
// growing.
func TestUploadWithinCapacityDoesNotGrow(t *testing.T) {
	b := testBackend(t)
	const capacity = 1 << 20
	up, err := NewWithCapacity(b, capacity)
	if err != nil {
		t.Fatalf("NewWithCapacity() error = %v", err)
	}
	dst, err := b.CreateBuffer(hal.BufferDescriptor{Label: "dst", Size: capacity, Usage: types.BufferUsageStorage})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}

	data := make([]byte, (capacity*6)/10)
	op, err := up.Upload(data, dst, 0)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if up.capacity != capacity {
		t.Errorf("capacity = %d after in-budget upload, want unchanged %d", up.capacity, capacity)
	}
	if op.Size != uint64(len(data)) {
		t.Errorf("op.Size = %d, want %d", op.Size, len(data))
	}
}

// TestUploadGrowsOnOversizedFrame covers S6's second half: a subsequent
// frame uploading 1.5 MiB into a 1 MiB buffer grows it (doubling) rather
// than failing.
func TestUploadGrowsOnOversizedFrame(t *testing.T) {
	b := testBackend(t)
	const capacity = 1 << 20
	up, err := NewWithCapacity(b, capacity)
	if err != nil {
		t.Fatalf("NewWithCapacity() error = %v", err)
	}
	dst, err := b.CreateBuffer(hal.BufferDescriptor{Label: "dst", Size: 4 << 20, Usage: types.BufferUsageStorage})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}

	up.Reset()
	big := make([]byte, (capacity*15)/10)
	for i := range big {
		big[i] = byte(i)
	}
	if _, err := up.Upload(big, dst, 0); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if up.capacity != 2*capacity {
		t.Errorf("capacity after growth = %d, want %d", up.capacity, 2*capacity)
	}
	for i := range big {
		if up.staging[i] != big[i] {
			t.Fatalf("staging byte %d = %d, want %d (grow must preserve nothing relevant but not corrupt the new write)", i, up.staging[i], big[i])
		}
	}
}

func TestResetClearsPendingAndCursor(t *testing.T) {
	b := testBackend(t)
	up, err := New(b)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	dst, _ := b.CreateBuffer(hal.BufferDescriptor{Label: "dst", Size: 64, Usage: types.BufferUsageStorage})
	if _, err := up.Upload([]byte{1, 2, 3, 4}, dst, 0); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if len(up.Pending()) != 1 {
		t.Fatalf("Pending() length = %d before Reset, want 1", len(up.Pending()))
	}
	up.Reset()
	if len(up.Pending()) != 0 {
		t.Errorf("Pending() length = %d after Reset, want 0", len(up.Pending()))
	}
	if up.cursor != 0 {
		t.Errorf("cursor after Reset = %d, want 0", up.cursor)
	}
}

// TestFlushReplaysEveryPendingCopy covers testable property 9: bytes
// uploaded via UploadBuffer.Upload land in dst once flushed against a
// command list.
func TestFlushReplaysEveryPendingCopy(t *testing.T) {
	b := testBackend(t)
	up, err := New(b)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	dst, err := b.CreateBuffer(hal.BufferDescriptor{Label: "dst", Size: 16, Usage: types.BufferUsageReadback})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	payload := []byte{9, 8, 7, 6}
	if _, err := up.Upload(payload, dst, 4); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	alloc, err := b.Device().CreateCommandAllocator()
	if err != nil {
		t.Fatalf("CreateCommandAllocator() error = %v", err)
	}
	enc, err := b.Device().CreateCommandEncoder(alloc)
	if err != nil {
		t.Fatalf("CreateCommandEncoder() error = %v", err)
	}
	cl := render.NewCommandList(b, enc)
	if err := up.Flush(cl); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if err := dst.MapData(types.MapRead, 4, 4, func(got []byte) {
		for i, v := range payload {
			if got[i] != v {
				t.Errorf("dst byte %d = %d, want %d", i, got[i], v)
			}
		}
	}); err != nil {
		t.Fatalf("MapData() error = %v", err)
	}
}
