package core

import "testing"

func TestZipUnzip(t *testing.T) {
	tests := []struct {
		index Index
		epoch Epoch
	}{
		{0, 1},
		{1, 1},
		{42, 7},
		{0xFFFFFFFF, 0xFFFFFFFF},
	}
	for _, tc := range tests {
		raw := Zip(tc.index, tc.epoch)
		gotIndex, gotEpoch := raw.Unzip()
		if gotIndex != tc.index || gotEpoch != tc.epoch {
			t.Errorf("Zip(%d,%d).Unzip() = (%d,%d)", tc.index, tc.epoch, gotIndex, gotEpoch)
		}
		if raw.Index() != tc.index {
			t.Errorf("RawHandle.Index() = %d, want %d", raw.Index(), tc.index)
		}
		if raw.Epoch() != tc.epoch {
			t.Errorf("RawHandle.Epoch() = %d, want %d", raw.Epoch(), tc.epoch)
		}
	}
}

func TestRawHandleIsZero(t *testing.T) {
	if !RawHandle(0).IsZero() {
		t.Error("RawHandle(0).IsZero() = false, want true")
	}
	if Zip(0, 1).IsZero() {
		t.Error("Zip(0,1).IsZero() = true, want false")
	}
}

func TestHandleTypeSafety(t *testing.T) {
	bufHandle := NewHandle[BufferMarker](3, 1)
	texHandle := NewHandle[TextureMarker](3, 1)
	if bufHandle.Raw() != texHandle.Raw() {
		t.Fatal("expected identical raw representation across marker types")
	}
	if bufHandle.Index() != 3 || bufHandle.Epoch() != 1 {
		t.Errorf("unexpected handle fields: index=%d epoch=%d", bufHandle.Index(), bufHandle.Epoch())
	}
}

func TestHandleIsZero(t *testing.T) {
	var zero BufferHandle
	if !zero.IsZero() {
		t.Error("zero-value Handle.IsZero() = false, want true")
	}
	live := NewHandle[BufferMarker](0, 1)
	if live.IsZero() {
		t.Error("Handle at index 0 epoch 1 .IsZero() = true, want false")
	}
}

func TestHandleString(t *testing.T) {
	h := NewHandle[BufferMarker](5, 2)
	want := "Handle(5,2)"
	if got := h.String(); got != want {
		t.Errorf("Handle.String() = %q, want %q", got, want)
	}
}
