package core

import "testing"

func TestStorageInsertGet(t *testing.T) {
	s := NewStorage[string, BufferMarker](4)
	h := s.Insert("hello")
	got, ok := s.Get(h)
	if !ok || got != "hello" {
		t.Fatalf("Get() = (%q, %v), want (\"hello\", true)", got, ok)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}

func TestStorageEpochInvalidatesStaleHandle(t *testing.T) {
	s := NewStorage[string, BufferMarker](4)
	h1 := s.Insert("a")
	if _, ok := s.Remove(h1); !ok {
		t.Fatal("expected Remove to succeed")
	}
	h2 := s.Insert("b")
	if h2.Index() != h1.Index() {
		t.Fatalf("expected slot reuse, got index %d vs %d", h2.Index(), h1.Index())
	}
	if h2.Epoch() == h1.Epoch() {
		t.Fatal("expected epoch to bump on slot reuse")
	}
	if _, ok := s.Get(h1); ok {
		t.Error("stale handle from before removal unexpectedly still valid")
	}
	got, ok := s.Get(h2)
	if !ok || got != "b" {
		t.Errorf("Get(h2) = (%q, %v), want (\"b\", true)", got, ok)
	}
}

func TestStorageGetMut(t *testing.T) {
	s := NewStorage[int, BufferMarker](4)
	h := s.Insert(1)
	ok := s.GetMut(h, func(v *int) { *v = 42 })
	if !ok {
		t.Fatal("GetMut() = false, want true")
	}
	got, _ := s.Get(h)
	if got != 42 {
		t.Errorf("value after GetMut = %d, want 42", got)
	}
}

func TestStorageContainsOutOfRange(t *testing.T) {
	s := NewStorage[int, BufferMarker](4)
	bogus := NewHandle[BufferMarker](99, 1)
	if s.Contains(bogus) {
		t.Error("Contains() on out-of-range handle = true, want false")
	}
	if _, ok := s.Get(bogus); ok {
		t.Error("Get() on out-of-range handle = ok, want !ok")
	}
	if _, ok := s.Remove(bogus); ok {
		t.Error("Remove() on out-of-range handle = ok, want !ok")
	}
}

func TestStorageForEachStopsEarly(t *testing.T) {
	s := NewStorage[int, BufferMarker](4)
	s.Insert(1)
	s.Insert(2)
	s.Insert(3)
	seen := 0
	s.ForEach(func(h Handle[BufferMarker], v int) bool {
		seen++
		return seen < 2
	})
	if seen != 2 {
		t.Errorf("ForEach visited %d items, want 2 (early stop)", seen)
	}
}

func TestStorageClear(t *testing.T) {
	s := NewStorage[int, BufferMarker](4)
	h := s.Insert(1)
	s.Insert(2)
	s.Clear()
	if s.Count() != 0 || s.Capacity() != 0 {
		t.Errorf("after Clear: Count()=%d Capacity()=%d, want 0,0", s.Count(), s.Capacity())
	}
	if _, ok := s.Get(h); ok {
		t.Error("Get() after Clear unexpectedly succeeded")
	}
}

func TestStorageCapacityVsCount(t *testing.T) {
	s := NewStorage[int, BufferMarker](4)
	h1 := s.Insert(1)
	s.Insert(2)
	s.Remove(h1)
	if s.Capacity() != 2 {
		t.Errorf("Capacity() = %d, want 2 (slots never shrink)", s.Capacity())
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
}
