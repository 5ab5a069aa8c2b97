package types

import "testing"

func TestBackendString(t *testing.T) {
	cases := map[Backend]string{
		BackendVulkan: "Vulkan",
		BackendD3D12:  "D3D12",
		Backend(99):   "Unknown",
	}
	for backend, want := range cases {
		if got := backend.String(); got != want {
			t.Errorf("Backend(%d).String() = %q, want %q", backend, got, want)
		}
	}
}

func TestCapabilityString(t *testing.T) {
	cases := map[Capability]string{
		CapabilityRayTracing:         "RayTracing",
		CapabilityMeshShading:        "MeshShading",
		CapabilityShader16BitFloat:   "Shader16BitFloat",
		CapabilityShaderBarycentrics: "ShaderBarycentrics",
		Capability(99):               "Unknown",
	}
	for cap, want := range cases {
		if got := cap.String(); got != want {
			t.Errorf("Capability(%d).String() = %q, want %q", cap, got, want)
		}
	}
}

func TestBufferUsageStorageCapable(t *testing.T) {
	tests := []struct {
		name  string
		usage BufferUsage
		want  bool
	}{
		{"vertex", BufferUsageVertex, true},
		{"index", BufferUsageIndex, true},
		{"storage", BufferUsageStorage, true},
		{"indirect", BufferUsageIndirect, true},
		{"readback", BufferUsageReadback, true},
		{"constant only", BufferUsageConstant, false},
		{"upload only", BufferUsageUpload, false},
		{"rtinstance only", BufferUsageRTInstance, false},
		{"combo", BufferUsageConstant | BufferUsageVertex, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.usage.StorageCapable(); got != tc.want {
				t.Errorf("StorageCapable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBufferUsageHas(t *testing.T) {
	u := BufferUsageVertex | BufferUsageStorage
	if !u.Has(BufferUsageVertex) {
		t.Error("expected Has(Vertex) true")
	}
	if !u.Has(BufferUsageStorage) {
		t.Error("expected Has(Storage) true")
	}
	if u.Has(BufferUsageIndex) {
		t.Error("expected Has(Index) false")
	}
}

func TestTextureFormatPredicates(t *testing.T) {
	tests := []struct {
		format               TextureFormat
		isDepth, isSRGB, isCompressed, storageCapable bool
	}{
		{FormatR8, false, false, false, true},
		{FormatRGBA8, false, false, false, true},
		{FormatSRGBA8, false, true, false, false},
		{FormatDepth32F, true, false, false, false},
		{FormatDepth24Stencil8, true, false, false, false},
		{FormatBC5, false, false, true, false},
		{FormatBC7, false, false, true, false},
		{FormatBC7sRGB, false, true, true, false},
	}
	for _, tc := range tests {
		if got := tc.format.IsDepth(); got != tc.isDepth {
			t.Errorf("%v.IsDepth() = %v, want %v", tc.format, got, tc.isDepth)
		}
		if got := tc.format.IsSRGB(); got != tc.isSRGB {
			t.Errorf("%v.IsSRGB() = %v, want %v", tc.format, got, tc.isSRGB)
		}
		if got := tc.format.IsCompressed(); got != tc.isCompressed {
			t.Errorf("%v.IsCompressed() = %v, want %v", tc.format, got, tc.isCompressed)
		}
		if got := tc.format.StorageCapable(); got != tc.storageCapable {
			t.Errorf("%v.StorageCapable() = %v, want %v", tc.format, got, tc.storageCapable)
		}
	}
}

func TestTextureFormatBytesPerTexel(t *testing.T) {
	tests := map[TextureFormat]int{
		FormatR8:      1,
		FormatR8Uint:  1,
		FormatR16F:    2,
		FormatR32F:    4,
		FormatRG16F:   4,
		FormatR32Uint: 4,
		FormatRG32F:   8,
		FormatRGBA16F: 8,
		FormatRGBA8:   4,
		FormatSRGBA8:  4,
		FormatRGBA32F: 16,
		FormatBC5:     0,
		FormatBC7:     0,
	}
	for format, want := range tests {
		if got := format.BytesPerTexel(); got != want {
			t.Errorf("%v.BytesPerTexel() = %d, want %d", format, got, want)
		}
	}
}

func TestExtent3DMipExtent(t *testing.T) {
	e := Extent3D{Width: 256, Height: 128, Depth: 1}
	tests := []struct {
		level int
		want  Extent3D
	}{
		{0, Extent3D{256, 128, 1}},
		{1, Extent3D{128, 64, 1}},
		{7, Extent3D{2, 1, 1}},
		{8, Extent3D{1, 1, 1}},
		{20, Extent3D{1, 1, 1}},
	}
	for _, tc := range tests {
		if got := e.MipExtent(uint32(tc.level)); got != tc.want {
			t.Errorf("MipExtent(%d) = %+v, want %+v", tc.level, got, tc.want)
		}
	}
}

func TestAttachmentTypeIsColor(t *testing.T) {
	for c := Color0; c <= Color7; c++ {
		if !c.IsColor() {
			t.Errorf("%v.IsColor() = false, want true", c)
		}
	}
	if Depth.IsColor() {
		t.Error("Depth.IsColor() = true, want false")
	}
}

func TestIndexTypeSize(t *testing.T) {
	if IndexTypeUInt16.Size() != 2 {
		t.Errorf("IndexTypeUInt16.Size() = %d, want 2", IndexTypeUInt16.Size())
	}
	if IndexTypeUInt32.Size() != 4 {
		t.Errorf("IndexTypeUInt32.Size() = %d, want 4", IndexTypeUInt32.Size())
	}
}

func TestShaderStageAny(t *testing.T) {
	stages := []ShaderStage{
		StageVertex, StageFragment, StageCompute, StageTask, StageMesh,
		StageRTRayGen, StageRTClosestHit, StageRTAnyHit, StageRTMiss, StageRTIntersection,
	}
	for _, s := range stages {
		if StageAny&s == 0 {
			t.Errorf("StageAny does not include %d", s)
		}
	}
}
