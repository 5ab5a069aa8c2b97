package shaderreflect

import "testing"

const testWGSL = `
struct PushConstants {
	color: vec4<f32>,
	intensity: f32,
}

@group(0) @binding(0) var<uniform> pc: PushConstants;

@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
	return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

func TestReflectConstantBufferLayout(t *testing.T) {
	table, err := reflectConstantBuffer(testWGSL, "PushConstants")
	if err != nil {
		t.Fatalf("reflectConstantBuffer: %v", err)
	}
	color, ok := table["color"]
	if !ok {
		t.Fatalf("expected field %q in table, got %v", "color", table)
	}
	if color.Offset != 0 || color.Size != 16 {
		t.Errorf("color: got offset=%d size=%d, want offset=0 size=16", color.Offset, color.Size)
	}
	intensity, ok := table["intensity"]
	if !ok {
		t.Fatalf("expected field %q in table, got %v", "intensity", table)
	}
	if intensity.Offset != 16 || intensity.Size != 4 {
		t.Errorf("intensity: got offset=%d size=%d, want offset=16 size=4", intensity.Offset, intensity.Size)
	}
}

func TestReflectConstantBufferMissingStructIsEmpty(t *testing.T) {
	table, err := reflectConstantBuffer(testWGSL, "NoSuchStruct")
	if err != nil {
		t.Fatalf("reflectConstantBuffer: %v", err)
	}
	if len(table) != 0 {
		t.Errorf("expected empty table for missing struct, got %v", table)
	}
}

func TestReflectConstantBufferUnsupportedFieldType(t *testing.T) {
	const wgsl = `
struct Bad {
	payload: SomeOpaqueHandle,
}
`
	if _, err := reflectConstantBuffer(wgsl, "Bad"); err == nil {
		t.Fatal("expected error for unsupported field type, got nil")
	}
}

func TestArrayLayout(t *testing.T) {
	size, align, err := wgslScalarLayout("array<f32, 4>")
	if err != nil {
		t.Fatalf("wgslScalarLayout: %v", err)
	}
	if size != 64 || align != 16 {
		t.Errorf("got size=%d align=%d, want size=64 align=16", size, align)
	}
}

func TestAlignUp(t *testing.T) {
	cases := []struct{ offset, align, want uint32 }{
		{0, 16, 0},
		{4, 16, 16},
		{16, 16, 16},
		{20, 16, 32},
		{5, 0, 5},
	}
	for _, c := range cases {
		if got := alignUp(c.offset, c.align); got != c.want {
			t.Errorf("alignUp(%d, %d) = %d, want %d", c.offset, c.align, got, c.want)
		}
	}
}
