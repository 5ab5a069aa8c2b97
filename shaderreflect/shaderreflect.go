// Package shaderreflect turns WGSL shader source into the two things the
// rest of this module needs from a shader: backend-native bytecode and the
// reflected name->offset table for the named-uniform ("push constant")
// dispatch spec.md §4.3/§9 describes.
//
// Compilation goes through github.com/gogpu/naga exactly the way the
// teacher's hal/dx12 and hal/gles packages use it (naga.Parse, then
// naga.LowerWithSource, then a target-specific backend) and the way the
// teacher's cmd/vulkan-renderpass-test tool uses naga.Compile for a
// one-shot WGSL->SPIR-V path. Arkose only targets Vulkan and D3D12, so this
// package calls naga.Compile directly for SPIR-V. No HLSL path exists:
// hal/d3d12/resource.go's CreateShaderModule stores the blob it is given
// and does not invoke naga.
package shaderreflect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/naga"

	"github.com/arkose-engine/render/hal"
)

// Reflected is the result of compiling one WGSL module: SPIR-V bytecode
// ready for hal/vulkan's CreateShaderModule, plus the reflection table for
// the reserved descriptor-set-0 constant buffer spec.md §9 describes.
type Reflected struct {
	SPIRV []byte
	Table hal.ReflectionTable
}

// Compile parses and lowers wgsl with naga (validating it is well-formed
// WGSL before any bytecode is produced, the same parse-then-lower order the
// teacher's compileWGSLModule follows), compiles it to SPIR-V, and reflects
// the members of the set-0 uniform block named constantBufferName into a
// ReflectionTable.
//
// naga's public Module IR does not expose struct-member byte offsets
// directly through this module's vendored API surface, so the offset table
// is built by scanning the WGSL struct declaration for constantBufferName
// and laying out its members with std140 rules (each scalar/vec rounds up
// to its own size, 16 bytes for anything vec3-or-larger) — the same layout
// every backend's constant-buffer alignment already assumes (spec.md §4.2
// "ConstantBuffer sizes round up to 256-byte alignment" builds on the same
// member layout this produces).
func Compile(wgsl, constantBufferName string) (Reflected, error) {
	ast, err := naga.Parse(wgsl)
	if err != nil {
		return Reflected{}, fmt.Errorf("shaderreflect: parse: %w", err)
	}
	if _, err := naga.LowerWithSource(ast, wgsl); err != nil {
		return Reflected{}, fmt.Errorf("shaderreflect: lower: %w", err)
	}

	spirv, err := naga.Compile(wgsl)
	if err != nil {
		return Reflected{}, fmt.Errorf("shaderreflect: compile: %w", err)
	}

	table, err := reflectConstantBuffer(wgsl, constantBufferName)
	if err != nil {
		return Reflected{}, fmt.Errorf("shaderreflect: reflect %q: %w", constantBufferName, err)
	}

	return Reflected{SPIRV: spirv, Table: table}, nil
}

// reflectConstantBuffer finds `struct <name> { field: Type, ... }` in wgsl
// and lays out each field's (offset, size) using std140-style rules. Only
// the handful of scalar/vector WGSL types a named-uniform block plausibly
// carries are recognized; an unrecognized field type is a construction
// error rather than a silently wrong offset.
func reflectConstantBuffer(wgsl, name string) (hal.ReflectionTable, error) {
	body, ok := findStructBody(wgsl, name)
	if !ok {
		// No matching struct: an empty table is valid (a shader may have no
		// named uniforms), not an error.
		return hal.ReflectionTable{}, nil
	}

	table := make(hal.ReflectionTable)
	var cursor uint32
	for _, line := range strings.Split(body, ",") {
		line = strings.TrimSpace(strings.Trim(line, "\n\r\t "))
		if line == "" {
			continue
		}
		field, typ, err := splitField(line)
		if err != nil {
			return nil, err
		}
		size, align, err := wgslScalarLayout(typ)
		if err != nil {
			return nil, err
		}
		cursor = alignUp(cursor, align)
		table[field] = hal.NamedConstant{Offset: cursor, Size: size}
		cursor += size
	}
	return table, nil
}

func findStructBody(wgsl, name string) (string, bool) {
	needle := "struct " + name
	idx := strings.Index(wgsl, needle)
	if idx < 0 {
		return "", false
	}
	rest := wgsl[idx+len(needle):]
	open := strings.Index(rest, "{")
	if open < 0 {
		return "", false
	}
	rest = rest[open+1:]
	close := strings.Index(rest, "}")
	if close < 0 {
		return "", false
	}
	return rest[:close], true
}

func splitField(decl string) (field, typ string, err error) {
	parts := strings.SplitN(decl, ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed field declaration %q", decl)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// wgslScalarLayout reports (size, alignment) in bytes for the WGSL scalar
// and vector types a named-uniform constant buffer carries.
func wgslScalarLayout(typ string) (size, align uint32, err error) {
	switch {
	case typ == "f32" || typ == "i32" || typ == "u32":
		return 4, 4, nil
	case typ == "vec2<f32>" || typ == "vec2f":
		return 8, 8, nil
	case typ == "vec3<f32>" || typ == "vec3f":
		return 12, 16, nil
	case typ == "vec4<f32>" || typ == "vec4f":
		return 16, 16, nil
	case typ == "mat4x4<f32>" || typ == "mat4x4f":
		return 64, 16, nil
	case strings.HasPrefix(typ, "array<"):
		return arrayLayout(typ)
	default:
		return 0, 0, fmt.Errorf("unsupported named-uniform field type %q", typ)
	}
}

// arrayLayout handles `array<f32, N>`-style fixed-size arrays; every element
// is rounded to a 16-byte stride, the std140 array rule.
func arrayLayout(typ string) (size, align uint32, err error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(typ, "array<"), ">")
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed array type %q", typ)
	}
	count, convErr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if convErr != nil {
		return 0, 0, fmt.Errorf("array type %q: %w", typ, convErr)
	}
	return uint32(count) * 16, 16, nil
}

func alignUp(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	if rem := offset % align; rem != 0 {
		return offset + (align - rem)
	}
	return offset
}
