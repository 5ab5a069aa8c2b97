package registry

import (
	"testing"

	render "github.com/arkose-engine/render"
	"github.com/arkose-engine/render/hal"
	_ "github.com/arkose-engine/render/internal/testhal"
	"github.com/arkose-engine/render/types"
)

func testBackend(t *testing.T) *render.Backend {
	t.Helper()
	b, err := render.Create(render.AppSpec{Name: "registry-test", PreferredBackend: types.BackendVulkan})
	if err != nil {
		t.Fatalf("render.Create() error = %v", err)
	}
	return b
}

func textureDesc(label string, w, h uint32) hal.TextureDescriptor {
	return hal.TextureDescriptor{
		Label:  label,
		Type:   types.TextureType2D,
		Extent: types.Extent3D{Width: w, Height: h, Depth: 1},
		Format: types.FormatRGBA8,
	}
}

func TestPublishAndGetBuffer(t *testing.T) {
	b := testBackend(t)
	r := New(b, PerPipeline, nil)

	r.PushNode("producer")
	buf, err := r.CreateBuffer(hal.BufferDescriptor{Label: "vbuf", Size: 64, Usage: types.BufferUsageVertex})
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	if err := r.Publish("verts", buf); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	r.PopNode()

	r.PushNode("consumer")
	got, ok := r.GetBuffer("verts")
	r.PopNode()
	if !ok || got != buf {
		t.Fatalf("GetBuffer(%q) = (%v, %v), want (buf, true)", "verts", got, ok)
	}

	edges := r.Edges()
	if len(edges) != 1 || edges[0].Consumer != "consumer" || edges[0].Producer != "producer" {
		t.Errorf("Edges() = %+v, want one (consumer, producer) edge", edges)
	}
}

func TestGetMissingNameReturnsFalseNotError(t *testing.T) {
	b := testBackend(t)
	r := New(b, PerPipeline, nil)
	if _, ok := r.GetTexture("does-not-exist"); ok {
		t.Error("GetTexture(missing) ok = true, want false")
	}
}

func TestPublishDuplicateNameFails(t *testing.T) {
	b := testBackend(t)
	r := New(b, PerPipeline, nil)
	buf1, _ := r.CreateBuffer(hal.BufferDescriptor{Label: "a", Size: 4, Usage: types.BufferUsageStorage})
	buf2, _ := r.CreateBuffer(hal.BufferDescriptor{Label: "b", Size: 4, Usage: types.BufferUsageStorage})
	if err := r.Publish("dup", buf1); err != nil {
		t.Fatalf("first Publish() error = %v", err)
	}
	if err := r.Publish("dup", buf2); err == nil {
		t.Error("second Publish() under same name = nil error, want error")
	}
}

func TestPublishResourceNotOwnedFails(t *testing.T) {
	b := testBackend(t)
	r1 := New(b, PerPipeline, nil)
	r2 := New(b, PerPipeline, nil)
	buf, _ := r1.CreateBuffer(hal.BufferDescriptor{Label: "a", Size: 4, Usage: types.BufferUsageStorage})
	if err := r2.Publish("leak", buf); err == nil {
		t.Error("Publish() of another registry's resource = nil error, want error")
	}
}

func TestCreateOrReuseTexture2DAcrossRebuild(t *testing.T) {
	b := testBackend(t)
	desc := textureDesc("DepthPyramid", 512, 512)

	r1 := New(b, PerPipeline, nil)
	tex1, result1, err := r1.CreateOrReuseTexture2D("DepthPyramid", desc)
	if err != nil {
		t.Fatalf("first CreateOrReuseTexture2D() error = %v", err)
	}
	if result1 != Created {
		t.Errorf("first result = %v, want Created", result1)
	}

	// Unchanged description: the next registry should reuse tex1.
	r2 := New(b, PerPipeline, r1)
	tex2, result2, err := r2.CreateOrReuseTexture2D("DepthPyramid", desc)
	if err != nil {
		t.Fatalf("second CreateOrReuseTexture2D() error = %v", err)
	}
	if result2 != Reused {
		t.Errorf("second result = %v, want Reused", result2)
	}
	if tex2 != tex1 {
		t.Error("reused texture is a different object than the original")
	}

	// Changed description: a third registry chained to r2 must recreate.
	changedDesc := textureDesc("DepthPyramid", 256, 256)
	r3 := New(b, PerPipeline, r2)
	tex3, result3, err := r3.CreateOrReuseTexture2D("DepthPyramid", changedDesc)
	if err != nil {
		t.Fatalf("third CreateOrReuseTexture2D() error = %v", err)
	}
	if result3 != Created {
		t.Errorf("third result = %v, want Created", result3)
	}
	if tex3 == tex1 {
		t.Error("changed-description lookup reused the old texture, want a fresh one")
	}
}

func TestHasPreviousNode(t *testing.T) {
	b := testBackend(t)
	r1 := New(b, PerPipeline, nil)
	r1.PushNode("shadow-node")
	r1.PopNode()

	r2 := New(b, PerPipeline, r1)
	if !r2.HasPreviousNode("shadow-node") {
		t.Error("HasPreviousNode(\"shadow-node\") = false, want true")
	}
	if r2.HasPreviousNode("never-existed") {
		t.Error("HasPreviousNode(\"never-existed\") = true, want false")
	}
}
