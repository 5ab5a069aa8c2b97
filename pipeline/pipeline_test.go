package pipeline

import (
	"testing"

	render "github.com/arkose-engine/render"
	"github.com/arkose-engine/render/hal"
	_ "github.com/arkose-engine/render/internal/testhal"
	"github.com/arkose-engine/render/registry"
	"github.com/arkose-engine/render/types"
	"github.com/arkose-engine/render/upload"
)

func testBackend(t *testing.T) *render.Backend {
	t.Helper()
	b, err := render.Create(render.AppSpec{Name: "pipeline-test", PreferredBackend: types.BackendVulkan})
	if err != nil {
		t.Fatalf("render.Create() error = %v", err)
	}
	return b
}

func TestConstructAllRunsNodesInDeclarationOrder(t *testing.T) {
	b := testBackend(t)
	r := registry.New(b, registry.PerPipeline, nil)
	p := New()

	var order []string
	p.AddNode(Lambda("first", func(scene any, reg *registry.Registry) (ExecuteCallback, error) {
		order = append(order, "first-construct")
		return func(render.AppState, *render.CommandList, *upload.Buffer) {}, nil
	}))
	p.AddNode(Lambda("second", func(scene any, reg *registry.Registry) (ExecuteCallback, error) {
		order = append(order, "second-construct")
		return func(render.AppState, *render.CommandList, *upload.Buffer) {}, nil
	}))

	if err := p.ConstructAll(nil, r); err != nil {
		t.Fatalf("ConstructAll() error = %v", err)
	}
	if want := []string{"first-construct", "second-construct"}; !equalStrings(order, want) {
		t.Errorf("construct order = %v, want %v", order, want)
	}
	if p.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", p.NodeCount())
	}

	var executed []string
	p.ForEachNodeInResolvedOrder(func(n Node, cb ExecuteCallback) {
		executed = append(executed, n.Name())
		cb(render.AppState{}, nil, nil)
	})
	if want := []string{"first", "second"}; !equalStrings(executed, want) {
		t.Errorf("execute order = %v, want %v", executed, want)
	}
}

func TestConstructAllPropagatesNodeError(t *testing.T) {
	b := testBackend(t)
	r := registry.New(b, registry.PerPipeline, nil)
	p := New()

	failErr := &hal.UnsupportedBackendError{Backend: types.BackendD3D12}
	p.AddNode(Lambda("broken", func(scene any, reg *registry.Registry) (ExecuteCallback, error) {
		return nil, failErr
	}))

	if err := p.ConstructAll(nil, r); err == nil {
		t.Error("ConstructAll() with a failing node = nil error, want error")
	}
}

func TestConstructAllDropsPriorContexts(t *testing.T) {
	b := testBackend(t)
	r := registry.New(b, registry.PerPipeline, nil)
	p := New()

	calls := 0
	p.AddNode(Lambda("n", func(scene any, reg *registry.Registry) (ExecuteCallback, error) {
		return func(render.AppState, *render.CommandList, *upload.Buffer) { calls++ }, nil
	}))

	if err := p.ConstructAll(nil, r); err != nil {
		t.Fatalf("first ConstructAll() error = %v", err)
	}
	if err := p.ConstructAll(nil, r); err != nil {
		t.Fatalf("second ConstructAll() error = %v", err)
	}

	invocations := 0
	p.ForEachNodeInResolvedOrder(func(n Node, cb ExecuteCallback) {
		invocations++
		cb(render.AppState{}, nil, nil)
	})
	if invocations != 1 {
		t.Errorf("invocations after rebuild = %d, want 1 (prior contexts must be dropped)", invocations)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
