// Package pipeline implements RenderPipelineNode and RenderPipeline,
// spec.md §4.5: declarative construct/execute nodes wired together through
// a registry.Registry, reconstructed whenever the backend signals a
// pipeline change.
package pipeline

import (
	render "github.com/arkose-engine/render"
	"github.com/arkose-engine/render/registry"
	"github.com/arkose-engine/render/upload"
)

// ExecuteCallback is invoked once per frame for a constructed node, per
// spec.md §4.5: "invoked every frame with (AppState, CommandList,
// UploadBuffer)".
type ExecuteCallback func(state render.AppState, cl *render.CommandList, up *upload.Buffer)

// Node declares a name and a construct method that wires its resources
// into the registry and returns the closure invoked every frame
// thereafter, per spec.md §4.5.
type Node interface {
	Name() string
	Construct(scene any, reg *registry.Registry) (ExecuteCallback, error)
}

// lambdaNode wraps a plain construct closure so callers can add a node
// without declaring a type, per spec.md §4.5's "lambda node variant".
type lambdaNode struct {
	name      string
	construct func(scene any, reg *registry.Registry) (ExecuteCallback, error)
}

func (n *lambdaNode) Name() string { return n.name }
func (n *lambdaNode) Construct(scene any, reg *registry.Registry) (ExecuteCallback, error) {
	return n.construct(scene, reg)
}

// Lambda builds a Node from a plain closure.
func Lambda(name string, construct func(scene any, reg *registry.Registry) (ExecuteCallback, error)) Node {
	return &lambdaNode{name: name, construct: construct}
}

type nodeContext struct {
	node     Node
	callback ExecuteCallback
}

// Pipeline holds the declared nodes and, after ConstructAll, the resolved
// execute contexts built from the most recent construction pass.
type Pipeline struct {
	nodes    []Node
	contexts []nodeContext
}

// New creates an empty Pipeline.
func New() *Pipeline { return &Pipeline{} }

// AddNode appends n to the declaration order used both for construction
// and (absent topological sorting) execution.
func (p *Pipeline) AddNode(n Node) { p.nodes = append(p.nodes, n) }

// ConstructAll pushes each node's name onto reg, invokes its Construct
// method, and replaces the stored execute contexts, per spec.md §4.5: "Any
// prior contexts are dropped first; this is the single destruction point
// for per-pipeline resources (preceded by a device-idle wait from the
// backend)." The device-idle wait itself happens in the caller,
// frame.Scheduler.Rebuild, which waits before calling ConstructAll with a
// fresh registry and runs registry.Registry.Destroy on the previous one
// afterwards.
func (p *Pipeline) ConstructAll(scene any, reg *registry.Registry) error {
	contexts := make([]nodeContext, 0, len(p.nodes))
	for _, n := range p.nodes {
		reg.PushNode(n.Name())
		cb, err := n.Construct(scene, reg)
		reg.PopNode()
		if err != nil {
			return err
		}
		contexts = append(contexts, nodeContext{node: n, callback: cb})
	}
	p.contexts = contexts
	return nil
}

// ForEachNodeInResolvedOrder visits each constructed node's callback in
// declaration order. spec.md §4.5 notes implementations MAY topologically
// sort using the Registry's recorded dependency edges instead; declaration
// order is documented there as an open question the reference leaves
// unresolved, and this implementation keeps declaration order.
func (p *Pipeline) ForEachNodeInResolvedOrder(fn func(Node, ExecuteCallback)) {
	for _, c := range p.contexts {
		fn(c.node, c.callback)
	}
}

// NodeCount returns the number of declared nodes.
func (p *Pipeline) NodeCount() int { return len(p.nodes) }
