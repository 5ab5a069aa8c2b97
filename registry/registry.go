// Package registry implements the per-pipeline/persistent resource
// registry spec.md §4.4 describes: the publish/lookup mechanism nodes use
// to wire a RenderPipeline's resources together by name, plus the
// dependency-edge bookkeeping and cross-reconstruction texture reuse that
// make pipeline rebuilds cheap.
package registry

import (
	"fmt"
	"sync"

	render "github.com/arkose-engine/render"
	"github.com/arkose-engine/render/hal"
)

// Lifetime selects how long a Registry's resources live, spec.md §4 data
// model: "a Registry is either per-pipeline ... or persistent".
type Lifetime int

const (
	// PerPipeline resources are destroyed on the next pipeline
	// (re)construction.
	PerPipeline Lifetime = iota
	// Persistent resources live until backend shutdown.
	Persistent
)

// CreateResult reports whether createOrReuseTexture2D created a fresh
// texture or moved one forward from the previous registry, spec.md §4.4.
type CreateResult int

const (
	Created CreateResult = iota
	Reused
)

type publication[T any] struct {
	resource  T
	publisher string
}

type edge struct{ consumer, producer string }

// Registry owns every resource created through it, tracks which node
// published which name, and records a dependency edge on every lookup so a
// RenderPipeline can (optionally) validate or resolve execution order from
// them.
type Registry struct {
	backend  *render.Backend
	lifetime Lifetime
	previous *Registry

	mu sync.Mutex

	currentNode []string // stack, pushed/popped around each node's construct call

	buffers       map[string]publication[*render.Buffer]
	textures      map[string]publication[*render.Texture]
	samplers      map[string]publication[*render.Sampler]
	renderTargets map[string]publication[*render.RenderTarget]
	bindingSets   map[string]publication[*render.BindingSet]
	renderStates  map[string]publication[*render.RenderState]
	computeStates map[string]publication[*render.ComputeState]

	nodeNames map[string]bool
	edges     []edge

	ownedBuffers       []*render.Buffer
	ownedTextures      []*render.Texture
	ownedSamplers      []*render.Sampler
	ownedRenderTargets []*render.RenderTarget
	ownedBindingSets   []*render.BindingSet
	ownedRenderStates  []*render.RenderState
	ownedComputeStates []*render.ComputeState

	textureDescs map[string]hal.TextureDescriptor
}

// New creates an empty Registry. previous, if non-nil, is consulted by
// CreateOrReuseTexture2D to carry long-lived textures across a pipeline
// rebuild.
func New(backend *render.Backend, lifetime Lifetime, previous *Registry) *Registry {
	return &Registry{
		backend:       backend,
		lifetime:      lifetime,
		previous:      previous,
		buffers:       map[string]publication[*render.Buffer]{},
		textures:      map[string]publication[*render.Texture]{},
		samplers:      map[string]publication[*render.Sampler]{},
		renderTargets: map[string]publication[*render.RenderTarget]{},
		bindingSets:   map[string]publication[*render.BindingSet]{},
		renderStates:  map[string]publication[*render.RenderState]{},
		computeStates: map[string]publication[*render.ComputeState]{},
		nodeNames:     map[string]bool{},
		textureDescs:  map[string]hal.TextureDescriptor{},
	}
}

// PushNode marks name as the currently-constructing node; every Publish
// call until the matching PopNode attributes its name to this node.
func (r *Registry) PushNode(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentNode = append(r.currentNode, name)
	r.nodeNames[name] = true
}

// PopNode ends the current node's construct call.
func (r *Registry) PopNode() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.currentNode) > 0 {
		r.currentNode = r.currentNode[:len(r.currentNode)-1]
	}
}

func (r *Registry) currentNodeName() string {
	if len(r.currentNode) == 0 {
		return ""
	}
	return r.currentNode[len(r.currentNode)-1]
}

// HasPreviousNode reports whether name was a node in the previous
// construction, per spec.md §4.4, allowing a node to wire itself
// conditionally based on what existed last time.
func (r *Registry) HasPreviousNode(name string) bool {
	if r.previous == nil {
		return false
	}
	r.previous.mu.Lock()
	defer r.previous.mu.Unlock()
	return r.previous.nodeNames[name]
}

// CreateBuffer allocates and owns a Buffer.
func (r *Registry) CreateBuffer(desc hal.BufferDescriptor) (*render.Buffer, error) {
	buf, err := r.backend.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.ownedBuffers = append(r.ownedBuffers, buf)
	r.mu.Unlock()
	return buf, nil
}

// CreateTexture allocates and owns a Texture.
func (r *Registry) CreateTexture(desc hal.TextureDescriptor) (*render.Texture, error) {
	tex, err := r.backend.CreateTexture(desc)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.ownedTextures = append(r.ownedTextures, tex)
	r.mu.Unlock()
	return tex, nil
}

// CreateOrReuseTexture2D checks the previous registry for a published
// texture named name with an identical descriptor and, if found, moves it
// forward into this registry instead of recreating it, per spec.md §4.4.
func (r *Registry) CreateOrReuseTexture2D(name string, desc hal.TextureDescriptor) (*render.Texture, CreateResult, error) {
	if r.previous != nil {
		r.previous.mu.Lock()
		pub, ok := r.previous.textures[name]
		prevDesc, descOK := r.previous.textureDescs[name]
		r.previous.mu.Unlock()
		if ok && descOK && prevDesc == desc {
			r.mu.Lock()
			r.ownedTextures = append(r.ownedTextures, pub.resource)
			r.mu.Unlock()
			if err := r.Publish(name, pub.resource); err != nil {
				return nil, Created, err
			}
			r.mu.Lock()
			r.textureDescs[name] = desc
			r.mu.Unlock()
			return pub.resource, Reused, nil
		}
	}
	tex, err := r.CreateTexture(desc)
	if err != nil {
		return nil, Created, err
	}
	if err := r.Publish(name, tex); err != nil {
		return nil, Created, err
	}
	r.mu.Lock()
	r.textureDescs[name] = desc
	r.mu.Unlock()
	return tex, Created, nil
}

// CreateSampler allocates and owns a Sampler.
func (r *Registry) CreateSampler(desc hal.SamplerDescriptor) (*render.Sampler, error) {
	s, err := r.backend.CreateSampler(desc)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.ownedSamplers = append(r.ownedSamplers, s)
	r.mu.Unlock()
	return s, nil
}

// CreateRenderTarget allocates and owns a RenderTarget.
func (r *Registry) CreateRenderTarget(desc hal.RenderTargetDescriptor) (*render.RenderTarget, error) {
	rt, err := r.backend.CreateRenderTarget(desc)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.ownedRenderTargets = append(r.ownedRenderTargets, rt)
	r.mu.Unlock()
	return rt, nil
}

// CreateBindingSet allocates and owns a BindingSet.
func (r *Registry) CreateBindingSet(desc hal.BindingSetDescriptor) (*render.BindingSet, error) {
	bs, err := r.backend.CreateBindingSet(desc)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.ownedBindingSets = append(r.ownedBindingSets, bs)
	r.mu.Unlock()
	return bs, nil
}

// CreateRenderState compiles and owns a RenderState.
func (r *Registry) CreateRenderState(desc hal.RenderStateDescriptor) (*render.RenderState, error) {
	rs, err := r.backend.CreateRenderState(desc)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.ownedRenderStates = append(r.ownedRenderStates, rs)
	r.mu.Unlock()
	return rs, nil
}

// CreateComputeState compiles and owns a ComputeState.
func (r *Registry) CreateComputeState(desc hal.ComputeStateDescriptor) (*render.ComputeState, error) {
	cs, err := r.backend.CreateComputeState(desc)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.ownedComputeStates = append(r.ownedComputeStates, cs)
	r.mu.Unlock()
	return cs, nil
}

// Publish makes a resource this Registry owns visible under name to nodes
// constructed afterward. For buffers and textures, publishing a resource
// the Registry does not own, or a second resource under a name already
// taken for that kind, returns an error. Samplers, render targets, binding
// sets, render states and compute states are not checked: ownership is not
// verified and a second Publish under the same name replaces the first.
func (r *Registry) Publish(name string, res any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	publisher := r.currentNodeName()
	switch v := res.(type) {
	case *render.Buffer:
		if !owns(r.ownedBuffers, v) {
			return fmt.Errorf("registry: publish %q: buffer not owned by this registry", name)
		}
		if _, exists := r.buffers[name]; exists {
			return fmt.Errorf("registry: publish %q: name already published", name)
		}
		r.buffers[name] = publication[*render.Buffer]{resource: v, publisher: publisher}
	case *render.Texture:
		if !owns(r.ownedTextures, v) {
			return fmt.Errorf("registry: publish %q: texture not owned by this registry", name)
		}
		if _, exists := r.textures[name]; exists {
			return fmt.Errorf("registry: publish %q: name already published", name)
		}
		r.textures[name] = publication[*render.Texture]{resource: v, publisher: publisher}
	case *render.Sampler:
		r.samplers[name] = publication[*render.Sampler]{resource: v, publisher: publisher}
	case *render.RenderTarget:
		r.renderTargets[name] = publication[*render.RenderTarget]{resource: v, publisher: publisher}
	case *render.BindingSet:
		r.bindingSets[name] = publication[*render.BindingSet]{resource: v, publisher: publisher}
	case *render.RenderState:
		r.renderStates[name] = publication[*render.RenderState]{resource: v, publisher: publisher}
	case *render.ComputeState:
		r.computeStates[name] = publication[*render.ComputeState]{resource: v, publisher: publisher}
	default:
		return fmt.Errorf("registry: publish %q: unsupported resource type %T", name, res)
	}
	return nil
}

func owns[T comparable](owned []T, v T) bool {
	for _, o := range owned {
		if o == v {
			return true
		}
	}
	return false
}

func recordEdge(r *Registry, name, publisher string) {
	if publisher == "" {
		return
	}
	consumer := r.currentNodeName()
	if consumer == "" || consumer == publisher {
		return
	}
	r.edges = append(r.edges, edge{consumer: consumer, producer: publisher})
}

// GetBuffer looks up a published Buffer by name, recording a dependency
// edge from the current node to the publisher. A missing name returns
// (nil, false) without error, so nodes can adapt to optional wiring.
func (r *Registry) GetBuffer(name string) (*render.Buffer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.buffers[name]
	if !ok {
		return nil, false
	}
	recordEdge(r, name, pub.publisher)
	return pub.resource, true
}

// GetTexture looks up a published Texture by name.
func (r *Registry) GetTexture(name string) (*render.Texture, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.textures[name]
	if !ok {
		return nil, false
	}
	recordEdge(r, name, pub.publisher)
	return pub.resource, true
}

// GetSampler looks up a published Sampler by name.
func (r *Registry) GetSampler(name string) (*render.Sampler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.samplers[name]
	if !ok {
		return nil, false
	}
	recordEdge(r, name, pub.publisher)
	return pub.resource, true
}

// GetRenderTarget looks up a published RenderTarget by name.
func (r *Registry) GetRenderTarget(name string) (*render.RenderTarget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.renderTargets[name]
	if !ok {
		return nil, false
	}
	recordEdge(r, name, pub.publisher)
	return pub.resource, true
}

// GetBindingSet looks up a published BindingSet by name.
func (r *Registry) GetBindingSet(name string) (*render.BindingSet, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.bindingSets[name]
	if !ok {
		return nil, false
	}
	recordEdge(r, name, pub.publisher)
	return pub.resource, true
}

// GetRenderState looks up a published RenderState by name.
func (r *Registry) GetRenderState(name string) (*render.RenderState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.renderStates[name]
	if !ok {
		return nil, false
	}
	recordEdge(r, name, pub.publisher)
	return pub.resource, true
}

// GetComputeState looks up a published ComputeState by name.
func (r *Registry) GetComputeState(name string) (*render.ComputeState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.computeStates[name]
	if !ok {
		return nil, false
	}
	recordEdge(r, name, pub.publisher)
	return pub.resource, true
}

// Edges returns the recorded (consumer, producer) dependency pairs
// collected across every Get call since construction began.
func (r *Registry) Edges() []struct{ Consumer, Producer string } {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]struct{ Consumer, Producer string }, len(r.edges))
	for i, e := range r.edges {
		out[i] = struct{ Consumer, Producer string }{e.consumer, e.producer}
	}
	return out
}

// Destroy waits for the device to go idle (so no in-flight command list can
// still be touching these resources) and then drops every resource this
// Registry owns. This is the single destruction point spec.md §4.5
// describes for per-pipeline resources, called by frame.Scheduler.Rebuild
// after the replacement registry has been constructed. Only references are
// dropped, so a texture the replacement reused stays valid there.
func (r *Registry) Destroy() error {
	if err := r.backend.CompletePendingOperations(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ownedBuffers = nil
	r.ownedTextures = nil
	r.ownedSamplers = nil
	r.ownedRenderTargets = nil
	r.ownedBindingSets = nil
	r.ownedRenderStates = nil
	r.ownedComputeStates = nil
	r.buffers = map[string]publication[*render.Buffer]{}
	r.textures = map[string]publication[*render.Texture]{}
	r.samplers = map[string]publication[*render.Sampler]{}
	r.renderTargets = map[string]publication[*render.RenderTarget]{}
	r.bindingSets = map[string]publication[*render.BindingSet]{}
	r.renderStates = map[string]publication[*render.RenderState]{}
	r.computeStates = map[string]publication[*render.ComputeState]{}
	return nil
}
