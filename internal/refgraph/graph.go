package refgraph

import (
	"context"
	"sync"

	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
	"github.com/specialistvlad/chirpcfg/internal/ctxlog"
	"github.com/specialistvlad/chirpcfg/internal/refpath"
	"github.com/zclconf/go-cty/cty"
)

// Graph binds node names to their current version for one preset build.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	order []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Define adds a new node built from an initial set of fields. No resolution
// happens here.
func (g *Graph) Define(ctx context.Context, name string, fields ...Field) (*Node, error) {
	n, err := newNode(name, fields)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.nodes[name]; exists {
		return nil, cfgerr.Invalid(name, "config node defined twice")
	}
	g.nodes[name] = n
	g.order = append(g.order, name)

	ctxlog.FromContext(ctx).Debug("Config node defined.", "node", name, "fields", n.Len())
	return n, nil
}

// Node returns the current version of a node.
func (g *Graph) Node(name string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[name]
	return n, ok
}

// Names returns node names in definition order.
func (g *Graph) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// RefOption customises a reference.
type RefOption func(*Reference)

// WithTransform applies fn to the target's resolved value.
func WithTransform(fn func(cty.Value) (cty.Value, error)) RefOption {
	return func(r *Reference) { r.Transform = fn }
}

// WithIndex selects one element of a tuple-valued target.
func WithIndex(i int) RefOption {
	return func(r *Reference) { r.Target.Index = i }
}

// Ref returns a reference to node.field. The field must already be defined
// on the node's current version; later overrides of it remain visible.
func (g *Graph) Ref(node, field string, opts ...RefOption) (*Reference, error) {
	n, ok := g.Node(node)
	if !ok {
		return nil, &cfgerr.UnknownFieldError{Node: node}
	}
	if !n.Has(field) {
		return nil, &cfgerr.UnknownFieldError{Node: node, Field: field}
	}
	r := &Reference{Target: refpath.New(node, field)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RefAddr is Ref for a parsed address, keeping its index.
func (g *Graph) RefAddr(addr refpath.Address, opts ...RefOption) (*Reference, error) {
	r, err := g.Ref(addr.Node, addr.Field, opts...)
	if err != nil {
		return nil, err
	}
	if addr.HasIndex() {
		r.Target.Index = addr.Index
	}
	return r, nil
}

// MustRef is like Ref but panics. Preset code uses it for fields it has
// just defined itself.
func (g *Graph) MustRef(node, field string, opts ...RefOption) *Reference {
	r, err := g.Ref(node, field, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Override layers updates onto the named node and rebinds the name to the
// result. Fields that do not exist yet are appended.
func (g *Graph) Override(ctx context.Context, node string, updates ...Field) (*Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	current, ok := g.nodes[node]
	if !ok {
		return nil, &cfgerr.UnknownFieldError{Node: node}
	}
	next, err := current.With(updates...)
	if err != nil {
		return nil, err
	}
	g.nodes[node] = next

	ctxlog.FromContext(ctx).Debug("Override applied.", "node", node, "updates", len(updates), "fields", next.Len())
	return next, nil
}

// snapshot copies the current bindings so resolution never holds the lock
// while calling user functions.
func (g *Graph) snapshot() (map[string]*Node, []string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	nodes := make(map[string]*Node, len(g.nodes))
	for k, v := range g.nodes {
		nodes[k] = v
	}
	order := make([]string, len(g.order))
	copy(order, g.order)
	return nodes, order
}
