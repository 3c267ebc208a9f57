package preset

import (
	"context"
	"fmt"

	"github.com/specialistvlad/chirpcfg/internal/ctxlog"
	"github.com/specialistvlad/chirpcfg/internal/frontend"
	"github.com/specialistvlad/chirpcfg/internal/pipeline"
	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/specialistvlad/chirpcfg/internal/registry"
)

// Options describe one preset build.
type Options struct {
	Name string
	Base Params

	// Extra or replacement fields for the derived configs.
	Init  []refgraph.Field
	Train []refgraph.Field
	Eval  []refgraph.Field

	// Frontend replaces the derived mel-spectrogram descriptor when set.
	Frontend *refgraph.Call

	TrainData pipeline.Options
	EvalData  pipeline.Options
}

// Preset is an assembled, unresolved preset. Overrides may still be applied
// to its graph before Resolve.
type Preset struct {
	Name  string
	Graph *refgraph.Graph
}

// Build validates the options and defines every preset node on a new graph.
func Build(ctx context.Context, opts Options) (*Preset, error) {
	if err := opts.Base.Validate(); err != nil {
		return nil, err
	}
	ctx = ctxlog.With(ctx, "preset", opts.Name)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building preset.")

	g := refgraph.New()
	if _, err := g.Define(ctx, NodeBase, opts.Base.Fields()...); err != nil {
		return nil, err
	}
	if err := DefineInit(ctx, g, opts.Init...); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}
	if err := DefineTrain(ctx, g, opts.Train...); err != nil {
		return nil, fmt.Errorf("train config: %w", err)
	}
	if err := DefineEval(ctx, g, opts.Eval...); err != nil {
		return nil, fmt.Errorf("eval config: %w", err)
	}

	melspec := opts.Frontend
	if melspec == nil {
		var err error
		if melspec, err = frontend.MelSpectrogram(g, NodeBase); err != nil {
			return nil, fmt.Errorf("frontend config: %w", err)
		}
	}
	if _, err := g.Define(ctx, NodeFrontend, refgraph.F("config", melspec)); err != nil {
		return nil, err
	}

	if _, err := pipeline.Build(ctx, g, NodeBase, pipeline.Train, opts.TrainData); err != nil {
		return nil, err
	}
	if _, err := pipeline.Build(ctx, g, NodeBase, pipeline.Eval, opts.EvalData); err != nil {
		return nil, err
	}

	logger.Info("Preset built.", "nodes", len(g.Names()))
	return &Preset{Name: opts.Name, Graph: g}, nil
}

// Override applies updates to one node of the preset.
func (p *Preset) Override(ctx context.Context, node string, updates ...refgraph.Field) error {
	_, err := p.Graph.Override(ctx, node, updates...)
	return err
}

// Resolved is the terminal form of a preset.
type Resolved struct {
	Name  string
	Nodes []*refgraph.Resolved
	Train *pipeline.Spec
	Eval  *pipeline.Spec
}

// Node returns a resolved node by name.
func (r *Resolved) Node(name string) (*refgraph.Resolved, bool) {
	for _, n := range r.Nodes {
		if n.Node == name {
			return n, true
		}
	}
	return nil, false
}

// collectCalls appends the top-level calls held by r, looking through
// lists. Arguments of a call are left to the registry, which walks them.
func collectCalls(calls []*refgraph.ResolvedCall, r refgraph.Result) []*refgraph.ResolvedCall {
	switch v := r.(type) {
	case *refgraph.ResolvedCall:
		calls = append(calls, v)
	case refgraph.List:
		for _, item := range v {
			calls = collectCalls(calls, item)
		}
	}
	return calls
}

// Resolve resolves every node in one pass, then checks the resolved base
// parameters, every call descriptor against the default registry and the
// pipeline stage order.
func (p *Preset) Resolve(ctx context.Context) (*Resolved, error) {
	return p.ResolveWith(ctx, registry.Default())
}

// ResolveWith is Resolve with a caller-supplied registry.
func (p *Preset) ResolveWith(ctx context.Context, reg *registry.Registry) (*Resolved, error) {
	nodes, err := p.Graph.ResolveAll(ctx)
	if err != nil {
		return nil, err
	}
	out := &Resolved{Name: p.Name, Nodes: nodes}

	base, ok := out.Node(NodeBase)
	if !ok {
		return nil, fmt.Errorf("preset %q has no %s node", p.Name, NodeBase)
	}
	params, err := ParamsFrom(base)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var calls []*refgraph.ResolvedCall
	for _, n := range nodes {
		for _, f := range n.Fields {
			calls = collectCalls(calls, f.Value)
		}
	}
	if err := reg.Validate(ctx, calls...); err != nil {
		return nil, err
	}

	for _, v := range pipeline.Variants {
		n, ok := out.Node(v.NodeName())
		if !ok {
			return nil, fmt.Errorf("preset %q has no %s node", p.Name, v.NodeName())
		}
		spec, err := pipeline.FromResolved(n)
		if err != nil {
			return nil, err
		}
		if err := pipeline.CheckOrder(spec, v); err != nil {
			return nil, err
		}
		switch v {
		case pipeline.Train:
			out.Train = spec
		case pipeline.Eval:
			out.Eval = spec
		}
	}

	ctxlog.FromContext(ctx).Debug("Preset resolved.", "name", p.Name, "nodes", len(nodes), "calls", len(calls))
	return out, nil
}
