package refgraph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
	"github.com/specialistvlad/chirpcfg/internal/ctxlog"
	"github.com/specialistvlad/chirpcfg/internal/refpath"
	"github.com/zclconf/go-cty/cty"
)

// resolver holds the state of one resolution pass.
type resolver struct {
	nodes     map[string]*Node
	memo      map[refpath.Address]Result
	resolving map[refpath.Address]bool
	stack     []refpath.Address
}

func newResolver(nodes map[string]*Node) *resolver {
	return &resolver{
		nodes:     nodes,
		memo:      make(map[refpath.Address]Result),
		resolving: make(map[refpath.Address]bool),
	}
}

// Resolve resolves every field of the named node.
func (g *Graph) Resolve(ctx context.Context, node string) (*Resolved, error) {
	nodes, _ := g.snapshot()
	r := newResolver(nodes)
	res, err := r.resolveNode(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("resolving config node %q: %w", node, err)
	}
	return res, nil
}

// ResolveAll resolves every node in definition order within one pass, so
// shared references are computed once.
func (g *Graph) ResolveAll(ctx context.Context) ([]*Resolved, error) {
	nodes, order := g.snapshot()
	r := newResolver(nodes)
	out := make([]*Resolved, 0, len(order))
	for _, name := range order {
		res, err := r.resolveNode(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolving config node %q: %w", name, err)
		}
		out = append(out, res)
	}
	return out, nil
}

// ResolveValue resolves a free-standing value against the graph.
func (g *Graph) ResolveValue(ctx context.Context, v Value) (Result, error) {
	nodes, _ := g.snapshot()
	return newResolver(nodes).resolveValue(ctx, v)
}

func (r *resolver) resolveNode(ctx context.Context, name string) (*Resolved, error) {
	n, ok := r.nodes[name]
	if !ok {
		return nil, &cfgerr.UnknownFieldError{Node: name}
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving config node.", "node", name, "fields", n.Len())

	out := &Resolved{Node: name, Fields: make([]ResolvedField, 0, n.Len())}
	for _, f := range n.fields {
		res, err := r.resolveField(ctx, refpath.New(name, f.Name))
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, ResolvedField{Name: f.Name, Value: res})
	}
	return out, nil
}

func (r *resolver) resolveField(ctx context.Context, addr refpath.Address) (Result, error) {
	key := addr.Key()
	if res, ok := r.memo[key]; ok {
		return res, nil
	}
	if r.resolving[key] {
		return nil, r.cycle(key)
	}

	n, ok := r.nodes[key.Node]
	if !ok {
		return nil, &cfgerr.UnknownFieldError{Node: key.Node}
	}
	v, ok := n.Get(key.Field)
	if !ok {
		return nil, &cfgerr.UnknownFieldError{Node: key.Node, Field: key.Field}
	}

	r.resolving[key] = true
	r.stack = append(r.stack, key)
	res, err := r.resolveValue(ctx, v)
	r.stack = r.stack[:len(r.stack)-1]
	delete(r.resolving, key)
	if err != nil {
		return nil, err
	}

	r.memo[key] = res
	return res, nil
}

func (r *resolver) cycle(key refpath.Address) error {
	start := 0
	for i, a := range r.stack {
		if a == key {
			start = i
			break
		}
	}
	chain := make([]refpath.Address, 0, len(r.stack)-start+1)
	chain = append(chain, r.stack[start:]...)
	chain = append(chain, key)
	return &cfgerr.CyclicReferenceError{Chain: chain}
}

func (r *resolver) resolveValue(ctx context.Context, v Value) (Result, error) {
	switch val := v.(type) {
	case Literal:
		if val.Val.Type() == cty.NilType {
			return nil, cfgerr.Invalid(r.current(), "literal has no value")
		}
		return Data{Val: val.Val}, nil

	case *Reference:
		target, err := r.resolveField(ctx, val.Target)
		if err != nil {
			return nil, err
		}
		if val.Target.HasIndex() {
			if target, err = index(target, val.Target); err != nil {
				return nil, err
			}
		}
		if val.Transform == nil {
			return target, nil
		}
		d, ok := target.(Data)
		if !ok {
			return nil, cfgerr.Invalid(val.Target.String(), "transform applied to a call")
		}
		out, err := val.Transform(d.Val)
		if err != nil {
			return nil, fmt.Errorf("transforming %s: %w", val.Target, err)
		}
		if out.Type() == cty.NilType {
			return nil, cfgerr.Invalid(val.Target.String(), "transform produced no value")
		}
		return Data{Val: out}, nil

	case Tuple:
		items := make([]Result, len(val))
		allData := true
		for i, item := range val {
			res, err := r.resolveValue(ctx, item)
			if err != nil {
				return nil, err
			}
			if _, ok := res.(Data); !ok {
				allData = false
			}
			items[i] = res
		}
		if !allData {
			return List(items), nil
		}
		if len(items) == 0 {
			return Data{Val: cty.EmptyTupleVal}, nil
		}
		vals := make([]cty.Value, len(items))
		for i, item := range items {
			vals[i] = item.(Data).Val
		}
		return Data{Val: cty.TupleVal(vals)}, nil

	case *Computed:
		args := make([]cty.Value, len(val.Operands))
		for i, op := range val.Operands {
			res, err := r.resolveValue(ctx, op)
			if err != nil {
				return nil, err
			}
			d, ok := res.(Data)
			if !ok {
				return nil, cfgerr.Invalid(r.current(), "operand %d of %s is not plain data", i, val.Name)
			}
			args[i] = d.Val
		}
		out, err := val.Fn(args)
		if err != nil {
			return nil, fmt.Errorf("computing %s for %s: %w", val.Name, r.current(), err)
		}
		if out.Type() == cty.NilType {
			return nil, cfgerr.Invalid(r.current(), "%s produced no value", val.Name)
		}
		return Data{Val: out}, nil

	case *Call:
		out := &ResolvedCall{Kind: val.Kind, Args: make([]ResolvedField, 0, len(val.Args))}
		for _, a := range val.Args {
			res, err := r.resolveValue(ctx, a.Value)
			if err != nil {
				return nil, err
			}
			out.Args = append(out.Args, ResolvedField{Name: a.Name, Value: res})
		}
		return out, nil

	case nil:
		return nil, cfgerr.Invalid(r.current(), "nil value")

	default:
		return nil, cfgerr.Invalid(r.current(), "unsupported value type %T", v)
	}
}

// current names the field on top of the resolution stack, for errors.
func (r *resolver) current() string {
	if len(r.stack) == 0 {
		return ""
	}
	return r.stack[len(r.stack)-1].String()
}

func index(target Result, addr refpath.Address) (Result, error) {
	switch t := target.(type) {
	case Data:
		ty := t.Val.Type()
		if !(ty.IsTupleType() || ty.IsListType()) || t.Val.IsNull() {
			return nil, cfgerr.Invalid(addr.String(), "cannot index a %s value", typeName(t.Val))
		}
		if addr.Index >= t.Val.LengthInt() {
			return nil, cfgerr.Invalid(addr.String(), "index out of range")
		}
		return Data{Val: t.Val.Index(cty.NumberIntVal(int64(addr.Index)))}, nil
	case List:
		if addr.Index >= len(t) {
			return nil, cfgerr.Invalid(addr.String(), "index out of range")
		}
		return t[addr.Index], nil
	default:
		return nil, cfgerr.Invalid(addr.String(), "cannot index a call")
	}
}
