package hclpreset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/specialistvlad/chirpcfg/internal/refpath"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// functions are the functions preset expressions may call.
func functions() map[string]function.Function {
	return map[string]function.Function{
		"min":   stdlib.MinFunc,
		"max":   stdlib.MaxFunc,
		"floor": stdlib.FloorFunc,
		"ceil":  stdlib.CeilFunc,
		"abs":   stdlib.AbsoluteFunc,
		"pow":   stdlib.PowFunc,
	}
}

// TraversalKey generates a stable, canonical string representation for an
// hcl.Traversal, suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	// e.g., base.shape[0]
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// addressOf maps a traversal onto the node field it reads. Steps past the
// field are left to the expression.
func addressOf(t hcl.Traversal) (refpath.Address, error) {
	if len(t) < 2 {
		return refpath.Address{}, fmt.Errorf("reference %q must name node.field", TraversalKey(t))
	}
	if _, ok := t[1].(hcl.TraverseAttr); !ok {
		return refpath.Address{}, fmt.Errorf("reference %q must name node.field", TraversalKey(t))
	}
	return refpath.Parse(TraversalKey(t[:2]))
}

// Translate turns an HCL expression into a graph value. References are
// checked against g when translated.
func Translate(g *refgraph.Graph, expr hcl.Expression) (refgraph.Value, error) {
	traversals := expr.Variables()
	if len(traversals) == 0 {
		v, diags := expr.Value(&hcl.EvalContext{Functions: functions()})
		if diags.HasErrors() {
			return nil, diags
		}
		return refgraph.Lit(v), nil
	}

	if ref, ok, err := bareReference(g, expr); ok || err != nil {
		return ref, err
	}

	// Operands are the distinct node fields the expression reads, in a
	// stable order.
	seen := make(map[refpath.Address]bool)
	var addrs []refpath.Address
	for _, t := range traversals {
		addr, err := addressOf(t)
		if err != nil {
			return nil, err
		}
		if !seen[addr] {
			seen[addr] = true
			addrs = append(addrs, addr)
		}
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Less(addrs[j]) })

	operands := make([]refgraph.Value, len(addrs))
	for i, addr := range addrs {
		ref, err := g.RefAddr(addr)
		if err != nil {
			return nil, err
		}
		operands[i] = ref
	}

	rng := expr.Range()
	return refgraph.Compute(rng.String(), func(args []cty.Value) (cty.Value, error) {
		return evaluate(expr, addrs, args)
	}, operands...), nil
}

// bareReference handles expressions that are exactly node.field or
// node.field[i]; ok reports whether expr had that shape.
func bareReference(g *refgraph.Graph, expr hcl.Expression) (refgraph.Value, bool, error) {
	t, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(t) < 2 || len(t) > 3 {
		return nil, false, nil
	}
	addr, err := addressOf(t)
	if err != nil {
		return nil, true, err
	}
	if len(t) == 3 {
		idx, ok := t[2].(hcl.TraverseIndex)
		if !ok || !idx.Key.Type().Equals(cty.Number) {
			return nil, false, nil
		}
		i, acc := idx.Key.AsBigFloat().Int64()
		if acc != 0 || i < 0 {
			return nil, true, fmt.Errorf("reference %q: index must be a non-negative whole number", TraversalKey(t))
		}
		addr = refpath.NewWithIndex(addr.Node, addr.Field, int(i))
	}
	ref, err := g.RefAddr(addr)
	if err != nil {
		return nil, true, err
	}
	return ref, true, nil
}

// evaluate runs expr with the resolved operands bound as node objects.
func evaluate(expr hcl.Expression, addrs []refpath.Address, args []cty.Value) (cty.Value, error) {
	byNode := make(map[string]map[string]cty.Value)
	for i, addr := range addrs {
		if byNode[addr.Node] == nil {
			byNode[addr.Node] = make(map[string]cty.Value)
		}
		byNode[addr.Node][addr.Field] = args[i]
	}
	vars := make(map[string]cty.Value, len(byNode))
	for node, fields := range byNode {
		vars[node] = cty.ObjectVal(fields)
	}

	v, diags := expr.Value(&hcl.EvalContext{Variables: vars, Functions: functions()})
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating %s: %w", expr.Range(), diags)
	}
	return v, nil
}

// ParseAssignment parses "node.field=expression" as given on a command
// line. The expression uses the same syntax and references as preset files.
func ParseAssignment(g *refgraph.Graph, src string) (refpath.Address, refgraph.Value, error) {
	target, raw, ok := strings.Cut(src, "=")
	if !ok {
		return refpath.Address{}, nil, fmt.Errorf("assignment %q must have the form node.field=value", src)
	}

	addr, err := refpath.Parse(strings.TrimSpace(target))
	if err != nil {
		return refpath.Address{}, nil, err
	}
	if addr.HasIndex() {
		return refpath.Address{}, nil, fmt.Errorf("assignment %q cannot target a single element", src)
	}

	expr, diags := hclsyntax.ParseExpression([]byte(raw), "-set "+addr.String(), hcl.InitialPos)
	if diags.HasErrors() {
		return refpath.Address{}, nil, fmt.Errorf("failed to parse value for %s: %w", addr, diags)
	}
	v, err := Translate(g, expr)
	if err != nil {
		return refpath.Address{}, nil, fmt.Errorf("value for %s: %w", addr, err)
	}
	return addr, v, nil
}
