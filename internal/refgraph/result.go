package refgraph

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Result is a fully resolved value: Data, *ResolvedCall or List. It holds
// no references.
type Result interface {
	isResult()
}

// Data is a resolved plain value.
type Data struct {
	Val cty.Value
}

// List is a resolved tuple that contains at least one call.
type List []Result

// ResolvedField is one named resolved entry.
type ResolvedField struct {
	Name  string
	Value Result
}

// ResolvedCall is a Call whose arguments are all resolved. It keeps the
// shape of the original call: same kind, same argument order.
type ResolvedCall struct {
	Kind string
	Args []ResolvedField
}

func (Data) isResult()          {}
func (List) isResult()          {}
func (*ResolvedCall) isResult() {}

// Arg returns the resolved argument with the given name.
func (c *ResolvedCall) Arg(name string) (Result, bool) {
	return lookup(c.Args, name)
}

// DataArg returns an argument that must be plain data.
func (c *ResolvedCall) DataArg(name string) (cty.Value, error) {
	r, ok := c.Arg(name)
	if !ok {
		return cty.NilVal, fmt.Errorf("call %s has no argument %q", c.Kind, name)
	}
	d, ok := r.(Data)
	if !ok {
		return cty.NilVal, fmt.Errorf("argument %q of call %s is not plain data", name, c.Kind)
	}
	return d.Val, nil
}

// Resolved is the terminal form of a node. It is not mutated after
// resolution.
type Resolved struct {
	Node   string
	Fields []ResolvedField
}

// Get returns a resolved field.
func (r *Resolved) Get(field string) (Result, bool) {
	return lookup(r.Fields, field)
}

// Value returns a field that must be plain data.
func (r *Resolved) Value(field string) (cty.Value, error) {
	res, ok := r.Get(field)
	if !ok {
		return cty.NilVal, fmt.Errorf("resolved node %q has no field %q", r.Node, field)
	}
	d, ok := res.(Data)
	if !ok {
		return cty.NilVal, fmt.Errorf("field %s.%s is not plain data", r.Node, field)
	}
	return d.Val, nil
}

// Call returns a field that must be a resolved call.
func (r *Resolved) Call(field string) (*ResolvedCall, error) {
	res, ok := r.Get(field)
	if !ok {
		return nil, fmt.Errorf("resolved node %q has no field %q", r.Node, field)
	}
	c, ok := res.(*ResolvedCall)
	if !ok {
		return nil, fmt.Errorf("field %s.%s is not a call", r.Node, field)
	}
	return c, nil
}

func lookup(fields []ResolvedField, name string) (Result, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// ToCty converts a result into a single cty value. Calls become objects
// with "kind" and "args" attributes; argument order is not kept by cty
// objects, use the Result tree itself where order matters.
func ToCty(r Result) cty.Value {
	switch v := r.(type) {
	case Data:
		return v.Val
	case List:
		if len(v) == 0 {
			return cty.EmptyTupleVal
		}
		items := make([]cty.Value, len(v))
		for i, item := range v {
			items[i] = ToCty(item)
		}
		return cty.TupleVal(items)
	case *ResolvedCall:
		return cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal(v.Kind),
			"args": fieldsToCty(v.Args),
		})
	default:
		return cty.NullVal(cty.DynamicPseudoType)
	}
}

// ToCty converts the whole node into a cty object.
func (r *Resolved) ToCty() cty.Value {
	return fieldsToCty(r.Fields)
}

func fieldsToCty(fields []ResolvedField) cty.Value {
	if len(fields) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(fields))
	for _, f := range fields {
		attrs[f.Name] = ToCty(f.Value)
	}
	return cty.ObjectVal(attrs)
}
