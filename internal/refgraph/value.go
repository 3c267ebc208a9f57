package refgraph

import (
	"github.com/specialistvlad/chirpcfg/internal/refpath"
	"github.com/zclconf/go-cty/cty"
)

// Value is the sealed set of things a config field can hold.
type Value interface {
	isValue()
}

// Literal is a plain value known at definition time.
type Literal struct {
	Val cty.Value
}

// Reference is a live pointer at another node's field.
type Reference struct {
	Target    refpath.Address
	Transform func(cty.Value) (cty.Value, error)
}

// Tuple is an ordered list of values.
type Tuple []Value

func (Literal) isValue()    {}
func (*Reference) isValue() {}
func (Tuple) isValue()      {}
func (*Computed) isValue()  {}
func (*Call) isValue()      {}

// Field is one named entry of a node or of a call's arguments.
type Field struct {
	Name  string
	Value Value
}

// F builds a Field.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Lit wraps an arbitrary cty value.
func Lit(v cty.Value) Literal { return Literal{Val: v} }

// Int builds an integer literal.
func Int(n int64) Literal { return Literal{Val: cty.NumberIntVal(n)} }

// Float builds a floating point literal.
func Float(f float64) Literal { return Literal{Val: cty.NumberFloatVal(f)} }

// Str builds a string literal.
func Str(s string) Literal { return Literal{Val: cty.StringVal(s)} }

// Bool builds a boolean literal.
func Bool(b bool) Literal { return Literal{Val: cty.BoolVal(b)} }

// Ints builds a tuple of integer literals.
func Ints(ns ...int64) Tuple {
	t := make(Tuple, len(ns))
	for i, n := range ns {
		t[i] = Int(n)
	}
	return t
}
