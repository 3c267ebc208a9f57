package refgraph

import (
	"fmt"
	"math"
	"math/big"

	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
	"github.com/zclconf/go-cty/cty"
)

// Computed derives a value from other values. Fn receives the resolved
// operands in order; operands must resolve to data, not calls.
type Computed struct {
	Name     string
	Operands []Value
	Fn       func(args []cty.Value) (cty.Value, error)
}

// Compute builds a Computed value.
func Compute(name string, fn func(args []cty.Value) (cty.Value, error), operands ...Value) *Computed {
	return &Computed{Name: name, Operands: operands, Fn: fn}
}

// wholeEpsilon is how far a product may sit from an integer and still be
// taken as that integer. Float window lengths like 0.3 s are not exact in
// binary.
const wholeEpsilon = 1e-6

// WholeProduct multiplies numeric operands and yields an integer. A product
// within wholeEpsilon of an integer is rounded to it; anything further off
// is a ConfigurationError naming field.
func WholeProduct(field string, operands ...Value) *Computed {
	return Compute("product", func(args []cty.Value) (cty.Value, error) {
		acc := new(big.Float).SetInt64(1)
		for i, a := range args {
			if err := requireNumber(a, i); err != nil {
				return cty.NilVal, err
			}
			acc.Mul(acc, a.AsBigFloat())
		}
		f, _ := acc.Float64()
		if math.IsInf(f, 0) {
			return cty.NilVal, cfgerr.Invalid(field, "product %s is out of range", acc.Text('g', -1))
		}
		rounded := math.Round(f)
		if math.Abs(f-rounded) > wholeEpsilon {
			return cty.NilVal, cfgerr.Invalid(field, "product %s is not a whole number", acc.Text('g', 10))
		}
		return cty.NumberIntVal(int64(rounded)), nil
	}, operands...)
}

func requireNumber(v cty.Value, pos int) error {
	if v.IsNull() || !v.IsKnown() || !v.Type().Equals(cty.Number) {
		return fmt.Errorf("operand %d must be a number, got %s", pos, typeName(v))
	}
	return nil
}

// typeName is FriendlyName that tolerates cty.NilVal.
func typeName(v cty.Value) string {
	if v.Type() == cty.NilType {
		return "nothing"
	}
	if v.IsNull() {
		return "null " + v.Type().FriendlyName()
	}
	return v.Type().FriendlyName()
}
