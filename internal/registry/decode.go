package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/chirpcfg/internal/ctxlog"
	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate checks every call, and every call nested in its arguments,
// against the registered kinds. All problems are reported in one error.
func (r *Registry) Validate(ctx context.Context, calls ...*refgraph.ResolvedCall) error {
	var errs []string
	for _, c := range calls {
		errs = r.check(c, c.Kind, errs)
	}

	ctxlog.FromContext(ctx).Debug("Validated call descriptors.", "calls", len(calls), "problems", len(errs))
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (r *Registry) check(c *refgraph.ResolvedCall, path string, errs []string) []string {
	if c == nil {
		return append(errs, fmt.Sprintf("%s: missing call", path))
	}
	entry, ok := r.entries[c.Kind]
	if !ok {
		return append(errs, fmt.Sprintf("%s: call kind '%s' is not registered", path, c.Kind))
	}

	scratch := reflect.New(entry.ArgsType).Elem()
	for _, a := range c.Args {
		argPath := path + "." + a.Name
		arg, ok := entry.arg(a.Name)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: call kind '%s' declares no argument '%s'", argPath, c.Kind, a.Name))
			continue
		}
		switch arg.kind {
		case argCall:
			nested, ok := a.Value.(*refgraph.ResolvedCall)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: expected a call", argPath))
				continue
			}
			errs = r.check(nested, argPath+"("+nested.Kind+")", errs)
		case argCallList:
			nested, err := callList(a.Value)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", argPath, err))
				continue
			}
			for i, n := range nested {
				errs = r.check(n, fmt.Sprintf("%s[%d](%s)", argPath, i, n.Kind), errs)
			}
		default:
			if err := decodeData(a.Value, arg, scratch.Field(arg.Field)); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", argPath, err))
			}
		}
	}
	return errs
}

// Decode fills target, a pointer to the argument struct registered for the
// call's kind, from the call's arguments. Nested calls are assigned as-is.
func (r *Registry) Decode(call *refgraph.ResolvedCall, target any) error {
	entry, ok := r.entries[call.Kind]
	if !ok {
		return fmt.Errorf("call kind '%s' is not registered", call.Kind)
	}
	tv := reflect.ValueOf(target)
	if tv.Kind() != reflect.Ptr || tv.IsNil() || tv.Elem().Type() != entry.ArgsType {
		return fmt.Errorf("call kind '%s' decodes into *%s, got %T", call.Kind, entry.ArgsType, target)
	}
	dst := tv.Elem()

	for _, a := range call.Args {
		arg, ok := entry.arg(a.Name)
		if !ok {
			return fmt.Errorf("call kind '%s' declares no argument '%s'", call.Kind, a.Name)
		}
		field := dst.Field(arg.Field)
		switch arg.kind {
		case argCall:
			nested, ok := a.Value.(*refgraph.ResolvedCall)
			if !ok {
				return fmt.Errorf("argument '%s' of %s: expected a call", a.Name, call.Kind)
			}
			field.Set(reflect.ValueOf(nested))
		case argCallList:
			nested, err := callList(a.Value)
			if err != nil {
				return fmt.Errorf("argument '%s' of %s: %w", a.Name, call.Kind, err)
			}
			field.Set(reflect.ValueOf(nested))
		default:
			if err := decodeData(a.Value, arg, field); err != nil {
				return fmt.Errorf("argument '%s' of %s: %w", a.Name, call.Kind, err)
			}
		}
	}
	return nil
}

// decodeData converts a plain data result to the argument's cty type and
// stores it into field.
func decodeData(res refgraph.Result, arg Arg, field reflect.Value) error {
	d, ok := res.(refgraph.Data)
	if !ok {
		return fmt.Errorf("expected plain data, got a call")
	}
	val, err := convert.Convert(d.Val, arg.Type)
	if err != nil {
		return fmt.Errorf("cannot use %s as %s: %w", friendly(d.Val), arg.Type.FriendlyName(), err)
	}
	return gocty.FromCtyValue(val, field.Addr().Interface())
}

func callList(res refgraph.Result) ([]*refgraph.ResolvedCall, error) {
	switch v := res.(type) {
	case refgraph.List:
		out := make([]*refgraph.ResolvedCall, len(v))
		for i, item := range v {
			c, ok := item.(*refgraph.ResolvedCall)
			if !ok {
				return nil, fmt.Errorf("element %d is not a call", i)
			}
			out[i] = c
		}
		return out, nil
	case refgraph.Data:
		if v.Val.Type().IsTupleType() && v.Val.LengthInt() == 0 {
			return []*refgraph.ResolvedCall{}, nil
		}
	}
	return nil, fmt.Errorf("expected a list of calls")
}

func friendly(v cty.Value) string {
	if v.Type() == cty.NilType {
		return "nothing"
	}
	return v.Type().FriendlyName()
}
