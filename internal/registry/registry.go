package registry

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	callType     = reflect.TypeOf((*refgraph.ResolvedCall)(nil))
	callListType = reflect.TypeOf([]*refgraph.ResolvedCall(nil))
)

// argKind tells how an argument is decoded.
type argKind int

const (
	argData argKind = iota
	argCall
	argCallList
)

// Arg describes one declared argument of a kind.
type Arg struct {
	Name  string
	Field int
	Type  cty.Type
	kind  argKind
}

// Entry is a registered kind and its argument struct.
type Entry struct {
	Kind     string
	ArgsType reflect.Type
	Args     []Arg
	byName   map[string]int
}

func (e *Entry) arg(name string) (Arg, bool) {
	i, ok := e.byName[name]
	if !ok {
		return Arg{}, false
	}
	return e.Args[i], true
}

// Registry holds the registered kinds of one application instance.
type Registry struct {
	entries map[string]*Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register declares kind with the argument struct of prototype, which must
// be a struct or a pointer to one. Registering a kind twice or passing an
// argument type with no cty equivalent panics.
func (r *Registry) Register(kind string, prototype any) {
	if _, exists := r.entries[kind]; exists {
		panic(fmt.Sprintf("call kind '%s' already registered", kind))
	}
	entry, err := newEntry(kind, prototype)
	if err != nil {
		panic(err.Error())
	}
	r.entries[kind] = entry
}

// Lookup returns the entry for kind.
func (r *Registry) Lookup(kind string) (*Entry, bool) {
	e, ok := r.entries[kind]
	return e, ok
}

// Kinds returns every registered kind, sorted.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newEntry(kind string, prototype any) (*Entry, error) {
	rt := reflect.TypeOf(prototype)
	if rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("call kind '%s': prototype must be a struct, got %v", kind, rt)
	}

	e := &Entry{Kind: kind, ArgsType: rt, byName: make(map[string]int)}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := field.Tag.Get("cty")
		if !field.IsExported() || name == "" || name == "-" {
			continue
		}
		if _, dup := e.byName[name]; dup {
			return nil, fmt.Errorf("call kind '%s': argument '%s' declared twice", kind, name)
		}

		arg := Arg{Name: name, Field: i}
		switch field.Type {
		case callType:
			arg.kind = argCall
			arg.Type = cty.DynamicPseudoType
		case callListType:
			arg.kind = argCallList
			arg.Type = cty.DynamicPseudoType
		default:
			ty, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface())
			if err != nil {
				return nil, fmt.Errorf("call kind '%s', argument '%s': could not imply cty type from Go field type %s: %v", kind, name, field.Type, err)
			}
			arg.Type = ty
		}
		e.byName[name] = len(e.Args)
		e.Args = append(e.Args, arg)
	}
	return e, nil
}
