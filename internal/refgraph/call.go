package refgraph

// Call describes "construct an object of kind Kind with these arguments".
// The graph never constructs anything; an external builder keyed by Kind
// consumes the resolved form.
type Call struct {
	Kind string
	Args []Field
}

// NewCall records an instantiation intent. Repeated argument names keep the
// position of the first occurrence and the value of the last.
func NewCall(kind string, args ...Field) *Call {
	return &Call{Kind: kind, Args: layer(nil, args)}
}

// Arg returns the unresolved argument with the given name.
func (c *Call) Arg(name string) (Value, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// layer copies base and applies updates on top: known names are replaced
// in place, unknown names are appended in update order.
func layer(base []Field, updates []Field) []Field {
	out := make([]Field, len(base), len(base)+len(updates))
	copy(out, base)
	pos := make(map[string]int, len(out))
	for i, f := range out {
		pos[f.Name] = i
	}
	for _, u := range updates {
		if i, ok := pos[u.Name]; ok {
			out[i] = u
			continue
		}
		pos[u.Name] = len(out)
		out = append(out, u)
	}
	return out
}
