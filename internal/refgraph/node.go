package refgraph

import (
	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
)

// Node is one immutable level of configuration: an ordered set of uniquely
// named fields. New versions are produced by With, never by mutation.
type Node struct {
	name   string
	fields []Field
	index  map[string]int
}

func newNode(name string, fields []Field) (*Node, error) {
	if name == "" {
		return nil, cfgerr.Invalid("", "config node name cannot be empty")
	}
	n := &Node{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if err := checkField(name, f); err != nil {
			return nil, err
		}
		if _, dup := n.index[f.Name]; dup {
			return nil, cfgerr.Invalid(name+"."+f.Name, "field defined twice")
		}
		n.index[f.Name] = len(n.fields)
		n.fields = append(n.fields, f)
	}
	return n, nil
}

func checkField(node string, f Field) error {
	if f.Name == "" {
		return cfgerr.Invalid(node, "field name cannot be empty")
	}
	if f.Value == nil {
		return cfgerr.Invalid(node+"."+f.Name, "field has no value")
	}
	return nil
}

// Name returns the node's name within its graph.
func (n *Node) Name() string { return n.name }

// Len returns the number of fields.
func (n *Node) Len() int { return len(n.fields) }

// Fields returns a copy of the fields in declared order.
func (n *Node) Fields() []Field {
	out := make([]Field, len(n.fields))
	copy(out, n.fields)
	return out
}

// Names returns the field names in declared order.
func (n *Node) Names() []string {
	out := make([]string, len(n.fields))
	for i, f := range n.fields {
		out[i] = f.Name
	}
	return out
}

// Has reports whether the field is defined.
func (n *Node) Has(field string) bool {
	_, ok := n.index[field]
	return ok
}

// Get returns the unresolved value of a field.
func (n *Node) Get(field string) (Value, bool) {
	i, ok := n.index[field]
	if !ok {
		return nil, false
	}
	return n.fields[i].Value, true
}

// With returns a new node with updates layered on top. Later updates shadow
// earlier ones; fields the node does not have yet are appended.
func (n *Node) With(updates ...Field) (*Node, error) {
	for _, u := range updates {
		if err := checkField(n.name, u); err != nil {
			return nil, err
		}
	}
	merged := layer(n.fields, updates)
	next := &Node{name: n.name, fields: merged, index: make(map[string]int, len(merged))}
	for i, f := range merged {
		next.index[f.Name] = i
	}
	return next, nil
}
