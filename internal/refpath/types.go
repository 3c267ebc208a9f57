// internal/refpath/types.go
package refpath

// Address identifies one field on one named config node. Index is -1 when
// the address points at the whole field value.
type Address struct {
	Node  string
	Field string
	Index int
}

// New creates an address without an index.
func New(node, field string) Address {
	return Address{Node: node, Field: field, Index: -1}
}

// NewWithIndex creates an address that selects one element of a tuple field.
func NewWithIndex(node, field string, index int) Address {
	return Address{Node: node, Field: field, Index: index}
}

// HasIndex returns true if the address selects a tuple element.
func (a Address) HasIndex() bool {
	return a.Index != -1
}

// Key is the address with any index stripped; resolution memoises by key.
func (a Address) Key() Address {
	return New(a.Node, a.Field)
}
