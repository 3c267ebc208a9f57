// internal/refpath/doc.go

/*
Package refpath provides a structured representation for the address of a
configuration field, based on the canonical format `node.field`.

A field may carry an optional index into a tuple value, e.g.
`init.input_shape[0]`. Every reference held by the reference graph, every
error naming a field, and every traversal found in an HCL preset file is
converted to an Address, so formatting and parsing live in one place.
*/
package refpath
