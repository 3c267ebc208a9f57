// Package registry maps call kinds to the Go argument structs an external
// builder decodes them into.
//
// Every kind a preset can emit is registered once with a prototype struct
// whose fields carry `cty` tags. The registry then checks resolved call
// trees against those prototypes before they leave the process: unknown
// kinds, undeclared arguments and arguments that cannot convert to the
// declared Go type are all reported together, in the same spirit as a
// startup parity check between manifests and handlers.
//
// Argument fields of type *refgraph.ResolvedCall or []*refgraph.ResolvedCall
// accept nested calls; every other field type must have an implied cty type.
// Arguments are optional; a builder fills in its own defaults.
package registry
