// Package refgraph is the reference graph behind every preset: named config
// nodes whose fields hold literals, live references to other fields,
// computed values or deferred call descriptors.
//
// # Values
//
// A field's Value is one of:
//   - Literal: a cty.Value (number, string, bool, tuple of those).
//   - *Reference: the address of another node's field, plus an optional
//     transform. It stores the node name, never a copy of the value.
//   - *Computed: a pure function over other values, evaluated after its
//     operands resolve (e.g. window seconds times sample rate).
//   - Tuple: an ordered list of values, e.g. the stages of a pipeline.
//   - *Call: a deferred call descriptor naming a kind and its arguments.
//     Calls are resolved argument by argument but never invoked.
//
// # Nodes and the Graph
//
// A Node is an immutable, ordered field list. The Graph binds node names to
// their current Node. Override layers updates onto a node and rebinds the
// name to the new version, so every reference taken earlier observes the
// override at resolution time while older Node snapshots stay unchanged.
//
// # Resolution
//
// Resolve walks fields depth-first in declared order, memoising each
// node.field pair for the duration of one call. A field that is reached
// again while it is still being resolved is a cycle and fails with
// cfgerr.CyclicReferenceError; references to undefined fields fail with
// cfgerr.UnknownFieldError. Resolving the same graph twice yields identical
// results.
//
// # Thread-Safety
//
// Graph guards its bindings with a RWMutex and resolution works on a
// snapshot of them. Separate preset builds must use separate graphs; a
// graph shared between goroutines must not be overridden while it is
// being resolved.
package refgraph
