// Package pipeline composes the training and evaluation data pipelines as
// ordered lists of deferred stage calls.
//
// Stage arguments that come from the base config (window sizes, batch size,
// class list, padding mask) are references, so a base override made after
// composition still reaches every stage that uses the value.
//
// # Ordering
//
// Both variants share these constraints:
//   - mixing happens before padding, padding before slicing, slicing before
//     batching
//   - normalisation happens after slicing
//
// The training variant also repeats indefinitely as its final stage. The
// evaluation variant is deterministic: it never shuffles, mixes, slices at a
// random offset or repeats, and its padding is not random.
package pipeline
