// Package cfgerr defines the errors raised while building and resolving a
// preset. All of them are authoring-time errors: they surface synchronously
// from define, override or resolve, before any stage or transform is
// constructed, and are never retried.
package cfgerr
