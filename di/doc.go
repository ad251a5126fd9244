// Package di implements a hierarchical dependency-injection container:
// tokens resolve to singleton or transient instances, or redirect to
// another token via useExisting. A child container falls back to its
// parent for any token it has no provider for, so module- or
// test-scoped containers can override a handful of tokens while
// inheriting everything else from the root.
//
// Resolution supports Extensions, named middleware wrapped around every
// Resolve call, the mechanism by which cross-cutting concerns (metrics,
// tracing) attach to the container without it importing them.
package di
