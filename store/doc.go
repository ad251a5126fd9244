// Package store implements the process-wide store registry: named,
// lazily-instantiated singletons with composition helpers (derive, extend,
// compose) and introspection. A store's factory runs under its own
// long-lived scope, so anything it allocates through the reactive package
// is torn down cleanly by ResetStore/DisposeStore.
package store
