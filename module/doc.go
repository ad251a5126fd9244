// Package module implements the bootstrap and teardown orchestration that
// wires DI providers, stores, and child modules together into a running
// application: a module is an immutable description of what a subtree of
// the app needs; bootstrapping walks the subtree depth-first, registering
// providers and initializing stores before running each module's own
// setup hook, and teardown reverses the order.
package module
