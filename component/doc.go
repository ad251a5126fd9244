// Package component implements the setup-once component runtime: a
// component's setup function runs exactly once per instantiation to
// produce a render closure, lifecycle hooks, and (optionally) an error
// boundary; re-rendering is driven entirely by an external renderer
// wrapping the render closure in a reactive effect.
package component
