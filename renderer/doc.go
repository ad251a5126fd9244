// Package renderer is a reference implementation of the core's external
// renderer contract: open a root ownership scope, construct the root
// component inside it, wrap the component's render closure in an effect so
// output recomputes exactly when a tracked cell changes, flush onMount
// callbacks once that first output is attached, and dispose the root scope
// on unmount.
//
// It targets Bubbletea, the terminal-UI toolkit the rest of this corpus
// builds its own demos on (styling is left to the caller's Adapter), but it
// is glue code, not part of the
// core's public contract: nothing under component, reactive, scope, or
// module imports this package.
package renderer
