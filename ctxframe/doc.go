// Package ctxframe implements context propagation: scope-indexed frames
// that let a component read a value provided by an ancestor without prop
// drilling. It is named ctxframe rather than context to avoid colliding
// with the standard library's context package, which the ssr package uses
// for an unrelated purpose (see DESIGN.md).
//
// A frame chain parallels the scope tree: Provide pushes a value onto the
// scope active when it's called, and the push is undone automatically when
// that scope disposes. Consume walks the frame chain starting at the
// currently active scope, falling back through ancestor scopes until it
// finds a binding for the context or reaches the context's default value.
package ctxframe
