package component

import (
	"sync"

	"github.com/sprig-ui/sprig/observability"
	"github.com/sprig-ui/sprig/scope"
)

// Boundary guards a child component instance: if its render panics, the
// boundary catches it, reports it, and switches to a fallback render
// until Reset re-mounts a fresh child in a new scope.
type Boundary[P any, O any] struct {
	mu         sync.Mutex
	def        *Component[P, O]
	props      P
	fallback   func(err error) O
	boundary   *scope.Scope
	childScope *scope.Scope
	child      *Instance[P, O]
	err        error
}

// NewBoundary instantiates def as a guarded child of the currently active
// scope, using fallback to render while the child is in an error state.
func NewBoundary[P any, O any](def *Component[P, O], props P, fallback func(err error) O) *Boundary[P, O] {
	b := &Boundary[P, O]{def: def, props: props, fallback: fallback}
	b.boundary = scope.NewChild(scope.Current())
	b.mountChild()
	return b
}

func (b *Boundary[P, O]) mountChild() {
	childScope := scope.NewChild(b.boundary)
	child := b.def.instantiateIn(childScope, b.props)

	b.mu.Lock()
	b.childScope = childScope
	b.child = child
	b.err = nil
	b.mu.Unlock()
}

// Scope returns the boundary's own scope (the parent of whatever child
// instance is currently mounted).
func (b *Boundary[P, O]) Scope() *scope.Scope { return b.boundary }

// Render returns the fallback output while the boundary is in an error
// state, otherwise the child's rendered output. A panic escaping the
// child's render is caught here, reported, and converts this call (and
// every call until Reset) to the fallback.
func (b *Boundary[P, O]) Render() (out O) {
	b.mu.Lock()
	if b.err != nil {
		fb := b.fallback
		err := b.err
		b.mu.Unlock()
		return fb(err)
	}
	child := b.child
	b.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err := toError(r)
			b.mu.Lock()
			b.err = err
			fb := b.fallback
			b.mu.Unlock()
			observability.ReportComponentError(b.def.Name, err)
			out = fb(err)
		}
	}()
	return child.Render()
}

// FlushMount delegates to the currently mounted child, a no-op while the
// boundary is in an error state.
func (b *Boundary[P, O]) FlushMount() {
	b.mu.Lock()
	child := b.child
	inErr := b.err != nil
	b.mu.Unlock()
	if !inErr && child != nil {
		child.FlushMount()
	}
}

// Reset disposes the errored child's scope and mounts a fresh instance of
// def, clearing the error.
func (b *Boundary[P, O]) Reset() {
	b.mu.Lock()
	oldScope := b.childScope
	b.mu.Unlock()
	if oldScope != nil {
		oldScope.Dispose()
	}
	b.mountChild()
}
