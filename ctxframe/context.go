package ctxframe

import (
	"sync"
	"sync/atomic"

	"github.com/sprig-ui/sprig/scope"
)

var ctxIDCounter uint64

func nextCtxID() uint64 { return atomic.AddUint64(&ctxIDCounter, 1) }

// frameNode is one binding in the frame chain: a context id/value pair
// plus the enclosing frame it shadows.
type frameNode struct {
	ctxID  uint64
	value  any
	parent *frameNode
}

var (
	regMu sync.RWMutex
	// heads holds, per scope, the innermost frame pushed directly in that
	// scope. A scope with no entry here inherits its parent scope's head.
	heads = map[*scope.Scope]*frameNode{}
)

func headFor(s *scope.Scope) *frameNode {
	regMu.RLock()
	defer regMu.RUnlock()
	for cur := s; cur != nil; cur = cur.Parent() {
		if f, ok := heads[cur]; ok {
			return f
		}
	}
	// A Provide with no active scope binds under the nil key; it acts as
	// the outermost frame for every scope chain with no binding of its own.
	return heads[nil]
}

// Context is a typed channel for ambient values: a Provider binds a value
// for its scope's descendants, and Consume retrieves the nearest bound
// value or the default.
type Context[T any] struct {
	id  uint64
	def T
}

// CreateContext returns a new context with the given default value, used
// whenever Consume is called with no enclosing Provider.
func CreateContext[T any](defaultValue T) *Context[T] {
	return &Context[T]{id: nextCtxID(), def: defaultValue}
}

// Provide binds value for the currently active scope and its descendants.
// The binding is undone automatically when that scope disposes; the
// returned function undoes it early. Calling Provide outside any scope
// binds for the lifetime of the process (there is nothing to dispose it).
func (c *Context[T]) Provide(value T) func() {
	s := scope.Current()
	parentFrame := headFor(s)

	regMu.Lock()
	prev, hadPrev := heads[s]
	heads[s] = &frameNode{ctxID: c.id, value: value, parent: parentFrame}
	regMu.Unlock()

	var once sync.Once
	restore := func() {
		once.Do(func() {
			regMu.Lock()
			if hadPrev {
				heads[s] = prev
			} else {
				delete(heads, s)
			}
			regMu.Unlock()
		})
	}

	if s != nil {
		s.OnCleanup(restore)
	}
	return restore
}

// Consume walks the frame chain from the currently active scope outward
// and returns the nearest value bound to c, or c's default if none exists.
func (c *Context[T]) Consume() T {
	s := scope.Current()
	for f := headFor(s); f != nil; f = f.parent {
		if f.ctxID == c.id {
			return f.value.(T)
		}
	}
	return c.def
}

// ConsumeIn is Consume but starting from an explicit scope rather than the
// one currently active, for callers (like the component runtime) that hold
// a scope reference without having pushed it onto the execution stack.
func (c *Context[T]) ConsumeIn(s *scope.Scope) T {
	for f := headFor(s); f != nil; f = f.parent {
		if f.ctxID == c.id {
			return f.value.(T)
		}
	}
	return c.def
}
