package reactive

import (
	"sync"

	"github.com/sprig-ui/sprig/scope"
)

// Readable is the read-only view of a reactive cell shared by Source and
// Derivation: Get tracks, Peek does not.
type Readable[T any] interface {
	Get() T
	Peek() T
}

// Writable extends Readable with direct mutation. Only Source implements it.
type Writable[T any] interface {
	Readable[T]
	Set(v T)
	Update(fn func(T) T)
}

// Source is a writable reactive cell.
type Source[T any] struct {
	core   sourceCore
	mu     sync.Mutex
	value  T
	equals func(a, b T) bool
}

// SourceOption configures a Source at construction time.
type SourceOption[T any] func(*Source[T])

// WithEquals overrides the default reflect.DeepEqual comparison used to
// decide whether a Set actually changed the value.
func WithEquals[T any](eq func(a, b T) bool) SourceOption[T] {
	return func(s *Source[T]) { s.equals = eq }
}

// WithLabel attaches a human-readable name used by devtools snapshots.
func WithLabel[T any](label string) SourceOption[T] {
	return func(s *Source[T]) { s.core.label = label }
}

// NewSource creates a writable reactive cell anchored to the currently
// active scope, if any.
func NewSource[T any](initial T, opts ...SourceOption[T]) *Source[T] {
	s := &Source[T]{value: initial}
	s.core.id = nextID()
	for _, o := range opts {
		o(s)
	}
	registerCell(&s.core, "source", s.core.label)
	if cur := scope.Current(); cur != nil {
		id := s.core.id
		cur.OnCleanup(func() { unregisterCell(id) })
	}
	return s
}

func (s *Source[T]) eq(a, b T) bool {
	if s.equals != nil {
		return s.equals(a, b)
	}
	return defaultEquals(a, b)
}

// Get reads the value and, if a derivation or effect is currently tracking,
// subscribes it to this source.
func (s *Source[T]) Get() T {
	recordRead(&s.core)
	s.mu.Lock()
	v := s.value
	s.mu.Unlock()
	return v
}

// Peek reads the value without subscribing the current tracker.
func (s *Source[T]) Peek() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set writes a new value. If it compares equal to the current value under
// the configured equality, nothing happens: no observer is notified. This
// is the glitch-free short-circuit described by the reactive graph's
// equality contract.
func (s *Source[T]) Set(v T) {
	s.mu.Lock()
	if s.eq(s.value, v) {
		s.mu.Unlock()
		return
	}
	s.value = v
	s.mu.Unlock()

	notifyObservers(&s.core)
}

// Update reads the current value (without tracking) and writes the result
// of fn back through Set, so equality short-circuiting still applies.
func (s *Source[T]) Update(fn func(T) T) {
	s.mu.Lock()
	cur := s.value
	s.mu.Unlock()
	s.Set(fn(cur))
}
