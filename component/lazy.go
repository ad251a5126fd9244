package component

import "sync"

// Lazy is a component definition whose body is not loaded until first
// instantiated. Concurrent first invocations share one in-flight load;
// a failed load poisons the Lazy so every later invocation returns the
// same wrapped error without re-running the loader.
type Lazy[P any, O any] struct {
	mu      sync.Mutex
	loader  func() (*Component[P, O], error)
	loading bool
	done    chan struct{}
	comp    *Component[P, O]
	err     error
}

// NewLazy wraps loader, which is expected to do the (possibly slow) work
// of producing a Component definition, e.g. reading it off a registry
// populated by a bundler-style code-split boundary in a real host app.
func NewLazy[P any, O any](loader func() (*Component[P, O], error)) *Lazy[P, O] {
	return &Lazy[P, O]{loader: loader}
}

// Resolve returns the loaded Component, starting the load if this is the
// first call. While loading it returns a *Pending error; callers await
// Pending.Done and call Resolve again. A failed load returns the same
// error, wrapping ErrLazyLoadFailed, on every subsequent call.
func (l *Lazy[P, O]) Resolve() (*Component[P, O], error) {
	l.mu.Lock()
	if l.err != nil {
		err := l.err
		l.mu.Unlock()
		return nil, err
	}
	if l.comp != nil {
		comp := l.comp
		l.mu.Unlock()
		return comp, nil
	}
	if l.loading {
		done := l.done
		l.mu.Unlock()
		return nil, &Pending{Done: done}
	}

	l.loading = true
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	go l.load(done)

	return nil, &Pending{Done: done}
}

func (l *Lazy[P, O]) load(done chan struct{}) {
	comp, err := l.loader()

	l.mu.Lock()
	l.loading = false
	if err != nil {
		l.err = wrapLazyErr(err)
	} else {
		l.comp = comp
	}
	l.mu.Unlock()

	close(done)
}

// Instantiate resolves the definition (blocking if a load is already in
// flight, matching Preload's semantics) and instantiates it. Use Resolve
// directly if the caller needs to cooperate with a Suspense-style boundary
// instead of blocking.
func (l *Lazy[P, O]) Instantiate(props P) (*Instance[P, O], error) {
	for {
		comp, err := l.Resolve()
		if comp != nil {
			return comp.Instantiate(props), nil
		}
		pending, ok := err.(*Pending)
		if !ok {
			return nil, err
		}
		<-pending.Done
	}
}

// Preload triggers the load if not already started and blocks until it
// completes, without instantiating anything.
func Preload[P any, O any](l *Lazy[P, O]) error {
	for {
		comp, err := l.Resolve()
		if comp != nil {
			return nil
		}
		pending, ok := err.(*Pending)
		if !ok {
			return err
		}
		<-pending.Done
	}
}
