package di

import "sync"

// Lifetime controls how many instances a provider produces.
type Lifetime int

const (
	// Singleton memoizes the first resolved instance per container.
	Singleton Lifetime = iota
	// Transient produces a fresh instance on every Resolve call.
	Transient
)

// Provider describes how to satisfy a token: a value, a factory, or a
// redirect to another token (useExisting).
type Provider[T any] struct {
	lifetime Lifetime
	build    func(c *Container) T
	existing string // non-empty for useExisting: the target token's id
}

// UseValue registers a fixed, already-constructed value as a singleton.
func UseValue[T any](v T) Provider[T] {
	return Provider[T]{lifetime: Singleton, build: func(*Container) T { return v }}
}

// UseFactory builds the instance by calling f, which may itself call
// Resolve against c to satisfy constructor dependencies. Dependencies
// resolved inside f are, by convention, resolved in the order f reads
// them (declaration order), so a cycle is detected at the point the
// cyclic call actually happens.
func UseFactory[T any](lifetime Lifetime, f func(c *Container) T) Provider[T] {
	return Provider[T]{lifetime: lifetime, build: f}
}

// UseExisting redirects resolution of this provider's token to another
// token, which must itself be registered (directly or in an ancestor).
func UseExisting[T any](existing Token[T]) Provider[T] {
	return Provider[T]{lifetime: Singleton, existing: existing.id}
}

type rawEntry struct {
	mu         sync.Mutex
	lifetime   Lifetime
	build      func(c *Container) any
	existingID string
	cached     any
	hasCached  bool
	resolving  bool
}

// Container is one node in the DI hierarchy.
type Container struct {
	mu         sync.RWMutex
	parent     *Container
	entries    map[string]*rawEntry
	extensions []Extension
}

// NewContainer creates a root container with no parent.
func NewContainer() *Container {
	return &Container{entries: map[string]*rawEntry{}}
}

// NewChildContainer creates a container that falls back to parent for any
// token it has no provider of its own for, the shape used for
// module-scoped and test-fixture containers.
func NewChildContainer(parent *Container) *Container {
	return &Container{parent: parent, entries: map[string]*rawEntry{}}
}

// Register binds token to provider in this container, shadowing any
// binding for the same token in an ancestor container.
func Register[T any](c *Container, token Token[T], p Provider[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token.id] = &rawEntry{
		lifetime:   p.lifetime,
		existingID: p.existing,
		build: func(cc *Container) any {
			return p.build(cc)
		},
	}
}

// Override replaces any existing binding for token; semantically
// identical to Register, named separately for call-site clarity in tests.
func Override[T any](c *Container, token Token[T], p Provider[T]) {
	Register(c, token, p)
}

// Has reports whether token has a provider in this container or any
// ancestor.
func Has[T any](c *Container, token Token[T]) bool {
	e, _ := c.find(token.id)
	return e != nil
}

func (c *Container) find(id string) (*rawEntry, *Container) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		e, ok := cur.entries[id]
		cur.mu.RUnlock()
		if ok {
			return e, cur
		}
	}
	return nil, nil
}

// Clear removes every provider and cached instance from this container. It
// does not affect ancestors.
func (c *Container) Clear() {
	c.mu.Lock()
	c.entries = map[string]*rawEntry{}
	c.mu.Unlock()
}

// UseExtension appends ext to the chain wrapped around every Resolve call
// made through this container.
func (c *Container) UseExtension(ext Extension) {
	c.mu.Lock()
	c.extensions = append(c.extensions, ext)
	c.mu.Unlock()
}

// Resolve satisfies token from this container or the nearest ancestor that
// has a provider for it. Singleton providers are memoized per owning
// container; transient providers run on every call. Like the rest of the
// core, Resolve assumes a single logical executor; see the note in the
// store package, which faces the identical tradeoff for the same reason.
func Resolve[T any](c *Container, token Token[T]) (T, error) {
	v, err := c.resolveRaw(token.id)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (c *Container) resolveRaw(id string) (any, error) {
	e, _ := c.find(id)
	if e == nil {
		return nil, &ErrUnknownToken{ID: id}
	}

	if e.existingID != "" {
		return c.resolveRaw(e.existingID)
	}

	c.mu.RLock()
	exts := c.extensions
	c.mu.RUnlock()

	run := func() (any, error) { return e.instantiate(id, c) }
	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		next := run
		run = func() (any, error) { return ext.WrapResolve(id, next) }
	}
	return run()
}

func (e *rawEntry) instantiate(id string, caller *Container) (v any, err error) {
	e.mu.Lock()
	if e.lifetime == Singleton && e.hasCached {
		v := e.cached
		e.mu.Unlock()
		return v, nil
	}
	if e.resolving {
		e.mu.Unlock()
		// Unwind through every factory on the cycle (which may ignore the
		// errors of their own Resolve calls) back to the resolution that
		// started it, so none of them caches a partial instance.
		panic(&ErrCircularDependency{ID: id})
	}
	e.resolving = true
	build := e.build
	e.mu.Unlock()

	defer func() {
		r := recover()
		if ce, ok := r.(*ErrCircularDependency); ok && ce.ID == id {
			v, err = nil, ce
		}
		e.mu.Lock()
		e.resolving = false
		if r == nil && err == nil && e.lifetime == Singleton {
			e.cached = v
			e.hasCached = true
		}
		e.mu.Unlock()
		if r != nil && err == nil {
			panic(r)
		}
	}()

	v = build(caller)
	return v, nil
}
