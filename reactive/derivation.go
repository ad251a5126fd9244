package reactive

import (
	"sync"

	"github.com/sprig-ui/sprig/scope"
)

type derivState int

const (
	stateStale derivState = iota
	stateChecking
	stateClean
)

// derivationCore is the non-generic half of Derivation: it is both a
// dependency target (other cells can observe it) and an observer (it
// observes whatever it reads).
type derivationCore struct {
	sourceCore
	mu          sync.Mutex
	state       derivState
	deps        map[uint64]depTarget
	recomputeFn func() bool // runs the typed compute body; returns whether value changed
}

func (c *derivationCore) observerID() uint64 { return c.id }

// notify is called once per propagation wave reaching this derivation. If
// it already has no observers of its own it stays lazily stale; otherwise
// it recomputes right away so the cascade can short-circuit on equality.
func (c *derivationCore) notify() {
	c.mu.Lock()
	alreadyDirty := c.state != stateClean
	c.state = stateStale
	c.mu.Unlock()
	if alreadyDirty {
		return
	}
	if !c.hasObservers() {
		return
	}
	changed := c.safeRecompute()
	if changed {
		notifyObservers(&c.sourceCore)
	}
}

func (c *derivationCore) safeRecompute() (changed bool) {
	defer func() {
		if r := recover(); r != nil {
			reportPanic(r)
			changed = false
		}
	}()
	return c.recomputeFn()
}

// Derivation is a read-only cell whose value is computed from other cells.
type Derivation[T any] struct {
	core     derivationCore
	mu       sync.Mutex
	value    T
	hasValue bool
	equals   func(a, b T) bool
	compute  func() T
}

// DerivationOption configures a Derivation at construction time.
type DerivationOption[T any] func(*Derivation[T])

// WithDerivationEquals overrides the default reflect.DeepEqual comparison.
func WithDerivationEquals[T any](eq func(a, b T) bool) DerivationOption[T] {
	return func(d *Derivation[T]) { d.equals = eq }
}

// WithDerivationLabel attaches a human-readable name for devtools.
func WithDerivationLabel[T any](label string) DerivationOption[T] {
	return func(d *Derivation[T]) { d.core.label = label }
}

// NewDerivation creates a lazily-computed cell. compute is not run until
// the first read.
func NewDerivation[T any](compute func() T, opts ...DerivationOption[T]) *Derivation[T] {
	d := &Derivation[T]{compute: compute}
	d.core.id = nextID()
	d.core.state = stateStale
	for _, o := range opts {
		o(d)
	}
	d.core.recomputeFn = d.recomputeUnsafe
	registerCell(&d.core.sourceCore, "derivation", d.core.label)
	if cur := scope.Current(); cur != nil {
		id := d.core.id
		cur.OnCleanup(func() {
			unregisterCell(id)
			d.detachDeps()
		})
	}
	return d
}

func (d *Derivation[T]) detachDeps() {
	d.core.mu.Lock()
	deps := d.core.deps
	d.core.deps = nil
	d.core.mu.Unlock()
	for _, dep := range deps {
		dep.removeObserver(d.core.id)
	}
}

// recomputeUnsafe runs compute under tracking, reconciles the dependency
// set, and updates the stored value. A panic inside compute propagates to
// the caller unchanged; the derivation is left Stale so the next read
// retries, per the producer-error contract (the reader sees the failure,
// the cell's last good value is not silently served).
func (d *Derivation[T]) recomputeUnsafe() (changed bool) {
	frame := pushTrackingFrame()

	d.core.mu.Lock()
	d.core.state = stateChecking
	d.core.mu.Unlock()

	completed := false
	defer func() {
		popTrackingFrame()
		if !completed {
			d.core.mu.Lock()
			d.core.state = stateStale
			d.core.mu.Unlock()
		}
	}()

	newVal := d.compute()
	completed = true

	d.core.mu.Lock()
	oldDeps := d.core.deps
	d.core.deps = frame.newDeps
	d.core.mu.Unlock()
	reconcileDeps(&d.core, oldDeps, frame.newDeps)

	d.mu.Lock()
	hadValue := d.hasValue
	old := d.value
	eq := d.equals
	isEqual := hadValue && boolEquals(eq, old, newVal)
	d.value = newVal
	d.hasValue = true
	d.mu.Unlock()

	d.core.mu.Lock()
	d.core.state = stateClean
	d.core.mu.Unlock()

	return !isEqual
}

func boolEquals[T any](eq func(a, b T) bool, a, b T) bool {
	if eq != nil {
		return eq(a, b)
	}
	return defaultEquals(a, b)
}

// Get reads the derivation's value, recomputing first if stale, and
// subscribes the current tracker (if any).
func (d *Derivation[T]) Get() T {
	d.core.mu.Lock()
	stale := d.core.state != stateClean
	d.core.mu.Unlock()
	if stale {
		d.recomputeUnsafe()
	}

	recordRead(&d.core.sourceCore)

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Peek reads the up-to-date value without subscribing the current tracker.
func (d *Derivation[T]) Peek() T {
	d.core.mu.Lock()
	stale := d.core.state != stateClean
	d.core.mu.Unlock()
	if stale {
		d.recomputeUnsafe()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// readonlyView adapts a Source into the Readable interface, hiding Set.
type readonlyView[T any] struct {
	get  func() T
	peek func() T
}

func (r *readonlyView[T]) Get() T  { return r.get() }
func (r *readonlyView[T]) Peek() T { return r.peek() }

// ReadonlyOf returns a Readable view of w that cannot be written through.
func ReadonlyOf[T any](w *Source[T]) Readable[T] {
	return &readonlyView[T]{get: w.Get, peek: w.Peek}
}
