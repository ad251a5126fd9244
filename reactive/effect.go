package reactive

import (
	"sync"

	"github.com/sprig-ui/sprig/scope"
)

// effectCore is the scheduler-facing half of an effect: it observes
// whatever its body read last run and enqueues itself when notified.
type effectCore struct {
	id      uint64
	mu      sync.Mutex
	fn      func()
	deps    map[uint64]depTarget
	stopped bool
	label   string
}

func (e *effectCore) observerID() uint64 { return e.id }
func (e *effectCore) notify()            { enqueueEffect(e) }

// run executes the effect body under tracking, isolating any panic through
// the global error handler so one misbehaving effect cannot take down the
// scheduler or its siblings.
func (e *effectCore) run() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	fn := e.fn
	e.mu.Unlock()

	frame := pushTrackingFrame()
	func() {
		defer func() {
			popTrackingFrame()
			if r := recover(); r != nil {
				reportPanic(r)
			}
		}()
		fn()
	}()

	e.mu.Lock()
	oldDeps := e.deps
	e.deps = frame.newDeps
	e.mu.Unlock()
	reconcileDeps(e, oldDeps, frame.newDeps)
}

func (e *effectCore) stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	deps := e.deps
	e.deps = nil
	e.mu.Unlock()

	for _, dep := range deps {
		dep.removeObserver(e.id)
	}
	dequeueEffect(e.id)
}

// EffectOption configures an Effect at construction time.
type EffectOption func(*effectCore)

// WithEffectLabel attaches a human-readable name for devtools.
func WithEffectLabel(label string) EffectOption {
	return func(e *effectCore) { e.label = label }
}

// Effect runs fn immediately to establish its initial dependency set, then
// re-runs it whenever any cell read during its last run changes. The
// returned stop function disposes it early; it is also disposed
// automatically when the currently active scope disposes.
func Effect(fn func(), opts ...EffectOption) (stop func()) {
	e := &effectCore{id: nextID(), fn: fn}
	for _, o := range opts {
		o(e)
	}
	registerEffectMeta(e)

	var once sync.Once
	stop = func() {
		once.Do(e.stop)
	}
	if cur := scope.Current(); cur != nil {
		cur.OnCleanup(stop)
	}

	e.run()
	return stop
}
