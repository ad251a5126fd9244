package reactive

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sprig-ui/sprig/observability"
)

var idCounter uint64

func nextID() uint64 { return atomic.AddUint64(&idCounter, 1) }

func defaultEquals[T any](a, b T) bool {
	return reflect.DeepEqual(a, b)
}

// observer is anything that can be notified that a dependency changed: a
// derivation (which may cascade) or an effect (which enqueues itself).
type observer interface {
	observerID() uint64
	notify()
}

// depTarget is anything that can be depended on: a source or a derivation.
type depTarget interface {
	depID() uint64
	addObserver(o observer)
	removeObserver(id uint64)
}

// sourceCore is the embeddable "I can be observed" half of a dependency
// target. Both Source and derivationCore embed it.
type sourceCore struct {
	id        uint64
	mu        sync.Mutex
	observers map[uint64]observer
	kind      string
	label     string
}

func (c *sourceCore) depID() uint64 { return c.id }

func (c *sourceCore) addObserver(o observer) {
	c.mu.Lock()
	if c.observers == nil {
		c.observers = make(map[uint64]observer)
	}
	c.observers[o.observerID()] = o
	c.mu.Unlock()
}

func (c *sourceCore) removeObserver(id uint64) {
	c.mu.Lock()
	delete(c.observers, id)
	c.mu.Unlock()
}

func (c *sourceCore) snapshotObservers() []observer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]observer, 0, len(c.observers))
	for _, o := range c.observers {
		out = append(out, o)
	}
	return out
}

func (c *sourceCore) hasObservers() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observers) > 0
}

func notifyObservers(c *sourceCore) {
	for _, o := range c.snapshotObservers() {
		o.notify()
	}
}

// trackingFrame is pushed onto trackStack while a derivation or effect body
// runs, collecting every depTarget read during that run.
type trackingFrame struct {
	newDeps map[uint64]depTarget
}

var (
	gmu            sync.Mutex
	trackStack     []*trackingFrame
	untrackedDepth int
	cellRegistry   = map[uint64]*sourceCore{}
)

func registerCell(c *sourceCore, kind, label string) {
	c.kind = kind
	c.label = label
	gmu.Lock()
	cellRegistry[c.id] = c
	gmu.Unlock()
}

func unregisterCell(id uint64) {
	gmu.Lock()
	delete(cellRegistry, id)
	gmu.Unlock()
}

func pushTrackingFrame() *trackingFrame {
	f := &trackingFrame{newDeps: map[uint64]depTarget{}}
	gmu.Lock()
	trackStack = append(trackStack, f)
	gmu.Unlock()
	return f
}

func popTrackingFrame() {
	gmu.Lock()
	trackStack = trackStack[:len(trackStack)-1]
	gmu.Unlock()
}

// recordRead registers dep against the innermost active tracking frame,
// unless reads are currently suspended by Untracked.
func recordRead(dep depTarget) {
	gmu.Lock()
	defer gmu.Unlock()
	if untrackedDepth > 0 || len(trackStack) == 0 {
		return
	}
	trackStack[len(trackStack)-1].newDeps[dep.depID()] = dep
}

// reconcileDeps diffs oldDeps against newDeps, unsubscribing from anything
// no longer read and subscribing to anything newly read. obs is the
// observer (derivation or effect) whose dependency set this is.
func reconcileDeps(obs observer, oldDeps, newDeps map[uint64]depTarget) {
	for id, dep := range oldDeps {
		if _, ok := newDeps[id]; !ok {
			dep.removeObserver(obs.observerID())
		}
	}
	for _, dep := range newDeps {
		dep.addObserver(obs)
	}
}

// Untracked runs fn with dependency tracking suspended: reads performed
// inside fn are not recorded against the enclosing derivation or effect.
// Ownership (the active scope) is unaffected.
func Untracked(fn func()) {
	gmu.Lock()
	untrackedDepth++
	gmu.Unlock()
	defer func() {
		gmu.Lock()
		untrackedDepth--
		gmu.Unlock()
	}()
	fn()
}

var (
	errHandlerMu sync.Mutex
	errHandler   func(error)
)

// SetErrorHandler installs the process-wide handler invoked whenever an
// effect body panics or the scheduler detects a cycle. A nil handler
// restores the default, which reports through the process-wide
// observability reporter.
func SetErrorHandler(h func(error)) {
	errHandlerMu.Lock()
	errHandler = h
	errHandlerMu.Unlock()
}

func reportError(err error) {
	errHandlerMu.Lock()
	h := errHandler
	errHandlerMu.Unlock()
	if h != nil {
		h(err)
		return
	}
	observability.ReportComponentError("reactive", err)
}

// SignalSnapshot is the read-only devtools view of one live source or
// derivation cell.
type SignalSnapshot struct {
	ID            uint64
	Kind          string
	Label         string
	ObserverCount int
}

// Signals returns a SignalSnapshot for every currently registered cell, in
// no particular order. A cell is registered at NewSource/NewDerivation and
// deregistered when its owning scope disposes; a cell created with no
// active scope (and so never cleaned up automatically) stays registered
// for the life of the process.
func Signals() []SignalSnapshot {
	gmu.Lock()
	defer gmu.Unlock()
	out := make([]SignalSnapshot, 0, len(cellRegistry))
	for _, c := range cellRegistry {
		c.mu.Lock()
		count := len(c.observers)
		c.mu.Unlock()
		out = append(out, SignalSnapshot{
			ID:            c.id,
			Kind:          c.kind,
			Label:         c.label,
			ObserverCount: count,
		})
	}
	return out
}

func reportPanic(r any) {
	if err, ok := r.(error); ok {
		reportError(err)
		return
	}
	reportError(fmt.Errorf("reactive: %v", r))
}
