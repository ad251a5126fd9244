package component

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sprig-ui/sprig/observability"
	"github.com/sprig-ui/sprig/scope"
)

// Component is a reusable definition: calling Instantiate runs Setup
// exactly once to produce a fresh Instance.
type Component[P any, O any] struct {
	Name  string
	setup func(props P) func() O
}

// DefineComponent returns a callable component definition. name is
// optional and used only for devtools labelling and panic messages.
func DefineComponent[P any, O any](setup func(props P) func() O, name ...string) *Component[P, O] {
	label := ""
	if len(name) > 0 {
		label = name[0]
	}
	return &Component[P, O]{Name: label, setup: setup}
}

// Instance is one live instantiation of a Component: its own ownership
// scope, its render closure, and its lifecycle hooks.
type Instance[P any, O any] struct {
	mu             sync.Mutex
	id             uint64
	def            *Component[P, O]
	scope          *scope.Scope
	props          P
	renderFn       func() O
	mountCallbacks []func()
	mounted        bool
}

var instCounter uint64

// instMeta is the devtools-facing shadow of an Instance, kept
// independently of the generic Instance[P,O] type so the devtools package
// can inspect every live instance without itself being generic.
type instMeta struct {
	id          uint64
	name        string
	parentID    uint64
	renderCount uint64
	lastRender  int64 // unix nanoseconds, 0 if never rendered
	propsFn     func() any
}

var (
	instRegMu    sync.RWMutex
	instRegistry = map[uint64]*instMeta{}
)

// Snapshot is the read-only devtools view of one live component instance.
type Snapshot struct {
	ID          uint64
	Name        string
	ParentID    uint64 // 0 for a root instance
	RenderCount uint64
	LastRender  time.Time
	Props       any
}

// Snapshots returns a Snapshot for every currently live instance, in no
// particular order. Disposed instances are removed from the registry when
// their scope's cleanup runs.
func Snapshots() []Snapshot {
	instRegMu.RLock()
	defer instRegMu.RUnlock()
	out := make([]Snapshot, 0, len(instRegistry))
	for _, m := range instRegistry {
		s := Snapshot{ID: m.id, Name: m.name, ParentID: m.parentID, RenderCount: atomic.LoadUint64(&m.renderCount)}
		if ns := atomic.LoadInt64(&m.lastRender); ns != 0 {
			s.LastRender = time.Unix(0, ns)
		}
		if m.propsFn != nil {
			s.Props = m.propsFn()
		}
		out = append(out, s)
	}
	return out
}

// instanceStack lets OnMount (called synchronously during Setup) find the
// instance currently being constructed, mirroring scope's own stack.
var (
	instStackMu sync.Mutex
	instStack   []hookTarget
)

type hookTarget interface {
	addMount(cb func())
	devtoolsID() uint64
}

func pushInstance(i hookTarget) {
	instStackMu.Lock()
	instStack = append(instStack, i)
	instStackMu.Unlock()
}

func popInstance() {
	instStackMu.Lock()
	if len(instStack) > 0 {
		instStack = instStack[:len(instStack)-1]
	}
	instStackMu.Unlock()
}

func currentInstance() hookTarget {
	instStackMu.Lock()
	defer instStackMu.Unlock()
	if len(instStack) == 0 {
		return nil
	}
	return instStack[len(instStack)-1]
}

func (i *Instance[P, O]) addMount(cb func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.mountCallbacks = append(i.mountCallbacks, cb)
}

func (i *Instance[P, O]) devtoolsID() uint64 { return i.id }

// Instantiate opens a new scope as a child of the currently active scope,
// runs Setup exactly once, and returns the resulting Instance. Setup must
// not be called again for the lifetime of the instance; re-rendering is
// achieved entirely through the render closure's own reactive reads.
func (c *Component[P, O]) Instantiate(props P) *Instance[P, O] {
	parent := scope.Current()
	s := scope.NewChild(parent)
	return c.instantiateIn(s, props)
}

func (c *Component[P, O]) instantiateIn(s *scope.Scope, props P) *Instance[P, O] {
	inst := &Instance[P, O]{id: atomic.AddUint64(&instCounter, 1), def: c, scope: s, props: props}

	var parentID uint64
	if parent := currentInstance(); parent != nil {
		parentID = parent.devtoolsID()
	}
	meta := &instMeta{
		id:       inst.id,
		name:     c.Name,
		parentID: parentID,
		propsFn:  func() any { return props },
	}
	instRegMu.Lock()
	instRegistry[inst.id] = meta
	instRegMu.Unlock()
	s.OnCleanup(func() {
		instRegMu.Lock()
		delete(instRegistry, inst.id)
		instRegMu.Unlock()
	})

	render := scope.Run(s, func() func() O {
		pushInstance(inst)
		defer popInstance()
		return c.setup(props)
	})
	inst.renderFn = func() O {
		out := render()
		atomic.AddUint64(&meta.renderCount, 1)
		atomic.StoreInt64(&meta.lastRender, time.Now().UnixNano())
		return out
	}
	return inst
}

// Scope returns the instance's ownership scope.
func (i *Instance[P, O]) Scope() *scope.Scope { return i.scope }

// Props returns the props the instance was created with. The runtime never
// clones or mutates them.
func (i *Instance[P, O]) Props() P { return i.props }

// Render invokes the render closure. It must be called from inside an
// effect (created by the external renderer) so reads inside it are
// tracked. A panic here is not recovered: component.Instance does not
// itself implement error-boundary semantics; wrap instantiation in a
// Boundary for that.
func (i *Instance[P, O]) Render() O {
	return i.renderFn()
}

// FlushMount runs every onMount callback registered during Setup exactly
// once, in registration order. The external renderer calls this after the
// instance's first output has been attached. A panicking mount callback is
// reported through observability and does not stop the remaining callbacks
// from running.
func (i *Instance[P, O]) FlushMount() {
	i.mu.Lock()
	if i.mounted {
		i.mu.Unlock()
		return
	}
	i.mounted = true
	cbs := i.mountCallbacks
	i.mountCallbacks = nil
	i.mu.Unlock()

	for _, cb := range cbs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					observability.ReportComponentError(i.def.Name, fmt.Errorf("onMount panic: %w", toError(r)))
				}
			}()
			cb()
		}()
	}
}

// Unmount disposes the instance's scope, running every onCleanup callback
// registered (directly or transitively, by descendants) during its
// lifetime, in LIFO/child-before-parent order.
func (i *Instance[P, O]) Unmount() {
	i.scope.Dispose()
}

// OnMount registers cb to run once, after the instance currently being
// set up is first attached by the renderer. Calling it outside Setup is a
// programmer error and is reported rather than silently ignored.
func OnMount(cb func()) {
	inst := currentInstance()
	if inst == nil {
		observability.ReportComponentError("", fmt.Errorf("onMount called outside Setup"))
		return
	}
	inst.addMount(cb)
}

// OnCleanup registers cb on the currently active scope. It is provided
// under the component package for API symmetry with onMount; it is
// identical to scope.OnCleanup.
func OnCleanup(cb func()) {
	scope.OnCleanup(cb)
}
