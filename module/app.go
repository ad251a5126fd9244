package module

import (
	"sync"
	"time"

	"github.com/sprig-ui/sprig/di"
	"github.com/sprig-ui/sprig/monitoring"
	"github.com/sprig-ui/sprig/observability"
	"github.com/sprig-ui/sprig/store"
)

// resolveTap is the di.Extension installed on every container the app
// creates: it times each resolution for the metrics sink and leaves a
// breadcrumb when one fails, without the di package importing either.
func resolveTap() di.Extension {
	return di.ExtensionFunc{
		Label: "monitoring",
		Fn: func(tokenID string, next func() (any, error)) (any, error) {
			start := time.Now()
			v, err := next()
			monitoring.Default().TokenResolved(tokenID, time.Since(start), err != nil)
			if err != nil {
				observability.RecordBreadcrumb("di", "resolve failed: "+tokenID, nil)
			}
			return v, err
		},
	}
}

// Router is the collaborator notified once every module has bootstrapped.
// The core never imports a concrete router package; callers that need
// routing implement this themselves and pass it via WithRouter.
type Router interface {
	Ready()
}

// IslandManager is the collaborator asked to discover interactive islands
// after bootstrap, in a browser-hosted deployment only.
type IslandManager interface {
	DiscoverIslands(islands []any)
}

type routerDisposer interface{ DisposeRouter() }
type islandDisposer interface{ DisposeIslands() }

type node struct {
	mod       *Module
	container *di.Container
	ctxValue  any
}

// App owns a bootstrapped module tree: the per-module containers, the
// memoized setup context of every module, and the flat bootstrap order
// teardown reverses.
type App struct {
	mu             sync.RWMutex
	root           *Module
	baseContainer  *di.Container
	mockProviders  []ProviderBinding
	router         Router
	islandManager  IslandManager
	isBrowser      bool
	bootstrapped   bool
	unmounted      bool
	nodes          map[string]*node
	order          []*node
}

// Option configures an App at construction time.
type Option func(*App)

// WithRouter installs the router notified via Ready() once bootstrap
// completes.
func WithRouter(r Router) Option {
	return func(a *App) { a.router = r }
}

// WithIslandManager installs the collaborator asked to discover islands
// after bootstrap, consulted only when WithBrowserEnvironment(true) is
// also set.
func WithIslandManager(m IslandManager) Option {
	return func(a *App) { a.islandManager = m }
}

// WithBrowserEnvironment marks this App as running in a browser-hosted
// deployment, gating island discovery.
func WithBrowserEnvironment(isBrowser bool) Option {
	return func(a *App) { a.isBrowser = isBrowser }
}

// NewApp constructs an App rooted at root. Bootstrap must be called
// separately.
func NewApp(root *Module, opts ...Option) *App {
	a := &App{
		root:          root,
		baseContainer: di.NewContainer(),
		nodes:         map[string]*node{},
	}
	a.baseContainer.UseExtension(resolveTap())
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreateTestApp builds an App for root with mockProviders registered so
// they win over whatever root's own providers declare, and with island
// discovery disabled regardless of browser environment, the fixture
// shape tests want: pre-overridden dependencies, no host-environment
// side effects.
func CreateTestApp(root *Module, mockProviders ...ProviderBinding) *App {
	a := NewApp(root)
	a.mockProviders = mockProviders
	a.isBrowser = false
	return a
}

// Bootstrap builds the module DAG rooted at a.root, rejecting duplicate
// ids and cycles, then visits it child-first: each module registers its
// providers, initializes its declared stores, and runs its Setup hook
// before its parent does the same. A failure partway unwinds every module
// that had already bootstrapped, in reverse order, before the error is
// returned. A second call fails with ErrAlreadyBootstrapped.
func (a *App) Bootstrap() error {
	a.mu.Lock()
	if a.bootstrapped {
		rootID := a.root.ID
		a.mu.Unlock()
		return &ErrAlreadyBootstrapped{ID: rootID}
	}
	a.mu.Unlock()

	seen := map[string]bool{}
	path := map[string]bool{}
	if err := a.bootstrapOne(a.root, a.baseContainer, seen, path); err != nil {
		a.mu.Lock()
		done := a.order
		a.order = nil
		a.nodes = map[string]*node{}
		a.mu.Unlock()
		for i := len(done) - 1; i >= 0; i-- {
			a.teardownNode(done[i])
		}
		observability.Default().ReportError(err, &observability.ErrorContext{
			Component: "module:" + a.root.ID,
		})
		return err
	}

	a.mu.Lock()
	a.bootstrapped = true
	a.mu.Unlock()

	if a.router != nil {
		a.router.Ready()
	}
	if a.isBrowser && a.islandManager != nil {
		a.islandManager.DiscoverIslands(a.collectIslands())
	}
	return nil
}

func (a *App) bootstrapOne(mod *Module, parent *di.Container, seen, path map[string]bool) error {
	if path[mod.ID] {
		return &ErrCircularModule{ID: mod.ID}
	}
	if seen[mod.ID] {
		return &ErrDuplicateModuleID{ID: mod.ID}
	}
	seen[mod.ID] = true
	path[mod.ID] = true

	n := &node{mod: mod, container: di.NewChildContainer(parent)}
	n.container.UseExtension(resolveTap())

	for _, child := range mod.Children {
		if err := a.bootstrapOne(child, n.container, seen, path); err != nil {
			return err
		}
	}
	delete(path, mod.ID)

	selfStart := time.Now()
	for _, b := range mod.Providers {
		b.bind(n.container)
	}
	if mod == a.root {
		for _, b := range a.mockProviders {
			b.bind(n.container)
		}
	}

	for _, sid := range mod.StoreIDs {
		if err := store.EnsureInitialized(sid); err != nil {
			return err
		}
	}

	if mod.Setup != nil {
		n.ctxValue = mod.Setup(&Context{ID: mod.ID, Container: n.container, app: a})
	}
	monitoring.Default().ModuleBootstrapped(mod.ID, time.Since(selfStart))
	observability.RecordBreadcrumb("module", "bootstrapped "+mod.ID, nil)

	a.mu.Lock()
	a.nodes[mod.ID] = n
	a.order = append(a.order, n)
	a.mu.Unlock()

	return nil
}

// teardownNode unwinds one bootstrapped module: its Teardown hook runs,
// then its declared stores dispose, then its own container clears.
func (a *App) teardownNode(n *node) {
	if n.mod.Teardown != nil {
		n.mod.Teardown(&Context{ID: n.mod.ID, Container: n.container, app: a}, n.ctxValue)
	}
	for _, sid := range n.mod.StoreIDs {
		store.DisposeStore(sid)
	}
	n.container.Clear()
	observability.RecordBreadcrumb("module", "tore down "+n.mod.ID, nil)
}

func (a *App) collectIslands() []any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var islands []any
	for _, n := range a.order {
		islands = append(islands, n.mod.Islands...)
	}
	return islands
}

// GetModuleContext returns the memoized value id's Setup hook returned.
// Fails with ErrModuleNotFound if id was never bootstrapped (including
// before Bootstrap has run at all).
func (a *App) GetModuleContext(id string) (any, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.nodes[id]
	if !ok {
		return nil, &ErrModuleNotFound{ID: id}
	}
	return n.ctxValue, nil
}

// Unmount tears the app down in exactly the reverse of bootstrap order:
// each module's Teardown runs, then its declared stores dispose, then its
// own container clears; once every module has unwound, the router and
// island manager's dispose hooks fire (if they implement one) and the
// base container clears last. A second call is a no-op.
func (a *App) Unmount() {
	a.mu.Lock()
	if a.unmounted || !a.bootstrapped {
		a.mu.Unlock()
		return
	}
	a.unmounted = true
	order := a.order
	a.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		a.teardownNode(order[i])
	}

	if a.router != nil {
		if rd, ok := a.router.(routerDisposer); ok {
			rd.DisposeRouter()
		}
	}
	if a.islandManager != nil {
		if id, ok := a.islandManager.(islandDisposer); ok {
			id.DisposeIslands()
		}
	}
	a.baseContainer.Clear()
}

var (
	appMu     sync.RWMutex
	activeApp *App
)

// SetApp installs app as the process-wide active app handle.
func SetApp(app *App) {
	appMu.Lock()
	activeApp = app
	appMu.Unlock()
}

// GetApp returns the active app handle, or nil if none has been set.
func GetApp() *App {
	appMu.RLock()
	defer appMu.RUnlock()
	return activeApp
}
