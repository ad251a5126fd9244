package module

import (
	"github.com/sprig-ui/sprig/di"
)

// ProviderBinding is a type-erased di.Register call, letting Module hold a
// heterogeneous slice of provider bindings without Module itself being
// generic. Build one with Bind.
type ProviderBinding interface {
	bind(c *di.Container)
}

type bindingFunc func(c *di.Container)

func (f bindingFunc) bind(c *di.Container) { f(c) }

// Bind packages a token and provider as a ProviderBinding suitable for
// Module.Providers.
func Bind[T any](token di.Token[T], p di.Provider[T]) ProviderBinding {
	return bindingFunc(func(c *di.Container) { di.Register(c, token, p) })
}

// Context is handed to a Module's Setup and Teardown hooks: the module's
// own DI container (a child of its parent's, so it can resolve anything
// an ancestor module provided) and the id it was built for.
type Context struct {
	ID        string
	Container *di.Container
	app       *App
}

// ChildContext returns the memoized setup value of a descendant module
// that has already bootstrapped by the time this is called (always true
// for a module's own children, since bootstrap visits them first).
func (c *Context) ChildContext(id string) (any, error) {
	return c.app.GetModuleContext(id)
}

// Module is an immutable description of a bundle of providers, stores,
// and child modules. A Module value is meant to be built once (typically
// as a package-level var) and handed to NewApp/CreateTestApp; the
// orchestration state produced by bootstrapping it lives entirely on the
// App, not on the Module itself, so the same Module tree can be
// bootstrapped into more than one App (e.g. production and tests).
type Module struct {
	ID        string
	Providers []ProviderBinding
	Children  []*Module
	StoreIDs  []string
	// Islands are opaque descriptors handed to the island manager after
	// bootstrap; the core never interprets them.
	Islands []any
	// Setup runs after providers are registered and stores initialized.
	// Its return value is memoized as this module's context, retrievable
	// via App.GetModuleContext.
	Setup func(ctx *Context) any
	// Teardown runs before this module's declared stores are disposed,
	// receiving the same Context and the value Setup returned (nil if
	// Setup was nil or returned nothing).
	Teardown func(ctx *Context, value any)
}
