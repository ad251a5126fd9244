package store

// DeriveStore1 defines a new anonymous store whose single input is
// another store: an idiomatic-Go typed stand-in for the dynamic
// {alias: id} composition form, for the common single-dependency case.
func DeriveStore1[A any, R any](a Handle[A], compose func(A) R) Handle[R] {
	id := nextAnonID("derive")
	return DefineStore(id, func() R {
		return compose(UseStore(a))
	})
}

// DeriveStore2 is DeriveStore1 for two input stores.
func DeriveStore2[A any, B any, R any](a Handle[A], b Handle[B], compose func(A, B) R) Handle[R] {
	id := nextAnonID("derive")
	return DefineStore(id, func() R {
		return compose(UseStore(a), UseStore(b))
	})
}

// DeriveStore3 is DeriveStore1 for three input stores.
func DeriveStore3[A any, B any, C any, R any](a Handle[A], b Handle[B], c Handle[C], compose func(A, B, C) R) Handle[R] {
	id := nextAnonID("derive")
	return DefineStore(id, func() R {
		return compose(UseStore(a), UseStore(b), UseStore(c))
	})
}

// DeriveStoreMap is the dynamic-arity composition form: ids maps an alias
// the compose function will see to the store id it should resolve. Prefer
// the typed DeriveStoreN helpers when the arity is known at compile time.
func DeriveStoreMap(ids map[string]string, compose func(map[string]any) any) Handle[any] {
	id := nextAnonID("derive")
	return DefineStore(id, func() any {
		resolved := make(map[string]any, len(ids))
		for alias, storeID := range ids {
			resolved[alias] = resolveByID(storeID)
		}
		return compose(resolved)
	})
}

func resolveByID(id string) any {
	return mustLookup(id).resolve()
}

// ComposeStores returns, for each alias → id pair, a getter that lazily
// calls UseStore for that id on first invocation (and returns the cached
// instance on every call after).
func ComposeStores(ids map[string]string) map[string]func() any {
	out := make(map[string]func() any, len(ids))
	for alias, id := range ids {
		id := id
		out[alias] = func() any { return resolveByID(id) }
	}
	return out
}
