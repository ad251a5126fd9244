package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprig-ui/sprig/reactive"
	"github.com/sprig-ui/sprig/store"
)

type userStore struct {
	Name *reactive.Source[string]
}

type settingsStore struct {
	Theme *reactive.Source[string]
}

func TestUseStore_ReturnsSameInstanceUntilReset(t *testing.T) {
	id := "singleton:user"
	inits := 0
	h := store.DefineStore(id, func() *userStore {
		inits++
		return &userStore{Name: reactive.NewSource("John")}
	})
	defer store.DisposeStore(id)

	a := store.UseStore(h)
	b := store.UseStore(h)
	assert.Same(t, a, b)
	assert.Equal(t, 1, inits)

	store.ResetStore(id)
	c := store.UseStore(h)
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, inits)
}

func TestUseStore_UnregisteredPanics(t *testing.T) {
	assert.Panics(t, func() {
		store.UseStore(store.Handle[int]{})
	})
}

func TestDeriveStore2_ComposesTwoStores(t *testing.T) {
	userID := "derived:user"
	settingsID := "derived:settings"
	defer store.DisposeStore(userID)
	defer store.DisposeStore(settingsID)

	userH := store.DefineStore(userID, func() *userStore {
		return &userStore{Name: reactive.NewSource("John")}
	})
	settingsH := store.DefineStore(settingsID, func() *settingsStore {
		return &settingsStore{Theme: reactive.NewSource("dark")}
	})

	type combined struct {
		Display *reactive.Derivation[string]
	}

	derived := store.DeriveStore2(userH, settingsH, func(u *userStore, s *settingsStore) *combined {
		return &combined{
			Display: reactive.NewDerivation(func() string {
				return u.Name.Get() + " - " + s.Theme.Get()
			}),
		}
	})

	c := store.UseStore(derived)
	assert.Equal(t, "John - dark", c.Display.Get())

	u := store.UseStore(userH)
	u.Name.Set("Jane")
	assert.Equal(t, "Jane - dark", c.Display.Get())
}

func TestExtendStore_ThrowsIfBaseUnregistered(t *testing.T) {
	ghost := store.Handle[int]{}
	extended := store.ExtendStore(ghost, func(base int) int { return base + 1 })
	assert.Panics(t, func() {
		store.UseStore(extended)
	})
}

func TestComposeStores_LazyGetters(t *testing.T) {
	id := "compose:counter"
	defer store.DisposeStore(id)

	inits := 0
	h := store.DefineStore(id, func() int {
		inits++
		return 7
	})
	_ = h

	getters := store.ComposeStores(map[string]string{"n": id})
	assert.Equal(t, 0, inits, "composing must not instantiate eagerly")

	v := getters["n"]()
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, inits)

	_ = getters["n"]()
	assert.Equal(t, 1, inits, "second access must reuse the cached instance")
}

func TestCircularStoreDependency_DetectedAtInstantiation(t *testing.T) {
	idA := "circular:a"
	idB := "circular:b"
	defer store.DisposeStore(idA)
	defer store.DisposeStore(idB)

	hA := store.DefineStore(idA, func() int {
		return store.UseStore(store.Handle[int]{}) // placeholder, replaced below
	})
	_ = hA

	var hBRef store.Handle[int]
	hA2 := store.DefineStore(idA, func() int {
		return store.UseStore(hBRef) + 1
	})
	hB := store.DefineStore(idB, func() int {
		return store.UseStore(hA2) + 1
	})
	hBRef = hB

	assert.Panics(t, func() {
		store.UseStore(hA2)
	})
}

func TestDisposeStore_RemovesRegistration(t *testing.T) {
	id := "dispose:me"
	h := store.DefineStore(id, func() int { return 1 })
	store.UseStore(h)
	assert.True(t, store.HasStore(id))

	store.DisposeStore(id)
	assert.False(t, store.HasStore(id))
	assert.Panics(t, func() { store.UseStore(h) })
}

func TestIntrospection_HasStoreAllIdsMetadataInitialized(t *testing.T) {
	id := "introspect:one"
	defer store.DisposeStore(id)

	h := store.DefineStore(id, func() int { return 42 }, store.Metadata{Description: "answer"})
	assert.True(t, store.HasStore(id))
	assert.Contains(t, store.GetAllStoreIds(), id)
	assert.False(t, store.IsStoreInitialized(id))

	store.UseStore(h)
	assert.True(t, store.IsStoreInitialized(id))

	meta, ok := store.GetStoreMetadata(id)
	require.True(t, ok)
	assert.Equal(t, "answer", meta.Description)
}

func TestApplyConfig_PopulatesMetadataConfig(t *testing.T) {
	before := "cfg:before"
	after := "cfg:after"
	defer store.DisposeStore(before)
	defer store.DisposeStore(after)

	store.DefineStore(before, func() int { return 1 })
	store.ApplyConfig(map[string]any{
		before: map[string]any{"limit": 10},
		after:  map[string]any{"limit": 20},
	})
	store.DefineStore(after, func() int { return 2 })

	meta, ok := store.GetStoreMetadata(before)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"limit": 10}, meta.Config, "a blob applied after registration must reach existing metadata")

	meta, ok = store.GetStoreMetadata(after)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"limit": 20}, meta.Config, "a store defined after ApplyConfig must pick up its blob")
}

func TestApplyConfig_ExplicitMetadataConfigWins(t *testing.T) {
	id := "cfg:explicit"
	defer store.DisposeStore(id)

	store.ApplyConfig(map[string]any{id: "from-file"})
	store.DefineStore(id, func() int { return 1 }, store.Metadata{Config: "explicit"})

	meta, ok := store.GetStoreMetadata(id)
	require.True(t, ok)
	assert.Equal(t, "explicit", meta.Config)
}

func TestClearAllStores_DisposesEverything(t *testing.T) {
	h := store.DefineStore("clearall:x", func() int { return 1 })
	store.UseStore(h)
	store.ClearAllStores()
	assert.False(t, store.HasStore("clearall:x"))
}

