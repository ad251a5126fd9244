package ctxframe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sprig-ui/sprig/ctxframe"
	"github.com/sprig-ui/sprig/reactive"
	"github.com/sprig-ui/sprig/scope"
)

func TestConsume_ReturnsDefaultOutsideAnyProvider(t *testing.T) {
	theme := ctxframe.CreateContext("light")
	assert.Equal(t, "light", theme.Consume())
}

func TestProvide_VisibleToDescendantScope(t *testing.T) {
	theme := ctxframe.CreateContext("light")

	_, dispose := scope.WithScope(func(outer *scope.Scope) any {
		theme.Provide("dark")

		_, disposeInner := scope.WithScope(func(inner *scope.Scope) any {
			assert.Equal(t, "dark", theme.Consume())
			return nil
		})
		disposeInner()
		return nil
	})
	dispose()
}

func TestContextShadowing_InnerHidesOuterUntilDisposed(t *testing.T) {
	theme := ctxframe.CreateContext("default")

	_, disposeOuter := scope.WithScope(func(outer *scope.Scope) any {
		theme.Provide("u")
		assert.Equal(t, "u", theme.Consume())

		_, disposeInner := scope.WithScope(func(inner *scope.Scope) any {
			theme.Provide("v")
			assert.Equal(t, "v", theme.Consume())
			return nil
		})

		disposeInner()
		assert.Equal(t, "u", theme.Consume(), "after inner scope disposes, outer value must be visible again")
		return nil
	})
	disposeOuter()
}

func TestContextShadowing_SiblingsDoNotSeeEachOthersProvider(t *testing.T) {
	theme := ctxframe.CreateContext("default")

	_, disposeOuter := scope.WithScope(func(outer *scope.Scope) any {
		theme.Provide("u")

		_, disposeA := scope.WithScope(func(a *scope.Scope) any {
			theme.Provide("siblingA")
			assert.Equal(t, "siblingA", theme.Consume())
			return nil
		})
		disposeA()

		_, disposeB := scope.WithScope(func(b *scope.Scope) any {
			assert.Equal(t, "u", theme.Consume(), "sibling B must not see sibling A's provided value")
			return nil
		})
		disposeB()
		return nil
	})
	disposeOuter()
}

func TestProvide_OutsideAnyScopeBindsProcessWide(t *testing.T) {
	c := ctxframe.CreateContext("def")
	restore := c.Provide("global")
	defer restore()

	assert.Equal(t, "global", c.Consume())

	_, dispose := scope.WithScope(func(s *scope.Scope) any {
		assert.Equal(t, "global", c.Consume(), "a scope with no binding of its own falls back to the process-wide one")
		return nil
	})
	dispose()

	restore()
	assert.Equal(t, "def", c.Consume())
}

func TestMultipleContexts_AreIndependent(t *testing.T) {
	theme := ctxframe.CreateContext("light")
	locale := ctxframe.CreateContext("en")

	_, dispose := scope.WithScope(func(s *scope.Scope) any {
		theme.Provide("dark")
		locale.Provide("fr")

		assert.Equal(t, "dark", theme.Consume())
		assert.Equal(t, "fr", locale.Consume())
		return nil
	})
	dispose()
}

func TestProvide_ReactiveValueViaSourcePointer(t *testing.T) {
	ctx := ctxframe.CreateContext[*reactive.Source[int]](nil)

	_, dispose := scope.WithScope(func(s *scope.Scope) any {
		c := reactive.NewSource(1)
		ctx.Provide(c)

		got := ctx.Consume()
		assert.Same(t, c, got)
		c.Set(2)
		assert.Equal(t, 2, ctx.Consume().Get())
		return nil
	})
	dispose()
}
