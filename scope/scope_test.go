package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprig-ui/sprig/scope"
)

func TestWithScope_ReturnsResultAndDisposer(t *testing.T) {
	result, dispose := scope.WithScope(func(s *scope.Scope) int {
		require.NotNil(t, s)
		return 42
	})
	assert.Equal(t, 42, result)
	assert.NotNil(t, dispose)
	dispose()
}

func TestOnCleanup_RunsInLIFOOrder(t *testing.T) {
	var order []int
	_, dispose := scope.WithScope(func(s *scope.Scope) any {
		s.OnCleanup(func() { order = append(order, 1) })
		s.OnCleanup(func() { order = append(order, 2) })
		s.OnCleanup(func() { order = append(order, 3) })
		return nil
	})

	dispose()
	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestOnCleanup_OutsideScopeIsNoOp(t *testing.T) {
	assert.NotPanics(t, func() {
		scope.OnCleanup(func() { t.Fatal("should never run") })
	})
}

func TestDispose_ChildrenBeforeParent(t *testing.T) {
	var order []string

	parent := scope.New()
	parent.OnCleanup(func() { order = append(order, "parent") })

	child := scope.NewChild(parent)
	child.OnCleanup(func() { order = append(order, "child") })

	grandchild := scope.NewChild(child)
	grandchild.OnCleanup(func() { order = append(order, "grandchild") })

	parent.Dispose()

	assert.Equal(t, []string{"grandchild", "child", "parent"}, order)
}

func TestDispose_IsIdempotent(t *testing.T) {
	calls := 0
	s := scope.New()
	s.OnCleanup(func() { calls++ })

	s.Dispose()
	s.Dispose()
	s.Dispose()

	assert.Equal(t, 1, calls)
	assert.True(t, s.Disposed())
}

func TestOnCleanup_AfterDisposeRunsImmediately(t *testing.T) {
	s := scope.New()
	s.Dispose()

	ran := false
	s.OnCleanup(func() { ran = true })
	assert.True(t, ran)
}

func TestDispose_DetachesFromParent(t *testing.T) {
	parent := scope.New()
	child := scope.NewChild(parent)

	child.Dispose()
	parent.Dispose() // should not re-run child's cleanups or panic
	assert.True(t, parent.Disposed())
}

func TestSignal_FiresOnDispose(t *testing.T) {
	s := scope.New()
	fired, listen := s.Signal()
	assert.False(t, fired())

	var called bool
	listen(func() { called = true })

	s.Dispose()
	assert.True(t, fired())
	assert.True(t, called)
}

func TestSignal_ListenAfterDisposeFiresImmediately(t *testing.T) {
	s := scope.New()
	s.Dispose()

	var called bool
	_, listen := s.Signal()
	listen(func() { called = true })
	assert.True(t, called)
}

func TestNestedWithScope_ChildOfCurrent(t *testing.T) {
	_, disposeOuter := scope.WithScope(func(outer *scope.Scope) any {
		_, disposeInner := scope.WithScope(func(inner *scope.Scope) any {
			assert.Equal(t, outer, inner.Parent())
			return nil
		})
		disposeInner()
		return nil
	})
	disposeOuter()
}
