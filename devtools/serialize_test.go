package devtools_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprig-ui/sprig/devtools"
)

func TestSerialize_PlainValuesPassThrough(t *testing.T) {
	assert.Equal(t, 42, devtools.Serialize(42))
	assert.Equal(t, "hi", devtools.Serialize("hi"))
	assert.Equal(t, true, devtools.Serialize(true))
}

func TestSerialize_StructBecomesMapOfExportedFields(t *testing.T) {
	type props struct {
		Name   string
		hidden int
	}
	out := devtools.Serialize(props{Name: "counter", hidden: 1})
	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "counter", m["Name"])
	_, hasHidden := m["hidden"]
	assert.False(t, hasHidden)
}

func TestSerialize_TimeBecomesDateMarker(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	out := devtools.Serialize(ts)
	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ts.Format(time.RFC3339Nano), m["__date__"])
}

func TestSerialize_RegexpBecomesRegexpMarker(t *testing.T) {
	re := regexp.MustCompile(`^\d+$`)
	out := devtools.Serialize(re)
	m, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, `^\d+$`, m["__regexp__"])
}

type cyclic struct {
	Name string
	Next *cyclic
}

func TestSerialize_CycleBecomesCircularMarkerNotInfiniteLoop(t *testing.T) {
	a := &cyclic{Name: "a"}
	b := &cyclic{Name: "b", Next: a}
	a.Next = b

	done := make(chan any, 1)
	go func() { done <- devtools.Serialize(a) }()

	select {
	case out := <-done:
		m, ok := out.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "a", m["Name"])
		next, ok := m["Next"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "b", next["Name"])
		circular, ok := next["Next"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, circular["__circular__"])
	case <-time.After(2 * time.Second):
		t.Fatal("Serialize did not terminate on a cyclic value")
	}
}

func TestSerialize_SelfReferencingMapTerminates(t *testing.T) {
	m := map[string]any{}
	m["self"] = m

	done := make(chan any, 1)
	go func() { done <- devtools.Serialize(m) }()

	select {
	case out := <-done:
		outMap, ok := out.(map[string]any)
		require.True(t, ok)
		self, ok := outMap["self"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, self["__circular__"])
	case <-time.After(2 * time.Second):
		t.Fatal("Serialize did not terminate on a self-referencing map")
	}
}
