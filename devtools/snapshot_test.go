package devtools_test

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sprig-ui/sprig/component"
	"github.com/sprig-ui/sprig/devtools"
	"github.com/sprig-ui/sprig/reactive"
	"github.com/sprig-ui/sprig/scope"
)

type cyclicProps struct {
	Self *cyclicProps
}

func TestCapture_NeverPanicsOnCyclicProps(t *testing.T) {
	p := &cyclicProps{}
	p.Self = p

	def := component.DefineComponent(func(props *cyclicProps) func() int {
		return func() int { return 1 }
	}, "CyclicPropsComponent")

	_, dispose := scope.WithScope(func(s *scope.Scope) any {
		inst := def.Instantiate(p)
		inst.Render()

		assert.NotPanics(t, func() {
			tree := devtools.Capture()
			require.NotEmpty(t, tree.Components)
		})
		return nil
	})
	dispose()
}

func TestCapture_IncludesSignalsAndEffects(t *testing.T) {
	_, dispose := scope.WithScope(func(s *scope.Scope) any {
		src := reactive.NewSource(1, reactive.WithLabel[int]("counter"))
		stop := reactive.Effect(func() { src.Get() }, reactive.WithEffectLabel("log-counter"))
		defer stop()

		tree := devtools.Capture()
		var foundSignal, foundEffect bool
		for _, sig := range tree.Signals {
			if sig.Label == "counter" {
				foundSignal = true
			}
		}
		for _, eff := range tree.Effects {
			if eff.Label == "log-counter" {
				foundEffect = true
			}
		}
		assert.True(t, foundSignal)
		assert.True(t, foundEffect)
		return nil
	})
	dispose()
}

func TestToJSON_ProducesValidJSON(t *testing.T) {
	data, err := devtools.ToJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "components")
	assert.Contains(t, decoded, "effects")
	assert.Contains(t, decoded, "signals")
}

func TestToMsgpack_ProducesValidMsgpack(t *testing.T) {
	data, err := devtools.ToMsgpack()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "components")
}

func TestToYAML_ProducesValidYAML(t *testing.T) {
	data, err := devtools.ToYAML()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "components")
}
