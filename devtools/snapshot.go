package devtools

import (
	"bytes"
	"encoding/json"

	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/sprig-ui/sprig/component"
	"github.com/sprig-ui/sprig/reactive"
)

// Tree is the full devtools publication: the component tree, the effect
// registry, and the signal registry. Each component's props are run
// through Serialize so props containing cycles or non-JSON-native values
// never crash an inspector.
type Tree struct {
	Components []ComponentNode           `json:"components"`
	Effects    []reactive.EffectSnapshot `json:"effects"`
	Signals    []reactive.SignalSnapshot `json:"signals"`
}

// ComponentNode mirrors component.Snapshot but with Props already run
// through Serialize, so the result is directly JSON/msgpack-safe.
type ComponentNode struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	ParentID    uint64 `json:"parentId"`
	RenderCount uint64 `json:"renderCount"`
	LastRender  int64  `json:"lastRenderUnixNano"`
	Props       any    `json:"props"`
}

// Capture gathers the current state of every registry the core publishes.
func Capture() Tree {
	snaps := component.Snapshots()
	nodes := make([]ComponentNode, len(snaps))
	for i, s := range snaps {
		nodes[i] = ComponentNode{
			ID:          s.ID,
			Name:        s.Name,
			ParentID:    s.ParentID,
			RenderCount: s.RenderCount,
			LastRender:  s.LastRender.UnixNano(),
			Props:       Serialize(s.Props),
		}
	}
	return Tree{
		Components: nodes,
		Effects:    reactive.Effects(),
		Signals:    reactive.Signals(),
	}
}

// ToJSON captures the current state and encodes it as JSON.
func ToJSON() ([]byte, error) {
	return json.Marshal(Capture())
}

// ToMsgpack captures the current state and encodes it as MessagePack, a
// more compact wire format for a devtools inspector polling frequently.
// Keys follow the same json tags as ToJSON.
func ToMsgpack() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(Capture()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToYAML captures the current state and encodes it as YAML, the
// human-readable export format for dumping a snapshot to disk or a bug
// report.
func ToYAML() ([]byte, error) {
	return yaml.Marshal(Capture())
}
