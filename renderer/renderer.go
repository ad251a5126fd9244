package renderer

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sprig-ui/sprig/component"
	"github.com/sprig-ui/sprig/reactive"
	"github.com/sprig-ui/sprig/scope"
)

// changedMsg wakes the Bubbletea event loop when the mounted component's
// tracked state changed and the last rendered output needs repainting.
type changedMsg struct{}

// Adapter bridges a component's output type to Bubbletea's Update/View
// contract, so Program itself never needs to know what O actually is.
// ToView renders the current output as a terminal frame. HandleMsg
// translates one Bubbletea message into a mutation, typically by calling
// one of the closures out carries, and returns any follow-up command.
type Adapter[O any] interface {
	ToView(out O) string
	HandleMsg(msg tea.Msg, out O) tea.Cmd
}

// Program mounts a component as the root of a Bubbletea program. It owns
// the root scope, the render effect, and the last rendered output; it
// implements tea.Model by delegating to an Adapter.
type Program[P any, O any] struct {
	mu        sync.Mutex
	inst      *component.Instance[P, O]
	rootScope *scope.Scope
	adapter   Adapter[O]
	teaProg   *tea.Program
	latest    O
	stopFx    func()
}

// Mount opens a fresh root scope, instantiates def with props as its only
// child, and wraps the render closure in an effect: the first run captures
// the initial output and flushes mount callbacks; every subsequent run
// (triggered by a write to a cell the render closure read) stores the new
// output and wakes the running Bubbletea program, if one has started.
func Mount[P any, O any](def *component.Component[P, O], props P, adapter Adapter[O]) *Program[P, O] {
	root := scope.New()
	inst := scope.Run(root, func() *component.Instance[P, O] {
		return def.Instantiate(props)
	})

	p := &Program[P, O]{inst: inst, rootScope: root, adapter: adapter}

	first := true
	p.stopFx = scope.Run(inst.Scope(), func() func() {
		return reactive.Effect(func() {
			out := inst.Render()

			p.mu.Lock()
			p.latest = out
			prog := p.teaProg
			p.mu.Unlock()

			if first {
				first = false
				inst.FlushMount()
				return
			}
			if prog != nil {
				prog.Send(changedMsg{})
			}
		}, reactive.WithEffectLabel("renderer:"+def.Name))
	})

	return p
}

// Init satisfies tea.Model. Mount already produced the first frame, so
// there is nothing further to kick off.
func (p *Program[P, O]) Init() tea.Cmd { return nil }

// Update satisfies tea.Model. changedMsg (sent by the render effect) just
// triggers a repaint and ctrl+c quits the program; every other message is
// handed to the Adapter against the most recently rendered output.
func (p *Program[P, O]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(changedMsg); ok {
		return p, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c":
			return p, tea.Quit
		}
	}

	p.mu.Lock()
	out := p.latest
	p.mu.Unlock()
	return p, p.adapter.HandleMsg(msg, out)
}

// View satisfies tea.Model by asking the Adapter to render the most
// recently captured output.
func (p *Program[P, O]) View() string {
	p.mu.Lock()
	out := p.latest
	p.mu.Unlock()
	return p.adapter.ToView(out)
}

// Run starts the Bubbletea event loop and blocks until the program exits.
func (p *Program[P, O]) Run(opts ...tea.ProgramOption) error {
	prog := tea.NewProgram(p, opts...)
	p.mu.Lock()
	p.teaProg = prog
	p.mu.Unlock()

	_, err := prog.Run()
	return err
}

// Latest returns the most recently rendered output without going through
// the Adapter, for callers (tests, non-interactive drivers) that want the
// raw value.
func (p *Program[P, O]) Latest() O {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest
}

// Unmount stops the render effect and disposes the root scope, running
// every onCleanup callback registered by the component tree.
func (p *Program[P, O]) Unmount() {
	p.stopFx()
	p.rootScope.Dispose()
}
