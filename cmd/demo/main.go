// Command demo is a small terminal program exercising the reactive core,
// the DI-backed module system, the store registry, and the Bubbletea
// renderer together: a counter whose value lives in a registered store,
// whose step and ceiling come from the DI container, and whose view is a
// Lipgloss-styled Bubbles progress bar.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprig-ui/sprig/component"
	"github.com/sprig-ui/sprig/config"
	"github.com/sprig-ui/sprig/di"
	"github.com/sprig-ui/sprig/module"
	"github.com/sprig-ui/sprig/reactive"
	"github.com/sprig-ui/sprig/renderer"
	"github.com/sprig-ui/sprig/store"
)

var (
	stepToken = di.NewToken[int]("demo.step")
	maxToken  = di.NewToken[int]("demo.max")
)

var counterStore = store.DefineStore("demo.counter", func() *reactive.Source[int] {
	return reactive.NewSource(0, reactive.WithLabel[int]("demo.counter"))
}, store.Metadata{Description: "the counter demo's shared count"})

var keyMap = struct {
	Up, Down, Quit key.Binding
}{
	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "increment")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "decrement")),
	Quit: key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}

// demoProps is the module's Setup-resolved DI values, threaded into the
// root component as ordinary props rather than re-resolved inside it.
type demoProps struct {
	step int
	max  int
}

// demoView is the root component's rendered output: a frame plus the live
// closures the renderer's Adapter calls back into on key input.
type demoView struct {
	frame     string
	increment func()
	decrement func()
}

type demoAdapter struct{}

func (demoAdapter) ToView(out demoView) string { return out.frame }

func (demoAdapter) HandleMsg(msg tea.Msg, out demoView) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(km, keyMap.Up):
		out.increment()
	case key.Matches(km, keyMap.Down):
		out.decrement()
	case key.Matches(km, keyMap.Quit):
		return tea.Quit
	}
	return nil
}

func rootModule() *module.Module {
	return &module.Module{
		ID: "root",
		Providers: []module.ProviderBinding{
			module.Bind(stepToken, di.UseValue(1)),
			module.Bind(maxToken, di.UseValue(20)),
		},
		StoreIDs: []string{counterStore.ID()},
		Setup: func(ctx *module.Context) any {
			step, _ := di.Resolve(ctx.Container, stepToken)
			max, _ := di.Resolve(ctx.Container, maxToken)
			return demoProps{step: step, max: max}
		},
	}
}

func demoComponent(bar progress.Model) *component.Component[demoProps, demoView] {
	return component.DefineComponent(func(props demoProps) func() demoView {
		count := store.UseStore(counterStore)

		component.OnMount(func() {
			fmt.Fprintln(os.Stderr, "[demo] mounted")
		})
		component.OnCleanup(func() {
			fmt.Fprintln(os.Stderr, "[demo] cleaned up")
		})

		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
		helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

		return func() demoView {
			n := count.Get()
			percent := float64(n) / float64(props.max)
			switch {
			case percent > 1:
				percent = 1
			case percent < 0:
				percent = 0
			}

			title := titleStyle.Render("Sprig Counter Demo")
			body := fmt.Sprintf("count: %d / %d\n%s", n, props.max, bar.ViewAs(percent))
			help := helpStyle.Render(fmt.Sprintf(
				"%s increment  %s decrement  %s quit",
				keyMap.Up.Help().Key, keyMap.Down.Help().Key, keyMap.Quit.Help().Key,
			))

			return demoView{
				frame: fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help),
				increment: func() {
					count.Update(func(v int) int {
						v += props.step
						if v > props.max {
							v = props.max
						}
						return v
					})
				},
				decrement: func() {
					count.Update(func(v int) int {
						v -= props.step
						if v < 0 {
							v = 0
						}
						return v
					})
				},
			}
		}
	}, "CounterDemo")
}

func main() {
	cfg := config.Default()
	fmt.Fprintf(os.Stderr, "[demo] starting at log level %s\n", cfg.LogLevel)
	store.ApplyConfig(cfg.Stores)

	app := module.NewApp(rootModule())
	if err := app.Bootstrap(); err != nil {
		fmt.Fprintln(os.Stderr, "bootstrap failed:", err)
		os.Exit(1)
	}
	module.SetApp(app)
	defer app.Unmount()

	propsValue, err := app.GetModuleContext("root")
	if err != nil {
		fmt.Fprintln(os.Stderr, "module context unavailable:", err)
		os.Exit(1)
	}

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	def := demoComponent(bar)

	prog := renderer.Mount(def, propsValue.(demoProps), demoAdapter{})
	defer prog.Unmount()

	if err := prog.Run(tea.WithAltScreen()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
