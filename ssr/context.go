package ssr

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Context is the per-render SSR state: collected data (last-write-wins on
// duplicate keys), a style set deduplicated by exact string equality, an
// opaque island list, and an async-pending set tracking outstanding
// suspended work.
type Context struct {
	mu        sync.Mutex
	renderID  string
	data      map[string]any
	styles    []string
	styleSeen map[string]bool
	islands   []any
	pending   map[string]bool
	completed bool
}

func newContext() *Context {
	return &Context{
		renderID:  uuid.New().String(),
		data:      map[string]any{},
		styleSeen: map[string]bool{},
		pending:   map[string]bool{},
	}
}

// RenderID returns this render's unique id, for correlating collected
// data, islands, and log lines that belong to the same render across
// concurrent requests.
func (c *Context) RenderID() string {
	return c.renderID
}

// WithSSRContext returns a child of parent carrying a fresh Context, along
// with that Context for direct inspection once the render finishes.
func WithSSRContext(parent context.Context) (context.Context, *Context) {
	sc := newContext()
	return context.WithValue(parent, ctxKey{}, sc), sc
}

// GetSSRContext returns the Context riding on ctx, if any.
func GetSSRContext(ctx context.Context) (*Context, bool) {
	sc, ok := ctx.Value(ctxKey{}).(*Context)
	return sc, ok
}

// CollectData records value under key in the current SSR context. Outside
// any SSR context this is a silent no-op, so components that collect data
// keep working unchanged in a client-only render.
func CollectData(ctx context.Context, key string, value any) {
	sc, ok := GetSSRContext(ctx)
	if !ok {
		return
	}
	sc.mu.Lock()
	sc.data[key] = value
	sc.mu.Unlock()
}

// ExtractStyles appends css to the current SSR context's style set unless
// an identical string was already collected. Outside any SSR context this
// is a silent no-op.
func ExtractStyles(ctx context.Context, css string) {
	sc, ok := GetSSRContext(ctx)
	if !ok {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.styleSeen[css] {
		return
	}
	sc.styleSeen[css] = true
	sc.styles = append(sc.styles, css)
}

// MarkPending records that async work identified by id is still
// outstanding; a no-op outside any SSR context.
func MarkPending(ctx context.Context, id string) {
	sc, ok := GetSSRContext(ctx)
	if !ok {
		return
	}
	sc.mu.Lock()
	sc.pending[id] = true
	sc.mu.Unlock()
}

// ResolvePending clears id from the pending set; a no-op outside any SSR
// context.
func ResolvePending(ctx context.Context, id string) {
	sc, ok := GetSSRContext(ctx)
	if !ok {
		return
	}
	sc.mu.Lock()
	delete(sc.pending, id)
	sc.mu.Unlock()
}

// AddIsland appends an opaque island descriptor, collected for the
// external island manager to consume after the render completes.
func AddIsland(ctx context.Context, island any) {
	sc, ok := GetSSRContext(ctx)
	if !ok {
		return
	}
	sc.mu.Lock()
	sc.islands = append(sc.islands, island)
	sc.mu.Unlock()
}

// Data returns a snapshot of everything collected via CollectData.
func (c *Context) Data() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// Styles returns the deduplicated collected styles in first-seen order.
func (c *Context) Styles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.styles))
	copy(out, c.styles)
	return out
}

// Islands returns every island descriptor collected during the render.
func (c *Context) Islands() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]any, len(c.islands))
	copy(out, c.islands)
	return out
}

// Pending reports whether any async work is still outstanding.
func (c *Context) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) > 0
}

// Complete reports whether the render has finished, set by RenderToString
// once fn returns.
func (c *Context) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// RenderToString runs fn under a fresh SSR context with the given
// timeout budget, returning the collected Context. Exceeding the budget
// fails with *ErrSsrTimeout and abandons fn's result; fn is expected to
// observe ctx's own deadline/cancellation the same way any context-aware
// code would.
func RenderToString(parent context.Context, timeout time.Duration, fn func(ctx context.Context) error) (*Context, error) {
	deadlineCtx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	renderCtx, sc := WithSSRContext(deadlineCtx)

	done := make(chan error, 1)
	go func() {
		done <- fn(renderCtx)
	}()

	select {
	case err := <-done:
		sc.mu.Lock()
		sc.completed = true
		sc.mu.Unlock()
		if err != nil {
			return sc, err
		}
		return sc, nil
	case <-deadlineCtx.Done():
		return sc, &ErrSsrTimeout{Budget: timeout.String()}
	}
}
