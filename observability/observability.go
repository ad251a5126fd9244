// Package observability provides a pluggable error-reporting sink plus a
// breadcrumb trail, used by the component runtime, module bootstrap, and
// the reactive scheduler to report failures that are isolated rather than
// propagated (panicking effects, failed mount hooks, aborted bootstraps).
//
// If no reporter is installed, the default reporter logs to stderr. A
// production app installs a SentryReporter via SetDefault.
package observability

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// Breadcrumb is one entry in the trail of events leading up to an error.
type Breadcrumb struct {
	Category  string
	Message   string
	Data      map[string]any
	Timestamp time.Time
}

// ErrorContext carries optional metadata about where an error occurred.
type ErrorContext struct {
	Component string
	Tags      map[string]string
	Extra     map[string]any
}

// Reporter is the pluggable sink for uncaught errors.
type Reporter interface {
	ReportError(err error, ctx *ErrorContext)
	Flush(timeout time.Duration) error
}

const maxBreadcrumbs = 100

var (
	crumbsMu sync.Mutex
	crumbs   []Breadcrumb
)

// RecordBreadcrumb appends a breadcrumb, dropping the oldest once
// maxBreadcrumbs is exceeded.
func RecordBreadcrumb(category, message string, data map[string]any) {
	crumbsMu.Lock()
	defer crumbsMu.Unlock()
	crumbs = append(crumbs, Breadcrumb{Category: category, Message: message, Data: data, Timestamp: time.Now()})
	if len(crumbs) > maxBreadcrumbs {
		crumbs = crumbs[len(crumbs)-maxBreadcrumbs:]
	}
}

// Breadcrumbs returns a copy of the recorded trail, oldest first.
func Breadcrumbs() []Breadcrumb {
	crumbsMu.Lock()
	defer crumbsMu.Unlock()
	out := make([]Breadcrumb, len(crumbs))
	copy(out, crumbs)
	return out
}

// ClearBreadcrumbs discards the recorded trail. Used between test runs.
func ClearBreadcrumbs() {
	crumbsMu.Lock()
	crumbs = nil
	crumbsMu.Unlock()
}

// ConsoleReporter logs to the standard logger; the default reporter when
// nothing has been configured via SetDefault.
type ConsoleReporter struct {
	Verbose bool
	mu      sync.Mutex
}

func NewConsoleReporter(verbose bool) *ConsoleReporter {
	return &ConsoleReporter{Verbose: verbose}
}

func (r *ConsoleReporter) ReportError(err error, ctx *ErrorContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	component := "?"
	if ctx != nil && ctx.Component != "" {
		component = ctx.Component
	}
	log.Printf("[ERROR] component %q: %v", component, err)
	if r.Verbose {
		for _, c := range Breadcrumbs() {
			log.Printf("  breadcrumb[%s] %s: %s", c.Timestamp.Format(time.RFC3339), c.Category, c.Message)
		}
	}
}

func (r *ConsoleReporter) Flush(time.Duration) error { return nil }

// SentryOption configures a SentryReporter's underlying client.
type SentryOption func(*sentry.ClientOptions)

func WithEnvironment(env string) SentryOption {
	return func(o *sentry.ClientOptions) { o.Environment = env }
}

func WithRelease(release string) SentryOption {
	return func(o *sentry.ClientOptions) { o.Release = release }
}

func WithDebug(debug bool) SentryOption {
	return func(o *sentry.ClientOptions) { o.Debug = debug }
}

func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) SentryOption {
	return func(o *sentry.ClientOptions) { o.BeforeSend = fn }
}

// SentryReporter sends errors to Sentry via a dedicated client hub so it
// never interferes with a host application's own Sentry setup.
type SentryReporter struct {
	hub *sentry.Hub
}

func NewSentryReporter(dsn string, opts ...SentryOption) (*SentryReporter, error) {
	clientOpts := sentry.ClientOptions{Dsn: dsn}
	for _, o := range opts {
		o(&clientOpts)
	}
	client, err := sentry.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("observability: new sentry client: %w", err)
	}
	scope := sentry.NewScope()
	return &SentryReporter{hub: sentry.NewHub(client, scope)}, nil
}

func (r *SentryReporter) ReportError(err error, ctx *ErrorContext) {
	r.hub.WithScope(func(s *sentry.Scope) {
		if ctx != nil {
			if ctx.Component != "" {
				s.SetTag("component", ctx.Component)
			}
			for k, v := range ctx.Tags {
				s.SetTag(k, v)
			}
			if ctx.Extra != nil {
				s.SetExtras(ctx.Extra)
			}
		}
		for _, c := range Breadcrumbs() {
			s.AddBreadcrumb(&sentry.Breadcrumb{Category: c.Category, Message: c.Message, Data: c.Data, Timestamp: c.Timestamp}, maxBreadcrumbs)
		}
		r.hub.CaptureException(err)
	})
}

func (r *SentryReporter) Flush(timeout time.Duration) error {
	if !r.hub.Flush(timeout) {
		return fmt.Errorf("observability: sentry flush timed out after %s", timeout)
	}
	return nil
}

var (
	defaultMu       sync.Mutex
	defaultReporter Reporter = NewConsoleReporter(false)
)

// SetDefault installs the process-wide reporter used by Default.
func SetDefault(r Reporter) {
	defaultMu.Lock()
	defaultReporter = r
	defaultMu.Unlock()
}

// Default returns the process-wide reporter: a ConsoleReporter until
// SetDefault installs something else.
func Default() Reporter {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultReporter
}

// ReportComponentError is a small convenience used by the component
// and module packages, which only have a component/module name on hand.
func ReportComponentError(component string, err error) {
	Default().ReportError(err, &ErrorContext{Component: component})
}
