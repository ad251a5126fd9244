package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"

	"github.com/sprig-ui/sprig/observability"
)

// InspectorServer is an MCP server that exposes Capture()'s snapshot to
// an AI agent or other MCP client: a "snapshot" resource for passive
// reads, and a "capture_snapshot" tool for an on-demand re-capture with
// the same payload. It wraps every handler in panic recovery so a bad
// devtools query never takes down the host process, and rate-limits
// every handler with a token bucket so a polling client cannot starve
// the host of capture time.
type InspectorServer struct {
	server  *mcp.Server
	limiter *rate.Limiter
}

// InspectorOption configures an InspectorServer at construction time.
type InspectorOption func(*InspectorServer)

// WithRequestsPerSecond overrides the default rate limit applied to every
// resource read and tool call, with a burst capacity of twice the rate.
func WithRequestsPerSecond(rps int) InspectorOption {
	return func(s *InspectorServer) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 2*rps)
	}
}

const defaultInspectorRPS = 10

// NewInspectorServer builds an InspectorServer with its resource and tool
// already registered. Call Serve to start accepting connections.
func NewInspectorServer(opts ...InspectorOption) *InspectorServer {
	impl := &mcp.Implementation{Name: "sprig-devtools", Version: "1.0.0"}
	s := &InspectorServer{
		server:  mcp.NewServer(impl, &mcp.ServerOptions{}),
		limiter: rate.NewLimiter(rate.Limit(defaultInspectorRPS), 2*defaultInspectorRPS),
	}
	for _, o := range opts {
		o(s)
	}

	s.server.AddResource(
		&mcp.Resource{
			URI:         "sprig://snapshot",
			Name:        "snapshot",
			Description: "Component tree, effect registry, and signal registry as of the last read",
			MIMEType:    "application/json",
		},
		s.readSnapshot,
	)

	s.server.AddTool(
		&mcp.Tool{
			Name:        "capture_snapshot",
			Description: "Capture a fresh snapshot of the running reactive graph and component tree",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		s.handleCaptureSnapshot,
	)

	return s
}

// Serve blocks, accepting one stdio-transport MCP session until the
// client disconnects or ctx is canceled.
func (s *InspectorServer) Serve(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			observability.ReportComponentError("devtools-inspector", fmt.Errorf("mcp server panic: %v", r))
			err = fmt.Errorf("devtools: inspector server panic: %v", r)
		}
	}()

	transport := &mcp.StdioTransport{}
	session, connErr := s.server.Connect(ctx, transport, nil)
	if connErr != nil {
		return fmt.Errorf("devtools: connecting stdio transport: %w", connErr)
	}
	if waitErr := session.Wait(); waitErr != nil {
		return fmt.Errorf("devtools: inspector session ended: %w", waitErr)
	}
	return nil
}

func (s *InspectorServer) readSnapshot(ctx context.Context, req *mcp.ReadResourceRequest) (result *mcp.ReadResourceResult, err error) {
	defer recoverInto(&err, "readSnapshot")

	if !s.limiter.Allow() {
		return nil, fmt.Errorf("devtools: snapshot rate limit exceeded, retry later")
	}

	data, marshalErr := json.MarshalIndent(Capture(), "", "  ")
	if marshalErr != nil {
		return nil, fmt.Errorf("devtools: marshaling snapshot: %w", marshalErr)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: "sprig://snapshot", MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}

func (s *InspectorServer) handleCaptureSnapshot(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
	defer recoverInto(&err, "capture_snapshot")

	if !s.limiter.Allow() {
		return nil, fmt.Errorf("devtools: snapshot rate limit exceeded, retry later")
	}

	data, marshalErr := json.MarshalIndent(Capture(), "", "  ")
	if marshalErr != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("failed to capture snapshot: %v", marshalErr)}},
			IsError: true,
		}, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		IsError: false,
	}, nil
}

func recoverInto(err *error, handler string) {
	if r := recover(); r != nil {
		observability.ReportComponentError("devtools-inspector", fmt.Errorf("%s panic: %v\n%s", handler, r, debug.Stack()))
		*err = fmt.Errorf("devtools: %s panicked: %v", handler, r)
	}
}
