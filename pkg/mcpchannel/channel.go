// Package mcpchannel implements the tool channel over the Model Context
// Protocol, using the official MCP SDK client.
package mcpchannel

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpapi/pkg/chat"
	"github.com/effective-security/xlog"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpapi", "mcpchannel")

// transportBuilder is overridden in tests to stub the transport factory.
var transportBuilder = buildTransport

// Channel manages one client session against a remote MCP server. The session
// is established lazily on first use; a failed connect leaves the channel
// disconnected so a later call can retry.
type Channel struct {
	client   *mcpsdk.Client
	endpoint string

	mu      sync.Mutex
	session *mcpsdk.ClientSession
}

var _ chat.ToolChannel = (*Channel)(nil)

// New creates a channel for the given endpoint spec. Supported specs:
// "stdio://<command>", "streamhttp://<url>", and http(s) URLs, which connect
// over SSE.
func New(endpoint string) *Channel {
	impl := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "mcpapi", Version: "1.0.0"}, nil)
	return &Channel{
		client:   impl,
		endpoint: endpoint,
	}
}

func (c *Channel) connect(ctx context.Context) (*mcpsdk.ClientSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}

	logger.ContextKV(ctx, xlog.INFO,
		"status", "connecting",
		"endpoint", c.endpoint,
	)

	tr, err := transportBuilder(ctx, c.endpoint)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to build transport")
	}
	session, err := c.client.Connect(ctx, tr, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to MCP server at %s", c.endpoint)
	}
	c.session = session
	return session, nil
}

// ListTools implements the chat.ToolChannel interface, returning the catalog
// in server order.
func (c *Channel) ListTools(ctx context.Context) ([]chat.ToolDescriptor, error) {
	session, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	var tools []chat.ToolDescriptor
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			return nil, errors.Wrap(err, "failed to list tools")
		}
		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid input schema for tool %q", tool.Name)
		}
		tools = append(tools, chat.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: schema,
		})
	}
	return tools, nil
}

// CallTool implements the chat.ToolChannel interface. A result the server
// marks as an error is returned as a Go error carrying the flattened payload.
func (c *Channel) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	session, err := c.connect(ctx)
	if err != nil {
		return "", err
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "calling_tool",
		"tool", name,
	)

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to call tool %s", name)
	}

	payload := flattenContent(result.Content)
	if result.IsError {
		return "", errors.Newf("tool %s failed: %s", name, payload)
	}
	return payload, nil
}

// Cleanup implements the chat.ToolChannel interface. It closes the session if
// one exists; errors are logged, never propagated.
func (c *Channel) Cleanup() error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session == nil {
		return nil
	}
	if err := session.Close(); err != nil {
		logger.KV(xlog.ERROR,
			"status", "cleanup_failed",
			"err", err.Error(),
		)
	}
	return nil
}

// flattenContent joins the textual parts of a tool result; non-text parts are
// carried as their JSON encoding.
func flattenContent(content []mcpsdk.Content) string {
	var parts []string
	for _, item := range content {
		switch typ := item.(type) {
		case *mcpsdk.TextContent:
			parts = append(parts, typ.Text)
		default:
			if js, err := json.Marshal(item); err == nil {
				parts = append(parts, string(js))
			}
		}
	}
	return strings.Join(parts, "\n")
}

const (
	stdioSchemePrefix      = "stdio://"
	streamHTTPSchemePrefix = "streamhttp://"
)

func buildTransport(ctx context.Context, spec string) (mcpsdk.Transport, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("endpoint is empty")
	}

	lowered := strings.ToLower(spec)
	switch {
	case strings.HasPrefix(lowered, stdioSchemePrefix):
		return buildStdioTransport(ctx, spec[len(stdioSchemePrefix):])
	case strings.HasPrefix(lowered, streamHTTPSchemePrefix):
		return &mcpsdk.StreamableClientTransport{Endpoint: "http://" + spec[len(streamHTTPSchemePrefix):]}, nil
	case strings.HasPrefix(lowered, "http://"), strings.HasPrefix(lowered, "https://"):
		return &mcpsdk.SSEClientTransport{Endpoint: spec}, nil
	}
	return nil, errors.Newf("unsupported endpoint spec: %q", spec)
}

func buildStdioTransport(ctx context.Context, cmdSpec string) (mcpsdk.Transport, error) {
	parts := strings.Fields(strings.TrimSpace(cmdSpec))
	if len(parts) == 0 {
		return nil, errors.New("stdio command is empty")
	}
	command := newCommand(ctx, parts[0], parts[1:]...)
	return &mcpsdk.CommandTransport{Command: command}, nil
}
