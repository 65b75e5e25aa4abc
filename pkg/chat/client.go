package chat

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

// Client owns one tool channel session, its cached tool catalog, and a query
// processor. The session is established lazily on first use; concurrent first
// callers are serialized so only one connect and one catalog fetch happen.
// ProcessQuery and ListTools never return a Go error: failures are reported
// through the status field of the envelope.
type Client struct {
	processor *Processor
	channel   ToolChannel

	mu        sync.Mutex
	connected bool
	catalog   []ToolDescriptor
}

// NewClient creates a client facade over the given processor and channel.
// The channel must be the same instance the processor executes tools against.
func NewClient(processor *Processor, channel ToolChannel) *Client {
	return &Client{
		processor: processor,
		channel:   channel,
	}
}

// EnsureConnected establishes the tool channel session and fetches the tool
// catalog if not yet done. On failure the client stays disconnected and a
// later call may retry.
func (c *Client) EnsureConnected(ctx context.Context) error {
	if c.isConnected() {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// re-check under the lock
	if c.connected {
		return nil
	}

	catalog, err := c.channel.ListTools(ctx)
	if err != nil {
		return errors.WithMessage(err, "failed to connect to MCP server")
	}
	c.catalog = catalog
	c.connected = true

	logger.ContextKV(ctx, xlog.INFO,
		"status", "connected",
		"tools", len(catalog),
	)
	return nil
}

func (c *Client) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// ProcessQuery ensures the session and runs the query loop with the cached
// catalog.
func (c *Client) ProcessQuery(ctx context.Context, query string) *QueryResponse {
	if err := c.EnsureConnected(ctx); err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"status", "connect_failed",
			"err", err.Error(),
		)
		return &QueryResponse{Status: StatusError, Error: err.Error()}
	}

	c.mu.Lock()
	catalog := c.catalog
	c.mu.Unlock()

	result, err := c.processor.Process(ctx, query, catalog)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"status", "query_failed",
			"err", err.Error(),
		)
		return &QueryResponse{Status: StatusError, Error: err.Error()}
	}
	return &QueryResponse{Status: StatusSuccess, Data: result}
}

// ListTools ensures the session and returns the cached catalog without a
// remote re-fetch.
func (c *Client) ListTools(ctx context.Context) *ToolsResponse {
	if err := c.EnsureConnected(ctx); err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"status", "connect_failed",
			"err", err.Error(),
		)
		return &ToolsResponse{Status: StatusError, Error: err.Error()}
	}

	c.mu.Lock()
	catalog := c.catalog
	c.mu.Unlock()
	return &ToolsResponse{Status: StatusSuccess, Tools: catalog}
}

// Close releases the underlying channel resources. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	c.connected = false
	c.catalog = nil
	c.mu.Unlock()
	return c.channel.Cleanup()
}
