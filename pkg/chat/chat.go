// Package chat implements the query-processing core: the conversation data
// model, the model/tool iteration loop, and the client facade that owns one
// tool channel session.
package chat

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

//go:generate mockgen -source=chat.go -destination=../../mocks/mockchat/chat_mock.gen.go -package mockchat

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpapi", "chat")

// ErrLoopBudgetExceeded is returned when the model keeps requesting tools
// past the configured round budget.
var ErrLoopBudgetExceeded = errors.New("tool round budget exceeded")

// Gateway abstracts a call to a language-model completion service. Given the
// conversation transcript and the tool catalog it returns the ordered content
// blocks of the model's reply, which may contain zero tool-use blocks.
type Gateway interface {
	Complete(ctx context.Context, transcript []Message, tools []ToolDescriptor) ([]ContentBlock, error)
}

// ToolChannel abstracts a connection to a remote server that can enumerate
// callable tools and execute one by name.
type ToolChannel interface {
	// ListTools returns the tool catalog in server order.
	ListTools(ctx context.Context) ([]ToolDescriptor, error)
	// CallTool executes a named tool and returns its text payload.
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
	// Cleanup releases held resources. Idempotent, never panics.
	Cleanup() error
}
