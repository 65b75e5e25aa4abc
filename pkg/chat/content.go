package chat

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
)

// Role is the author of a conversation message.
type Role string

const (
	// RoleUser is a message sent by the caller or carrying tool results.
	RoleUser Role = "user"
	// RoleAssistant is a message produced by the model.
	RoleAssistant Role = "assistant"
)

// ContentBlock is one unit of conversation content: text,
// a tool invocation request, or a tool invocation result.
type ContentBlock interface {
	isBlock()
}

// TextBlock is a block with plain text.
type TextBlock struct {
	Text string `json:"text"`
}

func (tb TextBlock) String() string {
	return tb.Text
}

func (TextBlock) isBlock() {}

// ToolUseBlock is a request from the model to invoke a named tool.
type ToolUseBlock struct {
	// ID is unique per invocation and must be preserved verbatim
	// when the matching result is appended.
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

func (ToolUseBlock) isBlock() {}

// ToolResultBlock carries the outcome of one tool invocation back to the model.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

func (ToolResultBlock) isBlock() {}

// Message is one entry of the conversation transcript. The conversation is
// append-only and lives only for the duration of a single query.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// NewUserMessage creates a user message from the given blocks.
func NewUserMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleUser, Content: blocks}
}

// NewAssistantMessage creates an assistant message from the given blocks.
func NewAssistantMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleAssistant, Content: blocks}
}

// GetContent returns the concatenated text of the message.
func (m Message) GetContent() string {
	var buf strings.Builder
	for _, b := range m.Content {
		if tb, ok := b.(TextBlock); ok {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(tb.Text)
		}
	}
	return buf.String()
}

// ToolDescriptor describes one callable tool exposed by the remote server.
// Immutable once fetched; the catalog keeps the server's order.
type ToolDescriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type taggedBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     map[string]any  `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// MarshalJSON implements json.Marshaler for the message,
// encoding each block with a type tag.
func (m Message) MarshalJSON() ([]byte, error) {
	blocks := make([]taggedBlock, 0, len(m.Content))
	for _, b := range m.Content {
		switch typ := b.(type) {
		case TextBlock:
			blocks = append(blocks, taggedBlock{Type: "text", Text: typ.Text})
		case ToolUseBlock:
			blocks = append(blocks, taggedBlock{Type: "tool_use", ID: typ.ID, Name: typ.Name, Input: typ.Input})
		case ToolResultBlock:
			content, err := json.Marshal(typ.Content)
			if err != nil {
				return nil, errors.Wrap(err, "failed to marshal tool result content")
			}
			blocks = append(blocks, taggedBlock{Type: "tool_result", ToolUseID: typ.ToolUseID, Content: content, IsError: typ.IsError})
		default:
			return nil, errors.Newf("unsupported content block type: %T", b)
		}
	}
	return json.Marshal(struct {
		Role    Role          `json:"role"`
		Content []taggedBlock `json:"content"`
	}{Role: m.Role, Content: blocks})
}

// UnmarshalJSON implements json.Unmarshaler for the message.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    Role          `json:"role"`
		Content []taggedBlock `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "failed to unmarshal message")
	}
	m.Role = raw.Role
	m.Content = make([]ContentBlock, 0, len(raw.Content))
	for _, b := range raw.Content {
		switch b.Type {
		case "text":
			m.Content = append(m.Content, TextBlock{Text: b.Text})
		case "tool_use":
			m.Content = append(m.Content, ToolUseBlock{ID: b.ID, Name: b.Name, Input: b.Input})
		case "tool_result":
			var content string
			if len(b.Content) > 0 {
				if err := json.Unmarshal(b.Content, &content); err != nil {
					return errors.Wrap(err, "failed to unmarshal tool result content")
				}
			}
			m.Content = append(m.Content, ToolResultBlock{ToolUseID: b.ToolUseID, Content: content, IsError: b.IsError})
		default:
			return errors.Newf("unsupported content block type: %q", b.Type)
		}
	}
	return nil
}
