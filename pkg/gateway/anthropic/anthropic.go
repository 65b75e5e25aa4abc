// Package anthropic implements the model gateway over the Anthropic API.
package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpapi/pkg/chat"
	"github.com/effective-security/x/values"
)

var (
	ErrMissingToken           = errors.New("anthropic: missing API key, set it in the ANTHROPIC_API_KEY environment variable")
	ErrUnsupportedContentType = errors.New("anthropic: unsupported content type")
)

const DefaultMaxTokens = 4096

// Gateway calls the Anthropic Messages API and converts the response into the
// conversation block model.
type Gateway struct {
	Client  *anthropic.Client
	Options *Options
}

var _ chat.Gateway = (*Gateway)(nil)

// New creates an Anthropic gateway using the official Anthropic SDK.
// If no token is provided via options, it is read from the
// ANTHROPIC_API_KEY environment variable.
func New(opts ...Option) (*Gateway, error) {
	options := &Options{
		Token:      os.Getenv(TokenEnvVarName),
		BaseURL:    "https://api.anthropic.com",
		HttpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(options)
	}

	if len(options.Token) == 0 {
		return nil, ErrMissingToken
	}
	if options.Model == "" {
		return nil, errors.New("anthropic: model is required")
	}

	sdkOpts := []option.RequestOption{
		option.WithAPIKey(options.Token),
		option.WithMaxRetries(2),
		option.WithRequestTimeout(5 * time.Minute),
	}
	if options.BaseURL != "" {
		sdkOpts = append(sdkOpts, option.WithBaseURL(options.BaseURL))
	}
	if options.HttpClient != nil {
		sdkOpts = append(sdkOpts, option.WithHTTPClient(options.HttpClient))
	}

	client := anthropic.NewClient(sdkOpts...)
	return &Gateway{
		Client:  &client,
		Options: options,
	}, nil
}

// GetName returns the configured model name.
func (g *Gateway) GetName() string {
	return g.Options.Model
}

// Complete implements the chat.Gateway interface.
func (g *Gateway) Complete(ctx context.Context, transcript []chat.Message, tools []chat.ToolDescriptor) ([]chat.ContentBlock, error) {
	sdkMessages, err := ProcessMessages(transcript)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic: failed to process messages")
	}

	sdkTools, err := ToTools(tools)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic: failed to convert tools")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.Options.Model),
		Messages:  sdkMessages,
		MaxTokens: values.NumbersCoalesce(g.Options.MaxTokens, DefaultMaxTokens),
	}
	if len(sdkTools) > 0 {
		params.Tools = sdkTools
	}

	result, err := g.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "anthropic: failed to create message")
	}

	return FromContent(result.Content)
}

// FromContent converts Anthropic response content blocks to the conversation
// block model, keeping the order as returned.
func FromContent(content []anthropic.ContentBlockUnion) ([]chat.ContentBlock, error) {
	blocks := make([]chat.ContentBlock, 0, len(content))
	for _, contentBlock := range content {
		switch block := contentBlock.AsAny().(type) {
		case anthropic.TextBlock:
			blocks = append(blocks, chat.TextBlock{Text: block.Text})
		case anthropic.ToolUseBlock:
			argumentsJSON, err := json.Marshal(block.Input)
			if err != nil {
				return nil, errors.Wrap(err, "anthropic: failed to marshal tool use arguments")
			}
			var input map[string]any
			if err := json.Unmarshal(argumentsJSON, &input); err != nil {
				return nil, errors.Wrap(err, "anthropic: failed to unmarshal tool use arguments")
			}
			blocks = append(blocks, chat.ToolUseBlock{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		default:
			return nil, errors.WithMessagef(ErrUnsupportedContentType, "anthropic: %T", block)
		}
	}
	return blocks, nil
}

// ToTools converts tool descriptors to Anthropic SDK tool parameters.
// Returns nil if no tools are provided, which the API handles gracefully.
func ToTools(tools []chat.ToolDescriptor) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	sdkTools := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		var schema struct {
			Type       string         `json:"type"`
			Properties map[string]any `json:"properties"`
			Required   []string       `json:"required"`
		}
		if len(tool.InputSchema) > 0 {
			if err := json.Unmarshal(tool.InputSchema, &schema); err != nil {
				return nil, errors.Wrapf(err, "invalid input schema for tool %q", tool.Name)
			}
		}

		inputSchema := anthropic.ToolInputSchemaParam{
			Type:       "object",
			Properties: schema.Properties,
		}
		if len(schema.Required) > 0 {
			inputSchema.Required = schema.Required
		}

		sdkTools[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: inputSchema,
			},
		}
	}
	return sdkTools, nil
}

// ProcessMessages converts conversation messages to Anthropic SDK message
// parameters. Tool results travel as user messages with tool result blocks.
func ProcessMessages(messages []chat.Message) ([]anthropic.MessageParam, error) {
	chatMessages := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		if len(msg.Content) == 0 {
			continue
		}

		contents := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
		for _, part := range msg.Content {
			switch p := part.(type) {
			case chat.TextBlock:
				contents = append(contents, anthropic.NewTextBlock(p.Text))
			case chat.ToolUseBlock:
				inputJSON, err := json.Marshal(p.Input)
				if err != nil {
					return nil, errors.Wrap(err, "anthropic: failed to marshal tool use input")
				}
				contents = append(contents, anthropic.NewToolUseBlock(p.ID, json.RawMessage(inputJSON), p.Name))
			case chat.ToolResultBlock:
				contents = append(contents, anthropic.NewToolResultBlock(p.ToolUseID, p.Content, p.IsError))
			default:
				return nil, errors.WithMessagef(ErrUnsupportedContentType, "anthropic: %T", part)
			}
		}

		switch msg.Role {
		case chat.RoleUser:
			chatMessages = append(chatMessages, anthropic.NewUserMessage(contents...))
		case chat.RoleAssistant:
			chatMessages = append(chatMessages, anthropic.NewAssistantMessage(contents...))
		default:
			return nil, errors.Newf("anthropic: unsupported message role: %v", msg.Role)
		}
	}
	return chatMessages, nil
}
