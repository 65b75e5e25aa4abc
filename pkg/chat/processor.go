package chat

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/mcpapi/pkg/metricskey"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

// DefaultMaxRounds limits how many model completion rounds a single query may
// take before the loop is aborted with ErrLoopBudgetExceeded.
const DefaultMaxRounds = 16

// Processor drives the iterative loop between the model gateway and the tool
// channel, maintaining conversation state and aggregating output for one query.
type Processor struct {
	gateway Gateway
	channel ToolChannel

	name      string
	maxRounds int
}

// ProcessorOption configures the Processor.
type ProcessorOption func(*Processor)

// WithMaxRounds sets the model round budget per query.
func WithMaxRounds(n int) ProcessorOption {
	return func(p *Processor) {
		p.maxRounds = n
	}
}

// WithModelName sets the model name used in logs and metric tags.
func WithModelName(name string) ProcessorOption {
	return func(p *Processor) {
		p.name = name
	}
}

// NewProcessor creates a query processor over the given collaborators.
func NewProcessor(gateway Gateway, channel ToolChannel, opts ...ProcessorOption) *Processor {
	p := &Processor{
		gateway: gateway,
		channel: channel,
		name:    "default",
	}
	for _, opt := range opts {
		opt(p)
	}
	p.maxRounds = values.NumbersCoalesce(p.maxRounds, DefaultMaxRounds)
	return p
}

// Process runs the query loop: call the model with the transcript and catalog,
// execute every requested tool in order, feed the results back, and repeat
// until the model responds without tool calls. An empty catalog and an empty
// query are both forwarded as is. A failed tool call does not abort the loop;
// its error is returned to the model as an error-marked tool result.
func (p *Processor) Process(ctx context.Context, query string, tools []ToolDescriptor) (*QueryResult, error) {
	started := time.Now()
	defer metricskey.PerfQueryProcess.MeasureSince(started, p.name)

	messages := []Message{
		NewUserMessage(TextBlock{Text: query}),
	}
	result := NewQueryResult()

	for round := 0; ; round++ {
		if round >= p.maxRounds {
			metricskey.StatsQueriesFailed.IncrCounter(1, p.name)
			return nil, errors.WithMessagef(ErrLoopBudgetExceeded, "after %d rounds", round)
		}

		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "model_call",
			"round", round,
			"messages", len(messages),
			"tools", len(tools),
		)
		metricskey.StatsModelRounds.IncrCounter(1, p.name)

		blocks, err := p.gateway.Complete(ctx, messages, tools)
		if err != nil {
			metricskey.StatsQueriesFailed.IncrCounter(1, p.name)
			return nil, errors.Wrap(err, "failed to generate content from model")
		}

		var pendingCalls []ToolUseBlock
		for _, block := range blocks {
			switch typ := block.(type) {
			case TextBlock:
				if text := strings.TrimSpace(typ.Text); text != "" {
					result.Text = append(result.Text, text)
				}
			case ToolUseBlock:
				pendingCalls = append(pendingCalls, typ)
				result.ToolCalls = append(result.ToolCalls, ToolCall{
					ID:   typ.ID,
					Name: typ.Name,
					Args: typ.Input,
				})
			}
		}

		// The assistant message keeps the blocks interleaved exactly as
		// received, on every round including the final one.
		messages = append(messages, NewAssistantMessage(blocks...))

		if len(pendingCalls) == 0 {
			break
		}

		// Tools run sequentially in request order to keep the conversation
		// append order and the result order deterministic.
		for _, call := range pendingCalls {
			messages = append(messages, p.executeToolCall(ctx, call, result))
		}
	}

	metricskey.StatsQueriesSucceeded.IncrCounter(1, p.name)
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "query_processed",
		"query", slices.StringUpto(query, 64),
		"text_blocks", len(result.Text),
		"tool_calls", len(result.ToolCalls),
	)
	return result, nil
}

// executeToolCall invokes one tool and records its outcome, returning the
// user message carrying the tool result block for the next model round.
func (p *Processor) executeToolCall(ctx context.Context, call ToolUseBlock, result *QueryResult) Message {
	started := time.Now()
	payload, err := p.channel.CallTool(ctx, call.Name, call.Input)
	metricskey.PerfToolCall.MeasureSince(started, call.Name)

	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, call.Name)
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"tool", call.Name,
			"tool_use_id", call.ID,
			"err", err.Error(),
		)
		result.ToolResults = append(result.ToolResults, ToolResult{
			ToolUseID: call.ID,
			Name:      call.Name,
			Args:      call.Input,
			Error:     err.Error(),
			Status:    StatusError,
		})
		return NewUserMessage(ToolResultBlock{
			ToolUseID: call.ID,
			Content:   "Error: " + err.Error(),
			IsError:   true,
		})
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, call.Name)
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "tool_call_succeeded",
		"tool", call.Name,
		"tool_use_id", call.ID,
		"result_size", len(payload),
	)
	result.ToolResults = append(result.ToolResults, ToolResult{
		ToolUseID: call.ID,
		Name:      call.Name,
		Args:      call.Input,
		Result:    payload,
		Status:    StatusSuccess,
	})
	return NewUserMessage(ToolResultBlock{
		ToolUseID: call.ID,
		Content:   payload,
	})
}
