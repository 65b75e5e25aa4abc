package chat

const (
	// StatusSuccess marks a successful operation or tool result.
	StatusSuccess = "success"
	// StatusError marks a failed operation or tool result.
	StatusError = "error"
)

// ToolCall records one tool invocation requested by the model,
// in the order the model emitted it.
type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolResult records the outcome of one executed tool call.
// Exactly one of Result or Error is set, indicated by Status.
type ToolResult struct {
	ToolUseID string         `json:"tool_use_id"`
	Name      string         `json:"name"`
	Args      map[string]any `json:"args"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	Status    string         `json:"status"`
}

// QueryResult is the aggregated output of one full query-processing loop:
// the accumulated text segments, the tool calls made, and their outcomes,
// each in invocation order.
type QueryResult struct {
	Text        []string     `json:"text"`
	ToolCalls   []ToolCall   `json:"tool_calls"`
	ToolResults []ToolResult `json:"tool_results"`
}

// NewQueryResult creates an empty result with non-nil collections,
// so the JSON encoding carries empty arrays rather than nulls.
func NewQueryResult() *QueryResult {
	return &QueryResult{
		Text:        []string{},
		ToolCalls:   []ToolCall{},
		ToolResults: []ToolResult{},
	}
}

// QueryResponse is the caller-facing envelope for ProcessQuery.
type QueryResponse struct {
	Status string       `json:"status"`
	Data   *QueryResult `json:"data,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// ToolsResponse is the caller-facing envelope for ListTools.
type ToolsResponse struct {
	Status string           `json:"status"`
	Tools  []ToolDescriptor `json:"tools,omitempty"`
	Error  string           `json:"error,omitempty"`
}
