package chat_test

import (
	"encoding/json"
	"testing"

	"github.com/effective-security/mcpapi/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Message_JSON(t *testing.T) {
	msg := chat.NewAssistantMessage(
		chat.TextBlock{Text: "checking"},
		chat.ToolUseBlock{ID: "t1", Name: "list_files", Input: map[string]any{"path": "."}},
	)

	js, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"role": "assistant",
		"content": [
			{"type": "text", "text": "checking"},
			{"type": "tool_use", "id": "t1", "name": "list_files", "input": {"path": "."}}
		]
	}`, string(js))

	var parsed chat.Message
	require.NoError(t, json.Unmarshal(js, &parsed))
	assert.Equal(t, msg, parsed)
}

func Test_Message_JSON_ToolResult(t *testing.T) {
	msg := chat.NewUserMessage(
		chat.ToolResultBlock{ToolUseID: "t1", Content: "Error: boom", IsError: true},
	)

	js, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"role": "user",
		"content": [
			{"type": "tool_result", "tool_use_id": "t1", "content": "Error: boom", "is_error": true}
		]
	}`, string(js))

	var parsed chat.Message
	require.NoError(t, json.Unmarshal(js, &parsed))
	require.Len(t, parsed.Content, 1)
	block, ok := parsed.Content[0].(chat.ToolResultBlock)
	require.True(t, ok)
	assert.True(t, block.IsError)
	assert.Equal(t, "t1", block.ToolUseID)
}

func Test_Message_GetContent(t *testing.T) {
	msg := chat.NewAssistantMessage(
		chat.TextBlock{Text: "one"},
		chat.ToolUseBlock{ID: "t1", Name: "x"},
		chat.TextBlock{Text: "two"},
	)
	assert.Equal(t, "one\ntwo", msg.GetContent())
}

func Test_QueryResult_JSON(t *testing.T) {
	res := chat.NewQueryResult()
	js, err := json.Marshal(res)
	require.NoError(t, err)
	// empty arrays, not nulls
	assert.JSONEq(t, `{"text":[],"tool_calls":[],"tool_results":[]}`, string(js))

	res.ToolResults = append(res.ToolResults, chat.ToolResult{
		ToolUseID: "t1",
		Name:      "list_files",
		Args:      map[string]any{},
		Result:    "[a.txt]",
		Status:    chat.StatusSuccess,
	})
	js, err = json.Marshal(res.ToolResults[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"tool_use_id":"t1","name":"list_files","args":{},"result":"[a.txt]","status":"success"}`, string(js))
}
