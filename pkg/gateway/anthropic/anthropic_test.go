package anthropic_test

import (
	"encoding/json"
	"testing"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/effective-security/mcpapi/pkg/chat"
	"github.com/effective-security/mcpapi/pkg/gateway/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_New(t *testing.T) {
	t.Setenv(anthropic.TokenEnvVarName, "")

	_, err := anthropic.New(anthropic.WithModel("claude-3-5-sonnet-20241022"))
	assert.ErrorIs(t, err, anthropic.ErrMissingToken)

	_, err = anthropic.New(anthropic.WithToken("sk-test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is required")

	g, err := anthropic.New(
		anthropic.WithToken("sk-test"),
		anthropic.WithModel("claude-3-5-sonnet-20241022"),
		anthropic.WithMaxTokens(1000),
	)
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-20241022", g.GetName())
	assert.Equal(t, int64(1000), g.Options.MaxTokens)
}

func Test_New_TokenFromEnv(t *testing.T) {
	t.Setenv(anthropic.TokenEnvVarName, "sk-env")

	g, err := anthropic.New(anthropic.WithModel("claude-3-5-sonnet-20241022"))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", g.Options.Token)
}

func Test_ProcessMessages(t *testing.T) {
	messages := []chat.Message{
		chat.NewUserMessage(chat.TextBlock{Text: "List files"}),
		chat.NewAssistantMessage(
			chat.TextBlock{Text: "Let me check."},
			chat.ToolUseBlock{ID: "t1", Name: "list_files", Input: map[string]any{"path": "."}},
		),
		chat.NewUserMessage(
			chat.ToolResultBlock{ToolUseID: "t1", Content: "[a.txt]", IsError: false},
		),
		{Role: chat.RoleAssistant}, // empty messages are skipped
	}

	params, err := anthropic.ProcessMessages(messages)
	require.NoError(t, err)
	require.Len(t, params, 3)

	assert.Equal(t, anthropicsdk.MessageParamRoleUser, params[0].Role)
	require.Len(t, params[0].Content, 1)
	require.NotNil(t, params[0].Content[0].OfText)
	assert.Equal(t, "List files", params[0].Content[0].OfText.Text)

	assert.Equal(t, anthropicsdk.MessageParamRoleAssistant, params[1].Role)
	require.Len(t, params[1].Content, 2)
	require.NotNil(t, params[1].Content[1].OfToolUse)
	assert.Equal(t, "t1", params[1].Content[1].OfToolUse.ID)
	assert.Equal(t, "list_files", params[1].Content[1].OfToolUse.Name)

	assert.Equal(t, anthropicsdk.MessageParamRoleUser, params[2].Role)
	require.Len(t, params[2].Content, 1)
	require.NotNil(t, params[2].Content[0].OfToolResult)
	assert.Equal(t, "t1", params[2].Content[0].OfToolResult.ToolUseID)
	assert.False(t, params[2].Content[0].OfToolResult.IsError.Value)
}

func Test_ProcessMessages_UnsupportedRole(t *testing.T) {
	_, err := anthropic.ProcessMessages([]chat.Message{
		{Role: chat.Role("system"), Content: []chat.ContentBlock{chat.TextBlock{Text: "x"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported message role")
}

func Test_ToTools(t *testing.T) {
	sdkTools, err := anthropic.ToTools(nil)
	require.NoError(t, err)
	assert.Nil(t, sdkTools)

	tools := []chat.ToolDescriptor{
		{
			Name:        "read_file",
			Description: "Read a file",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {"path": {"type": "string"}},
				"required": ["path"]
			}`),
		},
		{
			Name:        "list_files",
			Description: "List files",
		},
	}

	sdkTools, err = anthropic.ToTools(tools)
	require.NoError(t, err)
	require.Len(t, sdkTools, 2)

	first := sdkTools[0].OfTool
	require.NotNil(t, first)
	assert.Equal(t, "read_file", first.Name)
	assert.Equal(t, "Read a file", first.Description.Value)
	assert.EqualValues(t, "object", first.InputSchema.Type)
	assert.Contains(t, first.InputSchema.Properties, "path")
	assert.Equal(t, []string{"path"}, first.InputSchema.Required)

	second := sdkTools[1].OfTool
	require.NotNil(t, second)
	assert.EqualValues(t, "object", second.InputSchema.Type)
	assert.Empty(t, second.InputSchema.Properties)
}

func Test_ToTools_InvalidSchema(t *testing.T) {
	_, err := anthropic.ToTools([]chat.ToolDescriptor{
		{Name: "bad", InputSchema: json.RawMessage(`{not json`)},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid input schema for tool "bad"`)
}
