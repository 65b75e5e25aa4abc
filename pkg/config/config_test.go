package config_test

import (
	"testing"

	"github.com/effective-security/mcpapi/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("MODEL_NAME", "")
	t.Setenv("MAX_TOKENS", "")
	t.Setenv("MAX_TOOL_ROUNDS", "")
	t.Setenv("SSE_ENDPOINT", "")
	t.Setenv("API_HOST", "")
	t.Setenv("API_PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := config.Load()
	assert.Empty(t, cfg.AnthropicAPIKey)
	assert.Equal(t, config.DefaultModelName, cfg.ModelName)
	assert.Equal(t, int64(config.DefaultMaxTokens), cfg.MaxTokens)
	assert.Equal(t, config.DefaultMaxRounds, cfg.MaxToolRounds)
	assert.Equal(t, "http://localhost:8000/sse", cfg.SSEEndpoint)
	assert.Equal(t, config.DefaultAPIHost, cfg.APIHost)
	assert.Equal(t, config.DefaultAPIPort, cfg.APIPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func Test_Load_Environment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("MODEL_NAME", "claude-3-7-sonnet-latest")
	t.Setenv("MAX_TOKENS", "2048")
	t.Setenv("MAX_TOOL_ROUNDS", "4")
	t.Setenv("SSE_ENDPOINT", "http://mcp:9000/sse")
	t.Setenv("API_PORT", "8080")

	cfg := config.Load()
	assert.Equal(t, "sk-test", cfg.AnthropicAPIKey)
	assert.Equal(t, "claude-3-7-sonnet-latest", cfg.ModelName)
	assert.Equal(t, int64(2048), cfg.MaxTokens)
	assert.Equal(t, 4, cfg.MaxToolRounds)
	assert.Equal(t, "http://mcp:9000/sse", cfg.SSEEndpoint)
	assert.Equal(t, 8080, cfg.APIPort)
}

func Test_Load_InvalidInt(t *testing.T) {
	t.Setenv("API_PORT", "not-a-port")

	cfg := config.Load()
	assert.Equal(t, config.DefaultAPIPort, cfg.APIPort)
}

func Test_Validate(t *testing.T) {
	cfg := &config.Config{}
	issues := cfg.Validate()
	assert.Equal(t, map[string]string{
		"ANTHROPIC_API_KEY": "Missing API key",
		"SSE_ENDPOINT":      "Missing SSE endpoint URL",
	}, issues)

	cfg.AnthropicAPIKey = "sk-test"
	issues = cfg.Validate()
	require.Len(t, issues, 1)
	assert.Contains(t, issues, "SSE_ENDPOINT")

	cfg.SSEEndpoint = "http://localhost:8000/sse"
	assert.Empty(t, cfg.Validate())
}

func Test_ValidateErr(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.ValidateErr()
	require.Error(t, err)
	assert.Equal(t,
		"configuration issues: ANTHROPIC_API_KEY: Missing API key, SSE_ENDPOINT: Missing SSE endpoint URL",
		err.Error())

	cfg.AnthropicAPIKey = "sk-test"
	cfg.SSEEndpoint = "http://localhost:8000/sse"
	assert.NoError(t, cfg.ValidateErr())
}
