// Package config loads service configuration from the environment.
package config

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

const (
	DefaultModelName = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens = 1000
	DefaultMaxRounds = 16
	DefaultAPIHost   = "0.0.0.0"
	DefaultAPIPort   = 5000
)

// Config holds the settings the service consumes. AnthropicAPIKey and
// SSEEndpoint are required; everything else is defaulted.
type Config struct {
	AnthropicAPIKey string
	ModelName       string
	MaxTokens       int64
	MaxToolRounds   int

	SSEEndpoint string
	APIHost     string
	APIPort     int
	Environment string
	LogLevel    string
}

// Load reads configuration from a .env file, if present, and the process
// environment. It does not validate; call Validate before use.
func Load() *Config {
	// missing .env is fine, the environment may carry everything
	_ = godotenv.Load()

	return &Config{
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		ModelName:       getEnv("MODEL_NAME", DefaultModelName),
		MaxTokens:       int64(getEnvInt("MAX_TOKENS", DefaultMaxTokens)),
		MaxToolRounds:   getEnvInt("MAX_TOOL_ROUNDS", DefaultMaxRounds),
		SSEEndpoint:     getEnv("SSE_ENDPOINT", "http://localhost:8000/sse"),
		APIHost:         getEnv("API_HOST", DefaultAPIHost),
		APIPort:         getEnvInt("API_PORT", DefaultAPIPort),
		Environment:     getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
	}
}

// Validate returns the map of configuration issues, keyed by setting name,
// or an empty map if the configuration is usable.
func (c *Config) Validate() map[string]string {
	issues := map[string]string{}
	if c.AnthropicAPIKey == "" {
		issues["ANTHROPIC_API_KEY"] = "Missing API key"
	}
	if c.SSEEndpoint == "" {
		issues["SSE_ENDPOINT"] = "Missing SSE endpoint URL"
	}
	return issues
}

// ValidateErr folds validation issues into a single error, or nil.
func (c *Config) ValidateErr() error {
	issues := c.Validate()
	if len(issues) == 0 {
		return nil
	}
	keys := make([]string, 0, len(issues))
	for k := range issues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+issues[k])
	}
	return errors.Newf("configuration issues: %s", strings.Join(parts, ", "))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
