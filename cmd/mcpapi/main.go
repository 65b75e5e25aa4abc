// Command mcpapi starts the MCP Client API server: a REST surface for
// chatting with a model that can invoke tools on a remote MCP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/effective-security/mcpapi/internal/httpserver"
	"github.com/effective-security/mcpapi/pkg/chat"
	"github.com/effective-security/mcpapi/pkg/config"
	"github.com/effective-security/mcpapi/pkg/gateway/anthropic"
	"github.com/effective-security/mcpapi/pkg/mcpchannel"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/mcpapi", "main")

func main() {
	cfg := config.Load()

	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	level, err := xlog.ParseLevel(strings.ToUpper(cfg.LogLevel))
	if err != nil {
		level = xlog.INFO
	}
	xlog.SetGlobalLogLevel(level)

	if err := run(cfg); err != nil {
		logger.KV(xlog.ERROR,
			"status", "exiting",
			"err", err.Error(),
		)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.ValidateErr(); err != nil {
		return err
	}

	gateway, err := anthropic.New(
		anthropic.WithToken(cfg.AnthropicAPIKey),
		anthropic.WithModel(cfg.ModelName),
		anthropic.WithMaxTokens(cfg.MaxTokens),
	)
	if err != nil {
		return err
	}

	channel := mcpchannel.New(cfg.SSEEndpoint)
	defer func() {
		_ = channel.Cleanup()
	}()

	processor := chat.NewProcessor(gateway, channel,
		chat.WithModelName(cfg.ModelName),
		chat.WithMaxRounds(cfg.MaxToolRounds),
	)
	client := chat.NewClient(processor, channel)

	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           httpserver.New(client).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.KV(xlog.INFO,
			"status", "listening",
			"addr", addr,
			"env", cfg.Environment,
			"mcp_endpoint", cfg.SSEEndpoint,
		)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.KV(xlog.INFO,
			"status", "shutting_down",
			"signal", sig.String(),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
