package mcpchannel

import (
	"context"
	"os/exec"
)

// newCommand builds the subprocess for a stdio transport. The command line
// comes from the configured endpoint, not from request input.
func newCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	if ctx == nil {
		ctx = context.Background()
	}
	// #nosec G204
	return exec.CommandContext(ctx, name, args...)
}
