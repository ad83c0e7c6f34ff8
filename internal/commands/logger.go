package commands

import (
	"strings"

	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

// CommandLogger scopes provider to portfolio.commands.<group> and tags
// entries with the command group.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	if group == "" {
		group = "core"
	}
	return logging.WithFields(logging.ModuleLogger(provider, "portfolio.commands."+group), map[string]any{
		"component":     "command",
		"command_group": group,
	})
}

// EnsureLogger defaults a nil logger to a no-op logger.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
