package commands

import (
	"strings"

	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

const commandModuleRoot = "localization.commands"

// CommandLogger returns the logger of a command module, tagged with the
// component and module fields.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
