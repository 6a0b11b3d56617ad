package logging

import (
	"context"

	"github.com/goliatone/go-localization/pkg/interfaces"
)

const (
	rootModule       = "localization"
	filesModule      = "localization.files"
	overridesModule  = "localization.overrides"
	httpModule       = "localization.http"
	translatorModule = "localization.translator"
	commandsModule   = "localization.commands"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module name is attached
// as a structured field so entries can be filtered.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// FilesLogger returns the logger used by the locale file store and editor.
func FilesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, filesModule)
}

// OverridesLogger returns the logger used by the override service.
func OverridesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, overridesModule)
}

// HTTPLogger returns the logger used by the admin HTTP surface.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// TranslatorLogger returns the logger used by the runtime override injector.
func TranslatorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, translatorModule)
}

// CommandsLogger returns the logger used by command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
