package overridescmd

import (
	"errors"
	"time"

	"github.com/goliatone/go-localization/internal/commands"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

// Service is the override service surface the handlers use.
type Service interface {
	CacheClearer
	CacheWarmer
}

// CommandRegistry accepts command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the override command handlers.
type HandlerSet struct {
	Invalidate *InvalidateOverrideCacheHandler
	Warm       *WarmOverrideCacheHandler
}

// RegisterOverrideCommands builds the override handlers and registers them
// with reg when it is not nil.
func RegisterOverrideCommands(reg CommandRegistry, service Service, provider interfaces.LoggerProvider, timeout time.Duration) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("override command registration: service is nil")
	}
	if timeout <= 0 {
		timeout = commands.DefaultCommandTimeout
	}
	logger := commands.CommandLogger(provider, "overrides")

	set := &HandlerSet{
		Invalidate: NewInvalidateOverrideCacheHandler(service, logger,
			commands.WithTimeout[InvalidateOverrideCacheCommand](timeout)),
		Warm: NewWarmOverrideCacheHandler(service, logger,
			commands.WithTimeout[WarmOverrideCacheCommand](timeout)),
	}
	if reg != nil {
		if err := reg.RegisterCommand(set.Invalidate); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Warm); err != nil {
			return nil, err
		}
	}
	return set, nil
}
