package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-localization/internal/logging"
	"github.com/goliatone/go-localization/pkg/interfaces"
)

// TelemetryStatus is the outcome category of one execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess TelemetryStatus = "success"
	// TelemetryStatusRejected means the message failed validation and the
	// command never ran.
	TelemetryStatusRejected     TelemetryStatus = "rejected"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked after every execution, rejected ones included.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs the outcome of every execution. Rejected and
// interrupted executions log at warn.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := info.Logger
		if entry == nil {
			entry = logging.WithFields(logger, info.Fields)
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		if info.Error != nil {
			args = append(args, "error", info.Error)
		}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusRejected:
			entry.Warn("command.execute.rejected", args...)
		case TelemetryStatusContextError:
			entry.Warn("command.execute.interrupted", args...)
		default:
			entry.Error("command.execute.failed", args...)
		}
	}
}

// outcome classifies the result of an execution and wraps err with the
// matching go-errors category. A function that returned nil or ctx.Err()
// after its context ended counts as a context error.
func outcome(ctx context.Context, err error) (TelemetryStatus, error) {
	if ctxErr := ctx.Err(); ctxErr != nil && (err == nil || errors.Is(err, ctxErr)) {
		return TelemetryStatusContextError, WrapContextError(ctxErr)
	}
	if err != nil {
		return TelemetryStatusFailed, WrapExecuteError(err)
	}
	return TelemetryStatusSuccess, nil
}
