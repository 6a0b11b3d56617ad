package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation    = "COMMAND_VALIDATION_FAILED"
	codeCanceled      = "COMMAND_CONTEXT_CANCELED"
	codeTimeout       = "COMMAND_CONTEXT_TIMEOUT"
	codeContext       = "COMMAND_CONTEXT_ERROR"
	codeExecuteFailed = "COMMAND_EXECUTION_FAILED"
)

// WrapValidationError tags err with the validation category.
func WrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(codeValidation)
}

// WrapContextError tags a cancellation or deadline error with the command
// category.
func WrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(codeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(codeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(codeContext)
	}
}

// WrapExecuteError tags a failed execution with the command category.
// Errors already carrying a category are returned unchanged.
func WrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(codeExecuteFailed)
}
