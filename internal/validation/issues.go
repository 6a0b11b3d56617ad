package validation

import (
	"errors"
	"maps"
	"slices"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidation is the sentinel matched by every PayloadValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationIssue captures a single validation failure. Location is a
// dotted field path such as "overrides.0.locale".
type ValidationIssue struct {
	Location string `json:"field"`
	Message  string `json:"message"`
}

// PayloadValidationError surfaces validation issues with field context.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		switch {
		case issue.Location == "":
			parts = append(parts, issue.Message)
		case issue.Message == "":
			parts = append(parts, issue.Location)
		default:
			parts = append(parts, issue.Location+": "+issue.Message)
		}
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrValidation
}

// NewError builds a PayloadValidationError with a single issue.
func NewError(location, message string) *PayloadValidationError {
	return &PayloadValidationError{Issues: []ValidationIssue{{Location: location, Message: message}}}
}

// Wrap converts ozzo validation errors into a PayloadValidationError
// rooted at prefix. Nil stays nil and non-validation errors are returned
// unchanged.
func Wrap(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) {
		return err
	}
	var errs ozzo.Errors
	if errors.As(err, &errs) {
		return &PayloadValidationError{Issues: flatten(prefix, errs), Cause: err}
	}
	var single ozzo.Error
	if errors.As(err, &single) {
		return &PayloadValidationError{Issues: []ValidationIssue{{Location: prefix, Message: single.Error()}}, Cause: err}
	}
	return err
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var errs ozzo.Errors
	if errors.As(err, &errs) {
		return flatten("", errs)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

func flatten(prefix string, errs ozzo.Errors) []ValidationIssue {
	issues := make([]ValidationIssue, 0, len(errs))
	for _, field := range slices.Sorted(maps.Keys(errs)) {
		location := join(prefix, field)
		var nested ozzo.Errors
		if errors.As(errs[field], &nested) {
			issues = append(issues, flatten(location, nested)...)
			continue
		}
		issues = append(issues, ValidationIssue{Location: location, Message: errs[field].Error()})
	}
	return issues
}

func join(prefix, field string) string {
	if prefix == "" {
		return field
	}
	if field == "" {
		return prefix
	}
	return prefix + "." + field
}
