// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for minigram commands.
//
// Handlers ALWAYS return errors and never print-and-return-nil; the caller
// displays them once and maps them to an exit code.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/jeranaias/minigram/internal/backend"
	"github.com/jeranaias/minigram/internal/calls"
	"github.com/jeranaias/minigram/internal/config"
	"github.com/jeranaias/minigram/internal/model"
	"github.com/jeranaias/minigram/internal/timeline"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration or a disabled backend
	ExitConfigError = 3
	// ExitAuthError indicates a missing or rejected session
	ExitAuthError = 4
	// ExitNetworkError indicates transport failure or an unusable response
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

var (
	// ErrBackendDisabled is returned by backend commands while the feature
	// flag is off.
	ErrBackendDisabled = errors.New("backend is disabled; run 'minigram config enable' or set MINI_BACKEND_MODE=1")

	// ErrNotSignedIn is returned by commands that need a session.
	ErrNotSignedIn = errors.New("not signed in; run 'minigram login <phone>' first")
)

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "chats", "call")
	Action  string // Action being performed (e.g., "new", "join")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{
		Field:   argName,
		Reason:  "required argument missing",
		Example: usage,
	}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON error response in JSON mode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		NewJSONErrorResponse(command, err).Print(w)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), describeError(err))
}

// describeError prefers the server's own message for HTTP failures.
func describeError(err error) string {
	var statusErr *backend.HTTPStatusError
	if errors.As(err, &statusErr) {
		if msg, ok := statusErr.Message(); ok {
			return fmt.Sprintf("%s (HTTP %d)", msg, statusErr.StatusCode)
		}
	}
	return err.Error()
}

// errorDetails adds structured fields to a JSON error response.
func errorDetails(err error) map[string]any {
	details := map[string]any{"exit_code": GetExitCode(err)}

	var statusErr *backend.HTTPStatusError
	var validationErr *ValidationError
	var decodeErr *backend.DecodeError
	switch {
	case errors.As(err, &statusErr):
		details["error_type"] = "http_status"
		details["status"] = statusErr.StatusCode
		if msg, ok := statusErr.Message(); ok {
			details["server_message"] = msg
		}
	case errors.As(err, &validationErr):
		details["error_type"] = "validation_error"
		details["field"] = validationErr.Field
	case errors.As(err, &decodeErr):
		details["error_type"] = "decode_error"
	case errors.Is(err, backend.ErrInvalidResponse):
		details["error_type"] = "invalid_response"
	default:
		details["error_type"] = "generic_error"
	}
	return details
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for err.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	var settingsErr config.ValidateErrors
	var statusErr *backend.HTTPStatusError
	var netErr net.Error

	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, timeline.ErrEmptyMessage),
		errors.Is(err, timeline.ErrEmptyUserID),
		errors.Is(err, timeline.ErrEmptyChatID),
		errors.Is(err, calls.ErrMissingCallID):
		return ExitUsageError

	case errors.Is(err, ErrBackendDisabled), errors.As(err, &settingsErr):
		return ExitConfigError

	case errors.Is(err, ErrNotSignedIn), errors.Is(err, calls.ErrNotAuthorized):
		return ExitAuthError

	case errors.As(err, &statusErr):
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ExitAuthError
		case http.StatusNotFound:
			return ExitNotFoundError
		case http.StatusBadRequest:
			return ExitUsageError
		}
		return ExitGeneralError

	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError

	case errors.Is(err, backend.ErrInvalidResponse), errors.As(err, &netErr):
		return ExitNetworkError

	case errors.As(err, new(*backend.DecodeError)), errors.As(err, new(*model.MissingFieldError)):
		return ExitNetworkError
	}

	return ExitGeneralError
}
