package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors for quick checks
var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when operator input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable is returned when a remote host cannot be reached.
	ErrUnavailable = errors.New("host unavailable")

	// ErrNoData is returned when no synchronized logs exist locally.
	ErrNoData = errors.New("no data")

	// ErrMissingTool is returned when an external utility is absent.
	ErrMissingTool = errors.New("missing tool")

)

// Error is the base interface for all custom errors in the system.
// It extends the standard error interface with additional context.
type Error interface {
	error
	// Code returns the error code
	Code() string
	// Message returns the human-readable error message
	Message() string
	// Unwrap returns the underlying cause
	Unwrap() error
}

// BaseError provides a foundation for all typed errors.
type BaseError struct {
	code    string
	message string
	cause   error
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error code.
func (e *BaseError) Code() string {
	return e.code
}

// Message returns the error message.
func (e *BaseError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause.
func (e *BaseError) Unwrap() error {
	return e.cause
}

// ValidationError represents an input validation error.
type ValidationError struct {
	*BaseError
	Field string
	Value interface{}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		BaseError: &BaseError{
			code:    CodeValidation,
			message: message,
		},
		Field: field,
		Value: value,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	*BaseError
	Resource string
	ID       string
}

// NewNotFoundError creates a new not found error.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		BaseError: &BaseError{
			code:    CodeNotFound,
			message: fmt.Sprintf("%s not found", resource),
		},
		Resource: resource,
		ID:       id,
	}
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// ResolutionError is returned when the host lookup mechanism itself fails.
// A name that simply has no records is not a ResolutionError.
type ResolutionError struct {
	*BaseError
	Hostname string
}

// NewResolutionError creates a new resolution error.
func NewResolutionError(hostname string, cause error) *ResolutionError {
	return &ResolutionError{
		BaseError: &BaseError{
			code:    CodeResolution,
			message: fmt.Sprintf("failed to resolve %s", hostname),
			cause:   cause,
		},
		Hostname: hostname,
	}
}

// TransferError represents one failed transfer invocation against one host.
type TransferError struct {
	*BaseError
	Host     string
	Command  string
	ExitCode int
}

// NewTransferError creates a new transfer error. exitCode is -1 when the
// process never produced an exit status (failed to start, killed).
func NewTransferError(host, command string, exitCode int, cause error) *TransferError {
	return &TransferError{
		BaseError: &BaseError{
			code:    CodeTransfer,
			message: fmt.Sprintf("transfer from %s failed", host),
			cause:   cause,
		},
		Host:     host,
		Command:  command,
		ExitCode: exitCode,
	}
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	msg := fmt.Sprintf("transfer from %s failed: command `%s`", e.Host, e.Command)
	if e.ExitCode >= 0 {
		msg = fmt.Sprintf("%s exited with status %d", msg, e.ExitCode)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Retryable reports whether the failure looks transient. rsync reserves
// 10/12 for socket and protocol stream errors, 30/35 for I/O timeouts and
// 255 is ssh failing to connect.
func (e *TransferError) Retryable() bool {
	if errors.Is(e.cause, ErrTimeout) {
		return true
	}
	switch e.ExitCode {
	case 10, 12, 30, 35, 255:
		return true
	default:
		return false
	}
}

// MissingToolError is returned when an analysis mode needs an external
// utility that is not on PATH.
type MissingToolError struct {
	*BaseError
	Tool string
	Hint string
}

// NewMissingToolError creates a new missing tool error.
func NewMissingToolError(tool, hint string) *MissingToolError {
	return &MissingToolError{
		BaseError: &BaseError{
			code:    CodeMissingTool,
			message: fmt.Sprintf("required tool %q is not installed", tool),
		},
		Tool: tool,
		Hint: hint,
	}
}

// Error implements the error interface.
func (e *MissingToolError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s; %s", e.message, e.Hint)
	}
	return e.message
}

// NoDataError is returned when the local log directory for an environment
// does not exist yet.
type NoDataError struct {
	*BaseError
	Site string
	Env  string
	Path string
}

// NewNoDataError creates a new no data error.
func NewNoDataError(site, env, path string) *NoDataError {
	return &NoDataError{
		BaseError: &BaseError{
			code:    CodeNoData,
			message: fmt.Sprintf("no logs found for %s.%s", site, env),
		},
		Site: site,
		Env:  env,
		Path: path,
	}
}

// Error implements the error interface.
func (e *NoDataError) Error() string {
	return fmt.Sprintf("no logs found for %s.%s in %s; run `sitelogs get %s.%s` first",
		e.Site, e.Env, e.Path, e.Site, e.Env)
}

// TimeoutError represents a timeout error.
type TimeoutError struct {
	*BaseError
	Operation string
	Duration  string
}

// NewTimeoutError creates a new timeout error.
func NewTimeoutError(operation, duration string) *TimeoutError {
	return &TimeoutError{
		BaseError: &BaseError{
			code:    CodeTimeout,
			message: "operation timed out",
		},
		Operation: operation,
		Duration:  duration,
	}
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Operation != "" && e.Duration != "" {
		return fmt.Sprintf("%s timed out after %s", e.Operation, e.Duration)
	}
	if e.Operation != "" {
		return fmt.Sprintf("%s timed out", e.Operation)
	}
	return "operation timed out"
}

// Is lets errors.Is(err, ErrTimeout) match typed timeouts.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// InternalError represents an internal error.
type InternalError struct {
	*BaseError
	Operation string
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   cause,
		},
	}
}

// WithOperation sets the operation context.
func (e *InternalError) WithOperation(op string) *InternalError {
	e.Operation = op
	return e
}

// Wrap wraps an error with additional context.
// If the error is already one of our custom types, it preserves the code
// and adds the cause chain. Otherwise, it creates an InternalError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var e Error
	if errors.As(err, &e) {
		return &BaseError{
			code:    e.Code(),
			message: message,
			cause:   err,
		}
	}

	return &InternalError{
		BaseError: &BaseError{
			code:    CodeInternal,
			message: message,
			cause:   err,
		},
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
