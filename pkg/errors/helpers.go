package errors

import (
	"context"
	"errors"
)

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr) || errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr) || errors.Is(err, ErrInvalidInput)
}

// IsResolution checks if an error is a host resolution failure.
func IsResolution(err error) bool {
	if err == nil {
		return false
	}

	var resolutionErr *ResolutionError
	return errors.As(err, &resolutionErr)
}

// IsTransfer checks if an error is a per-host transfer failure.
func IsTransfer(err error) bool {
	if err == nil {
		return false
	}

	var transferErr *TransferError
	return errors.As(err, &transferErr)
}

// IsMissingTool checks if an error indicates an absent external utility.
func IsMissingTool(err error) bool {
	if err == nil {
		return false
	}

	var toolErr *MissingToolError
	return errors.As(err, &toolErr) || errors.Is(err, ErrMissingTool)
}

// IsNoData checks if an error indicates that nothing has been synchronized yet.
func IsNoData(err error) bool {
	if err == nil {
		return false
	}

	var noDataErr *NoDataError
	return errors.As(err, &noDataErr) || errors.Is(err, ErrNoData)
}

// IsTimeout checks if an error indicates a timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr) || errors.Is(err, ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ShouldRetry checks if an operation should be retried based on the error.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	// An operator-initiated cancel is never retried
	if errors.Is(err, context.Canceled) {
		return false
	}

	if IsTimeout(err) || errors.Is(err, ErrUnavailable) {
		return true
	}

	var retryable interface{ Retryable() bool }
	if errors.As(err, &retryable) {
		return retryable.Retryable()
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return IsRetryable(customErr.Code())
	}

	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	if err == nil {
		return CodeOK
	}

	var customErr Error
	if errors.As(err, &customErr) {
		return customErr.Code()
	}

	// Try to infer from sentinel errors
	switch {
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	case IsNotFound(err):
		return CodeNotFound
	case IsValidation(err):
		return CodeValidation
	case IsTimeout(err):
		return CodeTimeout
	case IsNoData(err):
		return CodeNoData
	case IsMissingTool(err):
		return CodeMissingTool
	case errors.Is(err, ErrUnavailable):
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
