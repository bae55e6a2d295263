package errors

// Error codes for categorizing errors.
// These codes map to process exit statuses in ExitCode.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeCancelled indicates the operation was cancelled.
	CodeCancelled = "CANCELLED"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeUnavailable indicates a remote host or service is currently unavailable.
	CodeUnavailable = "UNAVAILABLE"

	// Domain-specific error codes

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeTimeout indicates an operation timed out.
	CodeTimeout = "TIMEOUT"

	// CodeResolution indicates host discovery failed (DNS transport or server failure).
	CodeResolution = "RESOLUTION_ERROR"

	// CodeTransfer indicates a log transfer from one host failed.
	CodeTransfer = "TRANSFER_ERROR"

	// CodeMissingTool indicates a required external utility is not installed.
	CodeMissingTool = "MISSING_TOOL"

	// CodeNoData indicates no synchronized logs exist for an environment.
	CodeNoData = "NO_DATA"
)

// IsRetryable returns true if an error with the given code should be retried.
func IsRetryable(code string) bool {
	switch code {
	case CodeTimeout, CodeUnavailable:
		return true
	default:
		return false
	}
}
