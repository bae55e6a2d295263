package errors

// Process exit statuses for the CLI. Anything not listed exits with 1.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitNoData      = 3
	ExitMissingTool = 4
	ExitTransfer    = 5
	ExitResolution  = 6
)

// ExitCode maps an error to the exit status the CLI reports.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch {
	case IsNoData(err):
		return ExitNoData
	case IsMissingTool(err):
		return ExitMissingTool
	case IsResolution(err):
		return ExitResolution
	case IsTransfer(err):
		return ExitTransfer
	case IsValidation(err):
		return ExitUsage
	default:
		return ExitFailure
	}
}
