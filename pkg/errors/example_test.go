package errors_test

import (
	"fmt"

	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
)

// Example demonstrates creating and using validation errors.
func ExampleNewValidationError() {
	err := errors.NewValidationError("site_env", "expected <site>.<env>", "mysite")
	fmt.Println(err.Error())
	fmt.Println("Code:", err.Code())
	// Output:
	// validation error: site_env: expected <site>.<env>
	// Code: VALIDATION_ERROR
}

// Example demonstrates how a missing local sync maps to an exit status.
func ExampleNewNoDataError() {
	err := errors.NewNoDataError("mysite", "live", "/logs/mysite/live")
	fmt.Println(err.Error())
	fmt.Println("Exit:", errors.ExitCode(err))
	// Output:
	// no logs found for mysite.live in /logs/mysite/live; run `sitelogs get mysite.live` first
	// Exit: 3
}

// Example demonstrates wrapping errors with context.
func ExampleWrap() {
	originalErr := errors.NewTransferError("10.0.0.7", "rsync", 255, nil)
	wrappedErr := errors.Wrap(originalErr, "syncing mysite.live")

	fmt.Println(wrappedErr.Error())
	fmt.Println("Is transfer:", errors.IsTransfer(wrappedErr))
	fmt.Println("Retry:", errors.ShouldRetry(wrappedErr))
	// Output:
	// syncing mysite.live: transfer from 10.0.0.7 failed: command `rsync` exited with status 255
	// Is transfer: true
	// Retry: true
}
