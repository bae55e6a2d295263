package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsNoData(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "NoDataError",
			err:      NewNoDataError("site", "dev", "/tmp/x"),
			expected: true,
		},
		{
			name:     "sentinel ErrNoData",
			err:      ErrNoData,
			expected: true,
		},
		{
			name:     "wrapped NoDataError",
			err:      Wrap(NewNoDataError("site", "dev", "/tmp/x"), "context"),
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("parse: %w", NewNoDataError("site", "dev", "/tmp/x")),
			expected: true,
		},
		{
			name:     "other error",
			err:      NewInternalError("internal", nil),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsNoData(tt.err)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestTypedPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"resolution", NewResolutionError("h", errors.New("x")), IsResolution},
		{"transfer", NewTransferError("h", "rsync", 1, nil), IsTransfer},
		{"missing tool", NewMissingToolError("awk", ""), IsMissingTool},
		{"missing tool sentinel", fmt.Errorf("x: %w", ErrMissingTool), IsMissingTool},
		{"validation", NewValidationError("f", "bad", nil), IsValidation},
		{"not found", NewNotFoundError("mode", "x"), IsNotFound},
		{"timeout", NewTimeoutError("op", "1s"), IsTimeout},
		{"deadline", context.DeadlineExceeded, IsTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("Expected predicate to match %v", tt.err)
			}
			if tt.check(nil) {
				t.Error("Expected predicate to reject nil")
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"unavailable", fmt.Errorf("dial: %w", ErrUnavailable), true},
		{"ssh failure", NewTransferError("h", "rsync", 255, nil), true},
		{"partial transfer", NewTransferError("h", "rsync", 23, nil), false},
		{"wrapped ssh failure", fmt.Errorf("host h: %w", NewTransferError("h", "rsync", 255, nil)), true},
		{"missing tool", NewMissingToolError("rsync", ""), false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, CodeOK},
		{"typed", NewMissingToolError("x", ""), CodeMissingTool},
		{"cancelled", context.Canceled, CodeCancelled},
		{"sentinel no data", ErrNoData, CodeNoData},
		{"sentinel timeout", ErrTimeout, CodeTimeout},
		{"unknown", errors.New("x"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitOK},
		{"no data", NewNoDataError("s", "e", "/p"), ExitNoData},
		{"missing tool", NewMissingToolError("t", ""), ExitMissingTool},
		{"resolution", NewResolutionError("h", errors.New("x")), ExitResolution},
		{"transfer", NewTransferError("h", "c", 1, nil), ExitTransfer},
		{"validation", NewValidationError("f", "m", nil), ExitUsage},
		{"other", errors.New("x"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}
