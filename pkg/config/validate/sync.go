package validate

import (
	"fmt"
	"time"
)

// SyncConfig represents the transfer settings for validation purposes.
type SyncConfig struct {
	Workers   int
	Retries   int
	Backoff   time.Duration
	Timeout   time.Duration
	SSHPort   int
	RsyncPath string
}

// ValidateSync checks the fan-out and transfer settings.
func ValidateSync(sc SyncConfig) []error {
	var errs []error

	if sc.Workers < 1 {
		errs = append(errs, ValidationError{
			Path:    "sync.workers",
			Message: fmt.Sprintf("must be at least 1; got %d", sc.Workers),
		})
	}
	if sc.Retries < 0 {
		errs = append(errs, ValidationError{
			Path:    "sync.retries",
			Message: fmt.Sprintf("must not be negative; got %d", sc.Retries),
		})
	}
	if sc.Retries > 0 && sc.Backoff <= 0 {
		errs = append(errs, ValidationError{
			Path:    "sync.backoff",
			Message: "must be positive when retries are enabled",
			Hint:    "e.g. 2s",
		})
	}
	if sc.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Path:    "sync.timeout",
			Message: "must be positive",
			Hint:    "e.g. 10m",
		})
	}
	if err := ValidatePort(sc.SSHPort); err != nil {
		errs = append(errs, ValidationError{
			Path:    "sync.ssh_port",
			Message: err.Error(),
		})
	}
	if sc.RsyncPath == "" {
		errs = append(errs, ValidationError{
			Path:    "sync.rsync_path",
			Message: "must not be empty",
			Hint:    "defaults to \"rsync\" from PATH",
		})
	}

	return errs
}
