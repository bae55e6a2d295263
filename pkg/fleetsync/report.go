package fleetsync

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

// HostFailure records why one host could not be synchronized.
type HostFailure struct {
	Host logs.Host
	Err  error
}

func (f HostFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Host, f.Err)
}

func (f HostFailure) Unwrap() error {
	return f.Err
}

// Report is the per-host outcome of one sync run. Hosts keep the order they
// were scheduled in (app hosts first), not completion order.
type Report struct {
	RunID       uuid.UUID
	Env         logs.EnvironmentRef
	Destination string
	Succeeded   []logs.Host
	Failed      []HostFailure
	Skipped     []logs.Host // Never started because the run was cancelled
	Started     time.Time
	Finished    time.Time
}

func newReport(env logs.EnvironmentRef, dest string) *Report {
	return &Report{
		RunID:       uuid.New(),
		Env:         env,
		Destination: dest,
		Started:     time.Now(),
	}
}

// OK reports whether every host succeeded.
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Skipped) == 0
}

// Total is the number of hosts scheduled, including skipped ones.
func (r *Report) Total() int {
	return len(r.Succeeded) + len(r.Failed) + len(r.Skipped)
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Err joins every host failure, or returns nil.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}
