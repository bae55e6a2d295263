// Package transfer wraps the external rsync binary used to copy remote logs.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	sitelogserrors "github.com/DeBrosOfficial/sitelogs/pkg/errors"
	"github.com/DeBrosOfficial/sitelogs/pkg/filter"
)

// Job is one remote path copied from one host into one local directory.
type Job struct {
	Host       string   // Remote address
	User       string   // Remote login, <env>.<siteID>
	RemotePath string   // Relative to the remote home, may contain globs
	LocalPath  string   // Destination directory
	Excludes   []string // File name patterns to skip
	Progress   bool     // Itemize changes and show progress
}

// Options are the settings shared by every job of a run.
type Options struct {
	RsyncPath string
	SSHPort   int
	Timeout   time.Duration
}

// Runner executes transfer jobs.
type Runner interface {
	Run(ctx context.Context, job Job) error
}

// Args builds the rsync argument vector for job. Values are passed as
// separate arguments and never through a shell.
func Args(opts Options, job Job) []string {
	args := []string{"-rlIpz"}
	if job.Progress {
		args = append(args, "-i", "--progress")
	}
	args = append(args, "--ipv4", "--exclude=.git")
	args = append(args, filter.RsyncArgs(job.Excludes)...)
	args = append(args,
		"-e", fmt.Sprintf("ssh -p %d", opts.SSHPort),
		fmt.Sprintf("%s@%s:%s", job.User, job.Host, job.RemotePath),
		strings.TrimRight(job.LocalPath, "/")+"/",
	)
	return args
}

// CommandLine renders the invocation for logs and error messages.
func CommandLine(opts Options, job Job) string {
	return opts.RsyncPath + " " + strings.Join(Args(opts, job), " ")
}

// RsyncRunner runs rsync as a subprocess.
type RsyncRunner struct {
	opts   Options
	out    io.Writer
	logger *zap.Logger
}

// NewRsyncRunner creates a runner. Progress output goes to out when a job
// asks for it; out may be nil.
func NewRsyncRunner(opts Options, out io.Writer, logger *zap.Logger) *RsyncRunner {
	if opts.RsyncPath == "" {
		opts.RsyncPath = "rsync"
	}
	if opts.SSHPort == 0 {
		opts.SSHPort = 2222
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RsyncRunner{opts: opts, out: out, logger: logger}
}

// Run executes one job, bounded by the configured timeout.
func (r *RsyncRunner) Run(ctx context.Context, job Job) error {
	bin, err := exec.LookPath(r.opts.RsyncPath)
	if err != nil {
		return sitelogserrors.NewMissingToolError(r.opts.RsyncPath, "install rsync or set sync.rsync_path")
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	args := Args(r.opts, job)
	command := CommandLine(r.opts, job)
	r.logger.Debug("Running transfer", zap.String("host", job.Host), zap.String("command", command))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = 5 * time.Second
	if job.Progress && r.out != nil {
		cmd.Stdout = r.out
	}

	start := time.Now()
	err = cmd.Run()
	if err == nil {
		r.logger.Debug("Transfer finished",
			zap.String("host", job.Host),
			zap.String("remote", job.RemotePath),
			zap.Duration("took", time.Since(start)))
		return nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return sitelogserrors.NewTransferError(job.Host, command, -1,
			sitelogserrors.NewTimeoutError("rsync", r.opts.Timeout.String()))
	case errors.Is(ctx.Err(), context.Canceled):
		return sitelogserrors.NewTransferError(job.Host, command, -1, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		var cause error
		if msg := lastLine(stderr.String()); msg != "" {
			cause = errors.New(msg)
		}
		return sitelogserrors.NewTransferError(job.Host, command, exitErr.ExitCode(), cause)
	}
	return sitelogserrors.NewTransferError(job.Host, command, -1, err)
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
