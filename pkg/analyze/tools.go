package analyze

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	sitelogserrors "github.com/DeBrosOfficial/sitelogs/pkg/errors"
)

// External digesting tools.
const (
	ToolPtQueryDigest = "pt-query-digest"
	ToolMysqlDumpSlow = "mysqldumpslow"
)

var toolHints = map[string]string{
	ToolPtQueryDigest: "install percona-toolkit (e.g. `brew install percona-toolkit`)",
	ToolMysqlDumpSlow: "install the MySQL client utilities",
}

// ToolRunner runs an external tool and returns its standard output.
type ToolRunner interface {
	Run(ctx context.Context, tool string, args ...string) ([]byte, error)
}

// ExecTools runs tools as subprocesses.
type ExecTools struct {
	paths   map[string]string
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecTools creates a runner. paths overrides the binary used for a tool
// name; tools not listed are looked up on PATH.
func NewExecTools(paths map[string]string, timeout time.Duration, logger *zap.Logger) *ExecTools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecTools{paths: paths, timeout: timeout, logger: logger}
}

// Run executes tool with args.
func (t *ExecTools) Run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	bin := tool
	if p := t.paths[tool]; p != "" {
		bin = p
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, sitelogserrors.NewMissingToolError(tool, toolHints[tool])
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, resolved, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.logger.Debug("Running tool", zap.String("tool", tool), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, sitelogserrors.NewTimeoutError(tool, t.timeout.String())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.New(msg)
		}
		return nil, sitelogserrors.NewInternalError(tool+" failed", err).WithOperation(tool)
	}
	return stdout.Bytes(), nil
}
