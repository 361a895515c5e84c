// Package shell runs external programs on behalf of the charm.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap" // Logging.
)

// Runner runs a program and returns what it wrote to stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExitError is returned by ExecRunner when a program
// could not be started or exited unsuccessfully.
type ExitError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Command, e.Err, e.Stderr)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExecRunner is a Runner backed by os/exec.
type ExecRunner struct {
	// Working directory of started programs. Defaults to the
	// current directory.
	Dir string

	Logger *zap.Logger
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.L()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("running command", zap.String("command", name), zap.Strings("args", args))
	out, err := cmd.Output()
	if err != nil {
		return out, &ExitError{
			Command: name,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return out, nil
}

var _ Runner = (*ExecRunner)(nil)
