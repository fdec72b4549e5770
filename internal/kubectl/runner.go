// Package kubectl invokes the kubectl binary and classifies its outcome.
package kubectl

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/cameronsjo/kubegen/internal/logging"
)

// Result is what a finished process left behind.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs one external process to completion.
//
// A process that starts and exits non-zero is not an error at this level: it
// is reported through Result.ExitCode. Errors are reserved for processes that
// could not be started or were interrupted.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run executes name with args, capturing stdout and stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Logger.Debugf("Executing: %s %s", name, strings.Join(args, " "))
	start := time.Now()
	err := cmd.Run()
	logging.Logger.Debugf("Finished in %s: %s", time.Since(start).Round(time.Millisecond), name)

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		logging.Logger.Debugf("Exit code %d, stderr: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
		return res, nil
	}
	return res, err
}
