package programmer

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// Result captures a finished external command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	// Err is set when the command could not be started or waited on
	// (tool missing, permission denied). ExitCode is -1 in that case.
	Err error
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// ExecRunner runs commands with os/exec, capturing stdout and stderr separately.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			res.Err = err
		}
	}
	return res
}
