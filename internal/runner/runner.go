// Package runner wraps local process execution behind a typed interface so
// callers branch on structured results instead of re-parsing tool output,
// and so command flows can be tested without the real tools installed.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Result holds the outcome of a local command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Command describes a local command to execute.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env entries are appended to the inherited environment. Used to pass
	// credentials out-of-band instead of embedding them in arguments.
	Env []string
}

// String renders the command line for logging. Env entries are omitted: they
// may carry secrets.
func (c Command) String() string {
	line := c.Name
	for _, arg := range c.Args {
		line += " " + arg
	}
	return line
}

// Runner executes local commands.
type Runner interface {
	// Run executes the command and captures its output. A non-zero exit is
	// reported through Result.ExitCode, not through the error: the error is
	// reserved for failures to start or complete the process at all.
	Run(ctx context.Context, cmd Command) (*Result, error)

	// Stream executes the command with output wired to the terminal.
	Stream(ctx context.Context, cmd Command) error
}

type osRunner struct{}

// New returns a Runner backed by os/exec.
func New() Runner {
	return &osRunner{}
}

func (r *osRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("failed to run %s: %w", cmd.Name, err)
	}

	return result, nil
}

func (r *osRunner) Stream(ctx context.Context, cmd Command) error {
	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	return execCmd.Run()
}
