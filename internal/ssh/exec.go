package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// ExecResult holds the result of a command execution
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Exec executes a command on the remote server. A non-zero remote exit is
// reported through ExecResult.ExitCode; the error is reserved for transport
// failures.
func (c *Client) Exec(ctx context.Context, command string) (*ExecResult, error) {
	session, err := c.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		return nil, ctx.Err()
	case err = <-done:
	}

	result := &ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
		} else {
			return result, fmt.Errorf("failed to execute command: %w", err)
		}
	}

	return result, nil
}

// ExecStream executes a command and streams output to stdout/stderr
func (c *Client) ExecStream(ctx context.Context, command string) error {
	session, err := c.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	session.Stdout = os.Stdout
	session.Stderr = os.Stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGTERM)
		return ctx.Err()
	case err = <-done:
		return err
	}
}

// ExecWithOutput executes a command and returns its trimmed stdout, turning a
// non-zero exit into an error.
func ExecWithOutput(ctx context.Context, ex Executor, command string) (string, error) {
	result, err := ex.Exec(ctx, command)
	if err != nil {
		return "", err
	}

	output := strings.TrimSpace(result.Stdout)
	if result.ExitCode != 0 {
		errMsg := strings.TrimSpace(result.Stderr)
		if errMsg == "" {
			errMsg = output
		}
		return output, fmt.Errorf("command failed (exit %d): %s", result.ExitCode, errMsg)
	}

	return output, nil
}

// ExecMultiple executes multiple commands in sequence, stopping at the first
// failure.
func ExecMultiple(ctx context.Context, ex Executor, commands []string) error {
	for _, cmd := range commands {
		result, err := ex.Exec(ctx, cmd)
		if err != nil {
			return fmt.Errorf("failed to execute '%s': %w", cmd, err)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("command '%s' failed (exit %d): %s",
				cmd, result.ExitCode, result.Stderr)
		}
	}
	return nil
}
