// Package probe verifies that the target host is reachable and that SSH key
// authentication works before any remote mutation begins. Both checks are
// single-attempt by design: a human supervises the run and can simply re-run
// after fixing the reported problem.
package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/dockship/dockship/internal/constants"
	"github.com/dockship/dockship/internal/runner"
	"github.com/dockship/dockship/internal/ssh"
)

// Ping sends a single ICMP echo request with a 5-second timeout. A failure
// here points at network or firewall problems rather than authentication.
func Ping(ctx context.Context, run runner.Runner, host string) error {
	seconds := int(constants.PingTimeout.Seconds())
	cmd := runner.Command{
		Name: "ping",
		Args: []string{"-c", "1", "-W", fmt.Sprintf("%d", seconds), host},
	}

	result, err := run.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to run ping: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("host %s is not reachable (ICMP timed out after %ds); check the address, your network, and any firewall dropping ICMP", host, seconds)
	}
	return nil
}

// SSHDryRun attempts a non-interactive key-based connection and executes a
// no-op remote command. It proves authentication works before the pipeline
// starts mutating the remote host.
func SSHDryRun(ctx context.Context, host, user, keyPath string) error {
	client := ssh.NewClient(host, user, constants.DefaultSSHPort, keyPath,
		ssh.WithTimeout(constants.SSHConnectTimeout))

	if err := client.Connect(); err != nil {
		return fmt.Errorf("SSH authentication to %s@%s failed: %w\nHint: check that the key file has 600 permissions, the username is correct, and port 22 is open", user, host, err)
	}
	defer client.Close()

	result, err := client.Exec(ctx, "true")
	if err != nil {
		return fmt.Errorf("SSH command execution failed: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("SSH no-op command failed (exit %d): %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	return nil
}
