// Package provision installs the container engine, compose CLI, and web
// server on the remote host. Every step checks for presence first, so a
// re-run converges instead of reinstalling.
package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/dockship/dockship/internal/security"
	"github.com/dockship/dockship/internal/ssh"
)

// composeReleaseAPI resolves the latest released docker-compose version.
const composeReleaseAPI = "https://api.github.com/repos/docker/compose/releases/latest"

// Script returns the composite provisioning script for the given deployment
// user. It runs as one remote execution under fail-fast semantics; a failure
// partway leaves earlier installs in place, which is safe because each step
// is idempotent.
func Script(user string) string {
	return fmt.Sprintf(`set -e
export DEBIAN_FRONTEND=noninteractive

sudo apt-get update -qq
sudo apt-get upgrade -y -qq

if ! command -v docker >/dev/null 2>&1; then
    curl -fsSL https://get.docker.com | sudo sh
fi
sudo systemctl enable docker
sudo systemctl start docker

if ! command -v docker-compose >/dev/null 2>&1 && ! docker compose version >/dev/null 2>&1; then
    COMPOSE_VERSION=$(curl -fsSL %s | grep '"tag_name"' | cut -d '"' -f 4)
    sudo curl -fsSL "https://github.com/docker/compose/releases/download/${COMPOSE_VERSION}/docker-compose-$(uname -s)-$(uname -m)" -o /usr/local/bin/docker-compose
    sudo chmod +x /usr/local/bin/docker-compose
fi

if ! command -v nginx >/dev/null 2>&1; then
    sudo apt-get install -y -qq nginx
fi
sudo systemctl enable nginx
sudo systemctl start nginx

sudo usermod -aG docker %s
`, composeReleaseAPI, security.ShellEscape(user))
}

// Run executes the provisioning script on the remote host. With stream set,
// installer output goes straight to the terminal instead of being captured;
// package installs run for minutes and a silent terminal reads as a hang.
// The docker group membership takes effect at the user's next login; the
// deploy pipeline does not depend on it because its docker invocations go
// through sudo-capable sessions.
func Run(ctx context.Context, client ssh.Executor, user string, stream bool) error {
	if err := security.ValidateUnixUser(user); err != nil {
		return fmt.Errorf("invalid deployment user: %w", err)
	}

	if stream {
		if err := client.ExecStream(ctx, Script(user)); err != nil {
			return fmt.Errorf("provisioning failed: %w\nHint: inspect the system logs on the server (journalctl -xe, /var/log/apt/)", err)
		}
		return nil
	}

	result, err := client.Exec(ctx, Script(user))
	if err != nil {
		return fmt.Errorf("provisioning failed: %w", err)
	}
	if result.ExitCode != 0 {
		msg := strings.TrimSpace(result.Stderr)
		return fmt.Errorf("provisioning failed (exit %d): %s\nHint: inspect the system logs on the server (journalctl -xe, /var/log/apt/)", result.ExitCode, msg)
	}

	return nil
}
