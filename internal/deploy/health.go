package deploy

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dockship/dockship/internal/constants"
	"github.com/dockship/dockship/internal/ssh"
)

// HealthGate is the post-deploy check whose failure fails the deployment
// even though build and run already succeeded. One settle delay, one probe:
// no retry loop, matching the tool's supervised fail-fast model.
type HealthGate struct {
	client ssh.Executor
	url    string
	settle time.Duration
	httpc  *http.Client
}

// NewHealthGate creates a gate probing the application port directly on the
// remote host.
func NewHealthGate(client ssh.Executor, host string, port int) *HealthGate {
	return &HealthGate{
		client: client,
		url:    fmt.Sprintf("http://%s:%d/", host, port),
		settle: constants.PreHealthSleep,
		httpc:  &http.Client{Timeout: constants.HealthProbeTimeout},
	}
}

// Check waits for the container to settle, verifies it is still in the
// running set, and issues one HTTP probe. Any non-2xx or unreachable result
// is fatal.
func (g *HealthGate) Check(ctx context.Context) error {
	select {
	case <-time.After(g.settle):
	case <-ctx.Done():
		return ctx.Err()
	}

	result, err := g.client.Exec(ctx, fmt.Sprintf(
		"docker ps --filter name=%s --format '{{.Status}}'", constants.ContainerName))
	if err != nil {
		return fmt.Errorf("failed to check container state: %w", err)
	}
	if strings.TrimSpace(result.Stdout) == "" {
		return fmt.Errorf("container %s is not running; inspect the logs printed above", constants.ContainerName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build health probe: %w", err)
	}

	resp, err := g.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("application did not answer on %s: %w\nHint: inspect the container logs printed above", g.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health probe on %s returned %d; inspect the container logs printed above", g.url, resp.StatusCode)
	}

	return nil
}
