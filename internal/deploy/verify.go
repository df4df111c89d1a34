package deploy

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dockship/dockship/internal/constants"
	"github.com/dockship/dockship/internal/ssh"
)

// Check is one observation of the final verification pass.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Verifier runs the read-only post-deployment report. It is diagnostics
// only: a failed check is reported but never fails the run, because the
// fatal health gate already ran during deployment.
type Verifier struct {
	client    ssh.Executor
	proxyURL  string
	directURL string
	httpc     *http.Client
}

// NewVerifier creates a verifier for the deployed host.
func NewVerifier(client ssh.Executor, host string, port int) *Verifier {
	return &Verifier{
		client:    client,
		proxyURL:  fmt.Sprintf("http://%s/", host),
		directURL: fmt.Sprintf("http://%s:%d/", host, port),
		httpc:     &http.Client{Timeout: constants.HealthProbeTimeout},
	}
}

// Report runs every check and returns the observations. Best-effort: a
// transport error becomes a failed check, never an error return.
func (v *Verifier) Report(ctx context.Context) []Check {
	checks := []Check{
		v.remoteCheck(ctx, "docker daemon",
			"docker info >/dev/null 2>&1 && echo up || echo down", "up"),
		v.remoteCheck(ctx, "app container",
			fmt.Sprintf("docker ps --filter name=%s --format '{{.Names}}'", constants.ContainerName),
			constants.ContainerName),
		v.remoteCheck(ctx, "nginx service",
			"systemctl is-active nginx 2>/dev/null || true", "active"),
		v.httpCheck(ctx, "http via proxy (port 80)", v.proxyURL),
		v.httpCheck(ctx, "http direct (app port)", v.directURL),
	}
	return checks
}

func (v *Verifier) remoteCheck(ctx context.Context, name, command, want string) Check {
	got, err := ssh.ExecWithOutput(ctx, v.client, command)
	if err != nil {
		return Check{Name: name, OK: false, Detail: err.Error()}
	}

	// Exact match on the first line: a substring test would read the
	// "inactive" or "failed" answers of systemctl as containing "active".
	first, _, _ := strings.Cut(got, "\n")
	return Check{Name: name, OK: strings.TrimSpace(first) == want, Detail: got}
}

func (v *Verifier) httpCheck(ctx context.Context, name, url string) Check {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Check{Name: name, OK: false, Detail: err.Error()}
	}

	resp, err := v.httpc.Do(req)
	if err != nil {
		return Check{Name: name, OK: false, Detail: "unreachable"}
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	return Check{Name: name, OK: ok, Detail: resp.Status}
}
