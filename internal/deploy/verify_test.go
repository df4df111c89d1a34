package deploy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dockship/dockship/internal/ssh"
)

func TestVerifierReportsAllChecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	mock := &ssh.MockExecutor{
		ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
			switch {
			case strings.Contains(command, "docker info"):
				return &ssh.ExecResult{Stdout: "up\n"}, nil
			case strings.Contains(command, "docker ps"):
				return &ssh.ExecResult{Stdout: "dockship-app\n"}, nil
			case strings.Contains(command, "systemctl is-active"):
				return &ssh.ExecResult{Stdout: "active\n"}, nil
			}
			return &ssh.ExecResult{}, nil
		},
	}

	v := &Verifier{
		client:    mock,
		proxyURL:  server.URL,
		directURL: server.URL,
		httpc:     server.Client(),
	}

	checks := v.Report(context.Background())
	if len(checks) != 5 {
		t.Fatalf("Report() returned %d checks, want 5", len(checks))
	}
	for _, check := range checks {
		if !check.OK {
			t.Errorf("check %q failed: %s", check.Name, check.Detail)
		}
	}
}

func TestVerifierReportsFailuresWithoutError(t *testing.T) {
	mock := &ssh.MockExecutor{
		ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
			switch {
			case strings.Contains(command, "docker info"):
				return &ssh.ExecResult{Stdout: "down\n"}, nil
			case strings.Contains(command, "systemctl is-active"):
				return &ssh.ExecResult{Stdout: "inactive\n"}, nil
			}
			return &ssh.ExecResult{Stdout: ""}, nil
		},
	}

	v := &Verifier{
		client:    mock,
		proxyURL:  "http://127.0.0.1:1/",
		directURL: "http://127.0.0.1:1/",
		httpc:     http.DefaultClient,
	}

	// Every check fails; Report still returns the full set so the caller
	// can print all five lines.
	checks := v.Report(context.Background())
	if len(checks) != 5 {
		t.Fatalf("Report() returned %d checks, want 5", len(checks))
	}
	for _, check := range checks {
		if check.OK {
			t.Errorf("check %q unexpectedly passed", check.Name)
		}
	}
}

func TestVerifierNginxInactiveIsReportedDown(t *testing.T) {
	answers := []string{"inactive", "failed", "activating"}

	for _, answer := range answers {
		t.Run(answer, func(t *testing.T) {
			mock := &ssh.MockExecutor{
				ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
					if strings.Contains(command, "systemctl is-active") {
						return &ssh.ExecResult{Stdout: answer + "\n"}, nil
					}
					return &ssh.ExecResult{}, nil
				},
			}

			v := &Verifier{
				client:    mock,
				proxyURL:  "http://127.0.0.1:1/",
				directURL: "http://127.0.0.1:1/",
				httpc:     http.DefaultClient,
			}

			for _, check := range v.Report(context.Background()) {
				if check.Name == "nginx service" && check.OK {
					t.Errorf("nginx check passed with systemctl answer %q", answer)
				}
			}
		})
	}
}

func TestVerifierProbesProxyAndDirectPorts(t *testing.T) {
	v := NewVerifier(&ssh.MockExecutor{}, "203.0.113.10", 3000)

	if v.proxyURL != "http://203.0.113.10/" {
		t.Errorf("proxyURL = %q", v.proxyURL)
	}
	if v.directURL != "http://203.0.113.10:3000/" {
		t.Errorf("directURL = %q", v.directURL)
	}
}
