package deploy

import (
	"context"
	"strings"
	"testing"

	"github.com/dockship/dockship/internal/config"
	"github.com/dockship/dockship/internal/runner"
	"github.com/dockship/dockship/internal/ssh"
)

func testDeployment() *config.Deployment {
	return &config.Deployment{
		RepoURL: "https://github.com/user/myapp.git",
		Token:   "tok",
		Branch:  "main",
		User:    "deploy",
		Host:    "203.0.113.10",
		KeyPath: "/home/deploy/.ssh/id_rsa",
		AppPort: 3000,
	}
}

func TestPrepareAppDir(t *testing.T) {
	mock := &ssh.MockExecutor{}
	d := NewDeployer(mock, &runner.MockRunner{}, testDeployment(), "/tmp/myapp")

	if err := d.PrepareAppDir(context.Background()); err != nil {
		t.Fatalf("PrepareAppDir() error = %v", err)
	}

	if len(mock.Commands) != 2 {
		t.Fatalf("expected 2 commands, got %d: %v", len(mock.Commands), mock.Commands)
	}
	if !strings.Contains(mock.Commands[0], "mkdir -p /opt/dockship/app") {
		t.Errorf("first command = %q, want mkdir", mock.Commands[0])
	}
	if !strings.Contains(mock.Commands[1], "chown -R deploy:deploy /opt/dockship") {
		t.Errorf("second command = %q, want unconditional chown", mock.Commands[1])
	}
}

func TestRemoveOldContainerIgnoresMissing(t *testing.T) {
	mock := &ssh.MockExecutor{
		ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
			// docker returns 1 for a missing container; the || true guard
			// keeps the remote exit at 0 either way.
			return &ssh.ExecResult{ExitCode: 0}, nil
		},
	}
	d := NewDeployer(mock, &runner.MockRunner{}, testDeployment(), "/tmp/myapp")

	d.RemoveOldContainer(context.Background())

	if len(mock.Commands) != 2 {
		t.Fatalf("expected stop + rm, got %d commands", len(mock.Commands))
	}
	for _, cmd := range mock.Commands {
		if !strings.Contains(cmd, "dockship-app") {
			t.Errorf("command %q missing fixed container name", cmd)
		}
		if !strings.Contains(cmd, "|| true") {
			t.Errorf("command %q must tolerate a missing container", cmd)
		}
	}
}

func TestRemoveOldContainerIsIdempotent(t *testing.T) {
	mock := &ssh.MockExecutor{}
	d := NewDeployer(mock, &runner.MockRunner{}, testDeployment(), "/tmp/myapp")

	// Two consecutive deploys both clear the previous instance; neither can
	// leave two containers behind because the name is fixed and removal is
	// unconditional.
	d.RemoveOldContainer(context.Background())
	d.RemoveOldContainer(context.Background())

	if len(mock.Commands) != 4 {
		t.Fatalf("expected 4 commands across two runs, got %d", len(mock.Commands))
	}
}

func TestSyncFilesMirrors(t *testing.T) {
	t.Setenv("DOCKSHIP_KNOWN_HOSTS", "")
	t.Setenv("DOCKSHIP_SKIP_HOST_KEY_CHECK", "")

	mockRun := &runner.MockRunner{}
	d := NewDeployer(&ssh.MockExecutor{}, mockRun, testDeployment(), "/tmp/myapp")

	if err := d.SyncFiles(context.Background()); err != nil {
		t.Fatalf("SyncFiles() error = %v", err)
	}

	if len(mockRun.Commands) != 1 {
		t.Fatalf("expected one rsync invocation, got %d", len(mockRun.Commands))
	}

	cmd := mockRun.Commands[0]
	if cmd.Name != "rsync" {
		t.Errorf("command = %q, want rsync", cmd.Name)
	}

	line := cmd.String()
	// Delete-on-sync gives mirror semantics: remote files absent locally
	// are removed.
	if !strings.Contains(line, "--delete") {
		t.Errorf("rsync invocation %q missing --delete", line)
	}
	if !strings.Contains(line, "--exclude .git") {
		t.Errorf("rsync invocation %q should exclude .git", line)
	}
	if !strings.Contains(line, "/tmp/myapp/ deploy@203.0.113.10:/opt/dockship/app/") {
		t.Errorf("rsync invocation %q has wrong endpoints", line)
	}
	// Same host key posture as the SSH client: verified by default.
	if !strings.Contains(line, "StrictHostKeyChecking=yes") {
		t.Errorf("rsync invocation %q should verify host keys", line)
	}
}

func TestSyncFilesHonoursHostKeySkipEnv(t *testing.T) {
	t.Setenv("DOCKSHIP_KNOWN_HOSTS", "")
	t.Setenv("DOCKSHIP_SKIP_HOST_KEY_CHECK", "true")

	mockRun := &runner.MockRunner{}
	d := NewDeployer(&ssh.MockExecutor{}, mockRun, testDeployment(), "/tmp/myapp")

	if err := d.SyncFiles(context.Background()); err != nil {
		t.Fatalf("SyncFiles() error = %v", err)
	}

	line := mockRun.Commands[0].String()
	if !strings.Contains(line, "StrictHostKeyChecking=no") {
		t.Errorf("rsync invocation %q should skip host key checks like the client", line)
	}
}

func TestSyncFilesStreamsWhenRequested(t *testing.T) {
	t.Setenv("DOCKSHIP_KNOWN_HOSTS", "")
	t.Setenv("DOCKSHIP_SKIP_HOST_KEY_CHECK", "")

	mockRun := &runner.MockRunner{}
	d := NewDeployer(&ssh.MockExecutor{}, mockRun, testDeployment(), "/tmp/myapp")
	d.SetStream(true)

	if err := d.SyncFiles(context.Background()); err != nil {
		t.Fatalf("SyncFiles() error = %v", err)
	}

	if mockRun.StreamCalls != 1 || mockRun.RunCalls != 0 {
		t.Errorf("stream mode used Run %d times and Stream %d times, want Stream only",
			mockRun.RunCalls, mockRun.StreamCalls)
	}
}

func TestSyncFilesSurfacesRsyncFailure(t *testing.T) {
	mockRun := &runner.MockRunner{
		RunFunc: func(ctx context.Context, cmd runner.Command) (*runner.Result, error) {
			return &runner.Result{Stderr: "rsync: connection unexpectedly closed", ExitCode: 12}, nil
		},
	}
	d := NewDeployer(&ssh.MockExecutor{}, mockRun, testDeployment(), "/tmp/myapp")

	err := d.SyncFiles(context.Background())
	if err == nil {
		t.Fatal("SyncFiles() expected error")
	}
	if !strings.Contains(err.Error(), "connection unexpectedly closed") {
		t.Errorf("error = %v, want rsync stderr included", err)
	}
}

func TestBuildImage(t *testing.T) {
	mock := &ssh.MockExecutor{}
	d := NewDeployer(mock, &runner.MockRunner{}, testDeployment(), "/tmp/myapp")

	if err := d.BuildImage(context.Background()); err != nil {
		t.Fatalf("BuildImage() error = %v", err)
	}
	if len(mock.Commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(mock.Commands))
	}
	if !strings.Contains(mock.Commands[0], "cd /opt/dockship/app && docker build -t dockship-app .") {
		t.Errorf("build command = %q", mock.Commands[0])
	}
}

func TestRunContainer(t *testing.T) {
	mock := &ssh.MockExecutor{}
	d := NewDeployer(mock, &runner.MockRunner{}, testDeployment(), "/tmp/myapp")

	if err := d.RunContainer(context.Background()); err != nil {
		t.Fatalf("RunContainer() error = %v", err)
	}

	cmd := mock.Commands[0]
	wantParts := []string{
		"docker run -d",
		"--name dockship-app",
		"--restart unless-stopped",
		"-p 3000:3000",
	}
	for _, part := range wantParts {
		if !strings.Contains(cmd, part) {
			t.Errorf("run command %q missing %q", cmd, part)
		}
	}
}

func TestRunContainerFailureIncludesStderr(t *testing.T) {
	mock := &ssh.MockExecutor{
		ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
			return &ssh.ExecResult{Stderr: "port is already allocated", ExitCode: 125}, nil
		},
	}
	d := NewDeployer(mock, &runner.MockRunner{}, testDeployment(), "/tmp/myapp")

	err := d.RunContainer(context.Background())
	if err == nil {
		t.Fatal("RunContainer() expected error")
	}
	if !strings.Contains(err.Error(), "port is already allocated") {
		t.Errorf("error = %v, want docker stderr included", err)
	}
}

func TestRecentLogs(t *testing.T) {
	mock := &ssh.MockExecutor{
		ExecFunc: func(ctx context.Context, command string) (*ssh.ExecResult, error) {
			return &ssh.ExecResult{Stdout: "listening on 3000\n", ExitCode: 0}, nil
		},
	}
	d := NewDeployer(mock, &runner.MockRunner{}, testDeployment(), "/tmp/myapp")

	logs := d.RecentLogs(context.Background())
	if logs != "listening on 3000\n" {
		t.Errorf("RecentLogs() = %q", logs)
	}
	if !strings.Contains(mock.Commands[0], "--tail 10") {
		t.Errorf("logs command = %q, want last 10 lines", mock.Commands[0])
	}
}
