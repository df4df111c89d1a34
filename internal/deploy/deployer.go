package deploy

import (
	"context"
	"fmt"
	"strings"

	"github.com/dockship/dockship/internal/config"
	"github.com/dockship/dockship/internal/constants"
	"github.com/dockship/dockship/internal/runner"
	"github.com/dockship/dockship/internal/ssh"
)

// Deployer achieves exactly one running instance of the freshly built image
// on the remote host.
type Deployer struct {
	client  ssh.Executor
	run     runner.Runner
	cfg     *config.Deployment
	workDir string
	stream  bool
	logf    func(format string, args ...interface{})
}

// NewDeployer creates a deployer for the given working copy.
func NewDeployer(client ssh.Executor, run runner.Runner, cfg *config.Deployment, workDir string) *Deployer {
	return &Deployer{
		client:  client,
		run:     run,
		cfg:     cfg,
		workDir: workDir,
		logf:    func(string, ...interface{}) {},
	}
}

// SetLogf sets a callback for verbose progress messages.
func (d *Deployer) SetLogf(logf func(format string, args ...interface{})) {
	if logf != nil {
		d.logf = logf
	}
}

// SetStream makes local transfers write their output to the terminal instead
// of capturing it. Used in verbose mode so long rsync runs show progress.
func (d *Deployer) SetStream(stream bool) {
	d.stream = stream
}

// PrepareAppDir ensures the fixed application directory exists and is owned
// by the deployment user. The chown is unconditional so a directory created
// by an earlier root-level run is reclaimed.
func (d *Deployer) PrepareAppDir(ctx context.Context) error {
	commands := []string{
		fmt.Sprintf("sudo mkdir -p %s", constants.AppDir),
		fmt.Sprintf("sudo chown -R %s:%s %s", d.cfg.User, d.cfg.User, constants.BasePath),
	}
	for _, command := range commands {
		d.logf("Running: %s", command)
	}
	return ssh.ExecMultiple(ctx, d.client, commands)
}

// RemoveOldContainer stops and removes any previous container instance.
// "Not found" is not an error: the same path serves first runs and re-runs.
func (d *Deployer) RemoveOldContainer(ctx context.Context) {
	if _, err := d.client.Exec(ctx, fmt.Sprintf("docker stop %s 2>/dev/null || true", constants.ContainerName)); err != nil {
		d.logf("Could not stop container %s: %v", constants.ContainerName, err)
	}
	if _, err := d.client.Exec(ctx, fmt.Sprintf("docker rm %s 2>/dev/null || true", constants.ContainerName)); err != nil {
		d.logf("Could not remove container %s: %v", constants.ContainerName, err)
	}
}

// SyncFiles mirrors the local working copy to the remote application
// directory. Files deleted locally are deleted remotely too, so the remote
// tree is an exact snapshot of the current branch.
func (d *Deployer) SyncFiles(ctx context.Context) error {
	hostKeyOpts, cleanup, err := ssh.TransportArgs()
	if err != nil {
		return fmt.Errorf("rsync failed: %w", err)
	}
	defer cleanup()

	cmd := runner.Command{
		Name: "rsync",
		Args: []string{
			"-az", "--delete",
			"--exclude", ".git",
			"-e", fmt.Sprintf("ssh %s -i %s", hostKeyOpts, d.cfg.KeyPath),
			d.workDir + "/",
			fmt.Sprintf("%s@%s:%s/", d.cfg.User, d.cfg.Host, constants.AppDir),
		},
	}

	d.logf("Running: %s", cmd.String())

	if d.stream {
		if err := d.run.Stream(ctx, cmd); err != nil {
			return fmt.Errorf("rsync failed: %w", err)
		}
		return nil
	}

	result, err := d.run.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("rsync failed: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("rsync failed (exit %d): %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// BuildImage builds the application image from the synced directory.
func (d *Deployer) BuildImage(ctx context.Context) error {
	cmd := fmt.Sprintf("cd %s && docker build -t %s .", constants.AppDir, constants.ImageTag)

	result, err := d.client.Exec(ctx, cmd)
	if err != nil {
		return fmt.Errorf("docker build failed: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("docker build failed (exit %d): %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// RunContainer starts the freshly built image detached under the fixed name,
// publishing the configured port, with an automatic-restart policy.
func (d *Deployer) RunContainer(ctx context.Context) error {
	cmd := fmt.Sprintf("docker run -d --name %s --restart unless-stopped -p %d:%d %s",
		constants.ContainerName, d.cfg.AppPort, d.cfg.AppPort, constants.ImageTag)

	result, err := d.client.Exec(ctx, cmd)
	if err != nil {
		return fmt.Errorf("docker run failed: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("docker run failed (exit %d): %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// RecentLogs returns the last few container log lines. Best-effort: an empty
// string means the logs could not be read.
func (d *Deployer) RecentLogs(ctx context.Context) string {
	result, err := d.client.Exec(ctx, fmt.Sprintf("docker logs %s --tail %d 2>&1",
		constants.ContainerName, constants.LogTailLines))
	if err != nil {
		return ""
	}
	return result.Stdout
}
