// Package gitrepo keeps a local working copy of the target repository in
// sync with the requested branch and verifies it is deployable.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dockship/dockship/internal/runner"
)

// tokenEnvVar carries the access token into git's credential helper. The
// token never appears in the clone URL or in process arguments.
const tokenEnvVar = "DOCKSHIP_GIT_TOKEN"

// credentialHelper answers git's credential prompt from the environment.
const credentialHelper = `!f() { echo "username=x-access-token"; echo "password=${` + tokenEnvVar + `}"; }; f`

// containerManifests are the files that make a working copy deployable.
var containerManifests = []string{
	"Dockerfile",
	"docker-compose.yml",
	"docker-compose.yaml",
	"compose.yml",
	"compose.yaml",
}

// Syncer clones or updates the target repository.
type Syncer struct {
	run     runner.Runner
	baseDir string
	logf    func(format string, args ...interface{})
}

// NewSyncer creates a syncer that keeps working copies under baseDir. An
// empty baseDir means the current directory.
func NewSyncer(run runner.Runner, baseDir string) *Syncer {
	return &Syncer{run: run, baseDir: baseDir, logf: func(string, ...interface{}) {}}
}

// SetLogf sets a callback for verbose progress messages.
func (s *Syncer) SetLogf(logf func(format string, args ...interface{})) {
	if logf != nil {
		s.logf = logf
	}
}

// LocalDirFromURL derives a directory name from the repository URL: the last
// path segment with the .git suffix removed.
func LocalDirFromURL(repoURL string) string {
	trimmed := strings.TrimSuffix(repoURL, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}

// Sync clones the repository if the local directory is absent, otherwise
// pulls the requested branch, then checks the branch out explicitly. Returns
// the working copy path.
func (s *Syncer) Sync(ctx context.Context, repoURL, branch, token string) (string, error) {
	dir := filepath.Join(s.baseDir, LocalDirFromURL(repoURL))

	env := []string{tokenEnvVar + "=" + token}

	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		s.logf("Working copy exists, pulling %s...", branch)
		if err := s.git(ctx, dir, env, "pull", "origin", branch); err != nil {
			return "", fmt.Errorf("failed to pull branch %s: %w", branch, err)
		}
	} else {
		s.logf("Cloning %s...", repoURL)
		if err := s.git(ctx, s.baseDir, env, "clone", "--branch", branch, repoURL, dir); err != nil {
			return "", fmt.Errorf("failed to clone repository: %w", err)
		}
	}

	// The directory may hold a checkout of a different branch from an
	// earlier run.
	if err := s.git(ctx, dir, env, "checkout", branch); err != nil {
		return "", fmt.Errorf("failed to checkout branch %s: %w", branch, err)
	}

	return dir, nil
}

func (s *Syncer) git(ctx context.Context, dir string, env []string, args ...string) error {
	full := append([]string{
		"-c", "credential.helper=",
		"-c", "credential.helper=" + credentialHelper,
	}, args...)

	cmd := runner.Command{Name: "git", Args: full, Dir: dir, Env: env}
	s.logf("Running: %s", cmd.String())

	result, err := s.run.Run(ctx, cmd)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		msg := strings.TrimSpace(result.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(result.Stdout)
		}
		return fmt.Errorf("git %s failed (exit %d): %s", args[0], result.ExitCode, msg)
	}
	return nil
}

// VerifyContainerManifest checks that the working copy holds a Dockerfile or
// compose file. Absence is fatal for the run, not a skip.
func VerifyContainerManifest(dir string) error {
	for _, name := range containerManifests {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return nil
		}
	}
	return fmt.Errorf("no Dockerfile or compose file found in %s; the repository must provide one", dir)
}
