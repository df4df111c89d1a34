package ssh

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/dockship/dockship/internal/security"
)

// UploadContent uploads content directly to a remote file.
// SECURITY: Uses base64 encoding to prevent heredoc injection attacks.
func UploadContent(ctx context.Context, ex Executor, content, remotePath string) error {
	base64Content := base64.StdEncoding.EncodeToString([]byte(content))

	cmd := fmt.Sprintf("mkdir -p %s && echo '%s' | base64 -d > %s",
		security.ShellEscape(filepath.Dir(remotePath)), base64Content, security.ShellEscape(remotePath))

	result, err := ex.Exec(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to upload content: %w", err)
	}

	if result.ExitCode != 0 {
		return fmt.Errorf("failed to write file: %s", result.Stderr)
	}

	return nil
}

// FileExists checks if a file exists on the remote server
func FileExists(ctx context.Context, ex Executor, remotePath string) (bool, error) {
	result, err := ex.Exec(ctx, fmt.Sprintf("test -f %s && echo 'exists'", security.ShellEscape(remotePath)))
	if err != nil {
		return false, err
	}
	return result.Stdout == "exists\n", nil
}

// DirectoryExists checks if a directory exists on the remote server
func DirectoryExists(ctx context.Context, ex Executor, remotePath string) (bool, error) {
	result, err := ex.Exec(ctx, fmt.Sprintf("test -d %s && echo 'exists'", security.ShellEscape(remotePath)))
	if err != nil {
		return false, err
	}
	return result.Stdout == "exists\n", nil
}
