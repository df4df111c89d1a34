package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// containerNameRegex validates container and image names (DNS-compatible)
	// Allows: lowercase letters, numbers, hyphens (not at start/end)
	// Length: 1-63 characters
	containerNameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

	// branchRegex validates Git branch names
	// Allows: letters, numbers, dots, underscores, slashes, hyphens
	// Length: 1-128 characters
	branchRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._/-]{0,126}[a-zA-Z0-9])?$`)

	// unixUserRegex validates Unix usernames
	// Standard POSIX username rules
	// Length: 1-32 characters
	unixUserRegex = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

	// healthPathRegex validates health check paths
	// Allows: URL paths with alphanumeric, slashes, dots, underscores, hyphens
	// Does not allow double slashes or parent traversal (..)
	healthPathRegex = regexp.MustCompile(`^/([a-zA-Z0-9_.-]+(/[a-zA-Z0-9_.-]+)*)?$`)

	// sensitiveLogPatterns used by SanitizeCommandForLog to mask secrets
	sensitiveLogPatterns = []string{
		"DOCKSHIP_GIT_TOKEN=",
		"password=",
		"Authorization: ",
	}
)

// ValidateContainerName validates a container or image name.
// Names must be DNS-compatible for Docker naming.
func ValidateContainerName(name string) error {
	if name == "" {
		return fmt.Errorf("container name cannot be empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("container name too long (max 63 characters)")
	}
	if !containerNameRegex.MatchString(name) {
		return fmt.Errorf("container name must contain only lowercase letters, numbers, and hyphens (not at start/end)")
	}
	return nil
}

// ValidateBranch validates a Git branch name.
func ValidateBranch(branch string) error {
	if branch == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if len(branch) > 128 {
		return fmt.Errorf("branch name too long (max 128 characters)")
	}
	if strings.Contains(branch, "..") {
		return fmt.Errorf("branch name cannot contain '..'")
	}
	if !branchRegex.MatchString(branch) {
		return fmt.Errorf("branch name must contain only letters, numbers, dots, underscores, slashes, and hyphens")
	}
	return nil
}

// ValidateUnixUser validates a Unix username.
func ValidateUnixUser(user string) error {
	if user == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(user) > 32 {
		return fmt.Errorf("username too long (max 32 characters)")
	}
	if !unixUserRegex.MatchString(user) {
		return fmt.Errorf("username must start with a lowercase letter or underscore, followed by lowercase letters, numbers, underscores, or hyphens")
	}
	return nil
}

// ValidateHealthPath validates a health check URL path.
func ValidateHealthPath(path string) error {
	if path == "" {
		return nil // Empty path defaults to "/"
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("health path must start with /")
	}
	if len(path) > 2048 {
		return fmt.Errorf("health path too long (max 2048 characters)")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("health path cannot contain path traversal (..) sequences")
	}
	if !healthPathRegex.MatchString(path) {
		return fmt.Errorf("health path contains invalid characters")
	}
	return nil
}

// ShellEscape escapes a string for safe use in shell commands by wrapping it
// in single quotes and escaping any internal single quotes using the POSIX
// pattern: ' → '\''
func ShellEscape(s string) string {
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// SanitizeCommandForLog masks sensitive values in a command line before it is
// written to the run log. Anything following a known sensitive prefix is
// replaced up to the next whitespace.
func SanitizeCommandForLog(command string) string {
	sanitized := command
	for _, pattern := range sensitiveLogPatterns {
		idx := strings.Index(sanitized, pattern)
		for idx >= 0 {
			start := idx + len(pattern)
			end := start
			for end < len(sanitized) && !isSpace(sanitized[end]) {
				end++
			}
			sanitized = sanitized[:start] + "***" + sanitized[end:]
			next := strings.Index(sanitized[start:], pattern)
			if next < 0 {
				break
			}
			idx = start + next
		}
	}
	return sanitized
}

// MaskSecret replaces all but a short identifying prefix of a secret with
// asterisks. Used when echoing effective parameters back to the user.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", 8)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}
