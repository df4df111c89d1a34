package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dockship/dockship/internal/security"
)

var (
	// repoURLRegex requires an HTTPS host-based Git URL ending in .git,
	// with at least one path segment.
	repoURLRegex = regexp.MustCompile(`^https://[a-zA-Z0-9][a-zA-Z0-9.-]*/[a-zA-Z0-9._/-]+\.git$`)

	// hostRegex accepts any dotted-quad numeric string. Octet ranges are
	// deliberately not checked: the connectivity probe catches unreachable
	// addresses, and hostname support is out of scope.
	hostRegex = regexp.MustCompile(`^[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}$`)

	// portRegex accepts digit-only strings, with no range check.
	portRegex = regexp.MustCompile(`^[0-9]+$`)
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// ValidateRepoURL checks that a repository URL is an HTTPS Git URL ending in .git.
func ValidateRepoURL(url string) error {
	if url == "" {
		return fmt.Errorf("repository URL is required")
	}
	if !repoURLRegex.MatchString(url) {
		return fmt.Errorf("repository URL must be an HTTPS Git URL ending in .git (e.g., https://github.com/user/repo.git)")
	}
	return nil
}

// ValidateHost checks that a server address is a dotted-quad numeric string.
func ValidateHost(host string) error {
	if host == "" {
		return fmt.Errorf("server address is required")
	}
	if !hostRegex.MatchString(host) {
		return fmt.Errorf("server address must be a dotted-quad IPv4 address (e.g., 203.0.113.10)")
	}
	return nil
}

// ValidatePort checks that a port string is composed entirely of digits.
func ValidatePort(port string) error {
	if port == "" {
		return fmt.Errorf("application port is required")
	}
	if !portRegex.MatchString(port) {
		return fmt.Errorf("application port must contain only digits")
	}
	return nil
}

// ValidateDeployment validates a fully assembled deployment configuration.
// All format rules are checked before any side effect occurs.
func ValidateDeployment(d *Deployment) ValidationErrors {
	var errors ValidationErrors

	if err := ValidateRepoURL(d.RepoURL); err != nil {
		errors = append(errors, ValidationError{Field: "repo", Message: err.Error()})
	}

	if d.Token == "" {
		errors = append(errors, ValidationError{Field: "token", Message: "access token is required"})
	}

	if err := security.ValidateBranch(d.Branch); err != nil {
		errors = append(errors, ValidationError{Field: "branch", Message: err.Error()})
	}

	if err := security.ValidateUnixUser(d.User); err != nil {
		errors = append(errors, ValidationError{Field: "user", Message: err.Error()})
	}

	if err := ValidateHost(d.Host); err != nil {
		errors = append(errors, ValidationError{Field: "host", Message: err.Error()})
	}

	if d.KeyPath == "" {
		errors = append(errors, ValidationError{Field: "key", Message: "SSH key path is required"})
	} else if info, err := os.Stat(d.KeyPath); err != nil || info.IsDir() {
		errors = append(errors, ValidationError{Field: "key", Message: fmt.Sprintf("SSH key file not found: %s", d.KeyPath)})
	}

	if d.AppPort <= 0 {
		errors = append(errors, ValidationError{Field: "port", Message: "application port must contain only digits"})
	}

	return errors
}
