package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultsDir is the configuration directory name
	DefaultsDir = "dockship"
	// DefaultsFile is the saved defaults filename
	DefaultsFile = "config.yaml"
)

// Defaults holds values remembered between runs to pre-fill the prompts.
// They are optional; the interactive flow always wins.
type Defaults struct {
	Branch  string `yaml:"branch,omitempty"`
	User    string `yaml:"user,omitempty"`
	KeyPath string `yaml:"key_path,omitempty"`
	Host    string `yaml:"host,omitempty"`
}

// DefaultsPath returns the path to the saved defaults file.
func DefaultsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, DefaultsDir, DefaultsFile), nil
}

// LoadDefaults loads the saved defaults. A missing file yields empty defaults.
func LoadDefaults() (*Defaults, error) {
	path, err := DefaultsPath()
	if err != nil {
		return nil, err
	}
	return loadDefaultsFrom(path)
}

func loadDefaultsFrom(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Defaults{}, nil
		}
		return nil, fmt.Errorf("failed to read defaults: %w", err)
	}

	var defaults Defaults
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("failed to parse defaults: %w", err)
	}

	return &defaults, nil
}

// SaveDefaults persists defaults for the next run.
func SaveDefaults(defaults *Defaults) error {
	path, err := DefaultsPath()
	if err != nil {
		return err
	}
	return saveDefaultsTo(defaults, path)
}

func saveDefaultsTo(defaults *Defaults, path string) error {
	dir := filepath.Dir(path)
	// SECURITY: Use 0700 to restrict directory access to owner only
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(defaults)
	if err != nil {
		return fmt.Errorf("failed to marshal defaults: %w", err)
	}

	// SECURITY: Use 0600 to restrict file access to owner only
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write defaults: %w", err)
	}

	return nil
}

// FromDeployment extracts the rememberable fields of a deployment.
func FromDeployment(d *Deployment) *Defaults {
	return &Defaults{
		Branch:  d.Branch,
		User:    d.User,
		KeyPath: d.KeyPath,
		Host:    d.Host,
	}
}
