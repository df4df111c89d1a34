package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dockship/dockship/internal/constants"
)

// Deployment holds the parameters of a single deployment run. It is built
// once from prompts, flags, and saved defaults, validated, and then threaded
// unchanged through every stage.
type Deployment struct {
	RepoURL string
	Token   string
	Branch  string
	User    string
	Host    string
	KeyPath string
	AppPort int
}

// Addr returns the SSH host:port pair for this deployment.
func (d *Deployment) Addr() string {
	return d.Host
}

// ApplyDefaults fills empty optional fields from built-in defaults. The
// branch and key path are the two inputs the prompt flow allows to be left
// blank.
func (d *Deployment) ApplyDefaults() {
	if d.Branch == "" {
		d.Branch = constants.DefaultBranch
	}
	if d.KeyPath == "" {
		d.KeyPath = constants.DefaultKeyPath
	}
	d.KeyPath = ExpandPath(d.KeyPath)
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
