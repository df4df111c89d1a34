package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dockship", "config.yaml")

	in := &Defaults{
		Branch:  "develop",
		User:    "deploy",
		KeyPath: "/home/deploy/.ssh/id_ed25519",
		Host:    "203.0.113.10",
	}

	if err := saveDefaultsTo(in, path); err != nil {
		t.Fatalf("saveDefaultsTo() error = %v", err)
	}

	out, err := loadDefaultsFrom(path)
	if err != nil {
		t.Fatalf("loadDefaultsFrom() error = %v", err)
	}

	if *out != *in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestLoadDefaultsMissingFile(t *testing.T) {
	out, err := loadDefaultsFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadDefaultsFrom() error = %v", err)
	}
	if *out != (Defaults{}) {
		t.Errorf("missing file should yield empty defaults, got %+v", out)
	}
}

func TestApplyDefaults(t *testing.T) {
	d := &Deployment{}
	d.ApplyDefaults()

	if d.Branch != "main" {
		t.Errorf("Branch = %q, want main", d.Branch)
	}
	if d.KeyPath == "" || d.KeyPath == "~/.ssh/id_rsa" {
		t.Errorf("KeyPath = %q, want expanded default", d.KeyPath)
	}

	// Explicit values survive.
	d2 := &Deployment{Branch: "develop", KeyPath: "/tmp/key"}
	d2.ApplyDefaults()
	if d2.Branch != "develop" || d2.KeyPath != "/tmp/key" {
		t.Errorf("explicit values overwritten: %+v", d2)
	}
}

func TestFromDeployment(t *testing.T) {
	d := &Deployment{
		RepoURL: "https://github.com/user/repo.git",
		Token:   "secret",
		Branch:  "main",
		User:    "deploy",
		Host:    "203.0.113.10",
		KeyPath: "/home/deploy/.ssh/id_rsa",
		AppPort: 3000,
	}

	got := FromDeployment(d)
	if got.Branch != "main" || got.User != "deploy" || got.Host != "203.0.113.10" {
		t.Errorf("FromDeployment() = %+v", got)
	}
}
