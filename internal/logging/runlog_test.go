package logging

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func TestOpenCreatesPerDayFile(t *testing.T) {
	dir := t.TempDir()

	log, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer log.Close()

	wantName := fmt.Sprintf("dockship-%s.log", time.Now().Format("20060102"))
	if !strings.HasSuffix(log.Path(), wantName) {
		t.Errorf("Path() = %q, want suffix %q", log.Path(), wantName)
	}

	if _, err := os.Stat(log.Path()); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestRunLogWritesTimestampedLines(t *testing.T) {
	dir := t.TempDir()

	log, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	log.Infof("deploy started for %s", "myapp")
	log.Errorf("something failed")
	log.Close()

	data, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "deploy started for myapp") {
		t.Errorf("log file missing info line, got: %s", content)
	}
	if !strings.Contains(content, "something failed") {
		t.Errorf("log file missing error line, got: %s", content)
	}
	// Timestamped in the configured format
	if !strings.Contains(content, time.Now().Format("2006-01-02")) {
		t.Errorf("log lines not timestamped, got: %s", content)
	}
}

func TestOpenAppendsAcrossRuns(t *testing.T) {
	dir := t.TempDir()

	first, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	first.Infof("run one")
	first.Close()

	second, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	second.Infof("run two")
	second.Close()

	data, err := os.ReadFile(second.Path())
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	if !strings.Contains(string(data), "run one") || !strings.Contains(string(data), "run two") {
		t.Errorf("expected both runs appended to the same file, got: %s", string(data))
	}
}

func TestNilRunLogIsSafe(t *testing.T) {
	var log *RunLog
	log.Infof("no-op")
	log.Warnf("no-op")
	log.Errorf("no-op")
	log.Debugf("no-op")
	if log.Path() != "" {
		t.Errorf("nil Path() = %q, want empty", log.Path())
	}
	if err := log.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}
