// Package logging provides the per-run log file. Every user-visible message
// is mirrored here with a timestamp so a failed run leaves a reviewable trace.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// RunLog appends timestamped lines to a per-day log file. It is not rotated;
// one file per calendar day accumulates all runs of that day.
type RunLog struct {
	logger *logrus.Logger
	file   *os.File
	path   string
}

// Open creates or appends to the log file for today inside dir. An empty dir
// means the current working directory.
func Open(dir string) (*RunLog, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := fmt.Sprintf("dockship-%s.log", time.Now().Format("20060102"))
	path := filepath.Join(dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(file)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})

	return &RunLog{logger: logger, file: file, path: path}, nil
}

// Path returns the log file path.
func (l *RunLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close closes the underlying file.
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Infof logs a progress line.
func (l *RunLog) Infof(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logger.Infof(format, args...)
}

// Warnf logs a warning line.
func (l *RunLog) Warnf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logger.Warnf(format, args...)
}

// Errorf logs an error line.
func (l *RunLog) Errorf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logger.Errorf(format, args...)
}

// Debugf logs a verbose detail line.
func (l *RunLog) Debugf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logger.Debugf(format, args...)
}
