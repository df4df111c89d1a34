package runner

import "context"

// MockRunner is a test double that records commands and returns configured
// results.
type MockRunner struct {
	RunFunc     func(ctx context.Context, cmd Command) (*Result, error)
	StreamFunc  func(ctx context.Context, cmd Command) error
	Commands    []Command
	RunCalls    int
	StreamCalls int
}

// Run records the command and delegates to RunFunc.
func (m *MockRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	m.Commands = append(m.Commands, cmd)
	m.RunCalls++
	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmd)
	}
	return &Result{Stdout: "", Stderr: "", ExitCode: 0}, nil
}

// Stream records the command and delegates to StreamFunc.
func (m *MockRunner) Stream(ctx context.Context, cmd Command) error {
	m.Commands = append(m.Commands, cmd)
	m.StreamCalls++
	if m.StreamFunc != nil {
		return m.StreamFunc(ctx, cmd)
	}
	return nil
}
