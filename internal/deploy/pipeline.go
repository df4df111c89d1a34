package deploy

import (
	"context"
	"fmt"
)

// Stage is one step of the deployment pipeline.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pipeline executes stages strictly in order, halting at the first failure.
// Each stage observes the fully completed result of the previous one; there
// is no partial recovery or rollback.
type Pipeline struct {
	stages []Stage
	logf   func(format string, args ...interface{})
}

// NewPipeline creates an empty pipeline. logf receives stage progress lines.
func NewPipeline(logf func(format string, args ...interface{})) *Pipeline {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Pipeline{logf: logf}
}

// Add appends a stage.
func (p *Pipeline) Add(name string, run func(ctx context.Context) error) {
	p.stages = append(p.stages, Stage{Name: name, Run: run})
}

// Run executes the stages. A cancelled context (interrupt) stops before the
// next stage begins; a stage failure aborts with the stage name attached.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.logf("%s...", stage.Name)
		if err := stage.Run(ctx); err != nil {
			return fmt.Errorf("%s failed: %w", stage.Name, err)
		}
	}
	return nil
}
