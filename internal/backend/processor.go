package backend

import (
	"fmt"
	"io"

	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
	"github.com/MatthewMacomber/EngageLang/internal/pipeline"
)

// ExecutionProcessor is the final pipeline stage: it runs the parsed
// program on the configured backend. A runtime error is reported to
// ErrOut and recorded for the caller's exit code; it is not a
// pipeline failure.
type ExecutionProcessor struct {
	Backend Backend
	ErrOut  io.Writer

	// TaskWorkers caps concurrently running tasks when positive.
	TaskWorkers int

	Result     evaluator.Object
	RuntimeErr *evaluator.Error
}

func (p *ExecutionProcessor) Name() string { return "execute" }

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) error {
	host := evaluator.NewWithIO(ctx.Out, p.ErrOut, ctx.In)
	if p.TaskWorkers > 0 {
		host.Scheduler.SetWorkerLimit(p.TaskWorkers)
	}
	env := evaluator.NewEnvironment()
	evaluator.RegisterBuiltins(env)

	result, errObj := p.Backend.Run(ctx.AstRoot, host, env)
	if errObj != nil {
		p.RuntimeErr = errObj
		fmt.Fprintln(p.ErrOut, errObj.Report())
		return nil
	}
	p.Result = result
	return nil
}
