package pipeline

import (
	"io"

	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/diagnostics"
	"github.com/MatthewMacomber/EngageLang/internal/token"
)

// PipelineContext carries one program through the stages. Each stage
// reads what the previous one produced and records its own output and
// errors here.
type PipelineContext struct {
	Source   string
	FilePath string

	Tokens  []token.Token
	AstRoot *ast.Program

	Out io.Writer
	In  io.Reader

	Errors []*diagnostics.DiagnosticError
}

func NewContext(source, filePath string) *PipelineContext {
	return &PipelineContext{Source: source, FilePath: filePath}
}

func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

func (ctx *PipelineContext) HasErrors() bool {
	return len(ctx.Errors) > 0
}

// Processor is one stage of the pipeline. A stage returning an error
// stops the run; recoverable problems go into ctx.Errors instead.
type Processor interface {
	Process(ctx *PipelineContext) error
	Name() string
}

type Pipeline struct {
	processors []Processor
}

func NewPipeline(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

func (p *Pipeline) Run(ctx *PipelineContext) error {
	for _, proc := range p.processors {
		if err := proc.Process(ctx); err != nil {
			return err
		}
		if ctx.HasErrors() {
			return nil
		}
	}
	return nil
}
