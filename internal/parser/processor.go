package parser

import (
	"github.com/MatthewMacomber/EngageLang/internal/pipeline"
)

// ParserProcessor is the parsing stage. The parse is fail-fast, so at
// most one diagnostic is recorded and no partial AST is kept.
type ParserProcessor struct{}

func NewParserProcessor() *ParserProcessor {
	return &ParserProcessor{}
}

func (p *ParserProcessor) Name() string {
	return "parser"
}

func (p *ParserProcessor) Process(ctx *pipeline.PipelineContext) error {
	parser := New(ctx.Tokens)
	program := parser.ParseProgram()
	if err := parser.Err(); err != nil {
		ctx.AddError(err)
		return nil
	}
	ctx.AstRoot = program
	return nil
}
