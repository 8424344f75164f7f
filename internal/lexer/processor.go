package lexer

import (
	"github.com/MatthewMacomber/EngageLang/internal/diagnostics"
	"github.com/MatthewMacomber/EngageLang/internal/pipeline"
	"github.com/MatthewMacomber/EngageLang/internal/token"
)

// LexerProcessor is the tokenizing stage. Illegal tokens become
// diagnostics but lexing continues to the end of the input.
type LexerProcessor struct{}

func NewLexerProcessor() *LexerProcessor {
	return &LexerProcessor{}
}

func (p *LexerProcessor) Name() string {
	return "lexer"
}

func (p *LexerProcessor) Process(ctx *pipeline.PipelineContext) error {
	tokens := New(ctx.Source).Tokenize()

	var clean []token.Token
	for _, tok := range tokens {
		if tok.Type == token.ILLEGAL {
			code := diagnostics.ErrL001
			if tok.Literal == "unterminated string literal" {
				code = diagnostics.ErrL002
			}
			ctx.AddError(diagnostics.NewError(code, tok, tok.Literal))
			continue
		}
		clean = append(clean, tok)
	}
	ctx.Tokens = clean
	return nil
}
