package ast

import (
	"strings"

	"github.com/MatthewMacomber/EngageLang/internal/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// TokenProvider lets error reporting recover a source position from
// any node without a type switch per node kind.
type TokenProvider interface {
	GetToken() token.Token
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out strings.Builder
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

func (p *Program) GetToken() token.Token {
	if p == nil || len(p.Statements) == 0 {
		return token.Token{}
	}
	if tp, ok := p.Statements[0].(TokenProvider); ok {
		return tp.GetToken()
	}
	return token.Token{}
}

// BlockStatement is the body of a function, branch, loop or task,
// terminated in source by "end" (or "otherwise" for branches).
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) String() string {
	var out strings.Builder
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	return strings.TrimSpace(out.String())
}
func (bs *BlockStatement) GetToken() token.Token {
	if bs == nil {
		return token.Token{}
	}
	return bs.Token
}
