package parser

import (
	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/config"
	"github.com/MatthewMacomber/EngageLang/internal/diagnostics"
	"github.com/MatthewMacomber/EngageLang/internal/token"
)

// Operator precedence levels, lowest binds loosest. Call arguments are
// parsed at ORRETURN so a trailing "or return error" attaches to the
// call itself, not to its last argument.
const (
	LOWEST   = iota
	ORRETURN // or return error
	LOGICOR  // or
	LOGICAND // and
	EQUALS   // is, is not, is an
	COMPARE  // is greater than, is less than, ...
	SUM      // plus, minus, concatenated with
	PRODUCT  // times, divided by, modulo
	PREFIX   // not X, minus X, the ok value of X
	CALL     // name with args, obj.field, name(...)
)

var precedences = map[token.TokenType]int{
	token.OR_RETURN:    ORRETURN,
	token.OR:           LOGICOR,
	token.AND:          LOGICAND,
	token.IS:           EQUALS,
	token.IS_NOT:       EQUALS,
	token.IS_AN:        EQUALS,
	token.GREATER_THAN: COMPARE,
	token.LESS_THAN:    COMPARE,
	token.GREATER_EQ:   COMPARE,
	token.LESS_EQ:      COMPARE,
	token.PLUS:         SUM,
	token.MINUS:        SUM,
	token.CONCAT:       SUM,
	token.TIMES:        PRODUCT,
	token.DIVIDED_BY:   PRODUCT,
	token.MODULO:       PRODUCT,
	token.WITH:         CALL,
	token.DOT:          CALL,
	token.LPAREN:       CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser is a fail-fast recursive-descent parser with Pratt-style
// expression parsing. The first syntax error aborts the parse; no
// partial AST is returned.
type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	err   *diagnostics.DiagnosticError
	depth int
}

func New(tokens []token.Token) *Parser {
	p := &Parser{tokens: tokens}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:       p.parseIdentifier,
		token.SELF:        p.parseSelf,
		token.NUMBER:      p.parseNumberLiteral,
		token.STRING:      p.parseStringLiteral,
		token.MINUS:       p.parsePrefixExpression,
		token.NOT:         p.parsePrefixExpression,
		token.OK_VALUE_OF: p.parsePrefixExpression,
		token.ERR_MSG_OF:  p.parsePrefixExpression,
		token.LPAREN:      p.parseGroupedExpression,
		token.LBRACKET:    p.parseVectorLiteral,
		token.LBRACE:      p.parseTableLiteral,
		token.OK:          p.parseResultLiteral,
		token.ERROR:       p.parseResultLiteral,
		token.NEW:         p.parseNewExpression,
		token.RECEIVE:     p.parseReceiveExpression,
	}

	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.OR:           p.parseInfixExpression,
		token.AND:          p.parseInfixExpression,
		token.IS:           p.parseInfixExpression,
		token.IS_NOT:       p.parseInfixExpression,
		token.IS_AN:        p.parseTypeCheckExpression,
		token.GREATER_THAN: p.parseInfixExpression,
		token.LESS_THAN:    p.parseInfixExpression,
		token.GREATER_EQ:   p.parseInfixExpression,
		token.LESS_EQ:      p.parseInfixExpression,
		token.PLUS:         p.parseInfixExpression,
		token.MINUS:        p.parseInfixExpression,
		token.CONCAT:       p.parseInfixExpression,
		token.TIMES:        p.parseInfixExpression,
		token.DIVIDED_BY:   p.parseInfixExpression,
		token.MODULO:       p.parseInfixExpression,
		token.OR_RETURN:    p.parsePostfixExpression,
		token.WITH:         p.parseCallExpression,
		token.DOT:          p.parseMemberExpression,
		token.LPAREN:       p.parseParenCallExpression,
	}

	// Prime curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

// ParseProgram parses the whole token stream. On failure it returns
// nil and Err() holds the diagnostic.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for p.curToken.Type != token.EOF && p.err == nil {
		stmt := p.parseStatement()
		if p.err != nil {
			return nil
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program
}

func (p *Parser) Err() *diagnostics.DiagnosticError {
	return p.err
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	} else {
		p.peekToken = token.Token{Type: token.EOF, Line: p.curToken.Line, Column: p.curToken.Column}
	}
}

func (p *Parser) curTokenIs(tt token.TokenType) bool  { return p.curToken.Type == tt }
func (p *Parser) peekTokenIs(tt token.TokenType) bool { return p.peekToken.Type == tt }

// expectPeek advances when the next token matches, otherwise records a
// syntax error and leaves the parser failed.
func (p *Parser) expectPeek(tt token.TokenType) bool {
	if p.peekTokenIs(tt) {
		p.nextToken()
		return true
	}
	p.errorf(diagnostics.ErrP001, p.peekToken, "expected %s, found %q", describe(tt), tokenText(p.peekToken))
	return false
}

func (p *Parser) errorf(code string, tok token.Token, format string, args ...interface{}) {
	if p.err == nil {
		p.err = diagnostics.NewErrorf(code, tok, format, args...)
	}
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) enterExpression(tok token.Token) bool {
	p.depth++
	if p.depth > config.MaxExpressionDepth {
		p.errorf(diagnostics.ErrP005, tok, "expression nesting too deep")
		return false
	}
	return true
}

func (p *Parser) leaveExpression() {
	p.depth--
}

func tokenText(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return tok.Lexeme
}

// describe maps a token type to the word used in error messages.
func describe(tt token.TokenType) string {
	switch tt {
	case token.PERIOD:
		return "'.'"
	case token.COLON:
		return "':'"
	case token.IDENT:
		return "a name"
	case token.END:
		return "'end'"
	case token.THEN:
		return "'then'"
	case token.BE:
		return "'be'"
	case token.TO:
		return "'to'"
	case token.THROUGH:
		return "'through'"
	case token.NAMED:
		return "'named'"
	case token.CHANNEL:
		return "'channel'"
	case token.CONCURRENTLY:
		return "'concurrently'"
	case token.FROM:
		return "'from'"
	case token.RECORD:
		return "'record'"
	case token.RPAREN:
		return "')'"
	case token.RBRACKET:
		return "']'"
	case token.RBRACE:
		return "'}'"
	default:
		return "'" + string(tt) + "'"
	}
}
