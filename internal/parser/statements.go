package parser

import (
	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/diagnostics"
	"github.com/MatthewMacomber/EngageLang/internal/token"
)

// parseStatement consumes one full statement including its terminator,
// leaving curToken on the first token of the next statement.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.SET:
		return p.parseSetStatement()
	case token.TO:
		return p.parseFunctionStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.DEFINE:
		return p.parseRecordStatement()
	case token.CREATE:
		return p.parseChannelStatement()
	case token.SEND:
		return p.parseSendStatement()
	case token.RUN:
		return p.parseTaskStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// endStatement expects the closing period and steps past it.
func (p *Parser) endStatement() {
	if p.peekTokenIs(token.PERIOD) {
		p.nextToken()
		p.nextToken()
		return
	}
	p.errorf(diagnostics.ErrP002, p.peekToken,
		"expected '.' to end the statement, found %q", tokenText(p.peekToken))
}

func (p *Parser) parseLetStatement() *ast.LetStatement {
	stmt := &ast.LetStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(token.BE) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.endStatement()
	return stmt
}

func (p *Parser) parseSetStatement() *ast.SetStatement {
	stmt := &ast.SetStatement{Token: p.curToken}
	stmt.Target = p.parseAssignTarget()
	if stmt.Target == nil {
		return nil
	}
	if !p.expectPeek(token.TO) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.endStatement()
	return stmt
}

// parseAssignTarget accepts a name or a member chain rooted at a name
// or self, e.g. `x`, `self.x`, `point.origin.x`.
func (p *Parser) parseAssignTarget() ast.Expression {
	if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.SELF) {
		p.errorf(diagnostics.ErrP001, p.peekToken,
			"expected a name after 'set', found %q", tokenText(p.peekToken))
		return nil
	}
	p.nextToken()
	value := p.curToken.Literal
	if p.curTokenIs(token.SELF) {
		value = "self"
	}
	var target ast.Expression = &ast.Identifier{Token: p.curToken, Value: value}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		dot := p.curToken
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		target = &ast.MemberExpression{
			Token:  dot,
			Object: target,
			Field:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
		}
	}
	return target
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.WITH) {
		p.nextToken()
		for {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			stmt.Parameters = append(stmt.Parameters,
				&ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseBlockUntil(token.END)
	if p.err != nil {
		return nil
	}
	p.nextToken()
	return stmt
}

// parseBlockUntil parses statements up to one of the stop tokens,
// leaving curToken on the stop token itself.
func (p *Parser) parseBlockUntil(stops ...token.TokenType) *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	for {
		if p.curTokenIs(token.EOF) {
			p.errorf(diagnostics.ErrP003, p.curToken, "missing 'end' before end of input")
			return nil
		}
		for _, stop := range stops {
			if p.curTokenIs(stop) {
				return block
			}
		}
		stmt := p.parseStatement()
		if p.err != nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
	}
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}

	parseCase := func(tok token.Token) *ast.ConditionalCase {
		c := &ast.ConditionalCase{Token: tok}
		p.nextToken()
		c.Condition = p.parseExpression(LOWEST)
		if !p.expectPeek(token.THEN) {
			return nil
		}
		p.nextToken()
		c.Body = p.parseBlockUntil(token.OTHERWISE, token.END)
		if p.err != nil {
			return nil
		}
		return c
	}

	first := parseCase(p.curToken)
	if first == nil {
		return nil
	}
	stmt.Cases = append(stmt.Cases, first)

	for p.curTokenIs(token.OTHERWISE) {
		if p.peekTokenIs(token.IF) {
			p.nextToken()
			c := parseCase(p.curToken)
			if c == nil {
				return nil
			}
			stmt.Cases = append(stmt.Cases, c)
			continue
		}
		p.nextToken()
		stmt.Otherwise = p.parseBlockUntil(token.END)
		if p.err != nil {
			return nil
		}
		break
	}

	// curToken is END here.
	p.nextToken()
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseBlockUntil(token.END)
	if p.err != nil {
		return nil
	}
	p.nextToken()
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.PERIOD) {
		p.nextToken()
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	p.endStatement()
	return stmt
}

func (p *Parser) parseRecordStatement() *ast.RecordStatement {
	stmt := &ast.RecordStatement{Token: p.curToken}
	p.skipArticle()
	if !p.expectPeek(token.RECORD) {
		return nil
	}
	if !p.expectPeek(token.NAMED) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()

	for !p.curTokenIs(token.END) {
		switch p.curToken.Type {
		case token.LET:
			field := p.parseLetStatement()
			if field == nil {
				return nil
			}
			stmt.Fields = append(stmt.Fields, field)
		case token.TO:
			method := p.parseFunctionStatement()
			if method == nil {
				return nil
			}
			stmt.Methods = append(stmt.Methods, method)
		case token.EOF:
			p.errorf(diagnostics.ErrP003, p.curToken, "missing 'end' to close record %q", stmt.Name.Value)
			return nil
		default:
			p.errorf(diagnostics.ErrP004, p.curToken,
				"a record body may only contain 'let' fields and 'to' methods, found %q", tokenText(p.curToken))
			return nil
		}
	}
	p.nextToken()
	return stmt
}

func (p *Parser) parseChannelStatement() *ast.ChannelStatement {
	stmt := &ast.ChannelStatement{Token: p.curToken}
	p.skipArticle()
	if !p.expectPeek(token.CHANNEL) {
		return nil
	}
	if !p.expectPeek(token.NAMED) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.endStatement()
	return stmt
}

func (p *Parser) parseSendStatement() *ast.SendStatement {
	stmt := &ast.SendStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if !p.expectPeek(token.THROUGH) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Channel = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.endStatement()
	return stmt
}

func (p *Parser) parseTaskStatement() *ast.TaskStatement {
	stmt := &ast.TaskStatement{Token: p.curToken}
	if !p.expectPeek(token.CONCURRENTLY) {
		return nil
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseBlockUntil(token.END)
	if p.err != nil {
		return nil
	}
	p.nextToken()
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	p.endStatement()
	return stmt
}

// skipArticle steps over the "a"/"an" filler word in declaration
// phrases like `define a record named ...`.
func (p *Parser) skipArticle() {
	if p.peekTokenIs(token.IDENT) && (p.peekToken.Literal == "a" || p.peekToken.Literal == "an") {
		p.nextToken()
	}
}
