package parser

import (
	"strconv"

	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/diagnostics"
	"github.com/MatthewMacomber/EngageLang/internal/token"
)

// parseExpression is the Pratt core. It leaves curToken on the last
// token of the parsed expression.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	if !p.enterExpression(p.curToken) {
		return nil
	}
	defer p.leaveExpression()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf(diagnostics.ErrP001, p.curToken,
			"unexpected %q in expression", tokenText(p.curToken))
		return nil
	}
	left := prefix()

	for p.err == nil && minPrec < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseSelf() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: "self"}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.errorf(diagnostics.ErrP001, p.curToken, "invalid number %q", p.curToken.Literal)
		return nil
	}
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseVectorLiteral() ast.Expression {
	lit := &ast.VectorLiteral{Token: p.curToken}
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return lit
	}
	for {
		p.nextToken()
		elem := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		lit.Elements = append(lit.Elements, elem)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return lit
}

func (p *Parser) parseTableLiteral() ast.Expression {
	lit := &ast.TableLiteral{Token: p.curToken}
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return lit
	}
	for {
		if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.STRING) {
			p.errorf(diagnostics.ErrP001, p.peekToken,
				"expected a table key, found %q", tokenText(p.peekToken))
			return nil
		}
		p.nextToken()
		key := p.curToken.Literal
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if p.err != nil {
			return nil
		}
		lit.Pairs = append(lit.Pairs, ast.TablePair{Key: key, Value: value})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return lit
}

// parseResultLiteral handles `Ok`, `Error`, `Ok with EXPR` and
// `Error with EXPR`.
func (p *Parser) parseResultLiteral() ast.Expression {
	lit := &ast.ResultLiteral{Token: p.curToken, Kind: p.curToken.Lexeme}
	if p.peekTokenIs(token.WITH) {
		p.nextToken()
		p.nextToken()
		lit.Value = p.parseExpression(ORRETURN)
	}
	return lit
}

func (p *Parser) parseNewExpression() ast.Expression {
	expr := &ast.NewExpression{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr.TypeName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.peekTokenIs(token.WITH) {
		return expr
	}
	p.nextToken()
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		name := p.curToken.Literal
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(ORRETURN)
		if p.err != nil {
			return nil
		}
		expr.Fields = append(expr.Fields, ast.FieldInit{Name: name, Value: value})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return expr
}

func (p *Parser) parseReceiveExpression() ast.Expression {
	expr := &ast.ReceiveExpression{Token: p.curToken}
	if !p.expectPeek(token.FROM) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr.Channel = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Lexeme,
	}
	prec := precedences[p.curToken.Type]
	p.nextToken()
	expr.Right = p.parseExpression(prec)
	return expr
}

// parseTypeCheckExpression handles `X is an TYPE`. The type side is a
// bare name; Ok and Error lex as keywords so they are accepted too.
func (p *Parser) parseTypeCheckExpression(left ast.Expression) ast.Expression {
	expr := &ast.InfixExpression{Token: p.curToken, Left: left, Operator: "is an"}
	if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.OK) && !p.peekTokenIs(token.ERROR) {
		p.errorf(diagnostics.ErrP001, p.peekToken,
			"expected a type name after 'is an', found %q", tokenText(p.peekToken))
		return nil
	}
	p.nextToken()
	expr.Right = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return expr
}

func (p *Parser) parsePostfixExpression(left ast.Expression) ast.Expression {
	return &ast.PostfixExpression{Token: p.curToken, Operator: p.curToken.Lexeme, Left: left}
}

// parseCallExpression handles the `callee with a, b` form. The callee
// must be a name or a member access.
func (p *Parser) parseCallExpression(left ast.Expression) ast.Expression {
	switch left.(type) {
	case *ast.Identifier, *ast.MemberExpression:
	default:
		p.errorf(diagnostics.ErrP001, p.curToken, "cannot call %q", left.String())
		return nil
	}
	expr := &ast.CallExpression{Token: p.curToken, Function: left}
	for {
		p.nextToken()
		arg := p.parseExpression(ORRETURN)
		if p.err != nil {
			return nil
		}
		expr.Arguments = append(expr.Arguments, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return expr
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	expr := &ast.MemberExpression{Token: p.curToken, Object: left}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expr.Field = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return expr
}

// parseParenCallExpression handles the explicit `name()` call form,
// the only way to invoke a zero-parameter function in value position.
func (p *Parser) parseParenCallExpression(left ast.Expression) ast.Expression {
	switch left.(type) {
	case *ast.Identifier, *ast.MemberExpression:
	default:
		p.errorf(diagnostics.ErrP001, p.curToken, "cannot call %q", left.String())
		return nil
	}
	expr := &ast.CallExpression{Token: p.curToken, Function: left}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return expr
	}
	for {
		p.nextToken()
		arg := p.parseExpression(ORRETURN)
		if p.err != nil {
			return nil
		}
		expr.Arguments = append(expr.Arguments, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}
