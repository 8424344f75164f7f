package ast

import (
	"strconv"
	"strings"

	"github.com/MatthewMacomber/EngageLang/internal/token"
)

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Lexeme }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Lexeme }
func (nl *NumberLiteral) String() string {
	return strconv.FormatFloat(nl.Value, 'g', -1, 64)
}
func (nl *NumberLiteral) GetToken() token.Token {
	if nl == nil {
		return token.Token{}
	}
	return nl.Token
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Lexeme }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }
func (sl *StringLiteral) GetToken() token.Token {
	if sl == nil {
		return token.Token{}
	}
	return sl.Token
}

type VectorLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (vl *VectorLiteral) expressionNode()      {}
func (vl *VectorLiteral) TokenLiteral() string { return vl.Token.Lexeme }
func (vl *VectorLiteral) String() string {
	parts := make([]string, len(vl.Elements))
	for i, e := range vl.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (vl *VectorLiteral) GetToken() token.Token {
	if vl == nil {
		return token.Token{}
	}
	return vl.Token
}

type TablePair struct {
	Key   string
	Value Expression
}

type TableLiteral struct {
	Token token.Token
	Pairs []TablePair
}

func (tl *TableLiteral) expressionNode()      {}
func (tl *TableLiteral) TokenLiteral() string { return tl.Token.Lexeme }
func (tl *TableLiteral) String() string {
	parts := make([]string, len(tl.Pairs))
	for i, p := range tl.Pairs {
		parts[i] = p.Key + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (tl *TableLiteral) GetToken() token.Token {
	if tl == nil {
		return token.Token{}
	}
	return tl.Token
}

// PrefixExpression covers `not X`, `minus X`, and the Result
// accessors `the ok value of X` / `the error message of X`.
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + " " + pe.Right.String() + ")"
}
func (pe *PrefixExpression) GetToken() token.Token {
	if pe == nil {
		return token.Token{}
	}
	return pe.Token
}

type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Lexeme }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}
func (ie *InfixExpression) GetToken() token.Token {
	if ie == nil {
		return token.Token{}
	}
	return ie.Token
}

// PostfixExpression covers `X or return error`.
type PostfixExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
}

func (pe *PostfixExpression) expressionNode()      {}
func (pe *PostfixExpression) TokenLiteral() string { return pe.Token.Lexeme }
func (pe *PostfixExpression) String() string {
	return "(" + pe.Left.String() + " " + pe.Operator + ")"
}
func (pe *PostfixExpression) GetToken() token.Token {
	if pe == nil {
		return token.Token{}
	}
	return pe.Token
}

// CallExpression covers both `name with a, b` calls and bare-name
// invocations the parser decided are calls.
type CallExpression struct {
	Token     token.Token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Lexeme }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	if len(args) == 0 {
		return ce.Function.String()
	}
	return ce.Function.String() + " with " + strings.Join(args, ", ")
}
func (ce *CallExpression) GetToken() token.Token {
	if ce == nil {
		return token.Token{}
	}
	return ce.Token
}

// MemberExpression is `object.field`. Evaluation auto-invokes a
// nullary method when the field names one.
type MemberExpression struct {
	Token  token.Token
	Object Expression
	Field  *Identifier
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Lexeme }
func (me *MemberExpression) String() string {
	return me.Object.String() + "." + me.Field.String()
}
func (me *MemberExpression) GetToken() token.Token {
	if me == nil {
		return token.Token{}
	}
	return me.Token
}

type FieldInit struct {
	Name  string
	Value Expression
}

// NewExpression constructs a record instance:
// `new NAME with x: 1, y: 2`
type NewExpression struct {
	Token    token.Token
	TypeName *Identifier
	Fields   []FieldInit
}

func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Lexeme }
func (ne *NewExpression) String() string {
	out := "new " + ne.TypeName.String()
	if len(ne.Fields) > 0 {
		parts := make([]string, len(ne.Fields))
		for i, f := range ne.Fields {
			parts[i] = f.Name + ": " + f.Value.String()
		}
		out += " with " + strings.Join(parts, ", ")
	}
	return out
}
func (ne *NewExpression) GetToken() token.Token {
	if ne == nil {
		return token.Token{}
	}
	return ne.Token
}

// ReceiveExpression blocks until a value arrives:
// `receive from NAME`
type ReceiveExpression struct {
	Token   token.Token
	Channel Expression
}

func (re *ReceiveExpression) expressionNode()      {}
func (re *ReceiveExpression) TokenLiteral() string { return re.Token.Lexeme }
func (re *ReceiveExpression) String() string {
	return "receive from " + re.Channel.String()
}
func (re *ReceiveExpression) GetToken() token.Token {
	if re == nil {
		return token.Token{}
	}
	return re.Token
}

// ResultLiteral constructs an Ok or Error value. Value is nil for the
// bare forms `Ok` and `Error`.
type ResultLiteral struct {
	Token token.Token
	Kind  string // "Ok" or "Error"
	Value Expression
}

func (rl *ResultLiteral) expressionNode()      {}
func (rl *ResultLiteral) TokenLiteral() string { return rl.Token.Lexeme }
func (rl *ResultLiteral) String() string {
	if rl.Value == nil {
		return rl.Kind
	}
	return rl.Kind + " with " + rl.Value.String()
}
func (rl *ResultLiteral) GetToken() token.Token {
	if rl == nil {
		return token.Token{}
	}
	return rl.Token
}
