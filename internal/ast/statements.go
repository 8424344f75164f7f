package ast

import (
	"strings"

	"github.com/MatthewMacomber/EngageLang/internal/token"
)

// LetStatement introduces or rebinds a name: `let x be EXPR.`
type LetStatement struct {
	Token token.Token
	Name  *Identifier
	Value Expression
}

func (ls *LetStatement) statementNode()       {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Lexeme }
func (ls *LetStatement) String() string {
	return "let " + ls.Name.String() + " be " + ls.Value.String() + "."
}
func (ls *LetStatement) GetToken() token.Token {
	if ls == nil {
		return token.Token{}
	}
	return ls.Token
}

// SetStatement assigns to an existing binding or record field:
// `set x to EXPR.` / `set self.x to EXPR.`
type SetStatement struct {
	Token  token.Token
	Target Expression // *Identifier or *MemberExpression
	Value  Expression
}

func (ss *SetStatement) statementNode()       {}
func (ss *SetStatement) TokenLiteral() string { return ss.Token.Lexeme }
func (ss *SetStatement) String() string {
	return "set " + ss.Target.String() + " to " + ss.Value.String() + "."
}
func (ss *SetStatement) GetToken() token.Token {
	if ss == nil {
		return token.Token{}
	}
	return ss.Token
}

// FunctionStatement declares a named function:
// `to NAME with a, b: BODY end`
type FunctionStatement struct {
	Token      token.Token
	Name       *Identifier
	Parameters []*Identifier
	Body       *BlockStatement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Token.Lexeme }
func (fs *FunctionStatement) String() string {
	params := make([]string, len(fs.Parameters))
	for i, p := range fs.Parameters {
		params[i] = p.String()
	}
	out := "to " + fs.Name.String()
	if len(params) > 0 {
		out += " with " + strings.Join(params, ", ")
	}
	return out + ": " + fs.Body.String() + " end"
}
func (fs *FunctionStatement) GetToken() token.Token {
	if fs == nil {
		return token.Token{}
	}
	return fs.Token
}

type ReturnStatement struct {
	Token token.Token
	Value Expression // nil for a bare `return.`
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return."
	}
	return "return " + rs.Value.String() + "."
}
func (rs *ReturnStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// ConditionalCase is one `if COND then BODY` arm. The first arm owns
// the `if` token, later arms the `otherwise if` one.
type ConditionalCase struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

type IfStatement struct {
	Token     token.Token
	Cases     []*ConditionalCase
	Otherwise *BlockStatement // nil when absent
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) String() string {
	var out strings.Builder
	for i, c := range is.Cases {
		if i == 0 {
			out.WriteString("if ")
		} else {
			out.WriteString(" otherwise if ")
		}
		out.WriteString(c.Condition.String())
		out.WriteString(" then ")
		out.WriteString(c.Body.String())
	}
	if is.Otherwise != nil {
		out.WriteString(" otherwise ")
		out.WriteString(is.Otherwise.String())
	}
	out.WriteString(" end")
	return out.String()
}
func (is *IfStatement) GetToken() token.Token {
	if is == nil {
		return token.Token{}
	}
	return is.Token
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + ": " + ws.Body.String() + " end"
}
func (ws *WhileStatement) GetToken() token.Token {
	if ws == nil {
		return token.Token{}
	}
	return ws.Token
}

// RecordStatement declares a record type with field defaults and
// methods:
//
//	define a record named NAME:
//	    let x be 0.
//	    to method: ... end
//	end
type RecordStatement struct {
	Token   token.Token
	Name    *Identifier
	Fields  []*LetStatement
	Methods []*FunctionStatement
}

func (rs *RecordStatement) statementNode()       {}
func (rs *RecordStatement) TokenLiteral() string { return rs.Token.Lexeme }
func (rs *RecordStatement) String() string {
	var out strings.Builder
	out.WriteString("define a record named ")
	out.WriteString(rs.Name.String())
	out.WriteString(":")
	for _, f := range rs.Fields {
		out.WriteString(" ")
		out.WriteString(f.String())
	}
	for _, m := range rs.Methods {
		out.WriteString(" ")
		out.WriteString(m.String())
	}
	out.WriteString(" end")
	return out.String()
}
func (rs *RecordStatement) GetToken() token.Token {
	if rs == nil {
		return token.Token{}
	}
	return rs.Token
}

// ChannelStatement declares a rendezvous channel:
// `create a channel named NAME.`
type ChannelStatement struct {
	Token token.Token
	Name  *Identifier
}

func (cs *ChannelStatement) statementNode()       {}
func (cs *ChannelStatement) TokenLiteral() string { return cs.Token.Lexeme }
func (cs *ChannelStatement) String() string {
	return "create a channel named " + cs.Name.String() + "."
}
func (cs *ChannelStatement) GetToken() token.Token {
	if cs == nil {
		return token.Token{}
	}
	return cs.Token
}

// SendStatement: `send EXPR through NAME.`
type SendStatement struct {
	Token   token.Token
	Value   Expression
	Channel Expression
}

func (ss *SendStatement) statementNode()       {}
func (ss *SendStatement) TokenLiteral() string { return ss.Token.Lexeme }
func (ss *SendStatement) String() string {
	return "send " + ss.Value.String() + " through " + ss.Channel.String() + "."
}
func (ss *SendStatement) GetToken() token.Token {
	if ss == nil {
		return token.Token{}
	}
	return ss.Token
}

// TaskStatement runs its body on a detached task:
// `run concurrently: BODY end`
type TaskStatement struct {
	Token token.Token
	Body  *BlockStatement
}

func (ts *TaskStatement) statementNode()       {}
func (ts *TaskStatement) TokenLiteral() string { return ts.Token.Lexeme }
func (ts *TaskStatement) String() string {
	return "run concurrently: " + ts.Body.String() + " end"
}
func (ts *TaskStatement) GetToken() token.Token {
	if ts == nil {
		return token.Token{}
	}
	return ts.Token
}

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String() + "."
}
func (es *ExpressionStatement) GetToken() token.Token {
	if es == nil {
		return token.Token{}
	}
	return es.Token
}
