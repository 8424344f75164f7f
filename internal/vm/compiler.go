package vm

import (
	"fmt"

	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
	"github.com/MatthewMacomber/EngageLang/internal/token"
)

// Compiler lowers an AST into one chunk per code unit. Forward jumps
// are emitted with a placeholder operand and patched once the target
// offset is known.
type Compiler struct {
	chunk *Chunk
	err   error
}

func Compile(program *ast.Program) (*Chunk, error) {
	c := &Compiler{chunk: NewChunk("main")}
	for _, stmt := range program.Statements {
		c.compileStatement(stmt)
		if c.err != nil {
			return nil, c.err
		}
	}
	c.chunk.Emit(OP_HALT, 0, 0)
	return c.chunk, nil
}

func (c *Compiler) fail(format string, args ...interface{}) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

func (c *Compiler) emit(op Opcode, tok token.Token, operands ...int) int {
	return c.chunk.Emit(op, tok.Line, tok.Column, operands...)
}

// emitJump writes a jump with a placeholder target and returns the
// offset of the operand to patch.
func (c *Compiler) emitJump(op Opcode, tok token.Token) int {
	offset := c.emit(op, tok, 0)
	return offset + 1
}

func (c *Compiler) patchJump(operandOffset int) {
	c.chunk.PatchOperand(operandOffset, len(c.chunk.Code))
}

func (c *Compiler) compileStatement(stmt ast.Statement) {
	if c.err != nil {
		return
	}
	switch stmt := stmt.(type) {
	case *ast.BlockStatement:
		for _, s := range stmt.Statements {
			c.compileStatement(s)
		}
	case *ast.LetStatement:
		c.compileExpression(stmt.Value)
		c.emit(OP_DEFINE_VAR, stmt.Token, c.chunk.AddName(stmt.Name.Value))
	case *ast.SetStatement:
		c.compileSetStatement(stmt)
	case *ast.FunctionStatement:
		proto := c.compileFunctionProto(stmt.Name.Value, stmt.Parameters, stmt.Body)
		c.emit(OP_MAKE_FUNCTION, stmt.Token, c.chunk.AddConstant(proto))
		c.emit(OP_DEFINE_VAR, stmt.Token, c.chunk.AddName(stmt.Name.Value))
	case *ast.ReturnStatement:
		if stmt.Value != nil {
			c.compileExpression(stmt.Value)
			c.emit(OP_RETURN, stmt.Token)
		} else {
			c.emit(OP_RETURN_NONE, stmt.Token)
		}
	case *ast.IfStatement:
		c.compileIfStatement(stmt)
	case *ast.WhileStatement:
		c.compileWhileStatement(stmt)
	case *ast.RecordStatement:
		c.compileRecordStatement(stmt)
	case *ast.ChannelStatement:
		c.emit(OP_MAKE_CHANNEL, stmt.Token, c.chunk.AddName(stmt.Name.Value))
		c.emit(OP_DEFINE_VAR, stmt.Token, c.chunk.AddName(stmt.Name.Value))
	case *ast.SendStatement:
		c.compileExpression(stmt.Value)
		c.compileExpression(stmt.Channel)
		c.emit(OP_CHAN_SEND, stmt.Token)
	case *ast.TaskStatement:
		proto := c.compileFunctionProto("task", nil, stmt.Body)
		c.emit(OP_SPAWN_TASK, stmt.Token, c.chunk.AddConstant(proto))
	case *ast.ExpressionStatement:
		c.compileExpression(stmt.Expression)
		if _, isBare := stmt.Expression.(*ast.Identifier); isBare {
			c.emit(OP_INVOKE_BARE, stmt.Token)
		}
		c.emit(OP_POP, stmt.Token)
	default:
		c.fail("cannot compile statement %T", stmt)
	}
}

func (c *Compiler) compileSetStatement(stmt *ast.SetStatement) {
	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		c.compileExpression(stmt.Value)
		c.emit(OP_SET_VAR, stmt.Token, c.chunk.AddName(target.Value))
	case *ast.MemberExpression:
		c.compileExpression(target.Object)
		c.compileExpression(stmt.Value)
		c.emit(OP_SET_FIELD, stmt.Token, c.chunk.AddName(target.Field.Value))
	default:
		c.fail("cannot compile assignment to %T", stmt.Target)
	}
}

func (c *Compiler) compileIfStatement(stmt *ast.IfStatement) {
	var endJumps []int
	for _, arm := range stmt.Cases {
		c.compileExpression(arm.Condition)
		skip := c.emitJump(OP_JUMP_IF_FALSE, arm.Token)
		c.compileStatement(arm.Body)
		endJumps = append(endJumps, c.emitJump(OP_JUMP, arm.Token))
		c.patchJump(skip)
	}
	if stmt.Otherwise != nil {
		c.compileStatement(stmt.Otherwise)
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
}

func (c *Compiler) compileWhileStatement(stmt *ast.WhileStatement) {
	condStart := len(c.chunk.Code)
	c.compileExpression(stmt.Condition)
	exit := c.emitJump(OP_JUMP_IF_FALSE, stmt.Token)
	c.compileStatement(stmt.Body)
	c.emit(OP_JUMP, stmt.Token, condStart)
	c.patchJump(exit)
}

func (c *Compiler) compileRecordStatement(stmt *ast.RecordStatement) {
	for _, field := range stmt.Fields {
		c.emit(OP_CONST, field.Token, c.chunk.AddName(field.Name.Value))
		c.compileExpression(field.Value)
	}
	for _, method := range stmt.Methods {
		proto := c.compileFunctionProto(stmt.Name.Value+"."+method.Name.Value, method.Parameters, method.Body)
		c.emit(OP_CONST, method.Token, c.chunk.AddName(method.Name.Value))
		c.emit(OP_MAKE_FUNCTION, method.Token, c.chunk.AddConstant(proto))
	}
	c.emit(OP_MAKE_RECORD, stmt.Token,
		c.chunk.AddName(stmt.Name.Value), len(stmt.Fields), len(stmt.Methods))
	c.emit(OP_DEFINE_VAR, stmt.Token, c.chunk.AddName(stmt.Name.Value))
}

// compileFunctionProto compiles a function or task body into its own
// chunk. The environment is captured later, when OP_MAKE_FUNCTION or
// OP_SPAWN_TASK executes.
func (c *Compiler) compileFunctionProto(name string, params []*ast.Identifier, body *ast.BlockStatement) *CompiledFunction {
	sub := &Compiler{chunk: NewChunk(name)}
	sub.compileStatement(body)
	sub.chunk.Emit(OP_RETURN_NONE, 0, 0)
	if sub.err != nil {
		c.fail("%v", sub.err)
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Value
	}
	return &CompiledFunction{Name: name, Parameters: names, Chunk: sub.chunk}
}

var binaryOps = map[string]Opcode{
	"plus":                        OP_ADD,
	"minus":                       OP_SUB,
	"times":                       OP_MUL,
	"divided by":                  OP_DIV,
	"modulo":                      OP_MOD,
	"concatenated with":           OP_CONCAT,
	"is":                          OP_EQ,
	"is not":                      OP_NE,
	"is greater than":             OP_GT,
	"is less than":                OP_LT,
	"is greater than or equal to": OP_GE,
	"is less than or equal to":    OP_LE,
}

func (c *Compiler) compileExpression(expr ast.Expression) {
	if c.err != nil {
		return
	}
	switch expr := expr.(type) {
	case *ast.NumberLiteral:
		c.emit(OP_CONST, expr.Token, c.chunk.AddConstant(&evaluator.Number{Value: expr.Value}))
	case *ast.StringLiteral:
		c.emit(OP_CONST, expr.Token, c.chunk.AddConstant(&evaluator.String{Value: expr.Value}))
	case *ast.Identifier:
		c.emit(OP_GET_VAR, expr.Token, c.chunk.AddName(expr.Value))
	case *ast.VectorLiteral:
		for _, elem := range expr.Elements {
			c.compileExpression(elem)
		}
		c.emit(OP_MAKE_VECTOR, expr.Token, len(expr.Elements))
	case *ast.TableLiteral:
		for _, pair := range expr.Pairs {
			c.emit(OP_CONST, expr.Token, c.chunk.AddName(pair.Key))
			c.compileExpression(pair.Value)
		}
		c.emit(OP_MAKE_TABLE, expr.Token, len(expr.Pairs))
	case *ast.ResultLiteral:
		if expr.Value != nil {
			c.compileExpression(expr.Value)
		} else {
			c.emit(OP_NONE, expr.Token)
		}
		if expr.Kind == "Ok" {
			c.emit(OP_MAKE_RESULT_OK, expr.Token)
		} else {
			c.emit(OP_MAKE_RESULT_ERR, expr.Token)
		}
	case *ast.PrefixExpression:
		c.compilePrefixExpression(expr)
	case *ast.InfixExpression:
		c.compileInfixExpression(expr)
	case *ast.PostfixExpression:
		c.compileExpression(expr.Left)
		c.emit(OP_UNWRAP_OR_RETURN, expr.Token)
	case *ast.CallExpression:
		c.compileCallExpression(expr)
	case *ast.MemberExpression:
		c.compileExpression(expr.Object)
		c.emit(OP_GET_FIELD, expr.Token, c.chunk.AddName(expr.Field.Value))
	case *ast.NewExpression:
		c.emit(OP_GET_VAR, expr.Token, c.chunk.AddName(expr.TypeName.Value))
		for _, init := range expr.Fields {
			c.emit(OP_CONST, expr.Token, c.chunk.AddName(init.Name))
			c.compileExpression(init.Value)
		}
		c.emit(OP_NEW_RECORD, expr.Token, len(expr.Fields))
	case *ast.ReceiveExpression:
		c.compileExpression(expr.Channel)
		c.emit(OP_CHAN_RECV, expr.Token)
	default:
		c.fail("cannot compile expression %T", expr)
	}
}

func (c *Compiler) compilePrefixExpression(expr *ast.PrefixExpression) {
	c.compileExpression(expr.Right)
	switch expr.Operator {
	case "not":
		c.emit(OP_NOT, expr.Token)
	case "minus":
		c.emit(OP_NEG, expr.Token)
	case "the ok value of":
		c.emit(OP_RESULT_OK_VALUE, expr.Token)
	case "the error message of":
		c.emit(OP_RESULT_ERR_MSG, expr.Token)
	default:
		c.fail("cannot compile prefix operator %q", expr.Operator)
	}
}

func (c *Compiler) compileInfixExpression(expr *ast.InfixExpression) {
	switch expr.Operator {
	case "and":
		c.compileExpression(expr.Left)
		short := c.emitJump(OP_JUMP_IF_FALSE, expr.Token)
		c.compileExpression(expr.Right)
		c.emit(OP_TRUTHY, expr.Token)
		end := c.emitJump(OP_JUMP, expr.Token)
		c.patchJump(short)
		c.emit(OP_CONST, expr.Token, c.chunk.AddConstant(&evaluator.Number{Value: 0}))
		c.patchJump(end)
		return
	case "or":
		c.compileExpression(expr.Left)
		short := c.emitJump(OP_JUMP_IF_TRUE, expr.Token)
		c.compileExpression(expr.Right)
		c.emit(OP_TRUTHY, expr.Token)
		end := c.emitJump(OP_JUMP, expr.Token)
		c.patchJump(short)
		c.emit(OP_CONST, expr.Token, c.chunk.AddConstant(&evaluator.Number{Value: 1}))
		c.patchJump(end)
		return
	case "is an":
		c.compileExpression(expr.Left)
		name := expr.Right.(*ast.Identifier).Value
		c.emit(OP_CHECK_TAG, expr.Token, c.chunk.AddName(name))
		return
	}

	op, ok := binaryOps[expr.Operator]
	if !ok {
		c.fail("cannot compile operator %q", expr.Operator)
		return
	}
	c.compileExpression(expr.Left)
	c.compileExpression(expr.Right)
	c.emit(op, expr.Token)
}

func (c *Compiler) compileCallExpression(expr *ast.CallExpression) {
	if member, ok := expr.Function.(*ast.MemberExpression); ok {
		c.compileExpression(member.Object)
		c.emit(OP_GET_METHOD, member.Token, c.chunk.AddName(member.Field.Value))
	} else {
		c.compileExpression(expr.Function)
	}
	for _, arg := range expr.Arguments {
		c.compileExpression(arg)
	}
	c.emit(OP_CALL, expr.Token, len(expr.Arguments))
}
