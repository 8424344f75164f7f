package evaluator

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/runtime"
)

// Evaluator executes an AST directly. One Evaluator serves one task;
// spawned tasks run on forks sharing the output writer, the scheduler
// and the global environment chain.
type Evaluator struct {
	Out       io.Writer
	ErrOut    io.Writer
	In        *bufio.Reader
	Scheduler *runtime.Scheduler

	outMu     *sync.Mutex
	callStack []StackEntry
	callDepth int
}

func New(out io.Writer) *Evaluator {
	return NewWithIO(out, os.Stderr, os.Stdin)
}

func NewWithIO(out, errOut io.Writer, in io.Reader) *Evaluator {
	e := &Evaluator{
		Out:       out,
		ErrOut:    errOut,
		In:        bufio.NewReader(in),
		Scheduler: runtime.NewScheduler(),
		outMu:     &sync.Mutex{},
	}
	e.Scheduler.OnTaskError = func(t *runtime.Task, err error) {
		e.outMu.Lock()
		fmt.Fprintf(e.ErrOut, "task %s failed: %v\n", t.ID(), err)
		e.outMu.Unlock()
	}
	return e
}

// Fork produces an evaluator for a spawned task: shared I/O and
// scheduler, fresh call stack.
func (e *Evaluator) Fork() *Evaluator {
	return &Evaluator{
		Out:       e.Out,
		ErrOut:    e.ErrOut,
		In:        e.In,
		Scheduler: e.Scheduler,
		outMu:     e.outMu,
	}
}

func (e *Evaluator) printLine(text string) {
	e.outMu.Lock()
	fmt.Fprintln(e.Out, text)
	e.outMu.Unlock()
}

func (e *Evaluator) print(text string) {
	e.outMu.Lock()
	fmt.Fprint(e.Out, text)
	e.outMu.Unlock()
}

// Eval dispatches to evalCore and stamps the node's source position
// onto any fresh error that lacks one.
func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	result := e.evalCore(node, env)
	if errObj, ok := result.(*Error); ok && errObj.Line == 0 {
		if tp, ok := node.(ast.TokenProvider); ok {
			tok := tp.GetToken()
			errObj.Line, errObj.Column = tok.Line, tok.Column
		}
	}
	return result
}

func (e *Evaluator) evalCore(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case *ast.Program:
		return e.evalProgram(node, env)
	case *ast.BlockStatement:
		return e.evalBlock(node, env)

	case *ast.LetStatement:
		return e.evalLetStatement(node, env)
	case *ast.SetStatement:
		return e.evalSetStatement(node, env)
	case *ast.FunctionStatement:
		return e.evalFunctionStatement(node, env)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(node, env)
	case *ast.IfStatement:
		return e.evalIfStatement(node, env)
	case *ast.WhileStatement:
		return e.evalWhileStatement(node, env)
	case *ast.RecordStatement:
		return e.evalRecordStatement(node, env)
	case *ast.ChannelStatement:
		return e.evalChannelStatement(node, env)
	case *ast.SendStatement:
		return e.evalSendStatement(node, env)
	case *ast.TaskStatement:
		return e.evalTaskStatement(node, env)
	case *ast.ExpressionStatement:
		return e.evalExpressionStatement(node, env)

	case *ast.Identifier:
		return e.evalIdentifier(node, env)
	case *ast.NumberLiteral:
		return &Number{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.VectorLiteral:
		return e.evalVectorLiteral(node, env)
	case *ast.TableLiteral:
		return e.evalTableLiteral(node, env)
	case *ast.ResultLiteral:
		return e.evalResultLiteral(node, env)
	case *ast.PrefixExpression:
		return e.evalPrefixExpression(node, env)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.PostfixExpression:
		return e.evalPostfixExpression(node, env)
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	case *ast.MemberExpression:
		return e.evalMemberExpression(node, env, true)
	case *ast.NewExpression:
		return e.evalNewExpression(node, env)
	case *ast.ReceiveExpression:
		return e.evalReceiveExpression(node, env)
	}
	return e.runtimeError(ErrTypeMismatch, "cannot evaluate node %T", node)
}

func (e *Evaluator) evalProgram(program *ast.Program, env *Environment) Object {
	var result Object = NONE
	for _, stmt := range program.Statements {
		result = e.Eval(stmt, env)
		switch result := result.(type) {
		case *Error:
			return result
		case *ReturnValue:
			return result.Value
		}
	}
	return result
}

func (e *Evaluator) evalBlock(block *ast.BlockStatement, env *Environment) Object {
	var result Object = NONE
	for _, stmt := range block.Statements {
		result = e.Eval(stmt, env)
		if result != nil {
			rt := result.Type()
			if rt == RETURN_VALUE_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}
	return result
}

// runtimeError builds an error value carrying the current call stack.
// The source position is stamped by the Eval wrapper.
func (e *Evaluator) runtimeError(kind, format string, args ...interface{}) *Error {
	stack := make([]StackEntry, len(e.callStack))
	copy(stack, e.callStack)
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Stack:   stack,
	}
}
