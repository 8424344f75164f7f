package evaluator

import (
	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/config"
	"github.com/MatthewMacomber/EngageLang/internal/token"
)

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	var callee Object
	if member, ok := node.Function.(*ast.MemberExpression); ok {
		// The member is the callee here, so a nullary method must not
		// auto-invoke before the call applies its arguments.
		callee = e.evalMemberExpression(member, env, false)
	} else {
		callee = e.Eval(node.Function, env)
	}
	if isUnwind(callee) {
		return callee
	}

	args := make([]Object, 0, len(node.Arguments))
	for _, argNode := range node.Arguments {
		arg := e.Eval(argNode, env)
		if isUnwind(arg) {
			return arg
		}
		args = append(args, arg)
	}
	return e.applyFunction(callee, args, node.Token)
}

// applyFunction invokes any callable object. Call arguments are bound
// by position into a fresh child of the callee's captured environment;
// a return signal is caught exactly here.
func (e *Evaluator) applyFunction(callee Object, args []Object, callTok token.Token) Object {
	if e.callDepth >= config.MaxCallDepth {
		return e.runtimeError(ErrStackOverflow, "call depth exceeds %d", config.MaxCallDepth)
	}

	switch fn := callee.(type) {
	case *Function:
		return e.callUserFunction(fn, nil, args, callTok)
	case *BoundMethod:
		method, ok := fn.Method.(*Function)
		if !ok {
			return e.runtimeError(ErrUndefinedFunction, "method %q is not callable here", fn.Name)
		}
		return e.callUserFunction(method, fn.Receiver, args, callTok)
	case *Builtin:
		return fn.Fn(e, args...)
	default:
		return e.runtimeError(ErrUndefinedFunction, "%s is not a function", callee.Type())
	}
}

func (e *Evaluator) callUserFunction(fn *Function, self *RecordInstance, args []Object, callTok token.Token) Object {
	if len(args) != len(fn.Parameters) {
		return e.runtimeError(ErrArityMismatch,
			"function '%s' takes %d arguments but %d were given",
			fn.Name, len(fn.Parameters), len(args))
	}

	callEnv := NewEnclosedEnvironment(fn.Env)
	if self != nil {
		callEnv.Set("self", self)
	}
	for i, name := range fn.Parameters {
		callEnv.Set(name, args[i])
	}

	e.callDepth++
	e.callStack = append(e.callStack, StackEntry{
		Function: fn.Name,
		Line:     callTok.Line,
		Column:   callTok.Column,
	})
	result := e.evalBlock(fn.Body, callEnv)
	e.callStack = e.callStack[:len(e.callStack)-1]
	e.callDepth--

	switch result := result.(type) {
	case *Error:
		return result
	case *ReturnValue:
		return result.Value
	default:
		return NONE
	}
}
