package evaluator

import (
	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/runtime"
)

func (e *Evaluator) evalLetStatement(stmt *ast.LetStatement, env *Environment) Object {
	value := e.Eval(stmt.Value, env)
	if isUnwind(value) {
		return value
	}
	env.Set(stmt.Name.Value, value)
	return NONE
}

func (e *Evaluator) evalSetStatement(stmt *ast.SetStatement, env *Environment) Object {
	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		value := e.Eval(stmt.Value, env)
		if isUnwind(value) {
			return value
		}
		if !env.Update(target.Value, value) {
			return e.runtimeError(ErrUndefinedVariable, "'%s' is not defined", target.Value)
		}
		return NONE
	case *ast.MemberExpression:
		// The target object is evaluated before the value, so side
		// effects in the target chain fire first.
		object := e.Eval(target.Object, env)
		if isUnwind(object) {
			return object
		}
		value := e.Eval(stmt.Value, env)
		if isUnwind(value) {
			return value
		}
		return e.setMember(object, target.Field.Value, value)
	default:
		return e.runtimeError(ErrTypeMismatch, "cannot assign to %s", stmt.Target.String())
	}
}

func (e *Evaluator) setMember(object Object, field string, value Object) Object {
	switch recv := object.(type) {
	case *RecordInstance:
		if _, ok := recv.Fields[field]; !ok {
			return e.runtimeError(ErrFieldNotFound,
				"record %s has no field %q", recv.TypeDesc.Name, field)
		}
		recv.Fields[field] = value
		return NONE
	case *Table:
		recv.Pairs[field] = value
		return NONE
	default:
		return e.runtimeError(ErrTypeMismatch, "cannot set field %q on %s", field, object.Type())
	}
}

func (e *Evaluator) evalFunctionStatement(stmt *ast.FunctionStatement, env *Environment) Object {
	params := make([]string, len(stmt.Parameters))
	for i, p := range stmt.Parameters {
		params[i] = p.Value
	}
	fn := &Function{
		Name:       stmt.Name.Value,
		Parameters: params,
		Body:       stmt.Body,
		Env:        env,
	}
	env.Set(stmt.Name.Value, fn)
	return NONE
}

func (e *Evaluator) evalReturnStatement(stmt *ast.ReturnStatement, env *Environment) Object {
	var value Object = NONE
	if stmt.Value != nil {
		value = e.Eval(stmt.Value, env)
		if isUnwind(value) {
			return value
		}
	}
	return &ReturnValue{Value: value}
}

func (e *Evaluator) evalIfStatement(stmt *ast.IfStatement, env *Environment) Object {
	for _, c := range stmt.Cases {
		cond := e.Eval(c.Condition, env)
		if isUnwind(cond) {
			return cond
		}
		if IsTruthy(cond) {
			return e.evalBlock(c.Body, env)
		}
	}
	if stmt.Otherwise != nil {
		return e.evalBlock(stmt.Otherwise, env)
	}
	return NONE
}

func (e *Evaluator) evalWhileStatement(stmt *ast.WhileStatement, env *Environment) Object {
	for {
		cond := e.Eval(stmt.Condition, env)
		if isUnwind(cond) {
			return cond
		}
		if !IsTruthy(cond) {
			return NONE
		}
		result := e.evalBlock(stmt.Body, env)
		if result != nil {
			rt := result.Type()
			if rt == RETURN_VALUE_OBJ || rt == ERROR_OBJ {
				return result
			}
		}
	}
}

// evalRecordStatement evaluates field defaults once, at definition
// time, and captures the defining environment for every method.
func (e *Evaluator) evalRecordStatement(stmt *ast.RecordStatement, env *Environment) Object {
	rt := &RecordType{
		Name:     stmt.Name.Value,
		Defaults: make(map[string]Object),
		Methods:  make(map[string]Object),
	}
	for _, field := range stmt.Fields {
		value := e.Eval(field.Value, env)
		if isUnwind(value) {
			return value
		}
		rt.FieldOrder = append(rt.FieldOrder, field.Name.Value)
		rt.Defaults[field.Name.Value] = value
	}
	for _, method := range stmt.Methods {
		params := make([]string, len(method.Parameters))
		for i, p := range method.Parameters {
			params[i] = p.Value
		}
		rt.Methods[method.Name.Value] = &Function{
			Name:       stmt.Name.Value + "." + method.Name.Value,
			Parameters: params,
			Body:       method.Body,
			Env:        env,
		}
	}
	env.Set(rt.Name, rt)
	return NONE
}

func (e *Evaluator) evalChannelStatement(stmt *ast.ChannelStatement, env *Environment) Object {
	name := stmt.Name.Value
	env.Set(name, &Channel{Name: name, Ch: runtime.NewChannel[Object](name)})
	return NONE
}

func (e *Evaluator) evalSendStatement(stmt *ast.SendStatement, env *Environment) Object {
	value := e.Eval(stmt.Value, env)
	if isUnwind(value) {
		return value
	}
	target := e.Eval(stmt.Channel, env)
	if isUnwind(target) {
		return target
	}
	ch, ok := target.(*Channel)
	if !ok {
		return e.runtimeError(ErrChannelOperation, "cannot send through %s, not a channel", target.Type())
	}
	ch.Ch.Send(value)
	return NONE
}

// evalTaskStatement spawns the body on a new task. The task gets a
// child environment of the spawning scope and its own evaluator fork;
// a failure inside the task never reaches the spawning context.
func (e *Evaluator) evalTaskStatement(stmt *ast.TaskStatement, env *Environment) Object {
	child := NewEnclosedEnvironment(env)
	fork := e.Fork()
	body := stmt.Body
	t := e.Scheduler.Spawn("task", func() error {
		result := fork.Eval(body, child)
		if errObj, ok := result.(*Error); ok {
			return errObj.AsGoError()
		}
		return nil
	})
	return &Task{T: t}
}

func (e *Evaluator) evalExpressionStatement(stmt *ast.ExpressionStatement, env *Environment) Object {
	result := e.Eval(stmt.Expression, env)
	if isUnwind(result) {
		return result
	}
	// A bare name used as a statement invokes the function it names,
	// so `greet.` runs greet rather than discarding its value.
	if _, isBare := stmt.Expression.(*ast.Identifier); isBare {
		switch result.(type) {
		case *Function, *Builtin, *BoundMethod:
			return e.applyFunction(result, nil, stmt.Token)
		}
	}
	return result
}
