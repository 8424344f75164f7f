package evaluator

import (
	"github.com/MatthewMacomber/EngageLang/internal/ast"
)

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if value, ok := env.Get(node.Value); ok {
		return value
	}
	return e.runtimeError(ErrUndefinedVariable, "'%s' is not defined", node.Value)
}

func (e *Evaluator) evalVectorLiteral(node *ast.VectorLiteral, env *Environment) Object {
	elements := make([]Object, 0, len(node.Elements))
	for _, elem := range node.Elements {
		value := e.Eval(elem, env)
		if isUnwind(value) {
			return value
		}
		elements = append(elements, value)
	}
	return &Vector{Elements: elements}
}

func (e *Evaluator) evalTableLiteral(node *ast.TableLiteral, env *Environment) Object {
	pairs := make(map[string]Object, len(node.Pairs))
	for _, pair := range node.Pairs {
		value := e.Eval(pair.Value, env)
		if isUnwind(value) {
			return value
		}
		pairs[pair.Key] = value
	}
	return &Table{Pairs: pairs}
}

func (e *Evaluator) evalResultLiteral(node *ast.ResultLiteral, env *Environment) Object {
	var value Object = NONE
	if node.Value != nil {
		value = e.Eval(node.Value, env)
		if isUnwind(value) {
			return value
		}
	}
	return &Result{IsOk: node.Kind == "Ok", Value: value}
}

// attachStack stamps the current call stack onto an operator error.
func (e *Evaluator) attachStack(errObj *Error) *Error {
	stack := make([]StackEntry, len(e.callStack))
	copy(stack, e.callStack)
	errObj.Stack = stack
	return errObj
}

func (e *Evaluator) evalPrefixExpression(node *ast.PrefixExpression, env *Environment) Object {
	operand := e.Eval(node.Right, env)
	if isUnwind(operand) {
		return operand
	}

	var result Object
	var errObj *Error
	switch node.Operator {
	case "the ok value of":
		result, errObj = ResultOkValue(operand)
	case "the error message of":
		result, errObj = ResultErrMessage(operand)
	default:
		result, errObj = ApplyUnary(node.Operator, operand)
	}
	if errObj != nil {
		return e.attachStack(errObj)
	}
	return result
}

func (e *Evaluator) evalInfixExpression(node *ast.InfixExpression, env *Environment) Object {
	switch node.Operator {
	case "and":
		left := e.Eval(node.Left, env)
		if isUnwind(left) {
			return left
		}
		if !IsTruthy(left) {
			return boolToNumber(false)
		}
		right := e.Eval(node.Right, env)
		if isUnwind(right) {
			return right
		}
		return boolToNumber(IsTruthy(right))
	case "or":
		left := e.Eval(node.Left, env)
		if isUnwind(left) {
			return left
		}
		if IsTruthy(left) {
			return boolToNumber(true)
		}
		right := e.Eval(node.Right, env)
		if isUnwind(right) {
			return right
		}
		return boolToNumber(IsTruthy(right))
	case "is an":
		left := e.Eval(node.Left, env)
		if isUnwind(left) {
			return left
		}
		typeName := node.Right.(*ast.Identifier).Value
		return boolToNumber(KindMatches(left, typeName))
	}

	left := e.Eval(node.Left, env)
	if isUnwind(left) {
		return left
	}
	right := e.Eval(node.Right, env)
	if isUnwind(right) {
		return right
	}
	result, errObj := ApplyBinary(node.Operator, left, right)
	if errObj != nil {
		return e.attachStack(errObj)
	}
	return result
}

// evalPostfixExpression implements `or return error`: an Ok result
// unwraps to its payload, an Error result returns early from the
// enclosing function, anything else passes through untouched.
func (e *Evaluator) evalPostfixExpression(node *ast.PostfixExpression, env *Environment) Object {
	value := e.Eval(node.Left, env)
	if isUnwind(value) {
		return value
	}
	result, ok := value.(*Result)
	if !ok {
		return value
	}
	if result.IsOk {
		return result.Value
	}
	return &ReturnValue{Value: result}
}

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression, env *Environment, autoInvoke bool) Object {
	object := e.Eval(node.Object, env)
	if isUnwind(object) {
		return object
	}

	field := node.Field.Value
	switch recv := object.(type) {
	case *RecordInstance:
		if value, ok := recv.Fields[field]; ok {
			return value
		}
		if method, ok := recv.TypeDesc.Methods[field]; ok {
			bound := &BoundMethod{Receiver: recv, Method: method, Name: field}
			// A bare nullary method access reads like a property, so
			// it is invoked on the spot.
			if pc, ok := method.(ParamCounter); ok && autoInvoke && pc.ParamCount() == 0 {
				return e.applyFunction(bound, nil, node.Token)
			}
			return bound
		}
		return e.runtimeError(ErrFieldNotFound,
			"record %s has no field or method %q", recv.TypeDesc.Name, field)
	case *Table:
		if value, ok := recv.Pairs[field]; ok {
			return value
		}
		return NONE
	default:
		return e.runtimeError(ErrTypeMismatch, "cannot access field %q on %s", field, object.Type())
	}
}

func (e *Evaluator) evalNewExpression(node *ast.NewExpression, env *Environment) Object {
	value, ok := env.Get(node.TypeName.Value)
	if !ok {
		return e.runtimeError(ErrUndefinedVariable, "'%s' is not defined", node.TypeName.Value)
	}
	rt, ok := value.(*RecordType)
	if !ok {
		return e.runtimeError(ErrTypeMismatch, "'%s' is not a record type", node.TypeName.Value)
	}

	fields := make(map[string]Object, len(rt.Defaults))
	for name, def := range rt.Defaults {
		fields[name] = def
	}
	for _, init := range node.Fields {
		if _, ok := rt.Defaults[init.Name]; !ok {
			return e.runtimeError(ErrFieldNotFound, "record %s has no field %q", rt.Name, init.Name)
		}
		fieldValue := e.Eval(init.Value, env)
		if isUnwind(fieldValue) {
			return fieldValue
		}
		fields[init.Name] = fieldValue
	}
	return &RecordInstance{TypeDesc: rt, Fields: fields}
}

func (e *Evaluator) evalReceiveExpression(node *ast.ReceiveExpression, env *Environment) Object {
	target := e.Eval(node.Channel, env)
	if isUnwind(target) {
		return target
	}
	ch, ok := target.(*Channel)
	if !ok {
		return e.runtimeError(ErrChannelOperation, "cannot receive from %s, not a channel", target.Type())
	}
	return ch.Ch.Receive()
}
