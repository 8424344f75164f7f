package evaluator

import (
	"fmt"
	"math"
)

// The operator semantics live here as pure functions so the VM and
// the tree-walking evaluator cannot drift apart: both engines call
// exactly this code for every operator.

func opError(kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ApplyBinary evaluates one non-short-circuit binary operator.
func ApplyBinary(op string, left, right Object) (Object, *Error) {
	switch op {
	case "concatenated with":
		return &String{Value: ToText(left) + ToText(right)}, nil
	case "is":
		return boolToNumber(ObjectsEqual(left, right)), nil
	case "is not":
		return boolToNumber(!ObjectsEqual(left, right)), nil
	}

	ln, lok := left.(*Number)
	rn, rok := right.(*Number)
	if !lok || !rok {
		return nil, opError(ErrTypeMismatch,
			"cannot apply '%s' to %s and %s", op, left.Type(), right.Type())
	}

	switch op {
	case "plus":
		return &Number{Value: ln.Value + rn.Value}, nil
	case "minus":
		return &Number{Value: ln.Value - rn.Value}, nil
	case "times":
		return &Number{Value: ln.Value * rn.Value}, nil
	case "divided by":
		if rn.Value == 0 {
			return nil, opError(ErrDivisionByZero, "division by zero")
		}
		return &Number{Value: ln.Value / rn.Value}, nil
	case "modulo":
		if rn.Value == 0 {
			return nil, opError(ErrDivisionByZero, "modulo by zero")
		}
		return &Number{Value: math.Mod(ln.Value, rn.Value)}, nil
	case "is greater than":
		return boolToNumber(ln.Value > rn.Value), nil
	case "is less than":
		return boolToNumber(ln.Value < rn.Value), nil
	case "is greater than or equal to":
		return boolToNumber(ln.Value >= rn.Value), nil
	case "is less than or equal to":
		return boolToNumber(ln.Value <= rn.Value), nil
	}
	return nil, opError(ErrTypeMismatch, "unknown operator %q", op)
}

// ApplyUnary evaluates a prefix operator.
func ApplyUnary(op string, operand Object) (Object, *Error) {
	switch op {
	case "not":
		return boolToNumber(!IsTruthy(operand)), nil
	case "minus":
		num, ok := operand.(*Number)
		if !ok {
			return nil, opError(ErrTypeMismatch, "cannot negate %s", operand.Type())
		}
		return &Number{Value: -num.Value}, nil
	}
	return nil, opError(ErrTypeMismatch, "unknown prefix operator %q", op)
}

// ResultOkValue implements `the ok value of X`.
func ResultOkValue(operand Object) (Object, *Error) {
	result, ok := operand.(*Result)
	if !ok {
		return nil, opError(ErrTypeMismatch,
			"'the ok value of' expects a result, got %s", operand.Type())
	}
	if !result.IsOk {
		return nil, opError(ErrTypeMismatch, "'the ok value of' applied to an Error result")
	}
	return result.Value, nil
}

// ResultErrMessage implements `the error message of X`.
func ResultErrMessage(operand Object) (Object, *Error) {
	result, ok := operand.(*Result)
	if !ok {
		return nil, opError(ErrTypeMismatch,
			"'the error message of' expects a result, got %s", operand.Type())
	}
	if result.IsOk {
		return nil, opError(ErrTypeMismatch, "'the error message of' applied to an Ok result")
	}
	return result.Value, nil
}

// ObjectsEqual implements the `is` comparison: value equality for
// numbers, strings, none and results, reference identity elsewhere.
func ObjectsEqual(left, right Object) bool {
	switch l := left.(type) {
	case *Number:
		r, ok := right.(*Number)
		return ok && l.Value == r.Value
	case *String:
		r, ok := right.(*String)
		return ok && l.Value == r.Value
	case *None:
		_, ok := right.(*None)
		return ok
	case *Result:
		r, ok := right.(*Result)
		return ok && l.IsOk == r.IsOk && ObjectsEqual(l.Value, r.Value)
	default:
		return left == right
	}
}

// KindMatches answers `X is an NAME` checks for both built-in kinds
// and user record type names.
func KindMatches(obj Object, name string) bool {
	switch v := obj.(type) {
	case *Result:
		if v.IsOk {
			return name == "Ok" || name == "Result"
		}
		return name == "Error" || name == "Result"
	case *Number:
		return name == "Number"
	case *String:
		return name == "String"
	case *Vector:
		return name == "Vector"
	case *Table:
		return name == "Table"
	case *None:
		return name == "None"
	case *Function, *Builtin, *BoundMethod:
		return name == "Function"
	case *Channel:
		return name == "Channel"
	case *Task:
		return name == "Task"
	case *RecordInstance:
		return v.TypeDesc.Name == name
	default:
		return false
	}
}
