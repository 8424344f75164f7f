package evaluator

import (
	"errors"
	"fmt"
	"strings"
)

// Runtime error kinds shared by the evaluator and the VM.
const (
	ErrUndefinedVariable = "UndefinedVariable"
	ErrUndefinedFunction = "UndefinedFunction"
	ErrDivisionByZero    = "DivisionByZero"
	ErrTypeMismatch      = "TypeMismatch"
	ErrArityMismatch     = "ArityMismatch"
	ErrFieldNotFound     = "FieldNotFound"
	ErrChannelOperation  = "ChannelOperationError"
	ErrStackOverflow     = "StackOverflow"
	ErrInternal          = "InternalError"
)

// StackEntry is one call-stack level captured when a runtime error is
// raised.
type StackEntry struct {
	Function string
	Line     int
	Column   int
}

// Error is the runtime error signal. It flows through evaluation like
// a value, unwinding statement by statement, and carries the source
// position and call stack of the point of failure.
type Error struct {
	Kind    string
	Message string
	Line    int
	Column  int
	Stack   []StackEntry
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Report renders the full diagnostic with position and call stack.
func (e *Error) Report() string {
	var out strings.Builder
	fmt.Fprintf(&out, "runtime error[%s] line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Message)
	for i := len(e.Stack) - 1; i >= 0; i-- {
		entry := e.Stack[i]
		fmt.Fprintf(&out, "\n  in %s (line %d, column %d)", entry.Function, entry.Line, entry.Column)
	}
	return out.String()
}

// AsGoError adapts the runtime error to the standard error interface
// for the task scheduler boundary.
func (e *Error) AsGoError() error {
	return errors.New(e.Report())
}

func IsError(obj Object) bool {
	if obj == nil {
		return false
	}
	return obj.Type() == ERROR_OBJ
}

// isUnwind reports whether obj is a control signal that must pass
// through the surrounding expression untouched: a runtime error, or
// the in-flight return raised when `or return error` meets an Error
// result. Both are caught at the enclosing call boundary, never stored
// into a binding.
func isUnwind(obj Object) bool {
	if obj == nil {
		return false
	}
	t := obj.Type()
	return t == ERROR_OBJ || t == RETURN_VALUE_OBJ
}
