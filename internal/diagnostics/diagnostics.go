package diagnostics

import (
	"fmt"

	"github.com/MatthewMacomber/EngageLang/internal/token"
)

// Error codes, grouped by pipeline stage.
const (
	ErrL001 = "L001" // unrecognized character
	ErrL002 = "L002" // unterminated string literal

	ErrP001 = "P001" // unexpected token
	ErrP002 = "P002" // missing statement terminator
	ErrP003 = "P003" // missing block terminator
	ErrP004 = "P004" // malformed declaration
	ErrP005 = "P005" // expression nesting too deep
)

// DiagnosticError is a positioned error produced by any pipeline
// stage. Stages accumulate them instead of aborting, so one run can
// report several problems.
type DiagnosticError struct {
	Code    string
	Message string
	File    string
	Line    int
	Column  int
}

func NewError(code string, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{
		Code:    code,
		Message: message,
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

func NewErrorf(code string, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, tok, fmt.Sprintf(format, args...))
}

func (e *DiagnosticError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d, column %d: %s", e.Code, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Format renders a diagnostic for terminal output. Color is the
// caller's call since only it knows whether stderr is a TTY.
func (e *DiagnosticError) Format(color bool) string {
	prefix := ""
	if e.File != "" {
		prefix = e.File + ": "
	}
	if color {
		return fmt.Sprintf("\x1b[31m%serror[%s]\x1b[0m line %d, column %d: %s",
			prefix, e.Code, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%serror[%s] line %d, column %d: %s",
		prefix, e.Code, e.Line, e.Column, e.Message)
}
