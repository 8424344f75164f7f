// Package backend selects and drives an execution engine. Both
// engines run against the same global Environment and host services,
// so a program prints the same output regardless of which one
// executes it.
package backend

import (
	"fmt"

	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/config"
	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
	"github.com/MatthewMacomber/EngageLang/internal/vm"
)

// Backend executes a parsed program against an environment using a
// host evaluator for I/O, builtins and task scheduling.
type Backend interface {
	Name() string
	Run(program *ast.Program, host *evaluator.Evaluator, env *evaluator.Environment) (evaluator.Object, *evaluator.Error)
}

// New resolves a backend by its configuration name. The empty string
// selects the default engine.
func New(name string) (Backend, error) {
	switch name {
	case config.BackendTree:
		return &TreeBackend{}, nil
	case config.BackendVM, "":
		return &VMBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %q or %q)", name, config.BackendTree, config.BackendVM)
	}
}

// TreeBackend walks the AST directly.
type TreeBackend struct{}

func (*TreeBackend) Name() string { return config.BackendTree }

func (*TreeBackend) Run(program *ast.Program, host *evaluator.Evaluator, env *evaluator.Environment) (evaluator.Object, *evaluator.Error) {
	result := host.Eval(program, env)
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, errObj
	}
	return result, nil
}

// VMBackend compiles to bytecode and runs the chunk on the stack
// machine.
type VMBackend struct{}

func (*VMBackend) Name() string { return config.BackendVM }

func (*VMBackend) Run(program *ast.Program, host *evaluator.Evaluator, env *evaluator.Environment) (evaluator.Object, *evaluator.Error) {
	chunk, err := vm.Compile(program)
	if err != nil {
		return nil, &evaluator.Error{Kind: evaluator.ErrInternal, Message: err.Error()}
	}
	return vm.New(host).Run(chunk, env)
}
