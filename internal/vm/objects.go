package vm

import (
	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
)

// CompiledFunction is the compile-time prototype of a function or
// task body: a chunk plus its parameter list. It lives in constant
// pools and carries no environment.
type CompiledFunction struct {
	Name       string
	Parameters []string
	Chunk      *Chunk
}

func (cf *CompiledFunction) Type() evaluator.ObjectType { return evaluator.FUNCTION_OBJ }
func (cf *CompiledFunction) Inspect() string            { return "<compiled " + cf.Name + ">" }
func (cf *CompiledFunction) ParamCount() int            { return len(cf.Parameters) }

// Closure pairs a prototype with the environment captured when
// OP_MAKE_FUNCTION executed, mirroring the evaluator's closure rule.
type Closure struct {
	Fn  *CompiledFunction
	Env *evaluator.Environment
}

func (cl *Closure) Type() evaluator.ObjectType { return evaluator.FUNCTION_OBJ }
func (cl *Closure) Inspect() string            { return "<function " + cl.Fn.Name + ">" }
func (cl *Closure) ParamCount() int            { return len(cl.Fn.Parameters) }
