package vm

import (
	"encoding/binary"
	"fmt"

	"github.com/MatthewMacomber/EngageLang/internal/config"
	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
)

// Frame is one active call: a chunk, its program counter and the
// environment variable opcodes resolve through. Variables live in the
// environment chain, not in stack slots, so the VM and the evaluator
// share one scoping model.
type Frame struct {
	fn       *CompiledFunction
	chunk    *Chunk
	ip       int
	env      *evaluator.Environment
	callLine int
	callCol  int
}

// VM executes chunks for one task. Host services (builtins, I/O, the
// task scheduler) come from the embedded evaluator.
type VM struct {
	host   *evaluator.Evaluator
	stack  []evaluator.Object
	sp     int
	frames []*Frame

	halted bool
	result evaluator.Object
}

func New(host *evaluator.Evaluator) *VM {
	return &VM{
		host:  host,
		stack: make([]evaluator.Object, config.VMStackSize),
	}
}

// Run executes a main chunk against env until OP_HALT.
func (vm *VM) Run(chunk *Chunk, env *evaluator.Environment) (evaluator.Object, *evaluator.Error) {
	vm.frames = append(vm.frames, &Frame{chunk: chunk, env: env})
	return vm.run()
}

// RunClosure executes a closure with no arguments; used for task
// bodies.
func (vm *VM) RunClosure(cl *Closure) (evaluator.Object, *evaluator.Error) {
	vm.frames = append(vm.frames, &Frame{fn: cl.Fn, chunk: cl.Fn.Chunk, env: cl.Env})
	return vm.run()
}

func (vm *VM) frame() *Frame {
	return vm.frames[len(vm.frames)-1]
}

func (vm *VM) push(obj evaluator.Object) *evaluator.Error {
	if vm.sp >= len(vm.stack) {
		return vm.fault(evaluator.ErrStackOverflow, "operand stack overflow")
	}
	vm.stack[vm.sp] = obj
	vm.sp++
	return nil
}

func (vm *VM) pop() (evaluator.Object, *evaluator.Error) {
	if vm.sp == 0 {
		return nil, vm.fault(evaluator.ErrStackOverflow, "operand stack underflow")
	}
	vm.sp--
	return vm.stack[vm.sp], nil
}

// fault builds a runtime error at the current instruction, with the
// VM call stack attached.
func (vm *VM) fault(kind, format string, args ...interface{}) *evaluator.Error {
	frame := vm.frame()
	line, col := frame.chunk.Position(frame.ip - 1)
	errObj := &evaluator.Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  col,
	}
	for _, f := range vm.frames[1:] {
		name := "task"
		if f.fn != nil {
			name = f.fn.Name
		}
		errObj.Stack = append(errObj.Stack, evaluator.StackEntry{
			Function: name,
			Line:     f.callLine,
			Column:   f.callCol,
		})
	}
	return errObj
}

func (vm *VM) readOperand() int {
	frame := vm.frame()
	v := int(binary.BigEndian.Uint16(frame.chunk.Code[frame.ip : frame.ip+2]))
	frame.ip += 2
	return v
}

func (vm *VM) constant(idx int) evaluator.Object {
	return vm.frame().chunk.Constants[idx]
}

func (vm *VM) constantName(idx int) string {
	return vm.frame().chunk.Constants[idx].(*evaluator.String).Value
}

var binaryOpNames = map[Opcode]string{
	OP_ADD:    "plus",
	OP_SUB:    "minus",
	OP_MUL:    "times",
	OP_DIV:    "divided by",
	OP_MOD:    "modulo",
	OP_CONCAT: "concatenated with",
	OP_EQ:     "is",
	OP_NE:     "is not",
	OP_GT:     "is greater than",
	OP_LT:     "is less than",
	OP_GE:     "is greater than or equal to",
	OP_LE:     "is less than or equal to",
}

func (vm *VM) run() (evaluator.Object, *evaluator.Error) {
	for !vm.halted {
		frame := vm.frame()
		if frame.ip >= len(frame.chunk.Code) {
			// A function chunk always ends in a return and main in
			// OP_HALT; walking off the end means a compiler bug.
			return nil, vm.fault(evaluator.ErrTypeMismatch, "instruction pointer out of range")
		}
		op := Opcode(frame.chunk.Code[frame.ip])
		frame.ip++

		var errObj *evaluator.Error
		switch op {
		case OP_CONST:
			errObj = vm.push(vm.constant(vm.readOperand()))
		case OP_NONE:
			errObj = vm.push(evaluator.NONE)
		case OP_POP:
			_, errObj = vm.pop()
		case OP_TRUTHY:
			errObj = vm.opTruthy()
		case OP_NOT, OP_NEG:
			errObj = vm.opUnary(op)
		case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD, OP_CONCAT,
			OP_EQ, OP_NE, OP_LT, OP_GT, OP_LE, OP_GE:
			errObj = vm.opBinary(op)
		case OP_CHECK_TAG:
			errObj = vm.opCheckTag(vm.readOperand())
		case OP_GET_VAR:
			errObj = vm.opGetVar(vm.readOperand())
		case OP_SET_VAR:
			errObj = vm.opSetVar(vm.readOperand())
		case OP_DEFINE_VAR:
			errObj = vm.opDefineVar(vm.readOperand())
		case OP_JUMP:
			vm.opJump(frame)
		case OP_JUMP_IF_FALSE:
			errObj = vm.opJumpIf(frame, false)
		case OP_JUMP_IF_TRUE:
			errObj = vm.opJumpIf(frame, true)
		case OP_CALL:
			errObj = vm.opCall(vm.readOperand())
		case OP_RETURN:
			errObj = vm.opReturn(false)
		case OP_RETURN_NONE:
			errObj = vm.opReturn(true)
		case OP_INVOKE_BARE:
			errObj = vm.opInvokeBare()
		case OP_MAKE_FUNCTION:
			errObj = vm.opMakeFunction(vm.readOperand())
		case OP_MAKE_RECORD:
			errObj = vm.opMakeRecord(vm.readOperand(), vm.readOperand(), vm.readOperand())
		case OP_NEW_RECORD:
			errObj = vm.opNewRecord(vm.readOperand())
		case OP_GET_FIELD:
			errObj = vm.opGetField(vm.readOperand(), true)
		case OP_GET_METHOD:
			errObj = vm.opGetField(vm.readOperand(), false)
		case OP_SET_FIELD:
			errObj = vm.opSetField(vm.readOperand())
		case OP_MAKE_VECTOR:
			errObj = vm.opMakeVector(vm.readOperand())
		case OP_MAKE_TABLE:
			errObj = vm.opMakeTable(vm.readOperand())
		case OP_MAKE_RESULT_OK:
			errObj = vm.opMakeResult(true)
		case OP_MAKE_RESULT_ERR:
			errObj = vm.opMakeResult(false)
		case OP_RESULT_OK_VALUE:
			errObj = vm.opResultAccess(true)
		case OP_RESULT_ERR_MSG:
			errObj = vm.opResultAccess(false)
		case OP_UNWRAP_OR_RETURN:
			errObj = vm.opUnwrapOrReturn()
		case OP_MAKE_CHANNEL:
			errObj = vm.opMakeChannel(vm.readOperand())
		case OP_SPAWN_TASK:
			errObj = vm.opSpawnTask(vm.readOperand())
		case OP_CHAN_SEND:
			errObj = vm.opChanSend()
		case OP_CHAN_RECV:
			errObj = vm.opChanRecv()
		case OP_HALT:
			vm.halted = true
		default:
			errObj = vm.fault(evaluator.ErrTypeMismatch, "unknown opcode %d", op)
		}
		if errObj != nil {
			return nil, errObj
		}
	}
	if vm.result == nil {
		vm.result = evaluator.NONE
	}
	return vm.result, nil
}

func (vm *VM) opTruthy() *evaluator.Error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	if evaluator.IsTruthy(v) {
		return vm.push(&evaluator.Number{Value: 1})
	}
	return vm.push(&evaluator.Number{Value: 0})
}

func (vm *VM) opUnary(op Opcode) *evaluator.Error {
	operand, err := vm.pop()
	if err != nil {
		return err
	}
	name := "not"
	if op == OP_NEG {
		name = "minus"
	}
	result, opErr := evaluator.ApplyUnary(name, operand)
	if opErr != nil {
		return vm.faultFrom(opErr)
	}
	return vm.push(result)
}

func (vm *VM) opBinary(op Opcode) *evaluator.Error {
	right, err := vm.pop()
	if err != nil {
		return err
	}
	left, err := vm.pop()
	if err != nil {
		return err
	}
	result, opErr := evaluator.ApplyBinary(binaryOpNames[op], left, right)
	if opErr != nil {
		return vm.faultFrom(opErr)
	}
	return vm.push(result)
}

// faultFrom positions an operator error at the current instruction.
func (vm *VM) faultFrom(opErr *evaluator.Error) *evaluator.Error {
	full := vm.fault(opErr.Kind, "%s", opErr.Message)
	return full
}

func (vm *VM) opCheckTag(nameIdx int) *evaluator.Error {
	name := vm.constantName(nameIdx)
	v, err := vm.pop()
	if err != nil {
		return err
	}
	if evaluator.KindMatches(v, name) {
		return vm.push(&evaluator.Number{Value: 1})
	}
	return vm.push(&evaluator.Number{Value: 0})
}

func (vm *VM) opGetVar(nameIdx int) *evaluator.Error {
	name := vm.constantName(nameIdx)
	value, ok := vm.frame().env.Get(name)
	if !ok {
		return vm.fault(evaluator.ErrUndefinedVariable, "'%s' is not defined", name)
	}
	return vm.push(value)
}

func (vm *VM) opSetVar(nameIdx int) *evaluator.Error {
	name := vm.constantName(nameIdx)
	value, err := vm.pop()
	if err != nil {
		return err
	}
	if !vm.frame().env.Update(name, value) {
		return vm.fault(evaluator.ErrUndefinedVariable, "'%s' is not defined", name)
	}
	return nil
}

func (vm *VM) opDefineVar(nameIdx int) *evaluator.Error {
	name := vm.constantName(nameIdx)
	value, err := vm.pop()
	if err != nil {
		return err
	}
	vm.frame().env.Set(name, value)
	return nil
}

func (vm *VM) opJumpIf(frame *Frame, when bool) *evaluator.Error {
	target := vm.readOperand()
	cond, err := vm.pop()
	if err != nil {
		return err
	}
	if evaluator.IsTruthy(cond) == when {
		frame.ip = target
	}
	return nil
}

func (vm *VM) opJump(frame *Frame) {
	frame.ip = vm.readOperand()
}
