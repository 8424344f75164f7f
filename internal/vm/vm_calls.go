package vm

import (
	"github.com/MatthewMacomber/EngageLang/internal/config"
	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
	"github.com/MatthewMacomber/EngageLang/internal/runtime"
)

func (vm *VM) opMakeFunction(protoIdx int) *evaluator.Error {
	proto := vm.constant(protoIdx).(*CompiledFunction)
	return vm.push(&Closure{Fn: proto, Env: vm.frame().env})
}

func (vm *VM) opCall(argc int) *evaluator.Error {
	calleeAt := vm.sp - argc - 1
	if calleeAt < 0 {
		return vm.fault(evaluator.ErrStackOverflow, "operand stack underflow")
	}
	callee := vm.stack[calleeAt]

	switch fn := callee.(type) {
	case *Closure:
		return vm.callClosure(fn, nil, argc)
	case *evaluator.BoundMethod:
		cl, ok := fn.Method.(*Closure)
		if !ok {
			return vm.fault(evaluator.ErrUndefinedFunction, "method %q is not callable here", fn.Name)
		}
		return vm.callClosure(cl, fn.Receiver, argc)
	case *evaluator.Builtin:
		args := make([]evaluator.Object, argc)
		copy(args, vm.stack[vm.sp-argc:vm.sp])
		vm.sp = calleeAt
		result := fn.Fn(vm.host, args...)
		if errObj, ok := result.(*evaluator.Error); ok {
			return vm.faultFrom(errObj)
		}
		return vm.push(result)
	default:
		return vm.fault(evaluator.ErrUndefinedFunction, "%s is not a function", callee.Type())
	}
}

// callClosure binds arguments into a fresh child of the closure's
// captured environment and pushes a frame; execution continues inside
// the callee's chunk.
func (vm *VM) callClosure(cl *Closure, self *evaluator.RecordInstance, argc int) *evaluator.Error {
	if len(vm.frames) >= config.MaxCallDepth {
		return vm.fault(evaluator.ErrStackOverflow, "call depth exceeds %d", config.MaxCallDepth)
	}
	if argc != len(cl.Fn.Parameters) {
		return vm.fault(evaluator.ErrArityMismatch,
			"function '%s' takes %d arguments but %d were given",
			cl.Fn.Name, len(cl.Fn.Parameters), argc)
	}

	env := evaluator.NewEnclosedEnvironment(cl.Env)
	if self != nil {
		env.Set("self", self)
	}
	for i, name := range cl.Fn.Parameters {
		env.Set(name, vm.stack[vm.sp-argc+i])
	}
	vm.sp -= argc + 1

	caller := vm.frame()
	line, col := caller.chunk.Position(caller.ip - 1)
	vm.frames = append(vm.frames, &Frame{
		fn:       cl.Fn,
		chunk:    cl.Fn.Chunk,
		env:      env,
		callLine: line,
		callCol:  col,
	})
	return nil
}

// opReturn pops the current frame. Returning from the outermost frame
// halts the run with the returned value as the program result.
func (vm *VM) opReturn(none bool) *evaluator.Error {
	var result evaluator.Object = evaluator.NONE
	if !none {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		result = v
	}
	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.frames) == 0 {
		vm.halted = true
		vm.result = result
		return nil
	}
	return vm.push(result)
}

// opInvokeBare invokes the value on top of the stack with no
// arguments when it is callable; any other value is left in place for
// the following OP_POP.
func (vm *VM) opInvokeBare() *evaluator.Error {
	top := vm.stack[vm.sp-1]
	switch top.(type) {
	case *Closure, *evaluator.Builtin, *evaluator.BoundMethod:
		return vm.opCall(0)
	default:
		return nil
	}
}

func (vm *VM) opUnwrapOrReturn() *evaluator.Error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	result, ok := v.(*evaluator.Result)
	if !ok {
		return vm.push(v)
	}
	if result.IsOk {
		return vm.push(result.Value)
	}
	if err := vm.push(result); err != nil {
		return err
	}
	return vm.opReturn(false)
}

func (vm *VM) opMakeRecord(nameIdx, fieldCount, methodCount int) *evaluator.Error {
	rt := &evaluator.RecordType{
		Name:     vm.constantName(nameIdx),
		Defaults: make(map[string]evaluator.Object),
		Methods:  make(map[string]evaluator.Object),
	}

	for i := 0; i < methodCount; i++ {
		method, err := vm.pop()
		if err != nil {
			return err
		}
		nameObj, err := vm.pop()
		if err != nil {
			return err
		}
		rt.Methods[nameObj.(*evaluator.String).Value] = method
	}

	rt.FieldOrder = make([]string, fieldCount)
	for i := fieldCount - 1; i >= 0; i-- {
		value, err := vm.pop()
		if err != nil {
			return err
		}
		nameObj, err := vm.pop()
		if err != nil {
			return err
		}
		name := nameObj.(*evaluator.String).Value
		rt.FieldOrder[i] = name
		rt.Defaults[name] = value
	}
	return vm.push(rt)
}

func (vm *VM) opNewRecord(pairCount int) *evaluator.Error {
	inits := make(map[string]evaluator.Object, pairCount)
	order := make([]string, 0, pairCount)
	for i := 0; i < pairCount; i++ {
		value, err := vm.pop()
		if err != nil {
			return err
		}
		nameObj, err := vm.pop()
		if err != nil {
			return err
		}
		name := nameObj.(*evaluator.String).Value
		inits[name] = value
		order = append(order, name)
	}

	target, err := vm.pop()
	if err != nil {
		return err
	}
	rt, ok := target.(*evaluator.RecordType)
	if !ok {
		return vm.fault(evaluator.ErrTypeMismatch, "'%s' is not a record type", evaluator.ToText(target))
	}

	fields := make(map[string]evaluator.Object, len(rt.Defaults))
	for name, def := range rt.Defaults {
		fields[name] = def
	}
	for _, name := range order {
		if _, ok := rt.Defaults[name]; !ok {
			return vm.fault(evaluator.ErrFieldNotFound, "record %s has no field %q", rt.Name, name)
		}
		fields[name] = inits[name]
	}
	return vm.push(&evaluator.RecordInstance{TypeDesc: rt, Fields: fields})
}

// opGetField reads a field or method. With autoInvoke set, a nullary
// method is called immediately, matching the evaluator's property
// style access.
func (vm *VM) opGetField(nameIdx int, autoInvoke bool) *evaluator.Error {
	field := vm.constantName(nameIdx)
	object, err := vm.pop()
	if err != nil {
		return err
	}

	switch recv := object.(type) {
	case *evaluator.RecordInstance:
		if value, ok := recv.Fields[field]; ok {
			return vm.push(value)
		}
		if method, ok := recv.TypeDesc.Methods[field]; ok {
			bound := &evaluator.BoundMethod{Receiver: recv, Method: method, Name: field}
			if err := vm.push(bound); err != nil {
				return err
			}
			if cl, ok := method.(*Closure); ok && autoInvoke && len(cl.Fn.Parameters) == 0 {
				return vm.opCall(0)
			}
			return nil
		}
		return vm.fault(evaluator.ErrFieldNotFound,
			"record %s has no field or method %q", recv.TypeDesc.Name, field)
	case *evaluator.Table:
		if value, ok := recv.Pairs[field]; ok {
			return vm.push(value)
		}
		return vm.push(evaluator.NONE)
	default:
		return vm.fault(evaluator.ErrTypeMismatch, "cannot access field %q on %s", field, object.Type())
	}
}

func (vm *VM) opSetField(nameIdx int) *evaluator.Error {
	field := vm.constantName(nameIdx)
	value, err := vm.pop()
	if err != nil {
		return err
	}
	object, err := vm.pop()
	if err != nil {
		return err
	}

	switch recv := object.(type) {
	case *evaluator.RecordInstance:
		if _, ok := recv.Fields[field]; !ok {
			return vm.fault(evaluator.ErrFieldNotFound,
				"record %s has no field %q", recv.TypeDesc.Name, field)
		}
		recv.Fields[field] = value
		return nil
	case *evaluator.Table:
		recv.Pairs[field] = value
		return nil
	default:
		return vm.fault(evaluator.ErrTypeMismatch, "cannot set field %q on %s", field, object.Type())
	}
}

func (vm *VM) opMakeVector(count int) *evaluator.Error {
	elements := make([]evaluator.Object, count)
	for i := count - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		elements[i] = v
	}
	return vm.push(&evaluator.Vector{Elements: elements})
}

func (vm *VM) opMakeTable(pairCount int) *evaluator.Error {
	pairs := make(map[string]evaluator.Object, pairCount)
	for i := 0; i < pairCount; i++ {
		value, err := vm.pop()
		if err != nil {
			return err
		}
		key, err := vm.pop()
		if err != nil {
			return err
		}
		pairs[key.(*evaluator.String).Value] = value
	}
	return vm.push(&evaluator.Table{Pairs: pairs})
}

func (vm *VM) opMakeResult(ok bool) *evaluator.Error {
	value, err := vm.pop()
	if err != nil {
		return err
	}
	return vm.push(&evaluator.Result{IsOk: ok, Value: value})
}

func (vm *VM) opResultAccess(okValue bool) *evaluator.Error {
	operand, err := vm.pop()
	if err != nil {
		return err
	}
	var result evaluator.Object
	var opErr *evaluator.Error
	if okValue {
		result, opErr = evaluator.ResultOkValue(operand)
	} else {
		result, opErr = evaluator.ResultErrMessage(operand)
	}
	if opErr != nil {
		return vm.faultFrom(opErr)
	}
	return vm.push(result)
}

func (vm *VM) opMakeChannel(nameIdx int) *evaluator.Error {
	name := vm.constantName(nameIdx)
	return vm.push(&evaluator.Channel{
		Name: name,
		Ch:   runtime.NewChannel[evaluator.Object](name),
	})
}

// opSpawnTask runs a compiled task body on its own goroutine with a
// fresh VM, sharing the spawning frame's environment chain through a
// child scope.
func (vm *VM) opSpawnTask(protoIdx int) *evaluator.Error {
	proto := vm.constant(protoIdx).(*CompiledFunction)
	child := evaluator.NewEnclosedEnvironment(vm.frame().env)
	host := vm.host
	host.Scheduler.Spawn("task", func() error {
		sub := New(host.Fork())
		if _, errObj := sub.RunClosure(&Closure{Fn: proto, Env: child}); errObj != nil {
			return errObj.AsGoError()
		}
		return nil
	})
	return nil
}

func (vm *VM) opChanSend() *evaluator.Error {
	target, err := vm.pop()
	if err != nil {
		return err
	}
	value, err := vm.pop()
	if err != nil {
		return err
	}
	ch, ok := target.(*evaluator.Channel)
	if !ok {
		return vm.fault(evaluator.ErrChannelOperation, "cannot send through %s, not a channel", target.Type())
	}
	ch.Ch.Send(value)
	return nil
}

func (vm *VM) opChanRecv() *evaluator.Error {
	target, err := vm.pop()
	if err != nil {
		return err
	}
	ch, ok := target.(*evaluator.Channel)
	if !ok {
		return vm.fault(evaluator.ErrChannelOperation, "cannot receive from %s, not a channel", target.Type())
	}
	return vm.push(ch.Ch.Receive())
}
