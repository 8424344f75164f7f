package evaluator

import "sync"

// Environment is one frame of the scope chain. The chain is shared by
// the tree-walking evaluator and the VM, so both engines observe the
// same scoping semantics. The mutex makes individual reads and writes
// safe across tasks; coordinated access is the program's business.
type Environment struct {
	mu    sync.RWMutex
	store map[string]Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{store: make(map[string]Object), outer: outer}
}

// Get resolves a name through the chain, innermost first.
func (e *Environment) Get(name string) (Object, bool) {
	e.mu.RLock()
	obj, ok := e.store[name]
	e.mu.RUnlock()
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return obj, ok
}

// Set binds a name in this frame, shadowing any outer binding of the
// same name.
func (e *Environment) Set(name string, val Object) {
	e.mu.Lock()
	e.store[name] = val
	e.mu.Unlock()
}

// Update rebinds the nearest existing binding of name. It reports
// false when no frame in the chain defines the name.
func (e *Environment) Update(name string, val Object) bool {
	e.mu.Lock()
	if _, ok := e.store[name]; ok {
		e.store[name] = val
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()
	if e.outer != nil {
		return e.outer.Update(name, val)
	}
	return false
}
