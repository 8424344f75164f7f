package config

// Limits shared by the parser and both execution engines.
const (
	// MaxExpressionDepth bounds parser recursion so pathological
	// nesting fails with a diagnostic instead of a stack overflow.
	MaxExpressionDepth = 500

	// MaxCallDepth bounds user-level call recursion in the evaluator
	// and the VM frame stack.
	MaxCallDepth = 10000

	// VMStackSize is the operand stack capacity of one VM instance.
	VMStackSize = 4096
)

const (
	SourceFileExt   = ".engage"
	BytecodeFileExt = ".ebc"
	ConfigFileName  = "engage.yaml"
)

// Backend names accepted by configuration and the CLI.
const (
	BackendTree = "tree"
	BackendVM   = "vm"
)

// Process exit codes. Source errors and runtime errors are
// distinguishable to calling scripts.
const (
	ExitOK           = 0
	ExitSourceError  = 65
	ExitRuntimeError = 70
)
