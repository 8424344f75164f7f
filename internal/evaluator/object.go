package evaluator

import (
	"sort"
	"strconv"
	"strings"

	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/runtime"
)

type ObjectType string

const (
	NUMBER_OBJ       ObjectType = "NUMBER"
	STRING_OBJ       ObjectType = "STRING"
	NONE_OBJ         ObjectType = "NONE"
	VECTOR_OBJ       ObjectType = "VECTOR"
	TABLE_OBJ        ObjectType = "TABLE"
	FUNCTION_OBJ     ObjectType = "FUNCTION"
	BUILTIN_OBJ      ObjectType = "BUILTIN"
	RECORD_TYPE_OBJ  ObjectType = "RECORD_TYPE"
	RECORD_OBJ       ObjectType = "RECORD"
	BOUND_METHOD_OBJ ObjectType = "BOUND_METHOD"
	RESULT_OBJ       ObjectType = "RESULT"
	CHANNEL_OBJ      ObjectType = "CHANNEL"
	TASK_OBJ         ObjectType = "TASK"
	RETURN_VALUE_OBJ ObjectType = "RETURN_VALUE"
	ERROR_OBJ        ObjectType = "ERROR"
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

// Number is the single numeric kind; there is no separate integer
// type at the language level.
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return FormatNumber(n.Value) }

// FormatNumber renders integral values without a fractional part, so
// arithmetic over whole numbers prints the way users wrote it.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return strconv.Quote(s.Value) }

type None struct{}

func (n *None) Type() ObjectType { return NONE_OBJ }
func (n *None) Inspect() string  { return "None" }

// NONE is the shared instance for the absent value.
var NONE = &None{}

type Vector struct {
	Elements []Object
}

func (v *Vector) Type() ObjectType { return VECTOR_OBJ }
func (v *Vector) Inspect() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type Table struct {
	Pairs map[string]Object
}

func (t *Table) Type() ObjectType { return TABLE_OBJ }
func (t *Table) Inspect() string {
	keys := make([]string, 0, len(t.Pairs))
	for k := range t.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + t.Pairs[k].Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Function is a user-defined function together with the environment
// captured at its definition site.
type Function struct {
	Name       string
	Parameters []string
	Body       *ast.BlockStatement
	Env        *Environment
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<function " + f.Name + ">" }
func (f *Function) ParamCount() int  { return len(f.Parameters) }

// ParamCounter is implemented by every user-callable that declares a
// fixed parameter list, across both engines. Nullary record methods
// are auto-invoked on field access based on this.
type ParamCounter interface {
	ParamCount() int
}

type BuiltinFunction func(e *Evaluator, args ...Object) Object

type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<builtin " + b.Name + ">" }

// RecordType describes a declared record: field order, default values
// evaluated once at definition time, and methods. A method is an
// evaluator *Function or a VM closure depending on the engine that
// defined the record.
type RecordType struct {
	Name       string
	FieldOrder []string
	Defaults   map[string]Object
	Methods    map[string]Object
}

func (rt *RecordType) Type() ObjectType { return RECORD_TYPE_OBJ }
func (rt *RecordType) Inspect() string  { return "<record " + rt.Name + ">" }

// RecordInstance holds one record's fields. Instances have reference
// identity: binding one to another name aliases the same fields.
type RecordInstance struct {
	TypeDesc *RecordType
	Fields   map[string]Object
}

func (ri *RecordInstance) Type() ObjectType { return RECORD_OBJ }
func (ri *RecordInstance) Inspect() string {
	parts := make([]string, 0, len(ri.TypeDesc.FieldOrder))
	for _, name := range ri.TypeDesc.FieldOrder {
		if v, ok := ri.Fields[name]; ok {
			parts = append(parts, name+": "+v.Inspect())
		}
	}
	return ri.TypeDesc.Name + "{" + strings.Join(parts, ", ") + "}"
}

// BoundMethod pairs a record instance with one of its methods. Method
// may be an evaluator *Function or a VM closure, so both engines can
// dispatch through the same object.
type BoundMethod struct {
	Receiver *RecordInstance
	Method   Object
	Name     string
}

func (bm *BoundMethod) Type() ObjectType { return BOUND_METHOD_OBJ }
func (bm *BoundMethod) Inspect() string {
	return "<method " + bm.Receiver.TypeDesc.Name + "." + bm.Name + ">"
}

// Result is the Ok/Error pair used for recoverable failures. For an
// Error result Value holds the message.
type Result struct {
	IsOk  bool
	Value Object
}

func (r *Result) Type() ObjectType { return RESULT_OBJ }
func (r *Result) Inspect() string {
	if r.IsOk {
		return "Ok(" + r.Value.Inspect() + ")"
	}
	return "Error(" + r.Value.Inspect() + ")"
}

type Channel struct {
	Name string
	Ch   *runtime.Channel[Object]
}

func (c *Channel) Type() ObjectType { return CHANNEL_OBJ }
func (c *Channel) Inspect() string  { return "<channel " + c.Name + ">" }

type Task struct {
	T *runtime.Task
}

func (t *Task) Type() ObjectType { return TASK_OBJ }
func (t *Task) Inspect() string  { return "<task " + t.T.ID() + ">" }

// ReturnValue is the control signal carrying an in-flight return up
// to the nearest enclosing call boundary.
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_VALUE_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// IsTruthy follows the numeric convention of the language: zero and
// None are false, the empty string is false, everything else is true.
func IsTruthy(obj Object) bool {
	switch v := obj.(type) {
	case *None:
		return false
	case *Number:
		return v.Value != 0
	case *String:
		return v.Value != ""
	case *Vector:
		return len(v.Elements) > 0
	case *Table:
		return len(v.Pairs) > 0
	default:
		return true
	}
}

func boolToNumber(b bool) *Number {
	if b {
		return &Number{Value: 1}
	}
	return &Number{Value: 0}
}

// ToText is the display form used by print and string concatenation:
// like Inspect, but strings render without quotes.
func ToText(obj Object) string {
	switch v := obj.(type) {
	case *String:
		return v.Value
	case nil:
		return "None"
	default:
		return obj.Inspect()
	}
}
