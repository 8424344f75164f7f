package evaluator

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// RegisterBuiltins installs the host function table into an
// environment, usually the global one.
func RegisterBuiltins(env *Environment) {
	for name, fn := range builtins {
		env.Set(name, &Builtin{Name: name, Fn: fn})
	}
}

var builtins = map[string]BuiltinFunction{
	"print": func(e *Evaluator, args ...Object) Object {
		for _, arg := range args {
			e.printLine(ToText(arg))
		}
		return NONE
	},

	"input": func(e *Evaluator, args ...Object) Object {
		if len(args) > 0 {
			e.print(ToText(args[0]))
		}
		line, err := e.In.ReadString('\n')
		if err != nil && line == "" {
			return &String{Value: ""}
		}
		return &String{Value: strings.TrimRight(line, "\r\n")}
	},

	// number parses text into a Number, reporting failure as an Error
	// result rather than a runtime fault.
	"number": func(e *Evaluator, args ...Object) Object {
		if len(args) != 1 {
			return errResult("number expects one argument")
		}
		switch v := args[0].(type) {
		case *Number:
			return &Result{IsOk: true, Value: v}
		case *String:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
			if err != nil {
				return errResult("cannot convert '" + v.Value + "' to a number")
			}
			return &Result{IsOk: true, Value: &Number{Value: parsed}}
		default:
			return errResult("cannot convert " + string(args[0].Type()) + " to a number")
		}
	},

	"text": func(e *Evaluator, args ...Object) Object {
		if len(args) != 1 {
			return e.runtimeError(ErrArityMismatch, "text expects one argument")
		}
		return &String{Value: ToText(args[0])}
	},

	"type_of": func(e *Evaluator, args ...Object) Object {
		if len(args) != 1 {
			return e.runtimeError(ErrArityMismatch, "type_of expects one argument")
		}
		switch v := args[0].(type) {
		case *RecordInstance:
			return &String{Value: v.TypeDesc.Name}
		case *Result:
			if v.IsOk {
				return &String{Value: "Ok"}
			}
			return &String{Value: "Error"}
		default:
			return &String{Value: kindDisplayName(args[0])}
		}
	},

	"length": func(e *Evaluator, args ...Object) Object {
		if len(args) != 1 {
			return e.runtimeError(ErrArityMismatch, "length expects one argument")
		}
		switch v := args[0].(type) {
		case *String:
			return &Number{Value: float64(len(v.Value))}
		case *Vector:
			return &Number{Value: float64(len(v.Elements))}
		case *Table:
			return &Number{Value: float64(len(v.Pairs))}
		default:
			return e.runtimeError(ErrTypeMismatch, "length expects a string, vector or table, got %s", args[0].Type())
		}
	},

	"get": func(e *Evaluator, args ...Object) Object {
		if len(args) != 2 {
			return e.runtimeError(ErrArityMismatch, "get expects a collection and a key")
		}
		switch coll := args[0].(type) {
		case *Vector:
			idx, ok := args[1].(*Number)
			if !ok {
				return e.runtimeError(ErrTypeMismatch, "vector index must be a number")
			}
			i := int(idx.Value)
			if i < 0 || i >= len(coll.Elements) {
				return NONE
			}
			return coll.Elements[i]
		case *Table:
			key, ok := args[1].(*String)
			if !ok {
				return e.runtimeError(ErrTypeMismatch, "table key must be a string")
			}
			if value, ok := coll.Pairs[key.Value]; ok {
				return value
			}
			return NONE
		default:
			return e.runtimeError(ErrTypeMismatch, "get expects a vector or table, got %s", args[0].Type())
		}
	},

	"put": func(e *Evaluator, args ...Object) Object {
		if len(args) != 3 {
			return e.runtimeError(ErrArityMismatch, "put expects a collection, a key and a value")
		}
		switch coll := args[0].(type) {
		case *Vector:
			idx, ok := args[1].(*Number)
			if !ok {
				return e.runtimeError(ErrTypeMismatch, "vector index must be a number")
			}
			i := int(idx.Value)
			if i < 0 || i >= len(coll.Elements) {
				return e.runtimeError(ErrTypeMismatch, "vector index %d out of range", i)
			}
			coll.Elements[i] = args[2]
			return NONE
		case *Table:
			key, ok := args[1].(*String)
			if !ok {
				return e.runtimeError(ErrTypeMismatch, "table key must be a string")
			}
			coll.Pairs[key.Value] = args[2]
			return NONE
		default:
			return e.runtimeError(ErrTypeMismatch, "put expects a vector or table, got %s", args[0].Type())
		}
	},

	"push": func(e *Evaluator, args ...Object) Object {
		if len(args) != 2 {
			return e.runtimeError(ErrArityMismatch, "push expects a vector and a value")
		}
		vec, ok := args[0].(*Vector)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "push expects a vector, got %s", args[0].Type())
		}
		vec.Elements = append(vec.Elements, args[1])
		return NONE
	},

	// pop removes and returns the last element, None when empty.
	"pop": func(e *Evaluator, args ...Object) Object {
		if len(args) != 1 {
			return e.runtimeError(ErrArityMismatch, "pop expects one vector")
		}
		vec, ok := args[0].(*Vector)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "pop expects a vector, got %s", args[0].Type())
		}
		if len(vec.Elements) == 0 {
			return NONE
		}
		last := vec.Elements[len(vec.Elements)-1]
		vec.Elements = vec.Elements[:len(vec.Elements)-1]
		return last
	},

	"keys": func(e *Evaluator, args ...Object) Object {
		if len(args) != 1 {
			return e.runtimeError(ErrArityMismatch, "keys expects one table")
		}
		tbl, ok := args[0].(*Table)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "keys expects a table, got %s", args[0].Type())
		}
		names := make([]string, 0, len(tbl.Pairs))
		for k := range tbl.Pairs {
			names = append(names, k)
		}
		// Deterministic order for scripts that print key lists.
		sort.Strings(names)
		elements := make([]Object, len(names))
		for i, k := range names {
			elements[i] = &String{Value: k}
		}
		return &Vector{Elements: elements}
	},

	// values mirrors keys: the table's values in key-sorted order.
	"values": func(e *Evaluator, args ...Object) Object {
		if len(args) != 1 {
			return e.runtimeError(ErrArityMismatch, "values expects one table")
		}
		tbl, ok := args[0].(*Table)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "values expects a table, got %s", args[0].Type())
		}
		names := make([]string, 0, len(tbl.Pairs))
		for k := range tbl.Pairs {
			names = append(names, k)
		}
		sort.Strings(names)
		elements := make([]Object, len(names))
		for i, k := range names {
			elements[i] = tbl.Pairs[k]
		}
		return &Vector{Elements: elements}
	},

	"remove": func(e *Evaluator, args ...Object) Object {
		if len(args) != 2 {
			return e.runtimeError(ErrArityMismatch, "remove expects a table and a key")
		}
		tbl, ok := args[0].(*Table)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "remove expects a table, got %s", args[0].Type())
		}
		key, ok := args[1].(*String)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "table key must be a string")
		}
		value, found := tbl.Pairs[key.Value]
		if !found {
			return NONE
		}
		delete(tbl.Pairs, key.Value)
		return value
	},

	"has_key": func(e *Evaluator, args ...Object) Object {
		if len(args) != 2 {
			return e.runtimeError(ErrArityMismatch, "has_key expects a table and a key")
		}
		tbl, ok := args[0].(*Table)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "has_key expects a table, got %s", args[0].Type())
		}
		key, ok := args[1].(*String)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "table key must be a string")
		}
		_, found := tbl.Pairs[key.Value]
		return boolToNumber(found)
	},

	"join": func(e *Evaluator, args ...Object) Object {
		if len(args) != 2 {
			return e.runtimeError(ErrArityMismatch, "join expects a vector and a separator")
		}
		vec, ok := args[0].(*Vector)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "join expects a vector, got %s", args[0].Type())
		}
		sep, ok := args[1].(*String)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "join separator must be a string")
		}
		parts := make([]string, len(vec.Elements))
		for i, elem := range vec.Elements {
			parts[i] = ToText(elem)
		}
		return &String{Value: strings.Join(parts, sep.Value)}
	},

	"split": func(e *Evaluator, args ...Object) Object {
		if len(args) != 2 {
			return e.runtimeError(ErrArityMismatch, "split expects a string and a separator")
		}
		str, ok := args[0].(*String)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "split expects a string, got %s", args[0].Type())
		}
		sep, ok := args[1].(*String)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "split separator must be a string")
		}
		parts := strings.Split(str.Value, sep.Value)
		elements := make([]Object, len(parts))
		for i, part := range parts {
			elements[i] = &String{Value: part}
		}
		return &Vector{Elements: elements}
	},

	"to_upper": stringMapBuiltin("to_upper", strings.ToUpper),
	"to_lower": stringMapBuiltin("to_lower", strings.ToLower),
	"trim":     stringMapBuiltin("trim", strings.TrimSpace),

	"substring": func(e *Evaluator, args ...Object) Object {
		if len(args) != 3 {
			return e.runtimeError(ErrArityMismatch, "substring expects a string, a start and an end")
		}
		str, ok := args[0].(*String)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "substring expects a string, got %s", args[0].Type())
		}
		start, ok1 := args[1].(*Number)
		end, ok2 := args[2].(*Number)
		if !ok1 || !ok2 {
			return e.runtimeError(ErrTypeMismatch, "substring bounds must be numbers")
		}
		s, t := int(start.Value), int(end.Value)
		if s < 0 {
			s = 0
		}
		if t > len(str.Value) {
			t = len(str.Value)
		}
		if s > t {
			return &String{Value: ""}
		}
		return &String{Value: str.Value[s:t]}
	},

	"sqrt":  numberMapBuiltin("sqrt", math.Sqrt),
	"floor": numberMapBuiltin("floor", math.Floor),
	"ceil":  numberMapBuiltin("ceil", math.Ceil),
	"abs":   numberMapBuiltin("abs", math.Abs),

	"pow": numberPairBuiltin("pow", math.Pow),
	"min": numberPairBuiltin("min", math.Min),
	"max": numberPairBuiltin("max", math.Max),

	// random_id yields a fresh unique identifier string, handy for
	// correlating task output in concurrent scripts.
	"random_id": func(e *Evaluator, args ...Object) Object {
		return &String{Value: uuid.NewString()}
	},
}

func stringMapBuiltin(name string, fn func(string) string) BuiltinFunction {
	return func(e *Evaluator, args ...Object) Object {
		if len(args) != 1 {
			return e.runtimeError(ErrArityMismatch, "%s expects one argument", name)
		}
		str, ok := args[0].(*String)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "%s expects a string, got %s", name, args[0].Type())
		}
		return &String{Value: fn(str.Value)}
	}
}

func numberMapBuiltin(name string, fn func(float64) float64) BuiltinFunction {
	return func(e *Evaluator, args ...Object) Object {
		if len(args) != 1 {
			return e.runtimeError(ErrArityMismatch, "%s expects one argument", name)
		}
		num, ok := args[0].(*Number)
		if !ok {
			return e.runtimeError(ErrTypeMismatch, "%s expects a number, got %s", name, args[0].Type())
		}
		return &Number{Value: fn(num.Value)}
	}
}

func numberPairBuiltin(name string, fn func(float64, float64) float64) BuiltinFunction {
	return func(e *Evaluator, args ...Object) Object {
		if len(args) != 2 {
			return e.runtimeError(ErrArityMismatch, "%s expects two arguments", name)
		}
		a, ok1 := args[0].(*Number)
		b, ok2 := args[1].(*Number)
		if !ok1 || !ok2 {
			return e.runtimeError(ErrTypeMismatch, "%s expects numbers", name)
		}
		return &Number{Value: fn(a.Value, b.Value)}
	}
}

func errResult(message string) *Result {
	return &Result{IsOk: false, Value: &String{Value: message}}
}

func kindDisplayName(obj Object) string {
	switch obj.(type) {
	case *Number:
		return "Number"
	case *String:
		return "String"
	case *Vector:
		return "Vector"
	case *Table:
		return "Table"
	case *None:
		return "None"
	case *Function, *Builtin, *BoundMethod:
		return "Function"
	case *Channel:
		return "Channel"
	case *Task:
		return "Task"
	case *RecordType:
		return "RecordType"
	default:
		return string(obj.Type())
	}
}

