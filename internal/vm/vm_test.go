package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MatthewMacomber/EngageLang/internal/ast"
	"github.com/MatthewMacomber/EngageLang/internal/evaluator"
	"github.com/MatthewMacomber/EngageLang/internal/lexer"
	"github.com/MatthewMacomber/EngageLang/internal/parser"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(input).Tokenize())
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatalf("parse error: %s", err.Error())
	}
	return program
}

func compile(t *testing.T, input string) *Chunk {
	t.Helper()
	chunk, err := Compile(parse(t, input))
	if err != nil {
		t.Fatalf("compile error: %s", err)
	}
	return chunk
}

// runVM compiles and executes a program, returning its result and
// printed output.
func runVM(t *testing.T, input string) (evaluator.Object, string) {
	t.Helper()
	var out bytes.Buffer
	host := evaluator.New(&out)
	env := evaluator.NewEnvironment()
	evaluator.RegisterBuiltins(env)

	result, errObj := New(host).Run(compile(t, input), env)
	host.Scheduler.Wait()
	if errObj != nil {
		t.Fatalf("runtime error: %s", errObj.Report())
	}
	return result, out.String()
}

func runVMError(t *testing.T, input string) *evaluator.Error {
	t.Helper()
	var out bytes.Buffer
	host := evaluator.New(&out)
	env := evaluator.NewEnvironment()
	evaluator.RegisterBuiltins(env)

	_, errObj := New(host).Run(compile(t, input), env)
	host.Scheduler.Wait()
	if errObj == nil {
		t.Fatalf("expected a runtime error for %q", input)
	}
	return errObj
}

func testNumberObject(t *testing.T, obj evaluator.Object, expected float64) {
	t.Helper()
	num, ok := obj.(*evaluator.Number)
	if !ok {
		t.Fatalf("object is not Number. got=%T (%+v)", obj, obj)
	}
	if num.Value != expected {
		t.Errorf("wrong value. got=%v, want=%v", num.Value, expected)
	}
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"return 2 plus 3 times 4.", 14},
		{"return (2 plus 3) times 4.", 20},
		{"return 10 modulo 3.", 1},
		{"return minus 5 plus 10.", 5},
		{"return 2 is less than 3.", 1},
		{"return 2 is greater than or equal to 3.", 0},
		{"return 1 is 1 and 0 is 1.", 0},
		{"return 0 is 1 or 1 is 1.", 1},
		{"return not 0.", 1},
	}
	for _, tt := range tests {
		result, _ := runVM(t, tt.input)
		testNumberObject(t, result, tt.expected)
	}
}

func TestShortCircuit(t *testing.T) {
	// The right side must not run when the left side decides.
	input := `
to boom:
    return 1 divided by 0.
end
return 0 and boom().
`
	result, _ := runVM(t, input)
	testNumberObject(t, result, 0)

	input = `
to boom:
    return 1 divided by 0.
end
return 1 or boom().
`
	result, _ = runVM(t, input)
	testNumberObject(t, result, 1)
}

func TestConditionalAndLoop(t *testing.T) {
	input := `
let total be 0.
let i be 0.
while i is less than 10:
    set i to i plus 1.
    if i modulo 2 is 0 then
        set total to total plus i.
    end
end
return total.
`
	result, _ := runVM(t, input)
	testNumberObject(t, result, 30)
}

func TestFunctionCallsAndClosures(t *testing.T) {
	input := `
to make_adder with n:
    to add with x:
        return x plus n.
    end
    return add.
end
let add5 be make_adder with 5.
return add5 with 37.
`
	result, _ := runVM(t, input)
	testNumberObject(t, result, 42)
}

func TestRecordsOnVM(t *testing.T) {
	input := `
define a record named Counter:
    let count be 0.
    to bump:
        set self.count to self.count plus 1.
        return self.count.
    end
end
let c be new Counter.
c.bump.
c.bump.
return c.bump.
`
	result, _ := runVM(t, input)
	testNumberObject(t, result, 3)
}

func TestOrReturnOnVM(t *testing.T) {
	input := `
to parse with text:
    let n be number with text or return error.
    return Ok with n times 2.
end
let good be parse with "21".
let bad be parse with "nope".
print with the ok value of good.
print with bad is an Error.
`
	_, out := runVM(t, input)
	if out != "42\n1\n" {
		t.Errorf("got output %q, want %q", out, "42\n1\n")
	}
}

func TestVMRuntimeErrors(t *testing.T) {
	errObj := runVMError(t, "let x be 5 divided by 0.")
	if errObj.Kind != evaluator.ErrDivisionByZero {
		t.Errorf("kind is %q, want %q", errObj.Kind, evaluator.ErrDivisionByZero)
	}
	if errObj.Line != 1 {
		t.Errorf("line is %d, want 1", errObj.Line)
	}

	errObj = runVMError(t, "let y be ghost.")
	if errObj.Kind != evaluator.ErrUndefinedVariable {
		t.Errorf("kind is %q, want %q", errObj.Kind, evaluator.ErrUndefinedVariable)
	}
}

func TestVMErrorCallStack(t *testing.T) {
	input := `
to inner:
    return 1 divided by 0.
end
to outer:
    return inner().
end
outer.
`
	errObj := runVMError(t, input)
	report := errObj.Report()
	if !strings.Contains(report, "inner") || !strings.Contains(report, "outer") {
		t.Errorf("report missing frames: %q", report)
	}
}

// roundTripPrograms must print identical output on both engines.
var roundTripPrograms = map[string]string{
	"member set order": `
define a record named Box:
    let x be 0.
end
define a record named Holder:
    let inner be 0.
    to pick:
        print with "target".
        return self.inner.
    end
end
to fresh_value:
    print with "value".
    return 7.
end
let h be new Holder.
set h.inner to new Box.
set h.pick.x to fresh_value().
print with h.inner.x.
`,
	"fibonacci": `
to fibonacci with n:
    if n is less than 2 then
        return n.
    otherwise
        let a be fibonacci with n minus 1.
        let b be fibonacci with n minus 2.
        return a plus b.
    end
end
let result be fibonacci with 12.
print with result.
`,
	"shadowing": `
let x be 1.
to show:
    let x be 2.
    print with x.
end
show.
print with x.
`,
	"closures": `
to make_counter:
    let count be 0.
    to increment:
        set count to count plus 1.
        return count.
    end
    return increment.
end
let first be make_counter().
let second be make_counter().
print with first().
print with first().
print with second().
`,
	"records": `
define a record named Vector2:
    let x be 0.
    let y be 0.
    to magnitude_squared:
        return self.x times self.x plus self.y times self.y.
    end
end
let v be new Vector2 with x: 3, y: 4.
print with v.magnitude_squared.
set v.x to 6.
print with v.magnitude_squared.
`,
	"results": `
to safe_divide with a, b:
    if b is 0 then
        return Error with "Cannot divide by zero".
    end
    return Ok with a divided by b.
end
let good be safe_divide with 10, 2.
if good is an Ok then
    print with the ok value of good.
end
let bad be safe_divide with 1, 0.
if bad is an Error then
    print with the error message of bad.
end
`,
	"collections": `
let items be [1, 2, 3].
push with items, 4.
print with length with items.
let ages be {alice: 30}.
print with get with ages, "alice".
print with "x: " concatenated with 42.
`,
	"channels": `
create a channel named my_channel.
run concurrently:
    send "Hello" through my_channel.
    send "from" through my_channel.
    send "the" through my_channel.
    send "concurrent" through my_channel.
    send "task!" through my_channel.
    send "DONE" through my_channel.
end
let msg be receive from my_channel.
while msg is not "DONE":
    print with msg.
    set msg to receive from my_channel.
end
`,
}

func TestEnginesAgree(t *testing.T) {
	for name, program := range roundTripPrograms {
		t.Run(name, func(t *testing.T) {
			var treeOut bytes.Buffer
			host := evaluator.New(&treeOut)
			env := evaluator.NewEnvironment()
			evaluator.RegisterBuiltins(env)
			result := host.Eval(parse(t, program), env)
			host.Scheduler.Wait()
			if evaluator.IsError(result) {
				t.Fatalf("evaluator failed: %+v", result)
			}

			_, vmOut := runVM(t, program)
			if vmOut != treeOut.String() {
				t.Errorf("engines disagree.\n tree: %q\n   vm: %q", treeOut.String(), vmOut)
			}
		})
	}
}

func TestJumpPatching(t *testing.T) {
	chunk := compile(t, `
if 1 then
    print with "a".
otherwise
    print with "b".
end
`)
	// Every jump operand must land inside the chunk.
	for offset := 0; offset < len(chunk.Code); {
		op := Opcode(chunk.Code[offset])
		offset++
		for i := 0; i < op.OperandCount(); i++ {
			operand := chunk.ReadOperand(offset)
			offset += 2
			switch op {
			case OP_JUMP, OP_JUMP_IF_FALSE, OP_JUMP_IF_TRUE:
				if operand <= 0 || operand > len(chunk.Code) {
					t.Errorf("%s target %d outside chunk of %d bytes", op, operand, len(chunk.Code))
				}
			}
		}
	}
}

func TestConstantDeduplication(t *testing.T) {
	chunk := compile(t, `
let a be 7.
let b be 7.
let c be "x".
let d be "x".
`)
	numbers, strs := 0, 0
	for _, constant := range chunk.Constants {
		switch v := constant.(type) {
		case *evaluator.Number:
			if v.Value == 7 {
				numbers++
			}
		case *evaluator.String:
			if v.Value == "x" {
				strs++
			}
		}
	}
	if numbers != 1 {
		t.Errorf("number 7 interned %d times, want 1", numbers)
	}
	if strs != 1 {
		t.Errorf("string \"x\" interned %d times, want 1", strs)
	}
}

func TestDisassemble(t *testing.T) {
	chunk := compile(t, `
to double with n:
    return n times 2.
end
print with double with 4.
`)
	listing := chunk.Disassemble()
	for _, want := range []string{"== main ==", "== double ==", "OP_MAKE_FUNCTION", "OP_CALL", "OP_HALT"} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	input := `
to double with n:
    return n times 2.
end
print with double with 21.
`
	chunk := compile(t, input)

	var buf bytes.Buffer
	if err := WriteChunk(&buf, chunk); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := ReadChunk(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(loaded.Code, chunk.Code) {
		t.Fatal("code changed across serialization")
	}

	var out bytes.Buffer
	host := evaluator.New(&out)
	env := evaluator.NewEnvironment()
	evaluator.RegisterBuiltins(env)
	if _, errObj := New(host).Run(loaded, env); errObj != nil {
		t.Fatalf("runtime error: %s", errObj.Report())
	}
	if out.String() != "42\n" {
		t.Errorf("got output %q, want %q", out.String(), "42\n")
	}
}

func TestBadMagicRejected(t *testing.T) {
	_, err := ReadChunk(bytes.NewReader([]byte("NOPE....")))
	if err == nil {
		t.Fatal("expected an error for a non-bytecode stream")
	}
}
