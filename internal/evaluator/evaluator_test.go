package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MatthewMacomber/EngageLang/internal/ast"
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

// testEval runs a program and returns its result value and everything
// it printed.
func testEval(t *testing.T, input string) (Object, string) {
	t.Helper()
	var out bytes.Buffer
	e := New(&out)
	env := NewEnvironment()
	RegisterBuiltins(env)
	result := e.Eval(parse(t, input), env)
	e.Scheduler.Wait()
	return result, out.String()
}

// evalError runs a program expected to fail and returns the error.
func evalError(t *testing.T, input string) *Error {
	t.Helper()
	result, _ := testEval(t, input)
	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("expected a runtime error, got %T (%+v)", result, result)
	}
	return errObj
}

func testNumberObject(t *testing.T, obj Object, expected float64) {
	t.Helper()
	num, ok := obj.(*Number)
	if !ok {
		t.Fatalf("object is not Number. got=%T (%+v)", obj, obj)
	}
	if num.Value != expected {
		t.Errorf("wrong value. got=%v, want=%v", num.Value, expected)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"5 plus 5.", 10},
		{"7 minus 2.", 5},
		{"3 times 4.", 12},
		{"10 divided by 4.", 2.5},
		{"10 modulo 3.", 1},
		{"minus 5 plus 10.", 5},
		{"2 plus 3 times 4.", 14},
		{"(2 plus 3) times 4.", 20},
	}
	for _, tt := range tests {
		result, _ := testEval(t, tt.input)
		testNumberObject(t, result, tt.expected)
	}
}

func TestComparisonsYieldNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1 is 1.", 1},
		{"1 is 2.", 0},
		{`"a" is "a".`, 1},
		{"1 is not 2.", 1},
		{"2 is greater than 1.", 1},
		{"2 is less than 1.", 0},
		{"2 is greater than or equal to 2.", 1},
		{"1 is less than or equal to 0.", 0},
		{"1 is 1 and 2 is 2.", 1},
		{"1 is 2 or 2 is 2.", 1},
		{"not 0.", 1},
		{"not 5.", 0},
	}
	for _, tt := range tests {
		result, _ := testEval(t, tt.input)
		testNumberObject(t, result, tt.expected)
	}
}

func TestConcatCoercesOperands(t *testing.T) {
	result, _ := testEval(t, `"total: " concatenated with 42.`)
	str, ok := result.(*String)
	if !ok {
		t.Fatalf("object is not String. got=%T (%+v)", result, result)
	}
	if str.Value != "total: 42" {
		t.Errorf("got %q, want %q", str.Value, "total: 42")
	}
}

func TestFibonacci(t *testing.T) {
	input := `
to fibonacci with n:
    if n is less than 2 then
        return n.
    otherwise
        let a be fibonacci with n minus 1.
        let b be fibonacci with n minus 2.
        return a plus b.
    end
end

let result be fibonacci with 10.
print with result.
`
	_, out := testEval(t, input)
	if out != "55\n" {
		t.Errorf("got output %q, want %q", out, "55\n")
	}
}

func TestShadowing(t *testing.T) {
	input := `
let x be 1.
to show:
    let x be 2.
    print with x.
end
show.
print with x.
`
	_, out := testEval(t, input)
	if out != "2\n1\n" {
		t.Errorf("got output %q, want %q", out, "2\n1\n")
	}
}

func TestClosuresKeepSeparateState(t *testing.T) {
	input := `
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
`
	_, out := testEval(t, input)
	if out != "1\n2\n1\n" {
		t.Errorf("got output %q, want %q", out, "1\n2\n1\n")
	}
}

func TestWhileLoopScoping(t *testing.T) {
	input := `
let i be 0.
let total be 0.
while i is less than 5:
    set i to i plus 1.
    set total to total plus i.
end
print with total.
`
	_, out := testEval(t, input)
	if out != "15\n" {
		t.Errorf("got output %q, want %q", out, "15\n")
	}
}

func TestImplicitReturnIsNone(t *testing.T) {
	input := `
to noop:
    let x be 1.
end
let r be noop().
print with r is an None.
`
	_, out := testEval(t, input)
	if out != "1\n" {
		t.Errorf("got output %q, want %q", out, "1\n")
	}
}

func TestRecords(t *testing.T) {
	input := `
define a record named Vector2:
    let x be 0.
    let y be 0.
    to magnitude_squared:
        return self.x times self.x plus self.y times self.y.
    end
    to scale with factor:
        set self.x to self.x times factor.
        set self.y to self.y times factor.
    end
end

let v be new Vector2 with x: 3, y: 4.
print with v.magnitude_squared.
v.scale with 2.
print with v.x.
print with v.y.

let w be new Vector2.
print with w.x.
`
	_, out := testEval(t, input)
	want := "25\n6\n8\n0\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestRecordReferenceIdentity(t *testing.T) {
	input := `
define a record named Box:
    let value be 0.
end
let a be new Box with value: 1.
let b be a.
set b.value to 9.
print with a.value.
`
	_, out := testEval(t, input)
	if out != "9\n" {
		t.Errorf("got output %q, want %q", out, "9\n")
	}
}

func TestResultHandling(t *testing.T) {
	input := `
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
`
	_, out := testEval(t, input)
	want := "5\nCannot divide by zero\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestOrReturnError(t *testing.T) {
	input := `
to parse_both with a, b:
    let x be number with a or return error.
    let y be number with b or return error.
    return Ok with x plus y.
end

let sum be parse_both with "2", "3".
print with the ok value of sum.

let failed be parse_both with "2", "oops".
print with failed is an Error.
print with the error message of failed.
`
	_, out := testEval(t, input)
	want := "5\n1\ncannot convert 'oops' to a number\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestSetMemberEvaluatesTargetFirst(t *testing.T) {
	input := `
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
`
	_, out := testEval(t, input)
	want := "target\nvalue\n7\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestOrReturnStopsExecution(t *testing.T) {
	input := `
to risky:
    let x be Error with "bad" or return error.
    print with "unreachable".
    return Ok with x.
end

let r be risky().
print with r is an Error.
print with the error message of r.
`
	_, out := testEval(t, input)
	want := "1\nbad\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestChannelFIFO(t *testing.T) {
	input := `
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
`
	_, out := testEval(t, input)
	want := "Hello\nfrom\nthe\nconcurrent\ntask!\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestTaskErrorDoesNotStopMain(t *testing.T) {
	input := `
create a channel named sync.
run concurrently:
    send "ready" through sync.
    let boom be missing_name.
end
let msg be receive from sync.
print with msg.
`
	var out, errOut bytes.Buffer
	e := NewWithIO(&out, &errOut, strings.NewReader(""))
	env := NewEnvironment()
	RegisterBuiltins(env)
	result := e.Eval(parse(t, input), env)
	e.Scheduler.Wait()

	if IsError(result) {
		t.Fatalf("main task failed: %+v", result)
	}
	if out.String() != "ready\n" {
		t.Errorf("got output %q, want %q", out.String(), "ready\n")
	}
	if !strings.Contains(errOut.String(), "UndefinedVariable") {
		t.Errorf("task failure not reported: %q", errOut.String())
	}
}

func TestDivisionByZero(t *testing.T) {
	errObj := evalError(t, "let x be 5 divided by 0.")
	if errObj.Kind != ErrDivisionByZero {
		t.Errorf("kind is %q, want %q", errObj.Kind, ErrDivisionByZero)
	}
	if errObj.Line != 1 {
		t.Errorf("line is %d, want 1", errObj.Line)
	}
}

func TestUndefinedVariable(t *testing.T) {
	errObj := evalError(t, "let x be 1.\nlet y be ghost.")
	if errObj.Kind != ErrUndefinedVariable {
		t.Errorf("kind is %q, want %q", errObj.Kind, ErrUndefinedVariable)
	}
	if !strings.Contains(errObj.Message, "ghost") {
		t.Errorf("message does not name the identifier: %q", errObj.Message)
	}
	if errObj.Line != 2 {
		t.Errorf("line is %d, want 2", errObj.Line)
	}
}

func TestErrorCarriesCallStack(t *testing.T) {
	input := `
to inner:
    return 1 divided by 0.
end
to outer:
    return inner().
end
outer.
`
	errObj := evalError(t, input)
	if errObj.Kind != ErrDivisionByZero {
		t.Fatalf("kind is %q, want %q", errObj.Kind, ErrDivisionByZero)
	}
	if len(errObj.Stack) != 2 {
		t.Fatalf("stack has %d entries, want 2: %+v", len(errObj.Stack), errObj.Stack)
	}
	report := errObj.Report()
	if !strings.Contains(report, "inner") || !strings.Contains(report, "outer") {
		t.Errorf("report missing frames: %q", report)
	}
}

func TestArityMismatch(t *testing.T) {
	input := `
to add with a, b:
    return a plus b.
end
let r be add with 1.
`
	errObj := evalError(t, input)
	if errObj.Kind != ErrArityMismatch {
		t.Errorf("kind is %q, want %q", errObj.Kind, ErrArityMismatch)
	}
}

func TestFieldNotFound(t *testing.T) {
	input := `
define a record named Point:
    let x be 0.
end
let p be new Point.
print with p.z.
`
	errObj := evalError(t, input)
	if errObj.Kind != ErrFieldNotFound {
		t.Errorf("kind is %q, want %q", errObj.Kind, ErrFieldNotFound)
	}
}

func TestVectorAndTableBuiltins(t *testing.T) {
	input := `
let items be ["b", "a", "c"].
push with items, "d".
print with length with items.
print with join with items, "-".

let ages be {alice: 30, bob: 25}.
print with get with ages, "alice".
print with has_key with ages, "carol".
let names be keys with ages.
print with join with names, ",".
`
	_, out := testEval(t, input)
	want := "4\nb-a-c-d\n30\n0\nalice,bob\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestStringBuiltins(t *testing.T) {
	input := `
print with to_upper with "go".
print with substring with "engage", 0, 3.
let parts be split with "a,b,c", ",".
print with join with parts, "|".
`
	_, out := testEval(t, input)
	want := "GO\neng\na|b|c\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestMathBuiltins(t *testing.T) {
	input := `
print with sqrt with 16.
print with pow with 2, 10.
print with min with 3, 7.
print with max with 3, 7.
print with floor with 2.7.
`
	_, out := testEval(t, input)
	want := "4\n1024\n3\n7\n2\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestBareNameInvokesInStatementPosition(t *testing.T) {
	input := `
to greet:
    print with "hi".
end
greet.
let f be greet.
f.
`
	_, out := testEval(t, input)
	if out != "hi\nhi\n" {
		t.Errorf("got output %q, want %q", out, "hi\nhi\n")
	}
}

func TestNumberFormatting(t *testing.T) {
	input := `
print with 3.
print with 3.5.
print with 10 divided by 4.
print with 1 divided by 3.
`
	_, out := testEval(t, input)
	want := "3\n3.5\n2.5\n0.3333333333333333\n"
	if out != want {
		t.Errorf("got output %q, want %q", out, want)
	}
}

func TestSymbolOperatorsMatchWordForms(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"let r be 2 + 3 * 4.", 14},
		{"let r be 10 % 3.", 1},
		{"let r be 7 == 7.", 1},
		{"let r be 7 != 7.", 0},
		{"let r be 8 >= 8.", 1},
		{"let r be 8 < 8.", 0},
	}
	for _, tt := range tests {
		_, out := testEval(t, tt.input+" print with r.")
		want := FormatNumber(tt.expected) + "\n"
		if out != want {
			t.Errorf("input %q: got output %q, want %q", tt.input, out, want)
		}
	}
}

func TestEmptyCollectionsAreFalsy(t *testing.T) {
	input := `
let v be [].
if v then
    print with "full".
otherwise
    print with "empty".
end
let w be [1].
if w then
    print with "full".
end
`
	_, out := testEval(t, input)
	if out != "empty\nfull\n" {
		t.Errorf("got output %q, want %q", out, "empty\nfull\n")
	}
}
