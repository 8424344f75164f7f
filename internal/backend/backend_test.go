package backend

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MatthewMacomber/EngageLang/internal/config"
	"github.com/MatthewMacomber/EngageLang/internal/lexer"
	"github.com/MatthewMacomber/EngageLang/internal/parser"
	"github.com/MatthewMacomber/EngageLang/internal/pipeline"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{config.BackendTree, config.BackendTree, true},
		{config.BackendVM, config.BackendVM, true},
		{"", config.BackendVM, true},
		{"jit", "", false},
	}
	for _, tt := range tests {
		b, err := New(tt.name)
		if tt.ok && (err != nil || b.Name() != tt.want) {
			t.Errorf("New(%q) = %v, %v", tt.name, b, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("New(%q) accepted", tt.name)
		}
	}
}

// runPipeline drives the full lex/parse/execute pipeline the way the
// CLI does.
func runPipeline(t *testing.T, backendName, source string) (*pipeline.PipelineContext, *ExecutionProcessor, string) {
	t.Helper()
	b, err := New(backendName)
	if err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	exec := &ExecutionProcessor{Backend: b, ErrOut: &errOut}
	ctx := pipeline.NewContext(source, "test.engage")
	ctx.Out = &out
	ctx.In = strings.NewReader("")

	p := pipeline.NewPipeline(lexer.NewLexerProcessor(), parser.NewParserProcessor(), exec)
	if err := p.Run(ctx); err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	return ctx, exec, out.String()
}

func TestBothBackendsExecute(t *testing.T) {
	source := `
let x be 20.
let y be 22.
print with x plus y.
`
	for _, name := range []string{config.BackendTree, config.BackendVM} {
		_, exec, out := runPipeline(t, name, source)
		if exec.RuntimeErr != nil {
			t.Fatalf("%s: runtime error %v", name, exec.RuntimeErr)
		}
		if out != "42\n" {
			t.Errorf("%s: got output %q, want %q", name, out, "42\n")
		}
	}
}

func TestSyntaxErrorStopsExecution(t *testing.T) {
	ctx, exec, out := runPipeline(t, config.BackendVM, `let x be 1`)
	if !ctx.HasErrors() {
		t.Fatal("expected a diagnostic")
	}
	if out != "" {
		t.Errorf("program output despite syntax error: %q", out)
	}
	if exec.RuntimeErr != nil || exec.Result != nil {
		t.Error("execution stage ran on a failed parse")
	}
}

func TestRuntimeErrorIsRecorded(t *testing.T) {
	for _, name := range []string{config.BackendTree, config.BackendVM} {
		_, exec, _ := runPipeline(t, name, `let x be 1 divided by 0.`)
		if exec.RuntimeErr == nil {
			t.Fatalf("%s: runtime error not recorded", name)
		}
		if exec.RuntimeErr.Kind != "DivisionByZero" {
			t.Errorf("%s: kind is %q", name, exec.RuntimeErr.Kind)
		}
	}
}
