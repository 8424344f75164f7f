package parser

import (
	"testing"

	"github.com/MatthewMacomber/EngageLang/internal/lexer"
)

// FuzzParse checks that the front end never panics and fails fast:
// any input either yields a program or one positioned diagnostic.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"let x be 5.",
		"to add with a, b:\n    return a plus b.\nend",
		`if x is greater than 10 then print with "big". otherwise print with "small". end`,
		"while i is less than 5:\n    set i to i plus 1.\nend",
		"define a record named Point:\n    let x be 0.\nend",
		"create a channel named c.\nrun concurrently:\n    send 1 through c.\nend",
		"let v be new Point with x: 1.",
		"let n be number with text or return error.",
		`let s be "unterminated`,
		"let x be ((((1)))).",
		"set a.b.c to 1.",
		"is greater than or equal to",
		".......",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		tokens := lexer.New(input).Tokenize()
		if len(tokens) == 0 {
			t.Fatal("token stream must at least contain EOF")
		}

		p := New(tokens)
		program := p.ParseProgram()
		if err := p.Err(); err != nil {
			if err.Message == "" {
				t.Errorf("diagnostic without a message for %q", input)
			}
			return
		}
		if program == nil {
			t.Fatalf("no program and no diagnostic for %q", input)
		}
		// Rendering must not panic either.
		_ = program.String()
	})
}
