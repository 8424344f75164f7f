package lexer

import (
	"testing"

	"github.com/MatthewMacomber/EngageLang/internal/token"
)

func TestSingleStatement(t *testing.T) {
	input := `let x be 5.`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.LET, "let"},
		{token.IDENT, "x"},
		{token.BE, "be"},
		{token.NUMBER, "5"},
		{token.PERIOD, "."},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. got=%q, want=%q", i, tok.Type, tt.expectedType)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - wrong lexeme. got=%q, want=%q", i, tok.Lexeme, tt.expectedLexeme)
		}
	}
}

func TestPhraseOperatorsLongestMatch(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.TokenType
	}{
		{"a is b", []token.TokenType{token.IDENT, token.IS, token.IDENT}},
		{"a is not b", []token.TokenType{token.IDENT, token.IS_NOT, token.IDENT}},
		{"a is greater than b", []token.TokenType{token.IDENT, token.GREATER_THAN, token.IDENT}},
		{"a is greater than or equal to b", []token.TokenType{token.IDENT, token.GREATER_EQ, token.IDENT}},
		{"a is less than or equal to b", []token.TokenType{token.IDENT, token.LESS_EQ, token.IDENT}},
		{"a is an Error", []token.TokenType{token.IDENT, token.IS_AN, token.ERROR}},
		{"a divided by b", []token.TokenType{token.IDENT, token.DIVIDED_BY, token.IDENT}},
		{"a concatenated with b", []token.TokenType{token.IDENT, token.CONCAT, token.IDENT}},
		// A phrase prefix that does not complete falls back to single
		// words.
		{"a is greater happiness", []token.TokenType{token.IDENT, token.IS, token.IDENT, token.IDENT}},
		{"the ok value of r", []token.TokenType{token.OK_VALUE_OF, token.IDENT}},
		{"the error message of r", []token.TokenType{token.ERR_MSG_OF, token.IDENT}},
	}

	for _, tt := range tests {
		tokens := New(tt.input).Tokenize()
		// Strip the trailing EOF for comparison.
		tokens = tokens[:len(tokens)-1]
		if len(tokens) != len(tt.expected) {
			t.Fatalf("%q: got %d tokens, want %d: %+v", tt.input, len(tokens), len(tt.expected), tokens)
		}
		for i, want := range tt.expected {
			if tokens[i].Type != want {
				t.Errorf("%q: token %d is %q, want %q", tt.input, i, tokens[i].Type, want)
			}
		}
	}
}

func TestPeriodVersusMemberDot(t *testing.T) {
	input := `set v.x to v.x plus 1.`
	var types []token.TokenType
	for _, tok := range New(input).Tokenize() {
		types = append(types, tok.Type)
	}
	expected := []token.TokenType{
		token.SET, token.IDENT, token.DOT, token.IDENT,
		token.TO, token.IDENT, token.DOT, token.IDENT,
		token.PLUS, token.NUMBER, token.PERIOD, token.EOF,
	}
	if len(types) != len(expected) {
		t.Fatalf("got %d tokens, want %d: %v", len(types), len(expected), types)
	}
	for i, want := range expected {
		if types[i] != want {
			t.Errorf("token %d is %q, want %q", i, types[i], want)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{"42", "42"},
		{"3.25", "3.25"},
		{"0.5", "0.5"},
	}
	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != token.NUMBER {
			t.Fatalf("%q: got type %q, want NUMBER", tt.input, tok.Type)
		}
		if tok.Lexeme != tt.literal {
			t.Errorf("%q: got lexeme %q, want %q", tt.input, tok.Lexeme, tt.literal)
		}
	}
}

func TestNumberFollowedByPeriod(t *testing.T) {
	tokens := New("let x be 5.").Tokenize()
	if tokens[3].Type != token.NUMBER || tokens[3].Lexeme != "5" {
		t.Fatalf("number token wrong: %+v", tokens[3])
	}
	if tokens[4].Type != token.PERIOD {
		t.Fatalf("statement terminator missing, got %+v", tokens[4])
	}
}

func TestStrings(t *testing.T) {
	tok := New(`"hello world"`).NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("got type %q, want STRING", tok.Type)
	}
	if tok.Literal != "hello world" {
		t.Errorf("got literal %q, want %q", tok.Literal, "hello world")
	}

	tok = New(`"line\nbreak"`).NextToken()
	if tok.Literal != "line\nbreak" {
		t.Errorf("escape not processed: got %q", tok.Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	tokens := New(`let s be "oops`).Tokenize()
	var illegal *token.Token
	for i := range tokens {
		if tokens[i].Type == token.ILLEGAL {
			illegal = &tokens[i]
		}
	}
	if illegal == nil {
		t.Fatal("expected an ILLEGAL token for the unterminated string")
	}
	if illegal.Literal != "unterminated string literal" {
		t.Errorf("got message %q", illegal.Literal)
	}
}

func TestComments(t *testing.T) {
	input := `
// a line comment
let x be 1. /* a block
comment */ let y be 2.
`
	var idents []string
	for _, tok := range New(input).Tokenize() {
		if tok.Type == token.IDENT {
			idents = append(idents, tok.Lexeme)
		}
	}
	if len(idents) != 2 || idents[0] != "x" || idents[1] != "y" {
		t.Errorf("comments leaked into the token stream: %v", idents)
	}
}

func TestPositions(t *testing.T) {
	input := "let x be 1.\nlet y be 2."
	tokens := New(input).Tokenize()

	// The second `let` starts line 2, column 1.
	var second *token.Token
	count := 0
	for i := range tokens {
		if tokens[i].Type == token.LET {
			count++
			if count == 2 {
				second = &tokens[i]
			}
		}
	}
	if second == nil {
		t.Fatal("second let not found")
	}
	if second.Line != 2 || second.Column != 1 {
		t.Errorf("got position %d:%d, want 2:1", second.Line, second.Column)
	}
}

func TestKeywordsAndResultConstructors(t *testing.T) {
	input := `to if otherwise while end Ok Error new self return`
	expected := []token.TokenType{
		token.TO, token.IF, token.OTHERWISE, token.WHILE, token.END,
		token.OK, token.ERROR, token.NEW, token.SELF, token.RETURN,
	}
	tokens := New(input).Tokenize()
	for i, want := range expected {
		if tokens[i].Type != want {
			t.Errorf("token %d is %q, want %q", i, tokens[i].Type, want)
		}
	}
}

func TestSymbolOperatorAliases(t *testing.T) {
	tests := []struct {
		input          string
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{"a + b", token.PLUS, "plus"},
		{"a - b", token.MINUS, "minus"},
		{"a * b", token.TIMES, "times"},
		{"a / b", token.DIVIDED_BY, "divided by"},
		{"a % b", token.MODULO, "modulo"},
		{"a == b", token.IS, "is"},
		{"a != b", token.IS_NOT, "is not"},
		{"a > b", token.GREATER_THAN, "is greater than"},
		{"a < b", token.LESS_THAN, "is less than"},
		{"a >= b", token.GREATER_EQ, "is greater than or equal to"},
		{"a <= b", token.LESS_EQ, "is less than or equal to"},
	}

	for _, tt := range tests {
		tokens := New(tt.input).Tokenize()
		if len(tokens) != 4 {
			t.Fatalf("input %q: got %d tokens, want 4", tt.input, len(tokens))
		}
		op := tokens[1]
		if op.Type != tt.expectedType {
			t.Errorf("input %q: operator type is %q, want %q", tt.input, op.Type, tt.expectedType)
		}
		if op.Lexeme != tt.expectedLexeme {
			t.Errorf("input %q: operator lexeme is %q, want %q", tt.input, op.Lexeme, tt.expectedLexeme)
		}
	}
}

func TestBareEqualsIsIllegal(t *testing.T) {
	tokens := New("a = b").Tokenize()
	if tokens[1].Type != token.ILLEGAL {
		t.Fatalf("got %q, want ILLEGAL", tokens[1].Type)
	}
}
