package lexer

import (
	"github.com/MatthewMacomber/EngageLang/internal/token"
)

// Lexer turns source text into a flat token slice. Multi-word operator
// phrases ("is greater than or equal to", "divided by", ...) are
// collapsed into single tokens here, using longest match over whole
// words, so the parser never has to reassemble them.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Tokenize consumes the whole input and appends an EOF token. The
// resulting slice is what downstream stages iterate over, so a parse
// can always restart from the beginning without re-lexing.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line, column := l.line, l.column

	switch {
	case l.ch == 0:
		return token.Token{Type: token.EOF, Line: line, Column: column}
	case l.ch == '"':
		return l.readString(line, column)
	case isDigit(l.ch):
		return l.readNumber(line, column)
	case isLetter(l.ch):
		return l.readWordToken(line, column)
	}

	var tok token.Token
	switch l.ch {
	case '+':
		tok = l.symbolToken(token.PLUS, "plus", line, column)
	case '-':
		tok = l.symbolToken(token.MINUS, "minus", line, column)
	case '*':
		tok = l.symbolToken(token.TIMES, "times", line, column)
	case '/':
		// Comments were consumed above, so a surviving slash is division.
		tok = l.symbolToken(token.DIVIDED_BY, "divided by", line, column)
	case '%':
		tok = l.symbolToken(token.MODULO, "modulo", line, column)
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.symbolToken(token.IS, "is", line, column)
		} else {
			tok = token.Token{
				Type:    token.ILLEGAL,
				Lexeme:  "=",
				Literal: "unrecognized character '=' (did you mean '==' or 'is'?)",
				Line:    line,
				Column:  column,
			}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.symbolToken(token.IS_NOT, "is not", line, column)
		} else {
			tok = token.Token{
				Type:    token.ILLEGAL,
				Lexeme:  "!",
				Literal: "unrecognized character '!' (did you mean '!=' or 'is not'?)",
				Line:    line,
				Column:  column,
			}
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.symbolToken(token.GREATER_EQ, "is greater than or equal to", line, column)
		} else {
			tok = l.symbolToken(token.GREATER_THAN, "is greater than", line, column)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = l.symbolToken(token.LESS_EQ, "is less than or equal to", line, column)
		} else {
			tok = l.symbolToken(token.LESS_THAN, "is less than", line, column)
		}
	case '.':
		// A period glued between an identifier character and a letter
		// is member access; everywhere else it terminates a statement.
		if l.position > 0 && isIdentChar(l.input[l.position-1]) && isLetter(l.peekChar()) {
			tok = l.makeToken(token.DOT, line, column)
		} else {
			tok = l.makeToken(token.PERIOD, line, column)
		}
	case ':':
		tok = l.makeToken(token.COLON, line, column)
	case ',':
		tok = l.makeToken(token.COMMA, line, column)
	case '(':
		tok = l.makeToken(token.LPAREN, line, column)
	case ')':
		tok = l.makeToken(token.RPAREN, line, column)
	case '[':
		tok = l.makeToken(token.LBRACKET, line, column)
	case ']':
		tok = l.makeToken(token.RBRACKET, line, column)
	case '{':
		tok = l.makeToken(token.LBRACE, line, column)
	case '}':
		tok = l.makeToken(token.RBRACE, line, column)
	default:
		tok = token.Token{
			Type:    token.ILLEGAL,
			Lexeme:  string(l.ch),
			Literal: "unrecognized character '" + string(l.ch) + "'",
			Line:    line,
			Column:  column,
		}
	}
	l.readChar()
	return tok
}

func (l *Lexer) makeToken(tt token.TokenType, line, column int) token.Token {
	return token.Token{Type: tt, Lexeme: string(l.ch), Line: line, Column: column}
}

// symbolToken produces the symbolic spelling of a word operator. The
// lexeme is normalized to the word form so downstream stages see one
// spelling per operator.
func (l *Lexer) symbolToken(tt token.TokenType, lexeme string, line, column int) token.Token {
	return token.Token{Type: tt, Lexeme: lexeme, Line: line, Column: column}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
			continue
		}
		return
	}
}

func (l *Lexer) readString(line, column int) token.Token {
	var out []byte
	l.readChar() // opening quote
	for l.ch != '"' {
		if l.ch == 0 || l.ch == '\n' {
			return token.Token{
				Type:    token.ILLEGAL,
				Lexeme:  string(out),
				Literal: "unterminated string literal",
				Line:    line,
				Column:  column,
			}
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				out = append(out, '\\', l.ch)
			}
		} else {
			out = append(out, l.ch)
		}
		l.readChar()
	}
	l.readChar() // closing quote
	return token.Token{
		Type:    token.STRING,
		Lexeme:  `"` + string(out) + `"`,
		Literal: string(out),
		Line:    line,
		Column:  column,
	}
}

func (l *Lexer) readNumber(line, column int) token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	text := l.input[start:l.position]
	return token.Token{Type: token.NUMBER, Lexeme: text, Literal: text, Line: line, Column: column}
}

// readWordToken reads one word, then tries to extend it into a
// multi-word operator phrase. The phrase table is ordered longest
// first, so "is greater than or equal to" beats "is greater than"
// which beats "is".
func (l *Lexer) readWordToken(line, column int) token.Token {
	word := l.readWord()

	if token.PhraseStarters[word] {
		for _, phrase := range token.Phrases {
			if phrase.Words[0] != word {
				continue
			}
			if len(phrase.Words) == 1 || l.tryPhraseTail(phrase.Words[1:]) {
				return token.Token{
					Type:   phrase.Type,
					Lexeme: joinWords(phrase.Words),
					Line:   line,
					Column: column,
				}
			}
		}
	}

	return token.Token{
		Type:    token.LookupIdent(word),
		Lexeme:  word,
		Literal: word,
		Line:    line,
		Column:  column,
	}
}

func (l *Lexer) readWord() string {
	start := l.position
	for isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// tryPhraseTail attempts to consume the remaining words of a phrase.
// On failure the lexer state is restored so a shorter phrase (or the
// bare word) can be tried instead.
func (l *Lexer) tryPhraseTail(words []string) bool {
	saved := *l
	for _, want := range words {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if !isLetter(l.ch) {
			*l = saved
			return false
		}
		if l.readWord() != want {
			*l = saved
			return false
		}
	}
	return true
}

func joinWords(words []string) string {
	out := words[0]
	for _, w := range words[1:] {
		out += " " + w
	}
	return out
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}
