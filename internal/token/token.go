package token

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"
	STRING TokenType = "STRING"

	// Punctuation
	PERIOD   TokenType = "PERIOD" // statement terminator
	DOT      TokenType = "DOT"    // member access
	COLON    TokenType = "COLON"
	COMMA    TokenType = "COMMA"
	LPAREN   TokenType = "LPAREN"
	RPAREN   TokenType = "RPAREN"
	LBRACKET TokenType = "LBRACKET"
	RBRACKET TokenType = "RBRACKET"
	LBRACE   TokenType = "LBRACE"
	RBRACE   TokenType = "RBRACE"

	// Keywords
	TO           TokenType = "TO"
	WITH         TokenType = "WITH"
	RETURN       TokenType = "RETURN"
	IF           TokenType = "IF"
	THEN         TokenType = "THEN"
	OTHERWISE    TokenType = "OTHERWISE"
	END          TokenType = "END"
	LET          TokenType = "LET"
	BE           TokenType = "BE"
	SET          TokenType = "SET"
	WHILE        TokenType = "WHILE"
	NEW          TokenType = "NEW"
	SELF         TokenType = "SELF"
	OK           TokenType = "OK"
	ERROR        TokenType = "ERROR"
	DEFINE       TokenType = "DEFINE"
	RECORD       TokenType = "RECORD"
	NAMED        TokenType = "NAMED"
	CREATE       TokenType = "CREATE"
	CHANNEL      TokenType = "CHANNEL"
	SEND         TokenType = "SEND"
	THROUGH      TokenType = "THROUGH"
	RECEIVE      TokenType = "RECEIVE"
	FROM         TokenType = "FROM"
	RUN          TokenType = "RUN"
	CONCURRENTLY TokenType = "CONCURRENTLY"
	NOT          TokenType = "NOT"
	AND          TokenType = "AND"
	OR           TokenType = "OR"

	// Operator phrases. Multi-word phrases are collapsed into a single
	// token by the lexer using longest-match over whole words.
	PLUS         TokenType = "PLUS"          // "plus"
	MINUS        TokenType = "MINUS"         // "minus"
	TIMES        TokenType = "TIMES"         // "times"
	DIVIDED_BY   TokenType = "DIVIDED_BY"    // "divided by"
	MODULO       TokenType = "MODULO"        // "modulo"
	CONCAT       TokenType = "CONCAT"        // "concatenated with"
	IS           TokenType = "IS"            // "is"
	IS_NOT       TokenType = "IS_NOT"        // "is not"
	IS_AN        TokenType = "IS_AN"         // "is an" / "is a"
	GREATER_THAN TokenType = "GREATER_THAN"  // "is greater than"
	LESS_THAN    TokenType = "LESS_THAN"     // "is less than"
	GREATER_EQ   TokenType = "GREATER_EQ"    // "is greater than or equal to"
	LESS_EQ      TokenType = "LESS_EQ"       // "is less than or equal to"
	OR_RETURN    TokenType = "OR_RETURN"     // "or return error"
	OK_VALUE_OF  TokenType = "OK_VALUE_OF"   // "the ok value of"
	ERR_MSG_OF   TokenType = "ERR_MSG_OF"    // "the error message of"
)

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal string
	Line    int
	Column  int
}

var keywords = map[string]TokenType{
	"to":           TO,
	"with":         WITH,
	"return":       RETURN,
	"if":           IF,
	"then":         THEN,
	"otherwise":    OTHERWISE,
	"end":          END,
	"let":          LET,
	"be":           BE,
	"set":          SET,
	"while":        WHILE,
	"new":          NEW,
	"self":         SELF,
	"Ok":           OK,
	"Error":        ERROR,
	"define":       DEFINE,
	"record":       RECORD,
	"named":        NAMED,
	"create":       CREATE,
	"channel":      CHANNEL,
	"send":         SEND,
	"through":      THROUGH,
	"receive":      RECEIVE,
	"from":         FROM,
	"run":          RUN,
	"concurrently": CONCURRENTLY,
	"not":          NOT,
	"and":          AND,
	"or":           OR,
	"plus":         PLUS,
	"minus":        MINUS,
	"times":        TIMES,
	"modulo":       MODULO,
	"is":           IS,
}

// LookupIdent maps a bare word to its keyword token type, or IDENT.
func LookupIdent(word string) TokenType {
	if tt, ok := keywords[word]; ok {
		return tt
	}
	return IDENT
}

// Phrase is one multi-word operator spelling. The lexer matches these
// against upcoming words and must prefer the longest match, so the
// table is kept ordered by descending word count.
type Phrase struct {
	Words []string
	Type  TokenType
}

var Phrases = []Phrase{
	{[]string{"is", "greater", "than", "or", "equal", "to"}, GREATER_EQ},
	{[]string{"is", "less", "than", "or", "equal", "to"}, LESS_EQ},
	{[]string{"the", "error", "message", "of"}, ERR_MSG_OF},
	{[]string{"the", "ok", "value", "of"}, OK_VALUE_OF},
	{[]string{"is", "greater", "than"}, GREATER_THAN},
	{[]string{"is", "less", "than"}, LESS_THAN},
	{[]string{"or", "return", "error"}, OR_RETURN},
	{[]string{"concatenated", "with"}, CONCAT},
	{[]string{"divided", "by"}, DIVIDED_BY},
	{[]string{"is", "not"}, IS_NOT},
	{[]string{"is", "an"}, IS_AN},
	{[]string{"is", "a"}, IS_AN},
}

// PhraseStarters holds the first word of every phrase so the lexer can
// skip the lookahead machinery for ordinary words.
var PhraseStarters = map[string]bool{}

func init() {
	for _, p := range Phrases {
		PhraseStarters[p.Words[0]] = true
	}
}
