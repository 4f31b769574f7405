package lexer

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TOKEN_EOF TokenType = iota

	// Words and literals
	TOKEN_IDENTIFIER // T, Young, sig
	TOKEN_KEYWORD    // @Output, @Bounds
	TOKEN_NUMBER_LIT // 42, 2573.15, 1.e-8
	TOKEN_STRING_LIT // "Temperature" (literal holds the unquoted text)

	// Punctuation
	TOKEN_SEMICOLON // ;
	TOKEN_COMMA     // ,
	TOKEN_COLON     // :
	TOKEN_LBRACE    // {
	TOKEN_RBRACE    // }
	TOKEN_LBRACKET  // [
	TOKEN_RBRACKET  // ]
	TOKEN_LPAREN    // (
	TOKEN_RPAREN    // )
	TOKEN_LT        // <
	TOKEN_GT        // >
	TOKEN_DOT       // .
	TOKEN_OPERATOR  // any other symbol: = + - * / & | ! ...
)

var tokenNames = map[TokenType]string{
	TOKEN_EOF:        "EOF",
	TOKEN_IDENTIFIER: "IDENTIFIER",
	TOKEN_KEYWORD:    "KEYWORD",
	TOKEN_NUMBER_LIT: "NUMBER",
	TOKEN_STRING_LIT: "STRING",
	TOKEN_SEMICOLON:  "SEMICOLON",
	TOKEN_COMMA:      "COMMA",
	TOKEN_COLON:      "COLON",
	TOKEN_LBRACE:     "LBRACE",
	TOKEN_RBRACE:     "RBRACE",
	TOKEN_LBRACKET:   "LBRACKET",
	TOKEN_RBRACKET:   "RBRACKET",
	TOKEN_LPAREN:     "LPAREN",
	TOKEN_RPAREN:     "RPAREN",
	TOKEN_LT:         "LT",
	TOKEN_GT:         "GT",
	TOKEN_DOT:        "DOT",
	TOKEN_OPERATOR:   "OPERATOR",
}

// String returns the name of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// punctuation maps single-byte symbols to their dedicated token types.
var punctuation = map[rune]TokenType{
	';': TOKEN_SEMICOLON,
	',': TOKEN_COMMA,
	':': TOKEN_COLON,
	'{': TOKEN_LBRACE,
	'}': TOKEN_RBRACE,
	'[': TOKEN_LBRACKET,
	']': TOKEN_RBRACKET,
	'(': TOKEN_LPAREN,
	')': TOKEN_RPAREN,
	'<': TOKEN_LT,
	'>': TOKEN_GT,
	'.': TOKEN_DOT,
}

// Token is a single lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Line    int // 1-based
	Column  int // 1-based
	Offset  int // byte offset of the first character in the source
	End     int // byte offset just past the last character
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("%s@%d:%d", t.Type, t.Line, t.Column)
	}
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Literal, t.Line, t.Column)
}

// Is reports whether the token has the given type and literal.
func (t Token) Is(typ TokenType, literal string) bool {
	return t.Type == typ && t.Literal == literal
}
