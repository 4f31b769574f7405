package lexer

import (
	"unicode"
	"unicode/utf8"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// Lexer tokenizes material knowledge source files into a stream of tokens.
// Comments and whitespace are dropped but every token keeps its line,
// column and byte offsets so that raw code blocks can be sliced back out
// of the source.
type Lexer struct {
	source  string  // the full source text
	tokens  []Token // accumulated tokens
	start   int     // byte offset of current token start
	current int     // byte offset of current position
	line    int     // current line number (1-based)
	column  int     // current column number (1-based)

	startLine   int
	startColumn int
}

// New creates a new Lexer for the given source code.
func New(source string) *Lexer {
	l := &Lexer{source: source}
	l.Reset()
	return l
}

// Reset rewinds the lexer to the beginning of its source so that the
// stream can be produced again.
func (l *Lexer) Reset() {
	l.tokens = make([]Token, 0, 256)
	l.start = 0
	l.current = 0
	l.line = 1
	l.column = 1
}

// Source returns the text being tokenized.
func (l *Lexer) Source() string {
	return l.source
}

// Tokenize processes the entire source and returns all tokens.
// The token stream always ends with TOKEN_EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	l.Reset()
	for {
		if err := l.skipBlanksAndComments(); err != nil {
			return nil, err
		}
		if l.isAtEnd() {
			break
		}
		l.markStart()
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.markStart()
	l.emit(TOKEN_EOF, "")
	return l.tokens, nil
}

// Tokenize is a convenience wrapper around New(source).Tokenize().
func Tokenize(source string) ([]Token, error) {
	return New(source).Tokenize()
}

// ── Scanning ──

// skipBlanksAndComments consumes whitespace, line comments and block
// comments until the next significant character.
func (l *Lexer) skipBlanksAndComments() error {
	for !l.isAtEnd() {
		r := l.peekRune()
		switch {
		case r == '\n':
			l.newline()
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peekRuneAt(l.current+1) == '/':
			for !l.isAtEnd() && l.peekRune() != '\n' {
				l.advance()
			}
		case r == '/' && l.peekRuneAt(l.current+1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) skipBlockComment() error {
	line, column := l.line, l.column
	l.advance() // /
	l.advance() // *
	for !l.isAtEnd() {
		r := l.peekRune()
		if r == '*' && l.peekRuneAt(l.current+1) == '/' {
			l.advance()
			l.advance()
			return nil
		}
		if r == '\n' {
			l.newline()
			continue
		}
		l.advance()
	}
	return &cerr.LexError{Message: "unterminated comment", Line: line, Column: column}
}

// scanToken scans and emits the next token from the current position.
func (l *Lexer) scanToken() error {
	r := l.peekRune()

	switch {
	case r == '@':
		return l.scanKeyword()

	case r == '"':
		return l.scanString()

	case r == '\'':
		l.scanCharLiteral()
		return nil

	case isDigit(r) || (r == '.' && isDigit(l.peekRuneAt(l.current+1))):
		l.scanNumber()
		return nil

	case isAlpha(r):
		l.scanIdentifier()
		return nil
	}

	l.advance()
	if t, ok := punctuation[r]; ok {
		l.emit(t, string(r))
		return nil
	}
	l.emit(TOKEN_OPERATOR, string(r))
	return nil
}

// scanKeyword scans "@Name". A bare '@' is an error.
func (l *Lexer) scanKeyword() error {
	l.advance() // @
	if l.isAtEnd() || !isAlpha(l.peekRune()) {
		return l.errorf("expected a keyword name after '@'")
	}
	for !l.isAtEnd() && isAlphaNumeric(l.peekRune()) {
		l.advance()
	}
	l.emit(TOKEN_KEYWORD, l.source[l.start:l.current])
	return nil
}

// scanString scans a double-quoted string literal. Strings may not span
// lines. The emitted literal has quotes removed and escapes resolved.
func (l *Lexer) scanString() error {
	l.advance() // opening "
	var value []rune
	for {
		if l.isAtEnd() || l.peekRune() == '\n' {
			return l.errorf("unterminated string")
		}
		r := l.advance()
		if r == '"' {
			break
		}
		if r == '\\' {
			if l.isAtEnd() {
				return l.errorf("unterminated string")
			}
			switch e := l.advance(); e {
			case 'n':
				value = append(value, '\n')
			case 't':
				value = append(value, '\t')
			default:
				value = append(value, e)
			}
			continue
		}
		value = append(value, r)
	}
	l.emit(TOKEN_STRING_LIT, string(value))
	return nil
}

// scanCharLiteral scans a short C-style character literal such as 'a' or
// '\n'. An apostrophe that does not close within two characters is kept
// as an operator so that prose inside descriptions does not break lexing.
func (l *Lexer) scanCharLiteral() {
	end := -1
	for i, n := l.current+1, 0; i < len(l.source) && n < 3; n++ {
		r, size := utf8.DecodeRuneInString(l.source[i:])
		if r == '\n' {
			break
		}
		if r == '\\' {
			i += size
			if i < len(l.source) {
				_, size = utf8.DecodeRuneInString(l.source[i:])
			}
		} else if r == '\'' && i > l.current+1 {
			end = i
			break
		}
		i += size
	}
	if end < 0 {
		l.advance()
		l.emit(TOKEN_OPERATOR, "'")
		return
	}
	for l.current <= end {
		l.advance()
	}
	l.emit(TOKEN_STRING_LIT, l.source[l.start+1:end])
}

// scanNumber scans integers, decimals and exponents: 2, 2573.15, 1.e-8, .5
func (l *Lexer) scanNumber() {
	for isDigit(l.peekRune()) {
		l.advance()
	}
	if l.peekRune() == '.' {
		l.advance()
		for isDigit(l.peekRune()) {
			l.advance()
		}
	}
	if r := l.peekRune(); r == 'e' || r == 'E' {
		next := l.peekRuneAt(l.current + 1)
		sign := next == '+' || next == '-'
		if isDigit(next) || (sign && isDigit(l.peekRuneAt(l.current+2))) {
			l.advance() // e
			if sign {
				l.advance()
			}
			for isDigit(l.peekRune()) {
				l.advance()
			}
		}
	}
	l.emit(TOKEN_NUMBER_LIT, l.source[l.start:l.current])
}

func (l *Lexer) scanIdentifier() {
	for !l.isAtEnd() && isAlphaNumeric(l.peekRune()) {
		l.advance()
	}
	l.emit(TOKEN_IDENTIFIER, l.source[l.start:l.current])
}

// ── Character helpers ──

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) peekRune() rune {
	return l.peekRuneAt(l.current)
}

func (l *Lexer) peekRuneAt(pos int) rune {
	if pos >= len(l.source) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[pos:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.current:])
	l.current += size
	l.column++
	return r
}

func (l *Lexer) newline() {
	l.current++
	l.line++
	l.column = 1
}

func (l *Lexer) markStart() {
	l.start = l.current
	l.startLine = l.line
	l.startColumn = l.column
}

func (l *Lexer) emit(t TokenType, literal string) {
	l.tokens = append(l.tokens, Token{
		Type:    t,
		Literal: literal,
		Line:    l.startLine,
		Column:  l.startColumn,
		Offset:  l.start,
		End:     l.current,
	})
}

func (l *Lexer) errorf(msg string) error {
	return &cerr.LexError{Message: msg, Line: l.startLine, Column: l.startColumn}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || unicode.IsDigit(r)
}
