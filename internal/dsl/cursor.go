package dsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
	"github.com/thelfer/tfel-sub013/internal/lexer"
)

// cursor walks a token stream on behalf of keyword handlers. Raw code
// blocks are sliced out of source using token offsets.
type cursor struct {
	tokens  []lexer.Token
	source  string
	pos     int
	keyword string // keyword being treated, for error messages
}

func newCursor(source string, tokens []lexer.Token) *cursor {
	return &cursor{tokens: tokens, source: source}
}

// ── Navigation ──

func (c *cursor) peek() lexer.Token {
	return c.peekAt(0)
}

func (c *cursor) peekAt(n int) lexer.Token {
	if c.pos+n >= len(c.tokens) {
		if len(c.tokens) > 0 {
			last := c.tokens[len(c.tokens)-1]
			return lexer.Token{Type: lexer.TOKEN_EOF, Line: last.Line, Column: last.Column, Offset: last.End, End: last.End}
		}
		return lexer.Token{Type: lexer.TOKEN_EOF}
	}
	return c.tokens[c.pos+n]
}

func (c *cursor) advance() lexer.Token {
	tok := c.peek()
	if tok.Type != lexer.TOKEN_EOF {
		c.pos++
	}
	return tok
}

func (c *cursor) check(t lexer.TokenType) bool {
	return c.peek().Type == t
}

func (c *cursor) match(t lexer.TokenType) bool {
	if c.check(t) {
		c.advance()
		return true
	}
	return false
}

func (c *cursor) isAtEnd() bool {
	return c.check(lexer.TOKEN_EOF)
}

// ── Errors ──

// errorAt returns a SyntaxError located at tok.
func (c *cursor) errorAt(tok lexer.Token, format string, args ...interface{}) error {
	return &cerr.SyntaxError{
		Keyword: c.keyword,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// errorf returns a SyntaxError located at the current token.
func (c *cursor) errorf(format string, args ...interface{}) error {
	return c.errorAt(c.peek(), format, args...)
}

// unexpected reports the current token as not matching what.
func (c *cursor) unexpected(what string) error {
	tok := c.peek()
	if tok.Type == lexer.TOKEN_EOF {
		return c.errorAt(tok, "expected %s, reached the end of file", what)
	}
	return c.errorAt(tok, "expected %s, read '%s'", what, tok.Literal)
}

// ── Readers ──

func (c *cursor) expect(t lexer.TokenType, what string) (lexer.Token, error) {
	if !c.check(t) {
		return lexer.Token{}, c.unexpected(what)
	}
	return c.advance(), nil
}

func (c *cursor) expectSemicolon() error {
	_, err := c.expect(lexer.TOKEN_SEMICOLON, "';'")
	return err
}

func (c *cursor) readIdentifier(what string) (string, error) {
	tok, err := c.expect(lexer.TOKEN_IDENTIFIER, what)
	return tok.Literal, err
}

func (c *cursor) readString(what string) (string, error) {
	tok, err := c.expect(lexer.TOKEN_STRING_LIT, what)
	return tok.Literal, err
}

// readName reads an identifier or a string.
func (c *cursor) readName(what string) (string, error) {
	if c.check(lexer.TOKEN_STRING_LIT) || c.check(lexer.TOKEN_IDENTIFIER) {
		return c.advance().Literal, nil
	}
	return "", c.unexpected(what)
}

// readNumber reads a number with an optional sign.
func (c *cursor) readNumber() (float64, error) {
	sign := 1.
	if tok := c.peek(); tok.Type == lexer.TOKEN_OPERATOR && (tok.Literal == "-" || tok.Literal == "+") {
		if tok.Literal == "-" {
			sign = -1
		}
		c.advance()
	}
	tok, err := c.expect(lexer.TOKEN_NUMBER_LIT, "a number")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		return 0, c.errorAt(tok, "invalid number '%s'", tok.Literal)
	}
	return sign * v, nil
}

// readUnsignedInt reads a non-negative integer.
func (c *cursor) readUnsignedInt(what string) (int, error) {
	tok, err := c.expect(lexer.TOKEN_NUMBER_LIT, what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok.Literal)
	if err != nil || v < 0 {
		return 0, c.errorAt(tok, "expected %s, read '%s'", what, tok.Literal)
	}
	return v, nil
}

// readType reads a C++ type: qualified names and template arguments are
// kept verbatim.
func (c *cursor) readType() (string, error) {
	first, err := c.expect(lexer.TOKEN_IDENTIFIER, "a type")
	if err != nil {
		return "", err
	}
	end := first.End
	for {
		if c.peek().Is(lexer.TOKEN_COLON, ":") && c.peekAt(1).Is(lexer.TOKEN_COLON, ":") &&
			c.peekAt(2).Type == lexer.TOKEN_IDENTIFIER {
			c.advance()
			c.advance()
			end = c.advance().End
			continue
		}
		if c.check(lexer.TOKEN_LT) {
			depth := 0
			for {
				tok := c.advance()
				switch tok.Type {
				case lexer.TOKEN_LT:
					depth++
				case lexer.TOKEN_GT:
					depth--
				case lexer.TOKEN_EOF, lexer.TOKEN_SEMICOLON:
					return "", c.errorAt(tok, "unterminated template argument list")
				}
				if depth == 0 {
					end = tok.End
					break
				}
			}
			continue
		}
		break
	}
	return strings.Join(strings.Fields(c.source[first.Offset:end]), ""), nil
}

// readUntilSemicolon returns the raw text of the rest of the statement.
// A statement made of a single string yields the string value.
func (c *cursor) readUntilSemicolon(what string) (string, error) {
	start := c.peek()
	if start.Type == lexer.TOKEN_STRING_LIT && c.peekAt(1).Type == lexer.TOKEN_SEMICOLON {
		c.advance()
		c.advance()
		return start.Literal, nil
	}
	for !c.check(lexer.TOKEN_SEMICOLON) {
		if c.isAtEnd() {
			return "", c.unexpected("';'")
		}
		c.advance()
	}
	end := c.advance()
	text := strings.TrimSpace(c.source[start.Offset:end.Offset])
	if text == "" {
		return "", c.errorAt(start, "expected %s", what)
	}
	return text, nil
}

// readBlock reads a brace-delimited block and returns its raw text.
func (c *cursor) readBlock() (string, lexer.Token, error) {
	open, err := c.expect(lexer.TOKEN_LBRACE, "'{'")
	if err != nil {
		return "", open, err
	}
	depth := 1
	for {
		tok := c.advance()
		switch tok.Type {
		case lexer.TOKEN_LBRACE:
			depth++
		case lexer.TOKEN_RBRACE:
			depth--
		case lexer.TOKEN_EOF:
			return "", open, c.errorAt(open, "unterminated block")
		}
		if depth == 0 {
			return trimBlock(c.source[open.End:tok.Offset]), open, nil
		}
	}
}

// trimBlock strips the blank lines around a block and the indentation
// shared by its lines.
func trimBlock(text string) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			lines[i] = l[indent:]
		}
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// readList reads `a, b, c` up to the end of the statement, reading each
// element with read.
func (c *cursor) readList(read func() error) error {
	for {
		if err := read(); err != nil {
			return err
		}
		if c.match(lexer.TOKEN_COMMA) {
			continue
		}
		return c.expectSemicolon()
	}
}

// readStringArray reads `{"a", "b"}` or a single string or identifier.
func (c *cursor) readStringArray(what string) ([]string, error) {
	if !c.match(lexer.TOKEN_LBRACE) {
		s, err := c.readName(what)
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	var out []string
	if c.match(lexer.TOKEN_RBRACE) {
		return out, nil
	}
	for {
		s, err := c.readName(what)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		if c.match(lexer.TOKEN_COMMA) {
			continue
		}
		if _, err := c.expect(lexer.TOKEN_RBRACE, "',' or '}'"); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// readSpecifiedHypothesis reads an optional `<Hypothesis>` qualifier.
func (c *cursor) readSpecifiedHypothesis() (ir.Hypothesis, error) {
	if !c.match(lexer.TOKEN_LT) {
		return ir.Undefined, nil
	}
	tok := c.peek()
	name, err := c.readIdentifier("a modelling hypothesis")
	if err != nil {
		return ir.Undefined, err
	}
	h, err := ir.ParseHypothesis(name)
	if err != nil {
		return ir.Undefined, c.errorAt(tok, "%s", err.Error())
	}
	if _, err := c.expect(lexer.TOKEN_GT, "'>'"); err != nil {
		return ir.Undefined, err
	}
	return h, nil
}

// readBounds reads `in [low:high]`, where '*' marks an open end written
// `]*:high]` or `[low:*[`.
func (c *cursor) readBounds() (ir.Bounds, error) {
	in := c.peek()
	if !in.Is(lexer.TOKEN_IDENTIFIER, "in") {
		return ir.Bounds{}, c.unexpected("'in'")
	}
	c.advance()
	open := c.advance()
	if open.Type != lexer.TOKEN_LBRACKET && open.Type != lexer.TOKEN_RBRACKET {
		return ir.Bounds{}, c.errorAt(open, "expected '[' or ']', read '%s'", open.Literal)
	}
	lower, lowerOpen, err := c.readBound()
	if err != nil {
		return ir.Bounds{}, err
	}
	if lowerOpen != (open.Type == lexer.TOKEN_RBRACKET) {
		return ir.Bounds{}, c.errorAt(open, "an infinite lower bound is written ']*', a finite one '[value'")
	}
	if _, err := c.expect(lexer.TOKEN_COLON, "':'"); err != nil {
		return ir.Bounds{}, err
	}
	upper, upperOpen, err := c.readBound()
	if err != nil {
		return ir.Bounds{}, err
	}
	closing := c.advance()
	if closing.Type != lexer.TOKEN_LBRACKET && closing.Type != lexer.TOKEN_RBRACKET {
		return ir.Bounds{}, c.errorAt(closing, "expected '[' or ']', read '%s'", closing.Literal)
	}
	if upperOpen != (closing.Type == lexer.TOKEN_LBRACKET) {
		return ir.Bounds{}, c.errorAt(closing, "an infinite upper bound is written '*[', a finite one 'value]'")
	}
	if lowerOpen {
		lower = math.Inf(-1)
	}
	if upperOpen {
		upper = math.Inf(1)
	}
	b, err := ir.NewBounds(lower, upper)
	if err != nil {
		return ir.Bounds{}, c.errorAt(open, "%s", err.Error())
	}
	return b, nil
}

func (c *cursor) readBound() (value float64, open bool, err error) {
	if c.peek().Is(lexer.TOKEN_OPERATOR, "*") {
		c.advance()
		return 0, true, nil
	}
	value, err = c.readNumber()
	return value, false, err
}
