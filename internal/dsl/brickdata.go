package dsl

import (
	"github.com/thelfer/tfel-sub013/internal/bricks"
	"github.com/thelfer/tfel-sub013/internal/lexer"
)

// readDataMap reads the options of a brick: `{key : value, ...}`. A key
// given several times with data structures yields an array of them, which
// is how several inelastic flows or kinematic rules are listed.
func (c *cursor) readDataMap() (bricks.DataMap, error) {
	if _, err := c.expect(lexer.TOKEN_LBRACE, "'{'"); err != nil {
		return nil, err
	}
	m := bricks.DataMap{}
	if c.match(lexer.TOKEN_RBRACE) {
		return m, nil
	}
	for {
		tok := c.peek()
		key, err := c.readName("an option name")
		if err != nil {
			return nil, err
		}
		if _, err := c.expect(lexer.TOKEN_COLON, "':'"); err != nil {
			return nil, err
		}
		v, err := c.readData()
		if err != nil {
			return nil, err
		}
		if prev, exists := m[key]; exists {
			merged, ok := appendStructure(prev, v)
			if !ok {
				return nil, c.errorAt(tok, "option '%s' given twice", key)
			}
			v = merged
		}
		m[key] = v
		if c.match(lexer.TOKEN_COMMA) {
			continue
		}
		if _, err := c.expect(lexer.TOKEN_RBRACE, "',' or '}'"); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// readData reads a number, a string, a named data structure
// `"Name" {...}` or an array `[a, b]`.
func (c *cursor) readData() (bricks.Data, error) {
	tok := c.peek()
	switch {
	case tok.Type == lexer.TOKEN_NUMBER_LIT, tok.Is(lexer.TOKEN_OPERATOR, "-"), tok.Is(lexer.TOKEN_OPERATOR, "+"):
		x, err := c.readNumber()
		return bricks.Number(x), err

	case tok.Type == lexer.TOKEN_STRING_LIT, tok.Type == lexer.TOKEN_IDENTIFIER:
		c.advance()
		if !c.check(lexer.TOKEN_LBRACE) {
			return bricks.String(tok.Literal), nil
		}
		m, err := c.readDataMap()
		if err != nil {
			return nil, err
		}
		return bricks.DataStructure{Name: tok.Literal, Data: m}, nil

	case tok.Type == lexer.TOKEN_LBRACKET:
		c.advance()
		a := bricks.Array{}
		if c.match(lexer.TOKEN_RBRACKET) {
			return a, nil
		}
		for {
			v, err := c.readData()
			if err != nil {
				return nil, err
			}
			a = append(a, v)
			if c.match(lexer.TOKEN_COMMA) {
				continue
			}
			if _, err := c.expect(lexer.TOKEN_RBRACKET, "',' or ']'"); err != nil {
				return nil, err
			}
			return a, nil
		}

	case tok.Type == lexer.TOKEN_LBRACE:
		return nil, c.errorAt(tok, "a data structure must be named")
	}
	return nil, c.unexpected("a value")
}

// appendStructure adds v to the data structures already given for an
// option. Only data structures or their bare names can be repeated.
func appendStructure(prev, v bricks.Data) (bricks.Data, bool) {
	if !isStructure(v) {
		return nil, false
	}
	if isStructure(prev) {
		return bricks.Array{prev, v}, true
	}
	a, ok := prev.(bricks.Array)
	if !ok {
		return nil, false
	}
	for _, e := range a {
		if !isStructure(e) {
			return nil, false
		}
	}
	return append(a, v), true
}

func isStructure(d bricks.Data) bool {
	switch d.(type) {
	case bricks.DataStructure, bricks.String:
		return true
	}
	return false
}
