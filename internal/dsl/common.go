package dsl

import (
	"errors"
	"os"
	"path/filepath"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
	"github.com/thelfer/tfel-sub013/internal/lexer"
)

// ── File metadata ──

func (b *dslBase) treatDSL() error {
	tok := b.cur.peek()
	name, err := b.cur.readName("a DSL name")
	if err != nil {
		return err
	}
	known := false
	for _, a := range b.aliases {
		known = known || a == name
	}
	if !known {
		return b.cur.errorAt(tok, "this file is analysed by the '%s' DSL, not '%s'", b.name, name)
	}
	return b.cur.expectSemicolon()
}

func (b *dslBase) treatMaterial() error {
	return b.setOnce(&b.desc.Material, "material name", b.readIdentifierStatement)
}

func (b *dslBase) treatLibrary() error {
	return b.setOnce(&b.desc.Library, "library name", b.readIdentifierStatement)
}

func (b *dslBase) treatAuthor() error {
	return b.setOnce(&b.desc.Author, "author", b.cur.readUntilSemicolon)
}

func (b *dslBase) treatDate() error {
	return b.setOnce(&b.desc.Date, "date", b.cur.readUntilSemicolon)
}

func (b *dslBase) treatDescription() error {
	tok := b.cur.peek()
	text, _, err := b.cur.readBlock()
	if err != nil {
		return err
	}
	if b.desc.Description != "" {
		return b.cur.errorAt(tok, "description already defined")
	}
	b.desc.Description = text
	return nil
}

func (b *dslBase) treatIncludes() error {
	text, _, err := b.cur.readBlock()
	if err != nil {
		return err
	}
	b.desc.Includes = append(b.desc.Includes, text)
	return nil
}

func (b *dslBase) treatLink() error {
	links, err := b.cur.readStringArray("a library name")
	if err != nil {
		return err
	}
	b.desc.Links = append(b.desc.Links, links...)
	return b.cur.expectSemicolon()
}

// setOnce stores the value read by read in *field, which must be empty.
func (b *dslBase) setOnce(field *string, what string, read func(string) (string, error)) error {
	tok := b.cur.peek()
	v, err := read(what)
	if err != nil {
		return err
	}
	if *field != "" {
		return b.cur.errorAt(tok, "%s already defined", what)
	}
	*field = v
	return nil
}

func (b *dslBase) readIdentifierStatement(what string) (string, error) {
	v, err := b.cur.readName(what)
	if err != nil {
		return "", err
	}
	if !isIdentifier(v) {
		return "", b.cur.errorf("'%s' is not a valid %s", v, what)
	}
	return v, b.cur.expectSemicolon()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func (b *dslBase) treatInterface() error {
	names, err := b.cur.readStringArray("an interface name")
	if err != nil {
		return err
	}
	if err := b.cur.expectSemicolon(); err != nil {
		return err
	}
	previous, err := ir.GetAttributeOr(b.desc, ir.AttrInterfaces, ir.StringArrayAttribute(nil))
	if err != nil {
		return err
	}
	for _, n := range names {
		for _, p := range previous {
			if p == n {
				return b.cur.errorf("interface '%s' already declared", n)
			}
		}
		previous = append(previous, n)
	}
	return b.desc.SetGlobalAttribute(ir.AttrInterfaces, previous, true)
}

// ── Imports ──

func (b *dslBase) treatImport() error {
	tok := b.cur.peek()
	files, err := b.cur.readStringArray("a file name")
	if err != nil {
		return err
	}
	if err := b.cur.expectSemicolon(); err != nil {
		return err
	}
	for _, f := range files {
		path, err := b.resolveImport(f)
		if err != nil {
			return b.cur.errorAt(tok, "%s", err.Error())
		}
		if b.imports[path] {
			return b.cur.errorAt(tok, "recursive import of '%s'", f)
		}
		if err := b.importFile(path); err != nil {
			return err
		}
	}
	return nil
}

// resolveImport looks for name next to the file being read, then in the
// include paths.
func (b *dslBase) resolveImport(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", err
		}
		return filepath.Clean(name), nil
	}
	dirs := append([]string{filepath.Dir(b.current)}, b.opts.IncludePaths...)
	for _, d := range dirs {
		candidate := filepath.Clean(filepath.Join(d, name))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.New("can't find imported file '" + name + "'")
}

func (b *dslBase) importFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tokens, err := lexer.Tokenize(string(data))
	if err != nil {
		return err
	}
	b.logger.Debug("importing file", "path", path)
	previous := b.current
	b.current = path
	b.imports[path] = true
	defer func() {
		b.current = previous
		delete(b.imports, path)
	}()
	return b.analyse(string(data), tokens)
}

// ── Variables ──

// typeMode tells whether a declaration keyword expects a type.
type typeMode int

const (
	untyped typeMode = iota
	optionallyTyped
	typed
)

// readHypothesis reads an optional `<Hypothesis>` qualifier, which only
// behaviours accept.
func (b *dslBase) readHypothesis() (ir.Hypothesis, error) {
	if b.cur.check(lexer.TOKEN_LT) && b.desc.Kind != ir.BehaviourKind {
		return ir.Undefined, b.cur.errorf("a modelling hypothesis can only be specified in behaviours")
	}
	return b.cur.readSpecifiedHypothesis()
}

// startsWithType reports whether the statement begins with a type
// followed by a variable name.
func (b *dslBase) startsWithType() bool {
	if !b.cur.check(lexer.TOKEN_IDENTIFIER) {
		return false
	}
	next := b.cur.peekAt(1)
	return next.Type == lexer.TOKEN_IDENTIFIER || next.Type == lexer.TOKEN_LT ||
		(next.Type == lexer.TOKEN_COLON && b.cur.peekAt(2).Type == lexer.TOKEN_COLON)
}

func (b *dslBase) readVariableType(mode typeMode, defaultType string, kind ir.ContainerKind) (string, error) {
	tok := b.cur.peek()
	if mode == untyped || (mode == optionallyTyped && !b.startsWithType()) {
		return defaultType, nil
	}
	typ, err := b.cur.readType()
	if err != nil {
		return "", err
	}
	if kind != ir.LocalVariables && !ir.IsSupportedType(typ) {
		return "", b.cur.errorAt(tok, "unsupported type '%s'", typ)
	}
	return typ, nil
}

// readVariableName reads `name` or `name[n]`.
func (b *dslBase) readVariableName() (ir.VariableDescription, error) {
	tok := b.cur.peek()
	name, err := b.cur.readIdentifier("a variable name")
	if err != nil {
		return ir.VariableDescription{}, err
	}
	size := 1
	if b.cur.match(lexer.TOKEN_LBRACKET) {
		if size, err = b.cur.readUnsignedInt("an array size"); err != nil {
			return ir.VariableDescription{}, err
		}
		if size < 1 {
			return ir.VariableDescription{}, b.cur.errorAt(tok, "invalid array size for '%s'", name)
		}
		if _, err := b.cur.expect(lexer.TOKEN_RBRACKET, "']'"); err != nil {
			return ir.VariableDescription{}, err
		}
	}
	v := ir.NewVariable("", name, size)
	v.Line = tok.Line
	return v, nil
}

// declareVariables treats `[<H>] [type] a, b[n], c;` and adds every
// variable to the given container.
func (b *dslBase) declareVariables(kind ir.ContainerKind, mode typeMode, defaultType string) error {
	h, err := b.readHypothesis()
	if err != nil {
		return err
	}
	typ, err := b.readVariableType(mode, defaultType, kind)
	if err != nil {
		return err
	}
	return b.cur.readList(func() error {
		v, err := b.readVariableName()
		if err != nil {
			return err
		}
		v.Type = typ
		return b.addVariable(h, kind, v)
	})
}

func (b *dslBase) addVariable(h ir.Hypothesis, kind ir.ContainerKind, v ir.VariableDescription) error {
	if err := b.desc.AddVariable(h, kind, v); err != nil {
		return err
	}
	if b.declared != nil {
		return b.declared(h, kind, v)
	}
	return nil
}

// forVariable applies fn to every hypothesis whose data holds the
// variable named name, which may also be an external name. Under a
// concrete hypothesis fn is applied to that hypothesis only.
func (b *dslBase) forVariable(tok lexer.Token, name string, h ir.Hypothesis, fn func(h ir.Hypothesis, name string) error) error {
	wrap := func(err error) error {
		if errors.Is(err, ir.ErrUnknownVariable) || errors.Is(err, ir.ErrBoundsAlreadyDefined) {
			return b.cur.errorAt(tok, "%s", err.Error())
		}
		return err
	}
	resolve := func(bd *ir.BehaviourData) (string, bool) {
		if bd.ContainsVariable(name) {
			return name, true
		}
		if v, _, ok := bd.VariableByExternalName(name); ok {
			return v.Name, true
		}
		return "", false
	}
	if h != ir.Undefined {
		actual, ok := resolve(b.desc.GetBehaviourData(h))
		if !ok {
			return b.cur.errorAt(tok, "no variable named '%s' for hypothesis '%s'", name, h)
		}
		return wrap(fn(h, actual))
	}
	if actual, ok := resolve(b.desc.GetBehaviourData(ir.Undefined)); ok {
		return wrap(fn(ir.Undefined, actual))
	}
	found := false
	for _, sh := range b.desc.GetDistinctModellingHypotheses() {
		actual, ok := resolve(b.desc.GetBehaviourData(sh))
		if !ok {
			continue
		}
		found = true
		if err := fn(sh, actual); err != nil {
			return wrap(err)
		}
	}
	if !found {
		return b.cur.errorAt(tok, "no variable named '%s'", name)
	}
	return nil
}

// treatVariableMethod treats `name.setGlossaryName("...");` and
// `name.setEntryName("...");`.
func (b *dslBase) treatVariableMethod() error {
	tok := b.cur.advance()
	if _, err := b.cur.expect(lexer.TOKEN_DOT, "'.'"); err != nil {
		return err
	}
	mtok := b.cur.peek()
	method, err := b.cur.readIdentifier("a method name")
	if err != nil {
		return err
	}
	methods := []string{"setGlossaryName", "setEntryName"}
	if method != methods[0] && method != methods[1] {
		return &cerr.SyntaxError{
			Message:    "unknown method '" + method + "'",
			Line:       mtok.Line,
			Column:     mtok.Column,
			Suggestion: cerr.Suggest(method, methods),
		}
	}
	if _, err := b.cur.expect(lexer.TOKEN_LPAREN, "'('"); err != nil {
		return err
	}
	atok := b.cur.peek()
	ext, err := b.cur.readString("a name")
	if err != nil {
		return err
	}
	if _, err := b.cur.expect(lexer.TOKEN_RPAREN, "')'"); err != nil {
		return err
	}
	if err := b.cur.expectSemicolon(); err != nil {
		return err
	}
	if method == "setGlossaryName" {
		if err := checkGlossaryName(ext); err != nil {
			return err
		}
	} else {
		if _, isGlossary := glossary[ext]; isGlossary {
			return b.cur.errorAt(atok, "'%s' is a glossary name, use setGlossaryName", ext)
		}
		if !isIdentifier(ext) {
			return b.cur.errorAt(atok, "invalid entry name '%s'", ext)
		}
	}
	return b.forVariable(tok, tok.Literal, ir.Undefined, func(h ir.Hypothesis, name string) error {
		return b.desc.SetExternalName(h, name, ext)
	})
}

// ── Parameters and constants ──

// treatParameter treats `@Parameter [type] a = 1, b[2] = {1, 2}, c(3);`.
func (b *dslBase) treatParameter() error {
	h, err := b.readHypothesis()
	if err != nil {
		return err
	}
	typ, err := b.readVariableType(optionallyTyped, "real", ir.Parameters)
	if err != nil {
		return err
	}
	return b.cur.readList(func() error {
		v, err := b.readVariableName()
		if err != nil {
			return err
		}
		v.Type = typ
		values, err := b.readParameterValues(v)
		if err != nil {
			return err
		}
		if err := b.addVariable(h, ir.Parameters, v); err != nil {
			return err
		}
		return b.desc.SetParameterDefault(h, v.Name, values...)
	})
}

func (b *dslBase) readParameterValues(v ir.VariableDescription) ([]float64, error) {
	switch {
	case b.cur.peek().Is(lexer.TOKEN_OPERATOR, "="):
		b.cur.advance()
		if !b.cur.check(lexer.TOKEN_LBRACE) {
			x, err := b.cur.readNumber()
			return []float64{x}, err
		}
		b.cur.advance()
		var values []float64
		for {
			x, err := b.cur.readNumber()
			if err != nil {
				return nil, err
			}
			values = append(values, x)
			if b.cur.match(lexer.TOKEN_COMMA) {
				continue
			}
			if _, err := b.cur.expect(lexer.TOKEN_RBRACE, "',' or '}'"); err != nil {
				return nil, err
			}
			return values, nil
		}
	case b.cur.match(lexer.TOKEN_LPAREN):
		x, err := b.cur.readNumber()
		if err != nil {
			return nil, err
		}
		_, err = b.cur.expect(lexer.TOKEN_RPAREN, "')'")
		return []float64{x}, err
	}
	return nil, b.cur.errorf("parameter '%s' has no default value", v.Name)
}

// treatStaticVariable treats `@StaticVariable type name = value;`.
func (b *dslBase) treatStaticVariable() error {
	typ, err := b.readVariableType(typed, "", ir.StaticVariables)
	if err != nil {
		return err
	}
	v, err := b.readVariableName()
	if err != nil {
		return err
	}
	if v.IsArray() {
		return b.cur.errorf("static variable '%s' can't be an array", v.Name)
	}
	v.Type = typ
	if !b.cur.peek().Is(lexer.TOKEN_OPERATOR, "=") {
		return b.cur.unexpected("'='")
	}
	b.cur.advance()
	value, err := b.cur.readNumber()
	if err != nil {
		return err
	}
	if err := b.cur.expectSemicolon(); err != nil {
		return err
	}
	return b.desc.AddStaticVariable(ir.Undefined, v, value)
}

// treatConstant treats `@Constant name value;`, a real static variable.
func (b *dslBase) treatConstant() error {
	v, err := b.readVariableName()
	if err != nil {
		return err
	}
	if v.IsArray() {
		return b.cur.errorf("constant '%s' can't be an array", v.Name)
	}
	v.Type = "real"
	if b.cur.peek().Is(lexer.TOKEN_OPERATOR, "=") {
		b.cur.advance()
	}
	value, err := b.cur.readNumber()
	if err != nil {
		return err
	}
	if err := b.cur.expectSemicolon(); err != nil {
		return err
	}
	return b.desc.AddStaticVariable(ir.Undefined, v, value)
}

// ── Bounds ──

func (b *dslBase) treatBounds() error {
	return b.treatBoundsStatement(false)
}

func (b *dslBase) treatPhysicalBounds() error {
	return b.treatBoundsStatement(true)
}

// treatBoundsStatement treats `[<H>] name in [low:high];`.
func (b *dslBase) treatBoundsStatement(physical bool) error {
	h, err := b.readHypothesis()
	if err != nil {
		return err
	}
	tok := b.cur.peek()
	name, err := b.cur.readIdentifier("a variable name")
	if err != nil {
		return err
	}
	bounds, err := b.cur.readBounds()
	if err != nil {
		return err
	}
	if err := b.cur.expectSemicolon(); err != nil {
		return err
	}
	return b.forVariable(tok, name, h, func(h ir.Hypothesis, name string) error {
		if physical {
			return b.desc.SetPhysicalBounds(h, name, bounds)
		}
		return b.desc.SetBounds(h, name, bounds)
	})
}
