package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind names a class of failure. Every failure is fatal for the source
// unit being processed.
type Kind string

const (
	KindLex             Kind = "LexError"
	KindSyntax          Kind = "SyntaxError"
	KindNameCollision   Kind = "NameCollisionError"
	KindTypeConsistency Kind = "TypeConsistencyError"
	KindConfiguration   Kind = "ConfigurationError"
	KindSymmetry        Kind = "SymmetryError"
	KindUnknownRule     Kind = "UnknownRuleError"
	KindAttributeType   Kind = "AttributeTypeError"
	KindIO              Kind = "IOError"
)

// codes maps each kind to its stable diagnostic code.
var codes = map[Kind]string{
	KindLex:             "E101",
	KindSyntax:          "E102",
	KindNameCollision:   "E201",
	KindTypeConsistency: "E202",
	KindConfiguration:   "E301",
	KindSymmetry:        "E302",
	KindUnknownRule:     "E303",
	KindAttributeType:   "E401",
	KindIO:              "E900",
}

// Code returns the diagnostic code of a kind.
func (k Kind) Code() string {
	if c, ok := codes[k]; ok {
		return c
	}
	return "E900"
}

// kinded is implemented by every typed error of this package.
type kinded interface {
	error
	Kind() Kind
}

// positioned is implemented by errors that know where they happened.
type positioned interface {
	Position() (line, column int)
}

// ── Lexer ──

// LexError reports malformed source text: an unterminated string or
// comment, or a stray character.
type LexError struct {
	Message string
	Line    int
	Column  int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func (e *LexError) Kind() Kind           { return KindLex }
func (e *LexError) Position() (int, int) { return e.Line, e.Column }

// ── Dispatcher ──

// SyntaxError reports an unknown keyword or a malformed statement.
type SyntaxError struct {
	Keyword    string // keyword being treated, empty outside of a keyword
	Message    string
	Line       int
	Column     int
	Suggestion string
}

func (e *SyntaxError) Error() string {
	if e.Keyword != "" {
		return fmt.Sprintf("syntax error at line %d, column %d (%s): %s", e.Line, e.Column, e.Keyword, e.Message)
	}
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func (e *SyntaxError) Kind() Kind           { return KindSyntax }
func (e *SyntaxError) Position() (int, int) { return e.Line, e.Column }

// KeywordError wraps any failure raised while a keyword handler runs,
// recording which keyword failed and where it started.
type KeywordError struct {
	Keyword string
	Line    int
	Column  int
	Err     error
}

func (e *KeywordError) Error() string {
	return fmt.Sprintf("error while treating keyword '%s' at line %d: %v", e.Keyword, e.Line, e.Err)
}

func (e *KeywordError) Unwrap() error { return e.Err }

func (e *KeywordError) Position() (int, int) { return e.Line, e.Column }

// ── Model ──

// NameCollisionError reports a duplicate name reservation or a duplicate
// registration in a registry.
type NameCollisionError struct {
	Name    string
	Context string // what was being registered, e.g. "stress criterion"
}

func (e *NameCollisionError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s '%s' already registered", e.Context, e.Name)
	}
	return fmt.Sprintf("name '%s' already registered/reserved", e.Name)
}

func (e *NameCollisionError) Kind() Kind { return KindNameCollision }

// TypeConsistencyError reports a variable declared with different types or
// array sizes under two modelling hypotheses.
type TypeConsistencyError struct {
	Name        string
	HypothesisA string
	HypothesisB string
	Reason      string
}

func (e *TypeConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent declaration of '%s' between hypotheses '%s' and '%s': %s",
		e.Name, e.HypothesisA, e.HypothesisB, e.Reason)
}

func (e *TypeConsistencyError) Kind() Kind { return KindTypeConsistency }

// AttributeTypeError reports a typed attribute read on a value holding
// another type.
type AttributeTypeError struct {
	Name string
	Want string
	Got  string
}

func (e *AttributeTypeError) Error() string {
	return fmt.Sprintf("attribute '%s' holds a %s, not a %s", e.Name, e.Got, e.Want)
}

func (e *AttributeTypeError) Kind() Kind { return KindAttributeType }

// ── Bricks ──

// ConfigurationError reports invalid options or an inconsistent setup.
type ConfigurationError struct {
	Rule    string // rule or component being configured, may be empty
	Option  string // offending option, may be empty
	Message string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Rule != "" && e.Option != "":
		return fmt.Sprintf("%s: option '%s': %s", e.Rule, e.Option, e.Message)
	case e.Rule != "":
		return fmt.Sprintf("%s: %s", e.Rule, e.Message)
	}
	return e.Message
}

func (e *ConfigurationError) Kind() Kind { return KindConfiguration }

// SymmetryError reports a rule used with a symmetry it does not support.
type SymmetryError struct {
	Rule     string
	Symmetry string
}

func (e *SymmetryError) Error() string {
	return fmt.Sprintf("%s does not support %s behaviours", e.Rule, e.Symmetry)
}

func (e *SymmetryError) Kind() Kind { return KindSymmetry }

// UnknownRuleError reports a lookup of an unregistered rule.
type UnknownRuleError struct {
	Name       string
	Family     string // e.g. "stress criterion"
	Suggestion string
}

func (e *UnknownRuleError) Error() string {
	family := e.Family
	if family == "" {
		family = "rule"
	}
	return fmt.Sprintf("no %s named '%s'", family, e.Name)
}

func (e *UnknownRuleError) Kind() Kind { return KindUnknownRule }

// ── Inspection ──

// KindOf returns the kind of the first typed error in err's chain, or
// KindIO when the chain holds none.
func KindOf(err error) Kind {
	var k kinded
	if stderrors.As(err, &k) {
		return k.Kind()
	}
	return KindIO
}

// Diagnostic converts a failure into a CompilerError carrying its kind,
// code, position and suggestion.
func Diagnostic(file string, err error) *CompilerError {
	kind := KindOf(err)
	d := &CompilerError{
		Message:  err.Error(),
		Severity: SeverityError,
		Kind:     kind,
		File:     file,
		Code:     kind.Code(),
	}
	var p positioned
	if stderrors.As(err, &p) {
		d.Line, d.Column = p.Position()
	}
	var se *SyntaxError
	if stderrors.As(err, &se) && se.Line > 0 {
		d.Line, d.Column = se.Line, se.Column
	}
	var ue *UnknownRuleError
	switch {
	case stderrors.As(err, &se) && se.Suggestion != "":
		d.Suggestion = fmt.Sprintf("did you mean '%s'?", se.Suggestion)
	case stderrors.As(err, &ue) && ue.Suggestion != "":
		d.Suggestion = fmt.Sprintf("did you mean '%s'?", ue.Suggestion)
	}
	return d
}
