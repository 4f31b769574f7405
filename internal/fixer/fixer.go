// Package fixer repairs misspelt names in source files. It relies on the
// "did you mean" suggestions of the parser: each fix replaces one token
// by the suggested name, and the file is parsed again until it is valid or
// its first error cannot be fixed.
package fixer

import (
	"errors"
	"fmt"

	"github.com/thelfer/tfel-sub013/internal/dsl"
	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/lexer"
)

// maxFixes bounds the parse/fix rounds on one file.
const maxFixes = 32

// Fix replaces a misspelt name at a source position.
type Fix struct {
	File   string
	Line   int
	Column int
	Code   string // code of the diagnostic being fixed
	Old    string
	New    string

	start, end int // byte range of the replaced text
}

// Result is the outcome of Analyze on one file.
type Result struct {
	File   string
	Fixes  []Fix
	Source string // content with every fix applied
	// Remaining is the first error left once no more fixes apply, nil if
	// the fixed source is valid.
	Remaining *cerr.CompilerError
}

// Changed reports whether at least one fix was found.
func (r *Result) Changed() bool { return len(r.Fixes) > 0 }

// Analyze parses source repeatedly, fixing the first error each time it
// carries a suggestion.
func Analyze(file, source string, opts dsl.Options) (*Result, error) {
	res := &Result{File: file, Source: source}
	seen := make(map[string]bool)

	for len(res.Fixes) < maxFixes {
		_, err := dsl.ParseString(file, res.Source, opts)
		if err == nil {
			return res, nil
		}
		fix, ferr := fixFor(file, res.Source, err)
		if ferr != nil {
			return nil, ferr
		}
		if fix == nil || seen[fix.key()] {
			res.Remaining = cerr.Diagnostic(file, err)
			return res, nil
		}
		seen[fix.key()] = true
		res.Source = res.Source[:fix.start] + fix.New + res.Source[fix.end:]
		res.Fixes = append(res.Fixes, *fix)
	}
	_, err := dsl.ParseString(file, res.Source, opts)
	if err != nil {
		res.Remaining = cerr.Diagnostic(file, err)
	}
	return res, nil
}

func (f *Fix) key() string {
	return fmt.Sprintf("%d:%s>%s", f.start, f.Old, f.New)
}

// fixFor returns the fix of err, or nil when err carries no suggestion.
// An error is returned only when source cannot be tokenized.
func fixFor(file, source string, err error) (*Fix, error) {
	var (
		se *cerr.SyntaxError
		ue *cerr.UnknownRuleError
		ke *cerr.KeywordError
	)
	switch {
	case errors.As(err, &se) && se.Suggestion != "" && se.Line > 0:
		tokens, terr := lexer.Tokenize(source)
		if terr != nil {
			return nil, terr
		}
		for _, tok := range tokens {
			if tok.Line == se.Line && tok.Column == se.Column {
				return newFix(file, tok, se.Suggestion, cerr.KindSyntax), nil
			}
		}
	case errors.As(err, &ue) && ue.Suggestion != "":
		tokens, terr := lexer.Tokenize(source)
		if terr != nil {
			return nil, terr
		}
		line, col := 0, 0
		if errors.As(err, &ke) {
			line, col = ke.Line, ke.Column
		}
		for _, tok := range tokens {
			if tok.Line < line || (tok.Line == line && tok.Column < col) {
				continue
			}
			named := tok.Type == lexer.TOKEN_IDENTIFIER || tok.Type == lexer.TOKEN_STRING_LIT
			if named && tok.Literal == ue.Name {
				return newFix(file, tok, ue.Suggestion, cerr.KindUnknownRule), nil
			}
		}
	}
	return nil, nil
}

func newFix(file string, tok lexer.Token, suggestion string, kind cerr.Kind) *Fix {
	f := &Fix{
		File:   file,
		Line:   tok.Line,
		Column: tok.Column,
		Code:   kind.Code(),
		Old:    tok.Literal,
		New:    suggestion,
		start:  tok.Offset,
		end:    tok.End,
	}
	if tok.Type == lexer.TOKEN_STRING_LIT {
		// keep the quotes
		f.start++
		f.end--
	}
	return f
}
