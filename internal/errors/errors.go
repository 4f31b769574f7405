package errors

import (
	"fmt"
	"strings"
)

// Severity indicates how serious a diagnostic is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityHint
)

// String returns the lower-case severity label.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityHint:
		return "hint"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// CompilerError is a single diagnostic attached to a source file.
type CompilerError struct {
	Message    string   // human-readable description
	Severity   Severity // error, warning, or hint
	Kind       Kind     // error kind, empty for analyzer warnings
	File       string   // source file path (empty if unknown)
	Line       int      // 0 if unknown
	Column     int      // 0 if unknown
	Suggestion string   // e.g. "did you mean '@Output'?" (optional)
	Code       string   // "E101" style error code
}

// Format returns a single-line representation of this diagnostic in the
// usual file:line:column form. Color is left to the caller.
func (e *CompilerError) Format() string {
	var b strings.Builder

	if e.File != "" {
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
			if e.Column > 0 {
				fmt.Fprintf(&b, ":%d", e.Column)
			}
		}
		b.WriteString(": ")
	}

	if e.Kind != "" {
		b.WriteString(string(e.Kind))
		b.WriteString(": ")
	}

	b.WriteString(e.Message)

	if e.Code != "" {
		b.WriteString(" [")
		b.WriteString(e.Code)
		b.WriteString("]")
	}

	return b.String()
}

// CompilerErrors collects diagnostics produced while treating one file.
type CompilerErrors struct {
	errors []*CompilerError
	file   string // default file context
}

// New creates a CompilerErrors collection scoped to a file.
func New(file string) *CompilerErrors {
	return &CompilerErrors{file: file}
}

// File returns the default file of the collection.
func (ce *CompilerErrors) File() string {
	return ce.file
}

// Add appends a diagnostic to the collection.
func (ce *CompilerErrors) Add(err *CompilerError) {
	if err.File == "" {
		err.File = ce.file
	}
	ce.errors = append(ce.errors, err)
}

// AddError is a shorthand for adding a SeverityError diagnostic.
func (ce *CompilerErrors) AddError(code, message string) {
	ce.Add(&CompilerError{
		Code:     code,
		Message:  message,
		Severity: SeverityError,
	})
}

// AddWarning is a shorthand for adding a SeverityWarning diagnostic.
func (ce *CompilerErrors) AddWarning(code, message string) {
	ce.Add(&CompilerError{
		Code:     code,
		Message:  message,
		Severity: SeverityWarning,
	})
}

// AddHint is a shorthand for adding a SeverityHint diagnostic.
func (ce *CompilerErrors) AddHint(code, message string) {
	ce.Add(&CompilerError{
		Code:     code,
		Message:  message,
		Severity: SeverityHint,
	})
}

// AddWarningWithSuggestion adds a warning with a "did you mean" suggestion.
func (ce *CompilerErrors) AddWarningWithSuggestion(code, message, suggestion string) {
	ce.Add(&CompilerError{
		Code:       code,
		Message:    message,
		Severity:   SeverityWarning,
		Suggestion: suggestion,
	})
}

// AddFailure converts a typed error into a diagnostic and appends it.
func (ce *CompilerErrors) AddFailure(err error) {
	ce.Add(Diagnostic(ce.file, err))
}

// HasErrors returns true if the collection contains any SeverityError entries.
func (ce *CompilerErrors) HasErrors() bool {
	for _, e := range ce.errors {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if the collection contains any SeverityWarning entries.
func (ce *CompilerErrors) HasWarnings() bool {
	for _, e := range ce.errors {
		if e.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only the SeverityError entries.
func (ce *CompilerErrors) Errors() []*CompilerError {
	return ce.filter(SeverityError)
}

// Warnings returns only the SeverityWarning entries.
func (ce *CompilerErrors) Warnings() []*CompilerError {
	return ce.filter(SeverityWarning)
}

// Hints returns only the SeverityHint entries.
func (ce *CompilerErrors) Hints() []*CompilerError {
	return ce.filter(SeverityHint)
}

func (ce *CompilerErrors) filter(s Severity) []*CompilerError {
	var result []*CompilerError
	for _, e := range ce.errors {
		if e.Severity == s {
			result = append(result, e)
		}
	}
	return result
}

// All returns every diagnostic in the collection.
func (ce *CompilerErrors) All() []*CompilerError {
	return ce.errors
}

// Merge appends every diagnostic of other to the collection.
func (ce *CompilerErrors) Merge(other *CompilerErrors) {
	if other == nil {
		return
	}
	for _, e := range other.errors {
		ce.Add(e)
	}
}

// Format returns a multiline string of all diagnostics.
func (ce *CompilerErrors) Format() string {
	var b strings.Builder
	for i, e := range ce.errors {
		if i > 0 {
			b.WriteString("\n")
		}

		switch e.Severity {
		case SeverityError:
			fmt.Fprintf(&b, "✗ %s", e.Format())
		case SeverityWarning:
			fmt.Fprintf(&b, "⚠ %s", e.Format())
		case SeverityHint:
			fmt.Fprintf(&b, "· %s", e.Format())
		}

		if e.Suggestion != "" {
			fmt.Fprintf(&b, "\n  suggestion: %s", e.Suggestion)
		}
	}
	return b.String()
}
