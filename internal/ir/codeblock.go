package ir

import (
	"fmt"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// Well-known code block names.
const (
	BeforeInitializeLocalVariables = "BeforeInitializeLocalVariables"
	InitializeLocalVariables       = "InitializeLocalVariables"
	AfterInitializeLocalVariables  = "AfterInitializeLocalVariables"
	ComputePredictor               = "ComputePredictor"
	ComputeStress                  = "ComputeStress"
	ComputeFinalStress             = "ComputeFinalStress"
	Integrator                     = "Integrator"
	AdditionalConvergenceChecks    = "AdditionalConvergenceChecks"
	UpdateAuxiliaryStateVariables  = "UpdateAuxiliaryStateVariables"
	FunctionBody                   = "Function"
)

// Mode is the merge policy used when a code block is set.
type Mode int

const (
	// Create fails if the block already exists.
	Create Mode = iota
	// Append fails if the block does not exist yet.
	Append
	CreateOrAppend
	CreateOrReplace
	// CreateButDontReplace keeps an existing block untouched.
	CreateButDontReplace
)

var modeNames = map[Mode]string{
	Create:               "Create",
	Append:               "Append",
	CreateOrAppend:       "CreateOrAppend",
	CreateOrReplace:      "CreateOrReplace",
	CreateButDontReplace: "CreateButDontReplace",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode name into its value. The short source forms
// "Append" and "Replace" are accepted.
func ParseMode(name string) (Mode, error) {
	if name == "Replace" {
		return CreateOrReplace, nil
	}
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return Create, &cerr.ConfigurationError{Message: fmt.Sprintf("unknown code block mode '%s'", name)}
}

// Position is where a fragment is inserted relative to existing content.
type Position int

const (
	AtBeginning Position = iota
	Body
	AtEnd
)

func (p Position) String() string {
	switch p {
	case AtBeginning:
		return "AtBeginning"
	case Body:
		return "Body"
	case AtEnd:
		return "AtEnd"
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// CodeBlock is a fragment of code with an optional description.
type CodeBlock struct {
	Code        string
	Description string
}

// codeBlockAggregator accumulates fragments in three sections. Fragments
// of one section keep their insertion order.
type codeBlockAggregator struct {
	begin, body, end       string
	docBegin, docBody, doc string
}

func (a *codeBlockAggregator) set(c CodeBlock, p Position) {
	switch p {
	case AtBeginning:
		a.begin = joinLines(a.begin, c.Code)
		a.docBegin = joinNonEmpty(a.docBegin, c.Description)
	case Body:
		a.body = joinLines(a.body, c.Code)
		a.docBody = joinNonEmpty(a.docBody, c.Description)
	case AtEnd:
		a.end = joinLines(a.end, c.Code)
		a.doc = joinNonEmpty(a.doc, c.Description)
	}
}

// code returns begin, body and end separated by newlines.
func (a *codeBlockAggregator) code() string {
	return concatSections(a.begin, a.body, a.end)
}

func (a *codeBlockAggregator) description() string {
	return concatSections(a.docBegin, a.docBody, a.doc)
}

func joinLines(existing, code string) string {
	if existing == "" {
		return code
	}
	return existing + "\n" + code
}

func joinNonEmpty(existing, s string) string {
	if s == "" {
		return existing
	}
	return joinLines(existing, s)
}

func concatSections(sections ...string) string {
	out := ""
	for _, s := range sections {
		if s == "" {
			continue
		}
		if out != "" && out[len(out)-1] != '\n' {
			out += "\n"
		}
		out += s
	}
	return out
}

// checkCodeMode validates that a block with the given presence may be set
// under mode m.
func checkCodeMode(name string, exists bool, m Mode) error {
	switch {
	case m == Create && exists:
		return &cerr.NameCollisionError{Name: name, Context: "code block"}
	case m == Append && !exists:
		return &cerr.ConfigurationError{Message: fmt.Sprintf("can't append to undefined code block '%s'", name)}
	}
	return nil
}
