package dsl

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/thelfer/tfel-sub013/internal/bricks"
	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
	"github.com/thelfer/tfel-sub013/internal/lexer"
)

// Options configures a DSL instance.
type Options struct {
	// IncludePaths are searched by @Import after the directory of the
	// importing file.
	IncludePaths []string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Registries defaults to bricks.Global().
	Registries *bricks.Registries
}

// DSL analyses one source file into a Description. A DSL instance is
// used for a single file and is not safe for concurrent use.
type DSL interface {
	Name() string
	Description() *ir.Description
	Keywords() []string
	AnalyseString(source string) error
	AnalyseFile(path string) error
}

// ── Keyword tables ──

type keywordHandler[D any] func(D) error

// keywordTable maps keywords to their handlers. Tables are built once per
// DSL kind and are read-only afterwards.
type keywordTable[D any] struct {
	handlers map[string]keywordHandler[D]
	names    []string
}

func newKeywordTable[D any]() *keywordTable[D] {
	return &keywordTable[D]{handlers: make(map[string]keywordHandler[D])}
}

// register binds h to every given keyword. Registering a keyword twice is
// a programming error.
func (t *keywordTable[D]) register(h keywordHandler[D], keywords ...string) {
	for _, k := range keywords {
		if _, exists := t.handlers[k]; exists {
			panic(fmt.Sprintf("keyword '%s' registered twice", k))
		}
		t.handlers[k] = h
		t.names = append(t.names, k)
	}
	sort.Strings(t.names)
}

func (t *keywordTable[D]) keywords() []string {
	return append([]string(nil), t.names...)
}

// baseDSL gives generic helpers access to the embedded dslBase.
type baseDSL interface {
	base() *dslBase
}

// common adapts a dslBase handler to any DSL kind.
func common[D baseDSL](f func(*dslBase) error) keywordHandler[D] {
	return func(d D) error { return f(d.base()) }
}

// registerCommonKeywords registers the keywords shared by every DSL.
func registerCommonKeywords[D baseDSL](t *keywordTable[D]) {
	t.register(common[D]((*dslBase).treatDSL), "@DSL", "@Parser")
	t.register(common[D]((*dslBase).treatMaterial), "@Material")
	t.register(common[D]((*dslBase).treatLibrary), "@Library")
	t.register(common[D]((*dslBase).treatAuthor), "@Author")
	t.register(common[D]((*dslBase).treatDate), "@Date")
	t.register(common[D]((*dslBase).treatDescription), "@Description")
	t.register(common[D]((*dslBase).treatIncludes), "@Includes")
	t.register(common[D]((*dslBase).treatLink), "@Link")
	t.register(common[D]((*dslBase).treatImport), "@Import")
	t.register(common[D]((*dslBase).treatInterface), "@Interface")
	t.register(common[D]((*dslBase).treatParameter), "@Parameter")
	t.register(common[D]((*dslBase).treatStaticVariable), "@StaticVariable", "@StaticVar")
	t.register(common[D]((*dslBase).treatConstant), "@Constant")
	t.register(common[D]((*dslBase).treatBounds), "@Bounds")
	t.register(common[D]((*dslBase).treatPhysicalBounds), "@PhysicalBounds")
}

// ── Base ──

// dslBase holds the state shared by every DSL kind: the description
// being built, the token cursor and the hooks of the concrete DSL.
type dslBase struct {
	name    string
	aliases []string
	file    string
	current string // file being read, differs from file inside @Import
	desc    *ir.Description
	cur     *cursor
	opts    Options
	logger  *slog.Logger

	// imports holds the files being read, to detect cycles.
	imports map[string]bool

	analyse  func(source string, tokens []lexer.Token) error
	finish   func() error
	keywords func() []string
	// declared is called after a variable has been added by a keyword.
	declared func(h ir.Hypothesis, kind ir.ContainerKind, v ir.VariableDescription) error
}

func newDSLBase(name string, kind ir.DescriptionKind, file string, opts Options) dslBase {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registries == nil {
		opts.Registries = bricks.Global()
	}
	desc := ir.New(kind, file, opts.Logger)
	desc.DSL = name
	b := dslBase{
		name:    name,
		aliases: []string{name},
		file:    file,
		current: file,
		desc:    desc,
		opts:    opts,
		logger:  opts.Logger.With("file", file, "dsl", name),
		imports: make(map[string]bool),
	}
	for _, n := range defaultReservedNames {
		_ = desc.ReserveName(n, false)
	}
	return b
}

// defaultReservedNames may not be used as variable names in any DSL.
var defaultReservedNames = []string{
	"std", "tfel", "math", "material", "utilities", "policy", "errno", "mfront_errno",
	"sqrt", "exp", "log", "log10", "pow", "sin", "cos", "tan", "asin", "acos", "atan",
	"sinh", "cosh", "tanh", "abs", "min", "max", "erf", "erfc", "floor", "ceil",
	"isfinite", "isnan", "auto", "const", "return", "if", "else", "for", "while",
	"this", "true", "false", "struct", "class", "namespace", "template", "typename",
	"static", "void", "double", "float", "int", "bool", "unsigned", "short", "long",
}

func (b *dslBase) base() *dslBase { return b }

// Name returns the name of the DSL.
func (b *dslBase) Name() string { return b.name }

// Description returns the description being built.
func (b *dslBase) Description() *ir.Description { return b.desc }

// Keywords returns the keywords known by the DSL, sorted.
func (b *dslBase) Keywords() []string { return b.keywords() }

// ReserveName reserves a name in the description.
func (b *dslBase) ReserveName(name string, mustBeUnique bool) error {
	return b.desc.ReserveName(name, mustBeUnique)
}

// AnalyseString analyses a whole source text. On error the description
// is left partially built and must be discarded.
func (b *dslBase) AnalyseString(source string) error {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return err
	}
	b.imports[b.current] = true
	if err := b.analyse(source, tokens); err != nil {
		return err
	}
	return b.finish()
}

// AnalyseFile reads and analyses a file.
func (b *dslBase) AnalyseFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return b.AnalyseString(string(data))
}

// process dispatches every statement of tokens to the handlers of table.
func process[D any](b *dslBase, d D, table *keywordTable[D], source string, tokens []lexer.Token) error {
	saved := b.cur
	b.cur = newCursor(source, tokens)
	defer func() { b.cur = saved }()

	for !b.cur.isAtEnd() {
		tok := b.cur.peek()
		switch tok.Type {
		case lexer.TOKEN_SEMICOLON:
			b.cur.advance()

		case lexer.TOKEN_KEYWORD:
			h, ok := table.handlers[tok.Literal]
			if !ok {
				return &cerr.SyntaxError{
					Keyword:    tok.Literal,
					Message:    "unknown keyword",
					Line:       tok.Line,
					Column:     tok.Column,
					Suggestion: cerr.Suggest(tok.Literal, table.names),
				}
			}
			b.cur.advance()
			b.cur.keyword = tok.Literal
			b.logger.Debug("treating keyword", "keyword", tok.Literal, "line", tok.Line)
			if err := h(d); err != nil {
				return &cerr.KeywordError{Keyword: tok.Literal, Line: tok.Line, Column: tok.Column, Err: err}
			}
			b.cur.keyword = ""

		case lexer.TOKEN_IDENTIFIER:
			if err := b.treatVariableMethod(); err != nil {
				return err
			}

		default:
			return b.cur.unexpected("a keyword")
		}
	}
	return nil
}

// ── Factory ──

type factory func(file string, opts Options) DSL

var factories = map[string]factory{
	"MaterialLaw": func(file string, opts Options) DSL { return newMaterialLawDSL(file, opts) },
	"Model":       func(file string, opts Options) DSL { return newModelDSL(file, opts) },
	"DefaultDSL":  func(file string, opts Options) DSL { return newBehaviourDSL("DefaultDSL", false, file, opts) },
	"Implicit":    func(file string, opts Options) DSL { return newBehaviourDSL("Implicit", true, file, opts) },
}

// Names returns the names of the available DSLs, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New creates the DSL with the given name for file.
func New(name, file string, opts Options) (DSL, error) {
	f, ok := factories[name]
	if !ok {
		return nil, &cerr.UnknownRuleError{Name: name, Family: "DSL", Suggestion: cerr.Suggest(name, Names())}
	}
	return f(file, opts), nil
}

// Keywords returns the keywords of the named DSL.
func Keywords(name string) ([]string, error) {
	d, err := New(name, "", Options{Logger: slog.New(slog.NewTextHandler(discard{}, nil))})
	if err != nil {
		return nil, err
	}
	return d.Keywords(), nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

var initOnce sync.Once

// Init builds the rule registries and every keyword table. It must be
// called before files are analysed in parallel.
func Init() {
	initOnce.Do(func() {
		bricks.Global()
		materialLawTable()
		modelTable()
		behaviourTable(false)
		behaviourTable(true)
	})
}

// Detect returns the DSL named by the first @DSL or @Parser statement of
// tokens.
func Detect(tokens []lexer.Token) (string, error) {
	for i, tok := range tokens {
		if tok.Type != lexer.TOKEN_KEYWORD || (tok.Literal != "@DSL" && tok.Literal != "@Parser") {
			continue
		}
		if i+1 < len(tokens) && (tokens[i+1].Type == lexer.TOKEN_IDENTIFIER || tokens[i+1].Type == lexer.TOKEN_STRING_LIT) {
			return tokens[i+1].Literal, nil
		}
		return "", &cerr.SyntaxError{Keyword: tok.Literal, Message: "expected a DSL name", Line: tok.Line, Column: tok.Column}
	}
	return "", &cerr.SyntaxError{Message: "no @DSL statement found", Line: 1, Column: 1}
}

// ParseString analyses source with the DSL it names and returns the
// finished description.
func ParseString(file, source string, opts Options) (*ir.Description, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	name, err := Detect(tokens)
	if err != nil {
		return nil, err
	}
	d, err := New(name, file, opts)
	if err != nil {
		return nil, err
	}
	if err := d.AnalyseString(source); err != nil {
		return nil, err
	}
	return d.Description(), nil
}

// ParseFile reads path and analyses it with ParseString.
func ParseFile(path string, opts Options) (*ir.Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseString(path, string(data), opts)
}
