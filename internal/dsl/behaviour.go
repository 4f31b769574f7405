package dsl

import (
	"fmt"
	"sync"

	"github.com/thelfer/tfel-sub013/internal/bricks"
	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
	"github.com/thelfer/tfel-sub013/internal/lexer"
)

// behaviourDSL describes a mechanical behaviour. The implicit flavour
// predeclares the strain and the stress, accepts bricks and the numerical
// parameters of the implicit scheme.
type behaviourDSL struct {
	dslBase

	implicit bool
	bricks   []bricks.Brick
	// increments records the variables whose increment names are reserved.
	increments map[string]bool
}

// Default numerical parameters of the implicit scheme.
const (
	defaultEpsilon = 1e-8
	defaultTheta   = 0.5
	defaultIterMax = 100
)

var algorithms = []string{
	"NewtonRaphson",
	"NewtonRaphson_NumericalJacobian",
	"Broyden",
	"Broyden2",
	"PowellDogLeg_NewtonRaphson",
	"LevenbergMarquardt",
}

var (
	behaviourOnce     [2]sync.Once
	behaviourKeywords [2]*keywordTable[*behaviourDSL]
)

func behaviourTable(implicit bool) *keywordTable[*behaviourDSL] {
	i := 0
	if implicit {
		i = 1
	}
	behaviourOnce[i].Do(func() {
		t := newKeywordTable[*behaviourDSL]()
		registerCommonKeywords(t)
		t.register((*behaviourDSL).treatBehaviour, "@Behaviour")
		t.register((*behaviourDSL).treatSymmetry, "@Symmetry")
		t.register((*behaviourDSL).treatOrthotropicBehaviour, "@OrthotropicBehaviour")
		t.register((*behaviourDSL).treatModellingHypotheses, "@ModellingHypothesis", "@ModellingHypotheses")
		t.register((*behaviourDSL).treatAllowNewUserDefinedVariables, "@AllowNewUserDefinedVariables")

		t.register(declare(ir.MaterialProperties), "@MaterialProperty", "@Coef")
		t.register(declare(ir.StateVariables), "@StateVariable", "@StateVar")
		t.register(declare(ir.AuxiliaryStateVariables), "@AuxiliaryStateVariable", "@AuxiliaryStateVar")
		t.register(declare(ir.ExternalStateVariables), "@ExternalStateVariable", "@ExternalStateVar")
		t.register(declare(ir.IntegrationVariables), "@IntegrationVariable")
		t.register(declare(ir.LocalVariables), "@LocalVariable", "@LocalVar")

		t.register(codeBlock(ir.InitializeLocalVariables), "@InitLocalVariables", "@InitializeLocalVariables")
		t.register(codeBlock(ir.Integrator), "@Integrator")
		t.register(codeBlock(ir.ComputeStress), "@ComputeStress")
		t.register(codeBlock(ir.ComputeFinalStress), "@ComputeFinalStress")
		t.register(codeBlock(ir.ComputePredictor), "@Predictor")
		t.register(codeBlock(ir.UpdateAuxiliaryStateVariables), "@UpdateAuxiliaryStateVariables", "@UpdateAuxiliaryStateVars")
		t.register(codeBlock(ir.AdditionalConvergenceChecks), "@AdditionalConvergenceChecks")

		if implicit {
			t.register((*behaviourDSL).treatBrick, "@Brick")
			t.register((*behaviourDSL).treatAlgorithm, "@Algorithm")
			t.register(numericalParameter("epsilon", "real"), "@Epsilon")
			t.register(numericalParameter("theta", "real"), "@Theta")
			t.register(numericalParameter("iterMax", "ushort"), "@IterMax")
		} else {
			t.register(declare(ir.Gradients), "@Gradient")
			t.register(declare(ir.ThermodynamicForces), "@ThermodynamicForce", "@Flux")
		}
		behaviourKeywords[i] = t
	})
	return behaviourKeywords[i]
}

func newBehaviourDSL(name string, implicit bool, file string, opts Options) *behaviourDSL {
	d := &behaviourDSL{
		dslBase:    newDSLBase(name, ir.BehaviourKind, file, opts),
		implicit:   implicit,
		increments: make(map[string]bool),
	}
	if implicit {
		d.aliases = append(d.aliases, "ImplicitDSL")
	}
	table := behaviourTable(implicit)
	d.analyse = func(source string, tokens []lexer.Token) error {
		return process(&d.dslBase, d, table, source, tokens)
	}
	d.finish = d.endTreatment
	d.keywords = table.keywords
	d.declared = func(ir.Hypothesis, ir.ContainerKind, ir.VariableDescription) error {
		return d.reserveIncrements()
	}
	d.declarePredefinedVariables()
	return d
}

// declarePredefinedVariables declares the temperature and, for implicit
// behaviours, the strain and the stress. It runs on an empty description
// and can't fail.
func (d *behaviourDSL) declarePredefinedVariables() {
	for _, n := range []string{"dt", "D", "Dt"} {
		_ = d.desc.ReserveName(n, false)
	}
	add := func(kind ir.ContainerKind, typ, name, ext, text string) {
		v := ir.NewVariable(typ, name, 1)
		v.ExternalName = ext
		v.Description = text
		_ = d.addVariable(ir.Undefined, kind, v)
	}
	add(ir.ExternalStateVariables, "temperature", "T", "Temperature", "temperature")
	if d.implicit {
		add(ir.Gradients, "StrainStensor", "eto", "Strain", "total strain")
		add(ir.ThermodynamicForces, "StressStensor", "sig", "Stress", "stress")
		_ = d.desc.ReserveName("sigel", false)
	}
}

// reserveIncrements reserves the increment `d<name>` of every state,
// integration and external state variable, and for implicit behaviours
// the residual `f<name>` of every unknown.
func (d *behaviourDSL) reserveIncrements() error {
	hs := append([]ir.Hypothesis{ir.Undefined}, d.desc.GetDistinctModellingHypotheses()...)
	for _, h := range hs {
		bd := d.desc.GetBehaviourData(h)
		for _, kind := range []ir.ContainerKind{ir.StateVariables, ir.IntegrationVariables, ir.ExternalStateVariables, ir.Gradients} {
			for _, v := range bd.Variables(kind) {
				if d.increments[v.Name] {
					continue
				}
				d.increments[v.Name] = true
				names := []string{"d" + v.Name}
				if d.implicit && (kind == ir.StateVariables || kind == ir.IntegrationVariables) {
					names = append(names, "f"+v.Name)
				}
				for _, n := range names {
					if err := d.desc.ReserveName(n, true); err != nil {
						return fmt.Errorf("increment of '%s': %w", v.Name, err)
					}
				}
			}
		}
	}
	return nil
}

// ── Keywords ──

func (d *behaviourDSL) treatBehaviour() error {
	return d.setOnce(&d.desc.Name, "behaviour name", d.readIdentifierStatement)
}

func (d *behaviourDSL) treatSymmetry() error {
	tok := d.cur.peek()
	name, err := d.cur.readName("a symmetry")
	if err != nil {
		return err
	}
	s, err := ir.ParseSymmetry(name)
	if err != nil {
		return d.cur.errorAt(tok, "%s", err.Error())
	}
	if err := d.cur.expectSemicolon(); err != nil {
		return err
	}
	return d.desc.SetSymmetry(s)
}

func (d *behaviourDSL) treatOrthotropicBehaviour() error {
	if err := d.cur.expectSemicolon(); err != nil {
		return err
	}
	return d.desc.SetSymmetry(ir.Orthotropic)
}

func (d *behaviourDSL) treatModellingHypotheses() error {
	tok := d.cur.peek()
	names, err := d.cur.readStringArray("a modelling hypothesis")
	if err != nil {
		return err
	}
	if err := d.cur.expectSemicolon(); err != nil {
		return err
	}
	hs := make([]ir.Hypothesis, 0, len(names))
	for _, n := range names {
		h, err := ir.ParseHypothesis(n)
		if err != nil {
			return d.cur.errorAt(tok, "%s", err.Error())
		}
		hs = append(hs, h)
	}
	return d.desc.SetModellingHypotheses(hs)
}

func (d *behaviourDSL) treatAllowNewUserDefinedVariables() error {
	if err := d.cur.expectSemicolon(); err != nil {
		return err
	}
	return d.desc.SetGlobalAttribute(ir.AttrAllowsNewUserDefinedVariables, ir.BoolAttribute(true), false)
}

func declare(kind ir.ContainerKind) keywordHandler[*behaviourDSL] {
	return func(d *behaviourDSL) error {
		return d.declareVariables(kind, typed, "")
	}
}

func (d *behaviourDSL) treatAlgorithm() error {
	tok := d.cur.peek()
	name, err := d.cur.readName("an algorithm")
	if err != nil {
		return err
	}
	known := false
	for _, a := range algorithms {
		known = known || a == name
	}
	if !known {
		return &cerr.SyntaxError{
			Keyword:    d.cur.keyword,
			Message:    fmt.Sprintf("unknown algorithm '%s'", name),
			Line:       tok.Line,
			Column:     tok.Column,
			Suggestion: cerr.Suggest(name, algorithms),
		}
	}
	if err := d.cur.expectSemicolon(); err != nil {
		return err
	}
	return d.desc.SetGlobalAttribute(ir.AttrAlgorithm, ir.StringAttribute(name), false)
}

// numericalParameter treats `@Epsilon 1e-14;` and its siblings, which
// declare a parameter of the implicit scheme.
func numericalParameter(name, typ string) keywordHandler[*behaviourDSL] {
	return func(d *behaviourDSL) error {
		tok := d.cur.peek()
		value, err := d.cur.readNumber()
		if err != nil {
			return err
		}
		if err := d.cur.expectSemicolon(); err != nil {
			return err
		}
		switch {
		case name == "epsilon" && value <= 0:
			return d.cur.errorAt(tok, "the convergence criterion must be strictly positive")
		case name == "theta" && (value <= 0 || value > 1):
			return d.cur.errorAt(tok, "theta must be in ]0:1]")
		case name == "iterMax" && (value < 1 || value != float64(int(value))):
			return d.cur.errorAt(tok, "the maximum number of iterations must be a strictly positive integer")
		}
		return d.declareNumericalParameter(name, typ, value)
	}
}

func (d *behaviourDSL) declareNumericalParameter(name, typ string, value float64) error {
	if err := d.desc.AddVariable(ir.Undefined, ir.Parameters, ir.NewVariable(typ, name, 1)); err != nil {
		return err
	}
	return d.desc.SetParameterDefault(ir.Undefined, name, value)
}

// ── Code blocks ──

var (
	codeBlockModes     = []string{"Create", "Append", "CreateOrAppend", "Replace", "CreateOrReplace", "CreateButDontReplace"}
	codeBlockPositions = map[string]ir.Position{"AtBeginning": ir.AtBeginning, "Body": ir.Body, "AtEnd": ir.AtEnd}
)

func codeBlock(name string) keywordHandler[*behaviourDSL] {
	return func(d *behaviourDSL) error {
		return d.treatCodeBlock(name)
	}
}

// treatCodeBlock treats `@Block<H>{options}{code}`, where the options
// are a merge mode and a position.
func (d *behaviourDSL) treatCodeBlock(name string) error {
	h, err := d.readHypothesis()
	if err != nil {
		return err
	}
	mode, pos := ir.Create, ir.Body
	if d.hasCodeBlockOptions() {
		if mode, pos, err = d.readCodeBlockOptions(); err != nil {
			return err
		}
	}
	code, _, err := d.cur.readBlock()
	if err != nil {
		return err
	}
	return d.desc.SetCode(h, name, ir.CodeBlock{Code: code}, mode, pos)
}

// hasCodeBlockOptions reports whether the next brace group only holds
// identifiers and commas and is followed by the code itself.
func (d *behaviourDSL) hasCodeBlockOptions() bool {
	if !d.cur.check(lexer.TOKEN_LBRACE) {
		return false
	}
	for i := 1; ; i++ {
		switch d.cur.peekAt(i).Type {
		case lexer.TOKEN_IDENTIFIER, lexer.TOKEN_COMMA:
		case lexer.TOKEN_RBRACE:
			return i > 1 && d.cur.peekAt(i+1).Type == lexer.TOKEN_LBRACE
		default:
			return false
		}
	}
}

func (d *behaviourDSL) readCodeBlockOptions() (ir.Mode, ir.Position, error) {
	mode, pos := ir.Create, ir.Body
	modeSet, posSet := false, false
	d.cur.advance() // {
	for !d.cur.match(lexer.TOKEN_RBRACE) {
		if d.cur.match(lexer.TOKEN_COMMA) {
			continue
		}
		tok := d.cur.advance()
		if p, ok := codeBlockPositions[tok.Literal]; ok {
			if posSet {
				return mode, pos, d.cur.errorAt(tok, "position given twice")
			}
			pos, posSet = p, true
			continue
		}
		m, err := ir.ParseMode(tok.Literal)
		if err != nil {
			candidates := append([]string{"AtBeginning", "Body", "AtEnd"}, codeBlockModes...)
			return mode, pos, &cerr.SyntaxError{
				Keyword:    d.cur.keyword,
				Message:    fmt.Sprintf("unknown code block option '%s'", tok.Literal),
				Line:       tok.Line,
				Column:     tok.Column,
				Suggestion: cerr.Suggest(tok.Literal, candidates),
			}
		}
		if modeSet {
			return mode, pos, d.cur.errorAt(tok, "mode given twice")
		}
		mode, modeSet = m, true
	}
	return mode, pos, nil
}

// ── Bricks ──

// treatBrick treats `@Brick Name {options};`. The brick is initialized
// immediately and finished once the whole file has been read.
func (d *behaviourDSL) treatBrick() error {
	tok := d.cur.peek()
	name, err := d.cur.readName("a brick name")
	if err != nil {
		return err
	}
	options := bricks.DataMap{}
	if d.cur.check(lexer.TOKEN_LBRACE) {
		if options, err = d.cur.readDataMap(); err != nil {
			return err
		}
	}
	if err := d.cur.expectSemicolon(); err != nil {
		return err
	}
	b, err := d.opts.Registries.Bricks.Generate(name)
	if err != nil {
		return err
	}
	d.logger.Debug("initializing brick", "brick", name, "line", tok.Line)
	if err := b.Initialize(d.desc, d, options); err != nil {
		return fmt.Errorf("brick '%s': %w", name, err)
	}
	d.desc.AddBrick(b.Name())
	d.bricks = append(d.bricks, b)
	return d.reserveIncrements()
}

// ── End of file ──

// endTreatment declares the missing numerical parameters, then lets each
// brick contribute its code in declaration order.
func (d *behaviourDSL) endTreatment() error {
	if d.implicit {
		defaults := []struct {
			name, typ string
			value     float64
		}{
			{"epsilon", "real", defaultEpsilon},
			{"theta", "real", defaultTheta},
			{"iterMax", "ushort", defaultIterMax},
		}
		for _, p := range defaults {
			if d.desc.GetBehaviourData(ir.Undefined).ContainsVariable(p.name) {
				continue
			}
			if err := d.declareNumericalParameter(p.name, p.typ, p.value); err != nil {
				return err
			}
		}
	}
	for _, b := range d.bricks {
		if err := b.EndTreatment(d.desc, d); err != nil {
			return fmt.Errorf("brick '%s': %w", b.Name(), err)
		}
	}
	return nil
}
