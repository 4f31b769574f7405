package dsl

import (
	"sync"

	"github.com/thelfer/tfel-sub013/internal/ir"
	"github.com/thelfer/tfel-sub013/internal/lexer"
)

// materialLawDSL describes a material property: a function of scalar
// inputs returning a single output.
type materialLawDSL struct {
	dslBase

	function *ir.Function
}

var (
	materialLawOnce     sync.Once
	materialLawKeywords *keywordTable[*materialLawDSL]
)

func materialLawTable() *keywordTable[*materialLawDSL] {
	materialLawOnce.Do(func() {
		t := newKeywordTable[*materialLawDSL]()
		registerCommonKeywords(t)
		t.register((*materialLawDSL).treatLaw, "@Law")
		t.register((*materialLawDSL).treatInput, "@Input")
		t.register((*materialLawDSL).treatOutput, "@Output")
		t.register((*materialLawDSL).treatFunction, "@Function")
		materialLawKeywords = t
	})
	return materialLawKeywords
}

func newMaterialLawDSL(file string, opts Options) *materialLawDSL {
	d := &materialLawDSL{dslBase: newDSLBase("MaterialLaw", ir.MaterialPropertyKind, file, opts)}
	d.aliases = append(d.aliases, "MaterialProperty")
	d.analyse = func(source string, tokens []lexer.Token) error {
		return process(&d.dslBase, d, materialLawTable(), source, tokens)
	}
	d.finish = d.endTreatment
	d.keywords = materialLawTable().keywords
	return d
}

func (d *materialLawDSL) treatLaw() error {
	return d.setOnce(&d.desc.Name, "law name", d.readIdentifierStatement)
}

func (d *materialLawDSL) treatInput() error {
	return d.declareVariables(ir.Inputs, untyped, "real")
}

func (d *materialLawDSL) treatOutput() error {
	tok := d.cur.peek()
	if len(d.desc.GetBehaviourData(ir.Undefined).Variables(ir.Outputs)) != 0 {
		return d.cur.errorAt(tok, "output already declared")
	}
	v, err := d.readVariableName()
	if err != nil {
		return err
	}
	if v.IsArray() {
		return d.cur.errorAt(tok, "the output can't be an array")
	}
	v.Type = "real"
	if err := d.cur.expectSemicolon(); err != nil {
		return err
	}
	return d.addVariable(ir.Undefined, ir.Outputs, v)
}

func (d *materialLawDSL) treatFunction() error {
	tok := d.cur.peek()
	body, _, err := d.cur.readBlock()
	if err != nil {
		return err
	}
	if d.function != nil {
		return d.cur.errorAt(tok, "function already defined")
	}
	d.function = &ir.Function{Body: body, Line: tok.Line}
	return nil
}

// endTreatment declares the default output `res` when none was given and
// records the function under the law name.
func (d *materialLawDSL) endTreatment() error {
	if len(d.desc.GetBehaviourData(ir.Undefined).Variables(ir.Outputs)) == 0 {
		if err := d.desc.AddVariable(ir.Undefined, ir.Outputs, ir.NewVariable("real", "res", 1)); err != nil {
			return err
		}
	}
	if d.function == nil {
		return nil
	}
	d.function.Name = d.desc.Name
	if d.function.Name == "" {
		d.function.Name = "law"
	}
	return d.desc.AddFunction(*d.function)
}
