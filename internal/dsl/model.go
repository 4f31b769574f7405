package dsl

import (
	"sync"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
	"github.com/thelfer/tfel-sub013/internal/lexer"
)

// modelDSL describes a model: named functions computing outputs from
// inputs.
type modelDSL struct {
	dslBase
}

var (
	modelOnce     sync.Once
	modelKeywords *keywordTable[*modelDSL]
)

func modelTable() *keywordTable[*modelDSL] {
	modelOnce.Do(func() {
		t := newKeywordTable[*modelDSL]()
		registerCommonKeywords(t)
		t.register((*modelDSL).treatModel, "@Model")
		t.register((*modelDSL).treatInput, "@Input")
		t.register((*modelDSL).treatOutput, "@Output")
		t.register((*modelDSL).treatFunction, "@Function")
		modelKeywords = t
	})
	return modelKeywords
}

func newModelDSL(file string, opts Options) *modelDSL {
	d := &modelDSL{dslBase: newDSLBase("Model", ir.ModelKind, file, opts)}
	d.aliases = append(d.aliases, "ModelDSL")
	d.analyse = func(source string, tokens []lexer.Token) error {
		return process(&d.dslBase, d, modelTable(), source, tokens)
	}
	d.finish = d.endTreatment
	d.keywords = modelTable().keywords
	return d
}

func (d *modelDSL) treatModel() error {
	return d.setOnce(&d.desc.Name, "model name", d.readIdentifierStatement)
}

func (d *modelDSL) treatInput() error {
	return d.declareVariables(ir.Inputs, optionallyTyped, "real")
}

func (d *modelDSL) treatOutput() error {
	return d.declareVariables(ir.Outputs, optionallyTyped, "real")
}

// treatFunction treats `@Function name { body }`.
func (d *modelDSL) treatFunction() error {
	tok := d.cur.peek()
	name, err := d.cur.readIdentifier("a function name")
	if err != nil {
		return err
	}
	if d.desc.IsReserved(name) {
		return d.cur.errorAt(tok, "function name '%s' is already used", name)
	}
	body, _, err := d.cur.readBlock()
	if err != nil {
		return err
	}
	return d.desc.AddFunction(ir.Function{Name: name, Body: body, Line: tok.Line})
}

func (d *modelDSL) endTreatment() error {
	if len(d.desc.Functions()) == 0 {
		return &cerr.ConfigurationError{Rule: d.desc.Name, Message: "no @Function defined"}
	}
	if len(d.desc.GetBehaviourData(ir.Undefined).Variables(ir.Outputs)) == 0 {
		return &cerr.ConfigurationError{Rule: d.desc.Name, Message: "no @Output declared"}
	}
	return nil
}
