package bricks

import (
	"fmt"
	"strconv"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// elastoViscoPlasticityBrick describes a behaviour as a stress potential
// plus a list of inelastic flows, each flow getting its index as id.
type elastoViscoPlasticityBrick struct {
	reg *Registries

	potential string
	elastic   map[string]MaterialProperty
	flows     []InelasticFlow
}

var elasticOptions = []OptionDescription{
	optional("young_modulus", "Young modulus", MaterialPropertyOption),
	optional("poisson_ratio", "Poisson ratio", MaterialPropertyOption),
}

// elasticProperty names the variable declared for an elastic option.
var elasticProperty = map[string]struct{ name, typ, external string }{
	"young_modulus": {"young", "stress", "YoungModulus"},
	"poisson_ratio": {"nu", "real", "PoissonRatio"},
}

func (b *elastoViscoPlasticityBrick) Name() string { return "StandardElastoViscoPlasticity" }

func (b *elastoViscoPlasticityBrick) Options() []OptionDescription {
	return []OptionDescription{
		optional("stress_potential", "stress potential (Hooke)", DataStructureOption),
		required("inelastic_flow", "inelastic flows (Plastic, Norton)", DataStructuresOption),
	}
}

func (b *elastoViscoPlasticityBrick) Initialize(desc *ir.Description, dsl DSL, d DataMap) error {
	if err := CheckOptions(b.Name(), d, b.Options()); err != nil {
		return err
	}
	b.potential = "Hooke"
	var potential DataMap
	if v, ok := d["stress_potential"]; ok {
		ds, err := toDataStructure("stress_potential", v)
		if err != nil {
			return &cerr.ConfigurationError{Rule: b.Name(), Option: "stress_potential", Message: err.Error()}
		}
		if ds.Name != "Hooke" {
			return &cerr.UnknownRuleError{Name: ds.Name, Family: "stress potential", Suggestion: cerr.Suggest(ds.Name, []string{"Hooke"})}
		}
		if err := CheckOptions(ds.Name, ds.Data, elasticOptions); err != nil {
			return err
		}
		potential = ds.Data
	}
	b.elastic = make(map[string]MaterialProperty, len(potential))
	for _, o := range elasticOptions {
		v, ok := potential[o.Name]
		if !ok {
			continue
		}
		mp, err := newMaterialProperty(o.Name, v)
		if err != nil {
			return &cerr.ConfigurationError{Rule: b.potential, Option: o.Name, Message: err.Error()}
		}
		b.elastic[o.Name] = mp
	}
	flows, err := toDataStructures("inelastic_flow", d["inelastic_flow"])
	if err != nil {
		return &cerr.ConfigurationError{Rule: b.Name(), Option: "inelastic_flow", Message: err.Error()}
	}
	for _, ds := range flows {
		f, err := b.reg.InelasticFlows.Generate(ds.Name)
		if err != nil {
			return err
		}
		b.flows = append(b.flows, f)
	}

	if err := desc.SetGlobalAttribute(ir.AttrStressPotential, ir.StringAttribute(b.potential), false); err != nil {
		return err
	}
	if err := b.declareElasticProperties(desc); err != nil {
		return err
	}
	bd := desc.GetBehaviourData(ir.Undefined)
	if !bd.ContainsVariable("eel") {
		eel := ir.NewVariable("StrainStensor", "eel", 1)
		eel.Description = "elastic strain"
		if err := desc.AddVariable(ir.Undefined, ir.StateVariables, eel); err != nil {
			return err
		}
		if err := desc.SetExternalName(ir.Undefined, "eel", "ElasticStrain"); err != nil {
			return err
		}
	}
	for i, f := range b.flows {
		if err := f.Initialize(desc, dsl, strconv.Itoa(i), flows[i].Data); err != nil {
			return fmt.Errorf("inelastic flow #%d (%s): %w", i, f.Name(), err)
		}
	}
	desc.Logger().Debug("brick initialized", "brick", b.Name(), "stress_potential", b.potential, "flows", len(b.flows))
	return nil
}

// declareElasticProperties declares the Young modulus and the Poisson
// ratio. An elastic property given as an option becomes a parameter or a
// local variable; otherwise it is a material property, unless the user
// already declared it.
func (b *elastoViscoPlasticityBrick) declareElasticProperties(desc *ir.Description) error {
	bd := desc.GetBehaviourData(ir.Undefined)
	for _, o := range elasticOptions {
		p := elasticProperty[o.Name]
		if bd.ContainsVariable(p.name) {
			if _, given := b.elastic[o.Name]; given {
				return &cerr.NameCollisionError{Name: p.name, Context: b.potential}
			}
			continue
		}
		if mp, ok := b.elastic[o.Name]; ok {
			if err := declareParameterOrLocalVariable(desc, mp, p.typ, p.name); err != nil {
				return err
			}
			continue
		}
		if err := desc.AddVariable(ir.Undefined, ir.MaterialProperties, ir.NewVariable(p.typ, p.name, 1)); err != nil {
			return err
		}
		if err := desc.SetExternalName(ir.Undefined, p.name, p.external); err != nil {
			return err
		}
	}
	return nil
}

func (b *elastoViscoPlasticityBrick) EndTreatment(desc *ir.Description, dsl DSL) error {
	var code strings.Builder
	for _, o := range elasticOptions {
		if mp, ok := b.elastic[o.Name]; ok {
			code.WriteString(initializationCode(elasticProperty[o.Name].name, mp))
		}
	}
	if err := emitInitializationCode(desc, code.String()); err != nil {
		return err
	}
	for i, f := range b.flows {
		if err := f.EndTreatment(desc, dsl, strconv.Itoa(i)); err != nil {
			return fmt.Errorf("inelastic flow #%d (%s): %w", i, f.Name(), err)
		}
	}
	return nil
}

func registerBricks(r *Registries) {
	mustAdd(r.Bricks, "StandardElastoViscoPlasticity", func() Brick {
		return &elastoViscoPlasticityBrick{reg: r}
	})
}
