package bricks

import (
	"fmt"
	"strconv"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// inelasticFlow composes a stress criterion, an optional flow criterion,
// an optional isotropic hardening rule and any number of kinematic
// hardening rules. The flow with id <id> integrates the equivalent
// inelastic strain p<id>.
type inelasticFlow struct {
	name     string
	extra    []OptionDescription
	reg      *Registries
	equation func(f *inelasticFlow, id string) string

	sc, fc StressCriterion
	ihr    IsotropicHardeningRule
	khrs   []KinematicHardeningRule
	mps    map[string]MaterialProperty
}

func (f *inelasticFlow) Name() string { return f.name }

func (f *inelasticFlow) Options() []OptionDescription {
	opts := []OptionDescription{
		required("criterion", "stress criterion to be used (Mises, Hill, Hosford, ...)", DataStructureOption),
		optional("flow_criterion", "stress criterion giving the flow direction (non associated flow)", DataStructureOption),
		optional("isotropic_hardening", "choice of the isotropic hardening rule", DataStructureOption),
		optional("kinematic_hardening", "description of the kinematic hardening rules", DataStructuresOption),
	}
	return append(opts, f.extra...)
}

// criterionRole returns the role of the stress criterion.
func (f *inelasticFlow) criterionRole() Role {
	if f.fc == nil {
		return StressAndFlowCriterionRole
	}
	return StressCriterionRole
}

// Initialize generates every rule before initializing any of them, so
// that an unknown rule leaves the description untouched.
func (f *inelasticFlow) Initialize(desc *ir.Description, dsl DSL, id string, d DataMap) error {
	if err := CheckOptions(f.name, d, f.Options()); err != nil {
		return err
	}
	criterion, err := toDataStructure("criterion", d["criterion"])
	if err != nil {
		return &cerr.ConfigurationError{Rule: f.name, Option: "criterion", Message: err.Error()}
	}
	if f.sc, err = f.reg.StressCriteria.Generate(criterion.Name); err != nil {
		return err
	}
	var flowCriterion, isotropic DataStructure
	if v, ok := d["flow_criterion"]; ok {
		if flowCriterion, err = toDataStructure("flow_criterion", v); err != nil {
			return &cerr.ConfigurationError{Rule: f.name, Option: "flow_criterion", Message: err.Error()}
		}
		if f.fc, err = f.reg.StressCriteria.Generate(flowCriterion.Name); err != nil {
			return err
		}
	}
	if v, ok := d["isotropic_hardening"]; ok {
		if isotropic, err = toDataStructure("isotropic_hardening", v); err != nil {
			return &cerr.ConfigurationError{Rule: f.name, Option: "isotropic_hardening", Message: err.Error()}
		}
		if f.ihr, err = f.reg.IsotropicHardeningRules.Generate(isotropic.Name); err != nil {
			return err
		}
	}
	var kinematic []DataStructure
	if v, ok := d["kinematic_hardening"]; ok {
		if kinematic, err = toDataStructures("kinematic_hardening", v); err != nil {
			return &cerr.ConfigurationError{Rule: f.name, Option: "kinematic_hardening", Message: err.Error()}
		}
		for _, ds := range kinematic {
			k, err := f.reg.KinematicHardeningRules.Generate(ds.Name)
			if err != nil {
				return err
			}
			f.khrs = append(f.khrs, k)
		}
	}
	f.mps = make(map[string]MaterialProperty, len(f.extra))
	for _, o := range f.extra {
		mp, err := newMaterialProperty(o.Name, d[o.Name])
		if err != nil {
			return &cerr.ConfigurationError{Rule: f.name, Option: o.Name, Message: err.Error()}
		}
		f.mps[o.Name] = mp
	}
	if err := f.checkNestedOptions(criterion, flowCriterion, isotropic, kinematic); err != nil {
		return err
	}

	if err := f.sc.Initialize(desc, dsl, id, criterion.Data, f.criterionRole()); err != nil {
		return err
	}
	if f.fc != nil {
		if err := f.fc.Initialize(desc, dsl, id, flowCriterion.Data, FlowCriterionRole); err != nil {
			return err
		}
	}
	if f.ihr != nil {
		if err := f.ihr.Initialize(desc, dsl, id, isotropic.Data); err != nil {
			return err
		}
		if err := desc.AddVariable(ir.Undefined, ir.LocalVariables, ir.NewVariable("bool", "bpl"+id, 1)); err != nil {
			return err
		}
	}
	for kid, k := range f.khrs {
		if err := k.Initialize(desc, dsl, id, strconv.Itoa(kid), kinematic[kid].Data); err != nil {
			return err
		}
	}
	for _, o := range f.extra {
		if err := declareParameterOrLocalVariable(desc, f.mps[o.Name], "real", o.Name+"n"+id); err != nil {
			return err
		}
	}

	p := ir.NewVariable("strain", "p"+id, 1)
	p.Description = "equivalent inelastic strain"
	if err := desc.AddVariable(ir.Undefined, ir.StateVariables, p); err != nil {
		return err
	}
	if err := desc.SetExternalName(ir.Undefined, p.Name, "EquivalentInelasticStrain"+id); err != nil {
		return err
	}
	if err := reserveAll(dsl, "s"+id, "sel"+id); err != nil {
		return err
	}
	desc.Logger().Debug("inelastic flow initialized", "flow", f.name, "id", id,
		"criterion", f.sc.Name(), "kinematic_hardening_rules", len(f.khrs))
	return nil
}

// checkNestedOptions checks the options of every generated rule.
func (f *inelasticFlow) checkNestedOptions(criterion, flowCriterion, isotropic DataStructure, kinematic []DataStructure) error {
	if err := CheckOptions(f.sc.Name(), criterion.Data, f.sc.Options()); err != nil {
		return err
	}
	if f.fc != nil {
		if err := CheckOptions(f.fc.Name(), flowCriterion.Data, f.fc.Options()); err != nil {
			return err
		}
	}
	if f.ihr != nil {
		if err := CheckOptions(f.ihr.Name(), isotropic.Data, f.ihr.Options()); err != nil {
			return err
		}
	}
	for i, k := range f.khrs {
		if err := CheckOptions(k.Name(), kinematic[i].Data, k.Options()); err != nil {
			return err
		}
	}
	return nil
}

func (f *inelasticFlow) EndTreatment(desc *ir.Description, dsl DSL, id string) error {
	if err := f.sc.EndTreatment(desc, dsl, id); err != nil {
		return err
	}
	if f.fc != nil {
		if err := f.fc.EndTreatment(desc, dsl, id); err != nil {
			return err
		}
	}
	if f.ihr != nil {
		if err := f.ihr.EndTreatment(desc, dsl, id); err != nil {
			return err
		}
	}
	for kid, k := range f.khrs {
		if err := k.EndTreatment(desc, dsl, id, strconv.Itoa(kid)); err != nil {
			return err
		}
	}
	var b strings.Builder
	for _, o := range f.extra {
		b.WriteString(initializationCode(o.Name+"n"+id, f.mps[o.Name]))
	}
	if f.ihr != nil {
		b.WriteString(f.initialActivationState(id))
	}
	if err := emitInitializationCode(desc, b.String()); err != nil {
		return err
	}
	return desc.SetCode(ir.Undefined, ir.Integrator, ir.CodeBlock{Code: strings.TrimSuffix(f.integrator(id), "\n")},
		ir.CreateOrAppend, ir.AtBeginning)
}

// initialActivationState decides from the elastic prediction whether the
// flow may be active during the time step.
func (f *inelasticFlow) initialActivationState(id string) string {
	var b strings.Builder
	if len(f.khrs) == 0 {
		fmt.Fprintf(&b, "const auto& sel%s = sigel;\n", id)
	} else {
		var xs []string
		for kid, k := range f.khrs {
			b.WriteString(k.ComputeKinematicHardeningInitialValue(id, strconv.Itoa(kid)))
			for _, x := range k.KinematicHardeningVariables(id, strconv.Itoa(kid)) {
				xs = append(xs, x+"el")
			}
		}
		fmt.Fprintf(&b, "const auto sel%s = eval(sigel - %s);\n", id, strings.Join(xs, " - "))
	}
	b.WriteString(f.sc.ComputeElasticPrediction(id))
	b.WriteString(f.ihr.ComputeElasticPrediction(id))
	fmt.Fprintf(&b, "this->bpl%s = seqel%s > Rel%s;\n", id, id, id)
	return b.String()
}

// integrator returns the implicit equations of the flow.
func (f *inelasticFlow) integrator(id string) string {
	var b strings.Builder
	if f.ihr != nil {
		fmt.Fprintf(&b, "if(this->bpl%s){\n", id)
	}
	b.WriteString(f.effectiveStress(id))
	if f.fc == nil {
		b.WriteString(f.sc.ComputeNormal(id))
	} else {
		b.WriteString(f.sc.ComputeCriterion(id))
		b.WriteString(f.fc.ComputeNormal(id))
	}
	fmt.Fprintf(&b, "feel += (this->dp%s) * n%s;\n", id, id)
	if f.ihr != nil {
		b.WriteString(f.ihr.ComputeRadius(id))
	}
	b.WriteString(f.equation(f, id))
	for kid, k := range f.khrs {
		b.WriteString(k.BuildBackStrainEquation(id, strconv.Itoa(kid)))
	}
	if f.ihr != nil {
		b.WriteString("}\n")
	}
	return b.String()
}

// effectiveStress subtracts the back stresses from the stress.
func (f *inelasticFlow) effectiveStress(id string) string {
	if len(f.khrs) == 0 {
		return fmt.Sprintf("const auto& s%s = this->sig;\n", id)
	}
	var b strings.Builder
	var xs []string
	for kid, k := range f.khrs {
		b.WriteString(k.ComputeKinematicHardening(id, strconv.Itoa(kid)))
		xs = append(xs, k.KinematicHardeningVariables(id, strconv.Itoa(kid))...)
	}
	fmt.Fprintf(&b, "const auto s%s = eval(this->sig - %s);\n", id, strings.Join(xs, " - "))
	return b.String()
}

// overstress returns the distance of the equivalent stress to the elastic
// domain.
func (f *inelasticFlow) overstress(id string) string {
	if f.ihr == nil {
		return "seq" + id
	}
	return fmt.Sprintf("(seq%s - R%s)", id, id)
}

func plasticEquation(f *inelasticFlow, id string) string {
	return fmt.Sprintf("fp%s = %s / this->young;\n", id, f.overstress(id))
}

func nortonEquation(f *inelasticFlow, id string) string {
	return fmt.Sprintf("fp%s -= (this->dt) * pow(max(%s, stress(0)) / (this->Kn%s), this->En%s);\n",
		id, f.overstress(id), id, id)
}

func registerInelasticFlows(r *Registries) {
	mustAdd(r.InelasticFlows, "Plastic", func() InelasticFlow {
		return &inelasticFlow{name: "Plastic", reg: r, equation: plasticEquation}
	})
	mustAdd(r.InelasticFlows, "Norton", func() InelasticFlow {
		return &inelasticFlow{
			name: "Norton",
			extra: []OptionDescription{
				required("K", "normalisation stress", MaterialPropertyOption),
				required("E", "Norton exponent", MaterialPropertyOption),
			},
			reg:      r,
			equation: nortonEquation,
		}
	})
}
