package bricks

import (
	"fmt"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// equivalentStressLowerBound guards the normal of a criterion against a
// null equivalent stress.
const equivalentStressLowerBound = "real(1.e-12) * this->young"

// standardCriterion is a stress criterion whose parameters are gathered in
// a `<Name>StressCriterionParameters` structure evaluated by the
// `compute<Name>Stress` family of functions.
type standardCriterion struct {
	name       string
	opts       []OptionDescription
	arraySizes map[string]int
	symmetries []ir.Symmetry
	deviatoric bool

	// set by Initialize
	role   Role
	mps    map[string]MaterialProperty
	arrays map[string][]MaterialProperty
}

func (c *standardCriterion) Name() string                       { return c.name }
func (c *standardCriterion) Options() []OptionDescription       { return c.opts }
func (c *standardCriterion) SupportedSymmetries() []ir.Symmetry { return c.symmetries }
func (c *standardCriterion) IsNormalDeviatoric() bool           { return c.deviatoric }

func (c *standardCriterion) parameters(id string) string {
	return criterionVariableID("sscb_parameters", id, c.role)
}

// Initialize validates the options, then declares one parameter or local
// variable per material property and the parameters structure. The role
// is kept for the later queries.
func (c *standardCriterion) Initialize(desc *ir.Description, dsl DSL, id string, d DataMap, r Role) error {
	if err := CheckOptions(c.name, d, c.opts); err != nil {
		return err
	}
	mps := make(map[string]MaterialProperty)
	arrays := make(map[string][]MaterialProperty)
	for _, o := range c.opts {
		v, ok := d[o.Name]
		if !ok {
			continue
		}
		var err error
		switch o.Kind {
		case MaterialPropertyOption:
			mps[o.Name], err = newMaterialProperty(o.Name, v)
		case ArrayOfMaterialPropertiesOption:
			arrays[o.Name], err = newMaterialProperties(o.Name, v)
			if n := c.arraySizes[o.Name]; err == nil && n != 0 && len(arrays[o.Name]) != n {
				err = fmt.Errorf("expected %d values, got %d", n, len(arrays[o.Name]))
			}
		}
		if err != nil {
			return &cerr.ConfigurationError{Rule: c.name, Option: o.Name, Message: err.Error()}
		}
	}

	for _, o := range c.opts {
		n := criterionVariableID(o.Name, id, r)
		if mp, ok := mps[o.Name]; ok {
			if err := declareParameterOrLocalVariable(desc, mp, "real", n); err != nil {
				return err
			}
		}
		if arr, ok := arrays[o.Name]; ok {
			if err := declareParametersOrLocalVariables(desc, arr, "real", n); err != nil {
				return err
			}
		}
	}
	params := ir.NewVariable(c.name+"StressCriterionParameters<StressStensor>", criterionVariableID("sscb_parameters", id, r), 1)
	if err := desc.AddVariable(ir.Undefined, ir.LocalVariables, params); err != nil {
		return err
	}
	if err := reserveAll(dsl, criterionSymbols(id, r)...); err != nil {
		return err
	}
	c.role, c.mps, c.arrays = r, mps, arrays
	desc.Logger().Debug("stress criterion initialized", "criterion", c.name, "id", id, "role", r.String())
	return nil
}

// criterionSymbols returns the names introduced by the query methods.
func criterionSymbols(id string, r Role) []string {
	var names []string
	if r != FlowCriterionRole {
		names = append(names, "seq"+id, "seqel"+id, "dseq"+id+"_ds"+id, "d2seq"+id+"_ds"+id+"ds"+id)
	}
	if r != StressCriterionRole {
		names = append(names, "n"+id, "dn"+id+"_ds"+id)
	}
	if r == FlowCriterionRole {
		names = append(names, "seqf"+id)
	}
	return names
}

// EndTreatment checks the symmetry and evaluates the non-constant material
// properties into the parameters structure.
func (c *standardCriterion) EndTreatment(desc *ir.Description, dsl DSL, id string) error {
	if err := checkSymmetry(c.name, desc, c.symmetries); err != nil {
		return err
	}
	params := c.parameters(id)
	var b strings.Builder
	for _, o := range c.opts {
		n := criterionVariableID(o.Name, id, c.role)
		if mp, ok := c.mps[o.Name]; ok {
			b.WriteString(initializationCode(n, mp))
		} else if arr, ok := c.arrays[o.Name]; ok {
			b.WriteString(arrayInitializationCode(n, arr))
		} else {
			continue
		}
		fmt.Fprintf(&b, "this->%s.%s = this->%s;\n", params, o.Name, n)
	}
	return emitInitializationCode(desc, b.String())
}

func (c *standardCriterion) ComputeElasticPrediction(id string) string {
	return fmt.Sprintf("const auto seqel%s = compute%sStress(sel%s,this->%s,%s);\n",
		id, c.name, id, c.parameters(id), equivalentStressLowerBound)
}

func (c *standardCriterion) ComputeCriterion(id string) string {
	return fmt.Sprintf("const auto seq%s = compute%sStress(s%s,this->%s,%s);\n",
		id, c.name, id, c.parameters(id), equivalentStressLowerBound)
}

// ComputeNormal returns the normal under the role given to Initialize.
// Under the combined role the flow normal is an alias of the stress normal.
func (c *standardCriterion) ComputeNormal(id string) string {
	r := c.role
	call := fmt.Sprintf("compute%sStressNormal(s%s,this->%s,%s);\n",
		c.name, id, c.parameters(id), equivalentStressLowerBound)
	var b strings.Builder
	if r == StressCriterionRole || r == StressAndFlowCriterionRole {
		fmt.Fprintf(&b, "const auto [seq%s,dseq%s_ds%s] = %s", id, id, id, call)
	}
	if r == StressAndFlowCriterionRole {
		fmt.Fprintf(&b, "const auto& n%s = dseq%s_ds%s;\n", id, id, id)
	}
	if r == FlowCriterionRole {
		fmt.Fprintf(&b, "const auto [seqf%s, n%s] = %s", id, id, call)
	}
	return b.String()
}

// ComputeNormalDerivative returns the normal and its derivative, aliased
// like in ComputeNormal.
func (c *standardCriterion) ComputeNormalDerivative(id string) string {
	r := c.role
	call := fmt.Sprintf("compute%sStressSecondDerivative(s%s,this->%s,%s);\n",
		c.name, id, c.parameters(id), equivalentStressLowerBound)
	var b strings.Builder
	if r == StressCriterionRole || r == StressAndFlowCriterionRole {
		fmt.Fprintf(&b, "const auto [seq%s,dseq%s_ds%s,d2seq%s_ds%sds%s] = %s", id, id, id, id, id, id, call)
	}
	if r == StressAndFlowCriterionRole {
		fmt.Fprintf(&b, "const auto& n%s = dseq%s_ds%s;\n", id, id, id)
		fmt.Fprintf(&b, "const auto& dn%s_ds%s = d2seq%s_ds%sds%s;\n", id, id, id, id, id)
	}
	if r == FlowCriterionRole {
		fmt.Fprintf(&b, "const auto [seqf%s, n%s, dn%s_ds%s] = %s", id, id, id, id, call)
	}
	return b.String()
}

// ── Built-in criteria ──

var isotropicOnly = []ir.Symmetry{ir.Isotropic}

func registerStressCriteria(r *Registry[StressCriterion]) {
	mustAdd(r, "Mises", func() StressCriterion {
		return &standardCriterion{name: "Mises", symmetries: isotropicOnly, deviatoric: true}
	})
	mustAdd(r, "Drucker", func() StressCriterion {
		return &standardCriterion{
			name:       "Drucker",
			opts:       []OptionDescription{required("a", "Drucker coefficient", MaterialPropertyOption)},
			symmetries: isotropicOnly,
			deviatoric: true,
		}
	})
	mustAdd(r, "Hosford", func() StressCriterion {
		return &standardCriterion{
			name:       "Hosford",
			opts:       []OptionDescription{required("a", "Hosford exponent", MaterialPropertyOption)},
			symmetries: isotropicOnly,
			deviatoric: true,
		}
	})
	mustAdd(r, "Cazacu", func() StressCriterion {
		return &standardCriterion{
			name: "Cazacu",
			opts: []OptionDescription{
				required("a", "exponent", MaterialPropertyOption),
				required("k", "tension/compression asymmetry coefficient", MaterialPropertyOption),
			},
			symmetries: isotropicOnly,
			deviatoric: true,
		}
	})
	mustAdd(r, "MohrCoulomb", func() StressCriterion {
		return &standardCriterion{
			name: "MohrCoulomb",
			opts: []OptionDescription{
				required("c", "cohesion", MaterialPropertyOption),
				required("phi", "friction angle", MaterialPropertyOption),
				required("lodeT", "transition angle", MaterialPropertyOption),
				required("a", "tension cut-off parameter", MaterialPropertyOption),
			},
			symmetries: []ir.Symmetry{ir.Isotropic, ir.Orthotropic},
		}
	})
	mustAdd(r, "Hill", func() StressCriterion {
		return &standardCriterion{
			name: "Hill",
			opts: []OptionDescription{
				required("H", "Hill coefficients F, G, H, L, M, N", ArrayOfMaterialPropertiesOption),
			},
			arraySizes: map[string]int{"H": 6},
			symmetries: []ir.Symmetry{ir.Orthotropic},
			deviatoric: true,
		}
	})
}
