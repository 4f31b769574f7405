package bricks

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// ── Helpers ──

// testDSL reserves names directly in the description.
type testDSL struct {
	desc *ir.Description
}

func (d testDSL) Name() string { return "Implicit" }

func (d testDSL) ReserveName(name string, mustBeUnique bool) error {
	return d.desc.ReserveName(name, mustBeUnique)
}

func newBehaviour(t *testing.T) (*ir.Description, DSL) {
	t.Helper()
	desc := ir.New(ir.BehaviourKind, "test.mfront", nil)
	return desc, testDSL{desc: desc}
}

func decode(t *testing.T, src string) DataMap {
	t.Helper()
	d, err := DecodeDataMap([]byte(src))
	require.NoError(t, err)
	return d
}

// applyBrick runs both phases of a brick the way the DSL does.
func applyBrick(t *testing.T, desc *ir.Description, dsl DSL, name, options string) error {
	t.Helper()
	b, err := NewRegistries().Bricks.Generate(name)
	require.NoError(t, err)
	if err := b.Initialize(desc, dsl, decode(t, options)); err != nil {
		return err
	}
	return b.EndTreatment(desc, dsl)
}

func kindOf(err error) cerr.Kind {
	return cerr.KindOf(err)
}

func code(t *testing.T, desc *ir.Description, block string) string {
	t.Helper()
	c, ok := desc.GetBehaviourData(ir.Undefined).Code(block)
	require.True(t, ok, "code block %s is not defined", block)
	return c
}

// ── Registry ──

func TestRegistrySingleRegistration(t *testing.T) {
	r := NewRegistry[StressCriterion]("stress criterion")
	factory := func() StressCriterion { return &standardCriterion{name: "Mises"} }
	require.NoError(t, r.AddGenerator("Mises", factory))

	err := r.AddGenerator("Mises", factory)
	require.Error(t, err)
	var collision *cerr.NameCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "Mises", collision.Name)
	assert.Equal(t, "stress criterion", collision.Context)

	// The first registration is kept.
	assert.Equal(t, []string{"Mises"}, r.Names())
}

func TestRegistryGenerateReturnsFreshObjects(t *testing.T) {
	r := NewRegistries()
	a, err := r.StressCriteria.Generate("Mises")
	require.NoError(t, err)
	b, err := r.StressCriteria.Generate("Mises")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

func TestRegistryUnknownRule(t *testing.T) {
	r := NewRegistries()

	_, err := r.Bricks.Generate("UnknownBrick")
	require.Error(t, err)
	assert.Equal(t, cerr.KindUnknownRule, kindOf(err))

	_, err = r.StressCriteria.Generate("Mices")
	var unknown *cerr.UnknownRuleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "stress criterion", unknown.Family)
	assert.Equal(t, "Mises", unknown.Suggestion)
}

func TestBuiltinRules(t *testing.T) {
	r := NewRegistries()
	assert.Equal(t, []string{"Cazacu", "Drucker", "Hill", "Hosford", "Mises", "MohrCoulomb"}, r.StressCriteria.Names())
	assert.Equal(t, []string{"Armstrong-Frederick", "Burlet-Cailletaud", "Chaboche2012", "Orthotropic", "Prager"},
		r.KinematicHardeningRules.Names())
	assert.Equal(t, []string{"Linear", "Voce"}, r.IsotropicHardeningRules.Names())
	assert.Equal(t, []string{"Norton", "Plastic"}, r.InelasticFlows.Names())
	assert.Equal(t, []string{"StandardElastoViscoPlasticity"}, r.Bricks.Names())
}

func TestGlobalRegistriesConcurrentAccess(t *testing.T) {
	ResetGlobal()
	defer ResetGlobal()

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = Global().KinematicHardeningRules.Generate("Prager")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Same(t, Global(), Global())
}

// ── Stress criteria ──

func TestSharedNormal(t *testing.T) {
	desc, dsl := newBehaviour(t)
	c, err := NewRegistries().StressCriteria.Generate("Mises")
	require.NoError(t, err)
	require.NoError(t, c.Initialize(desc, dsl, "0", DataMap{}, StressAndFlowCriterionRole))

	normal := c.ComputeNormal("0")
	assert.Equal(t, 1, strings.Count(normal, "computeMisesStressNormal"))
	assert.Contains(t, normal, "const auto [seq0,dseq0_ds0] = computeMisesStressNormal(s0,this->sscb_parameters0,")
	assert.Contains(t, normal, "const auto& n0 = dseq0_ds0;")

	derivative := c.ComputeNormalDerivative("0")
	assert.Equal(t, 1, strings.Count(derivative, "computeMisesStressSecondDerivative"))
	assert.Contains(t, derivative, "const auto& n0 = dseq0_ds0;")
	assert.Contains(t, derivative, "const auto& dn0_ds0 = d2seq0_ds0ds0;")

	params, ok := desc.GetBehaviourData(ir.Undefined).Variables(ir.LocalVariables).Get("sscb_parameters0")
	require.True(t, ok)
	assert.Equal(t, "MisesStressCriterionParameters<StressStensor>", params.Type)
	for _, n := range []string{"seq0", "seqel0", "dseq0_ds0", "n0", "dn0_ds0"} {
		assert.True(t, desc.IsReserved(n), n)
	}
}

func TestFlowCriterionRole(t *testing.T) {
	desc, dsl := newBehaviour(t)
	r := NewRegistries()
	sc, err := r.StressCriteria.Generate("Drucker")
	require.NoError(t, err)
	fc, err := r.StressCriteria.Generate("Drucker")
	require.NoError(t, err)

	require.NoError(t, sc.Initialize(desc, dsl, "0", DataMap{"a": Number(0.3)}, StressCriterionRole))
	require.NoError(t, fc.Initialize(desc, dsl, "0", DataMap{"a": Number(0.1)}, FlowCriterionRole))

	params := desc.GetBehaviourData(ir.Undefined).Variables(ir.Parameters)
	assert.Equal(t, []string{"a0", "af0"}, params.Names())

	assert.NotContains(t, sc.ComputeNormal("0"), "n0 =")
	assert.Contains(t, fc.ComputeNormal("0"),
		"const auto [seqf0, n0] = computeDruckerStressNormal(s0,this->sscb_parametersf0,")
	assert.True(t, desc.IsReserved("seqf0"))
}

func TestCriterionQueriesFollowInitializedRole(t *testing.T) {
	desc, dsl := newBehaviour(t)
	c, err := NewRegistries().StressCriteria.Generate("Drucker")
	require.NoError(t, err)
	require.NoError(t, c.Initialize(desc, dsl, "2", DataMap{"a": Number(0.1)}, FlowCriterionRole))
	require.NoError(t, c.EndTreatment(desc, dsl, "2"))

	locals := desc.GetBehaviourData(ir.Undefined).Variables(ir.LocalVariables)
	assert.True(t, locals.Contains("sscb_parametersf2"))
	assert.False(t, locals.Contains("sscb_parameters2"))

	for name, generated := range map[string]string{
		"normal":     c.ComputeNormal("2"),
		"derivative": c.ComputeNormalDerivative("2"),
		"prediction": c.ComputeElasticPrediction("2"),
	} {
		assert.Contains(t, generated, "this->sscb_parametersf2,", name)
		assert.NotContains(t, generated, "this->sscb_parameters2,", name)
	}
	assert.Contains(t, c.ComputeNormalDerivative("2"), "const auto [seqf2, n2, dn2_ds2] =")
	assert.Contains(t, code(t, desc, ir.BeforeInitializeLocalVariables), "this->sscb_parametersf2.a = this->af2;")
}

func TestCriterionUnknownOption(t *testing.T) {
	desc, dsl := newBehaviour(t)
	c, err := NewRegistries().StressCriteria.Generate("Hosford")
	require.NoError(t, err)

	err = c.Initialize(desc, dsl, "0", DataMap{"A": Number(8)}, StressAndFlowCriterionRole)
	var cfg *cerr.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "Hosford", cfg.Rule)
	assert.Equal(t, "A", cfg.Option)
	assert.Contains(t, cfg.Message, "did you mean 'a'?")
}

func TestCriterionOptionErrors(t *testing.T) {
	tests := []struct {
		name      string
		criterion string
		options   DataMap
		option    string
		message   string
	}{
		{"missing", "Drucker", DataMap{}, "a", "option is required"},
		{"wrong kind", "Drucker", DataMap{"a": Array{Number(1)}}, "a", "expected a material property, got a array"},
		{"array size", "Hill", DataMap{"H": Array{Number(1), Number(1), Number(1), Number(1), Number(1)}}, "H", "expected 6 values, got 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, dsl := newBehaviour(t)
			c, err := NewRegistries().StressCriteria.Generate(tt.criterion)
			require.NoError(t, err)

			err = c.Initialize(desc, dsl, "0", tt.options, StressAndFlowCriterionRole)
			var cfg *cerr.ConfigurationError
			require.ErrorAs(t, err, &cfg)
			assert.Equal(t, tt.option, cfg.Option)
			assert.Contains(t, cfg.Message, tt.message)

			// Nothing was declared.
			bd := desc.GetBehaviourData(ir.Undefined)
			assert.Empty(t, bd.Variables(ir.Parameters))
			assert.Empty(t, bd.Variables(ir.LocalVariables))
			assert.Empty(t, desc.ReservedNames())
		})
	}
}

func TestCriterionMaterialProperties(t *testing.T) {
	desc, dsl := newBehaviour(t)
	c, err := NewRegistries().StressCriteria.Generate("Cazacu")
	require.NoError(t, err)
	options := DataMap{"a": Number(2), "k": String("0.3 * (1 - this->T / 1000)")}
	require.NoError(t, c.Initialize(desc, dsl, "1", options, StressAndFlowCriterionRole))
	require.NoError(t, c.EndTreatment(desc, dsl, "1"))

	bd := desc.GetBehaviourData(ir.Undefined)
	values, ok := bd.ParameterDefault("a1")
	require.True(t, ok)
	assert.Equal(t, []float64{2}, values)
	assert.True(t, bd.Variables(ir.LocalVariables).Contains("k1"))

	init := code(t, desc, ir.BeforeInitializeLocalVariables)
	assert.Contains(t, init, "this->k1 = 0.3 * (1 - this->T / 1000);")
	assert.Contains(t, init, "this->sscb_parameters1.k = this->k1;")
	assert.Contains(t, init, "this->sscb_parameters1.a = this->a1;")
}

func TestExternalMaterialLaw(t *testing.T) {
	mp, err := newMaterialProperty("E", String("materials/UO2_YoungModulus.mfront"))
	require.NoError(t, err)
	assert.False(t, mp.Constant)
	assert.Equal(t, "UO2_YoungModulus(this->T)", mp.Formula)

	_, err = newMaterialProperty("E", String("  "))
	assert.Error(t, err)
}

func TestSymmetryCheckedAtEndTreatment(t *testing.T) {
	desc, dsl := newBehaviour(t)
	c, err := NewRegistries().StressCriteria.Generate("Hill")
	require.NoError(t, err)
	H := Array{Number(0.371), Number(0.629), Number(4.052), Number(1.5), Number(1.5), Number(1.5)}
	require.NoError(t, c.Initialize(desc, dsl, "0", DataMap{"H": H}, StressAndFlowCriterionRole))

	err = c.EndTreatment(desc, dsl, "0")
	var sym *cerr.SymmetryError
	require.ErrorAs(t, err, &sym)
	assert.Equal(t, "Hill", sym.Rule)
	assert.Equal(t, "isotropic", sym.Symmetry)

	values, ok := desc.GetBehaviourData(ir.Undefined).ParameterDefault("H0")
	require.True(t, ok)
	assert.Len(t, values, 6)
}

// ── Kinematic hardening ──

func TestChabocheOptionsGivenTogether(t *testing.T) {
	desc, dsl := newBehaviour(t)
	k, err := NewRegistries().KinematicHardeningRules.Generate("Chaboche2012")
	require.NoError(t, err)

	options := DataMap{"C": Number(1e9), "D": Number(10), "m": Number(2), "w": Number(0.6), "b": Number(3)}
	err = k.Initialize(desc, dsl, "0", "0", options)
	var cfg *cerr.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "Phi_inf", cfg.Option)
	assert.Contains(t, cfg.Message, "must be given together")

	options["Phi_inf"] = Number(0.5)
	require.NoError(t, k.Initialize(desc, dsl, "0", "0", options))
	eq := k.BuildBackStrainEquation("0", "0")
	assert.Contains(t, eq, "const auto exp_mbp0_0 = exp(-(this->b0_0)*(this->p0 + ((this->theta) * (this->dp0))));")
	assert.Contains(t, eq, "fa0_0 -= (this->dp0) * (n0 - (this->D0_0) * Phi0_0 * Psi0_0 * a0_0_);")
	assert.Contains(t, eq, "} else {\nfa0_0 -= (this->dp0) * n0;\n}")
}

func TestOrthotropicKinematicHardening(t *testing.T) {
	desc, dsl := newBehaviour(t)
	require.NoError(t, desc.SetSymmetry(ir.Orthotropic))
	k, err := NewRegistries().KinematicHardeningRules.Generate("Orthotropic")
	require.NoError(t, err)

	six := Array{Number(1), Number(1), Number(1), Number(1), Number(1), Number(1)}
	options := DataMap{"C": Number(1e9), "Ec": six, "Rs": six, "Rd": six}
	require.NoError(t, k.Initialize(desc, dsl, "0", "0", options))
	require.NoError(t, k.EndTreatment(desc, dsl, "0", "0"))

	bd := desc.GetBehaviourData(ir.Undefined)
	D, ok := bd.ParameterDefault("D0_0")
	require.True(t, ok)
	assert.Equal(t, []float64{1}, D)
	assert.True(t, bd.Variables(ir.LocalVariables).Contains("Ec0_0_tensor"))
	assert.Contains(t, code(t, desc, ir.BeforeInitializeLocalVariables),
		"this->Rd0_0_tensor = makeHillTensor<StressStensor>(this->Rd0_0[0],this->Rd0_0[1],this->Rd0_0[2],this->Rd0_0[3],this->Rd0_0[4],this->Rd0_0[5]);")
}

// ── Bricks ──

const twoPragerFlows = `
stress_potential: {name: Hooke, young_modulus: 150e9, poisson_ratio: 0.3}
inelastic_flow:
  - name: Plastic
    criterion: Mises
    isotropic_hardening: {name: Linear, R0: 33e6, H: 1e9}
    kinematic_hardening: {name: Prager, C: 1e9}
  - name: Plastic
    criterion: Mises
    isotropic_hardening: {name: Linear, R0: 66e6, H: 2e9}
    kinematic_hardening: {name: Prager, C: 2e9}
`

func TestTwoPragerInstances(t *testing.T) {
	desc, dsl := newBehaviour(t)
	require.NoError(t, applyBrick(t, desc, dsl, "StandardElastoViscoPlasticity", twoPragerFlows))

	bd := desc.GetBehaviourData(ir.Undefined)
	assert.Equal(t, []string{"eel", "a0_0", "p0", "a1_0", "p1"}, bd.Variables(ir.StateVariables).Names())

	a0, _, ok := bd.Variable("a0_0")
	require.True(t, ok)
	a1, _, ok := bd.Variable("a1_0")
	require.True(t, ok)
	assert.Equal(t, "BackStrain0_0", a0.GetExternalName())
	assert.Equal(t, "BackStrain1_0", a1.GetExternalName())

	C0, ok := bd.ParameterDefault("C0_0")
	require.True(t, ok)
	C1, ok := bd.ParameterDefault("C1_0")
	require.True(t, ok)
	assert.Equal(t, []float64{1e9}, C0)
	assert.Equal(t, []float64{2e9}, C1)

	sp, err := ir.GetAttribute[ir.StringAttribute](desc, ir.AttrStressPotential)
	require.NoError(t, err)
	assert.Equal(t, ir.StringAttribute("Hooke"), sp)
}

func TestKinematicInstancesReserveDistinctNames(t *testing.T) {
	desc, dsl := newBehaviour(t)
	r := NewRegistries()
	for i, kid := range []string{"1", "2"} {
		k, err := r.KinematicHardeningRules.Generate("Prager")
		require.NoError(t, err)
		require.NoError(t, k.Initialize(desc, dsl, "3", kid, DataMap{"C": Number(float64(i+1) * 1e9)}))
	}

	bd := desc.GetBehaviourData(ir.Undefined)
	assert.Equal(t, []string{"a3_1", "a3_2"}, bd.Variables(ir.StateVariables).Names())
	for _, kid := range []string{"1", "2"} {
		a, _, ok := bd.Variable("a3_" + kid)
		require.True(t, ok)
		assert.Equal(t, "BackStrain3_"+kid, a.GetExternalName())
		for _, n := range []string{"X3_" + kid, "X3_" + kid + "el", "a3_" + kid + "_"} {
			assert.True(t, desc.IsReserved(n), n)
		}
	}
	C1, ok := bd.ParameterDefault("C3_1")
	require.True(t, ok)
	C2, ok := bd.ParameterDefault("C3_2")
	require.True(t, ok)
	assert.Equal(t, []float64{1e9}, C1)
	assert.Equal(t, []float64{2e9}, C2)

	// a third rule reusing id "1" collides with the first one
	k, err := r.KinematicHardeningRules.Generate("Prager")
	require.NoError(t, err)
	assert.Error(t, k.Initialize(desc, dsl, "3", "1", DataMap{"C": Number(3e9)}))
}

func TestTwoPragerRulesInOneFlow(t *testing.T) {
	desc, dsl := newBehaviour(t)
	options := `
inelastic_flow:
  name: Plastic
  criterion: Mises
  kinematic_hardening:
    - {name: Prager, C: 1e9}
    - {name: Prager, C: 2e9}
`
	require.NoError(t, applyBrick(t, desc, dsl, "StandardElastoViscoPlasticity", options))

	bd := desc.GetBehaviourData(ir.Undefined)
	assert.True(t, bd.ContainsVariable("a0_0"))
	assert.True(t, bd.ContainsVariable("a0_1"))

	integrator := code(t, desc, ir.Integrator)
	assert.Contains(t, integrator, "const auto s0 = eval(this->sig - X0_0 - X0_1);")
	assert.Contains(t, integrator, "fa0_0 -= (this->dp0) * n0;")
	assert.Contains(t, integrator, "fa0_1 -= (this->dp0) * n0;")

	// Without a stress potential option the elastic properties are
	// material properties.
	young, _, ok := bd.Variable("young")
	require.True(t, ok)
	assert.Equal(t, "YoungModulus", young.GetExternalName())
	assert.True(t, bd.Variables(ir.MaterialProperties).Contains("nu"))
}

func TestPlasticFlowIntegrator(t *testing.T) {
	desc, dsl := newBehaviour(t)
	options := `
stress_potential: {name: Hooke, young_modulus: 150e9, poisson_ratio: 0.3}
inelastic_flow:
  name: Plastic
  criterion: Mises
  isotropic_hardening: {name: Linear, R0: 33e6, H: 1e9}
`
	require.NoError(t, applyBrick(t, desc, dsl, "StandardElastoViscoPlasticity", options))

	want := strings.Join([]string{
		"if(this->bpl0){",
		"const auto& s0 = this->sig;",
		"const auto [seq0,dseq0_ds0] = computeMisesStressNormal(s0,this->sscb_parameters0,real(1.e-12) * this->young);",
		"const auto& n0 = dseq0_ds0;",
		"feel += (this->dp0) * n0;",
		"const auto R0 = this->R00_ih + (this->H0_ih) * (this->p0 + (this->theta) * (this->dp0));",
		"fp0 = (seq0 - R0) / this->young;",
		"}",
	}, "\n")
	assert.Equal(t, want, code(t, desc, ir.Integrator))

	init := code(t, desc, ir.BeforeInitializeLocalVariables)
	assert.Contains(t, init, "const auto& sel0 = sigel;")
	assert.Contains(t, init, "const auto Rel0 = this->R00_ih + (this->H0_ih) * this->p0;")
	assert.Contains(t, init, "this->bpl0 = seqel0 > Rel0;")

	bd := desc.GetBehaviourData(ir.Undefined)
	young, ok := bd.ParameterDefault("young")
	require.True(t, ok)
	assert.Equal(t, []float64{150e9}, young)
	assert.True(t, bd.Variables(ir.LocalVariables).Contains("bpl0"))
}

func TestNortonFlow(t *testing.T) {
	desc, dsl := newBehaviour(t)
	options := `
inelastic_flow:
  name: Norton
  criterion: Mises
  K: "100e6 * exp(-this->T / 1000)"
  E: 4
`
	require.NoError(t, applyBrick(t, desc, dsl, "StandardElastoViscoPlasticity", options))

	bd := desc.GetBehaviourData(ir.Undefined)
	assert.True(t, bd.Variables(ir.LocalVariables).Contains("Kn0"))
	E, ok := bd.ParameterDefault("En0")
	require.True(t, ok)
	assert.Equal(t, []float64{4}, E)

	assert.Contains(t, code(t, desc, ir.BeforeInitializeLocalVariables), "this->Kn0 = 100e6 * exp(-this->T / 1000);")
	assert.Contains(t, code(t, desc, ir.Integrator),
		"fp0 -= (this->dt) * pow(max(seq0, stress(0)) / (this->Kn0), this->En0);")
}

func TestFlowUnknownCriterionLeavesDescriptionUntouched(t *testing.T) {
	desc, dsl := newBehaviour(t)
	f, err := NewRegistries().InelasticFlows.Generate("Plastic")
	require.NoError(t, err)

	options := decode(t, `
criterion: Mises
kinematic_hardening: [{name: Prager, C: 1e9}, {name: Pragr, C: 2e9}]
`)
	err = f.Initialize(desc, dsl, "0", options)
	var unknown *cerr.UnknownRuleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Prager", unknown.Suggestion)
	assert.Empty(t, desc.ReservedNames())
}

func TestFlowNestedOptionErrorLeavesDescriptionUntouched(t *testing.T) {
	desc, dsl := newBehaviour(t)
	f, err := NewRegistries().InelasticFlows.Generate("Plastic")
	require.NoError(t, err)

	options := decode(t, `
criterion: Mises
isotropic_hardening: {name: Voce, R0: 33e6, Rinf: 50e6}
`)
	err = f.Initialize(desc, dsl, "0", options)
	var cfg *cerr.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, "Voce", cfg.Rule)
	assert.Equal(t, "b", cfg.Option)
	assert.Empty(t, desc.ReservedNames())
}

func TestBrickUnknownStressPotential(t *testing.T) {
	desc, dsl := newBehaviour(t)
	err := applyBrick(t, desc, dsl, "StandardElastoViscoPlasticity", `
stress_potential: Hoke
inelastic_flow: {name: Plastic, criterion: Mises}
`)
	var unknown *cerr.UnknownRuleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Hooke", unknown.Suggestion)
}

func TestBrickSymmetryError(t *testing.T) {
	desc, dsl := newBehaviour(t)
	err := applyBrick(t, desc, dsl, "StandardElastoViscoPlasticity", `
inelastic_flow:
  name: Plastic
  criterion: {name: Hill, H: [0.371, 0.629, 4.052, 1.5, 1.5, 1.5]}
`)
	assert.Equal(t, cerr.KindSymmetry, kindOf(err))
}

// ── Options ──

func TestDecodeDataMap(t *testing.T) {
	d := decode(t, `
criterion: Mises
young: 150e9
coefficients: [1, 2.5, "2 * this->T"]
kinematic_hardening: {name: Prager, C: 1e9}
`)
	assert.Equal(t, []string{"coefficients", "criterion", "kinematic_hardening", "young"}, d.Keys())
	assert.Equal(t, String("Mises"), d["criterion"])
	assert.Equal(t, Number(150e9), d["young"])
	assert.Equal(t, Array{Number(1), Number(2.5), String("2 * this->T")}, d["coefficients"])
	assert.Equal(t, DataStructure{Name: "Prager", Data: DataMap{"C": Number(1e9)}}, d["kinematic_hardening"])
}

func TestDecodeDataMapErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"unnamed structure", "criterion: {a: 1}\n"},
		{"invalid yaml", "criterion: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataMap([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}
