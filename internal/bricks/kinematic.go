package bricks

import (
	"fmt"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// kinematicRule declares the back strain `a<fid>_<kid>` and the back
// stress `X<fid>_<kid> = 2 C a / 3`. Rules differ by their extra options
// and by the back-strain evolution equation.
type kinematicRule struct {
	name       string
	opts       []OptionDescription
	arraySizes map[string]int
	defaults   map[string]float64
	symmetries []ir.Symmetry
	// reserved lists extra per-instance names, without their suffix.
	reserved []string
	// tensors lists array options that are turned into fourth-order
	// tensors before the integration.
	tensors []string
	// together lists optional options that must be given jointly.
	together []string
	equation func(k *kinematicRule, fid, kid string) string

	mps    map[string]MaterialProperty
	arrays map[string][]MaterialProperty
}

func (k *kinematicRule) Name() string                       { return k.name }
func (k *kinematicRule) Options() []OptionDescription       { return k.opts }
func (k *kinematicRule) SupportedSymmetries() []ir.Symmetry { return k.symmetries }

func (k *kinematicRule) id(name, fid, kid string) string {
	return kinematicVariableID(name, fid, kid)
}

func anyOf(d DataMap, names []string) bool {
	for _, n := range names {
		if _, ok := d[n]; ok {
			return true
		}
	}
	return false
}

// has reports whether the optional material property name was given.
func (k *kinematicRule) has(name string) bool {
	_, ok := k.mps[name]
	return ok
}

func (k *kinematicRule) Initialize(desc *ir.Description, dsl DSL, fid, kid string, d DataMap) error {
	if err := CheckOptions(k.name, d, k.opts); err != nil {
		return err
	}
	for _, n := range k.together {
		if _, ok := d[n]; !ok && anyOf(d, k.together) {
			return &cerr.ConfigurationError{
				Rule:    k.name,
				Option:  n,
				Message: fmt.Sprintf("options %s must be given together", strings.Join(k.together, " and ")),
			}
		}
	}
	mps := make(map[string]MaterialProperty)
	arrays := make(map[string][]MaterialProperty)
	for _, o := range k.opts {
		v, ok := d[o.Name]
		if !ok {
			if def, hasDefault := k.defaults[o.Name]; hasDefault {
				mps[o.Name] = MaterialProperty{Constant: true, Value: def}
			}
			continue
		}
		var err error
		switch o.Kind {
		case MaterialPropertyOption:
			mps[o.Name], err = newMaterialProperty(o.Name, v)
		case ArrayOfMaterialPropertiesOption:
			arrays[o.Name], err = newMaterialProperties(o.Name, v)
			if n := k.arraySizes[o.Name]; err == nil && n != 0 && len(arrays[o.Name]) != n {
				err = fmt.Errorf("expected %d values, got %d", n, len(arrays[o.Name]))
			}
		}
		if err != nil {
			return &cerr.ConfigurationError{Rule: k.name, Option: o.Name, Message: err.Error()}
		}
	}

	for _, o := range k.opts {
		n := k.id(o.Name, fid, kid)
		typ := "real"
		if o.Name == "C" {
			typ = "stress"
		}
		if mp, ok := mps[o.Name]; ok {
			if err := declareParameterOrLocalVariable(desc, mp, typ, n); err != nil {
				return err
			}
		}
		if arr, ok := arrays[o.Name]; ok {
			if err := declareParametersOrLocalVariables(desc, arr, typ, n); err != nil {
				return err
			}
		}
	}
	for _, t := range k.tensors {
		v := ir.NewVariable("Stensor4", k.id(t, fid, kid)+"_tensor", 1)
		if err := desc.AddVariable(ir.Undefined, ir.LocalVariables, v); err != nil {
			return err
		}
	}

	an := k.id("a", fid, kid)
	a := ir.NewVariable("StrainStensor", an, 1)
	a.Description = "back strain"
	if err := desc.AddVariable(ir.Undefined, ir.StateVariables, a); err != nil {
		return err
	}
	if err := desc.SetExternalName(ir.Undefined, an, "BackStrain"+fid+"_"+kid); err != nil {
		return err
	}
	names := []string{k.id("X", fid, kid), k.id("X", fid, kid) + "el", an + "_"}
	for _, r := range k.reserved {
		names = append(names, k.id(r, fid, kid))
	}
	if err := reserveAll(dsl, names...); err != nil {
		return err
	}
	k.mps, k.arrays = mps, arrays
	desc.Logger().Debug("kinematic hardening rule initialized", "rule", k.name, "flow", fid, "id", kid)
	return nil
}

func (k *kinematicRule) EndTreatment(desc *ir.Description, dsl DSL, fid, kid string) error {
	if err := checkSymmetry(k.name, desc, k.symmetries); err != nil {
		return err
	}
	var b strings.Builder
	for _, o := range k.opts {
		n := k.id(o.Name, fid, kid)
		if mp, ok := k.mps[o.Name]; ok {
			b.WriteString(initializationCode(n, mp))
		} else if arr, ok := k.arrays[o.Name]; ok {
			b.WriteString(arrayInitializationCode(n, arr))
		}
	}
	for _, t := range k.tensors {
		n := k.id(t, fid, kid)
		fmt.Fprintf(&b, "this->%s_tensor = makeHillTensor<StressStensor>(", n)
		for i := 0; i < 6; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "this->%s[%d]", n, i)
		}
		b.WriteString(");\n")
	}
	return emitInitializationCode(desc, b.String())
}

func (k *kinematicRule) KinematicHardeningVariables(fid, kid string) []string {
	return []string{k.id("X", fid, kid)}
}

func (k *kinematicRule) ComputeKinematicHardeningInitialValue(fid, kid string) string {
	return fmt.Sprintf("const auto %sel = (2 * (this->%s) / 3) * (this->%s);\n",
		k.id("X", fid, kid), k.id("C", fid, kid), k.id("a", fid, kid))
}

func (k *kinematicRule) ComputeKinematicHardening(fid, kid string) string {
	an := k.id("a", fid, kid)
	return fmt.Sprintf("const auto %s_ = eval(this->%s + (this->theta) * (this->d%s));\n", an, an, an) +
		fmt.Sprintf("const auto %s = (2 * (this->%s) / 3) * %s_;\n", k.id("X", fid, kid), k.id("C", fid, kid), an)
}

func (k *kinematicRule) BuildBackStrainEquation(fid, kid string) string {
	return k.equation(k, fid, kid)
}

// ── Evolution equations ──

func pragerEquation(k *kinematicRule, fid, kid string) string {
	return fmt.Sprintf("f%s -= (this->dp%s) * n%s;\n", k.id("a", fid, kid), fid, fid)
}

func armstrongFrederickEquation(k *kinematicRule, fid, kid string) string {
	an := k.id("a", fid, kid)
	return fmt.Sprintf("f%s -= (this->dp%s) * (n%s - (this->%s) * %s_);\n",
		an, fid, fid, k.id("D", fid, kid), an)
}

func burletCailletaudEquation(k *kinematicRule, fid, kid string) string {
	an := k.id("a", fid, kid)
	eta := k.id("eta", fid, kid)
	return fmt.Sprintf("f%s -= (this->dp%s) * (n%s - (this->%s) * ((this->%s) * %s_ + 2 * (1 - (this->%s)) * (%s_ | n%s) * n%s / 3));\n",
		an, fid, fid, k.id("D", fid, kid), eta, an, eta, an, fid, fid)
}

func chaboche2012Equation(k *kinematicRule, fid, kid string) string {
	an := k.id("a", fid, kid)
	Dn := k.id("D", fid, kid)
	wn := k.id("w", fid, kid)
	DJan := k.id("DJa", fid, kid)
	Psin := k.id("Psi", fid, kid)
	var b strings.Builder
	fmt.Fprintf(&b, "const auto %s = (this->%s)*sigmaeq(%s_);\n", DJan, Dn, an)
	fmt.Fprintf(&b, "if((2 * %s > 3 * (this->%s))&&(this->dp%s>0)){\n", DJan, wn, fid)
	fmt.Fprintf(&b, "const auto %s = pow((%s-3*(this->%s)/2)/((1-this->%s)*%s),this->%s);\n",
		Psin, DJan, wn, wn, DJan, k.id("m", fid, kid))
	factor := Psin
	if k.has("b") {
		bn := k.id("b", fid, kid)
		Phin := k.id("Phi", fid, kid)
		Phiinf := k.id("Phi_inf", fid, kid)
		expn := k.id("exp_mbp", fid, kid)
		fmt.Fprintf(&b, "const auto %s = exp(-(this->%s)*(this->p%s + ((this->theta) * (this->dp%s))));\n", expn, bn, fid, fid)
		fmt.Fprintf(&b, "const auto %s = this->%s + (1 - this->%s) * %s;\n", Phin, Phiinf, Phiinf, expn)
		factor = Phin + " * " + Psin
	}
	fmt.Fprintf(&b, "f%s -= (this->dp%s) * (n%s - (this->%s) * %s * %s_);\n", an, fid, fid, Dn, factor, an)
	b.WriteString("} else {\n")
	b.WriteString(pragerEquation(k, fid, kid))
	b.WriteString("}\n")
	return b.String()
}

func orthotropicEquation(k *kinematicRule, fid, kid string) string {
	an := k.id("a", fid, kid)
	return fmt.Sprintf("f%s -= (this->dp%s) * ((this->%s_tensor) * n%s - (this->%s) * ((this->%s_tensor) + (this->%s_tensor)) * %s_);\n",
		an, fid, k.id("Ec", fid, kid), fid, k.id("D", fid, kid), k.id("Rs", fid, kid), k.id("Rd", fid, kid), an)
}

// ── Built-in rules ──

func backStrainModulus() OptionDescription {
	return required("C", "kinematic moduli", MaterialPropertyOption)
}

func registerKinematicHardeningRules(r *Registry[KinematicHardeningRule]) {
	mustAdd(r, "Prager", func() KinematicHardeningRule {
		return &kinematicRule{
			name:       "Prager",
			opts:       []OptionDescription{backStrainModulus()},
			symmetries: []ir.Symmetry{ir.Isotropic, ir.Orthotropic},
			equation:   pragerEquation,
		}
	})
	mustAdd(r, "Armstrong-Frederick", func() KinematicHardeningRule {
		return &kinematicRule{
			name: "Armstrong-Frederick",
			opts: []OptionDescription{
				backStrainModulus(),
				required("D", "back-strain callback coefficient", MaterialPropertyOption),
			},
			symmetries: []ir.Symmetry{ir.Isotropic, ir.Orthotropic},
			equation:   armstrongFrederickEquation,
		}
	})
	mustAdd(r, "Burlet-Cailletaud", func() KinematicHardeningRule {
		return &kinematicRule{
			name: "Burlet-Cailletaud",
			opts: []OptionDescription{
				backStrainModulus(),
				required("D", "back-strain callback coefficient", MaterialPropertyOption),
				required("eta", "Burlet-Cailletaud parameter", MaterialPropertyOption),
			},
			symmetries: []ir.Symmetry{ir.Isotropic, ir.Orthotropic},
			equation:   burletCailletaudEquation,
		}
	})
	mustAdd(r, "Chaboche2012", func() KinematicHardeningRule {
		return &kinematicRule{
			name: "Chaboche2012",
			opts: []OptionDescription{
				backStrainModulus(),
				required("D", "back-strain callback coefficient", MaterialPropertyOption),
				required("m", "exponent of the back-strain callback", MaterialPropertyOption),
				required("w", "threshold of the back-strain callback", MaterialPropertyOption),
				optional("Phi_inf", "asymptotic value of the callback modulation", MaterialPropertyOption),
				optional("b", "rate of the callback modulation", MaterialPropertyOption),
			},
			symmetries: []ir.Symmetry{ir.Isotropic, ir.Orthotropic},
			reserved:   []string{"DJa", "iDJa", "dDJa", "Psi", "Phi", "exp_mbp"},
			together:   []string{"Phi_inf", "b"},
			equation:   chaboche2012Equation,
		}
	})
	mustAdd(r, "Orthotropic", func() KinematicHardeningRule {
		return &kinematicRule{
			name: "Orthotropic",
			opts: []OptionDescription{
				backStrainModulus(),
				optional("D", "back-strain callback coefficient", MaterialPropertyOption),
				required("Ec", "coefficients of the linear transformation of the inelastic strain rate", ArrayOfMaterialPropertiesOption),
				required("Rs", "first linear transformation coefficients", ArrayOfMaterialPropertiesOption),
				required("Rd", "second linear transformation coefficients", ArrayOfMaterialPropertiesOption),
			},
			arraySizes: map[string]int{"Ec": 6, "Rs": 6, "Rd": 6},
			defaults:   map[string]float64{"D": 1},
			symmetries: []ir.Symmetry{ir.Orthotropic},
			tensors:    []string{"Ec", "Rs", "Rd"},
			equation:   orthotropicEquation,
		}
	})
}
