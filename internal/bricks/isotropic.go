package bricks

import (
	"fmt"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// isotropicRule computes the radius `R<fid>` of the elastic domain from
// the equivalent plastic strain `p<fid>`.
type isotropicRule struct {
	name   string
	opts   []OptionDescription
	radius func(i *isotropicRule, fid, p string) string

	mps map[string]MaterialProperty
}

func (i *isotropicRule) Name() string                 { return i.name }
func (i *isotropicRule) Options() []OptionDescription { return i.opts }

func (i *isotropicRule) id(name, fid string) string {
	return isotropicVariableID(name, fid)
}

func (i *isotropicRule) Initialize(desc *ir.Description, dsl DSL, fid string, d DataMap) error {
	if err := CheckOptions(i.name, d, i.opts); err != nil {
		return err
	}
	mps := make(map[string]MaterialProperty, len(i.opts))
	for _, o := range i.opts {
		mp, err := newMaterialProperty(o.Name, d[o.Name])
		if err != nil {
			return &cerr.ConfigurationError{Rule: i.name, Option: o.Name, Message: err.Error()}
		}
		mps[o.Name] = mp
	}
	for _, o := range i.opts {
		if err := declareParameterOrLocalVariable(desc, mps[o.Name], "stress", i.id(o.Name, fid)); err != nil {
			return err
		}
	}
	if err := reserveAll(dsl, "R"+fid, "Rel"+fid); err != nil {
		return err
	}
	i.mps = mps
	return nil
}

func (i *isotropicRule) EndTreatment(desc *ir.Description, dsl DSL, fid string) error {
	var b strings.Builder
	for _, o := range i.opts {
		b.WriteString(initializationCode(i.id(o.Name, fid), i.mps[o.Name]))
	}
	return emitInitializationCode(desc, b.String())
}

func (i *isotropicRule) ComputeElasticPrediction(fid string) string {
	return fmt.Sprintf("const auto Rel%s = %s;\n", fid, i.radius(i, fid, "this->p"+fid))
}

func (i *isotropicRule) ComputeRadius(fid string) string {
	p := fmt.Sprintf("(this->p%s + (this->theta) * (this->dp%s))", fid, fid)
	return fmt.Sprintf("const auto R%s = %s;\n", fid, i.radius(i, fid, p))
}

func linearRadius(i *isotropicRule, fid, p string) string {
	return fmt.Sprintf("this->%s + (this->%s) * %s", i.id("R0", fid), i.id("H", fid), p)
}

func voceRadius(i *isotropicRule, fid, p string) string {
	R0, Rinf := i.id("R0", fid), i.id("Rinf", fid)
	return fmt.Sprintf("this->%s + (this->%s - this->%s) * exp(-(this->%s) * %s)",
		Rinf, R0, Rinf, i.id("b", fid), p)
}

func registerIsotropicHardeningRules(r *Registry[IsotropicHardeningRule]) {
	mustAdd(r, "Linear", func() IsotropicHardeningRule {
		return &isotropicRule{
			name: "Linear",
			opts: []OptionDescription{
				required("R0", "yield strength", MaterialPropertyOption),
				required("H", "hardening slope", MaterialPropertyOption),
			},
			radius: linearRadius,
		}
	})
	mustAdd(r, "Voce", func() IsotropicHardeningRule {
		return &isotropicRule{
			name: "Voce",
			opts: []OptionDescription{
				required("R0", "yield strength", MaterialPropertyOption),
				required("Rinf", "ultimate yield strength", MaterialPropertyOption),
				required("b", "saturation rate", MaterialPropertyOption),
			},
			radius: voceRadius,
		}
	})
}
