package bricks

import (
	"fmt"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// Role is the context in which a stress criterion is used.
type Role int

const (
	StressCriterionRole Role = iota
	FlowCriterionRole
	StressAndFlowCriterionRole
)

func (r Role) String() string {
	switch r {
	case StressCriterionRole:
		return "StressCriterion"
	case FlowCriterionRole:
		return "FlowCriterion"
	case StressAndFlowCriterionRole:
		return "StressAndFlowCriterion"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// DSL is the part of a parser that rules use while they are initialized.
type DSL interface {
	Name() string
	ReserveName(name string, mustBeUnique bool) error
}

// ── Rule families ──

// StressCriterion computes an equivalent stress, its normal and the
// derivative of the normal. Symbols are suffixed by an instance id so that
// several criteria coexist in one behaviour.
type StressCriterion interface {
	Name() string
	Options() []OptionDescription
	SupportedSymmetries() []ir.Symmetry
	// IsNormalDeviatoric reports whether the normal is a deviatoric tensor.
	IsNormalDeviatoric() bool

	// Initialize fixes the role of the criterion for every later call.
	Initialize(desc *ir.Description, dsl DSL, id string, d DataMap, r Role) error
	EndTreatment(desc *ir.Description, dsl DSL, id string) error

	ComputeElasticPrediction(id string) string
	ComputeCriterion(id string) string
	ComputeNormal(id string) string
	ComputeNormalDerivative(id string) string
}

// KinematicHardeningRule declares a back strain and contributes its
// evolution equation. fid identifies the inelastic flow and kid the rule
// within that flow.
type KinematicHardeningRule interface {
	Name() string
	Options() []OptionDescription
	SupportedSymmetries() []ir.Symmetry

	Initialize(desc *ir.Description, dsl DSL, fid, kid string, d DataMap) error
	EndTreatment(desc *ir.Description, dsl DSL, fid, kid string) error

	// KinematicHardeningVariables returns the back stresses.
	KinematicHardeningVariables(fid, kid string) []string
	// ComputeKinematicHardeningInitialValue computes the back stresses at
	// the beginning of the time step, named like the back stresses with
	// an "el" suffix.
	ComputeKinematicHardeningInitialValue(fid, kid string) string
	ComputeKinematicHardening(fid, kid string) string
	BuildBackStrainEquation(fid, kid string) string
}

// IsotropicHardeningRule computes the radius of the elastic domain.
type IsotropicHardeningRule interface {
	Name() string
	Options() []OptionDescription

	Initialize(desc *ir.Description, dsl DSL, fid string, d DataMap) error
	EndTreatment(desc *ir.Description, dsl DSL, fid string) error

	ComputeElasticPrediction(fid string) string
	ComputeRadius(fid string) string
}

// InelasticFlow composes a stress criterion with hardening rules and
// contributes one flow equation.
type InelasticFlow interface {
	Name() string
	Options() []OptionDescription

	Initialize(desc *ir.Description, dsl DSL, id string, d DataMap) error
	EndTreatment(desc *ir.Description, dsl DSL, id string) error
}

// Brick is a rule object introduced by the @Brick keyword.
type Brick interface {
	Name() string
	Options() []OptionDescription

	Initialize(desc *ir.Description, dsl DSL, d DataMap) error
	EndTreatment(desc *ir.Description, dsl DSL) error
}

// ── Helpers ──

// criterionVariableID returns the name of a criterion symbol. A criterion
// used only as flow criterion gets an extra "f" so that it never collides
// with the stress criterion of the same flow.
func criterionVariableID(name, id string, r Role) string {
	if r == FlowCriterionRole {
		return name + "f" + id
	}
	return name + id
}

// kinematicVariableID returns the name of a kinematic hardening symbol.
func kinematicVariableID(name, fid, kid string) string {
	return name + fid + "_" + kid
}

// isotropicVariableID returns the name of an isotropic hardening symbol.
func isotropicVariableID(name, fid string) string {
	return name + fid + "_ih"
}

// checkSymmetry fails if the declared symmetry of desc is not supported.
func checkSymmetry(rule string, desc *ir.Description, supported []ir.Symmetry) error {
	for _, s := range supported {
		if s == desc.Symmetry() {
			return nil
		}
	}
	return &cerr.SymmetryError{Rule: rule, Symmetry: strings.ToLower(desc.Symmetry().String())}
}

// reserveAll reserves names that must not be used by anything else.
func reserveAll(dsl DSL, names ...string) error {
	for _, n := range names {
		if err := dsl.ReserveName(n, true); err != nil {
			return err
		}
	}
	return nil
}
