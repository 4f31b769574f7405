package dsl

import (
	"fmt"
	"sort"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// glossary lists the glossary names a variable may be given with
// setGlossaryName. Entry names are free.
var glossary = map[string]string{
	"BurnUp_AtPercent":             "burn-up in atomic percent",
	"BurnUp_MWJperKg":              "burn-up in MWJ per kilogram",
	"ElasticStrain":                "elastic strain",
	"EquivalentPlasticStrain":      "equivalent plastic strain",
	"EquivalentViscoplasticStrain": "equivalent viscoplastic strain",
	"HillYieldStressCoefficient":   "Hill coefficients",
	"KinematicHardening":           "back stress",
	"MassDensity":                  "mass density",
	"NeutronFluence":               "neutron fluence",
	"PlasticStrain":                "plastic strain",
	"PoissonRatio":                 "Poisson ratio",
	"Porosity":                     "porosity",
	"SolidSwelling":                "solid swelling",
	"SpecificHeat":                 "specific heat",
	"Strain":                       "total strain",
	"Stress":                       "Cauchy stress",
	"Temperature":                  "temperature",
	"ThermalConductivity":          "thermal conductivity",
	"ThermalExpansion":             "mean thermal expansion coefficient",
	"ViscoplasticStrain":           "viscoplastic strain",
	"YieldStrength":                "yield strength",
	"YoungModulus":                 "Young modulus",
}

// GlossaryNames returns the known glossary names, sorted.
func GlossaryNames() []string {
	names := make([]string, 0, len(glossary))
	for n := range glossary {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func checkGlossaryName(name string) error {
	if _, ok := glossary[name]; ok {
		return nil
	}
	return &cerr.ConfigurationError{Message: fmt.Sprintf("'%s' is not a glossary name", name) + cerr.DidYouMean(name, GlossaryNames())}
}
