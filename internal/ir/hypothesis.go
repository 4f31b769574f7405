package ir

import (
	"fmt"
	"sort"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// Hypothesis is a modelling hypothesis: the kinematic context under which
// a behaviour is evaluated. Undefined stands for the default data shared by
// every hypothesis that has not been specialised.
type Hypothesis int

const (
	Undefined Hypothesis = iota
	AxisymmetricalGeneralisedPlaneStrain
	AxisymmetricalGeneralisedPlaneStress
	Axisymmetrical
	PlaneStress
	PlaneStrain
	GeneralisedPlaneStrain
	Tridimensional
)

var hypothesisNames = map[Hypothesis]string{
	Undefined:                            "Undefined",
	AxisymmetricalGeneralisedPlaneStrain: "AxisymmetricalGeneralisedPlaneStrain",
	AxisymmetricalGeneralisedPlaneStress: "AxisymmetricalGeneralisedPlaneStress",
	Axisymmetrical:                       "Axisymmetrical",
	PlaneStress:                          "PlaneStress",
	PlaneStrain:                          "PlaneStrain",
	GeneralisedPlaneStrain:               "GeneralisedPlaneStrain",
	Tridimensional:                       "Tridimensional",
}

// String returns the canonical name of the hypothesis.
func (h Hypothesis) String() string {
	if name, ok := hypothesisNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Hypothesis(%d)", int(h))
}

// Dimension returns the space dimension implied by the hypothesis, or 0
// for Undefined.
func (h Hypothesis) Dimension() int {
	switch h {
	case AxisymmetricalGeneralisedPlaneStrain, AxisymmetricalGeneralisedPlaneStress:
		return 1
	case Axisymmetrical, PlaneStress, PlaneStrain, GeneralisedPlaneStrain:
		return 2
	case Tridimensional:
		return 3
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler.
func (h Hypothesis) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hypothesis) UnmarshalText(text []byte) error {
	parsed, err := ParseHypothesis(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Hypotheses returns every concrete hypothesis, lowest dimension first.
func Hypotheses() []Hypothesis {
	return []Hypothesis{
		AxisymmetricalGeneralisedPlaneStrain,
		AxisymmetricalGeneralisedPlaneStress,
		Axisymmetrical,
		PlaneStress,
		PlaneStrain,
		GeneralisedPlaneStrain,
		Tridimensional,
	}
}

// HypothesisNames returns the names of every concrete hypothesis.
func HypothesisNames() []string {
	var names []string
	for _, h := range Hypotheses() {
		names = append(names, h.String())
	}
	return names
}

// ParseHypothesis converts a hypothesis name into its value. The usual
// abbreviations of the tridimensional hypothesis are accepted.
func ParseHypothesis(name string) (Hypothesis, error) {
	switch name {
	case "Tridimensional", "3D":
		return Tridimensional, nil
	case "Undefined", "UndefinedHypothesis":
		return Undefined, nil
	}
	for h, n := range hypothesisNames {
		if n == name {
			return h, nil
		}
	}
	return Undefined, &cerr.ConfigurationError{
		Message: fmt.Sprintf("unknown modelling hypothesis '%s'", name) + cerr.DidYouMean(name, HypothesisNames()),
	}
}

func sortHypotheses(hs []Hypothesis) {
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
}

// ── Symmetry ──

// Symmetry is the material symmetry declared by a behaviour.
type Symmetry int

const (
	Isotropic Symmetry = iota
	Orthotropic
)

// String returns the canonical symmetry name.
func (s Symmetry) String() string {
	switch s {
	case Isotropic:
		return "Isotropic"
	case Orthotropic:
		return "Orthotropic"
	}
	return fmt.Sprintf("Symmetry(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Symmetry) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSymmetry converts a symmetry name into its value.
func ParseSymmetry(name string) (Symmetry, error) {
	switch name {
	case "Isotropic", "isotropic":
		return Isotropic, nil
	case "Orthotropic", "orthotropic":
		return Orthotropic, nil
	}
	return Isotropic, &cerr.ConfigurationError{Message: fmt.Sprintf("unknown symmetry '%s'", name)}
}
