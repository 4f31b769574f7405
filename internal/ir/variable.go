package ir

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// ── Variables ──

// VariableDescription describes one variable of a behaviour, material
// property or model.
type VariableDescription struct {
	Name           string  `json:"name" yaml:"name"`
	ExternalName   string  `json:"external_name,omitempty" yaml:"external_name,omitempty"` // glossary or entry name
	Type           string  `json:"type" yaml:"type"`
	ArraySize      int     `json:"array_size" yaml:"array_size"`
	Description    string  `json:"description,omitempty" yaml:"description,omitempty"`
	Bounds         *Bounds `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	PhysicalBounds *Bounds `json:"physical_bounds,omitempty" yaml:"physical_bounds,omitempty"`
	Line           int     `json:"line,omitempty" yaml:"line,omitempty"`
}

// NewVariable returns a scalar or array variable of the given type. An
// array size below one is treated as one.
func NewVariable(typ, name string, arraySize int) VariableDescription {
	if arraySize < 1 {
		arraySize = 1
	}
	return VariableDescription{Name: name, Type: typ, ArraySize: arraySize}
}

// GetExternalName returns the glossary or entry name of the variable,
// falling back to its name.
func (v VariableDescription) GetExternalName() string {
	if v.ExternalName != "" {
		return v.ExternalName
	}
	return v.Name
}

// IsArray reports whether the variable is an array.
func (v VariableDescription) IsArray() bool {
	return v.ArraySize > 1
}

// clone returns a copy that shares no bounds with v.
func (v VariableDescription) clone() VariableDescription {
	c := v
	if v.Bounds != nil {
		b := *v.Bounds
		c.Bounds = &b
	}
	if v.PhysicalBounds != nil {
		b := *v.PhysicalBounds
		c.PhysicalBounds = &b
	}
	return c
}

// Size returns the number of scalar components the variable holds under
// the given hypothesis.
func (v VariableDescription) Size(h Hypothesis) (int, error) {
	flag, err := TypeFlagOf(v.Type)
	if err != nil {
		return 0, err
	}
	n, err := flag.Components(h)
	if err != nil {
		return 0, fmt.Errorf("variable '%s': %w", v.Name, err)
	}
	size := v.ArraySize
	if size < 1 {
		size = 1
	}
	return n * size, nil
}

// ── Types ──

// TypeFlag classifies a variable type by its mathematical nature.
type TypeFlag int

const (
	Scalar TypeFlag = iota
	TVector
	Stensor
	Tensor
)

// String returns the name of the flag.
func (f TypeFlag) String() string {
	switch f {
	case Scalar:
		return "scalar"
	case TVector:
		return "tvector"
	case Stensor:
		return "stensor"
	case Tensor:
		return "tensor"
	}
	return fmt.Sprintf("TypeFlag(%d)", int(f))
}

// Components returns the number of scalar components of a value of this
// flag in the space dimension implied by h.
func (f TypeFlag) Components(h Hypothesis) (int, error) {
	if f == Scalar {
		return 1, nil
	}
	dim := h.Dimension()
	if dim == 0 {
		return 0, &cerr.ConfigurationError{Message: fmt.Sprintf("the size of a %s is undefined for hypothesis '%s'", f, h)}
	}
	switch f {
	case TVector:
		return dim, nil
	case Stensor:
		return [...]int{3, 4, 6}[dim-1], nil
	case Tensor:
		return [...]int{3, 5, 9}[dim-1], nil
	}
	return 0, fmt.Errorf("unsupported type flag %d", int(f))
}

var typeFlags = map[string]TypeFlag{
	"real": Scalar, "bool": Scalar, "int": Scalar, "ushort": Scalar,
	"frequency": Scalar, "stress": Scalar, "strain": Scalar, "strainrate": Scalar,
	"stressrate": Scalar, "temperature": Scalar, "thermalexpansion": Scalar,
	"thermalconductivity": Scalar, "massdensity": Scalar, "energydensity": Scalar,
	"energy_density": Scalar, "speed": Scalar, "length": Scalar, "time": Scalar,
	"force": Scalar, "area": Scalar, "volume": Scalar, "power": Scalar,
	"heatflux": Scalar, "derivative_type": Scalar,

	"TVector": TVector, "tvector": TVector, "DisplacementTVector": TVector,
	"ForceTVector": TVector, "HeatFlux": TVector, "TemperatureGradient": TVector,

	"Stensor": Stensor, "stensor": Stensor, "StrainStensor": Stensor,
	"StressStensor": Stensor, "StrainRateStensor": Stensor, "StressRateStensor": Stensor,

	"Tensor": Tensor, "tensor": Tensor, "DeformationGradientTensor": Tensor,
	"StressTensor": Tensor, "DisplacementGradientTensor": Tensor,
}

// TypeFlagOf returns the flag of a supported variable type.
func TypeFlagOf(typ string) (TypeFlag, error) {
	if f, ok := typeFlags[typ]; ok {
		return f, nil
	}
	return Scalar, &cerr.ConfigurationError{Message: fmt.Sprintf("unsupported type '%s'", typ)}
}

// IsSupportedType reports whether typ may be used to declare a variable.
func IsSupportedType(typ string) bool {
	_, ok := typeFlags[typ]
	return ok
}

// ── Bounds ──

// Bounds is a closed interval with optionally infinite ends.
type Bounds struct {
	Lower float64
	Upper float64
}

// NewBounds validates and returns an interval. Use math.Inf for open ends.
func NewBounds(lower, upper float64) (Bounds, error) {
	if math.IsInf(lower, -1) && math.IsInf(upper, 1) {
		return Bounds{}, fmt.Errorf("at least one bound must be finite")
	}
	if math.IsNaN(lower) || math.IsNaN(upper) || math.IsInf(lower, 1) || math.IsInf(upper, -1) {
		return Bounds{}, fmt.Errorf("invalid interval [%v:%v]", lower, upper)
	}
	if lower > upper {
		return Bounds{}, fmt.Errorf("lower bound %v is greater than upper bound %v", lower, upper)
	}
	return Bounds{Lower: lower, Upper: upper}, nil
}

// LowerBound returns an interval with no upper limit.
func LowerBound(lower float64) Bounds {
	return Bounds{Lower: lower, Upper: math.Inf(1)}
}

// UpperBound returns an interval with no lower limit.
func UpperBound(upper float64) Bounds {
	return Bounds{Lower: math.Inf(-1), Upper: upper}
}

// HasLower reports whether the lower end is finite.
func (b Bounds) HasLower() bool { return !math.IsInf(b.Lower, -1) }

// HasUpper reports whether the upper end is finite.
func (b Bounds) HasUpper() bool { return !math.IsInf(b.Upper, 1) }

// Contains reports whether x lies within the interval.
func (b Bounds) Contains(x float64) bool {
	return x >= b.Lower && x <= b.Upper
}

// String formats the interval using the source notation.
func (b Bounds) String() string {
	low, high := "]*", "*["
	if b.HasLower() {
		low = fmt.Sprintf("[%g", b.Lower)
	}
	if b.HasUpper() {
		high = fmt.Sprintf("%g]", b.Upper)
	}
	return low + ":" + high
}

// boundsDoc is the serialized form of Bounds: infinite ends become null.
type boundsDoc struct {
	Lower *float64 `json:"lower" yaml:"lower"`
	Upper *float64 `json:"upper" yaml:"upper"`
}

func (b Bounds) doc() boundsDoc {
	var d boundsDoc
	if b.HasLower() {
		low := b.Lower
		d.Lower = &low
	}
	if b.HasUpper() {
		high := b.Upper
		d.Upper = &high
	}
	return d
}

func (d boundsDoc) bounds() Bounds {
	b := Bounds{Lower: math.Inf(-1), Upper: math.Inf(1)}
	if d.Lower != nil {
		b.Lower = *d.Lower
	}
	if d.Upper != nil {
		b.Upper = *d.Upper
	}
	return b
}

// MarshalJSON implements json.Marshaler.
func (b Bounds) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.doc())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bounds) UnmarshalJSON(data []byte) error {
	var d boundsDoc
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*b = d.bounds()
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b Bounds) MarshalYAML() (interface{}, error) {
	return b.doc(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Bounds) UnmarshalYAML(value *yaml.Node) error {
	var d boundsDoc
	if err := value.Decode(&d); err != nil {
		return err
	}
	*b = d.bounds()
	return nil
}
