package ir

import (
	"fmt"
	"log/slog"
	"sort"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// DescriptionKind tells which flavour of material knowledge a Description
// holds.
type DescriptionKind int

const (
	BehaviourKind DescriptionKind = iota
	MaterialPropertyKind
	ModelKind
)

// String returns the name of the kind.
func (k DescriptionKind) String() string {
	switch k {
	case BehaviourKind:
		return "behaviour"
	case MaterialPropertyKind:
		return "material_property"
	case ModelKind:
		return "model"
	}
	return fmt.Sprintf("DescriptionKind(%d)", int(k))
}

// Metadata is the file-level information handed to emitters together with
// the model.
type Metadata struct {
	File        string   `json:"file" yaml:"file"`
	DSL         string   `json:"dsl,omitempty" yaml:"dsl,omitempty"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"` // law, behaviour or model name
	Material    string   `json:"material,omitempty" yaml:"material,omitempty"`
	Library     string   `json:"library,omitempty" yaml:"library,omitempty"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	Date        string   `json:"date,omitempty" yaml:"date,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Includes    []string `json:"includes,omitempty" yaml:"includes,omitempty"`
	Links       []string `json:"links,omitempty" yaml:"links,omitempty"`
}

// Function is a named function body of a material property or a model.
type Function struct {
	Name string `json:"name" yaml:"name"`
	Body string `json:"body" yaml:"body"`
	Line int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Description is the Domain Description: the aggregate root built from one
// source file. The default data applies to every hypothesis that has no
// specialisation; a specialisation is created on the first
// hypothesis-specific mutation by copying the default data.
type Description struct {
	Kind DescriptionKind
	Metadata

	symmetry    Symmetry
	symmetrySet bool
	hypotheses  map[Hypothesis]bool // nil means every hypothesis is supported

	d          *BehaviourData
	sd         map[Hypothesis]*BehaviourData
	attributes attributeMap
	reserved   map[string]bool
	bricks     []string
	functions  []Function

	logger *slog.Logger
}

// New creates an empty Description. A nil logger falls back to
// slog.Default().
func New(kind DescriptionKind, file string, logger *slog.Logger) *Description {
	if logger == nil {
		logger = slog.Default()
	}
	return &Description{
		Kind:       kind,
		Metadata:   Metadata{File: file},
		d:          NewBehaviourData(),
		sd:         make(map[Hypothesis]*BehaviourData),
		attributes: make(attributeMap),
		reserved:   make(map[string]bool),
		logger:     logger.With("file", file),
	}
}

// ── Hypotheses ──

// SetModellingHypotheses restricts the hypotheses supported by the
// description. It must be called before any specialisation exists.
func (d *Description) SetModellingHypotheses(hs []Hypothesis) error {
	if d.hypotheses != nil {
		return &cerr.ConfigurationError{Message: "modelling hypotheses already defined"}
	}
	if len(d.sd) != 0 {
		return &cerr.ConfigurationError{Message: "modelling hypotheses must be defined before any hypothesis-specific declaration"}
	}
	if len(hs) == 0 {
		return &cerr.ConfigurationError{Message: "empty list of modelling hypotheses"}
	}
	set := make(map[Hypothesis]bool, len(hs))
	for _, h := range hs {
		if h == Undefined {
			return &cerr.ConfigurationError{Message: "the undefined hypothesis can't be declared"}
		}
		if set[h] {
			return &cerr.ConfigurationError{Message: fmt.Sprintf("hypothesis '%s' declared twice", h)}
		}
		set[h] = true
	}
	d.hypotheses = set
	return nil
}

// ModellingHypotheses returns the supported hypotheses, sorted.
func (d *Description) ModellingHypotheses() []Hypothesis {
	if d.hypotheses == nil {
		return Hypotheses()
	}
	var hs []Hypothesis
	for h := range d.hypotheses {
		hs = append(hs, h)
	}
	sortHypotheses(hs)
	return hs
}

// IsModellingHypothesisSupported reports whether h may be specialised.
func (d *Description) IsModellingHypothesisSupported(h Hypothesis) bool {
	return h == Undefined || d.hypotheses == nil || d.hypotheses[h]
}

func (d *Description) checkHypothesis(h Hypothesis) error {
	if !d.IsModellingHypothesisSupported(h) {
		return &cerr.ConfigurationError{Message: fmt.Sprintf("modelling hypothesis '%s' is not supported", h)}
	}
	return nil
}

// GetBehaviourData returns the effective data of h: its specialisation
// if one exists, otherwise the default data. It never fails.
func (d *Description) GetBehaviourData(h Hypothesis) *BehaviourData {
	if bd, ok := d.sd[h]; ok {
		return bd
	}
	return d.d
}

// HasSpecialisedData reports whether h has its own data.
func (d *Description) HasSpecialisedData(h Hypothesis) bool {
	_, ok := d.sd[h]
	return ok
}

// GetDistinctModellingHypotheses returns the hypotheses that have an
// explicit specialisation, sorted.
func (d *Description) GetDistinctModellingHypotheses() []Hypothesis {
	hs := make([]Hypothesis, 0, len(d.sd))
	for h := range d.sd {
		hs = append(hs, h)
	}
	sortHypotheses(hs)
	return hs
}

// specialise returns the data of h, creating it from the default data on
// first access.
func (d *Description) specialise(h Hypothesis) *BehaviourData {
	if bd, ok := d.sd[h]; ok {
		return bd
	}
	d.logger.Debug("specialising behaviour data", "hypothesis", h.String())
	bd := d.d.Clone()
	d.sd[h] = bd
	return bd
}

// targets returns the data touched by a mutation under h without creating
// anything: the default and every specialisation for Undefined, the
// effective data otherwise.
func (d *Description) targets(h Hypothesis) []*BehaviourData {
	if h != Undefined {
		return []*BehaviourData{d.GetBehaviourData(h)}
	}
	out := []*BehaviourData{d.d}
	for _, sh := range d.GetDistinctModellingHypotheses() {
		out = append(out, d.sd[sh])
	}
	return out
}

// apply runs fn on the data touched by a mutation under h once check has
// accepted every one of them.
func (d *Description) apply(h Hypothesis, check func(*BehaviourData) error, fn func(*BehaviourData)) error {
	if err := d.checkHypothesis(h); err != nil {
		return err
	}
	for _, bd := range d.targets(h) {
		if err := check(bd); err != nil {
			return err
		}
	}
	if h != Undefined {
		fn(d.specialise(h))
		return nil
	}
	for _, bd := range d.targets(h) {
		fn(bd)
	}
	return nil
}

// ── Variables ──

// AddVariable declares a variable in a container. Under Undefined the
// variable goes to the default data and to every specialisation; under a
// concrete hypothesis only that hypothesis's data is changed. A variable
// of the same name elsewhere must agree on type and array size.
func (d *Description) AddVariable(h Hypothesis, kind ContainerKind, v VariableDescription) error {
	if v.ArraySize < 1 {
		v.ArraySize = 1
	}
	if err := d.checkHypothesis(h); err != nil {
		return err
	}
	if d.reserved[v.Name] {
		return &cerr.NameCollisionError{Name: v.Name}
	}
	if err := d.checkTypeConsistency(h, v); err != nil {
		return err
	}
	return d.apply(h,
		func(bd *BehaviourData) error { return bd.checkAddVariable(v) },
		func(bd *BehaviourData) { bd.addVariable(kind, v) })
}

// checkTypeConsistency compares v with every variable of the same name in
// the default data and in the specialisations.
func (d *Description) checkTypeConsistency(h Hypothesis, v VariableDescription) error {
	compare := func(other Hypothesis, bd *BehaviourData) error {
		w, _, ok := bd.Variable(v.Name)
		if !ok {
			return nil
		}
		reason := ""
		switch {
		case w.Type != v.Type:
			reason = fmt.Sprintf("type '%s' against '%s'", w.Type, v.Type)
		case w.ArraySize != v.ArraySize:
			reason = fmt.Sprintf("array size %d against %d", w.ArraySize, v.ArraySize)
		default:
			return nil
		}
		return &cerr.TypeConsistencyError{
			Name:        v.Name,
			HypothesisA: other.String(),
			HypothesisB: h.String(),
			Reason:      reason,
		}
	}
	if err := compare(Undefined, d.d); err != nil {
		return err
	}
	for _, sh := range d.GetDistinctModellingHypotheses() {
		if err := compare(sh, d.sd[sh]); err != nil {
			return err
		}
	}
	return nil
}

// SetExternalName sets the glossary or entry name of a variable.
func (d *Description) SetExternalName(h Hypothesis, name, ext string) error {
	return d.apply(h,
		func(bd *BehaviourData) error { return bd.checkExternalName(name, ext) },
		func(bd *BehaviourData) {
			_ = bd.updateVariable(name, func(v *VariableDescription) error {
				v.ExternalName = ext
				return nil
			})
		})
}

// SetVariableDescription sets the free-text description of a variable.
func (d *Description) SetVariableDescription(h Hypothesis, name, text string) error {
	return d.apply(h,
		func(bd *BehaviourData) error {
			if !bd.ContainsVariable(name) {
				return fmt.Errorf("%w '%s'", ErrUnknownVariable, name)
			}
			return nil
		},
		func(bd *BehaviourData) {
			_ = bd.updateVariable(name, func(v *VariableDescription) error {
				v.Description = text
				return nil
			})
		})
}

// SetBounds sets the standard bounds of a variable.
func (d *Description) SetBounds(h Hypothesis, name string, b Bounds) error {
	return d.setBounds(h, name, b, false)
}

// SetPhysicalBounds sets the physical bounds of a variable.
func (d *Description) SetPhysicalBounds(h Hypothesis, name string, b Bounds) error {
	return d.setBounds(h, name, b, true)
}

func (d *Description) setBounds(h Hypothesis, name string, b Bounds, physical bool) error {
	return d.apply(h,
		func(bd *BehaviourData) error { return bd.checkBounds(name, physical) },
		func(bd *BehaviourData) {
			_ = bd.updateVariable(name, func(v *VariableDescription) error {
				cp := b
				if physical {
					v.PhysicalBounds = &cp
				} else {
					v.Bounds = &cp
				}
				return nil
			})
		})
}

// SetParameterDefault records the default values of a parameter.
func (d *Description) SetParameterDefault(h Hypothesis, name string, values ...float64) error {
	return d.apply(h,
		func(bd *BehaviourData) error {
			v, kind, ok := bd.Variable(name)
			if !ok || kind != Parameters {
				return fmt.Errorf("%w: no parameter named '%s'", ErrUnknownVariable, name)
			}
			if len(values) != v.ArraySize {
				return &cerr.ConfigurationError{Message: fmt.Sprintf("parameter '%s' expects %d value(s), got %d", name, v.ArraySize, len(values))}
			}
			return nil
		},
		func(bd *BehaviourData) {
			bd.parameters[name] = append([]float64(nil), values...)
		})
}

// AddStaticVariable declares a static variable with its value.
func (d *Description) AddStaticVariable(h Hypothesis, v VariableDescription, value float64) error {
	if err := d.AddVariable(h, StaticVariables, v); err != nil {
		return err
	}
	return d.apply(h,
		func(*BehaviourData) error { return nil },
		func(bd *BehaviourData) { bd.statics[v.Name] = value })
}

// ── Code blocks ──

// SetCode adds a fragment to a code block according to the merge policy.
// Under Undefined the fragment goes to the default data and to every
// specialisation. No deduplication is performed.
func (d *Description) SetCode(h Hypothesis, name string, c CodeBlock, m Mode, p Position) error {
	return d.apply(h,
		func(bd *BehaviourData) error { return bd.checkSetCode(name, m) },
		func(bd *BehaviourData) { bd.setCode(name, c, m, p) })
}

// ── Attributes ──

// SetAttribute sets an attribute of the data of h. An existing attribute
// is only replaced when allowOverride is set and the types match.
func (d *Description) SetAttribute(h Hypothesis, name string, a Attribute, allowOverride bool) error {
	return d.apply(h,
		func(bd *BehaviourData) error { return bd.attributes.check(name, a, allowOverride) },
		func(bd *BehaviourData) { bd.attributes[name] = a })
}

// SetGlobalAttribute sets an attribute of the description itself.
func (d *Description) SetGlobalAttribute(name string, a Attribute, allowOverride bool) error {
	if err := d.attributes.check(name, a, allowOverride); err != nil {
		return err
	}
	d.attributes[name] = a
	return nil
}

// Attribute implements AttributeSource for global attributes.
func (d *Description) Attribute(name string) (Attribute, bool) {
	return d.attributes.get(name)
}

// AttributeNames returns the global attribute names, sorted.
func (d *Description) AttributeNames() []string {
	return d.attributes.names()
}

// ── Names ──

// ReserveName registers a name outside of any variable container. When
// mustBeUnique is set a name already reserved, or already used by a
// variable, is a NameCollisionError.
func (d *Description) ReserveName(name string, mustBeUnique bool) error {
	if mustBeUnique && d.IsReserved(name) {
		return &cerr.NameCollisionError{Name: name}
	}
	d.reserved[name] = true
	return nil
}

// IsReserved reports whether name is reserved or used by a variable under
// any hypothesis.
func (d *Description) IsReserved(name string) bool {
	if d.reserved[name] || d.d.IsMemberName(name) {
		return true
	}
	for _, bd := range d.sd {
		if bd.IsMemberName(name) {
			return true
		}
	}
	return false
}

// ReservedNames returns every reserved name, sorted.
func (d *Description) ReservedNames() []string {
	set := make(map[string]bool, len(d.reserved))
	for n := range d.reserved {
		set[n] = true
	}
	for _, bd := range d.targets(Undefined) {
		for n := range bd.memberNames {
			set[n] = true
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ── Symmetry, bricks and functions ──

// SetSymmetry declares the material symmetry. It may be set once.
func (d *Description) SetSymmetry(s Symmetry) error {
	if d.symmetrySet {
		return &cerr.ConfigurationError{Message: "symmetry already defined"}
	}
	d.symmetry = s
	d.symmetrySet = true
	return nil
}

// Symmetry returns the declared symmetry, Isotropic by default.
func (d *Description) Symmetry() Symmetry {
	return d.symmetry
}

// IsSymmetryDefined reports whether the symmetry was set explicitly.
func (d *Description) IsSymmetryDefined() bool {
	return d.symmetrySet
}

// AddBrick records the name of a brick used by the description.
func (d *Description) AddBrick(name string) {
	d.bricks = append(d.bricks, name)
}

// Bricks returns the bricks in declaration order.
func (d *Description) Bricks() []string {
	return append([]string(nil), d.bricks...)
}

// AddFunction records a function body. Function names are unique.
func (d *Description) AddFunction(f Function) error {
	for _, g := range d.functions {
		if g.Name == f.Name {
			return &cerr.NameCollisionError{Name: f.Name, Context: "function"}
		}
	}
	d.functions = append(d.functions, f)
	return nil
}

// Functions returns the functions in declaration order.
func (d *Description) Functions() []Function {
	return append([]Function(nil), d.functions...)
}

// Logger returns the logger attached to the description.
func (d *Description) Logger() *slog.Logger {
	return d.logger
}
