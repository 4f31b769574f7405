package ir

import (
	stderrors "errors"
	"fmt"
	"sort"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

var (
	// ErrUnknownVariable is returned when an operation names a variable
	// that has not been declared.
	ErrUnknownVariable = stderrors.New("undeclared variable")
	// ErrBoundsAlreadyDefined is returned when bounds are set twice.
	ErrBoundsAlreadyDefined = stderrors.New("bounds already defined")
)

// BehaviourData is the data of one modelling hypothesis: the variable
// containers, code blocks, attributes and parameter values. Its mutators
// are unexported so that consumers of a finished Description only get a
// read view; the Description routes every mutation.
type BehaviourData struct {
	containers  map[ContainerKind]VariableDescriptionContainer
	memberNames map[string]bool
	blocks      map[string]*codeBlockAggregator
	blockOrder  []string
	attributes  attributeMap
	parameters  map[string][]float64
	statics     map[string]float64
}

// NewBehaviourData returns empty data.
func NewBehaviourData() *BehaviourData {
	return &BehaviourData{
		containers:  make(map[ContainerKind]VariableDescriptionContainer),
		memberNames: make(map[string]bool),
		blocks:      make(map[string]*codeBlockAggregator),
		attributes:  make(attributeMap),
		parameters:  make(map[string][]float64),
		statics:     make(map[string]float64),
	}
}

// Clone returns a deep copy.
func (bd *BehaviourData) Clone() *BehaviourData {
	c := NewBehaviourData()
	for k, v := range bd.containers {
		c.containers[k] = v.clone()
	}
	for n := range bd.memberNames {
		c.memberNames[n] = true
	}
	for n, b := range bd.blocks {
		cp := *b
		c.blocks[n] = &cp
	}
	c.blockOrder = append([]string(nil), bd.blockOrder...)
	c.attributes = bd.attributes.clone()
	for n, v := range bd.parameters {
		c.parameters[n] = append([]float64(nil), v...)
	}
	for n, v := range bd.statics {
		c.statics[n] = v
	}
	return c
}

// ── Variables ──

// Variables returns a copy of the variables of a container.
func (bd *BehaviourData) Variables(kind ContainerKind) VariableDescriptionContainer {
	return bd.containers[kind].clone()
}

// Variable looks a variable up by name across every container.
func (bd *BehaviourData) Variable(name string) (VariableDescription, ContainerKind, bool) {
	for _, k := range ContainerKinds() {
		if v, ok := bd.containers[k].Get(name); ok {
			return v, k, true
		}
	}
	return VariableDescription{}, 0, false
}

// VariableByExternalName looks a variable up by glossary or entry name.
func (bd *BehaviourData) VariableByExternalName(ext string) (VariableDescription, ContainerKind, bool) {
	for _, k := range ContainerKinds() {
		for _, v := range bd.containers[k] {
			if v.GetExternalName() == ext {
				return v, k, true
			}
		}
	}
	return VariableDescription{}, 0, false
}

// ContainsVariable reports whether a variable with the given name exists.
func (bd *BehaviourData) ContainsVariable(name string) bool {
	_, _, ok := bd.Variable(name)
	return ok
}

// IsMemberName reports whether name is used by this data.
func (bd *BehaviourData) IsMemberName(name string) bool {
	return bd.memberNames[name]
}

// checkAddVariable validates a variable addition without mutating.
func (bd *BehaviourData) checkAddVariable(v VariableDescription) error {
	if bd.memberNames[v.Name] {
		return &cerr.NameCollisionError{Name: v.Name}
	}
	if other, _, ok := bd.VariableByExternalName(v.GetExternalName()); ok {
		return &cerr.NameCollisionError{
			Name:    v.GetExternalName(),
			Context: fmt.Sprintf("external name (used by '%s')", other.Name),
		}
	}
	return nil
}

func (bd *BehaviourData) addVariable(kind ContainerKind, v VariableDescription) {
	bd.memberNames[v.Name] = true
	bd.containers[kind] = append(bd.containers[kind], v.clone())
}

// updateVariable applies fn to the named variable in place.
func (bd *BehaviourData) updateVariable(name string, fn func(*VariableDescription) error) error {
	for _, k := range ContainerKinds() {
		c := bd.containers[k]
		if i := c.index(name); i >= 0 {
			return fn(&c[i])
		}
	}
	return fmt.Errorf("%w '%s'", ErrUnknownVariable, name)
}

func (bd *BehaviourData) checkExternalName(name, ext string) error {
	if !bd.ContainsVariable(name) {
		return fmt.Errorf("%w '%s'", ErrUnknownVariable, name)
	}
	if other, _, ok := bd.VariableByExternalName(ext); ok && other.Name != name {
		return &cerr.NameCollisionError{
			Name:    ext,
			Context: fmt.Sprintf("external name (used by '%s')", other.Name),
		}
	}
	return nil
}

func (bd *BehaviourData) checkBounds(name string, physical bool) error {
	v, _, ok := bd.Variable(name)
	if !ok {
		return fmt.Errorf("%w '%s'", ErrUnknownVariable, name)
	}
	if (physical && v.PhysicalBounds != nil) || (!physical && v.Bounds != nil) {
		return fmt.Errorf("%w for variable '%s'", ErrBoundsAlreadyDefined, name)
	}
	return nil
}

// ── Code blocks ──

// HasCode reports whether a code block exists.
func (bd *BehaviourData) HasCode(name string) bool {
	_, ok := bd.blocks[name]
	return ok
}

// Code returns the assembled text of a code block.
func (bd *BehaviourData) Code(name string) (string, bool) {
	b, ok := bd.blocks[name]
	if !ok {
		return "", false
	}
	return b.code(), true
}

// CodeDescription returns the assembled description of a code block.
func (bd *BehaviourData) CodeDescription(name string) string {
	if b, ok := bd.blocks[name]; ok {
		return b.description()
	}
	return ""
}

// CodeBlockNames returns the code block names in creation order.
func (bd *BehaviourData) CodeBlockNames() []string {
	return append([]string(nil), bd.blockOrder...)
}

func (bd *BehaviourData) checkSetCode(name string, m Mode) error {
	return checkCodeMode(name, bd.HasCode(name), m)
}

func (bd *BehaviourData) setCode(name string, c CodeBlock, m Mode, p Position) {
	b, exists := bd.blocks[name]
	switch {
	case exists && m == CreateButDontReplace:
		return
	case exists && m == CreateOrReplace:
		*b = codeBlockAggregator{}
	case !exists:
		b = &codeBlockAggregator{}
		bd.blocks[name] = b
		bd.blockOrder = append(bd.blockOrder, name)
	}
	b.set(c, p)
}

// ── Attributes ──

// Attribute implements AttributeSource.
func (bd *BehaviourData) Attribute(name string) (Attribute, bool) {
	return bd.attributes.get(name)
}

// AttributeNames returns the attribute names, sorted.
func (bd *BehaviourData) AttributeNames() []string {
	return bd.attributes.names()
}

// ── Parameters and static variables ──

// ParameterDefault returns the default values of a parameter.
func (bd *BehaviourData) ParameterDefault(name string) ([]float64, bool) {
	v, ok := bd.parameters[name]
	return append([]float64(nil), v...), ok
}

// StaticValue returns the value of a static variable.
func (bd *BehaviourData) StaticValue(name string) (float64, bool) {
	v, ok := bd.statics[name]
	return v, ok
}

func (bd *BehaviourData) parameterNames() []string {
	names := make([]string, 0, len(bd.parameters))
	for n := range bd.parameters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
