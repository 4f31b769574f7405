package ir

import (
	stderrors "errors"
	"fmt"
	"sort"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// Well-known attribute names.
const (
	AttrAllowsNewUserDefinedVariables = "allowsNewUserDefinedVariables"
	AttrAlgorithm                     = "algorithm"
	AttrStressPotential               = "stress_potential"
	AttrNumberOfEvaluations           = "numberOfEvaluations"
	AttrInterfaces                    = "interfaces"
)

// ErrNoAttribute is returned when an attribute is read before being set.
var ErrNoAttribute = stderrors.New("no such attribute")

// Attribute is a value stored in an attribute map. It is a closed sum
// type: BoolAttribute, UShortAttribute, StringAttribute or
// StringArrayAttribute.
type Attribute interface {
	attributeType() string
}

type (
	BoolAttribute        bool
	UShortAttribute      uint16
	StringAttribute      string
	StringArrayAttribute []string
)

func (BoolAttribute) attributeType() string        { return "bool" }
func (UShortAttribute) attributeType() string      { return "unsigned short" }
func (StringAttribute) attributeType() string      { return "string" }
func (StringArrayAttribute) attributeType() string { return "string array" }

// AttributeSource is implemented by every holder of attributes.
type AttributeSource interface {
	Attribute(name string) (Attribute, bool)
}

// GetAttribute returns the attribute name of src as a T. It fails with an
// AttributeTypeError if the stored value holds another type.
func GetAttribute[T Attribute](src AttributeSource, name string) (T, error) {
	var zero T
	a, ok := src.Attribute(name)
	if !ok {
		return zero, fmt.Errorf("%w: '%s'", ErrNoAttribute, name)
	}
	v, ok := a.(T)
	if !ok {
		return zero, &cerr.AttributeTypeError{Name: name, Want: typeName(zero), Got: a.attributeType()}
	}
	return v, nil
}

// GetAttributeOr is GetAttribute with a fallback for missing attributes.
// A type mismatch is still an error.
func GetAttributeOr[T Attribute](src AttributeSource, name string, fallback T) (T, error) {
	v, err := GetAttribute[T](src, name)
	if stderrors.Is(err, ErrNoAttribute) {
		return fallback, nil
	}
	return v, err
}

func typeName(a Attribute) string {
	if a == nil {
		return "attribute"
	}
	return a.attributeType()
}

// attributeMap stores attributes by name.
type attributeMap map[string]Attribute

func (m attributeMap) get(name string) (Attribute, bool) {
	a, ok := m[name]
	return a, ok
}

// check validates that name may be set to a without mutating the map.
func (m attributeMap) check(name string, a Attribute, allowOverride bool) error {
	old, exists := m[name]
	if !exists {
		return nil
	}
	if !allowOverride {
		return &cerr.NameCollisionError{Name: name, Context: "attribute"}
	}
	if old.attributeType() != a.attributeType() {
		return &cerr.AttributeTypeError{Name: name, Want: old.attributeType(), Got: a.attributeType()}
	}
	return nil
}

func (m attributeMap) names() []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (m attributeMap) clone() attributeMap {
	out := make(attributeMap, len(m))
	for k, v := range m {
		if arr, ok := v.(StringArrayAttribute); ok {
			v = append(StringArrayAttribute(nil), arr...)
		}
		out[k] = v
	}
	return out
}

// attributeValue unwraps an attribute into a plain value for export.
func attributeValue(a Attribute) interface{} {
	switch v := a.(type) {
	case BoolAttribute:
		return bool(v)
	case UShortAttribute:
		return uint16(v)
	case StringAttribute:
		return string(v)
	case StringArrayAttribute:
		return []string(v)
	}
	return nil
}
