package bricks

import (
	"fmt"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// OptionKind is the kind of value an option accepts.
type OptionKind int

const (
	MaterialPropertyOption OptionKind = iota
	ArrayOfMaterialPropertiesOption
	StringOption
	DataStructureOption
	DataStructuresOption
)

func (k OptionKind) String() string {
	switch k {
	case MaterialPropertyOption:
		return "material property"
	case ArrayOfMaterialPropertiesOption:
		return "array of material properties"
	case StringOption:
		return "string"
	case DataStructureOption:
		return "data structure"
	case DataStructuresOption:
		return "data structures"
	}
	return fmt.Sprintf("OptionKind(%d)", int(k))
}

// OptionDescription describes one option of a rule.
type OptionDescription struct {
	Name     string
	Help     string
	Kind     OptionKind
	Optional bool
}

func required(name, help string, kind OptionKind) OptionDescription {
	return OptionDescription{Name: name, Help: help, Kind: kind}
}

func optional(name, help string, kind OptionKind) OptionDescription {
	return OptionDescription{Name: name, Help: help, Kind: kind, Optional: true}
}

// CheckOptions validates a configuration map against an option list:
// every key must be known, every value must have the expected kind and
// every required option must be present.
func CheckOptions(rule string, d DataMap, opts []OptionDescription) error {
	byName := make(map[string]OptionDescription, len(opts))
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		byName[o.Name] = o
		names = append(names, o.Name)
	}
	for _, key := range d.Keys() {
		o, ok := byName[key]
		if !ok {
			return &cerr.ConfigurationError{Rule: rule, Option: key, Message: "unknown option" + cerr.DidYouMean(key, names)}
		}
		if !o.accepts(d[key]) {
			return &cerr.ConfigurationError{
				Rule:    rule,
				Option:  key,
				Message: fmt.Sprintf("expected a %s, got a %s", o.Kind, d[key].dataKind()),
			}
		}
	}
	for _, o := range opts {
		if _, ok := d[o.Name]; !ok && !o.Optional {
			return &cerr.ConfigurationError{Rule: rule, Option: o.Name, Message: "option is required"}
		}
	}
	return nil
}

func (o OptionDescription) accepts(d Data) bool {
	isMaterialProperty := func(d Data) bool {
		switch d.(type) {
		case Number, String:
			return true
		}
		return false
	}
	isDataStructure := func(d Data) bool {
		switch d.(type) {
		case DataStructure, String:
			return true
		}
		return false
	}
	all := func(d Data, pred func(Data) bool) bool {
		arr, ok := d.(Array)
		if !ok {
			return false
		}
		for _, e := range arr {
			if !pred(e) {
				return false
			}
		}
		return true
	}
	switch o.Kind {
	case MaterialPropertyOption:
		return isMaterialProperty(d)
	case ArrayOfMaterialPropertiesOption:
		return all(d, isMaterialProperty)
	case StringOption:
		_, ok := d.(String)
		return ok
	case DataStructureOption:
		return isDataStructure(d)
	case DataStructuresOption:
		return isDataStructure(d) || all(d, isDataStructure)
	}
	return false
}
