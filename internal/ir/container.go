package ir

import "fmt"

// ContainerKind identifies one of the variable containers of the
// per-hypothesis data.
type ContainerKind int

const (
	MaterialProperties ContainerKind = iota
	Gradients
	ThermodynamicForces
	StateVariables
	AuxiliaryStateVariables
	ExternalStateVariables
	IntegrationVariables
	LocalVariables
	Parameters
	StaticVariables
	Inputs
	Outputs
)

var containerNames = map[ContainerKind]string{
	MaterialProperties:      "MaterialProperties",
	Gradients:               "Gradients",
	ThermodynamicForces:     "ThermodynamicForces",
	StateVariables:          "StateVariables",
	AuxiliaryStateVariables: "AuxiliaryStateVariables",
	ExternalStateVariables:  "ExternalStateVariables",
	IntegrationVariables:    "IntegrationVariables",
	LocalVariables:          "LocalVariables",
	Parameters:              "Parameters",
	StaticVariables:         "StaticVariables",
	Inputs:                  "Inputs",
	Outputs:                 "Outputs",
}

// String returns the container name.
func (k ContainerKind) String() string {
	if name, ok := containerNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ContainerKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k ContainerKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ContainerKinds returns every container kind in declaration order.
func ContainerKinds() []ContainerKind {
	return []ContainerKind{
		MaterialProperties, Gradients, ThermodynamicForces, StateVariables,
		AuxiliaryStateVariables, ExternalStateVariables, IntegrationVariables,
		LocalVariables, Parameters, StaticVariables, Inputs, Outputs,
	}
}

// VariableDescriptionContainer is an ordered list of variables.
type VariableDescriptionContainer []VariableDescription

// Contains reports whether a variable with the given name exists.
func (c VariableDescriptionContainer) Contains(name string) bool {
	return c.index(name) >= 0
}

// Get returns the variable with the given name.
func (c VariableDescriptionContainer) Get(name string) (VariableDescription, bool) {
	if i := c.index(name); i >= 0 {
		return c[i], true
	}
	return VariableDescription{}, false
}

// Names returns the variable names in declaration order.
func (c VariableDescriptionContainer) Names() []string {
	names := make([]string, len(c))
	for i, v := range c {
		names[i] = v.Name
	}
	return names
}

func (c VariableDescriptionContainer) index(name string) int {
	for i, v := range c {
		if v.Name == name {
			return i
		}
	}
	return -1
}

func (c VariableDescriptionContainer) clone() VariableDescriptionContainer {
	if c == nil {
		return nil
	}
	out := make(VariableDescriptionContainer, len(c))
	for i, v := range c {
		out[i] = v.clone()
	}
	return out
}
