package ir

import (
	"fmt"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// MergePolicy decides what happens when one external variable carries
// different descriptions under several hypotheses.
type MergePolicy int

const (
	// MergePermissive concatenates the distinct descriptions, each labelled
	// with the hypotheses it comes from.
	MergePermissive MergePolicy = iota
	// MergeStrict rejects differing descriptions.
	MergeStrict
)

// MergedVariable is one external variable seen across every supported
// hypothesis.
type MergedVariable struct {
	Name         string         `json:"name" yaml:"name"`
	ExternalName string         `json:"external_name" yaml:"external_name"`
	Type         string         `json:"type" yaml:"type"`
	ArraySize    int            `json:"array_size" yaml:"array_size"`
	Kind         ContainerKind  `json:"kind" yaml:"kind"`
	Hypotheses   []Hypothesis   `json:"hypotheses" yaml:"hypotheses"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	Bounds       *Bounds        `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	descriptions map[Hypothesis]string
}

// MergedVariables gathers the variables of every supported hypothesis by
// external name. Name, type and array size must agree across hypotheses;
// descriptions are merged according to policy.
func (d *Description) MergedVariables(policy MergePolicy) ([]MergedVariable, error) {
	var merged []*MergedVariable
	index := make(map[string]*MergedVariable)

	for _, h := range d.ModellingHypotheses() {
		bd := d.GetBehaviourData(h)
		for _, kind := range ContainerKinds() {
			for _, v := range bd.containers[kind] {
				ext := v.GetExternalName()
				m, ok := index[ext]
				if !ok {
					m = &MergedVariable{
						Name:         v.Name,
						ExternalName: ext,
						Type:         v.Type,
						ArraySize:    v.ArraySize,
						Kind:         kind,
						Bounds:       v.Bounds,
						descriptions: make(map[Hypothesis]string),
					}
					index[ext] = m
					merged = append(merged, m)
				} else if err := m.checkConsistency(h, v, kind); err != nil {
					return nil, err
				}
				m.Hypotheses = append(m.Hypotheses, h)
				m.descriptions[h] = v.Description
			}
		}
	}

	out := make([]MergedVariable, 0, len(merged))
	for _, m := range merged {
		if err := m.mergeDescriptions(policy); err != nil {
			return nil, err
		}
		m.descriptions = nil
		out = append(out, *m)
	}
	return out, nil
}

func (m *MergedVariable) checkConsistency(h Hypothesis, v VariableDescription, kind ContainerKind) error {
	first := m.Hypotheses[0]
	reason := ""
	switch {
	case v.Name != m.Name:
		reason = fmt.Sprintf("external name '%s' maps to '%s' and '%s'", m.ExternalName, m.Name, v.Name)
	case kind != m.Kind:
		reason = fmt.Sprintf("declared as %s and %s", m.Kind, kind)
	case v.Type != m.Type:
		reason = fmt.Sprintf("type '%s' against '%s'", m.Type, v.Type)
	case v.ArraySize != m.ArraySize:
		reason = fmt.Sprintf("array size %d against %d", m.ArraySize, v.ArraySize)
	default:
		return nil
	}
	return &cerr.TypeConsistencyError{
		Name:        m.ExternalName,
		HypothesisA: first.String(),
		HypothesisB: h.String(),
		Reason:      reason,
	}
}

func (m *MergedVariable) mergeDescriptions(policy MergePolicy) error {
	var distinct []string
	byText := make(map[string][]string)
	for _, h := range m.Hypotheses {
		text := m.descriptions[h]
		if text == "" {
			continue
		}
		if _, seen := byText[text]; !seen {
			distinct = append(distinct, text)
		}
		byText[text] = append(byText[text], h.String())
	}

	switch {
	case len(distinct) == 0:
		m.Description = ""
	case len(distinct) == 1:
		m.Description = distinct[0]
	case policy == MergeStrict:
		return &cerr.TypeConsistencyError{
			Name:        m.ExternalName,
			HypothesisA: byText[distinct[0]][0],
			HypothesisB: byText[distinct[1]][0],
			Reason:      "descriptions differ",
		}
	default:
		var b strings.Builder
		for i, text := range distinct {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s: %s", strings.Join(byText[text], ", "), text)
		}
		m.Description = b.String()
	}
	return nil
}
