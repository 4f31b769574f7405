package ir

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a Description handed to external
// emitters. It is a snapshot: changing it does not affect the model.
type Document struct {
	RunID               string                  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Generator           string                  `json:"generator,omitempty" yaml:"generator,omitempty"`
	Kind                string                  `json:"kind" yaml:"kind"`
	Metadata            `yaml:",inline"`
	Symmetry            string                  `json:"symmetry,omitempty" yaml:"symmetry,omitempty"`
	ModellingHypotheses []string                `json:"modelling_hypotheses,omitempty" yaml:"modelling_hypotheses,omitempty"`
	Attributes          map[string]interface{}  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Bricks              []string                `json:"bricks,omitempty" yaml:"bricks,omitempty"`
	Functions           []Function              `json:"functions,omitempty" yaml:"functions,omitempty"`
	Default             DataDocument            `json:"default" yaml:"default"`
	Specializations     map[string]DataDocument `json:"specializations,omitempty" yaml:"specializations,omitempty"`
}

// DataDocument is the serialized form of one BehaviourData.
type DataDocument struct {
	Variables  map[string][]VariableDescription `json:"variables,omitempty" yaml:"variables,omitempty"`
	CodeBlocks []CodeBlockDocument               `json:"code_blocks,omitempty" yaml:"code_blocks,omitempty"`
	Attributes map[string]interface{}            `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Parameters map[string][]float64              `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Statics    map[string]float64                `json:"static_values,omitempty" yaml:"static_values,omitempty"`
}

// CodeBlockDocument is one assembled code block.
type CodeBlockDocument struct {
	Name        string `json:"name" yaml:"name"`
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Snapshot builds the serialized form of a Description.
func Snapshot(d *Description) *Document {
	doc := &Document{
		Kind:     d.Kind.String(),
		Metadata: d.Metadata,
		Bricks:   d.Bricks(),
		Default:  dataDocument(d.d),
	}
	doc.Metadata.Includes = append([]string(nil), d.Includes...)
	doc.Metadata.Links = append([]string(nil), d.Links...)
	if d.Kind == BehaviourKind {
		doc.Symmetry = d.Symmetry().String()
		for _, h := range d.ModellingHypotheses() {
			doc.ModellingHypotheses = append(doc.ModellingHypotheses, h.String())
		}
	}
	if fs := d.Functions(); len(fs) > 0 {
		doc.Functions = fs
	}
	doc.Attributes = attributesDocument(d.attributes)
	if hs := d.GetDistinctModellingHypotheses(); len(hs) > 0 {
		doc.Specializations = make(map[string]DataDocument, len(hs))
		for _, h := range hs {
			doc.Specializations[h.String()] = dataDocument(d.sd[h])
		}
	}
	return doc
}

func dataDocument(bd *BehaviourData) DataDocument {
	var doc DataDocument
	for _, k := range ContainerKinds() {
		vars := bd.containers[k]
		if len(vars) == 0 {
			continue
		}
		if doc.Variables == nil {
			doc.Variables = make(map[string][]VariableDescription)
		}
		doc.Variables[k.String()] = vars.clone()
	}
	for _, name := range bd.blockOrder {
		b := bd.blocks[name]
		doc.CodeBlocks = append(doc.CodeBlocks, CodeBlockDocument{
			Name:        name,
			Code:        b.code(),
			Description: b.description(),
		})
	}
	doc.Attributes = attributesDocument(bd.attributes)
	if names := bd.parameterNames(); len(names) > 0 {
		doc.Parameters = make(map[string][]float64, len(names))
		for _, n := range names {
			doc.Parameters[n] = append([]float64(nil), bd.parameters[n]...)
		}
	}
	if len(bd.statics) > 0 {
		doc.Statics = make(map[string]float64, len(bd.statics))
		for n, v := range bd.statics {
			doc.Statics[n] = v
		}
	}
	return doc
}

func attributesDocument(m attributeMap) map[string]interface{} {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for _, n := range m.names() {
		out[n] = attributeValue(m[n])
	}
	return out
}

// ToJSON serializes a Description to indented JSON.
func ToJSON(d *Description) ([]byte, error) {
	return json.MarshalIndent(Snapshot(d), "", "  ")
}

// ToYAML serializes a Description to YAML.
func ToYAML(d *Description) ([]byte, error) {
	out, err := yaml.Marshal(Snapshot(d))
	if err != nil {
		return nil, fmt.Errorf("ir: YAML marshal failed: %w", err)
	}
	return out, nil
}

// Encode serializes a Document in the given format ("yaml" or "json").
func Encode(doc *Document, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(doc, "", "  ")
	case "yaml", "":
		return yaml.Marshal(doc)
	}
	return nil, fmt.Errorf("ir: unknown format %q", format)
}

// FromJSON decodes a Document produced by ToJSON.
func FromJSON(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("ir: invalid JSON: %w", err)
	}
	return doc, nil
}

// FromYAML decodes a Document produced by ToYAML.
func FromYAML(data []byte) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("ir: invalid YAML: %w", err)
	}
	return doc, nil
}
