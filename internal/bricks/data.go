package bricks

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Data is a value of a rule configuration map: a Number, a String, an
// Array or a DataStructure.
type Data interface {
	dataKind() string
}

type (
	Number float64
	String string
	Array  []Data
)

// DataStructure is a named group of options, written `"Name" {k : v}` in
// sources.
type DataStructure struct {
	Name string
	Data DataMap
}

// DataMap is a rule configuration map.
type DataMap map[string]Data

func (Number) dataKind() string        { return "number" }
func (String) dataKind() string        { return "string" }
func (Array) dataKind() string         { return "array" }
func (DataStructure) dataKind() string { return "data structure" }

// Keys returns the keys of the map in a stable order.
func (m DataMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toDataStructure accepts a data structure or a bare name.
func toDataStructure(option string, d Data) (DataStructure, error) {
	switch v := d.(type) {
	case DataStructure:
		return v, nil
	case String:
		return DataStructure{Name: string(v), Data: DataMap{}}, nil
	}
	return DataStructure{}, fmt.Errorf("invalid data type for entry '%s'", option)
}

// toDataStructures accepts a data structure, a bare name or an array of
// either.
func toDataStructures(option string, d Data) ([]DataStructure, error) {
	arr, ok := d.(Array)
	if !ok {
		ds, err := toDataStructure(option, d)
		if err != nil {
			return nil, err
		}
		return []DataStructure{ds}, nil
	}
	out := make([]DataStructure, 0, len(arr))
	for _, e := range arr {
		ds, err := toDataStructure(option, e)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

// ── YAML ──

// DecodeDataMap reads a configuration map written in YAML. Numbers become
// Number, strings become String, sequences become Array and mappings
// become DataStructure, named after their "name" key.
func DecodeDataMap(src []byte) (DataMap, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, fmt.Errorf("invalid rule options: %w", err)
	}
	if root.Kind == 0 {
		return DataMap{}, nil
	}
	node := &root
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid rule options: expected a mapping at line %d", node.Line)
	}
	return decodeMapping(node)
}

func decodeMapping(node *yaml.Node) (DataMap, error) {
	m := make(DataMap, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		v, err := decodeNode(node.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("entry '%s': %w", key, err)
		}
		m[key] = v
	}
	return m, nil
}

func decodeNode(node *yaml.Node) (Data, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!int" || node.Tag == "!!float" {
			f, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", node.Line, err)
			}
			return Number(f), nil
		}
		return String(node.Value), nil
	case yaml.SequenceNode:
		arr := make(Array, 0, len(node.Content))
		for _, c := range node.Content {
			v, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.MappingNode:
		m, err := decodeMapping(node)
		if err != nil {
			return nil, err
		}
		name, ok := m["name"].(String)
		if !ok {
			return nil, fmt.Errorf("line %d: data structure without a name", node.Line)
		}
		delete(m, "name")
		return DataStructure{Name: string(name), Data: m}, nil
	case yaml.AliasNode:
		return decodeNode(node.Alias)
	}
	return nil, fmt.Errorf("line %d: unsupported value", node.Line)
}
