package bricks

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thelfer/tfel-sub013/internal/ir"
)

// MaterialProperty is the value of a material-property option: either a
// constant or an expression evaluated before local variables are
// initialized.
type MaterialProperty struct {
	Constant bool
	Value    float64
	Formula  string
}

// newMaterialProperty converts an option value. A string naming an
// .mfront file stands for the material law it defines, evaluated at the
// current temperature.
func newMaterialProperty(option string, d Data) (MaterialProperty, error) {
	switch v := d.(type) {
	case Number:
		return MaterialProperty{Constant: true, Value: float64(v)}, nil
	case String:
		s := strings.TrimSpace(string(v))
		if s == "" {
			return MaterialProperty{}, fmt.Errorf("empty material property '%s'", option)
		}
		if strings.HasSuffix(s, ".mfront") {
			law := strings.TrimSuffix(filepath.Base(s), ".mfront")
			return MaterialProperty{Formula: law + "(this->T)"}, nil
		}
		return MaterialProperty{Formula: s}, nil
	}
	return MaterialProperty{}, fmt.Errorf("unsupported data type for material property '%s'", option)
}

func newMaterialProperties(option string, d Data) ([]MaterialProperty, error) {
	arr, ok := d.(Array)
	if !ok {
		return nil, fmt.Errorf("material property '%s' must be an array", option)
	}
	mps := make([]MaterialProperty, 0, len(arr))
	for _, e := range arr {
		mp, err := newMaterialProperty(option, e)
		if err != nil {
			return nil, err
		}
		mps = append(mps, mp)
	}
	return mps, nil
}

// declareParameterOrLocalVariable declares a constant material property
// as a parameter with its default value, and any other as a local
// variable.
func declareParameterOrLocalVariable(desc *ir.Description, mp MaterialProperty, typ, name string) error {
	v := ir.NewVariable(typ, name, 1)
	if !mp.Constant {
		return desc.AddVariable(ir.Undefined, ir.LocalVariables, v)
	}
	if err := desc.AddVariable(ir.Undefined, ir.Parameters, v); err != nil {
		return err
	}
	return desc.SetParameterDefault(ir.Undefined, name, mp.Value)
}

// declareParametersOrLocalVariables is declareParameterOrLocalVariable for
// an array: the array is a parameter only if every entry is constant.
func declareParametersOrLocalVariables(desc *ir.Description, mps []MaterialProperty, typ, name string) error {
	v := ir.NewVariable(typ, name, len(mps))
	values := make([]float64, 0, len(mps))
	for _, mp := range mps {
		if !mp.Constant {
			return desc.AddVariable(ir.Undefined, ir.LocalVariables, v)
		}
		values = append(values, mp.Value)
	}
	if err := desc.AddVariable(ir.Undefined, ir.Parameters, v); err != nil {
		return err
	}
	return desc.SetParameterDefault(ir.Undefined, name, values...)
}

// initializationCode returns the code evaluating a non-constant material
// property, or nothing for a constant one.
func initializationCode(name string, mp MaterialProperty) string {
	if mp.Constant {
		return ""
	}
	return fmt.Sprintf("this->%s = %s;\n", name, mp.Formula)
}

// arrayInitializationCode is initializationCode for an array declared by
// declareParametersOrLocalVariables.
func arrayInitializationCode(name string, mps []MaterialProperty) string {
	constant := true
	for _, mp := range mps {
		constant = constant && mp.Constant
	}
	if constant {
		return ""
	}
	var b strings.Builder
	for i, mp := range mps {
		value := mp.Formula
		if mp.Constant {
			value = fmt.Sprintf("%g", mp.Value)
		}
		fmt.Fprintf(&b, "this->%s[%d] = %s;\n", name, i, value)
	}
	return b.String()
}

// emitInitializationCode inserts initialization code at the beginning of
// the block evaluated before local variables are initialized.
func emitInitializationCode(desc *ir.Description, code string) error {
	if code == "" {
		return nil
	}
	return desc.SetCode(ir.Undefined, ir.BeforeInitializeLocalVariables,
		ir.CodeBlock{Code: strings.TrimSuffix(code, "\n")}, ir.CreateOrAppend, ir.AtBeginning)
}
