package syntax

// Category represents a logical grouping of keywords.
type Category string

const (
	CatMetadata     Category = "metadata"
	CatVariables    Category = "variables"
	CatValues       Category = "values"
	CatBounds       Category = "bounds"
	CatHypotheses   Category = "hypotheses"
	CatCodeBlocks   Category = "code-blocks"
	CatBricks       Category = "bricks"
	CatNumerical    Category = "numerical"
	CatFunctions    Category = "functions"
	CatExternalName Category = "external-names"
)

// Pattern documents one statement of the source language.
type Pattern struct {
	Template    string   // "@Bounds <name> in [<low>:<high>];"
	Description string   // "Sets the standard bounds of a variable"
	Category    Category
	Keywords    []string // keyword and its aliases, empty for statements without keyword
	DSLs        []string // DSLs accepting the statement, empty for every DSL
	Tags        []string // search tags
	Example     string   // full usage example
}

// CategoryLabel returns a human-readable label for a category.
func CategoryLabel(cat Category) string {
	labels := map[Category]string{
		CatMetadata:     "File Metadata",
		CatVariables:    "Variable Declarations",
		CatValues:       "Parameters & Constants",
		CatBounds:       "Bounds",
		CatHypotheses:   "Modelling Hypotheses & Symmetry",
		CatCodeBlocks:   "Code Blocks",
		CatBricks:       "Bricks",
		CatNumerical:    "Implicit Scheme",
		CatFunctions:    "Functions",
		CatExternalName: "Glossary & Entry Names",
	}
	if label, ok := labels[cat]; ok {
		return label
	}
	return string(cat)
}

// AllCategories returns all categories in display order.
func AllCategories() []Category {
	return []Category{
		CatMetadata,
		CatVariables,
		CatValues,
		CatBounds,
		CatHypotheses,
		CatCodeBlocks,
		CatBricks,
		CatNumerical,
		CatFunctions,
		CatExternalName,
	}
}

// ByCategory returns all patterns in a given category.
func ByCategory(cat Category) []Pattern {
	var result []Pattern
	for _, p := range allPatterns {
		if p.Category == cat {
			result = append(result, p)
		}
	}
	return result
}

// ByKeyword returns the patterns documenting a keyword or one of its
// aliases.
func ByKeyword(keyword string) []Pattern {
	var result []Pattern
	for _, p := range allPatterns {
		for _, k := range p.Keywords {
			if k == keyword {
				result = append(result, p)
				break
			}
		}
	}
	return result
}

// AllPatterns returns a copy of all registered patterns.
func AllPatterns() []Pattern {
	result := make([]Pattern, len(allPatterns))
	copy(result, allPatterns)
	return result
}

var (
	behaviourDSLs = []string{"DefaultDSL", "Implicit"}
	implicitDSL   = []string{"Implicit"}
)

var allPatterns = []Pattern{
	// ── Metadata ──
	{
		Template:    "@DSL <name>;",
		Description: "Selects the DSL used to analyse the file",
		Category:    CatMetadata,
		Keywords:    []string{"@DSL", "@Parser"},
		Tags:        []string{"dsl", "parser", "select", "kind"},
		Example:     "@DSL Implicit;",
	},
	{
		Template:    "@Material <name>;",
		Description: "Names the material the file describes",
		Category:    CatMetadata,
		Keywords:    []string{"@Material"},
		Tags:        []string{"material", "name"},
		Example:     "@Material UO2;",
	},
	{
		Template:    "@Library <name>;",
		Description: "Names the library the generated code belongs to",
		Category:    CatMetadata,
		Keywords:    []string{"@Library"},
		Tags:        []string{"library", "name", "link"},
		Example:     "@Library MaterialLaws;",
	},
	{
		Template:    "@Author <text>;",
		Description: "Records the author of the file",
		Category:    CatMetadata,
		Keywords:    []string{"@Author"},
		Tags:        []string{"author", "documentation"},
		Example:     `@Author "Thomas Helfer";`,
	},
	{
		Template:    "@Date <text>;",
		Description: "Records the date of the file",
		Category:    CatMetadata,
		Keywords:    []string{"@Date"},
		Tags:        []string{"date", "documentation"},
		Example:     "@Date 2008-11-17;",
	},
	{
		Template:    "@Description{<text>}",
		Description: "Free text describing the file",
		Category:    CatMetadata,
		Keywords:    []string{"@Description"},
		Tags:        []string{"description", "documentation"},
		Example:     "@Description{\n  Thermal conductivity of uranium dioxide.\n}",
	},
	{
		Template:    "@Includes{<code>}",
		Description: "Code included verbatim at the top of the generated sources",
		Category:    CatMetadata,
		Keywords:    []string{"@Includes"},
		Tags:        []string{"include", "header", "code"},
		Example:     "@Includes{\n#include <cmath>\n}",
	},
	{
		Template:    "@Link {<library>, ...};",
		Description: "Libraries the generated code must be linked with",
		Category:    CatMetadata,
		Keywords:    []string{"@Link"},
		Tags:        []string{"link", "library", "dependency"},
		Example:     `@Link {"-lUO2MaterialLaws"};`,
	},
	{
		Template:    "@Import <file>;",
		Description: "Analyses another file in place, searched next to the current file then in the include paths",
		Category:    CatMetadata,
		Keywords:    []string{"@Import"},
		Tags:        []string{"import", "include", "file", "reuse"},
		Example:     `@Import "common/fuel_inputs.mfront";`,
	},
	{
		Template:    "@Interface {<name>, ...};",
		Description: "Interfaces the generated code targets",
		Category:    CatMetadata,
		Keywords:    []string{"@Interface"},
		Tags:        []string{"interface", "target", "solver"},
		Example:     `@Interface {"c", "python"};`,
	},
	{
		Template:    "@Law <name>;",
		Description: "Names the material property",
		Category:    CatMetadata,
		Keywords:    []string{"@Law"},
		DSLs:        []string{"MaterialLaw"},
		Tags:        []string{"law", "name", "material property"},
		Example:     "@Law ThermalConductivity;",
	},
	{
		Template:    "@Model <name>;",
		Description: "Names the model",
		Category:    CatMetadata,
		Keywords:    []string{"@Model"},
		DSLs:        []string{"Model"},
		Tags:        []string{"model", "name"},
		Example:     "@Model SolidSwelling;",
	},
	{
		Template:    "@Behaviour <name>;",
		Description: "Names the behaviour",
		Category:    CatMetadata,
		Keywords:    []string{"@Behaviour"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"behaviour", "name", "mechanics"},
		Example:     "@Behaviour Plasticity;",
	},

	// ── Variables ──
	{
		Template:    "@Input <name>, ...;",
		Description: "Declares the inputs of a material property, in order",
		Category:    CatVariables,
		Keywords:    []string{"@Input"},
		DSLs:        []string{"MaterialLaw"},
		Tags:        []string{"input", "argument", "variable"},
		Example:     "@Input T, p, Bu;",
	},
	{
		Template:    "@Output <name>;",
		Description: "Declares the single output of a material property, res by default",
		Category:    CatVariables,
		Keywords:    []string{"@Output"},
		DSLs:        []string{"MaterialLaw"},
		Tags:        []string{"output", "result", "variable"},
		Example:     "@Output k;",
	},
	{
		Template:    "@Input [<type>] <name>, ...;",
		Description: "Declares inputs of a model",
		Category:    CatVariables,
		Keywords:    []string{"@Input"},
		DSLs:        []string{"Model"},
		Tags:        []string{"input", "argument", "variable"},
		Example:     "@Input real Bu;",
	},
	{
		Template:    "@Output [<type>] <name>, ...;",
		Description: "Declares outputs of a model",
		Category:    CatVariables,
		Keywords:    []string{"@Output"},
		DSLs:        []string{"Model"},
		Tags:        []string{"output", "result", "variable"},
		Example:     "@Output strain s;",
	},
	{
		Template:    "@MaterialProperty[<H>] <type> <name>[[<n>]], ...;",
		Description: "Declares material properties given by the calling solver",
		Category:    CatVariables,
		Keywords:    []string{"@MaterialProperty", "@Coef"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"material property", "coefficient", "variable"},
		Example:     "@MaterialProperty stress young;",
	},
	{
		Template:    "@StateVariable[<H>] <type> <name>[[<n>]], ...;",
		Description: "Declares state variables, integrated by the behaviour",
		Category:    CatVariables,
		Keywords:    []string{"@StateVariable", "@StateVar"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"state", "internal", "variable", "increment"},
		Example:     "@StateVariable StrainStensor eel;",
	},
	{
		Template:    "@AuxiliaryStateVariable[<H>] <type> <name>[[<n>]], ...;",
		Description: "Declares auxiliary state variables, updated after the integration",
		Category:    CatVariables,
		Keywords:    []string{"@AuxiliaryStateVariable", "@AuxiliaryStateVar"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"auxiliary", "state", "variable"},
		Example:     "@AuxiliaryStateVariable real damage;",
	},
	{
		Template:    "@ExternalStateVariable[<H>] <type> <name>[[<n>]], ...;",
		Description: "Declares external state variables, the temperature being predefined",
		Category:    CatVariables,
		Keywords:    []string{"@ExternalStateVariable", "@ExternalStateVar"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"external", "state", "variable", "temperature"},
		Example:     "@ExternalStateVariable real Bu;",
	},
	{
		Template:    "@IntegrationVariable[<H>] <type> <name>[[<n>]], ...;",
		Description: "Declares integration variables, unknowns that are not saved",
		Category:    CatVariables,
		Keywords:    []string{"@IntegrationVariable"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"integration", "unknown", "variable"},
		Example:     "@IntegrationVariable strain dp;",
	},
	{
		Template:    "@LocalVariable[<H>] <type> <name>[[<n>]], ...;",
		Description: "Declares local variables, whose type is not checked",
		Category:    CatVariables,
		Keywords:    []string{"@LocalVariable", "@LocalVar"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"local", "temporary", "variable"},
		Example:     "@LocalVariable stress lambda, mu;",
	},
	{
		Template:    "@Gradient <type> <name>;",
		Description: "Declares a gradient",
		Category:    CatVariables,
		Keywords:    []string{"@Gradient"},
		DSLs:        []string{"DefaultDSL"},
		Tags:        []string{"gradient", "strain", "driving variable"},
		Example:     "@Gradient StrainStensor eto;",
	},
	{
		Template:    "@ThermodynamicForce <type> <name>;",
		Description: "Declares the thermodynamic force conjugated to a gradient",
		Category:    CatVariables,
		Keywords:    []string{"@ThermodynamicForce", "@Flux"},
		DSLs:        []string{"DefaultDSL"},
		Tags:        []string{"flux", "stress", "thermodynamic force"},
		Example:     "@ThermodynamicForce StressStensor sig;",
	},
	{
		Template:    "@AllowNewUserDefinedVariables;",
		Description: "Allows code blocks to introduce new variables",
		Category:    CatVariables,
		Keywords:    []string{"@AllowNewUserDefinedVariables"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"variable", "attribute"},
		Example:     "@AllowNewUserDefinedVariables;",
	},

	// ── Values ──
	{
		Template:    "@Parameter [<type>] <name> = <value>, <name>[<n>] = {<v>, ...};",
		Description: "Declares parameters with their default values",
		Category:    CatValues,
		Keywords:    []string{"@Parameter"},
		Tags:        []string{"parameter", "default", "value"},
		Example:     "@Parameter a = 2, b[2] = {1, 2};",
	},
	{
		Template:    "@StaticVariable <type> <name> = <value>;",
		Description: "Declares a compile-time constant of a given type",
		Category:    CatValues,
		Keywords:    []string{"@StaticVariable", "@StaticVar"},
		Tags:        []string{"static", "constant", "value"},
		Example:     "@StaticVariable real Tref = 293.15;",
	},
	{
		Template:    "@Constant <name> <value>;",
		Description: "Declares a real compile-time constant",
		Category:    CatValues,
		Keywords:    []string{"@Constant"},
		Tags:        []string{"constant", "value"},
		Example:     "@Constant R 8.314;",
	},

	// ── Bounds ──
	{
		Template:    "@Bounds[<H>] <name> in [<low>:<high>];",
		Description: "Sets the standard bounds of a variable, '*' marking an open end",
		Category:    CatBounds,
		Keywords:    []string{"@Bounds"},
		Tags:        []string{"bounds", "range", "validity"},
		Example:     "@Bounds T in [0:2573.15];",
	},
	{
		Template:    "@PhysicalBounds[<H>] <name> in [<low>:<high>];",
		Description: "Sets the physical bounds of a variable, '*' marking an open end",
		Category:    CatBounds,
		Keywords:    []string{"@PhysicalBounds"},
		Tags:        []string{"bounds", "physical", "range"},
		Example:     "@PhysicalBounds T in [0:*[;",
	},

	// ── Hypotheses ──
	{
		Template:    "@ModellingHypotheses {<hypothesis>, ...};",
		Description: "Restricts the supported modelling hypotheses",
		Category:    CatHypotheses,
		Keywords:    []string{"@ModellingHypothesis", "@ModellingHypotheses"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"hypothesis", "plane strain", "plane stress", "axisymmetrical"},
		Example:     `@ModellingHypotheses {"PlaneStrain", "Tridimensional"};`,
	},
	{
		Template:    "@Symmetry <symmetry>;",
		Description: "Declares the material symmetry, isotropic by default",
		Category:    CatHypotheses,
		Keywords:    []string{"@Symmetry"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"symmetry", "isotropic", "orthotropic"},
		Example:     "@Symmetry Orthotropic;",
	},
	{
		Template:    "@OrthotropicBehaviour;",
		Description: "Declares an orthotropic behaviour",
		Category:    CatHypotheses,
		Keywords:    []string{"@OrthotropicBehaviour"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"symmetry", "orthotropic"},
		Example:     "@OrthotropicBehaviour;",
	},

	// ── Code blocks ──
	{
		Template:    "@InitLocalVariables[<H>][{<options>}]{<code>}",
		Description: "Initializes the local variables",
		Category:    CatCodeBlocks,
		Keywords:    []string{"@InitLocalVariables", "@InitializeLocalVariables"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"code", "initialize", "local"},
		Example:     "@InitLocalVariables{\n  lambda = computeLambda(young, nu);\n}",
	},
	{
		Template:    "@Integrator[<H>][{<options>}]{<code>}",
		Description: "Integrates the behaviour, options being a merge mode (Append, Replace...) and a position (AtBeginning, Body, AtEnd)",
		Category:    CatCodeBlocks,
		Keywords:    []string{"@Integrator"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"code", "integrate", "residual", "append", "replace"},
		Example:     "@Integrator{Append, AtEnd}{\n  feel -= deto;\n}",
	},
	{
		Template:    "@ComputeStress[<H>][{<options>}]{<code>}",
		Description: "Computes the stress during the iterations",
		Category:    CatCodeBlocks,
		Keywords:    []string{"@ComputeStress"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"code", "stress"},
		Example:     "@ComputeStress{\n  sig = lambda * trace(eel) * Stensor::Id() + 2 * mu * eel;\n}",
	},
	{
		Template:    "@ComputeFinalStress[<H>][{<options>}]{<code>}",
		Description: "Computes the stress at the end of the time step",
		Category:    CatCodeBlocks,
		Keywords:    []string{"@ComputeFinalStress"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"code", "stress", "final"},
		Example:     "@ComputeFinalStress{\n  sig = D * eel;\n}",
	},
	{
		Template:    "@Predictor[<H>][{<options>}]{<code>}",
		Description: "Computes the initial guess of the unknowns",
		Category:    CatCodeBlocks,
		Keywords:    []string{"@Predictor"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"code", "predictor", "guess"},
		Example:     "@Predictor{\n  deel = deto;\n}",
	},
	{
		Template:    "@UpdateAuxiliaryStateVariables[<H>][{<options>}]{<code>}",
		Description: "Updates the auxiliary state variables",
		Category:    CatCodeBlocks,
		Keywords:    []string{"@UpdateAuxiliaryStateVariables", "@UpdateAuxiliaryStateVars"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"code", "auxiliary", "update"},
		Example:     "@UpdateAuxiliaryStateVariables{\n  damage += dd;\n}",
	},
	{
		Template:    "@AdditionalConvergenceChecks[<H>][{<options>}]{<code>}",
		Description: "Adds convergence checks to the implicit scheme",
		Category:    CatCodeBlocks,
		Keywords:    []string{"@AdditionalConvergenceChecks"},
		DSLs:        behaviourDSLs,
		Tags:        []string{"code", "convergence", "check"},
		Example:     "@AdditionalConvergenceChecks{\n  converged = converged && (p > 0);\n}",
	},

	// ── Bricks ──
	{
		Template:    "@Brick <name> {<option> : <value>, ...};",
		Description: "Composes a behaviour from registered rules",
		Category:    CatBricks,
		Keywords:    []string{"@Brick"},
		DSLs:        implicitDSL,
		Tags:        []string{"brick", "plasticity", "criterion", "hardening", "flow"},
		Example:     "@Brick StandardElastoViscoPlasticity {\n  inelastic_flow : \"Plastic\" {criterion : \"Mises\"}\n};",
	},

	// ── Implicit scheme ──
	{
		Template:    "@Algorithm <name>;",
		Description: "Selects the non linear solver of the implicit scheme",
		Category:    CatNumerical,
		Keywords:    []string{"@Algorithm"},
		DSLs:        implicitDSL,
		Tags:        []string{"algorithm", "solver", "newton"},
		Example:     "@Algorithm NewtonRaphson;",
	},
	{
		Template:    "@Epsilon <value>;",
		Description: "Sets the convergence criterion, 1e-8 by default",
		Category:    CatNumerical,
		Keywords:    []string{"@Epsilon"},
		DSLs:        implicitDSL,
		Tags:        []string{"epsilon", "convergence", "tolerance"},
		Example:     "@Epsilon 1.e-14;",
	},
	{
		Template:    "@Theta <value>;",
		Description: "Sets the implicit parameter, 0.5 by default",
		Category:    CatNumerical,
		Keywords:    []string{"@Theta"},
		DSLs:        implicitDSL,
		Tags:        []string{"theta", "implicit"},
		Example:     "@Theta 1;",
	},
	{
		Template:    "@IterMax <n>;",
		Description: "Sets the maximum number of iterations, 100 by default",
		Category:    CatNumerical,
		Keywords:    []string{"@IterMax"},
		DSLs:        implicitDSL,
		Tags:        []string{"iterations", "maximum", "convergence"},
		Example:     "@IterMax 50;",
	},

	// ── Functions ──
	{
		Template:    "@Function{<code>}",
		Description: "Body of the material property",
		Category:    CatFunctions,
		Keywords:    []string{"@Function"},
		DSLs:        []string{"MaterialLaw"},
		Tags:        []string{"function", "body", "code"},
		Example:     "@Function{\n  k = 1 / (0.0452 + 2.46e-4 * T);\n}",
	},
	{
		Template:    "@Function <name>{<code>}",
		Description: "Named function of a model",
		Category:    CatFunctions,
		Keywords:    []string{"@Function"},
		DSLs:        []string{"Model"},
		Tags:        []string{"function", "body", "code"},
		Example:     "@Function compute{\n  s = coef * Bu;\n}",
	},

	// ── External names ──
	{
		Template:    "<name>.setGlossaryName(<glossary name>);",
		Description: "Gives a variable a glossary name, checked against the glossary",
		Category:    CatExternalName,
		Tags:        []string{"glossary", "external", "name"},
		Example:     `T.setGlossaryName("Temperature");`,
	},
	{
		Template:    "<name>.setEntryName(<entry name>);",
		Description: "Gives a variable a free external name",
		Category:    CatExternalName,
		Tags:        []string{"entry", "external", "name"},
		Example:     `Bu.setEntryName("BurnUp");`,
	},
}
