package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// Options tunes the analysis.
type Options struct {
	// StrictMerge rejects variables whose descriptions differ between
	// modelling hypotheses instead of concatenating them.
	StrictMerge bool
}

// Analyze performs the checks that need a complete Description: the
// cross-hypothesis merge of every variable, unused declarations, missing
// implicit equations and bounds consistency. Only the merge can fail; the
// other checks produce warnings and hints.
func Analyze(d *ir.Description, opts Options) *cerr.CompilerErrors {
	errs := cerr.New(d.File)

	// 1. Cross-hypothesis merge
	checkMerge(errs, d, opts)

	data := allData(d)
	code := collectCode(d, data)

	// 2. Unused user declarations
	checkUnused(errs, d, data, code)

	// 3. Behaviour completeness
	if d.Kind == ir.BehaviourKind {
		checkIntegrator(errs, d, data)
	}

	// 4. Bounds consistency
	checkBounds(errs, data)

	// 5. External names of the inputs
	checkExternalNames(errs, d, data)

	// 6. Metadata
	checkMetadata(errs, d)

	return errs
}

// ── Data helpers ──

// allData returns the default data followed by every specialisation.
func allData(d *ir.Description) []*ir.BehaviourData {
	out := []*ir.BehaviourData{d.GetBehaviourData(ir.Undefined)}
	for _, h := range d.GetDistinctModellingHypotheses() {
		out = append(out, d.GetBehaviourData(h))
	}
	return out
}

type declared struct {
	v    ir.VariableDescription
	kind ir.ContainerKind
}

// userVariables returns, once per name, the variables written in the
// source. Variables declared by the DSL itself or by bricks carry no line.
func userVariables(data []*ir.BehaviourData, kinds ...ir.ContainerKind) []declared {
	seen := make(map[string]bool)
	var out []declared
	for _, bd := range data {
		for _, k := range kinds {
			for _, v := range bd.Variables(k) {
				if v.Line == 0 || seen[v.Name] {
					continue
				}
				seen[v.Name] = true
				out = append(out, declared{v: v, kind: k})
			}
		}
	}
	return out
}

var identifierRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// collectCode returns the set of identifiers used by the code blocks and
// function bodies of the description.
func collectCode(d *ir.Description, data []*ir.BehaviourData) map[string]bool {
	used := make(map[string]bool)
	add := func(code string) {
		for _, id := range identifierRe.FindAllString(code, -1) {
			used[id] = true
		}
	}
	for _, bd := range data {
		for _, name := range bd.CodeBlockNames() {
			c, _ := bd.Code(name)
			add(c)
		}
	}
	for _, f := range d.Functions() {
		add(f.Body)
	}
	return used
}

// ── Merge ──

func checkMerge(errs *cerr.CompilerErrors, d *ir.Description, opts Options) {
	if d.Kind != ir.BehaviourKind {
		return
	}
	policy := ir.MergePermissive
	if opts.StrictMerge {
		policy = ir.MergeStrict
	}
	if _, err := d.MergedVariables(policy); err != nil {
		errs.AddFailure(err)
	}
}

// ── Unused declarations ──

func checkUnused(errs *cerr.CompilerErrors, d *ir.Description, data []*ir.BehaviourData, used map[string]bool) {
	if len(used) == 0 {
		// nothing to compare against: a description without code
		return
	}
	kinds := []ir.ContainerKind{
		ir.MaterialProperties, ir.StateVariables, ir.AuxiliaryStateVariables,
		ir.ExternalStateVariables, ir.IntegrationVariables, ir.LocalVariables,
		ir.Parameters, ir.StaticVariables, ir.Inputs, ir.Outputs,
	}
	for _, dv := range userVariables(data, kinds...) {
		if isUsed(dv.v.Name, dv.kind, used) {
			continue
		}
		errs.Add(&cerr.CompilerError{
			Code:     "W101",
			Severity: cerr.SeverityWarning,
			Line:     dv.v.Line,
			Message:  fmt.Sprintf("%s '%s' is never used", describeKind(dv.kind), dv.v.Name),
		})
	}
}

// isUsed reports whether a variable appears in the code, directly or
// through its increment or implicit equation.
func isUsed(name string, kind ir.ContainerKind, used map[string]bool) bool {
	if used[name] {
		return true
	}
	switch kind {
	case ir.StateVariables, ir.IntegrationVariables:
		return used["d"+name] || used["f"+name]
	case ir.ExternalStateVariables:
		return used["d"+name]
	}
	return false
}

func describeKind(k ir.ContainerKind) string {
	switch k {
	case ir.MaterialProperties:
		return "material property"
	case ir.StateVariables:
		return "state variable"
	case ir.AuxiliaryStateVariables:
		return "auxiliary state variable"
	case ir.ExternalStateVariables:
		return "external state variable"
	case ir.IntegrationVariables:
		return "integration variable"
	case ir.LocalVariables:
		return "local variable"
	case ir.Parameters:
		return "parameter"
	case ir.StaticVariables:
		return "static variable"
	case ir.Inputs:
		return "input"
	case ir.Outputs:
		return "output"
	}
	return "variable"
}

// ── Integrator ──

func checkIntegrator(errs *cerr.CompilerErrors, d *ir.Description, data []*ir.BehaviourData) {
	integrator := ""
	hasIntegrator := false
	for _, bd := range data {
		if c, ok := bd.Code(ir.Integrator); ok {
			hasIntegrator = true
			integrator += c + "\n"
		}
	}
	if !hasIntegrator {
		errs.AddWarning("W103", fmt.Sprintf("behaviour '%s' has no @Integrator block", nameOr(d.Name, d.File)))
		return
	}
	if d.DSL != "Implicit" {
		return
	}

	// W102: every unknown of the implicit scheme needs an equation
	ids := make(map[string]bool)
	for _, id := range identifierRe.FindAllString(integrator, -1) {
		ids[id] = true
	}
	for _, dv := range userVariables(data, ir.StateVariables, ir.IntegrationVariables) {
		if ids["f"+dv.v.Name] {
			continue
		}
		errs.Add(&cerr.CompilerError{
			Code:     "W102",
			Severity: cerr.SeverityWarning,
			Line:     dv.v.Line,
			Message:  fmt.Sprintf("no implicit equation 'f%s' for %s '%s'", dv.v.Name, describeKind(dv.kind), dv.v.Name),
		})
	}
}

// ── Bounds ──

func checkBounds(errs *cerr.CompilerErrors, data []*ir.BehaviourData) {
	seen := make(map[string]bool)
	for _, bd := range data {
		for _, k := range ir.ContainerKinds() {
			for _, v := range bd.Variables(k) {
				if v.Bounds == nil || v.PhysicalBounds == nil || seen[v.Name] {
					continue
				}
				seen[v.Name] = true
				b, p := v.Bounds, v.PhysicalBounds
				if b.Lower < p.Lower || b.Upper > p.Upper {
					errs.Add(&cerr.CompilerError{
						Code:     "W104",
						Severity: cerr.SeverityWarning,
						Line:     v.Line,
						Message:  fmt.Sprintf("bounds %s of '%s' exceed its physical bounds %s", b, v.Name, p),
					})
				}
			}
		}
	}
}

// ── External names ──

func checkExternalNames(errs *cerr.CompilerErrors, d *ir.Description, data []*ir.BehaviourData) {
	kinds := []ir.ContainerKind{ir.Inputs, ir.MaterialProperties, ir.ExternalStateVariables}
	var missing []string
	for _, dv := range userVariables(data, kinds...) {
		if dv.v.ExternalName == "" {
			missing = append(missing, dv.v.Name)
		}
	}
	if len(missing) == 0 {
		return
	}
	sort.Strings(missing)
	errs.AddHint("H101", fmt.Sprintf(
		"no glossary or entry name for %s; solvers will see the variable names", quoteAll(missing)))
}

// ── Metadata ──

func checkMetadata(errs *cerr.CompilerErrors, d *ir.Description) {
	if d.Author == "" {
		errs.AddHint("H102", "no @Author given")
	}
	if d.Metadata.Description == "" {
		errs.AddHint("H103", "no @Description given")
	}
}

func quoteAll(names []string) string {
	q := make([]string, len(names))
	for i, n := range names {
		q[i] = "'" + n + "'"
	}
	return strings.Join(q, ", ")
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
