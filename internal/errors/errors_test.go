package errors

import (
	"fmt"
	"strings"
	"testing"
)

// ── CompilerErrors ──

func TestAddAndFilter(t *testing.T) {
	ce := New("Norton.mfront")
	ce.AddError("E102", "unknown keyword '@Ouptut'")
	ce.AddWarning("W101", "no author given")
	ce.AddHint("H101", "parameter 'A' has no description")

	if len(ce.All()) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(ce.All()))
	}
	if len(ce.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(ce.Errors()))
	}
	if len(ce.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(ce.Warnings()))
	}
	if len(ce.Hints()) != 1 {
		t.Fatalf("expected 1 hint, got %d", len(ce.Hints()))
	}
}

func TestHasErrorsAndWarnings(t *testing.T) {
	ce := New("Norton.mfront")

	if ce.HasErrors() {
		t.Fatal("expected no errors initially")
	}
	if ce.HasWarnings() {
		t.Fatal("expected no warnings initially")
	}

	ce.AddWarning("W101", "no author given")
	if ce.HasErrors() {
		t.Fatal("expected no errors after adding only a warning")
	}
	if !ce.HasWarnings() {
		t.Fatal("expected HasWarnings to be true")
	}

	ce.AddError("E201", "name 'T' already registered/reserved")
	if !ce.HasErrors() {
		t.Fatal("expected HasErrors to be true")
	}
}

func TestDefaultFile(t *testing.T) {
	ce := New("test.mfront")
	ce.AddError("E101", "test error")

	errs := ce.Errors()
	if errs[0].File != "test.mfront" {
		t.Fatalf("expected file 'test.mfront', got %q", errs[0].File)
	}
}

func TestAddWithExplicitFile(t *testing.T) {
	ce := New("default.mfront")
	ce.Add(&CompilerError{
		Code:     "E101",
		Message:  "specific file error",
		Severity: SeverityError,
		File:     "other.mfront",
	})

	errs := ce.Errors()
	if errs[0].File != "other.mfront" {
		t.Fatalf("expected file 'other.mfront', got %q", errs[0].File)
	}
}

func TestMerge(t *testing.T) {
	a := New("a.mfront")
	a.AddError("E101", "first")
	b := New("b.mfront")
	b.AddWarning("W101", "second")

	a.Merge(b)
	a.Merge(nil)

	if len(a.All()) != 2 {
		t.Fatalf("expected 2 diagnostics after merge, got %d", len(a.All()))
	}
	if a.All()[1].File != "b.mfront" {
		t.Errorf("merged diagnostic should keep its file, got %q", a.All()[1].File)
	}
}

// ── Format ──

func TestCompilerErrorFormat(t *testing.T) {
	e := &CompilerError{
		Code:    "E102",
		Kind:    KindSyntax,
		Message: "unknown keyword '@Ouptut'",
		File:    "k.mfront",
		Line:    4,
		Column:  1,
	}
	got := e.Format()
	if !strings.HasPrefix(got, "k.mfront:4:1: ") {
		t.Errorf("expected file:line:column prefix, got %q", got)
	}
	if !strings.Contains(got, "SyntaxError: ") {
		t.Errorf("expected kind in output, got %q", got)
	}
	if !strings.Contains(got, "[E102]") {
		t.Errorf("expected error code in output, got %q", got)
	}
}

func TestCompilerErrorFormatWithoutPosition(t *testing.T) {
	e := &CompilerError{Message: "no author given", File: "k.mfront", Code: "W101"}
	got := e.Format()
	if got != "k.mfront: no author given [W101]" {
		t.Errorf("unexpected format %q", got)
	}
}

func TestCompilerErrorsFormat(t *testing.T) {
	ce := New("k.mfront")
	ce.Add(&CompilerError{
		Code:       "E102",
		Message:    "unknown keyword '@Ouptut'",
		Severity:   SeverityError,
		Suggestion: "did you mean '@Output'?",
	})
	ce.AddWarning("W201", "input 'p' is never bounded")

	out := ce.Format()

	if !strings.Contains(out, "✗") {
		t.Error("expected ✗ prefix for errors")
	}
	if !strings.Contains(out, "⚠") {
		t.Error("expected ⚠ prefix for warnings")
	}
	if !strings.Contains(out, "suggestion: did you mean '@Output'?") {
		t.Error("expected suggestion line")
	}
	if !strings.Contains(out, "[W201]") {
		t.Error("expected warning code W201")
	}
}

// ── Kinds ──

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{&LexError{Message: "unterminated string", Line: 1, Column: 3}, KindLex},
		{&SyntaxError{Message: "expected ';'"}, KindSyntax},
		{&NameCollisionError{Name: "T"}, KindNameCollision},
		{&TypeConsistencyError{Name: "k"}, KindTypeConsistency},
		{&ConfigurationError{Message: "bad"}, KindConfiguration},
		{&SymmetryError{Rule: "Hill", Symmetry: "isotropic"}, KindSymmetry},
		{&UnknownRuleError{Name: "UnknownBrick"}, KindUnknownRule},
		{&AttributeTypeError{Name: "algorithm"}, KindAttributeType},
		{fmt.Errorf("reading file: %w", &NameCollisionError{Name: "p"}), KindNameCollision},
		{&KeywordError{Keyword: "@Input", Err: &NameCollisionError{Name: "p"}}, KindNameCollision},
		{fmt.Errorf("open x.mfront: no such file"), KindIO},
	}

	for _, tc := range tests {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestKindCodes(t *testing.T) {
	if KindLex.Code() != "E101" {
		t.Errorf("unexpected lexer code %q", KindLex.Code())
	}
	if KindUnknownRule.Code() != "E303" {
		t.Errorf("unexpected unknown rule code %q", KindUnknownRule.Code())
	}
	if Kind("Other").Code() != "E900" {
		t.Errorf("unknown kinds should map to E900")
	}
}

func TestDiagnosticUsesInnermostSyntaxPosition(t *testing.T) {
	err := &KeywordError{
		Keyword: "@Bounds",
		Line:    3,
		Column:  1,
		Err:     &SyntaxError{Keyword: "@Bounds", Message: "expected 'in'", Line: 3, Column: 11},
	}
	d := Diagnostic("k.mfront", err)
	if d.Kind != KindSyntax || d.Code != "E102" {
		t.Fatalf("unexpected kind/code %s/%s", d.Kind, d.Code)
	}
	if d.Line != 3 || d.Column != 11 {
		t.Errorf("expected position 3:11, got %d:%d", d.Line, d.Column)
	}
}

func TestDiagnosticSuggestion(t *testing.T) {
	d := Diagnostic("k.mfront", &UnknownRuleError{Name: "Mses", Family: "stress criterion", Suggestion: "Mises"})
	if d.Suggestion != "did you mean 'Mises'?" {
		t.Errorf("unexpected suggestion %q", d.Suggestion)
	}
	if !strings.Contains(d.Message, "no stress criterion named 'Mses'") {
		t.Errorf("unexpected message %q", d.Message)
	}
}

func TestNameCollisionMessage(t *testing.T) {
	err := &NameCollisionError{Name: "x"}
	if err.Error() != "name 'x' already registered/reserved" {
		t.Errorf("unexpected message %q", err.Error())
	}
	err = &NameCollisionError{Name: "Mises", Context: "stress criterion"}
	if err.Error() != "stress criterion 'Mises' already registered" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

// ── Edit distance ──

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"Mises", "", 5},
		{"", "Hill", 4},
		{"Norton", "Norton", 0},
		{"Input", "Inputt", 1},
		{"Output", "Ouptut", 1},
		{"Prager", "Pargre", 2},
		{"PlaneStrain", "PlaneStress", 3},
	}

	for _, tc := range tests {
		got := editDistance([]rune(tc.a), []rune(tc.b))
		if got != tc.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

// ── Similarity ──

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"Mises", "Mises", 1, 1},
		{"@output", "@Output", 1, 1},
		{"Output", "@Output", 1, 1},
		{"flow-criterion", "flow_criterion", 1, 1},
		{"", "", 1, 1},
		{"Prager", "Pragr", 0.8, 0.9},
		{"Mises", "Hosford", 0, 0.3},
	}
	for _, tc := range tests {
		s := Similarity(tc.a, tc.b)
		if s < tc.min || s > tc.max {
			t.Errorf("Similarity(%q, %q) = %f, want in [%g, %g]", tc.a, tc.b, s, tc.min, tc.max)
		}
	}
}

// ── Suggestions ──

func TestSuggest(t *testing.T) {
	keywords := []string{"@Input", "@Output", "@Bounds", "@PhysicalBounds", "@Parameter", "@Function"}
	rules := []string{"Mises", "Hill", "Hosford", "Norton", "Prager", "Voce", "Linear", "StandardElastoViscoPlasticity"}
	hypotheses := []string{"AxisymmetricalGeneralisedPlaneStrain", "Axisymmetrical", "PlaneStress", "PlaneStrain", "GeneralisedPlaneStrain", "Tridimensional"}
	options := []string{"criterion", "flow_criterion", "isotropic_hardening", "kinematic_hardening", "K", "E"}

	tests := []struct {
		target     string
		candidates []string
		want       string
	}{
		{"@Ouptut", keywords, "@Output"},
		{"@output", keywords, "@Output"},
		{"@Bound", keywords, "@Bounds"},
		{"@Functon", keywords, "@Function"},
		{"@Zzzzzzzz", keywords, ""},
		{"Mses", rules, "Mises"},
		{"Nortn", rules, "Norton"},
		{"StandardElastoViscoPlastcity", rules, "StandardElastoViscoPlasticity"},
		{"PlaneStrian", hypotheses, "PlaneStrain"},
		{"PlaneStres", hypotheses, "PlaneStress"},
		{"Axisymetrical", hypotheses, "Axisymmetrical"},
		{"isotropic-hardening", options, "isotropic_hardening"},
		{"kinematic_hardenning", options, "kinematic_hardening"},
		{"Mises", nil, ""},
	}
	for _, tc := range tests {
		if got := Suggest(tc.target, tc.candidates); got != tc.want {
			t.Errorf("Suggest(%q) = %q, want %q", tc.target, got, tc.want)
		}
	}
}

func TestSuggestIgnoresCandidateOrder(t *testing.T) {
	// "Hil" is one edit away from both names.
	a := Suggest("Hil", []string{"Hill", "Hilt"})
	b := Suggest("Hil", []string{"Hilt", "Hill"})
	if a != "Hill" || b != "Hill" {
		t.Errorf("expected Hill in both orders, got %q and %q", a, b)
	}
}

func TestDidYouMean(t *testing.T) {
	if got := DidYouMean("Prger", []string{"Prager", "Chaboche"}); got != " (did you mean 'Prager'?)" {
		t.Errorf("DidYouMean(Prger) = %q", got)
	}
	if got := DidYouMean("Zzzzzz", []string{"Prager", "Chaboche"}); got != "" {
		t.Errorf("DidYouMean(Zzzzzz) = %q, want empty", got)
	}
}
