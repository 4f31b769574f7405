package syntax

import (
	"strings"
	"testing"

	"github.com/thelfer/tfel-sub013/internal/dsl"
)

func TestAllCategoriesHavePatterns(t *testing.T) {
	for _, cat := range AllCategories() {
		if len(ByCategory(cat)) == 0 {
			t.Errorf("category %q has no patterns", cat)
		}
	}
}

func TestAllPatternsHaveRequiredFields(t *testing.T) {
	for i, p := range AllPatterns() {
		if p.Template == "" {
			t.Errorf("pattern %d has empty Template", i)
		}
		if p.Description == "" {
			t.Errorf("pattern %d (%q) has empty Description", i, p.Template)
		}
		if p.Category == "" {
			t.Errorf("pattern %d (%q) has empty Category", i, p.Template)
		}
		if len(p.Tags) == 0 {
			t.Errorf("pattern %d (%q) has no Tags", i, p.Template)
		}
		if p.Example == "" {
			t.Errorf("pattern %d (%q) has no Example", i, p.Template)
		}
	}
}

func TestNoDuplicateTemplates(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range AllPatterns() {
		if seen[p.Template] {
			t.Errorf("duplicate template: %q", p.Template)
		}
		seen[p.Template] = true
	}
}

func TestExamplesUseTheirKeyword(t *testing.T) {
	for _, p := range AllPatterns() {
		if len(p.Keywords) == 0 {
			continue
		}
		found := false
		for _, k := range p.Keywords {
			if strings.HasPrefix(p.Example, k) {
				found = true
			}
		}
		if !found {
			t.Errorf("example of %q does not start with one of %v", p.Template, p.Keywords)
		}
	}
}

// Every keyword a DSL accepts must be documented for that DSL.
func TestEveryKeywordIsDocumented(t *testing.T) {
	for _, name := range dsl.Names() {
		keywords, err := dsl.Keywords(name)
		if err != nil {
			t.Fatalf("Keywords(%s): %v", name, err)
		}
		documented := ForDSL(AllPatterns(), name)
		for _, k := range keywords {
			found := false
			for _, p := range documented {
				for _, pk := range p.Keywords {
					if pk == k {
						found = true
					}
				}
			}
			if !found {
				t.Errorf("keyword %s of DSL %s is not documented", k, name)
			}
		}
	}
}

func TestByKeyword(t *testing.T) {
	if got := ByKeyword("@StateVar"); len(got) != 1 || got[0].Category != CatVariables {
		t.Errorf("ByKeyword(@StateVar) = %v", got)
	}
	// @Output differs between material laws and models.
	if got := ByKeyword("@Output"); len(got) != 2 {
		t.Errorf("expected 2 patterns for @Output, got %d", len(got))
	}
	if got := ByKeyword("@Nope"); got != nil {
		t.Errorf("expected no pattern for @Nope, got %v", got)
	}
}

func TestForDSL(t *testing.T) {
	for _, p := range ForDSL(AllPatterns(), "MaterialLaw") {
		if p.Category == CatBricks || p.Category == CatCodeBlocks {
			t.Errorf("pattern %q should not apply to material laws", p.Template)
		}
	}
	implicit := ForDSL(ByCategory(CatNumerical), "Implicit")
	if len(implicit) != 4 {
		t.Errorf("expected 4 numerical patterns for Implicit, got %d", len(implicit))
	}
	if got := ForDSL(ByCategory(CatNumerical), "DefaultDSL"); len(got) != 0 {
		t.Errorf("expected no numerical pattern for DefaultDSL, got %d", len(got))
	}
}

func TestSearchBounds(t *testing.T) {
	results := Search("bounds")
	if len(results) < 2 {
		t.Fatalf("expected bounds patterns, got %d", len(results))
	}
	if results[0].Category != CatBounds {
		t.Errorf("expected a bounds pattern first, got %q", results[0].Template)
	}
}

func TestSearchKeywordFirst(t *testing.T) {
	results := Search("StateVar")
	if len(results) == 0 {
		t.Fatal("expected results for 'StateVar'")
	}
	if results[0].Keywords[0] != "@StateVariable" {
		t.Errorf("expected @StateVariable first, got %q", results[0].Template)
	}
}

func TestSearchFuzzy(t *testing.T) {
	results := Search("plastcity")
	if len(results) == 0 {
		t.Fatal("expected fuzzy results for 'plastcity'")
	}
	hasBrick := false
	for _, p := range results {
		if p.Category == CatBricks {
			hasBrick = true
		}
	}
	if !hasBrick {
		t.Error("expected the brick pattern in 'plastcity' search")
	}
}

func TestSearchEmpty(t *testing.T) {
	results := Search("")
	if len(results) != len(AllPatterns()) {
		t.Errorf("empty search should return all patterns, got %d want %d", len(results), len(AllPatterns()))
	}
}

func TestAutocomplete(t *testing.T) {
	for _, prefix := range []string{"@Comp", "comp"} {
		results := Autocomplete(prefix)
		if len(results) != 2 {
			t.Errorf("Autocomplete(%q): expected 2 results, got %d", prefix, len(results))
		}
		for _, p := range results {
			if !strings.HasPrefix(p.Template, "@Compute") {
				t.Errorf("expected template starting with '@Compute', got %q", p.Template)
			}
		}
	}
	// aliases complete too
	if got := Autocomplete("@Coef"); len(got) != 1 || got[0].Keywords[0] != "@MaterialProperty" {
		t.Errorf("Autocomplete(@Coef) = %v", got)
	}
}

func TestAutocompleteEmpty(t *testing.T) {
	results := Autocomplete("")
	if results != nil {
		t.Error("empty prefix should return nil")
	}
}

func TestCategoryLabel(t *testing.T) {
	label := CategoryLabel(CatCodeBlocks)
	if label != "Code Blocks" {
		t.Errorf("expected 'Code Blocks', got %q", label)
	}
	label = CategoryLabel(Category("other"))
	if label != "other" {
		t.Errorf("expected 'other', got %q", label)
	}
}
