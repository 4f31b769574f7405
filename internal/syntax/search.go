package syntax

import (
	"sort"
	"strings"

	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

type scored struct {
	pattern Pattern
	score   float64
}

// Search returns patterns matching the query, sorted by relevance.
// Uses substring matching and fuzzy matching against keywords, templates,
// tags, and descriptions.
func Search(query string) []Pattern {
	if query == "" {
		return AllPatterns()
	}

	q := strings.ToLower(query)
	var results []scored

	for _, p := range allPatterns {
		score := scorePattern(p, q)
		if score > 0 {
			results = append(results, scored{pattern: p, score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	patterns := make([]Pattern, len(results))
	for i, r := range results {
		patterns[i] = r.pattern
	}
	return patterns
}

// Autocomplete returns patterns whose templates or keywords start with the
// given prefix. The leading '@' may be omitted.
func Autocomplete(prefix string) []Pattern {
	if prefix == "" {
		return nil
	}

	p := strings.ToLower(prefix)
	if !strings.HasPrefix(p, "@") && !strings.HasPrefix(p, "<") {
		p = "@" + p
	}
	var results []Pattern

	for _, pat := range allPatterns {
		if strings.HasPrefix(strings.ToLower(pat.Template), p) || hasKeywordPrefix(pat, p) {
			results = append(results, pat)
		}
	}
	return results
}

// ForDSL keeps the patterns accepted by the named DSL.
func ForDSL(patterns []Pattern, dsl string) []Pattern {
	var result []Pattern
	for _, p := range patterns {
		if len(p.DSLs) == 0 {
			result = append(result, p)
			continue
		}
		for _, d := range p.DSLs {
			if d == dsl {
				result = append(result, p)
				break
			}
		}
	}
	return result
}

func hasKeywordPrefix(p Pattern, prefix string) bool {
	for _, k := range p.Keywords {
		if strings.HasPrefix(strings.ToLower(k), prefix) {
			return true
		}
	}
	return false
}

// scorePattern scores how well a pattern matches a query string.
func scorePattern(p Pattern, query string) float64 {
	best := 0.0

	// Keyword or alias, with or without '@' → 1.1
	for _, k := range p.Keywords {
		lk := strings.ToLower(k)
		if lk == query || strings.TrimPrefix(lk, "@") == query {
			return 1.1
		}
	}

	// Exact substring in template → 1.0
	if strings.Contains(strings.ToLower(p.Template), query) {
		best = 1.0
	}

	// Exact substring in tags → 0.9
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			if 0.9 > best {
				best = 0.9
			}
		}
	}

	// Exact substring in description → 0.8
	if strings.Contains(strings.ToLower(p.Description), query) {
		if 0.8 > best {
			best = 0.8
		}
	}

	// Fuzzy match against tags and keywords → 0.7
	if best == 0 {
		candidates := append([]string{}, p.Tags...)
		for _, k := range p.Keywords {
			candidates = append(candidates, strings.TrimPrefix(k, "@"))
		}
		for _, c := range candidates {
			if cerr.Similarity(strings.TrimPrefix(query, "@"), c) > 0.6 {
				best = 0.7
				break
			}
		}
	}

	return best
}
