package errors

import (
	"fmt"
	"strings"
	"unicode"
)

// ── Suggestions ──
//
// Keywords, rule names, option keys, hypotheses and glossary entries are
// compared folded: the leading '@' of a keyword, the case and the '_' or
// '-' separators do not count as edits. "@output" and "flow-criterion"
// thus resolve to "@Output" and "flow_criterion".

// suggestThreshold is the lowest similarity worth a "did you mean" hint.
const suggestThreshold = 0.6

func fold(name string) []rune {
	name = strings.TrimPrefix(name, "@")
	out := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '_' || r == '-' {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

// editDistance is the optimal string alignment distance between a and b:
// the Levenshtein distance where swapping two adjacent letters, the most
// common typo in keyword names, counts as one edit.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	rows := make([][]int, len(a)+1)
	for i := range rows {
		rows[i] = make([]int, len(b)+1)
		rows[i][0] = i
	}
	for j := range rows[0] {
		rows[0][j] = j
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := min(rows[i-1][j]+1, rows[i][j-1]+1, rows[i-1][j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d = min(d, rows[i-2][j-2]+1)
			}
			rows[i][j] = d
		}
	}
	return rows[len(a)][len(b)]
}

// Similarity returns a score between 0 (nothing in common) and 1 (same
// name once folded).
func Similarity(a, b string) float64 {
	fa, fb := fold(a), fold(b)
	longest := max(len(fa), len(fb))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(editDistance(fa, fb))/float64(longest)
}

// FindClosest returns the candidate most similar to target, or "" when none
// reaches threshold. Ties go to the name that sorts first, so the answer
// does not depend on the order of candidates (registries are maps).
func FindClosest(target string, candidates []string, threshold float64) string {
	best := ""
	bestScore := -1.0
	for _, c := range candidates {
		score := Similarity(target, c)
		if score > bestScore || (score == bestScore && c < best) {
			bestScore = score
			best = c
		}
	}
	if best != "" && bestScore >= threshold {
		return best
	}
	return ""
}

// Suggest returns the known name target was probably meant to be.
func Suggest(target string, candidates []string) string {
	return FindClosest(target, candidates, suggestThreshold)
}

// DidYouMean returns " (did you mean 'x'?)" for the closest candidate, or
// "" when nothing is close enough. It is appended to error messages.
func DidYouMean(target string, candidates []string) string {
	if s := Suggest(target, candidates); s != "" {
		return fmt.Sprintf(" (did you mean '%s'?)", s)
	}
	return ""
}
