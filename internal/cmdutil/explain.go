package cmdutil

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/syntax"
)

// topicMatch maps a user-friendly topic name to categories and an optional filter.
type topicMatch struct {
	cats   []syntax.Category
	filter string
}

var topicAliases = map[string]topicMatch{
	"metadata":       {cats: []syntax.Category{syntax.CatMetadata}},
	"header":         {cats: []syntax.Category{syntax.CatMetadata}},
	"author":         {cats: []syntax.Category{syntax.CatMetadata}, filter: "author"},
	"variables":      {cats: []syntax.Category{syntax.CatVariables}},
	"variable":       {cats: []syntax.Category{syntax.CatVariables}},
	"declarations":   {cats: []syntax.Category{syntax.CatVariables}},
	"state":          {cats: []syntax.Category{syntax.CatVariables}, filter: "state"},
	"inputs":         {cats: []syntax.Category{syntax.CatVariables}, filter: "input"},
	"outputs":        {cats: []syntax.Category{syntax.CatVariables}, filter: "output"},
	"values":         {cats: []syntax.Category{syntax.CatValues}},
	"parameters":     {cats: []syntax.Category{syntax.CatValues}},
	"parameter":      {cats: []syntax.Category{syntax.CatValues}},
	"constants":      {cats: []syntax.Category{syntax.CatValues}},
	"bounds":         {cats: []syntax.Category{syntax.CatBounds}},
	"hypotheses":     {cats: []syntax.Category{syntax.CatHypotheses}},
	"hypothesis":     {cats: []syntax.Category{syntax.CatHypotheses}},
	"symmetry":       {cats: []syntax.Category{syntax.CatHypotheses}, filter: "symmetr"},
	"orthotropic":    {cats: []syntax.Category{syntax.CatHypotheses}, filter: "symmetr"},
	"code":           {cats: []syntax.Category{syntax.CatCodeBlocks}},
	"code-blocks":    {cats: []syntax.Category{syntax.CatCodeBlocks}},
	"blocks":         {cats: []syntax.Category{syntax.CatCodeBlocks}},
	"integrator":     {cats: []syntax.Category{syntax.CatCodeBlocks}, filter: "integrator"},
	"bricks":         {cats: []syntax.Category{syntax.CatBricks}},
	"brick":          {cats: []syntax.Category{syntax.CatBricks}},
	"plasticity":     {cats: []syntax.Category{syntax.CatBricks}},
	"implicit":       {cats: []syntax.Category{syntax.CatNumerical}},
	"numerical":      {cats: []syntax.Category{syntax.CatNumerical}},
	"newton":         {cats: []syntax.Category{syntax.CatNumerical}},
	"functions":      {cats: []syntax.Category{syntax.CatFunctions}},
	"function":       {cats: []syntax.Category{syntax.CatFunctions}},
	"laws":           {cats: []syntax.Category{syntax.CatFunctions, syntax.CatMetadata}, filter: "law"},
	"glossary":       {cats: []syntax.Category{syntax.CatExternalName}},
	"entry":          {cats: []syntax.Category{syntax.CatExternalName}, filter: "entry"},
	"external-names": {cats: []syntax.Category{syntax.CatExternalName}},
}

// ExplainTopicNames returns all valid topic names for tab completion.
func ExplainTopicNames() []string {
	names := make([]string, 0, len(topicAliases))
	for name := range topicAliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var placeholderRe = regexp.MustCompile(`<([^>]+)>`)

// RunExplain displays an explanation for the given topic.
// If topic is empty, lists all available topics.
func RunExplain(out io.Writer, topic string) {
	if topic == "" {
		printTopicList(out)
		return
	}

	topic = strings.ToLower(topic)
	match, ok := topicAliases[topic]
	if !ok {
		if results := syntax.Search(topic); len(results) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "No exact topic %q, showing search results:\n\n", topic)
			printSearchResults(out, results, 10)
			return
		}
		fmt.Fprintf(out, "Unknown topic: %s\n", topic)
		fmt.Fprintln(out, "Run 'mfront explain' to see available topics.")
		return
	}

	fmt.Fprintln(out)
	printTopic(out, match, func(ps []syntax.Pattern) []syntax.Pattern { return ps })

	if related := relatedTopics(match.cats); len(related) > 0 {
		parts := make([]string, len(related))
		for i, r := range related {
			parts[i] = "mfront explain " + r
		}
		fmt.Fprintf(out, "%s\n\n", cli.Muted("Related: "+strings.Join(parts, " │ ")))
	}
}

func printTopic(out io.Writer, match topicMatch, restrict func([]syntax.Pattern) []syntax.Pattern) {
	for _, cat := range match.cats {
		patterns := restrict(syntax.ByCategory(cat))
		if match.filter != "" {
			patterns = filterPatterns(patterns, match.filter)
		}
		if len(patterns) == 0 {
			continue
		}
		printCategorySection(out, cat, patterns)
	}
}

func printTopicList(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.Heading("Available Topics"))
	fmt.Fprintln(out, strings.Repeat("─", 50))
	fmt.Fprintln(out)

	for _, cat := range syntax.AllCategories() {
		count := len(syntax.ByCategory(cat))
		fmt.Fprintf(out, "  %-20s %s\n",
			cli.Accent(string(cat)),
			cli.Muted(fmt.Sprintf("(%d statements) %s", count, syntax.CategoryLabel(cat))))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.Muted("Usage: mfront explain <topic>"))
	fmt.Fprintln(out, cli.Muted("  e.g.: mfront explain bounds, mfront explain bricks, mfront explain state"))
	fmt.Fprintln(out)
}

func sectionHeader(label string) string {
	header := fmt.Sprintf("── %s ", label)
	pad := 50 - len([]rune(header))
	if pad < 0 {
		pad = 0
	}
	return cli.Heading(header) + strings.Repeat("─", pad)
}

func printCategorySection(out io.Writer, cat syntax.Category, patterns []syntax.Pattern) {
	fmt.Fprintf(out, "%s\n\n", sectionHeader(syntax.CategoryLabel(cat)))
	for _, p := range patterns {
		fmt.Fprintf(out, "  %-46s %s\n", highlightPlaceholders(p.Template), cli.Muted(p.Description))
		if len(p.DSLs) > 0 {
			fmt.Fprintf(out, "    %s\n", cli.Muted("only in: "+strings.Join(p.DSLs, ", ")))
		}
		if p.Example != "" {
			fmt.Fprintf(out, "    %s\n", cli.Muted("e.g.: "+p.Example))
		}
	}
	fmt.Fprintln(out)
}

func printSearchResults(out io.Writer, patterns []syntax.Pattern, max int) {
	if len(patterns) > max {
		patterns = patterns[:max]
	}
	for _, p := range patterns {
		fmt.Fprintf(out, "  %-46s %s\n", highlightPlaceholders(p.Template), cli.Muted(fmt.Sprintf("(%s)", p.Category)))
	}
	fmt.Fprintln(out)
}

func highlightPlaceholders(template string) string {
	if !cli.ColorEnabled {
		return template
	}
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		return cli.Colorize(cli.RoleHint, match)
	})
}

func filterPatterns(patterns []syntax.Pattern, term string) []syntax.Pattern {
	term = strings.ToLower(term)
	var result []syntax.Pattern
	for _, p := range patterns {
		if strings.Contains(strings.ToLower(p.Template), term) {
			result = append(result, p)
			continue
		}
		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				result = append(result, p)
				break
			}
		}
	}
	return result
}

func relatedTopics(current []syntax.Category) []string {
	relatedMap := map[syntax.Category][]string{
		syntax.CatMetadata:     {"variables", "functions"},
		syntax.CatVariables:    {"bounds", "glossary", "values"},
		syntax.CatValues:       {"variables", "bounds"},
		syntax.CatBounds:       {"variables", "values"},
		syntax.CatHypotheses:   {"code", "variables"},
		syntax.CatCodeBlocks:   {"implicit", "hypotheses", "variables"},
		syntax.CatBricks:       {"implicit", "symmetry"},
		syntax.CatNumerical:    {"code", "bricks"},
		syntax.CatFunctions:    {"variables", "metadata"},
		syntax.CatExternalName: {"variables"},
	}

	seen := make(map[string]bool)
	var result []string
	for _, cat := range current {
		for _, r := range relatedMap[cat] {
			if !seen[r] {
				seen[r] = true
				result = append(result, r)
			}
		}
	}
	if len(result) > 3 {
		result = result[:3]
	}
	return result
}
