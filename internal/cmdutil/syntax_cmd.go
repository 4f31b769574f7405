package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/dsl"
	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/syntax"
)

// KeywordsOptions selects what RunKeywords shows.
type KeywordsOptions struct {
	DSL      string // restrict to the keywords of one DSL
	Section  string // category or topic
	Search   string // free-text query
	Complete string // keyword prefix
	Raw      bool   // bare keyword list of DSL, one per line
	Pager    bool   // page the full reference
}

// RunKeywords displays the keyword reference.
// Without section, search or prefix it shows the full reference, through
// a pager when asked to.
func RunKeywords(out io.Writer, opts KeywordsOptions) error {
	if opts.DSL != "" {
		keywords, err := dsl.Keywords(opts.DSL)
		if err != nil {
			var unknown *cerr.UnknownRuleError
			if errors.As(err, &unknown) && unknown.Suggestion != "" {
				return fmt.Errorf("%w (did you mean '%s'?)", err, unknown.Suggestion)
			}
			return err
		}
		if opts.Raw {
			for _, k := range keywords {
				fmt.Fprintln(out, k)
			}
			return nil
		}
	} else if opts.Raw {
		return fmt.Errorf("--raw needs a DSL, one of: %s", strings.Join(dsl.Names(), ", "))
	}

	restrict := func(ps []syntax.Pattern) []syntax.Pattern {
		if opts.DSL == "" {
			return ps
		}
		return syntax.ForDSL(ps, opts.DSL)
	}

	switch {
	case opts.Complete != "":
		printSearchResults(out, restrict(syntax.Autocomplete(opts.Complete)), 20)
	case opts.Search != "":
		runSyntaxSearch(out, opts.Search, restrict)
	case opts.Section != "":
		runSyntaxSection(out, opts.Section, restrict)
	default:
		runSyntaxFull(out, opts, restrict)
	}
	return nil
}

func runSyntaxSearch(out io.Writer, query string, restrict func([]syntax.Pattern) []syntax.Pattern) {
	results := restrict(syntax.Search(query))
	if len(results) == 0 {
		fmt.Fprintf(out, "No keyword matching %q found.\n", query)
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s\n\n",
		cli.Heading(fmt.Sprintf("Found %d statement%s matching %q:", len(results), Plural(len(results)), query)))
	printSearchResults(out, results, 15)

	cat := results[0].Category
	fmt.Fprintf(out, "%s\n\n", cli.Muted(fmt.Sprintf("Tip: Run 'mfront explain %s' for the full %s reference.", cat, syntax.CategoryLabel(cat))))
}

func runSyntaxSection(out io.Writer, section string, restrict func([]syntax.Pattern) []syntax.Pattern) {
	section = strings.ToLower(section)

	for _, cat := range syntax.AllCategories() {
		if string(cat) == section {
			fmt.Fprintln(out)
			printCategorySection(out, cat, restrict(syntax.ByCategory(cat)))
			return
		}
	}

	if match, ok := topicAliases[section]; ok {
		fmt.Fprintln(out)
		printTopic(out, match, restrict)
		return
	}

	fmt.Fprintf(out, "Unknown section: %s\n", section)
	fmt.Fprintln(out, "Available sections:")
	for _, cat := range syntax.AllCategories() {
		fmt.Fprintf(out, "  %s\n", cat)
	}
}

func runSyntaxFull(out io.Writer, opts KeywordsOptions, restrict func([]syntax.Pattern) []syntax.Pattern) {
	title := "MFront Keyword Reference"
	if opts.DSL != "" {
		title += " (" + opts.DSL + ")"
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(cli.Heading(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("═", 50))
	sb.WriteString("\n\n")

	for _, cat := range syntax.AllCategories() {
		patterns := restrict(syntax.ByCategory(cat))
		if len(patterns) == 0 {
			continue
		}
		sb.WriteString(sectionHeader(syntax.CategoryLabel(cat)) + "\n\n")
		for _, p := range patterns {
			sb.WriteString(fmt.Sprintf("  %-46s %s\n", highlightPlaceholders(p.Template), cli.Muted(p.Description)))
		}
		sb.WriteString("\n")
	}
	content := sb.String()

	if opts.Pager {
		if pagerCmd := findPager(); pagerCmd != "" {
			if err := runPager(pagerCmd, content); err == nil {
				return
			}
		}
	}
	fmt.Fprint(out, content)
}

func findPager() string {
	if pager := os.Getenv("PAGER"); pager != "" {
		return pager
	}
	if _, err := exec.LookPath("less"); err == nil {
		return "less -R"
	}
	if _, err := exec.LookPath("more"); err == nil {
		return "more"
	}
	return ""
}

func runPager(pagerCmd, content string) error {
	parts := strings.Fields(pagerCmd)
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
