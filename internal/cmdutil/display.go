package cmdutil

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/thelfer/tfel-sub013/internal/build"
	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// CheckSummary returns a formatted summary of what was found in a treated
// file.
func CheckSummary(d *ir.Description, file string) string {
	var parts []string
	name := d.Name
	if name == "" {
		name = "unnamed"
	}
	parts = append(parts, fmt.Sprintf("%s %s", d.Kind, name))

	if d.Kind == ir.BehaviourKind {
		hs := d.ModellingHypotheses()
		parts = append(parts, fmt.Sprintf("%d hypothes%s", len(hs), pluralIs(len(hs))))
	}
	if n := countVariables(d.GetBehaviourData(ir.Undefined)); n > 0 {
		parts = append(parts, fmt.Sprintf("%d variable%s", n, Plural(n)))
	}
	if n := len(d.Bricks()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d brick%s", n, Plural(n)))
	}
	if n := len(d.Functions()); n > 0 {
		parts = append(parts, fmt.Sprintf("%d function%s", n, Plural(n)))
	}
	return fmt.Sprintf("%s is valid — %s", file, strings.Join(parts, ", "))
}

func countVariables(bd *ir.BehaviourData) int {
	if bd == nil {
		return 0
	}
	n := 0
	for _, k := range ir.ContainerKinds() {
		n += len(bd.Variables(k))
	}
	return n
}

// PrintReport displays the totals of a batch run.
func PrintReport(w io.Writer, r *build.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  "+cli.Heading("Summary"))
	fmt.Fprintln(w, "  "+strings.Repeat("─", 40))
	fmt.Fprintf(w, "  %-12s %d\n", "files", len(r.Results))
	fmt.Fprintf(w, "  %-12s %d\n", "succeeded", r.Succeeded())
	fmt.Fprintf(w, "  %-12s %d\n", "failed", r.Failed())
	skipped := len(r.SkippedFiles())
	if skipped > 0 {
		fmt.Fprintf(w, "  %-12s %d\n", "skipped", skipped)
	}
	fmt.Fprintf(w, "  %-12s %d\n", "warnings", r.Warnings())
	fmt.Fprintf(w, "  %-12s %s\n", "duration", formatDuration(r.Duration))
	fmt.Fprintf(w, "  %-12s %s\n", "run", cli.Muted(r.RunID))
	fmt.Fprintln(w, "  "+strings.Repeat("─", 40))

	switch {
	case skipped > 0:
		fmt.Fprintln(w, cli.Warn(fmt.Sprintf("%d of %d file%s not treated", skipped, len(r.Results), Plural(len(r.Results)))))
	case r.Failed() > 0:
		fmt.Fprintln(w, cli.Error(fmt.Sprintf("%d of %d file%s failed", r.Failed(), len(r.Results), Plural(len(r.Results)))))
	case r.Warnings() > 0:
		fmt.Fprintln(w, cli.Warn(fmt.Sprintf("All files valid, %d warning%s", r.Warnings(), Plural(r.Warnings()))))
	default:
		fmt.Fprintln(w, cli.Success("All files valid"))
	}
}

// PrintDocument displays an exported document: metadata, hypotheses and the
// variables of the default data, then what each specialisation changes.
func PrintDocument(w io.Writer, doc *ir.Document) {
	fmt.Fprintln(w, cli.Heading(fmt.Sprintf("%s %s", doc.Kind, doc.Name)))
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-22s %s\n", label+":", value)
		}
	}
	row("dsl", doc.DSL)
	row("material", doc.Material)
	row("library", doc.Library)
	row("author", doc.Author)
	row("file", doc.File)
	row("symmetry", doc.Symmetry)
	row("modelling hypotheses", strings.Join(doc.ModellingHypotheses, ", "))
	row("bricks", strings.Join(doc.Bricks, ", "))
	row("generator", doc.Generator)
	row("run", doc.RunID)

	printData(w, "default", doc.Default)
	names := make([]string, 0, len(doc.Specializations))
	for h := range doc.Specializations {
		names = append(names, h)
	}
	sort.Strings(names)
	for _, h := range names {
		printData(w, h, doc.Specializations[h])
	}
}

func printData(w io.Writer, label string, data ir.DataDocument) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.Accent("── "+label+" ──"))
	kinds := make([]string, 0, len(data.Variables))
	for k := range data.Variables {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		vars := data.Variables[k]
		names := make([]string, len(vars))
		for i, v := range vars {
			names[i] = v.Name
		}
		fmt.Fprintf(w, "  %-26s %s\n", k, strings.Join(names, ", "))
	}
	if len(data.CodeBlocks) > 0 {
		blocks := make([]string, len(data.CodeBlocks))
		for i, cb := range data.CodeBlocks {
			blocks[i] = cb.Name
		}
		fmt.Fprintf(w, "  %-26s %s\n", "code blocks", cli.Muted(strings.Join(blocks, ", ")))
	}
}

// formatDuration formats a duration as a human-readable string (e.g. "42ms", "1.2s").
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Plural returns "s" for n != 1, empty string for n == 1.
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func pluralIs(n int) string {
	if n == 1 {
		return "is"
	}
	return "es"
}
