package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/thelfer/tfel-sub013/internal/build"
	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/config"
	cerr "github.com/thelfer/tfel-sub013/internal/errors"
)

// BatchOptions selects what a batch command does on top of checking.
type BatchOptions struct {
	Export bool // write documents to cfg.OutputDir
	Hints  bool // print hints along with warnings and errors
	Logger *slog.Logger

	// Progress, when set, is called after each file, as build.Options.Progress.
	Progress func(done, total int, res build.Result)
}

// ResolveFiles expands the command line arguments with the settings of cfg.
// Arguments are taken relative to the working directory; without arguments
// the project root is searched.
func ResolveFiles(cfg *config.Config, args []string) (root string, files []string, err error) {
	root, err = filepath.Abs(cfg.Root)
	if err != nil {
		return "", nil, err
	}
	abs := make([]string, 0, len(args))
	for _, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return "", nil, err
		}
		abs = append(abs, p)
	}
	files, err = build.ResolveInputs(root, abs, cfg.Patterns, cfg.Excludes)
	if err != nil {
		return "", nil, err
	}
	if len(files) == 0 {
		return "", nil, fmt.Errorf("no source file found below %s", displayPath(root))
	}
	return root, files, nil
}

// RunBatch checks (and optionally exports) the files selected by args, then
// prints every diagnostic and a summary. A non-nil error is returned when a
// file failed. A run cancelled between files returns a *cli.Interrupted
// naming the files finished and skipped.
func RunBatch(ctx context.Context, cfg *config.Config, args []string, opts BatchOptions, out, errOut io.Writer) (*build.Report, error) {
	root, files, err := ResolveFiles(cfg, args)
	if err != nil {
		return nil, err
	}

	bopts := build.Options{
		Jobs:         cfg.Jobs,
		Root:         root,
		IncludePaths: cfg.IncludePaths,
		StrictMerge:  cfg.StrictMerge,
		Format:       cfg.Format,
		Logger:       opts.Logger,
	}
	if opts.Export {
		bopts.OutputDir = cfg.OutputDir
	}

	verb := "Checking"
	if opts.Export {
		verb = "Exporting"
	}

	var report *build.Report
	spinErr := cli.WithSpinnerCtx(ctx, errOut, fmt.Sprintf("%s %d file%s...", verb, len(files), Plural(len(files))),
		func(ctx context.Context, s *cli.Spinner) error {
			bopts.Progress = func(done, total int, res build.Result) {
				s.SetMessage(fmt.Sprintf("%s [%d/%d] %s", verb, done, total, displayPath(res.File)))
				if opts.Progress != nil {
					opts.Progress(done, total, res)
				}
			}
			var err error
			report, err = build.Run(ctx, files, bopts)
			return err
		})
	if report == nil {
		return nil, spinErr
	}

	for _, res := range report.Results {
		if !res.Skipped {
			PrintResult(out, errOut, res, opts.Hints)
		}
	}
	PrintReport(out, report)

	if ctx.Err() != nil {
		return report, &cli.Interrupted{
			Finished: displayPaths(report.FinishedFiles()),
			Skipped:  displayPaths(report.SkippedFiles()),
		}
	}
	if n := report.Failed(); n > 0 {
		return report, fmt.Errorf("%d of %d file%s failed", n, len(report.Results), Plural(len(report.Results)))
	}
	return report, nil
}

// PrintResult prints the diagnostics of one file to errOut and, when it
// succeeded, a one-line summary to out.
func PrintResult(out, errOut io.Writer, res build.Result, hints bool) {
	PrintDiagnostics(errOut, res.Diagnostics, hints)
	if !res.OK() {
		return
	}
	fmt.Fprintln(out, cli.Success(CheckSummary(res.Description, displayPath(res.File))))
	if res.Output != "" {
		fmt.Fprintf(out, "  %s\n", cli.Muted("→ "+displayPath(res.Output)))
	}
}

// PrintDiagnostics prints all warnings and errors from a CompilerErrors
// collection, and the hints when asked to. Returns true if errors exist.
func PrintDiagnostics(w io.Writer, errs *cerr.CompilerErrors, hints bool) bool {
	if errs == nil {
		return false
	}
	for _, e := range errs.All() {
		if e.Severity == cerr.SeverityHint && !hints {
			continue
		}
		PrintDiagnostic(w, e)
	}
	return errs.HasErrors()
}

// PrintDiagnostic prints a single CompilerError with its suggestion.
func PrintDiagnostic(w io.Writer, e *cerr.CompilerError) {
	shown := *e
	shown.File = displayPath(e.File)
	switch e.Severity {
	case cerr.SeverityWarning:
		fmt.Fprintln(w, cli.Warn(shown.Format()))
	case cerr.SeverityHint:
		fmt.Fprintln(w, cli.Hint(shown.Format()))
	default:
		fmt.Fprintln(w, cli.Error(shown.Format()))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(w, "  suggestion: %s\n", e.Suggestion)
	}
}

func displayPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = displayPath(p)
	}
	return out
}

// displayPath returns path relative to the working directory when it lies
// below it.
func displayPath(path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
