package cmdutil

import (
	"fmt"
	"io"

	"github.com/thelfer/tfel-sub013/internal/bricks"
	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/config"
	"github.com/thelfer/tfel-sub013/internal/dsl"
	"github.com/thelfer/tfel-sub013/internal/fixer"
)

// RunFix replaces misspelt names in the files selected by args. With dryRun
// the fixes are only printed. It fails when a file still does not parse.
func RunFix(cfg *config.Config, args []string, dryRun bool, out io.Writer) error {
	_, files, err := ResolveFiles(cfg, args)
	if err != nil {
		return err
	}
	opts := dsl.Options{IncludePaths: cfg.IncludePaths, Registries: bricks.Global()}

	fixed, failing := 0, 0
	for _, file := range files {
		res, err := fixer.AnalyzeFile(file, opts)
		if err != nil {
			return err
		}
		if res.Remaining != nil {
			failing++
		}
		if !res.Changed() && res.Remaining == nil {
			continue
		}
		fixer.PrintResult(out, res, displayPath(file))
		if !res.Changed() || dryRun {
			continue
		}
		if err := fixer.Apply(res); err != nil {
			return err
		}
		fixed++
	}

	switch {
	case dryRun:
		fmt.Fprintln(out, cli.Muted("Dry run, no file written."))
	case fixed > 0:
		fmt.Fprintln(out, cli.Success(fmt.Sprintf("Fixed %d file%s (backups saved as .bak)", fixed, Plural(fixed))))
	case failing == 0:
		fmt.Fprintln(out, cli.Success("Nothing to fix"))
	}
	if failing > 0 {
		return fmt.Errorf("%d file%s still fail%s, run 'mfront check' for details", failing, Plural(failing), verbS(failing))
	}
	return nil
}

func verbS(n int) string {
	if n == 1 {
		return "s"
	}
	return ""
}
