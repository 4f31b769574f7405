package fixer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/dsl"
)

// AnalyzeFile reads path and runs Analyze on its content.
func AnalyzeFile(path string, opts dsl.Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Analyze(path, string(data), opts)
}

// Apply writes the fixed source over the file, creating a .bak backup
// first. Nothing is written when there is no fix.
func Apply(res *Result) error {
	if !res.Changed() {
		return nil
	}
	data, err := os.ReadFile(res.File)
	if err != nil {
		return fmt.Errorf("reading %s: %w", res.File, err)
	}

	backupPath := res.File + ".bak"
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return fmt.Errorf("creating backup %s: %w", backupPath, err)
	}

	if err := os.WriteFile(res.File, []byte(res.Source), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", res.File, err)
	}
	return nil
}

// PrintResult displays the fixes of one file. name is the path shown to
// the user.
func PrintResult(out io.Writer, res *Result, name string) {
	header := fmt.Sprintf("── %s: %d fix%s ", name, len(res.Fixes), plural(len(res.Fixes), "es"))
	pad := 50 - len([]rune(header))
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(out, "%s%s\n", cli.Heading(header), strings.Repeat("─", pad))

	for i, fix := range res.Fixes {
		fmt.Fprintf(out, "  %d. [%s] %d:%d  %s → %s\n", i+1, fix.Code, fix.Line, fix.Column,
			cli.Colorize(cli.RoleError, fix.Old), cli.Colorize(cli.RoleSuccess, fix.New))
	}
	if res.Remaining != nil {
		fmt.Fprintf(out, "  %s\n", cli.Warn("still failing: "+res.Remaining.Message))
	}
	fmt.Fprintln(out)
}

func plural(n int, suffix string) string {
	if n == 1 {
		return ""
	}
	return suffix
}
