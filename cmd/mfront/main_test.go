package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thelfer/tfel-sub013/internal/cmdutil"
	"github.com/thelfer/tfel-sub013/internal/version"
)

// run executes the command line with fresh global flags and returns the
// combined output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("MFRONT_CONFIG_DIR", t.TempDir())
	flagConfig, flagLogLevel, flagTheme = "", "", ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// project creates a directory with a project file and a starter law.
func project(t *testing.T) (dir, cfgFile string) {
	t.Helper()
	dir = t.TempDir()
	cfgFile = filepath.Join(dir, ".mfront.yaml")
	if err := os.WriteFile(cfgFile, []byte("jobs: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "YoungModulus.mfront"), []byte(cmdutil.StarterLaw("Steel")), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, cfgFile
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "mfront "+version.Info()) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestKeywordsCommand(t *testing.T) {
	out, err := run(t, "keywords", "--dsl", "MaterialLaw", "--raw")
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	for _, k := range []string{"@Law", "@Output", "@Function"} {
		if !strings.Contains(out, k+"\n") {
			t.Errorf("missing %s in\n%s", k, out)
		}
	}
}

func TestBricksCommand(t *testing.T) {
	out, err := run(t, "bricks", "Voce")
	if err != nil {
		t.Fatalf("bricks: %v", err)
	}
	if !strings.Contains(out, "Rinf") {
		t.Errorf("expected Voce options, got\n%s", out)
	}
}

func TestCheckAndInspect(t *testing.T) {
	dir, cfgFile := project(t)

	out, err := run(t, "--config", cfgFile, "check", dir)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "All files valid") {
		t.Errorf("unexpected check output:\n%s", out)
	}

	outDir := filepath.Join(dir, "out")
	out, err = run(t, "--config", cfgFile, "export", "--format", "json", "--output", outDir, dir)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	doc := filepath.Join(outDir, "YoungModulus.json")
	if _, err := os.Stat(doc); err != nil {
		t.Fatalf("document not written: %v", err)
	}

	out, err = run(t, "inspect", doc)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"material_property YoungModulus", "Steel", version.Generator()} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectNewerDocument(t *testing.T) {
	dir, cfgFile := project(t)
	outDir := filepath.Join(dir, "out")
	if out, err := run(t, "--config", cfgFile, "export", "--format", "json", "--output", outDir, dir); err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	doc := filepath.Join(outDir, "YoungModulus.json")
	data, err := os.ReadFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	data = bytes.Replace(data, []byte(version.Generator()), []byte("mfront 99.0.0"), 1)
	if err := os.WriteFile(doc, data, 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "inspect", doc)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(out, "written by mfront 99.0.0, newer than this mfront ("+version.Info()+")") {
		t.Errorf("expected a newer generator warning:\n%s", out)
	}
}

func TestCheckFailure(t *testing.T) {
	dir, cfgFile := project(t)
	bad := "@DSL Implicit;\n@Behaviour Broken;\n@Brick StandardElastoViscoPlastcity;\n"
	if err := os.WriteFile(filepath.Join(dir, "Bad.mfront"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", cfgFile, "check", dir)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Fatalf("expected one failure, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "StandardElastoViscoPlasticity") {
		t.Errorf("expected a suggestion for the misspelt brick:\n%s", out)
	}
}

func TestUnknownTheme(t *testing.T) {
	if _, err := run(t, "--theme", "neon", "version"); err == nil {
		t.Error("expected error for unknown theme")
	}
}

func TestInvalidJobs(t *testing.T) {
	dir, cfgFile := project(t)
	if _, err := run(t, "--config", cfgFile, "check", "--jobs=-1", dir); err == nil {
		t.Error("expected error for negative jobs")
	}
}

func TestFixCommand(t *testing.T) {
	dir, cfgFile := project(t)
	file := filepath.Join(dir, "YoungModulus.mfront")
	src, _ := os.ReadFile(file)
	misspelt := strings.Replace(string(src), "@Function", "@Functon", 1)
	if err := os.WriteFile(file, []byte(misspelt), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", cfgFile, "fix", dir)
	if err != nil {
		t.Fatalf("fix: %v\n%s", err, out)
	}
	got, _ := os.ReadFile(file)
	if string(got) != string(src) {
		t.Errorf("file not fixed:\n%s", got)
	}
}

func TestStrictFlagUsage(t *testing.T) {
	for _, c := range []string{"check", "export"} {
		cmd, _, err := rootCmd.Find([]string{c})
		if err != nil {
			t.Fatal(err)
		}
		f := cmd.Flags().Lookup("strict")
		if f == nil {
			t.Fatalf("%s has no --strict flag", c)
		}
		if !strings.Contains(f.Usage, "described differently in two modelling hypotheses") {
			t.Errorf("%s --strict usage does not describe the merge policy: %q", c, f.Usage)
		}
	}
}
