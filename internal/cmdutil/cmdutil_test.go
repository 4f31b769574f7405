package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/thelfer/tfel-sub013/internal/bricks"
	"github.com/thelfer/tfel-sub013/internal/build"
	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/config"
	"github.com/thelfer/tfel-sub013/internal/dsl"
	"github.com/thelfer/tfel-sub013/internal/ir"
)

// projectRoot returns the path to the project root.
func projectRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

const law = `@DSL MaterialLaw;
@Law YoungModulus;
@Author "J. Doe";
@Description{ Linear law. }
@Input T;
T.setGlossaryName("Temperature");
@Output E;
@Function{
  E = 2.e11 - 1.e8 * T;
}
`

const typo = `@DSL Implicit;
@Behaviour Broken;
@Brick StandardElastoViscoPlastcity;
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Root = root
	cfg.Jobs = 2
	cfg.OutputDir = filepath.Join(root, "out")
	return cfg
}

// ── Batch ──

func TestRunBatchReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.mfront", law)
	writeFile(t, dir, "bad.mfront", typo)

	var out, errOut bytes.Buffer
	report, err := RunBatch(context.Background(), testConfig(dir), nil, BatchOptions{}, &out, &errOut)
	if err == nil {
		t.Fatal("expected an error for the failing file")
	}
	if !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Errorf("unexpected error: %v", err)
	}
	if report == nil || report.Succeeded() != 1 {
		t.Fatalf("expected one success, got %+v", report)
	}
	if !strings.Contains(errOut.String(), "E303") {
		t.Errorf("expected unknown rule code in diagnostics:\n%s", errOut.String())
	}
	if !strings.Contains(errOut.String(), "suggestion: did you mean 'StandardElastoViscoPlasticity'?") {
		t.Errorf("expected suggestion in diagnostics:\n%s", errOut.String())
	}
	if !strings.Contains(out.String(), "is valid") {
		t.Errorf("expected valid summary for good.mfront:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Error("check must not export")
	}
}

func TestRunBatchExport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "laws/good.mfront", law)

	var out, errOut bytes.Buffer
	cfg := testConfig(dir)
	cfg.Format = "json"
	_, err := RunBatch(context.Background(), cfg, nil, BatchOptions{Export: true}, &out, &errOut)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, errOut.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "laws", "good.json")); err != nil {
		t.Errorf("expected exported document: %v", err)
	}
	if !strings.Contains(out.String(), "All files valid") {
		t.Errorf("expected summary line:\n%s", out.String())
	}
}

func TestRunBatchHints(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "k.mfront", `@DSL MaterialLaw;
@Law K;
@Output k;
@Function{ k = 1; }
`)
	cfg := testConfig(dir)

	var out, quiet bytes.Buffer
	if _, err := RunBatch(context.Background(), cfg, nil, BatchOptions{}, &out, &quiet); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(quiet.String(), "H102") {
		t.Error("hints must be hidden by default")
	}

	var verbose bytes.Buffer
	if _, err := RunBatch(context.Background(), cfg, nil, BatchOptions{Hints: true}, &out, &verbose); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(verbose.String(), "H102") {
		t.Errorf("expected missing author hint:\n%s", verbose.String())
	}
}

func TestRunBatchExplicitArgs(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.mfront", law)
	writeFile(t, dir, "bad.mfront", typo)

	var out, errOut bytes.Buffer
	report, err := RunBatch(context.Background(), testConfig(dir), []string{good}, BatchOptions{}, &out, &errOut)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 1 {
		t.Errorf("expected only the named file, got %d results", len(report.Results))
	}
}

func TestRunBatchCancelledBetweenFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mfront", "b.mfront", "c.mfront"} {
		writeFile(t, dir, name, law)
	}
	cfg := testConfig(dir)
	cfg.Jobs = 1

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts := BatchOptions{Progress: func(done, _ int, _ build.Result) {
		if done == 1 {
			cancel()
		}
	}}

	var out, errOut bytes.Buffer
	var batchErr error
	err := cli.RunCancellable(ctx, &errOut, func(ctx context.Context) error {
		_, batchErr = RunBatch(ctx, cfg, nil, opts, &out, &errOut)
		return batchErr
	})
	if err != nil {
		t.Fatalf("a cancelled batch is not an error, got %v", err)
	}

	var in *cli.Interrupted
	if !errors.As(batchErr, &in) {
		t.Fatalf("expected an interrupted batch, got %v", batchErr)
	}
	if len(in.Finished) != 1 || filepath.Base(in.Finished[0]) != "a.mfront" {
		t.Errorf("finished = %v, want a.mfront only", in.Finished)
	}
	if len(in.Skipped) != 2 || filepath.Base(in.Skipped[0]) != "b.mfront" || filepath.Base(in.Skipped[1]) != "c.mfront" {
		t.Errorf("skipped = %v, want b.mfront and c.mfront", in.Skipped)
	}

	if !strings.Contains(out.String(), "YoungModulus") {
		t.Errorf("expected the summary of the finished file:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "2 of 3 files not treated") {
		t.Errorf("expected the skipped count in the report:\n%s", out.String())
	}
	for _, want := range []string{"Cancelled: 1 of 3 files finished, 2 skipped", "skipped " + in.Skipped[0], "skipped " + in.Skipped[1]} {
		if !strings.Contains(errOut.String(), want) {
			t.Errorf("missing %q in\n%s", want, errOut.String())
		}
	}
	if strings.Contains(errOut.String(), "context canceled") {
		t.Errorf("skipped files must not be reported as failures:\n%s", errOut.String())
	}
}

func TestResolveFilesEmpty(t *testing.T) {
	if _, _, err := ResolveFiles(testConfig(t.TempDir()), nil); err == nil {
		t.Fatal("expected error when no source file exists")
	}
}

func TestRunBatchExamples(t *testing.T) {
	root := filepath.Join(projectRoot(), "examples")
	cfg, err := config.LoadFile(filepath.Join(root, config.FileName))
	if err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	if _, err := RunBatch(context.Background(), cfg, nil, BatchOptions{}, &out, &errOut); err != nil {
		t.Fatalf("examples should be valid: %v\n%s", err, errOut.String())
	}
}

// ── Display ──

func TestCheckSummary(t *testing.T) {
	d, err := dsl.ParseString("law.mfront", law, dsl.Options{})
	if err != nil {
		t.Fatal(err)
	}
	summary := CheckSummary(d, "law.mfront")
	for _, want := range []string{"law.mfront is valid", "material_property YoungModulus", "1 function"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary %q does not contain %q", summary, want)
		}
	}
}

func TestPrintDocument(t *testing.T) {
	src, err := os.ReadFile(filepath.Join(projectRoot(), "examples", "PlaneStrainSpecialization.mfront"))
	if err != nil {
		t.Fatal(err)
	}
	d, err := dsl.ParseString("PlaneStrainSpecialization.mfront", string(src), dsl.Options{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	PrintDocument(&buf, ir.Snapshot(d))
	got := buf.String()
	for _, want := range []string{"behaviour AxialStrainElasticity", "── default ──", "── PlaneStress ──", "etozz"} {
		if !strings.Contains(got, want) {
			t.Errorf("document output does not contain %q:\n%s", want, got)
		}
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "s"},
		{1, ""},
		{2, "s"},
		{100, "s"},
	}
	for _, tt := range tests {
		got := Plural(tt.n)
		if got != tt.want {
			t.Errorf("Plural(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

// ── Keywords & explain ──

func TestRunKeywords(t *testing.T) {
	tests := []struct {
		name    string
		opts    KeywordsOptions
		want    []string
		notWant []string
	}{
		{"raw", KeywordsOptions{DSL: "MaterialLaw", Raw: true}, []string{"@Law\n", "@Function\n"}, []string{"@Brick"}},
		{"full", KeywordsOptions{}, []string{"MFront Keyword Reference", "@Brick"}, nil},
		{"full for a DSL", KeywordsOptions{DSL: "MaterialLaw"}, []string{"(MaterialLaw)", "@Law"}, []string{"@Brick", "@Integrator"}},
		{"search", KeywordsOptions{Search: "bounds"}, []string{"@Bounds", "mfront explain bounds"}, nil},
		{"section", KeywordsOptions{Section: "numerical"}, []string{"@Theta"}, nil},
		{"topic section", KeywordsOptions{Section: "symmetry"}, []string{"@Symmetry"}, []string{"@ModellingHypotheses"}},
		{"complete", KeywordsOptions{Complete: "@Comp"}, []string{"@ComputeStress", "@ComputeFinalStress"}, nil},
		{"unknown section", KeywordsOptions{Section: "nope"}, []string{"Unknown section"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RunKeywords(&buf, tt.opts); err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output does not contain %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(buf.String(), w) {
					t.Errorf("output should not contain %q", w)
				}
			}
		})
	}
}

func TestRunKeywordsErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := RunKeywords(&buf, KeywordsOptions{DSL: "Implict"}); err == nil || !strings.Contains(err.Error(), "Implicit") {
		t.Errorf("expected unknown DSL error with suggestion, got %v", err)
	}
	if err := RunKeywords(&buf, KeywordsOptions{Raw: true}); err == nil {
		t.Error("expected error for --raw without DSL")
	}
}

func TestRunExplain(t *testing.T) {
	var buf bytes.Buffer
	RunExplain(&buf, "")
	if !strings.Contains(buf.String(), "Available Topics") {
		t.Errorf("expected topic list:\n%s", buf.String())
	}

	buf.Reset()
	RunExplain(&buf, "Bricks")
	if !strings.Contains(buf.String(), "@Brick") || !strings.Contains(buf.String(), "mfront explain implicit") {
		t.Errorf("expected brick section with related topics:\n%s", buf.String())
	}

	buf.Reset()
	RunExplain(&buf, "glossaryname")
	if !strings.Contains(buf.String(), "showing search results") {
		t.Errorf("expected search fallback:\n%s", buf.String())
	}

	buf.Reset()
	RunExplain(&buf, "qqqqqq")
	if !strings.Contains(buf.String(), "Unknown topic") {
		t.Errorf("expected unknown topic:\n%s", buf.String())
	}
}

func TestExplainTopicNamesSorted(t *testing.T) {
	names := ExplainTopicNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("topic names not sorted: %q > %q", names[i-1], names[i])
		}
	}
}

// ── Doctor & init ──

func TestRunDoctor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.mfront", law)

	var buf bytes.Buffer
	if fails := RunDoctor(&buf, testConfig(dir)); fails != 0 {
		t.Errorf("expected no failure, got %d:\n%s", fails, buf.String())
	}
	for _, want := range []string{"── Environment", "Bricks", "DSL Implicit", "1 file below"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("doctor output does not contain %q", want)
		}
	}
}

func TestRunDoctorInvalidSettings(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Format = "xml"
	cfg.IncludePaths = []string{filepath.Join(cfg.Root, "missing")}

	var buf bytes.Buffer
	if fails := RunDoctor(&buf, cfg); fails == 0 {
		t.Errorf("expected failures:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "is not a directory") {
		t.Errorf("expected include path warning:\n%s", buf.String())
	}
}

func TestInitProject(t *testing.T) {
	t.Setenv("MFRONT_CONFIG_DIR", t.TempDir())
	dir := filepath.Join(t.TempDir(), "UO2")
	cfg := config.Default()
	cfg.StrictMerge = true

	var out bytes.Buffer
	written, err := InitProject(dir, cfg, false, &out)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Fatalf("expected project file and starter law, got %v", written)
	}

	loaded, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.StrictMerge {
		t.Error("settings not written to the project file")
	}

	d, err := dsl.ParseFile(written[1], dsl.Options{})
	if err != nil {
		t.Fatalf("starter law should parse: %v", err)
	}
	if d.Material != "UO2" {
		t.Errorf("material = %q, want UO2", d.Material)
	}

	if _, err := InitProject(dir, cfg, false, &out); err == nil {
		t.Error("expected refusal to overwrite the project file")
	}
	written, err = InitProject(dir, cfg, true, &out)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 1 {
		t.Errorf("starter law must not be rewritten, got %v", written)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"UO2":       "UO2",
		"my-steel":  "mysteel",
		"316L":      "L",
		"---":       "Material",
		"Zircaloy4": "Zircaloy4",
	}
	for in, want := range tests {
		if got := sanitizeName(in); got != want {
			t.Errorf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

// ── Bricks ──

func TestRunBricks(t *testing.T) {
	var buf bytes.Buffer
	if err := RunBricks(&buf, bricks.Global(), ""); err != nil {
		t.Fatalf("RunBricks: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"── Bricks", "StandardElastoViscoPlasticity", "Norton", "Mises", "Voce", "Prager", "K, E"} {
		if !strings.Contains(out, want) {
			t.Errorf("bricks listing missing %q", want)
		}
	}
}

func TestRunBricksSingleRule(t *testing.T) {
	var buf bytes.Buffer
	if err := RunBricks(&buf, bricks.Global(), "Norton"); err != nil {
		t.Fatalf("RunBricks: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Inelastic flows: Norton") || !strings.Contains(out, "Norton exponent") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Mises") {
		t.Error("single rule listing should not show other rules")
	}

	err := RunBricks(&buf, bricks.Global(), "Nortn")
	if err == nil || !strings.Contains(err.Error(), "did you mean 'Norton'") {
		t.Errorf("expected suggestion, got %v", err)
	}
}

// ── Fix ──

func TestRunFix(t *testing.T) {
	dir := t.TempDir()
	misspelt := strings.Replace(law, "@Output E;", "@Outpt E;", 1)
	good := writeFile(t, dir, "good.mfront", law)
	bad := writeFile(t, dir, "bad.mfront", misspelt)

	var buf bytes.Buffer
	if err := RunFix(testConfig(dir), nil, true, &buf); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !strings.Contains(buf.String(), "@Outpt → @Output") {
		t.Errorf("expected the keyword fix in:\n%s", buf.String())
	}
	if data, _ := os.ReadFile(bad); string(data) != misspelt {
		t.Error("dry run must not write files")
	}

	buf.Reset()
	if err := RunFix(testConfig(dir), nil, false, &buf); err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !strings.Contains(buf.String(), "Fixed 1 file") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	if _, err := os.Stat(bad + ".bak"); err != nil {
		t.Errorf("backup missing: %v", err)
	}
	if _, err := os.Stat(good + ".bak"); !os.IsNotExist(err) {
		t.Error("valid file should be left alone")
	}
	if _, err := dsl.ParseFile(bad, dsl.Options{}); err != nil {
		t.Errorf("fixed file does not parse: %v", err)
	}
}

func TestRunFixUnfixable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.mfront", "@DSL MaterialLaw;\n@Law L;\n@Output E\n")

	var buf bytes.Buffer
	err := RunFix(testConfig(dir), nil, false, &buf)
	if err == nil || !strings.Contains(err.Error(), "1 file still fails") {
		t.Fatalf("expected remaining failure, got %v", err)
	}
	if !strings.Contains(buf.String(), "still failing") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
