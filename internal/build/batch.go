package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thelfer/tfel-sub013/internal/analyzer"
	"github.com/thelfer/tfel-sub013/internal/bricks"
	"github.com/thelfer/tfel-sub013/internal/dsl"
	cerr "github.com/thelfer/tfel-sub013/internal/errors"
	"github.com/thelfer/tfel-sub013/internal/ir"
	"github.com/thelfer/tfel-sub013/internal/version"
)

// Options configures a batch run.
type Options struct {
	Jobs         int      // parallel files, runtime.NumCPU() when < 1
	Root         string   // base of the exported tree, "." when empty
	IncludePaths []string // searched by @Import
	StrictMerge  bool
	OutputDir    string // no export when empty
	Format       string // "yaml" or "json"
	Logger       *slog.Logger
	Registries   *bricks.Registries

	// Progress, when set, is called after each file from the worker that
	// treated it. It must be safe for concurrent use.
	Progress func(done, total int, res Result)
}

// Result tracks the outcome of a single file.
type Result struct {
	File        string
	Description *ir.Description // nil when the file failed
	Diagnostics *cerr.CompilerErrors
	Output      string // exported document, empty if none
	Err         error
	Duration    time.Duration
	Skipped     bool // not started before the run was cancelled
}

// OK reports whether the file was treated without error.
func (r Result) OK() bool { return r.Err == nil }

// Report is the outcome of a batch run. Results follow the order of the
// input files.
type Report struct {
	RunID    string
	Results  []Result
	Duration time.Duration
}

// Failed returns the number of files treated with an error.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() && !res.Skipped {
			n++
		}
	}
	return n
}

// Succeeded returns the number of files treated without error.
func (r *Report) Succeeded() int {
	return len(r.Results) - r.Failed() - len(r.SkippedFiles())
}

// FinishedFiles returns the files treated before the run ended, in input
// order, whatever their outcome.
func (r *Report) FinishedFiles() []string {
	var files []string
	for _, res := range r.Results {
		if !res.Skipped {
			files = append(files, res.File)
		}
	}
	return files
}

// SkippedFiles returns the files a cancellation kept from being treated.
func (r *Report) SkippedFiles() []string {
	var files []string
	for _, res := range r.Results {
		if res.Skipped {
			files = append(files, res.File)
		}
	}
	return files
}

// Warnings returns the number of warnings over every file.
func (r *Report) Warnings() int {
	n := 0
	for _, res := range r.Results {
		if res.Diagnostics != nil {
			n += len(res.Diagnostics.Warnings())
		}
	}
	return n
}

// Run treats every file independently: a failure is recorded in the
// file's Result and never affects the other files. Cancelling ctx stops
// the run between files; files not started get ctx.Err() as their error
// and Run returns it too.
func Run(ctx context.Context, files []string, opts Options) (*Report, error) {
	if opts.Jobs < 1 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registries == nil {
		opts.Registries = bricks.Global()
	}
	if opts.OutputDir != "" {
		if opts.Format == "" {
			opts.Format = "yaml"
		}
		if err := checkOutputs(files, opts); err != nil {
			return nil, err
		}
	}
	// keyword tables must be built before the workers share them
	dsl.Init()

	report := &Report{
		RunID:   uuid.New().String(),
		Results: make([]Result, len(files)),
	}
	logger := opts.Logger.With("run", report.RunID)
	logger.Info("batch started", "files", len(files), "jobs", opts.Jobs)
	start := time.Now()

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i, file := range files {
		i, file := i, file
		if gctx.Err() != nil {
			report.Results[i] = skipped(file, gctx.Err())
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				report.Results[i] = skipped(file, err)
				return nil
			}
			report.Results[i] = runFile(file, report.RunID, opts, logger)
			n := done.Add(1)
			if opts.Progress != nil {
				opts.Progress(int(n), len(files), report.Results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	logger.Info("batch finished",
		"succeeded", report.Succeeded(), "failed", report.Failed(),
		"skipped", len(report.SkippedFiles()),
		"duration", report.Duration)
	return report, ctx.Err()
}

func skipped(file string, err error) Result {
	errs := cerr.New(file)
	errs.AddFailure(err)
	return Result{File: file, Diagnostics: errs, Err: err, Skipped: true}
}

// runFile parses, analyses and exports one file. A panic in a handler is
// turned into the file's error.
func runFile(file, runID string, opts Options, logger *slog.Logger) (res Result) {
	start := time.Now()
	res = Result{File: file, Diagnostics: cerr.New(file)}
	defer func() {
		if r := recover(); r != nil {
			res.Description = nil
			res.Err = fmt.Errorf("internal error while treating %s: %v", file, r)
			res.Diagnostics.AddFailure(res.Err)
		}
		res.Duration = time.Since(start)
	}()

	flog := logger.With("file", file)
	d, err := dsl.ParseFile(file, dsl.Options{
		IncludePaths: opts.IncludePaths,
		Logger:       flog,
		Registries:   opts.Registries,
	})
	if err != nil {
		flog.Debug("file failed", "error", err)
		res.Diagnostics.AddFailure(err)
		res.Err = err
		return res
	}

	res.Diagnostics.Merge(analyzer.Analyze(d, analyzer.Options{StrictMerge: opts.StrictMerge}))
	if res.Diagnostics.HasErrors() {
		res.Err = fmt.Errorf("%d error(s) found in %s", len(res.Diagnostics.Errors()), file)
		return res
	}
	res.Description = d

	if opts.OutputDir != "" {
		out, err := export(d, file, runID, opts)
		if err != nil {
			res.Diagnostics.AddFailure(err)
			res.Err = err
			res.Description = nil
			return res
		}
		res.Output = out
	}
	flog.Debug("file treated", "dsl", d.DSL, "output", res.Output)
	return res
}

// export writes the document of d below the output directory, mirroring
// the location of file relative to the root.
func export(d *ir.Description, file, runID string, opts Options) (string, error) {
	format := opts.Format
	if format == "" {
		format = "yaml"
	}
	doc := ir.Snapshot(d)
	doc.RunID = runID
	doc.Generator = version.Generator()
	data, err := ir.Encode(doc, format)
	if err != nil {
		return "", err
	}

	out := filepath.Join(opts.OutputDir, OutputName(opts.Root, file, format))
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, nil
}

// OutputName returns the path of the exported document of file, relative
// to the output directory. Files below root keep their relative path. A
// file outside root is named after its base name and the first 8 hex
// digits of the SHA-256 of its directory, so that /a/Law.mfront and
// /b/Law.mfront give Law-<h1>.json and Law-<h2>.json.
func OutputName(root, file, format string) string {
	if root == "" {
		root = "."
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		dir := filepath.Dir(file)
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		sum := sha256.Sum256([]byte(filepath.ToSlash(dir)))
		base := filepath.Base(file)
		rel = strings.TrimSuffix(base, filepath.Ext(base)) + "-" + hex.EncodeToString(sum[:4]) + filepath.Ext(base)
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + "." + format
}

// checkOutputs fails when two files would be exported to the same
// document, as Law.mfront and Law.mfr in one directory would.
func checkOutputs(files []string, opts Options) error {
	owner := make(map[string]string, len(files))
	for _, f := range files {
		name := OutputName(opts.Root, f, opts.Format)
		if prev, ok := owner[name]; ok {
			return &cerr.ConfigurationError{
				Message: fmt.Sprintf("%s and %s would both be exported to %s", prev, f, filepath.Join(opts.OutputDir, name)),
			}
		}
		owner[name] = f
	}
	return nil
}
