package cmdutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/thelfer/tfel-sub013/internal/bricks"
	"github.com/thelfer/tfel-sub013/internal/cli"
	"github.com/thelfer/tfel-sub013/internal/config"
	"github.com/thelfer/tfel-sub013/internal/dsl"
	"github.com/thelfer/tfel-sub013/internal/syntax"
	"github.com/thelfer/tfel-sub013/internal/version"
)

// DoctorCheck is a single health check with its result.
type DoctorCheck struct {
	Name   string
	Status string // "ok", "warn", "fail"
	Detail string
	Fix    string // suggested fix (empty if ok)
}

// RunDoctor performs environment, configuration, and project health checks
// and returns the number of failed checks.
func RunDoctor(out io.Writer, cfg *config.Config) int {
	fmt.Fprintln(out)

	sections := []struct {
		title  string
		checks []DoctorCheck
	}{
		{"Environment", checkEnvironment()},
		{"Configuration", checkConfiguration(cfg)},
		{"Rules & keywords", checkRegistries()},
		{"Project", checkProject(cfg)},
	}

	fails, warns := 0, 0
	for _, s := range sections {
		printSection(out, s.title, s.checks)
		for _, c := range s.checks {
			switch c.Status {
			case "fail":
				fails++
			case "warn":
				warns++
			}
		}
	}

	if fails > 0 {
		fmt.Fprintln(out, cli.Error(fmt.Sprintf("Found %d issue(s) that need fixing.", fails)))
	} else if warns > 0 {
		fmt.Fprintln(out, cli.Warn(fmt.Sprintf("Ready with %d warning(s).", warns)))
	} else {
		fmt.Fprintln(out, cli.Success("All checks passed."))
	}
	fmt.Fprintln(out)
	return fails
}

func checkEnvironment() []DoctorCheck {
	colors := "disabled"
	if cli.ColorEnabled {
		colors = "enabled (theme " + cli.CurrentThemeName() + ")"
	}
	return []DoctorCheck{
		{Name: "mfront", Status: "ok", Detail: version.Info()},
		{Name: "Go runtime", Status: "ok", Detail: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)},
		{Name: "Colors", Status: "ok", Detail: colors},
	}
}

func checkConfiguration(cfg *config.Config) []DoctorCheck {
	var checks []DoctorCheck

	if len(cfg.Sources) == 0 {
		checks = append(checks, DoctorCheck{
			Name:   "Config files",
			Status: "warn",
			Detail: "none found (using defaults)",
			Fix:    "Run 'mfront init' to create " + config.FileName,
		})
	}
	for _, src := range cfg.Sources {
		checks = append(checks, DoctorCheck{Name: "Config file", Status: "ok", Detail: displayPath(src)})
	}

	if err := cfg.Validate(); err != nil {
		checks = append(checks, DoctorCheck{Name: "Settings", Status: "fail", Detail: err.Error()})
	} else {
		checks = append(checks, DoctorCheck{
			Name:   "Settings",
			Status: "ok",
			Detail: fmt.Sprintf("%d job(s), %s export, strict merge %t", cfg.Jobs, cfg.Format, cfg.StrictMerge),
		})
	}

	for _, p := range cfg.IncludePaths {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			checks = append(checks, DoctorCheck{
				Name:   "Include path",
				Status: "warn",
				Detail: p + " is not a directory",
				Fix:    "Remove it from include_paths or create it",
			})
		} else {
			checks = append(checks, DoctorCheck{Name: "Include path", Status: "ok", Detail: displayPath(p)})
		}
	}

	checks = append(checks, checkOutputDir(cfg.OutputDir))
	return checks
}

// checkOutputDir verifies the first existing ancestor of dir is writable.
func checkOutputDir(dir string) DoctorCheck {
	c := DoctorCheck{Name: "Output directory", Detail: displayPath(dir)}
	probe := dir
	for {
		if info, err := os.Stat(probe); err == nil {
			if !info.IsDir() {
				c.Status = "fail"
				c.Detail = displayPath(probe) + " is not a directory"
				return c
			}
			break
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			break
		}
		probe = parent
	}
	f, err := os.CreateTemp(probe, ".mfront-doctor-*")
	if err != nil {
		c.Status = "fail"
		c.Detail = fmt.Sprintf("%s is not writable", displayPath(probe))
		c.Fix = "Set output_dir to a writable directory"
		return c
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	c.Status = "ok"
	return c
}

func checkRegistries() []DoctorCheck {
	r := bricks.Global()
	counts := []struct {
		family string
		names  []string
	}{
		{"Stress criteria", r.StressCriteria.Names()},
		{"Isotropic hardening rules", r.IsotropicHardeningRules.Names()},
		{"Kinematic hardening rules", r.KinematicHardeningRules.Names()},
		{"Inelastic flows", r.InelasticFlows.Names()},
		{"Bricks", r.Bricks.Names()},
	}

	var checks []DoctorCheck
	for _, c := range counts {
		status := "ok"
		if len(c.names) == 0 {
			status = "fail"
		}
		checks = append(checks, DoctorCheck{Name: c.family, Status: status, Detail: fmt.Sprintf("%d registered", len(c.names))})
	}

	for _, name := range dsl.Names() {
		checks = append(checks, checkKeywordDocs(name))
	}
	return checks
}

// checkKeywordDocs reports keywords of a DSL missing from the reference.
func checkKeywordDocs(name string) DoctorCheck {
	c := DoctorCheck{Name: "DSL " + name}
	keywords, err := dsl.Keywords(name)
	if err != nil {
		c.Status = "fail"
		c.Detail = err.Error()
		return c
	}
	documented := make(map[string]bool)
	for _, p := range syntax.ForDSL(syntax.AllPatterns(), name) {
		for _, k := range p.Keywords {
			documented[k] = true
		}
	}
	var missing []string
	for _, k := range keywords {
		if !documented[k] {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		c.Status = "warn"
		c.Detail = fmt.Sprintf("%d keyword(s) undocumented: %v", len(missing), missing)
		return c
	}
	c.Status = "ok"
	c.Detail = fmt.Sprintf("%d keywords", len(keywords))
	return c
}

func checkProject(cfg *config.Config) []DoctorCheck {
	root, files, err := ResolveFiles(cfg, nil)
	if err != nil {
		return []DoctorCheck{{
			Name:   "Source files",
			Status: "warn",
			Detail: err.Error(),
			Fix:    "cd to your project directory or adjust patterns",
		}}
	}
	return []DoctorCheck{{
		Name:   "Source files",
		Status: "ok",
		Detail: fmt.Sprintf("%d file%s below %s", len(files), Plural(len(files)), displayPath(root)),
	}}
}

func printSection(out io.Writer, title string, checks []DoctorCheck) {
	fmt.Fprintln(out, sectionHeader(title))

	for _, c := range checks {
		var marker string
		switch c.Status {
		case "ok":
			marker = cli.Colorize(cli.RoleSuccess, "✓")
		case "warn":
			marker = cli.Colorize(cli.RoleWarn, "⚠")
		case "fail":
			marker = cli.Colorize(cli.RoleError, "✗")
		}

		fmt.Fprintf(out, "%s %s %s\n", marker, c.Name, cli.Muted(c.Detail))
		if c.Fix != "" {
			fmt.Fprintf(out, "  %s\n", cli.Muted("Fix: "+c.Fix))
		}
	}
	fmt.Fprintln(out)
}
