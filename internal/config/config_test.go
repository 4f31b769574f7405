package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// isolate points the user configuration to an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MFRONT_CONFIG_DIR", dir)
	return dir
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("expected no error without files, got: %v", err)
	}
	if cfg.Jobs != runtime.NumCPU() {
		t.Errorf("jobs = %d, want %d", cfg.Jobs, runtime.NumCPU())
	}
	if cfg.Format != "yaml" {
		t.Errorf("format = %q, want yaml", cfg.Format)
	}
	if len(cfg.Patterns) != 1 || cfg.Patterns[0] != "**/*.mfront" {
		t.Errorf("patterns = %v", cfg.Patterns)
	}
	if cfg.StrictMerge {
		t.Error("strict_merge should default to false")
	}
	if cfg.Root != dir {
		t.Errorf("root = %q, want %q", cfg.Root, dir)
	}
	if len(cfg.Sources) != 0 {
		t.Errorf("expected no sources, got %v", cfg.Sources)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}
}

func TestLoadLayers(t *testing.T) {
	user := isolate(t)
	write(t, filepath.Join(user, "config.yaml"), `
jobs: 2
format: json
log_level: debug
theme: dark
`)
	project := t.TempDir()
	write(t, filepath.Join(project, FileName), `
jobs: 4
strict_merge: true
include_paths: [include, /opt/mfront/include]
output_dir: build/out
excludes: ["common/**"]
`)
	sub := filepath.Join(project, "laws", "fuel")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Jobs != 4 {
		t.Errorf("jobs = %d, want the project value 4", cfg.Jobs)
	}
	if cfg.Format != "json" || cfg.LogLevel != "debug" || cfg.Theme != "dark" {
		t.Errorf("user values lost: format=%q log_level=%q theme=%q", cfg.Format, cfg.LogLevel, cfg.Theme)
	}
	if !cfg.StrictMerge {
		t.Error("expected strict_merge from the project file")
	}
	wantIncludes := []string{filepath.Join(project, "include"), "/opt/mfront/include"}
	if strings.Join(cfg.IncludePaths, ",") != strings.Join(wantIncludes, ",") {
		t.Errorf("include_paths = %v, want %v", cfg.IncludePaths, wantIncludes)
	}
	if cfg.OutputDir != filepath.Join(project, "build", "out") {
		t.Errorf("output_dir = %q", cfg.OutputDir)
	}
	if cfg.Root != project {
		t.Errorf("root = %q, want %q", cfg.Root, project)
	}
	if len(cfg.Sources) != 2 {
		t.Errorf("expected 2 sources, got %v", cfg.Sources)
	}
	if len(cfg.Excludes) != 1 || cfg.Excludes[0] != "common/**" {
		t.Errorf("excludes = %v", cfg.Excludes)
	}
}

func TestLoadExplicitFalseOverrides(t *testing.T) {
	user := isolate(t)
	write(t, filepath.Join(user, "config.yaml"), "strict_merge: true\n")
	project := t.TempDir()
	write(t, filepath.Join(project, FileName), "strict_merge: false\n")

	cfg, err := Load(project)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StrictMerge {
		t.Error("project file should turn strict_merge off")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	write(t, filepath.Join(project, FileName), "jobs: [oops\n")

	_, err := Load(project)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), FileName) {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ci.yaml")
	write(t, path, "jobs: 1\npatterns: [\"*.mfront\"]\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jobs != 1 || cfg.Patterns[0] != "*.mfront" || cfg.Root != dir {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit file")
	}
}

func TestFindProjectFile(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, FileName), "jobs: 1\n")
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatal(err)
	}
	if got := FindProjectFile(deep); got != filepath.Join(root, FileName) {
		t.Errorf("FindProjectFile = %q", got)
	}
}

func TestUserConfigDir(t *testing.T) {
	t.Setenv("MFRONT_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	dir, err := UserConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/xdg", "mfront") {
		t.Errorf("UserConfigDir = %q", dir)
	}

	t.Setenv("MFRONT_CONFIG_DIR", "/custom")
	if dir, _ := UserConfigDir(); dir != "/custom" {
		t.Errorf("UserConfigDir = %q, want /custom", dir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"jobs", func(c *Config) { c.Jobs = 0 }, "jobs must be at least 1"},
		{"format", func(c *Config) { c.Format = "xml" }, `unknown format "xml"`},
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, `unknown log level "verbose"`},
		{"empty pattern", func(c *Config) { c.Patterns = []string{" "} }, "empty input pattern"},
		{"no pattern", func(c *Config) { c.Patterns = nil }, "at least one input pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Jobs = -1
	cfg.Format = "toml"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	if !strings.Contains(err.Error(), "jobs") || !strings.Contains(err.Error(), "toml") {
		t.Errorf("expected both problems in %q", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Default()
	cfg.StrictMerge = true
	cfg.Jobs = 3
	data, err := cfg.YAML()
	if err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	write(t, filepath.Join(project, FileName), string(data))
	loaded, err := Load(project)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.StrictMerge || loaded.Jobs != 3 {
		t.Errorf("settings lost in %s", data)
	}
	if strings.Contains(string(data), "root") {
		t.Errorf("root must not be serialized:\n%s", data)
	}
}
