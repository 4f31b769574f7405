package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// appName is the single source of truth for the configuration paths.
const appName = "mfront"

// FileName is the project configuration file, looked up from the working
// directory towards the file system root.
const FileName = ".mfront.yaml"

// envConfigDir overrides the user configuration directory.
var envConfigDir = strings.ToUpper(appName) + "_CONFIG_DIR"

// Config holds the settings of a batch run. Fields left out of a file keep
// the value of the previous layer.
type Config struct {
	IncludePaths []string `yaml:"include_paths,omitempty"`
	Jobs         int      `yaml:"jobs,omitempty"`
	OutputDir    string   `yaml:"output_dir,omitempty"`
	Format       string   `yaml:"format,omitempty"` // "yaml" or "json"
	StrictMerge  bool     `yaml:"strict_merge,omitempty"`
	LogLevel     string   `yaml:"log_level,omitempty"`
	Patterns     []string `yaml:"patterns,omitempty"`
	Excludes     []string `yaml:"excludes,omitempty"`
	Theme        string   `yaml:"theme,omitempty"`

	// Root is the directory of the project file, or the working directory
	// when there is none. Relative paths of the project file are resolved
	// against it.
	Root string `yaml:"-"`
	// Sources lists the files that were applied, in order.
	Sources []string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Jobs:      runtime.NumCPU(),
		OutputDir: filepath.Join(".mfront", "out"),
		Format:    "yaml",
		LogLevel:  "info",
		Patterns:  []string{"**/*.mfront"},
		Theme:     "default",
		Root:      ".",
	}
}

// fileConfig is the on-disk form: pointers tell "absent" from "false".
type fileConfig struct {
	IncludePaths []string `yaml:"include_paths"`
	Jobs         *int     `yaml:"jobs"`
	OutputDir    *string  `yaml:"output_dir"`
	Format       *string  `yaml:"format"`
	StrictMerge  *bool    `yaml:"strict_merge"`
	LogLevel     *string  `yaml:"log_level"`
	Patterns     []string `yaml:"patterns"`
	Excludes     []string `yaml:"excludes"`
	Theme        *string  `yaml:"theme"`
}

// Load applies, in order, the defaults, the user file and the project file
// found from dir upwards. Missing files are skipped. Flags are applied by
// the caller on the returned Config, followed by Validate.
func Load(dir string) (*Config, error) {
	cfg := Default()

	userDir, err := UserConfigDir()
	if err == nil {
		if err := cfg.applyFile(filepath.Join(userDir, "config.yaml"), false); err != nil {
			return nil, err
		}
	}

	if project := FindProjectFile(dir); project != "" {
		if err := cfg.applyFile(project, true); err != nil {
			return nil, err
		}
		cfg.Root = filepath.Dir(project)
	} else {
		cfg.Root = dir
	}
	return cfg, nil
}

// LoadFile applies a single explicit file on top of the defaults, as given
// with --config.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.applyFile(path, true); err != nil {
		return nil, err
	}
	cfg.Root = filepath.Dir(path)
	return cfg, nil
}

// UserConfigDir returns the user configuration directory.
// Priority: $MFRONT_CONFIG_DIR > $XDG_CONFIG_HOME/mfront > ~/.config/mfront
func UserConfigDir() (string, error) {
	if v := os.Getenv(envConfigDir); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// FindProjectFile walks from dir towards the root and returns the first
// project file found, or "".
func FindProjectFile(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return ""
		}
		abs = parent
	}
}

// applyFile overlays the settings of path. With relative set, include
// paths and the output directory are resolved against the file's
// directory.
func (c *Config) applyFile(path string, relative bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	base := filepath.Dir(path)
	resolve := func(p string) string {
		if relative && !filepath.IsAbs(p) {
			return filepath.Join(base, p)
		}
		return p
	}

	if f.IncludePaths != nil {
		c.IncludePaths = nil
		for _, p := range f.IncludePaths {
			c.IncludePaths = append(c.IncludePaths, resolve(p))
		}
	}
	if f.Jobs != nil {
		c.Jobs = *f.Jobs
	}
	if f.OutputDir != nil {
		c.OutputDir = resolve(*f.OutputDir)
	}
	if f.Format != nil {
		c.Format = *f.Format
	}
	if f.StrictMerge != nil {
		c.StrictMerge = *f.StrictMerge
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.Patterns != nil {
		c.Patterns = f.Patterns
	}
	if f.Excludes != nil {
		c.Excludes = f.Excludes
	}
	if f.Theme != nil {
		c.Theme = *f.Theme
	}
	c.Sources = append(c.Sources, path)
	return nil
}

// Validate checks the merged settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Jobs < 1 {
		errs = append(errs, fmt.Errorf("jobs must be at least 1, got %d", c.Jobs))
	}
	switch c.Format {
	case "yaml", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q, expected yaml or json", c.Format))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	for _, p := range c.Patterns {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Errorf("empty input pattern"))
			break
		}
	}
	if len(c.Patterns) == 0 {
		errs = append(errs, fmt.Errorf("at least one input pattern is required"))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q, expected debug, info, warn or error", name)
}

// YAML returns the effective settings as a project file would hold them.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
