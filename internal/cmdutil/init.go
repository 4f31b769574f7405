package cmdutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/thelfer/tfel-sub013/internal/config"
)

// InitProject writes a project file with the current settings into dir and,
// when dir holds no source file yet, a starter material law. It refuses to
// overwrite an existing project file unless force is set. Returns the
// written paths.
func InitProject(dir string, cfg *config.Config, force bool, out io.Writer) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create directory %s: %w", dir, err)
	}

	projectFile := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(projectFile); err == nil && !force {
		return nil, fmt.Errorf("%s already exists, use --force to overwrite it", projectFile)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// paths resolved by Load are written back relative to dir
	local := *cfg
	local.IncludePaths = nil
	for _, p := range cfg.IncludePaths {
		local.IncludePaths = append(local.IncludePaths, relativeTo(dir, p))
	}
	local.OutputDir = relativeTo(dir, cfg.OutputDir)

	data, err := local.YAML()
	if err != nil {
		return nil, err
	}
	header := "# mfront project settings, see 'mfront config' for the effective values.\n"
	if err := os.WriteFile(projectFile, append([]byte(header), data...), 0644); err != nil {
		return nil, fmt.Errorf("could not write %s: %w", projectFile, err)
	}
	written := []string{projectFile}
	fmt.Fprintf(out, "Created %s\n", displayPath(projectFile))

	existing, _ := filepath.Glob(filepath.Join(dir, "*.mfront"))
	if len(existing) == 0 {
		starter := filepath.Join(dir, "YoungModulus.mfront")
		if err := os.WriteFile(starter, []byte(StarterLaw(filepath.Base(absOr(dir)))), 0644); err != nil {
			return written, fmt.Errorf("could not write %s: %w", starter, err)
		}
		written = append(written, starter)
		fmt.Fprintf(out, "Created %s\n", displayPath(starter))
	}
	return written, nil
}

// StarterLaw produces a small material law for the given material.
func StarterLaw(material string) string {
	var b strings.Builder
	b.WriteString("@DSL MaterialLaw;\n")
	b.WriteString("@Law YoungModulus;\n")
	fmt.Fprintf(&b, "@Material %s;\n", sanitizeName(material))
	b.WriteString("@Description{\n  Young modulus as a linear function of the temperature.\n}\n\n")
	b.WriteString("@Output E;\n")
	b.WriteString("E.setGlossaryName(\"YoungModulus\");\n\n")
	b.WriteString("@Input T;\n")
	b.WriteString("T.setGlossaryName(\"Temperature\");\n")
	b.WriteString("@PhysicalBounds T in [0:*[;\n\n")
	b.WriteString("@Function{\n  E = 2.e11 - 1.e8 * T;\n}\n")
	return b.String()
}

// sanitizeName keeps the characters allowed in an identifier.
func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && b.Len() > 0:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Material"
	}
	return b.String()
}

func relativeTo(dir, p string) string {
	if !filepath.IsAbs(p) {
		return p
	}
	base, err := filepath.Abs(dir)
	if err != nil {
		return p
	}
	if rel, err := filepath.Rel(base, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}

func absOr(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
