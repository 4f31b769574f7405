package build

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern selects every source file below the root.
const DefaultPattern = "**/*.mfront"

// ResolveInputs expands the given arguments into a sorted list of source
// files. An argument is a file, a directory (searched with patterns) or a
// glob relative to root; "**" matches across directories. Files matching
// one of the exclude globs are dropped.
//
// Examples:
//   - "examples/UO2.mfront" → ["examples/UO2.mfront"]
//   - "examples" → every file below examples matching patterns
//   - "examples/**/*.mfront" → the same, explicitly
func ResolveInputs(root string, args, patterns, excludes []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, arg := range args {
		full := arg
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, arg)
		}

		if containsGlob(arg) {
			matches, err := doublestar.FilepathGlob(full, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("resolve pattern %q: %w", arg, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no file matches pattern: %s", arg)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		info, err := os.Stat(full)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(full)
			continue
		}
		for _, pattern := range patterns {
			matches, err := doublestar.Glob(os.DirFS(full), filepath.ToSlash(pattern), doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				add(filepath.Join(full, filepath.FromSlash(m)))
			}
		}
	}

	var kept []string
	for _, f := range files {
		excluded, err := matchesAny(root, f, excludes)
		if err != nil {
			return nil, err
		}
		if !excluded {
			kept = append(kept, f)
		}
	}
	sort.Strings(kept)
	return kept, nil
}

// matchesAny reports whether file, taken relative to root, matches one of
// the exclude globs.
func matchesAny(root, file string, excludes []string) (bool, error) {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)
	for _, ex := range excludes {
		ok, err := doublestar.Match(filepath.ToSlash(ex), rel)
		if err != nil {
			return false, fmt.Errorf("invalid exclude pattern %q: %w", ex, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
