package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Root     string
	Patterns []string // source globs relative to Root, DefaultPattern when empty
	Excludes []string
	Debounce time.Duration // 200ms when zero
	Logger   *slog.Logger
}

// Watcher reports changed source files below a root. Changes are
// collected for the debounce delay and reported together; a write that
// leaves the content unchanged is not reported.
type Watcher struct {
	opts    WatchOptions
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	mu      sync.Mutex
	pending map[string]bool
	hashes  map[string]string
}

// NewWatcher watches every directory below opts.Root, hidden ones aside.
func NewWatcher(opts WatchOptions) (*Watcher, error) {
	if len(opts.Patterns) == 0 {
		opts.Patterns = []string{DefaultPattern}
	}
	if opts.Debounce == 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		opts:    opts,
		fsw:     fsw,
		logger:  opts.Logger,
		pending: make(map[string]bool),
		hashes:  make(map[string]string),
	}
	if err := w.addRecursive(opts.Root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run calls onChange with the sorted list of changed files after each
// quiet period, until ctx is done. Removed files are reported too, so that
// the caller can drop their results.
func (w *Watcher) Run(ctx context.Context, onChange func(files []string)) error {
	defer w.fsw.Close()
	ticker := time.NewTicker(w.opts.Debounce)
	defer ticker.Stop()

	w.logger.Info("watching for changes", "root", w.opts.Root)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		case <-ticker.C:
			if files := w.flush(); len(files) > 0 {
				onChange(files)
			}
		}
	}
}

// Seed records the content of files so that a later write of the same
// content is not reported.
func (w *Watcher) Seed(files []string) {
	for _, f := range files {
		if h, err := hashFile(f); err == nil {
			w.mu.Lock()
			w.hashes[f] = h
			w.mu.Unlock()
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
			}
			return
		}
	}
	if !w.selected(ev.Name) {
		return
	}
	w.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
	w.mu.Lock()
	w.pending[ev.Name] = true
	w.mu.Unlock()
}

// selected reports whether path matches a source pattern and no exclude.
func (w *Watcher) selected(path string) bool {
	rel, err := filepath.Rel(w.opts.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	matched := false
	for _, p := range w.opts.Patterns {
		if ok, _ := doublestar.Match(filepath.ToSlash(p), rel); ok {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, ex := range w.opts.Excludes {
		if ok, _ := doublestar.Match(filepath.ToSlash(ex), rel); ok {
			return false
		}
	}
	return true
}

func (w *Watcher) flush() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.pending) == 0 {
		return nil
	}

	var files []string
	for path := range w.pending {
		h, err := hashFile(path)
		if err != nil {
			// removed or unreadable
			delete(w.hashes, path)
			files = append(files, path)
			continue
		}
		if old, ok := w.hashes[path]; ok && old == h {
			continue
		}
		w.hashes[path] = h
		files = append(files, path)
	}
	w.pending = make(map[string]bool)
	sort.Strings(files)
	return files
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
