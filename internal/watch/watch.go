// Package watch provides a debounced recursive file watcher for model
// trees. Rapid write bursts (editor saves, git checkouts) collapse into
// a single change notification.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before the
// change callback fires.
const DefaultDebounce = 100 * time.Millisecond

// defaultExts are the file extensions that trigger a rebuild.
var defaultExts = []string{".sql", ".yml", ".yaml"}

// Options configures a Watcher.
type Options struct {
	// Dirs are the root directories to watch recursively. At least one
	// must exist.
	Dirs []string

	// Exts lists the file extensions that trigger the callback.
	// Nil means .sql, .yml, .yaml.
	Exts []string

	// Debounce is the quiet period before firing. Zero means
	// DefaultDebounce.
	Debounce time.Duration

	// Logger receives watch diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Watcher watches model directories and fires a callback after changes
// settle.
type Watcher struct {
	dirs     []string
	exts     map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher. Directories that do not exist are rejected up
// front so a typo fails fast instead of watching nothing.
func New(opts Options) (*Watcher, error) {
	if len(opts.Dirs) == 0 {
		return nil, fmt.Errorf("no directories to watch")
	}
	for _, dir := range opts.Dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("cannot watch %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("cannot watch %s: not a directory", dir)
		}
	}

	exts := opts.Exts
	if exts == nil {
		exts = defaultExts
	}
	extSet := make(map[string]bool, len(exts))
	for _, ext := range exts {
		extSet[strings.ToLower(ext)] = true
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Watcher{
		dirs:     opts.Dirs,
		exts:     extSet,
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Run watches until the context is cancelled, invoking onChange after
// each settled burst of relevant file events. The callback runs on the
// debounce timer's goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range w.dirs {
		if err := addDirRecursive(watcher, dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.logger.Debug("watching for changes", "dirs", w.dirs, "debounce", w.debounce)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// New subdirectories join the watch so models added in
			// fresh domain folders are picked up.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addDirRecursive(watcher, event.Name); err != nil {
						w.logger.Debug("failed to watch new directory", "dir", event.Name, "error", err)
					}
					continue
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.exts[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(w.debounce, func() {
				w.logger.Debug("change detected", "file", name)
				onChange()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// addDirRecursive adds a directory and all subdirectories to the watcher.
func addDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
}
