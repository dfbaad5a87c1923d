// Package watcher feeds filesystem change events into the incremental
// indexing pipeline. Events are filtered down to supported source files
// and debounced so editor save storms collapse into one batch.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"symidx/internal/logging"
	"symidx/internal/parser"
)

// Watcher watches a repository tree recursively and emits debounced
// batches of changed paths. It never touches the index itself; the
// emit callback owns what happens to a batch.
type Watcher struct {
	root      string
	ignores   []string
	registry  *parser.Registry
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	logger    *logging.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// Config controls what gets watched and how long the quiet period is
type Config struct {
	Root           string
	Debounce       time.Duration
	IgnorePatterns []string
}

// New creates a watcher. emit receives repo-relative paths.
func New(cfg Config, registry *parser.Registry, logger *logging.Logger, emit func([]string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		root:      cfg.Root,
		ignores:   cfg.IgnorePatterns,
		registry:  registry,
		fsw:       fsw,
		debouncer: NewDebouncer(cfg.Debounce, emit),
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
	return w, nil
}

// Start registers the directory tree and begins processing events
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}

	go w.run()

	w.logger.Info("Watcher started", map[string]interface{}{
		"root": w.root,
	})
	return nil
}

// Flush immediately emits any debounced paths
func (w *Watcher) Flush() {
	w.debouncer.Flush()
}

// Close stops the event loop and releases the fsnotify handle. Pending
// debounced paths are dropped; call Flush first to drain them.
func (w *Watcher) Close() error {
	w.cancel()
	w.debouncer.Cancel()
	return w.fsw.Close()
}

// addRecursive registers dir and every non-ignored subdirectory.
// fsnotify watches are not recursive on their own.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (w.ignored(path) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			w.logger.Warn("Directory not watchable", map[string]interface{}{
				"path":  path,
				"error": addErr.Error(),
			})
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories join the watch set so files created inside them
	// are seen too
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.ignored(event.Name) {
				_ = w.addRecursive(event.Name)
			}
			return
		}
	}

	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	rel := w.relPath(event.Name)
	if rel == "" || w.ignored(event.Name) || !w.registry.Supports(rel) {
		return
	}

	// Removes and renames flow through the same batch; the indexing
	// pass discovers the file is gone and drops its record.
	w.debouncer.Add(rel)
}

// ignored matches a path's base name and segments against the ignore
// patterns
func (w *Watcher) ignored(path string) bool {
	rel := w.relPath(path)
	if rel == "" {
		return false
	}
	segments := strings.Split(rel, "/")
	for _, pattern := range w.ignores {
		for _, seg := range segments {
			if matched, _ := filepath.Match(pattern, seg); matched {
				return true
			}
		}
	}
	return false
}

func (w *Watcher) relPath(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}
