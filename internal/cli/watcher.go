package cli

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports batches of changed Go files under a set of directories
type Watcher struct {
	dirs     []string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(ctx context.Context, paths []string)

	fsw *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op
}

// NewWatcher creates a watcher calling onChange once per debounced batch
func NewWatcher(dirs []string, debounce time.Duration, logger *slog.Logger, onChange func(ctx context.Context, paths []string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Watcher{
		dirs:     dirs,
		debounce: debounce,
		logger:   logger,
		onChange: onChange,
		fsw:      fsw,
		pending:  make(map[string]fsnotify.Op),
	}, nil
}

// Run watches until ctx is done, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for _, dir := range w.dirs {
		root := strings.TrimSuffix(filepath.ToSlash(dir), "/...")
		if root == "" {
			root = "."
		}
		if err := w.addRecursive(filepath.FromSlash(root)); err != nil {
			return err
		}
	}
	w.logger.Info("file watcher started", "dirs", w.dirs, "debounce", w.debounce)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flush(ctx)
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
		if path != root && skipWatch(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		} else {
			w.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}

func skipWatch(name string) bool {
	return name == "vendor" || name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if !strings.HasSuffix(event.Name, ".go") || strings.HasSuffix(event.Name, "_test.go") {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = event.Op
	w.pendingMu.Unlock()
}

// flush hands the batch collected since the last tick to onChange
func (w *Watcher) flush(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	sort.Strings(paths)
	w.logger.Debug("source changed", "files", len(paths))
	w.onChange(ctx, paths)
}
