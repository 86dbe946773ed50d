// Package watch reruns a build when its inputs change.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 300 * time.Millisecond

// Watcher observes a set of files and directories (not recursively).
// Bursts of events closer together than Debounce trigger a single rebuild.
type Watcher struct {
	Paths    []string
	Debounce time.Duration
	// Match filters event paths; nil accepts everything.
	Match  func(path string) bool
	Logger *slog.Logger

	dirs  map[string]bool
	files map[string]bool
}

func New(logger *slog.Logger, paths ...string) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{Paths: paths, Debounce: DefaultDebounce, Logger: logger}
}

// Run blocks until ctx is done, calling rebuild after each settled burst of
// changes. Rebuild errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.add(fw); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			last = event.Name
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", "err", err)
		case <-timer.C:
			w.Logger.Info("change detected, rebuilding", "path", last)
			if err := rebuild(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.Logger.Error("rebuild failed", "err", err)
			}
		}
	}
}

// add registers directories directly and files through their parent, since
// editors often replace files instead of writing them in place.
func (w *Watcher) add(fw *fsnotify.Watcher) error {
	w.dirs = make(map[string]bool)
	w.files = make(map[string]bool)

	for _, p := range w.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		fi, err := os.Stat(abs)
		if errors.Is(err, os.ErrNotExist) {
			w.Logger.Debug("watch path missing, skipped", "path", p)
			continue
		}
		if err != nil {
			return err
		}

		dir := abs
		if fi.IsDir() {
			w.dirs[abs] = true
		} else {
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if err := fw.Add(dir); err != nil {
			return err
		}
		w.Logger.Debug("watching", "path", dir)
	}
	if len(w.dirs) == 0 && len(w.files) == 0 {
		return errors.New("watch: nothing to watch")
	}
	return nil
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	if !w.files[name] && !w.dirs[filepath.Dir(name)] {
		return false
	}
	if filepath.Base(name)[0] == '.' {
		return false
	}
	return w.Match == nil || w.Match(name)
}
