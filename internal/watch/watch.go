// Package watch reruns a build when an input workbook changes on disk
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for writes to settle
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches workbook files and CSV workbook directories
type Watcher struct {
	paths    []string
	onChange func(ctx context.Context, changed []string)
	debounce time.Duration
	logger   zerolog.Logger
}

// New creates a watcher over paths. onChange receives the changed files,
// sorted, once writes have been quiet for the debounce interval.
func New(paths []string, onChange func(ctx context.Context, changed []string), logger zerolog.Logger) *Watcher {
	return &Watcher{
		paths:    paths,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   logger.With().Str("component", "watch").Logger(),
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch blocks until ctx is cancelled. onChange runs on the watching
// goroutine, so builds never overlap.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	files, dirs, err := w.register(watcher)
	if err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := make(map[string]bool)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			path, err := filepath.Abs(event.Name)
			if err != nil || !relevant(path, files, dirs) {
				continue
			}
			w.logger.Debug().Str("path", path).Str("op", event.Op.String()).Msg("input changed")
			pending[path] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			clear(pending)

			w.logger.Info().Strs("paths", changed).Msg("rebuilding")
			w.onChange(ctx, changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watcher error")

		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// register watches the parent directory of every file, which keeps
// working when an editor replaces the file, and every CSV directory
func (w *Watcher) register(watcher *fsnotify.Watcher) (files, dirs map[string]bool, err error) {
	files = make(map[string]bool)
	dirs = make(map[string]bool)
	watched := make(map[string]bool)

	for _, path := range w.paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, nil, err
		}

		dir := filepath.Dir(abs)
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			dir = abs
			dirs[abs] = true
		} else {
			files[abs] = true
		}

		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return nil, nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched[dir] = true
		w.logger.Info().Str("dir", dir).Msg("watching")
	}
	return files, dirs, nil
}

func relevant(path string, files, dirs map[string]bool) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	if files[path] {
		return true
	}
	return dirs[filepath.Dir(path)] && strings.EqualFold(filepath.Ext(path), ".csv")
}
