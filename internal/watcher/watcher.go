// Package watcher reports debounced changes to definition files.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/statetree/internal/ctxlog"
)

// DefaultDelay is used when a non-positive delay is configured.
const DefaultDelay = 200 * time.Millisecond

// ErrClosed is returned by Run when the underlying watcher was closed.
var ErrClosed = errors.New("watcher closed")

// Watcher watches files and directory trees for changes to files with one of
// a set of extensions. Directories are watched recursively; a single file is
// watched through its parent directory so editors that replace files on save
// keep working.
type Watcher struct {
	fsw        *fsnotify.Watcher
	delay      time.Duration
	extensions []string
	logger     *slog.Logger

	roots []string
	files map[string]bool
}

// New starts watching paths. Paths that do not exist are an error.
func New(ctx context.Context, delay time.Duration, extensions []string, paths ...string) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDelay
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:        fsw,
		delay:      delay,
		extensions: extensions,
		logger:     ctxlog.FromContext(ctx),
		files:      make(map[string]bool),
	}

	for _, p := range paths {
		if err := w.add(p); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w.logger.Debug("Watching for changes.", "paths", paths, "delay", delay)
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	if !info.IsDir() {
		w.files[abs] = true
		return w.fsw.Add(filepath.Dir(abs))
	}

	w.roots = append(w.roots, abs)
	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(p)
		}
		return nil
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers batches of changed files to onChange until ctx is done.
// Changes arriving within the delay of each other are merged into one batch.
// onChange runs on the Run goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			if !w.handle(ev) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.delay)
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			w.logger.Warn("File watcher error.", "error", err)

		case <-fire:
			fire = nil
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.logger.Debug("Detected changes.", "files", changed)
			onChange(ctx, changed)
		}
	}
}

// handle reports whether ev is a change to a watched file. New directories
// under a watched tree are added as they appear.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}

	if ev.Has(fsnotify.Create) && w.underRoot(ev.Name) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(ev.Name); err != nil {
				w.logger.Warn("Could not watch new directory.", "path", ev.Name, "error", err)
			}
			return false
		}
	}

	if !w.matchesExtension(ev.Name) {
		return false
	}
	return w.files[ev.Name] || w.underRoot(ev.Name)
}

func (w *Watcher) matchesExtension(name string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	return slices.Contains(w.extensions, ext)
}

func (w *Watcher) underRoot(name string) bool {
	for _, root := range w.roots {
		if name == root || strings.HasPrefix(name, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
