package builder

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces bursts of filesystem events into one rebuild.
const debounce = 250 * time.Millisecond

// Watch rebuilds whenever a source file changes, until ctx is canceled.
// An initial full build runs before watching starts.
func (b *Builder) Watch(ctx context.Context) error {
	if err := b.Build(ctx); err != nil {
		b.logger.Warn("initial build had errors", "err", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := addDirs(w, b.cfg.Source); err != nil {
		return err
	}
	b.logger.Info("watching", "source", b.cfg.Source)

	var timer *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// New directories need their own watches.
			if ev.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = addDirs(w, ev.Name)
				}
			}
			if !relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			if err := b.Build(ctx); err != nil {
				b.logger.Warn("rebuild had errors", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn("watch error", "err", err)
		}
	}
}

// relevant reports whether an event should trigger a rebuild.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.EqualFold(filepath.Ext(ev.Name), ".rst")
}

// addDirs watches root and every directory beneath it.
func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(p)
	})
}
