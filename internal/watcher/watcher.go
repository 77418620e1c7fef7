// Package watcher implements the workspace synchronizer: a recursive
// filesystem watch over a workspace root that turns create/modify/remove
// events into didChange/didClose notifications for documents the LSP
// client already has open. Opening files is never the watcher's job —
// that stays lazy and tool-driven.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mcpbridge/lsp-bridge/internal/ignorefilter"
)

// syncTarget is the subset of *lsp.Client the synchronizer needs. Kept as
// an interface so tests can exercise event handling without a real LSP
// server.
type syncTarget interface {
	IsFileOpen(path string) bool
	ChangeFile(ctx context.Context, path string) error
	CloseFile(ctx context.Context, path string) error
}

const pollInterval = 2 * time.Second

// Watcher recursively watches a workspace root and drives syncTarget.
type Watcher struct {
	root   string
	target syncTarget
	filter *ignorefilter.Filter
	logger *zap.SugaredLogger

	fsw *fsnotify.Watcher

	stop chan struct{}
	done chan struct{}
}

// New builds a Watcher for root. Call Start to begin watching.
func New(root string, target syncTarget, logger *zap.SugaredLogger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:   root,
		target: target,
		filter: ignorefilter.New(root, logger),
		logger: logger,
		fsw:    fsw,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Start registers watches on every directory under root (skipping ignored
// ones) and spawns the event-consuming goroutine. Events arriving after
// Stop are discarded.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTreeRecursive(w.root); err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop releases the watcher. Safe to call once.
func (w *Watcher) Stop() {
	close(w.stop)
	<-w.done
	_ = w.fsw.Close()
}

func (w *Watcher) addTreeRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Best-effort: skip paths we can't stat.
		}
		if !d.IsDir() {
			return nil
		}
		if w.filter.IsIgnored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warnw("watcher: failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	mtimes := w.snapshotMtimes()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warnw("watcher: fsnotify error", "error", err)

		case <-ticker.C:
			next := w.snapshotMtimes()
			w.reconcile(ctx, mtimes, next)
			mtimes = next

		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if w.filter.IsIgnored(event.Name) {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if event.Op&fsnotify.Create != 0 {
				if err := w.addTreeRecursive(event.Name); err != nil {
					w.logger.Warnw("watcher: failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
		if w.target.IsFileOpen(event.Name) {
			if err := w.target.ChangeFile(ctx, event.Name); err != nil {
				w.logger.Errorw("watcher: change notification failed", "path", event.Name, "error", err)
			}
		}

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if w.target.IsFileOpen(event.Name) {
			if err := w.target.CloseFile(ctx, event.Name); err != nil {
				w.logger.Errorw("watcher: close notification failed", "path", event.Name, "error", err)
			}
		}
	}
}

// snapshotMtimes walks the tree and records modification times for every
// non-ignored regular file. Used by the poll fallback to catch events the
// platform notification backend missed.
func (w *Watcher) snapshotMtimes() map[string]time.Time {
	snapshot := make(map[string]time.Time)
	_ = filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if w.filter.IsIgnored(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		snapshot[path] = info.ModTime()
		return nil
	})
	return snapshot
}

func (w *Watcher) reconcile(ctx context.Context, before, after map[string]time.Time) {
	for path, mtime := range after {
		if prev, ok := before[path]; !ok || !prev.Equal(mtime) {
			if w.target.IsFileOpen(path) {
				if err := w.target.ChangeFile(ctx, path); err != nil {
					w.logger.Errorw("watcher: poll-triggered change failed", "path", path, "error", err)
				}
			}
		}
	}
	for path := range before {
		if _, ok := after[path]; !ok {
			if w.target.IsFileOpen(path) {
				if err := w.target.CloseFile(ctx, path); err != nil {
					w.logger.Errorw("watcher: poll-triggered close failed", "path", path, "error", err)
				}
			}
		}
	}
}
