package watcher

import (
	"context"
	"log/slog"

	"github.com/prettymuchbryce/treewatch/internal/fs"
	"github.com/prettymuchbryce/treewatch/internal/notify"
)

// Watcher connects a notification backend to a Tree and serializes event handling.
type Watcher struct {
	notifier notify.Notifier
	tree     *Tree
}

// New creates a Watcher. The Watcher owns notifier and closes it when Run returns.
func New(filesystem fs.FileSystem, notifier notify.Notifier, handler Handler) *Watcher {
	return &Watcher{
		notifier: notifier,
		tree:     NewTree(filesystem, notifier, handler),
	}
}

// Tree returns the underlying watch tree.
func (w *Watcher) Tree() *Tree {
	return w.tree
}

// Watch starts watching root. See Tree.Watch.
func (w *Watcher) Watch(root string) error {
	return w.tree.Watch(root)
}

// Unwatch stops watching. See Tree.Unwatch.
func (w *Watcher) Unwatch() {
	w.tree.Unwatch()
}

// WatchCount returns the number of entries currently being watched.
func (w *Watcher) WatchCount() int {
	return w.tree.Len()
}

// Run handles notifications one at a time until ctx is cancelled or the
// backend closes. On return every entry has been unwatched and the backend closed.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("watcher started", "root", w.tree.Root())

	defer func() {
		w.tree.Unwatch()
		if err := w.notifier.Close(); err != nil {
			slog.Warn("failed to close notifier", "error", err)
		}
	}()

	events := w.notifier.Events()
	errs := w.notifier.Errors()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watcher stopping")
			return nil

		case path, ok := <-events:
			if !ok {
				return nil
			}
			metricNotifications.Inc()
			slog.Debug("notification", "path", path)
			w.tree.HandlePath(path)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
			w.tree.publishError(err)
		}
	}
}
