package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/prettymuchbryce/treewatch/internal/fs"
	"github.com/prettymuchbryce/treewatch/internal/ignore"
	"github.com/prettymuchbryce/treewatch/internal/pathutil"
	"github.com/prettymuchbryce/treewatch/internal/traverse"
)

var (
	// ErrNoHandler is returned by Watch when the tree has nowhere to publish events.
	ErrNoHandler = errors.New("watcher: no event handler")

	// ErrAlreadyWatching is returned by Watch when called again without Unwatch.
	ErrAlreadyWatching = errors.New("watcher: already watching; call Unwatch first")
)

// watchRegistrar is the part of a notification backend the tree drives,
// allowing mocking in tests.
type watchRegistrar interface {
	Add(name string) error
	Remove(name string) error
}

// Tree maintains the set of watched entries below a root directory.
//
// Every entry in the table has a live registration with the backend, and
// every entry other than the root has its parent directory in the table.
// Removing a directory removes everything below it.
//
// All table mutations happen under mu. Filesystem reads for traversals happen
// outside of it, so an Unwatch racing a Watch that is still in its initial
// traversal can leave entries registered after Unwatch returns. Callers must
// not overlap the two.
type Tree struct {
	mu sync.Mutex

	// fs is the filesystem abstraction for stat and readdir operations.
	fs fs.FileSystem

	// registrar opens and closes the per-path notification registrations.
	registrar watchRegistrar

	// handler receives watch, unwatch and error events.
	handler Handler

	// root is the cleaned absolute path of the watched directory.
	root string

	// watching is true between Watch and Unwatch (or removal of the root).
	watching bool

	// entries stores watched entries indexed by key.
	entries map[string]*Entry

	// ignoreFile is tested against file basenames.
	ignoreFile *ignore.Matcher

	// ignoreDir is tested against directory keys.
	ignoreDir *ignore.Matcher
}

// NewTree creates a Tree with the default ignore patterns.
func NewTree(filesystem fs.FileSystem, registrar watchRegistrar, handler Handler) *Tree {
	return &Tree{
		fs:         filesystem,
		registrar:  registrar,
		handler:    handler,
		entries:    make(map[string]*Entry),
		ignoreFile: ignore.MustNew(ignore.DefaultFilePatterns),
		ignoreDir:  ignore.MustNew(ignore.DefaultDirPatterns),
	}
}

// SetIgnoreFile replaces the patterns tested against file basenames.
// Entries that are already watched are not affected until their directory is rescanned.
func (t *Tree) SetIgnoreFile(patterns []string) error {
	m, err := ignore.New(patterns)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.ignoreFile = m
	t.mu.Unlock()
	return nil
}

// SetIgnoreDir replaces the patterns tested against directory keys.
// Entries that are already watched are not affected until their directory is rescanned.
func (t *Tree) SetIgnoreDir(patterns []string) error {
	m, err := ignore.New(patterns)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.ignoreDir = m
	t.mu.Unlock()
	return nil
}

// Watch registers root under the key "/" and then every non-ignored entry below it.
// Ignore patterns never apply to the root itself.
//
// Traversal failures are published as EventError and leave whatever was already
// registered in place; they are not returned.
func (t *Tree) Watch(root string) error {
	if t.handler == nil {
		return ErrNoHandler
	}

	t.mu.Lock()
	if t.watching {
		t.mu.Unlock()
		return ErrAlreadyWatching
	}
	t.root = filepath.Clean(root)
	t.watching = t.register("/", t.root, fs.Metadata{})
	watching, cleaned := t.watching, t.root
	t.mu.Unlock()

	if !watching {
		return nil
	}

	slog.Debug("watching tree", "root", cleaned)
	t.scan("/", traverse.Unlimited)
	return nil
}

// Unwatch unregisters every entry, releasing all backend registrations.
// Each removed entry is published as EventUnwatch.
func (t *Tree) Unwatch() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, key := range t.sortedKeys() {
		t.unregister(key, false)
	}
	t.watching = false
}

// Root returns the watched root, or "" before the first Watch.
func (t *Tree) Root() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}

// Watching reports whether the tree is between Watch and Unwatch.
func (t *Tree) Watching() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watching
}

// Len returns the number of watched entries, including the root.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Entries returns a snapshot of the watch table sorted by key.
func (t *Tree) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.entries))
	for _, key := range t.sortedKeys() {
		out = append(out, *t.entries[key])
	}
	return out
}

// Lookup returns the entry registered under key.
func (t *Tree) Lookup(key string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// HandlePath reconciles the tree after a notification for path.
// Both the entry at path and its parent directory are reconciled, since a
// directory notification may concern a child that is not watched yet.
func (t *Tree) HandlePath(path string) {
	t.mu.Lock()
	if !t.watching {
		t.mu.Unlock()
		return
	}
	key := pathutil.EntryKey(t.root, filepath.Clean(path))
	t.mu.Unlock()

	if key == "" {
		return
	}
	t.handleChange(key)
	if parent := pathutil.ParentKey(key); parent != "" {
		t.handleChange(parent)
	}
}

// handleChange re-derives the state of a single entry: a missing entry is
// removed with its subtree, a file gets fresh metadata, and a directory is
// rescanned one level deep.
func (t *Tree) handleChange(key string) {
	t.mu.Lock()
	e, ok := t.entries[key]
	t.mu.Unlock()
	if !ok {
		return
	}

	info, err := t.fs.Stat(e.Path)
	if err != nil {
		slog.Debug("entry no longer exists", "key", key, "path", e.Path)
		t.mu.Lock()
		if t.entries[key] == e {
			t.unregister(key, false)
		}
		t.mu.Unlock()
		return
	}

	if !fs.IsWatchable(info) || (key == "/" && !info.IsDir()) {
		t.mu.Lock()
		if t.entries[key] == e {
			t.unregister(key, false)
		}
		t.mu.Unlock()
		return
	}

	meta := fs.MetadataOf(info)
	if key == "/" {
		// The root keeps its bare metadata.
		meta = fs.Metadata{}
	}

	t.mu.Lock()
	if t.entries[key] != e {
		// Replaced or removed while we were stat'ing.
		t.mu.Unlock()
		return
	}
	rescan := !meta.IsFile
	switch {
	case e.Meta.IsFile && meta.IsFile:
		// Refresh without publishing the intermediate unwatch.
		t.unregister(key, true)
		t.register(key, e.Path, meta)
	case e.Meta.IsFile:
		// A file replaced by a directory.
		t.unregister(key, false)
		rescan = !t.ignoreDir.Test(key) && t.register(key, e.Path, meta)
	case meta.IsFile:
		// A directory replaced by a file.
		t.unregister(key, false)
		if !t.ignoreFile.Test(filepath.Base(e.Path)) {
			t.register(key, e.Path, meta)
		}
	}
	t.mu.Unlock()

	if rescan {
		t.rescan(key)
	}
}

// rescan lists the directory at key one level deep and diffs the result
// against the table. Directories discovered along the way are rescanned too,
// since nothing below them has been watched yet.
func (t *Tree) rescan(key string) {
	pending := []string{key}
	for len(pending) > 0 {
		next := pending[0]
		pending = pending[1:]
		pending = append(pending, t.scan(next, 1)...)
	}
}

// scan walks the directory at key to the given depth, registers what is new
// and, for one-level scans, unregisters immediate children that are gone.
// It returns the keys of newly registered directories.
func (t *Tree) scan(key string, depth int) []string {
	t.mu.Lock()
	e, ok := t.entries[key]
	root := t.root
	t.mu.Unlock()
	if !ok {
		return nil
	}

	start := time.Now()
	found, err := traverse.WalkDepth(context.Background(), t.fs, e.Path, depth)
	metricRescans.Inc()
	metricRescanSeconds.Add(time.Since(start).Seconds())

	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		slog.Warn("traversal failed", "key", key, "path", e.Path, "error", err)
		t.emit(Event{Kind: EventError, Key: key, Path: e.Path, Err: err})
		return nil
	}

	wlist := make(map[string]struct{}, len(found))
	var newDirs []string

	for _, item := range found {
		itemKey := pathutil.EntryKey(root, item.Path)
		if itemKey == "" || itemKey == key {
			continue
		}
		if _, parentWatched := t.entries[pathutil.ParentKey(itemKey)]; !parentWatched {
			// Below an ignored or unregistrable directory.
			continue
		}
		if item.Meta.IsFile {
			if t.ignoreFile.Test(filepath.Base(item.Path)) {
				continue
			}
		} else if t.ignoreDir.Test(itemKey) {
			continue
		}

		wlist[itemKey] = struct{}{}
		if t.register(itemKey, item.Path, item.Meta) && !item.Meta.IsFile {
			newDirs = append(newDirs, itemKey)
		}
	}

	if depth != 1 {
		return nil
	}

	for _, child := range t.childKeys(key) {
		if _, keep := wlist[child]; !keep {
			t.unregister(child, false)
		}
	}
	return newDirs
}

// register adds an entry and opens its backend registration.
// Empty and already-registered keys are a no-op. Must be called with mu held.
// Returns true if a new entry was added.
func (t *Tree) register(key, path string, meta fs.Metadata) bool {
	if key == "" {
		return false
	}
	if _, exists := t.entries[key]; exists {
		return false
	}

	if err := t.registrar.Add(path); err != nil {
		slog.Warn("failed to add watch", "key", key, "path", path, "error", err)
		t.emit(Event{Kind: EventError, Key: key, Path: path, Err: fmt.Errorf("watch %s: %w", path, err)})
		return false
	}

	e := &Entry{Key: key, Path: path, Meta: meta}
	t.entries[key] = e
	metricWatchedEntries.WithLabelValues(entryType(meta.IsFile)).Inc()
	slog.Debug("registered", "key", key, "path", path, "file", meta.IsFile)

	t.emit(Event{Kind: EventWatch, Key: key, Path: path, Meta: meta})
	return true
}

// unregister removes an entry and releases its backend registration. When the
// entry is a directory, every entry below it is unregistered as well.
// Removing the root ends the watch. Must be called with mu held.
func (t *Tree) unregister(key string, silent bool) {
	e, exists := t.entries[key]
	if !exists {
		return
	}

	delete(t.entries, key)
	metricWatchedEntries.WithLabelValues(entryType(e.Meta.IsFile)).Dec()

	// The backend may already have dropped the registration of a deleted path.
	if err := t.registrar.Remove(e.Path); err != nil {
		slog.Debug("failed to remove watch", "key", key, "path", e.Path, "error", err)
	}
	slog.Debug("unregistered", "key", key, "path", e.Path, "silent", silent)

	if !silent {
		t.emit(Event{Kind: EventUnwatch, Key: key, Path: e.Path, Meta: e.Meta})
	}

	if !e.Meta.IsFile {
		for _, desc := range t.descendantKeys(key) {
			t.unregister(desc, false)
		}
	}

	if key == "/" {
		t.watching = false
	}
}

// emit publishes an event. Must be called with mu held.
func (t *Tree) emit(e Event) {
	metricEvents.WithLabelValues(e.Kind.String()).Inc()
	if t.handler != nil {
		t.handler(e)
	}
}

// descendantKeys returns every registered key strictly below key, sorted.
// This is a scan over the whole table. Must be called with mu held.
func (t *Tree) descendantKeys(key string) []string {
	var out []string
	for k := range t.entries {
		if pathutil.IsDescendantKey(key, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// childKeys returns the registered immediate children of key, sorted.
// Must be called with mu held.
func (t *Tree) childKeys(key string) []string {
	var out []string
	for k := range t.entries {
		if pathutil.IsChildKey(key, k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// sortedKeys returns every registered key, sorted. Must be called with mu held.
func (t *Tree) sortedKeys() []string {
	out := make([]string, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// publishError forwards a backend failure to the handler.
func (t *Tree) publishError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit(Event{Kind: EventError, Err: err})
}
