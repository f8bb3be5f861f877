// Package traverse enumerates a directory tree breadth-first, one filesystem
// operation at a time.
//
// Only a single stat or readdir is ever outstanding, which bounds open file
// descriptors to one and makes the output order deterministic: a directory
// always precedes its children, and siblings appear in listing order.
package traverse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prettymuchbryce/treewatch/internal/fs"
	"github.com/prettymuchbryce/treewatch/internal/pathutil"
)

// Unlimited disables the depth limit of WalkDepth.
const Unlimited = -1

// Entry is a single file or directory found by a walk.
type Entry struct {
	Path string
	Meta fs.Metadata
}

// Error wraps a stat or readdir failure that aborted a walk.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("traverse: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Walk enumerates root and everything below it.
func Walk(ctx context.Context, fsys fs.FileSystem, root string) ([]Entry, error) {
	return WalkDepth(ctx, fsys, root, Unlimited)
}

// WalkDepth enumerates root and at most depth directory levels below it.
// A depth of 1 lists root's immediate children; a negative depth is unlimited.
//
// Any stat or readdir failure aborts the walk and no partial result is returned.
// Entries that are neither regular files nor directories are skipped.
func WalkDepth(ctx context.Context, fsys fs.FileSystem, root string, depth int) ([]Entry, error) {
	type queued struct {
		path  string
		level int
	}

	var result []Entry
	queue := []queued{{path: root}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := queue[0]
		queue = queue[1:]

		info, err := fsys.Stat(next.path)
		if err != nil {
			return nil, &Error{Op: "stat", Path: next.path, Err: err}
		}
		if !fs.IsWatchable(info) {
			slog.Debug("skipping special file", "path", next.path, "mode", info.Mode())
			continue
		}

		result = append(result, Entry{Path: next.path, Meta: fs.MetadataOf(info)})

		if !info.IsDir() || (depth >= 0 && next.level >= depth) {
			continue
		}

		names, err := fsys.ReadDirNames(next.path)
		if err != nil {
			return nil, &Error{Op: "readdir", Path: next.path, Err: err}
		}
		for _, name := range names {
			queue = append(queue, queued{
				path:  pathutil.SafeJoin(next.path, name),
				level: next.level + 1,
			})
		}
	}

	return result, nil
}
