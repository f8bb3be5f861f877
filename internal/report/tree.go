package report

import (
	"fmt"
	"io"
	"path"

	"github.com/xlab/treeprint"

	"github.com/prettymuchbryce/treewatch/internal/pathutil"
	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

// RenderTree renders watch entries as a tree labelled with root.
// Entries must be sorted by key, which places every directory before its contents.
func RenderTree(root string, entries []watcher.Entry) string {
	tree := treeprint.NewWithRoot(rootStyle.Render(root))
	branches := map[string]treeprint.Tree{"/": tree}

	for _, e := range entries {
		if e.Key == "/" {
			continue
		}
		parent, ok := branches[pathutil.ParentKey(e.Key)]
		if !ok {
			continue
		}
		name := path.Base(e.Key)
		if e.Meta.IsFile {
			parent.AddMetaNode(detailStyle.Render(FormatSize(e.Meta.Size)), name)
			continue
		}
		branches[e.Key] = parent.AddBranch(dirStyle.Render(name + "/"))
	}
	return tree.String()
}

// WriteTree writes RenderTree output followed by a summary line.
func WriteTree(w io.Writer, root string, entries []watcher.Entry) {
	fmt.Fprint(w, RenderTree(root, entries))

	var files, dirs int
	var size int64
	for _, e := range entries {
		if e.Key == "/" {
			continue
		}
		if e.Meta.IsFile {
			files++
			size += e.Meta.Size
		} else {
			dirs++
		}
	}
	fmt.Fprintln(w, detailStyle.Render(fmt.Sprintf("%d directories, %d files, %s", dirs, files, FormatSize(size))))
}
