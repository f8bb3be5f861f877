package pathutil

import (
	"path"
	"path/filepath"
	"strings"
)

// SafeJoin joins segments onto root without ever escaping above it.
// The segments are first resolved against a virtual "/", so ".." can climb
// at most back to root and an absolute segment is treated as relative to root.
//
//	SafeJoin("/tmp/w", "../../etc/passwd") == "/tmp/w/etc/passwd"
//	SafeJoin("/tmp/w", "/abs", "b")       == "/tmp/w/abs/b"
func SafeJoin(root string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, "/")
	for _, s := range segments {
		parts = append(parts, filepath.ToSlash(s))
	}
	rel := path.Join(parts...)
	return filepath.Join(root, filepath.FromSlash(rel))
}

// EntryKey returns the root-relative, slash-separated key for p.
// The root itself is "/". Paths outside root yield "".
func EntryKey(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return ""
	}
	if rel == "." {
		return "/"
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return ""
	}
	return "/" + rel
}

// KeyPath converts a key back into an absolute path under root.
func KeyPath(root, key string) string {
	if key == "/" {
		return filepath.Clean(root)
	}
	return SafeJoin(root, key)
}

// ParentKey strips the last segment of key. The parent of a top-level key is "/".
// The root has no parent and yields "".
func ParentKey(key string) string {
	if key == "/" || key == "" {
		return ""
	}
	i := strings.LastIndex(key, "/")
	if i <= 0 {
		return "/"
	}
	return key[:i]
}

// IsDescendantKey reports whether key lies strictly below ancestor.
func IsDescendantKey(ancestor, key string) bool {
	if ancestor == key || key == "" {
		return false
	}
	if ancestor == "/" {
		return strings.HasPrefix(key, "/")
	}
	return strings.HasPrefix(key, ancestor+"/")
}

// IsChildKey reports whether key is an immediate child of parent.
func IsChildKey(parent, key string) bool {
	return IsDescendantKey(parent, key) && ParentKey(key) == parent
}
