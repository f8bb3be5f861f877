// Package testutil holds helpers shared by unit tests.
package testutil

import (
	"path/filepath"
	"runtime"
)

// Path joins parts into a path. A leading "/" part makes it absolute: rooted
// at "/" on Unix and at C:\ on Windows, so fixtures read the same everywhere.
//
//	Path("/", "w", "a.txt") // "/w/a.txt" or `C:\w\a.txt`
func Path(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	if parts[0] != "/" {
		return filepath.Join(parts...)
	}

	root := string(filepath.Separator)
	if runtime.GOOS == "windows" {
		root = `C:\`
	}
	return filepath.Join(append([]string{root}, parts[1:]...)...)
}
