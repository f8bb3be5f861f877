package fs

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
)

// MemFileSystem is an in-memory filesystem for testing.
type MemFileSystem struct {
	afero.Fs
}

// Exists reports whether path can be stat'ed.
func (m *MemFileSystem) Exists(path string) bool {
	return exists(m.Fs, path)
}

// ReadDirNames lists dir, sorted by name.
func (m *MemFileSystem) ReadDirNames(dir string) ([]string, error) {
	return readDirNames(m.Fs, dir)
}

// MustMkdirAll creates a directory and panics on error. For use in tests.
func (m *MemFileSystem) MustMkdirAll(path string) {
	if err := m.Fs.MkdirAll(path, 0755); err != nil {
		panic(fmt.Sprintf("MustMkdirAll(%q): %v", path, err))
	}
}

// MustRemoveAll removes a path and panics on error. For use in tests.
func (m *MemFileSystem) MustRemoveAll(path string) {
	if err := m.Fs.RemoveAll(path); err != nil {
		panic(fmt.Sprintf("MustRemoveAll(%q): %v", path, err))
	}
}

// MustWriteFile writes content to path, creating parents, and panics on error.
// For use in tests.
func (m *MemFileSystem) MustWriteFile(path string, content string) {
	if err := afero.WriteFile(m.Fs, path, []byte(content), 0644); err != nil {
		panic(fmt.Sprintf("MustWriteFile(%q): %v", path, err))
	}
}

// MustChtimes sets access and modification times and panics on error. For use in tests.
func (m *MemFileSystem) MustChtimes(path string, atime, mtime time.Time) {
	if err := m.Fs.Chtimes(path, atime, mtime); err != nil {
		panic(fmt.Sprintf("MustChtimes(%q): %v", path, err))
	}
}
