package fs

import (
	"log/slog"

	"github.com/spf13/afero"
)

// RealFileSystem reads from the operating system filesystem.
type RealFileSystem struct {
	afero.Fs
}

// Exists reports whether path can be stat'ed.
func (r *RealFileSystem) Exists(path string) bool {
	return exists(r.Fs, path)
}

// ReadDirNames lists dir, sorted by name.
func (r *RealFileSystem) ReadDirNames(dir string) ([]string, error) {
	slog.Debug("reading directory", "path", dir)
	return readDirNames(r.Fs, dir)
}
