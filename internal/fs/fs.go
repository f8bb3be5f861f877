package fs

import (
	"os"
	"sort"

	"github.com/spf13/afero"
)

// FileSystem extends afero.Fs with the read operations the watch tree relies on.
type FileSystem interface {
	afero.Fs

	// Exists reports whether path can be stat'ed. Any stat failure counts as missing.
	Exists(path string) bool

	// ReadDirNames returns the names of the entries in dir, sorted by name.
	ReadDirNames(dir string) ([]string, error)
}

// NewReal creates a FileSystem backed by the operating system.
// It is read-only: watching never modifies the tree.
func NewReal() FileSystem {
	return &RealFileSystem{
		Fs: afero.NewReadOnlyFs(afero.NewOsFs()),
	}
}

// NewMem creates an in-memory FileSystem for testing.
func NewMem() FileSystem {
	return &MemFileSystem{Fs: afero.NewMemMapFs()}
}

// NewMemTest returns a MemFileSystem for testing with access to Must* helpers.
func NewMemTest() *MemFileSystem {
	return &MemFileSystem{Fs: afero.NewMemMapFs()}
}

func exists(afs afero.Fs, path string) bool {
	_, err := afs.Stat(path)
	return err == nil
}

func readDirNames(afs afero.Fs, dir string) ([]string, error) {
	f, err := afs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// IsWatchable reports whether info describes a regular file or a directory.
// Everything else (sockets, devices, fifos) is skipped by traversal.
func IsWatchable(info os.FileInfo) bool {
	return info.Mode().IsRegular() || info.IsDir()
}
