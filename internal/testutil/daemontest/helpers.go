//go:build integration

package daemontest

import "time"

// HoursAgo returns a negative duration representing n hours in the past.
// Use with ModifiedAt: File("x").ModifiedAt(HoursAgo(2))
func HoursAgo(n float64) time.Duration {
	return -time.Duration(n * float64(time.Hour))
}

// File creates a FileEntry for a file at the given path.
// Path should use forward slashes regardless of OS.
func File(path string) FileEntry {
	return FileEntry{Path: path, IsDir: false}
}

// Dir creates a FileEntry for a directory at the given path.
// Path should use forward slashes regardless of OS.
func Dir(path string) FileEntry {
	return FileEntry{Path: path, IsDir: true}
}

// WithContent sets the file content.
func (f FileEntry) WithContent(content string) FileEntry {
	f.Content = content
	return f
}

// WithSize sets the file size (creates file filled with zero bytes).
func (f FileEntry) WithSize(size int64) FileEntry {
	f.Size = size
	return f
}

// ModifiedAt sets the modification time relative to now.
func (f FileEntry) ModifiedAt(d time.Duration) FileEntry {
	f.ModTime = d
	return f
}
