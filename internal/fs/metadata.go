package fs

import (
	"os"
	"time"

	"github.com/djherbis/times"
)

// Metadata is the stat snapshot carried by every watched entry.
// The watch root only ever carries IsFile=false.
type Metadata struct {
	IsFile bool        `json:"is_file"`
	Mode   os.FileMode `json:"mode,omitempty"`
	Size   int64       `json:"size,omitempty"`
	ATime  time.Time   `json:"atime,omitempty"`
	MTime  time.Time   `json:"mtime,omitempty"`
	CTime  time.Time   `json:"ctime,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (m Metadata) IsDir() bool {
	return !m.IsFile
}

// MetadataOf builds Metadata from a FileInfo.
// Access and change times come from the platform stat data when available;
// in-memory filesystems have none, so both fall back to the modification time.
func MetadataOf(info os.FileInfo) Metadata {
	md := Metadata{
		IsFile: info.Mode().IsRegular(),
		Mode:   info.Mode(),
		Size:   info.Size(),
		MTime:  info.ModTime(),
		ATime:  info.ModTime(),
		CTime:  info.ModTime(),
	}

	if info.Sys() == nil {
		return md
	}

	ts := times.Get(info)
	md.ATime = ts.AccessTime()
	if ts.HasChangeTime() {
		md.CTime = ts.ChangeTime()
	}
	return md
}

// StatMetadata stats path on fsys and returns its Metadata.
func StatMetadata(fsys FileSystem, path string) (Metadata, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return Metadata{}, err
	}
	return MetadataOf(info), nil
}
