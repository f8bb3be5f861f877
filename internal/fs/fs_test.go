package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadDirNames_Sorted(t *testing.T) {
	memFs := NewMemTest()
	memFs.MustMkdirAll("/root/zeta")
	memFs.MustWriteFile("/root/beta.txt", "b")
	memFs.MustWriteFile("/root/alpha.txt", "a")

	names, err := memFs.ReadDirNames("/root")
	if err != nil {
		t.Fatalf("ReadDirNames: %v", err)
	}

	expected := []string{"alpha.txt", "beta.txt", "zeta"}
	if len(names) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], expected[i])
		}
	}
}

func TestReadDirNames_Missing(t *testing.T) {
	memFs := NewMemTest()
	if _, err := memFs.ReadDirNames("/nope"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestExists(t *testing.T) {
	memFs := NewMemTest()
	memFs.MustWriteFile("/a/b.txt", "x")

	if !memFs.Exists("/a/b.txt") {
		t.Error("expected file to exist")
	}
	if !memFs.Exists("/a") {
		t.Error("expected parent directory to exist")
	}
	if memFs.Exists("/a/c.txt") {
		t.Error("expected missing file not to exist")
	}
}

func TestMetadataOf_MemFile(t *testing.T) {
	memFs := NewMemTest()
	memFs.MustWriteFile("/f.txt", "hello")
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	memFs.MustChtimes("/f.txt", mtime, mtime)

	md, err := StatMetadata(memFs, "/f.txt")
	if err != nil {
		t.Fatalf("StatMetadata: %v", err)
	}

	if !md.IsFile || md.IsDir() {
		t.Errorf("expected file metadata, got %+v", md)
	}
	if md.Size != 5 {
		t.Errorf("Size = %d, want 5", md.Size)
	}
	if !md.MTime.Equal(mtime) {
		t.Errorf("MTime = %v, want %v", md.MTime, mtime)
	}
	// In-memory files carry no platform stat data.
	if !md.ATime.Equal(mtime) || !md.CTime.Equal(mtime) {
		t.Errorf("expected ATime/CTime to fall back to MTime, got %v / %v", md.ATime, md.CTime)
	}
}

func TestMetadataOf_MemDir(t *testing.T) {
	memFs := NewMemTest()
	memFs.MustMkdirAll("/d")

	md, err := StatMetadata(memFs, "/d")
	if err != nil {
		t.Fatalf("StatMetadata: %v", err)
	}
	if md.IsFile {
		t.Error("expected directory metadata")
	}
}

func TestMetadataOf_RealFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "real.txt")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	atime := time.Now().Add(-time.Hour).Truncate(time.Second)
	mtime := time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, atime, mtime); err != nil {
		t.Fatal(err)
	}

	md, err := StatMetadata(NewReal(), path)
	if err != nil {
		t.Fatalf("StatMetadata: %v", err)
	}
	if !md.IsFile || md.Size != 3 {
		t.Errorf("unexpected metadata %+v", md)
	}
	if !md.MTime.Equal(mtime) {
		t.Errorf("MTime = %v, want %v", md.MTime, mtime)
	}
	if !md.ATime.Equal(atime) {
		t.Errorf("ATime = %v, want %v", md.ATime, atime)
	}
}

func TestRealFileSystem_IsReadOnly(t *testing.T) {
	dir := t.TempDir()
	real := NewReal()
	if err := real.Mkdir(filepath.Join(dir, "x"), 0755); err == nil {
		t.Error("expected write to read-only filesystem to fail")
	}
}

func TestIsWatchable(t *testing.T) {
	memFs := NewMemTest()
	memFs.MustWriteFile("/f", "")
	memFs.MustMkdirAll("/d")

	for _, p := range []string{"/f", "/d"} {
		info, err := memFs.Stat(p)
		if err != nil {
			t.Fatal(err)
		}
		if !IsWatchable(info) {
			t.Errorf("expected %s to be watchable", p)
		}
	}
}
