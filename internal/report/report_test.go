package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prettymuchbryce/treewatch/internal/fs"
	"github.com/prettymuchbryce/treewatch/internal/testutil"
	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

func newTestReporter(opts Options) (*EventReporter, *bytes.Buffer, *fs.MemFileSystem) {
	var buf bytes.Buffer
	memFs := fs.NewMemTest()
	r := NewEventsWithWriter(&buf, memFs, opts)
	r.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return r, &buf, memFs
}

func TestEventReporter_Lines(t *testing.T) {
	r, buf, _ := newTestReporter(Options{TimeFormat: DefaultTimeFormat})
	root := testutil.Path("/", "w")

	r.Handle(watcher.Event{Kind: watcher.EventWatch, Key: "/", Path: root})
	r.Handle(watcher.Event{Kind: watcher.EventWatch, Key: "/sub", Path: testutil.Path("/", "w", "sub")})
	r.Handle(watcher.Event{Kind: watcher.EventWatch, Key: "/a.txt", Meta: fs.Metadata{IsFile: true, Size: 2048}})
	r.Handle(watcher.Event{Kind: watcher.EventUnwatch, Key: "/a.txt", Meta: fs.Metadata{IsFile: true}})
	r.Handle(watcher.Event{Kind: watcher.EventError, Key: "/locked", Err: errors.New("permission denied")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "14:05:07")
	assert.Contains(t, lines[0], root)
	assert.Contains(t, lines[1], "/sub/")
	assert.Contains(t, lines[2], "/a.txt")
	assert.Contains(t, lines[2], "2.0KB")
	assert.Contains(t, lines[3], unwatchIcon)
	assert.Contains(t, lines[4], "/locked")
	assert.Contains(t, lines[4], "permission denied")
}

func TestEventReporter_NoTimestamp(t *testing.T) {
	r, buf, _ := newTestReporter(Options{})
	r.Report(watcher.Event{Kind: watcher.EventWatch, Key: "/f", Meta: fs.Metadata{IsFile: true}})
	assert.NotContains(t, buf.String(), "14:05")
}

func TestEventReporter_Quiet(t *testing.T) {
	r, buf, _ := newTestReporter(Options{Quiet: true})
	r.Report(watcher.Event{Kind: watcher.EventWatch, Key: "/dir"})
	r.Report(watcher.Event{Kind: watcher.EventUnwatch, Key: "/dir"})
	assert.Empty(t, buf.String())

	r.Report(watcher.Event{Kind: watcher.EventWatch, Key: "/f", Meta: fs.Metadata{IsFile: true}})
	r.Report(watcher.Event{Kind: watcher.EventError, Err: errors.New("overflow")})
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 2)
}

func TestEventReporter_MIME(t *testing.T) {
	r, buf, memFs := newTestReporter(Options{MIME: true})
	path := testutil.Path("/", "w", "page.html")
	memFs.MustWriteFile(path, "<!DOCTYPE html><html><body>hi</body></html>")

	r.Report(watcher.Event{Kind: watcher.EventWatch, Key: "/page.html", Path: path, Meta: fs.Metadata{IsFile: true}})
	assert.Contains(t, buf.String(), "text/html")

	// Unreadable files print without a type.
	buf.Reset()
	r.Report(watcher.Event{Kind: watcher.EventWatch, Key: "/gone", Path: testutil.Path("/", "w", "gone"), Meta: fs.Metadata{IsFile: true}})
	assert.NotContains(t, buf.String(), "text/")
	assert.NotContains(t, buf.String(), "application/")
}

func TestEventReporter_NilSafe(t *testing.T) {
	var r *EventReporter
	assert.NotPanics(t, func() { r.Report(watcher.Event{Kind: watcher.EventWatch}) })
	assert.NotPanics(t, func() { NullReporter{}.Report(watcher.Event{}) })
}

func TestRenderTree(t *testing.T) {
	entries := []watcher.Entry{
		{Key: "/"},
		{Key: "/a.txt", Meta: fs.Metadata{IsFile: true, Size: 10}},
		{Key: "/sub"},
		{Key: "/sub/deep"},
		{Key: "/sub/deep/x.go", Meta: fs.Metadata{IsFile: true, Size: 3}},
		{Key: "/sub/y.go", Meta: fs.Metadata{IsFile: true}},
	}

	out := RenderTree("/tmp/w", entries)

	for _, want := range []string{"/tmp/w", "a.txt", "sub/", "deep/", "x.go", "y.go", "10B"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "deep/"), strings.Index(out, "x.go"))
	assert.Less(t, strings.Index(out, "x.go"), strings.Index(out, "y.go"))
}

func TestWriteTree_Summary(t *testing.T) {
	var buf bytes.Buffer
	WriteTree(&buf, "/w", []watcher.Entry{
		{Key: "/"},
		{Key: "/d"},
		{Key: "/d/f", Meta: fs.Metadata{IsFile: true, Size: 1024}},
		{Key: "/g", Meta: fs.Metadata{IsFile: true, Size: 1024}},
	})
	assert.Contains(t, buf.String(), "1 directories, 2 files, 2.0KB")
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0B"},
		{1023, "1023B"},
		{1024, "1.0KB"},
		{5 * 1024 * 1024, "5.0MB"},
		{3 * 1024 * 1024 * 1024, "3.0GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.in))
	}
}
