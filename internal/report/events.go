package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/itchyny/timefmt-go"

	"github.com/prettymuchbryce/treewatch/internal/fs"
	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

// EventReporter writes one line per event.
type EventReporter struct {
	mu   sync.Mutex
	w    io.Writer
	fs   fs.FileSystem
	opts Options
	now  func() time.Time
}

// NewEvents creates an EventReporter writing to stdout.
func NewEvents(filesystem fs.FileSystem, opts Options) *EventReporter {
	return NewEventsWithWriter(os.Stdout, filesystem, opts)
}

// NewEventsWithWriter creates an EventReporter writing to a custom writer.
func NewEventsWithWriter(w io.Writer, filesystem fs.FileSystem, opts Options) *EventReporter {
	return &EventReporter{
		w:    w,
		fs:   filesystem,
		opts: opts,
		now:  time.Now,
	}
}

// Handle is a watcher.Handler.
func (r *EventReporter) Handle(e watcher.Event) {
	r.Report(e)
}

// Report writes e as a single line.
func (r *EventReporter) Report(e watcher.Event) {
	if r == nil {
		return
	}
	if r.opts.Quiet && e.Kind != watcher.EventError && !e.Meta.IsFile {
		return
	}

	line := r.format(e)

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, line)
}

func (r *EventReporter) format(e watcher.Event) string {
	var parts []string
	if r.opts.TimeFormat != "" {
		parts = append(parts, detailStyle.Render(timefmt.Format(r.now(), r.opts.TimeFormat)))
	}

	switch e.Kind {
	case watcher.EventWatch:
		parts = append(parts, passStyle.Render(watchIcon), r.formatKey(e))
		if e.Meta.IsFile {
			parts = append(parts, detailStyle.Render(FormatSize(e.Meta.Size)))
			if r.opts.MIME {
				if mime := r.detect(e.Path); mime != "" {
					parts = append(parts, detailStyle.Render(mime))
				}
			}
		}
	case watcher.EventUnwatch:
		parts = append(parts, skipStyle.Render(unwatchIcon), r.formatKey(e))
	case watcher.EventError:
		parts = append(parts, failStyle.Render(errorIcon))
		if e.Key != "" {
			parts = append(parts, e.Key)
		}
		if e.Err != nil {
			parts = append(parts, failStyle.Render(e.Err.Error()))
		}
	}
	return strings.Join(parts, " ")
}

func (r *EventReporter) formatKey(e watcher.Event) string {
	if e.Key == "/" {
		return rootStyle.Render(e.Path)
	}
	if !e.Meta.IsFile {
		return dirStyle.Render(e.Key + "/")
	}
	return e.Key
}

// detect returns the MIME type of the file at path, or "" if it cannot be read.
func (r *EventReporter) detect(path string) string {
	if r.fs == nil {
		return ""
	}
	f, err := r.fs.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return ""
	}
	return mtype.String()
}
