package report

import (
	"github.com/prettymuchbryce/treewatch/internal/watcher"
)

// Reporter renders watch events for a human.
// Implementations must be safe for use from the watcher's handler.
type Reporter interface {
	// Report renders a single event.
	Report(e watcher.Event)
}

// Options controls what the event reporter prints.
type Options struct {
	// TimeFormat is a strftime layout for the timestamp column. Empty hides it.
	TimeFormat string

	// MIME adds the detected content type of watched files.
	MIME bool

	// Quiet hides watch and unwatch events for directories.
	Quiet bool
}

// DefaultTimeFormat is used when no layout is configured.
const DefaultTimeFormat = "%H:%M:%S"

// NullReporter is a no-op reporter for when reporting is disabled.
type NullReporter struct{}

func (NullReporter) Report(watcher.Event) {}
