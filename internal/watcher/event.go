package watcher

import (
	"github.com/prettymuchbryce/treewatch/internal/fs"
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	// EventWatch reports a newly registered entry, or fresh metadata for a file.
	EventWatch EventKind = iota
	// EventUnwatch reports an entry that is no longer watched.
	EventUnwatch
	// EventError reports a traversal or registration failure.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventWatch:
		return "watch"
	case EventUnwatch:
		return "unwatch"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is published to the tree's Handler.
// Key, Path and Meta are empty for EventError unless the failure concerns a single entry.
type Event struct {
	Kind EventKind
	Key  string
	Path string
	Meta fs.Metadata
	Err  error
}

// Handler receives events synchronously, in emission order.
// It must not call back into the Tree that invoked it.
type Handler func(Event)

// Fanout returns a Handler that calls each non-nil handler in order.
func Fanout(handlers ...Handler) Handler {
	var hs []Handler
	for _, h := range handlers {
		if h != nil {
			hs = append(hs, h)
		}
	}
	return func(e Event) {
		for _, h := range hs {
			h(e)
		}
	}
}

// Entry is a single watched file or directory.
type Entry struct {
	// Key is the root-relative, slash-separated path. The root is "/".
	Key string `json:"key"`

	// Path is the absolute filesystem path.
	Path string `json:"path"`

	// Meta is the stat snapshot taken when the entry was (re)registered.
	Meta fs.Metadata `json:"meta"`
}
