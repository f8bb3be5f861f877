// Package notify adapts OS change-notification primitives to the narrow
// interface the watch tree needs: add or remove a path, and receive the
// path of anything that fired. Event kinds are dropped.
package notify

import (
	"fmt"
	"time"
)

// Kind selects a notification backend.
type Kind string

const (
	KindFsnotify Kind = "fsnotify"
	KindPoll     Kind = "poll"
)

// DefaultPollInterval is used by the polling backend when none is configured.
const DefaultPollInterval = 500 * time.Millisecond

// Notifier delivers change notifications for registered paths.
type Notifier interface {
	// Add starts delivering notifications for name.
	Add(name string) error

	// Remove stops delivering notifications for name.
	Remove(name string) error

	// Events yields the path of each notification.
	Events() <-chan string

	// Errors yields backend failures.
	Errors() <-chan error

	// Close releases every registration and closes both channels.
	Close() error
}

// New creates a Notifier of the given kind.
func New(kind Kind, pollInterval time.Duration) (Notifier, error) {
	switch kind {
	case "", KindFsnotify:
		return NewFsnotify()
	case KindPoll:
		return NewPoller(pollInterval)
	default:
		return nil, fmt.Errorf("unknown notification backend: %s", kind)
	}
}
