package notify

import (
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Fsnotify is a Notifier backed by inotify, kqueue, or ReadDirectoryChangesW.
// A watched directory also fires for changes to its direct children.
type Fsnotify struct {
	watcher *fsnotify.Watcher
	events  chan string
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewFsnotify starts an fsnotify-backed Notifier.
func NewFsnotify() (*Fsnotify, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	n := &Fsnotify{
		watcher: w,
		events:  make(chan string, 100),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
	}
	n.wg.Add(1)
	go n.forward()
	return n, nil
}

// forward copies fsnotify events until the watcher closes, queueing them so
// the kernel reader never waits on the consumer.
func (n *Fsnotify) forward() {
	defer n.wg.Done()
	defer close(n.events)
	defer close(n.errors)

	paths := newPathQueue()
	var errs errQueue

	for {
		eventCh, nextPath := paths.out(n.events)
		errCh, nextErr := errs.out(n.errors)

		select {
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			paths.push(event.Name)
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			errs = append(errs, err)
		case eventCh <- nextPath:
			paths.pop()
		case errCh <- nextErr:
			errs = errs[1:]
		case <-n.done:
			return
		}
	}
}

func (n *Fsnotify) Add(name string) error {
	return n.watcher.Add(name)
}

func (n *Fsnotify) Remove(name string) error {
	return n.watcher.Remove(name)
}

func (n *Fsnotify) Events() <-chan string {
	return n.events
}

func (n *Fsnotify) Errors() <-chan error {
	return n.errors
}

func (n *Fsnotify) Close() error {
	var err error
	n.once.Do(func() {
		close(n.done)
		err = n.watcher.Close()
		n.wg.Wait()
	})
	return err
}
