package notify

import (
	"errors"
	"sync"
	"time"

	poller "github.com/radovskyb/watcher"
)

// Poller is a Notifier that compares periodic stat snapshots.
// It works where kernel notifications do not, such as network mounts.
// Adding a directory also polls its direct children.
type Poller struct {
	delegate *poller.Watcher
	events   chan string
	errors   chan error
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewPoller starts a polling Notifier that checks every interval.
func NewPoller(interval time.Duration) (*Poller, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	n := &Poller{
		delegate: poller.New(),
		events:   make(chan string, 100),
		errors:   make(chan error, 4),
		done:     make(chan struct{}),
	}

	started := make(chan error, 1)
	n.wg.Add(2)
	go func() {
		defer n.wg.Done()
		if err := n.delegate.Start(interval); err != nil {
			started <- err
		}
	}()
	go n.forward()

	// Close is a no-op on the delegate until its polling loop is running.
	waited := make(chan struct{})
	go func() {
		n.delegate.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case err := <-started:
		close(n.done)
		n.wg.Wait()
		return nil, err
	}

	return n, nil
}

// forward copies delegate events until the delegate or n closes. The
// delegate holds its lock while it sends, and Add needs that lock, so the
// delegate's channels are read even while the consumer is busy.
func (n *Poller) forward() {
	defer n.wg.Done()
	defer close(n.events)
	defer close(n.errors)

	paths := newPathQueue()
	var errs errQueue

	for {
		eventCh, nextPath := paths.out(n.events)
		errCh, nextErr := errs.out(n.errors)

		select {
		case event := <-n.delegate.Event:
			paths.push(event.Path)
			if event.OldPath != "" {
				paths.push(event.OldPath)
			}
		case err := <-n.delegate.Error:
			// A deleted watched path is an ordinary trigger, already reported as an event.
			if !errors.Is(err, poller.ErrWatchedFileDeleted) {
				errs = append(errs, err)
			}
		case eventCh <- nextPath:
			paths.pop()
		case errCh <- nextErr:
			errs = errs[1:]
		case <-n.delegate.Closed:
			return
		case <-n.done:
			return
		}
	}
}

func (n *Poller) Add(name string) error {
	return n.delegate.Add(name)
}

func (n *Poller) Remove(name string) error {
	return n.delegate.Remove(name)
}

func (n *Poller) Events() <-chan string {
	return n.events
}

func (n *Poller) Errors() <-chan error {
	return n.errors
}

func (n *Poller) Close() error {
	n.once.Do(func() {
		// forward keeps draining until the delegate has stopped polling.
		n.delegate.Close()
		close(n.done)
		n.wg.Wait()
	})
	return nil
}
