package notify

// pathQueue holds paths between a backend and the consumer so the backend's
// channel is always drained. A path already waiting is not queued twice.
type pathQueue struct {
	paths   []string
	pending map[string]struct{}
}

func newPathQueue() *pathQueue {
	return &pathQueue{pending: make(map[string]struct{})}
}

func (q *pathQueue) push(path string) {
	if _, ok := q.pending[path]; ok {
		return
	}
	q.pending[path] = struct{}{}
	q.paths = append(q.paths, path)
}

// out returns ch and the head path, or a nil channel when the queue is
// empty so a select send case on it never fires.
func (q *pathQueue) out(ch chan string) (chan string, string) {
	if len(q.paths) == 0 {
		return nil, ""
	}
	return ch, q.paths[0]
}

func (q *pathQueue) pop() {
	delete(q.pending, q.paths[0])
	q.paths[0] = ""
	q.paths = q.paths[1:]
}

// errQueue is the unbounded error counterpart of pathQueue.
type errQueue []error

func (q errQueue) out(ch chan error) (chan error, error) {
	if len(q) == 0 {
		return nil, nil
	}
	return ch, q[0]
}
