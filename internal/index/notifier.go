package index

import (
	"sync"

	"media-index/internal/logging"
)

// ChangeOp tags the kind of index change a notification describes.
type ChangeOp int

const (
	// ChangeCreated means a record entered the index.
	ChangeCreated ChangeOp = iota
	// ChangeRemoved means a record left the index.
	ChangeRemoved
	// ChangeChanged means a record's attributes or tags were refreshed.
	ChangeChanged
	// ChangeMoved means a record moved; Change.OldPath carries the
	// previous path.
	ChangeMoved
)

// String returns the lowercase op name.
func (op ChangeOp) String() string {
	switch op {
	case ChangeCreated:
		return "created"
	case ChangeRemoved:
		return "removed"
	case ChangeChanged:
		return "changed"
	case ChangeMoved:
		return "moved"
	default:
		return "unknown"
	}
}

// Change is an informational index change notification. It lets
// presentation layers update incrementally instead of re-querying
// everything; it is derived from mutation router actions, not separate
// state.
type Change struct {
	Op      ChangeOp
	Path    string
	OldPath string // set only for ChangeMoved
}

// Notifier fans out Change notifications to subscribers. Delivery is
// best-effort: a subscriber that falls behind loses notifications rather
// than blocking the mutation path.
type Notifier struct {
	mu     sync.Mutex
	subs   []chan Change
	closed bool
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a new subscriber and returns its channel. The channel
// is closed when the notifier shuts down.
func (n *Notifier) Subscribe() <-chan Change {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Change, 128)
	if n.closed {
		close(ch)
		return ch
	}
	n.subs = append(n.subs, ch)
	return ch
}

// Publish delivers a change to every subscriber without blocking.
func (n *Notifier) Publish(change Change) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	for _, ch := range n.subs {
		select {
		case ch <- change:
		default:
			logging.Debug("Dropping %s notification for %s: subscriber behind", change.Op, change.Path)
		}
	}
}

// Close shuts down the notifier and closes all subscriber channels.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	for _, ch := range n.subs {
		close(ch)
	}
	n.subs = nil
}
