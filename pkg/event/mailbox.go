// pkg/event/mailbox.go
package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultMailboxSize is the capacity used by Router.Subscribe when no
// WithMailboxSize option is given.
const DefaultMailboxSize = 64

// Mailbox is a bounded FIFO queue of events owned by one subscriber.
//
// The router only writes to a mailbox and the subscriber's processing loop
// only reads from it. A mailbox may be registered under many topics, and
// several times under one topic. Closing it lets the processing loop drain
// what is already buffered and then end.
type Mailbox struct {
	id    string
	queue chan Event

	mu     sync.RWMutex
	closed bool

	done      chan struct{}
	closeOnce sync.Once

	// processing loop state, managed by Router
	handler atomic.Pointer[Handler]
	running atomic.Bool
}

// NewMailbox creates an open mailbox holding at most size events.
// A size below 1 is raised to 1.
func NewMailbox(size int) *Mailbox {
	if size < 1 {
		size = 1
	}
	return &Mailbox{
		id:    uuid.NewString(),
		queue: make(chan Event, size),
		done:  make(chan struct{}),
	}
}

// ID returns the mailbox identifier used in logs and errors.
func (m *Mailbox) ID() string { return m.id }

// Cap returns the mailbox capacity.
func (m *Mailbox) Cap() int { return cap(m.queue) }

// Len returns the number of buffered events.
func (m *Mailbox) Len() int { return len(m.queue) }

// Closed reports whether Close has been called.
func (m *Mailbox) Closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the mailbox is closed.
func (m *Mailbox) Done() <-chan struct{} { return m.done }

// Close closes the mailbox. Buffered events remain readable; blocked
// deliveries return ErrMailboxClosed. Calling Close more than once is a no-op.
func (m *Mailbox) Close() {
	m.closeOnce.Do(func() {
		// wake blocked senders before taking the write lock they hold for reading
		close(m.done)
		m.mu.Lock()
		m.closed = true
		close(m.queue)
		m.mu.Unlock()
	})
}

// TryPut offers e without blocking. It reports whether e was accepted.
func (m *Mailbox) TryPut(e Event) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, ErrMailboxClosed
	}
	select {
	case m.queue <- e:
		return true, nil
	default:
		return false, nil
	}
}

// Put enqueues e, waiting while the mailbox is full. It returns
// ErrMailboxClosed if the mailbox is or becomes closed, or ctx.Err() if ctx
// ends first.
func (m *Mailbox) Put(ctx context.Context, e Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrMailboxClosed
	}
	select {
	case m.queue <- e:
		return nil
	case <-m.done:
		return ErrMailboxClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take removes the oldest event, waiting while the mailbox is empty.
// ok is false once the mailbox is closed and drained.
func (m *Mailbox) Take(ctx context.Context) (e Event, ok bool, err error) {
	select {
	case e, ok = <-m.queue:
		return e, ok, nil
	case <-ctx.Done():
		return Event{}, false, ctx.Err()
	}
}
