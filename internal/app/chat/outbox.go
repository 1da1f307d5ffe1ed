package chat

import (
	"errors"
	"sync"
)

// ErrOutboxClosed is returned when pushing to a connection that already left.
var ErrOutboxClosed = errors.New("outbox closed")

// Outbox is a bounded per-connection queue of encoded frames.
//
// When full, the oldest queued frame is discarded to make room, so producers
// never wait on a slow consumer. Producers are serialized by mu; the single
// consumer (the connection's write pump) reads C() without locking.
type Outbox struct {
	mu      sync.Mutex
	ch      chan []byte
	closed  bool
	dropped uint64
}

// NewOutbox creates an outbox holding at most capacity frames.
func NewOutbox(capacity int) *Outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Outbox{ch: make(chan []byte, capacity)}
}

// Push enqueues msg, evicting the oldest frame when the queue is at capacity.
// It reports whether an eviction happened.
func (o *Outbox) Push(msg []byte) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false, ErrOutboxClosed
	}

	evicted := false
	for {
		select {
		case o.ch <- msg:
			return evicted, nil
		default:
		}

		select {
		case <-o.ch:
			o.dropped++
			evicted = true
		default:
		}
	}
}

// C is the channel the write pump drains. It is closed by Close.
func (o *Outbox) C() <-chan []byte {
	return o.ch
}

// Close stops accepting frames and closes C. Frames already queued remain readable.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	close(o.ch)
}

// Dropped returns how many frames were evicted so far.
func (o *Outbox) Dropped() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.dropped
}

// Len returns the number of frames waiting to be written.
func (o *Outbox) Len() int {
	return len(o.ch)
}
