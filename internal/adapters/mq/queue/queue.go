// Package queue carries advisories from producers (edge detector, coaching
// workers, control handlers) to the single dispatching consumer.
package queue

import (
	"context"
	"sync"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 64
)

// Item is the payload flowing through the queue.
type Item = advisory.Advisory

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an item to the queue.
	// Returns false if the queue is full or closed and the item was dropped.
	Enqueue(ctx context.Context, it Item) bool

	// Dequeue returns the channel items arrive on. It is closed by Close.
	Dequeue() <-chan Item

	// Len returns the current number of queued items.
	Len() int

	// Close stops accepting items. Items already queued stay readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Item
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Item, q.capacity)
	return q
}

// Enqueue adds an item without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, it Item) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		metrics.RecordAdvisoryQueueDrop()
		return false
	}

	select {
	case q.items <- it:
		return true
	default:
		metrics.RecordAdvisoryQueueDrop()
		return false
	}
}

// Dequeue returns the receive side of the queue. Consumers select on it
// alongside their own cancellation, so no forwarding goroutine is needed.
func (q *InMemoryQueue) Dequeue() <-chan Item {
	return q.items
}

// Drain discards queued items and returns how many were dropped.
func (q *InMemoryQueue) Drain() int {
	n := 0
	for {
		select {
		case _, ok := <-q.items:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

// Len returns the current number of queued items.
func (q *InMemoryQueue) Len() int {
	return len(q.items)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
