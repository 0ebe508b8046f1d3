package munch

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// QueueOption configures a Queue.
type QueueOption func(*queueOptions)

type queueOptions struct {
	timeout time.Duration
	metrics *Metrics
}

// WithTimeout bounds how long a single Enqueue or Dequeue may wait. Zero, the default,
// waits until the context is done.
func WithTimeout(d time.Duration) QueueOption {
	return func(o *queueOptions) { o.timeout = d }
}

// WithMetrics mirrors the queue statistics into m.
func WithMetrics(m *Metrics) QueueOption {
	return func(o *queueOptions) { o.metrics = m }
}

// Queue is a fixed capacity blocking FIFO. Enqueue waits for a free slot and Dequeue waits
// for a filled one, so a fast producer stalls once its consumer falls capacity items behind.
//
// Both waits happen on semaphores before the mutex is taken, and the mutex only guards
// the ring cursors and the statistics.
type Queue[T any] struct {
	name    string
	timeout time.Duration

	empty *semaphore.Weighted // free slots, starts at capacity
	full  *semaphore.Weighted // filled slots, starts at zero

	mu    sync.Mutex
	buf   []T
	head  uint64 // next slot to read, only ever increases
	tail  uint64 // next slot to write, only ever increases
	stats *Stats
}

// NewQueue creates an empty queue holding at most capacity items.
func NewQueue[T any](capacity int, name string, opts ...QueueOption) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, newError("Queue", name, "Create", fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity))
	}
	var o queueOptions
	for _, opt := range opts {
		opt(&o)
	}

	// A weighted semaphore starts with everything available: drain the full one so that
	// consumers wait until the first Release.
	full := semaphore.NewWeighted(int64(capacity))
	if !full.TryAcquire(int64(capacity)) {
		return nil, newError("Queue", name, "Create", fmt.Errorf("cannot drain data semaphore"))
	}

	return &Queue[T]{
		name:    name,
		timeout: o.timeout,
		empty:   semaphore.NewWeighted(int64(capacity)),
		full:    full,
		buf:     make([]T, capacity),
		stats:   NewStats(name, o.metrics),
	}, nil
}

// Name returns the queue identity.
func (q *Queue[T]) Name() string { return q.name }

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int { return len(q.buf) }

// Stats returns the recorder attached to the queue.
func (q *Queue[T]) Stats() *Stats { return q.stats }

// Len returns the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.tail - q.head)
}

// Enqueue appends item, blocking while the queue is full. It fails only when ctx is done
// or the configured timeout elapses, in which case the queue is left untouched.
func (q *Queue[T]) Enqueue(ctx context.Context, item T) error {
	start := time.Now()
	if err := q.acquire(ctx, q.empty, "Enqueue"); err != nil {
		return err
	}

	q.mu.Lock()
	q.buf[q.tail%uint64(len(q.buf))] = item
	q.tail++
	q.stats.RecordEnqueue(1)
	q.stats.RecordEnqueueDuration(time.Since(start))
	q.mu.Unlock()

	q.full.Release(1)
	return nil
}

// Dequeue removes and returns the oldest item, blocking while the queue is empty.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	start := time.Now()
	if err := q.acquire(ctx, q.full, "Dequeue"); err != nil {
		var zero T
		return zero, err
	}

	q.mu.Lock()
	slot := q.head % uint64(len(q.buf))
	item := q.buf[slot]
	var zero T
	q.buf[slot] = zero // the consumer owns it now
	q.head++
	q.stats.RecordDequeue(1)
	q.stats.RecordDequeueDuration(time.Since(start))
	q.mu.Unlock()

	q.empty.Release(1)
	return item, nil
}

// RenderStats writes the queue statistics report to w. It holds the queue lock, so the
// report never shows an operation half recorded.
func (q *Queue[T]) RenderStats(w io.Writer) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats.Render(w)
}

func (q *Queue[T]) acquire(ctx context.Context, sem *semaphore.Weighted, op string) error {
	waitCtx := ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	if err := sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() == nil {
			// Only our own deadline fired.
			err = ErrQueueTimeout
		}
		return newError("Queue", q.name, op, err)
	}
	return nil
}
